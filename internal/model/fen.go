package model

import (
	"fmt"

	"github.com/notnil/chess"
)

var fenKinds = map[chess.PieceType]PieceKind{
	chess.Pawn:   Pawn,
	chess.Knight: Knight,
	chess.Bishop: Bishop,
	chess.Rook:   Rook,
	chess.Queen:  Queen,
	chess.King:   King,
}

func sideOf(c chess.Color) Side {
	if c == chess.Black {
		return Second
	}
	return First
}

func homeRank(side Side) int {
	if side == First {
		return BoardSize - 1
	}
	return 0
}

// ParseFEN builds a board from a FEN record and reports the side to move.
// HasMoved flags are recovered from castling rights and pawn ranks, and an
// en passant target becomes the double step that opened it.
func ParseFEN(record string) (*Board, Side, error) {
	opt, err := chess.FEN(record)
	if err != nil {
		return nil, First, fmt.Errorf("parse fen: %w", err)
	}
	pos := chess.NewGame(opt).Position()
	rights := pos.CastleRights()

	board := EmptyBoard()
	for csq, cp := range pos.Board().SquareMap() {
		kind, ok := fenKinds[cp.Type()]
		if !ok {
			continue
		}
		side := sideOf(cp.Color())
		sq := Square{File: int(csq.File()), Rank: BoardSize - 1 - int(csq.Rank())}
		piece := NewPiece(kind, side)
		color := cp.Color()

		switch kind {
		case Pawn:
			piece.HasMoved = sq.Rank != homeRank(side)+pawnDirection(side)
		case King:
			canCastle := rights.CanCastle(color, chess.KingSide) || rights.CanCastle(color, chess.QueenSide)
			piece.HasMoved = !(canCastle && sq.File == 4 && sq.Rank == homeRank(side))
		case Rook:
			unmoved := sq.Rank == homeRank(side) &&
				((sq.File == 7 && rights.CanCastle(color, chess.KingSide)) ||
					(sq.File == 0 && rights.CanCastle(color, chess.QueenSide)))
			piece.HasMoved = !unmoved
		}
		board.grid[sq.Rank][sq.File] = piece
	}

	if ep := pos.EnPassantSquare(); ep != chess.NoSquare {
		target := Square{File: int(ep.File()), Rank: BoardSize - 1 - int(ep.Rank())}
		// the pawn that just moved belongs to the side not on move
		mover := sideOf(pos.Turn()).Opposite()
		dir := pawnDirection(mover)
		board.lastMove = Move{
			From: Square{File: target.File, Rank: target.Rank - dir},
			To:   Square{File: target.File, Rank: target.Rank + dir},
		}
		board.hasLast = true
	}

	return board, sideOf(pos.Turn()), nil
}
