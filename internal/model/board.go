package model

import (
	"errors"
	"fmt"
	"strings"
)

const BoardSize = 8

var (
	ErrInvalidSquare   = errors.New("invalid square")
	ErrNoPieceAtSource = errors.New("no piece at source square")
)

var backRank = [BoardSize]PieceKind{Rook, Knight, Bishop, Queen, King, Bishop, Knight, Rook}

// Board is the authoritative position. The grid is a value array so a copy of
// a Board never shares cells with the original.
type Board struct {
	grid     [BoardSize][BoardSize]Piece
	lastMove Move
	hasLast  bool
}

func EmptyBoard() *Board {
	return &Board{}
}

func NewBoard() *Board {
	board := &Board{}
	for x := 0; x < BoardSize; x++ {
		board.grid[1][x] = NewPiece(Pawn, Second)
		board.grid[6][x] = NewPiece(Pawn, First)
		board.grid[0][x] = NewPiece(backRank[x], Second)
		board.grid[7][x] = NewPiece(backRank[x], First)
	}
	return board
}

func (b *Board) Clone() *Board {
	clone := *b
	return &clone
}

// At reports the piece on sq. The second result is false for empty or
// out-of-range squares.
func (b *Board) At(sq Square) (Piece, bool) {
	if !sq.Valid() {
		return Piece{}, false
	}
	p := b.grid[sq.Rank][sq.File]
	return p, p.Kind != NoKind
}

func (b *Board) Place(sq Square, p Piece) error {
	if !sq.Valid() {
		return fmt.Errorf("place %v: %w", sq, ErrInvalidSquare)
	}
	b.grid[sq.Rank][sq.File] = p
	return nil
}

func (b *Board) Clear(sq Square) error {
	return b.Place(sq, Piece{})
}

func (b *Board) LastMove() (Move, bool) {
	return b.lastMove, b.hasLast
}

// MovePiece applies a move previously returned by ValidMoves. It performs no
// legality check of its own: castling, en passant and promotion are derived
// from the shape of the move alone.
func (b *Board) MovePiece(from, to Square) error {
	if !from.Valid() || !to.Valid() {
		return fmt.Errorf("move %v-%v: %w", from, to, ErrInvalidSquare)
	}
	if b.grid[from.Rank][from.File].Kind == NoKind {
		return fmt.Errorf("move %v-%v: %w", from, to, ErrNoPieceAtSource)
	}
	b.movePiece(from, to)
	return nil
}

// Play returns the position after m, leaving b untouched. Moves with squares
// off the board or an empty source yield an unchanged copy.
func (b *Board) Play(m Move) *Board {
	next := b.Clone()
	if m.From.Valid() && m.To.Valid() {
		next.movePiece(m.From, m.To)
	}
	return next
}

func (b *Board) movePiece(from, to Square) {
	piece := b.grid[from.Rank][from.File]
	if piece.Kind == NoKind {
		return
	}
	b.grid[from.Rank][from.File] = Piece{}
	dx := to.File - from.File

	if piece.Kind == King && abs(dx) == 2 {
		rookFrom, rookTo := 0, 3
		if dx > 0 {
			rookFrom, rookTo = 7, 5
		}
		if rook := b.grid[from.Rank][rookFrom]; rook.Kind != NoKind {
			rook.HasMoved = true
			b.grid[from.Rank][rookFrom] = Piece{}
			b.grid[from.Rank][rookTo] = rook
		}
	}

	if piece.Kind == Pawn && abs(dx) == 1 && b.grid[to.Rank][to.File].Kind == NoKind {
		b.grid[from.Rank][to.File] = Piece{}
	}

	piece.HasMoved = true
	if piece.Kind == Pawn && to.Rank == promotionRank(piece.Side) {
		piece.Kind = Queen
	}

	b.grid[to.Rank][to.File] = piece
	b.lastMove = Move{From: from, To: to}
	b.hasLast = true
}

// ValidMoves lists the legal destinations of the piece on pos, in generation
// order. An empty square has none.
func (b *Board) ValidMoves(pos Square) ([]Square, error) {
	if !pos.Valid() {
		return nil, fmt.Errorf("valid moves %v: %w", pos, ErrInvalidSquare)
	}
	return b.validMoves(pos), nil
}

func (b *Board) validMoves(pos Square) []Square {
	piece := b.grid[pos.Rank][pos.File]
	if piece.Kind == NoKind {
		return nil
	}
	var moves []Square
	for _, dest := range b.pseudoLegalMoves(nil, pos, piece) {
		next := b.Clone()
		next.movePiece(pos, dest)
		if !next.IsInCheck(piece.Side) {
			moves = append(moves, dest)
		}
	}
	return moves
}

// LegalMoves lists every legal move of side, scanning the grid row by row.
func (b *Board) LegalMoves(side Side) []Move {
	var moves []Move
	for y := 0; y < BoardSize; y++ {
		for x := 0; x < BoardSize; x++ {
			p := b.grid[y][x]
			if p.Kind == NoKind || p.Side != side {
				continue
			}
			from := Square{File: x, Rank: y}
			for _, to := range b.validMoves(from) {
				moves = append(moves, Move{From: from, To: to})
			}
		}
	}
	return moves
}

func (b *Board) hasLegalMove(side Side) bool {
	for y := 0; y < BoardSize; y++ {
		for x := 0; x < BoardSize; x++ {
			p := b.grid[y][x]
			if p.Kind != NoKind && p.Side == side && len(b.validMoves(Square{File: x, Rank: y})) > 0 {
				return true
			}
		}
	}
	return false
}

func (b *Board) IsInCheck(side Side) bool {
	king, ok := b.findKing(side)
	if !ok {
		return false
	}
	return b.isSquareAttacked(king, side.Opposite())
}

// IsCheckmate is true only when side is in check and has no legal move.
// A side without moves and not in check is stalemated; see IsStalemate.
func (b *Board) IsCheckmate(side Side) bool {
	if !b.IsInCheck(side) {
		return false
	}
	return !b.hasLegalMove(side)
}

func (b *Board) IsStalemate(side Side) bool {
	if b.IsInCheck(side) {
		return false
	}
	return !b.hasLegalMove(side)
}

func (b *Board) findKing(side Side) (Square, bool) {
	for y := 0; y < BoardSize; y++ {
		for x := 0; x < BoardSize; x++ {
			p := b.grid[y][x]
			if p.Kind == King && p.Side == side {
				return Square{File: x, Rank: y}, true
			}
		}
	}
	return Square{}, false
}

// String draws the grid with rank 8 on top, upper case for First.
func (b *Board) String() string {
	var sb strings.Builder
	for y := 0; y < BoardSize; y++ {
		fmt.Fprintf(&sb, "%d ", BoardSize-y)
		for x := 0; x < BoardSize; x++ {
			sb.WriteString(b.grid[y][x].symbol())
			if x < BoardSize-1 {
				sb.WriteByte(' ')
			}
		}
		sb.WriteByte('\n')
	}
	sb.WriteString("  a b c d e f g h\n")
	return sb.String()
}

func (p Piece) symbol() string {
	if p.Kind == NoKind {
		return "."
	}
	letter := p.Kind.Notation()
	if p.Kind == Pawn {
		letter = "P"
	}
	if p.Side == Second {
		return strings.ToLower(letter)
	}
	return letter
}

func promotionRank(side Side) int {
	if side == First {
		return 0
	}
	return BoardSize - 1
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
