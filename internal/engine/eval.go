package engine

import "github.com/benbeisheim/chessai-backend/internal/model"

var pieceValues = [...]int{
	model.Pawn:   10,
	model.Knight: 30,
	model.Bishop: 30,
	model.Rook:   50,
	model.Queen:  90,
	model.King:   900,
}

// Evaluate scores the position from root's point of view: material plus a
// positional bonus, added for root's pieces and subtracted for the opponent's.
// Every term is antisymmetric, so Evaluate(b, s) == -Evaluate(b, s.Opposite()).
func Evaluate(b *model.Board, root model.Side) int {
	score := 0
	for y := 0; y < model.BoardSize; y++ {
		for x := 0; x < model.BoardSize; x++ {
			p, ok := b.At(model.Square{File: x, Rank: y})
			if !ok {
				continue
			}
			value := pieceValues[p.Kind] + positionBonus(p, x, y)
			if p.Side == root {
				score += value
			} else {
				score -= value
			}
		}
	}
	return score
}

func positionBonus(p model.Piece, x, y int) int {
	bonus := 0
	switch {
	case between(x, 3, 4) && between(y, 3, 4):
		bonus = 20
	case between(x, 2, 5) && between(y, 2, 5):
		bonus = 10
	}

	switch p.Kind {
	case model.Pawn:
		advanced := y
		if p.Side == model.First {
			advanced = model.BoardSize - 1 - y
		}
		bonus += advanced * 10
	case model.Knight:
		if x == 0 || x == model.BoardSize-1 || y == 0 || y == model.BoardSize-1 {
			bonus -= 30
		}
	}
	return bonus
}

func between(v, lo, hi int) bool {
	return v >= lo && v <= hi
}
