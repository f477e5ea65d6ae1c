package main

import (
	"fmt"
	"io"

	"github.com/benbeisheim/chessai-backend/internal/model"
	"github.com/fatih/color"
)

var glyphs = map[model.PieceKind]string{
	model.Pawn:   "♟",
	model.Knight: "♞",
	model.Bishop: "♝",
	model.Rook:   "♜",
	model.Queen:  "♛",
	model.King:   "♚",
}

var (
	lightSquare = color.BgYellow
	darkSquare  = color.BgGreen
	lastSquare  = color.BgCyan
	firstPiece  = []color.Attribute{color.FgHiWhite, color.Bold}
	secondPiece = []color.Attribute{color.FgBlack}
)

// renderBoard draws b with rank 8 on top. The squares of the last move are
// highlighted.
func renderBoard(w io.Writer, b *model.Board) {
	last, hasLast := b.LastMove()
	for y := 0; y < model.BoardSize; y++ {
		fmt.Fprintf(w, "%d ", model.BoardSize-y)
		for x := 0; x < model.BoardSize; x++ {
			sq := model.Square{File: x, Rank: y}

			bg := lightSquare
			if (x+y)%2 == 1 {
				bg = darkSquare
			}
			if hasLast && (sq == last.From || sq == last.To) {
				bg = lastSquare
			}

			cell := color.New(bg)
			glyph := " "
			if p, ok := b.At(sq); ok {
				glyph = glyphs[p.Kind]
				if p.Side == model.First {
					cell.Add(firstPiece...)
				} else {
					cell.Add(secondPiece...)
				}
			}
			cell.Fprintf(w, " %s ", glyph)
		}
		fmt.Fprintln(w)
	}
	fmt.Fprintln(w, "   a  b  c  d  e  f  g  h")
}
