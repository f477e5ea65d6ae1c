package model

// Ply records one applied half-move for the history and the client.
type Ply struct {
	Side           Side   `json:"side"`
	Piece          Piece  `json:"piece"`
	From           Square `json:"from"`
	To             Square `json:"to"`
	CapturedPiece  *Piece `json:"capturedPiece"`
	CastleRookMove *Move  `json:"castleRookMove"`
	Promotion      bool   `json:"promotion"`
	Notation       string `json:"notation"`
}

type CapturedPieces struct {
	White []Piece `json:"white"`
	Black []Piece `json:"black"`
}

func newCapturedPieces() CapturedPieces {
	return CapturedPieces{
		White: make([]Piece, 0),
		Black: make([]Piece, 0),
	}
}

// add files a piece taken by side.
func (c *CapturedPieces) add(by Side, p Piece) {
	if by == First {
		c.White = append(c.White, p)
	} else {
		c.Black = append(c.Black, p)
	}
}

// describePly works out what a legal move does before it is applied.
func (b *Board) describePly(m Move) Ply {
	piece := b.grid[m.From.Rank][m.From.File]
	ply := Ply{Side: piece.Side, Piece: piece, From: m.From, To: m.To}

	if target := b.grid[m.To.Rank][m.To.File]; target.Kind != NoKind {
		ply.CapturedPiece = &target
	}
	dx := m.To.File - m.From.File
	switch piece.Kind {
	case Pawn:
		if abs(dx) == 1 && ply.CapturedPiece == nil {
			victim := b.grid[m.From.Rank][m.To.File]
			ply.CapturedPiece = &victim
		}
		ply.Promotion = m.To.Rank == promotionRank(piece.Side)
	case King:
		if abs(dx) == 2 {
			rook := Move{From: Square{File: 0, Rank: m.From.Rank}, To: Square{File: 3, Rank: m.From.Rank}}
			if dx > 0 {
				rook = Move{From: Square{File: 7, Rank: m.From.Rank}, To: Square{File: 5, Rank: m.From.Rank}}
			}
			ply.CastleRookMove = &rook
		}
	}
	return ply
}

// notation renders a ply in short algebraic form without disambiguation.
func (p Ply) notation(check, mate bool) string {
	var s string
	switch {
	case p.CastleRookMove != nil && p.To.File == 6:
		s = "O-O"
	case p.CastleRookMove != nil:
		s = "O-O-O"
	default:
		s = p.Piece.Kind.Notation()
		if p.CapturedPiece != nil {
			if p.Piece.Kind == Pawn {
				s += p.From.fileNotation()
			}
			s += "x"
		}
		s += p.To.String()
		if p.Promotion {
			s += "=Q"
		}
	}
	switch {
	case mate:
		s += "#"
	case check:
		s += "+"
	}
	return s
}
