package model

import (
	"fmt"
	"strings"
)

type Side uint8

const (
	First Side = iota
	Second
)

// Opposite returns the other side. Opposite(Opposite(s)) == s.
func (s Side) Opposite() Side {
	if s == First {
		return Second
	}
	return First
}

func (s Side) String() string {
	if s == First {
		return "white"
	}
	return "black"
}

func (s Side) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Side) UnmarshalText(text []byte) error {
	side, err := ParseSide(string(text))
	if err != nil {
		return err
	}
	*s = side
	return nil
}

func ParseSide(name string) (Side, error) {
	switch strings.ToLower(name) {
	case "white", "first":
		return First, nil
	case "black", "second":
		return Second, nil
	}
	return First, fmt.Errorf("unknown side %q", name)
}

type PieceKind uint8

const (
	NoKind PieceKind = iota
	Pawn
	Knight
	Bishop
	Rook
	Queen
	King
)

var kindNames = [...]string{"", "pawn", "knight", "bishop", "rook", "queen", "king"}

func (k PieceKind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return ""
}

// Notation is the piece letter used in move notation. Pawns have none.
func (k PieceKind) Notation() string {
	switch k {
	case King:
		return "K"
	case Queen:
		return "Q"
	case Rook:
		return "R"
	case Bishop:
		return "B"
	case Knight:
		return "N"
	}
	return ""
}

func (k PieceKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *PieceKind) UnmarshalText(text []byte) error {
	for i, name := range kindNames {
		if i > 0 && name == string(text) {
			*k = PieceKind(i)
			return nil
		}
	}
	return fmt.Errorf("unknown piece type %q", text)
}

type Piece struct {
	Kind     PieceKind `json:"type"`
	Side     Side      `json:"color"`
	HasMoved bool      `json:"hasMoved"`
}

func NewPiece(kind PieceKind, side Side) Piece {
	return Piece{Kind: kind, Side: side}
}

// Square addresses a cell of the grid. Rank 0 is the top row, which holds
// Second's back rank in the starting position.
type Square struct {
	File int `json:"file"`
	Rank int `json:"rank"`
}

func (s Square) Valid() bool {
	return s.File >= 0 && s.File < BoardSize && s.Rank >= 0 && s.Rank < BoardSize
}

func (s Square) String() string {
	if !s.Valid() {
		return fmt.Sprintf("(%d,%d)", s.File, s.Rank)
	}
	return fmt.Sprintf("%c%d", s.File+'a', BoardSize-s.Rank)
}

func (s Square) fileNotation() string {
	return fmt.Sprintf("%c", s.File+'a')
}

// ParseSquare reads algebraic coordinates such as "e4".
func ParseSquare(name string) (Square, error) {
	if len(name) != 2 {
		return Square{}, fmt.Errorf("%w: %q", ErrInvalidSquare, name)
	}
	sq := Square{File: int(name[0] - 'a'), Rank: BoardSize - int(name[1]-'0')}
	if name[0] < 'a' || name[1] < '0' || !sq.Valid() {
		return Square{}, fmt.Errorf("%w: %q", ErrInvalidSquare, name)
	}
	return sq, nil
}

type Move struct {
	From Square `json:"from"`
	To   Square `json:"to"`
}

func (m Move) String() string {
	return m.From.String() + m.To.String()
}
