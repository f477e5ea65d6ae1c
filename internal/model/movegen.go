package model

var (
	rookDirs   = []Square{{File: 0, Rank: 1}, {File: 0, Rank: -1}, {File: 1, Rank: 0}, {File: -1, Rank: 0}}
	bishopDirs = []Square{{File: 1, Rank: 1}, {File: 1, Rank: -1}, {File: -1, Rank: 1}, {File: -1, Rank: -1}}
	queenDirs  = append(append([]Square{}, rookDirs...), bishopDirs...)
	kingDirs   = queenDirs
	knightDirs = []Square{
		{File: 1, Rank: 2}, {File: 1, Rank: -2}, {File: -1, Rank: 2}, {File: -1, Rank: -2},
		{File: 2, Rank: 1}, {File: 2, Rank: -1}, {File: -2, Rank: 1}, {File: -2, Rank: -1},
	}
)

func (s Square) add(d Square) Square {
	return Square{File: s.File + d.File, Rank: s.Rank + d.Rank}
}

// pawnDirection is the rank delta of a forward pawn step.
func pawnDirection(side Side) int {
	if side == First {
		return -1
	}
	return 1
}

func (b *Board) isEmpty(sq Square) bool {
	return b.grid[sq.Rank][sq.File].Kind == NoKind
}

func (b *Board) isEnemy(sq Square, side Side) bool {
	p := b.grid[sq.Rank][sq.File]
	return p.Kind != NoKind && p.Side != side
}

// pseudoLegalMoves appends the destinations the piece on from may reach by its
// movement rules, without regard to the safety of its own king.
func (b *Board) pseudoLegalMoves(moves []Square, from Square, piece Piece) []Square {
	switch piece.Kind {
	case Pawn:
		dir := pawnDirection(piece.Side)
		one := Square{File: from.File, Rank: from.Rank + dir}
		if one.Valid() && b.isEmpty(one) {
			moves = append(moves, one)
			two := Square{File: from.File, Rank: from.Rank + 2*dir}
			if !piece.HasMoved && two.Valid() && b.isEmpty(two) {
				moves = append(moves, two)
			}
		}
		for _, dx := range []int{-1, 1} {
			target := Square{File: from.File + dx, Rank: from.Rank + dir}
			if !target.Valid() {
				continue
			}
			if b.isEnemy(target, piece.Side) {
				moves = append(moves, target)
			} else if b.isEmpty(target) && b.enPassantOpen(from, target, piece.Side) {
				moves = append(moves, target)
			}
		}
	case Knight:
		moves = b.stepMoves(moves, from, knightDirs, piece.Side)
	case Bishop:
		moves = b.slidingMoves(moves, from, bishopDirs, piece.Side)
	case Rook:
		moves = b.slidingMoves(moves, from, rookDirs, piece.Side)
	case Queen:
		moves = b.slidingMoves(moves, from, queenDirs, piece.Side)
	case King:
		moves = b.stepMoves(moves, from, kingDirs, piece.Side)
		if !piece.HasMoved {
			if b.canCastle(from, piece.Side, true) {
				moves = append(moves, Square{File: from.File + 2, Rank: from.Rank})
			}
			if b.canCastle(from, piece.Side, false) {
				moves = append(moves, Square{File: from.File - 2, Rank: from.Rank})
			}
		}
	}
	return moves
}

// basicAttacks appends the squares the piece on from attacks. Pawns attack both
// forward diagonals whatever stands there and kings their eight neighbours;
// castling and pawn pushes never attack.
func (b *Board) basicAttacks(attacks []Square, from Square, piece Piece) []Square {
	switch piece.Kind {
	case Pawn:
		dir := pawnDirection(piece.Side)
		for _, dx := range []int{-1, 1} {
			if target := (Square{File: from.File + dx, Rank: from.Rank + dir}); target.Valid() {
				attacks = append(attacks, target)
			}
		}
	case Knight:
		attacks = b.stepMoves(attacks, from, knightDirs, piece.Side)
	case Bishop:
		attacks = b.slidingMoves(attacks, from, bishopDirs, piece.Side)
	case Rook:
		attacks = b.slidingMoves(attacks, from, rookDirs, piece.Side)
	case Queen:
		attacks = b.slidingMoves(attacks, from, queenDirs, piece.Side)
	case King:
		for _, d := range kingDirs {
			if target := from.add(d); target.Valid() {
				attacks = append(attacks, target)
			}
		}
	}
	return attacks
}

func (b *Board) stepMoves(moves []Square, from Square, dirs []Square, side Side) []Square {
	for _, d := range dirs {
		target := from.add(d)
		if target.Valid() && (b.isEmpty(target) || b.isEnemy(target, side)) {
			moves = append(moves, target)
		}
	}
	return moves
}

func (b *Board) slidingMoves(moves []Square, from Square, dirs []Square, side Side) []Square {
	for _, d := range dirs {
		for target := from.add(d); target.Valid(); target = target.add(d) {
			if b.isEmpty(target) {
				moves = append(moves, target)
				continue
			}
			if b.isEnemy(target, side) {
				moves = append(moves, target)
			}
			break
		}
	}
	return moves
}

// enPassantOpen reports whether the last move was an enemy pawn's double step
// landing beside from, which makes target capturable en passant.
func (b *Board) enPassantOpen(from, target Square, side Side) bool {
	if !b.hasLast {
		return false
	}
	last := b.lastMove
	if last.To.File != target.File || last.To.Rank != from.Rank || abs(last.From.Rank-last.To.Rank) != 2 {
		return false
	}
	victim := b.grid[last.To.Rank][last.To.File]
	return victim.Kind == Pawn && victim.Side != side
}

func (b *Board) canCastle(king Square, side Side, kingside bool) bool {
	// castling geometry assumes the king on its home file
	if king.File != 4 || b.isSquareAttacked(king, side.Opposite()) {
		return false
	}

	rookFile, between, transit := 0, []int{1, 2, 3}, []int{3, 2}
	if kingside {
		rookFile, between, transit = 7, []int{5, 6}, []int{5, 6}
	}

	rook := b.grid[king.Rank][rookFile]
	if rook.Kind != Rook || rook.Side != side || rook.HasMoved {
		return false
	}
	for _, x := range between {
		if !b.isEmpty(Square{File: x, Rank: king.Rank}) {
			return false
		}
	}
	for _, x := range transit {
		if b.isSquareAttacked(Square{File: x, Rank: king.Rank}, side.Opposite()) {
			return false
		}
	}
	return true
}

// isSquareAttacked uses the attack generator only. Going through ValidMoves
// here would recurse, since legality itself asks about attacks.
func (b *Board) isSquareAttacked(sq Square, by Side) bool {
	var buf [32]Square
	for y := 0; y < BoardSize; y++ {
		for x := 0; x < BoardSize; x++ {
			p := b.grid[y][x]
			if p.Kind == NoKind || p.Side != by {
				continue
			}
			for _, target := range b.basicAttacks(buf[:0], Square{File: x, Rank: y}, p) {
				if target == sq {
					return true
				}
			}
		}
	}
	return false
}
