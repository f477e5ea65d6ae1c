package engine

import (
	"math"
	"sync"

	"github.com/benbeisheim/chessai-backend/internal/model"
)

const (
	// MaxDepth is the default search depth in plies.
	MaxDepth = 4

	// DepthLimit caps requested depths; each extra ply multiplies the work
	// by roughly the branching factor.
	DepthLimit = 6

	// MateScore is returned for a mated side. Evaluate is bounded by
	// 2 sides * 16 pieces * (900 + 20) = 29440, so a mate score can never be
	// mistaken for material.
	MateScore = 99999

	DrawScore = 0
)

type Result struct {
	Move  model.Move
	Score int
	Nodes int
}

type Option func(*Searcher)

func WithDepth(depth int) Option {
	return func(s *Searcher) {
		if depth > 0 {
			s.depth = depth
		}
	}
}

func WithShuffler(shuffler Shuffler) Option {
	return func(s *Searcher) {
		if shuffler != nil {
			s.shuffler = shuffler
		}
	}
}

// Searcher runs a fixed-depth minimax with alpha-beta pruning. Every explored
// branch works on its own copy of the board.
type Searcher struct {
	depth    int
	exhaust  bool
	mu       sync.Mutex
	shuffler Shuffler
}

func NewSearcher(opts ...Option) *Searcher {
	s := &Searcher{
		depth:    MaxDepth,
		shuffler: NewRandomShuffler(0),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Searcher) Depth() int {
	return s.depth
}

var defaultSearcher = NewSearcher()

// BestMove picks a move for side with the default searcher. The second result
// is false when side has no legal move; IsInCheck then tells mate from
// stalemate.
func BestMove(b *model.Board, side model.Side) (model.Move, bool) {
	return defaultSearcher.BestMove(b, side)
}

func (s *Searcher) BestMove(b *model.Board, side model.Side) (model.Move, bool) {
	res, ok := s.Search(b, side)
	return res.Move, ok
}

func (s *Searcher) Search(b *model.Board, side model.Side) (Result, bool) {
	moves := b.LegalMoves(side)
	if len(moves) == 0 {
		return Result{}, false
	}

	s.mu.Lock()
	s.shuffler.Shuffle(len(moves), func(i, j int) { moves[i], moves[j] = moves[j], moves[i] })
	s.mu.Unlock()

	var nodes int
	best := Result{Score: math.MinInt}
	alpha, beta := math.MinInt, math.MaxInt
	for _, m := range moves {
		score := s.minimax(b.Play(m), s.depth-1, alpha, beta, false, side, &nodes)
		if score > best.Score {
			best.Score = score
			best.Move = m
		}
		if !s.exhaust {
			alpha = max(alpha, best.Score)
		}
	}
	best.Nodes = nodes + 1
	return best, true
}

func (s *Searcher) minimax(b *model.Board, depth, alpha, beta int, maximizing bool, root model.Side, nodes *int) int {
	*nodes++
	if depth <= 0 {
		return Evaluate(b, root)
	}

	turn := root
	if !maximizing {
		turn = root.Opposite()
	}

	moves := b.LegalMoves(turn)
	if len(moves) == 0 {
		if !b.IsInCheck(turn) {
			return DrawScore
		}
		if maximizing {
			return -MateScore
		}
		return MateScore
	}

	if maximizing {
		best := math.MinInt
		for _, m := range moves {
			score := s.minimax(b.Play(m), depth-1, alpha, beta, false, root, nodes)
			best = max(best, score)
			alpha = max(alpha, score)
			if beta <= alpha && !s.exhaust {
				break
			}
		}
		return best
	}

	best := math.MaxInt
	for _, m := range moves {
		score := s.minimax(b.Play(m), depth-1, alpha, beta, true, root, nodes)
		best = min(best, score)
		beta = min(beta, score)
		if beta <= alpha && !s.exhaust {
			break
		}
	}
	return best
}
