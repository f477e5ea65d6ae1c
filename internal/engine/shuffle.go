package engine

import (
	"time"

	"golang.org/x/exp/rand"
)

// Shuffler permutes the root move list before scoring. It only decides which
// of several equally scored moves is played.
type Shuffler interface {
	Shuffle(n int, swap func(i, j int))
}

// NewRandomShuffler returns a seeded shuffler. A zero seed is replaced by the
// current time.
func NewRandomShuffler(seed uint64) Shuffler {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return rand.New(rand.NewSource(seed))
}

// NoShuffle keeps generation order.
type NoShuffle struct{}

func (NoShuffle) Shuffle(int, func(i, j int)) {}
