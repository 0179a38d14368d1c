package dialogue

import (
	"math/rand"
	"sync"
	"time"
)

// Rand is the random source behind every stochastic choice in dialogue.
// Tests inject a seeded source for reproducible output.
type Rand interface {
	Float64() float64
	Intn(n int) int
}

// lockedRand makes a *rand.Rand safe for concurrent use.
type lockedRand struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewRand returns a goroutine-safe source seeded with seed. A zero seed
// uses the current time.
func NewRand(seed int64) Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &lockedRand{rng: rand.New(rand.NewSource(seed))}
}

func (r *lockedRand) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rng.Float64()
}

func (r *lockedRand) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rng.Intn(n)
}

// chance reports whether a draw falls under p.
func chance(rng Rand, p float64) bool {
	if p <= 0 {
		return false
	}
	return rng.Float64() < p
}

func pickString(rng Rand, lines []string) string {
	if len(lines) == 0 {
		return ""
	}
	return lines[rng.Intn(len(lines))]
}

func orRand(rng Rand) Rand {
	if rng == nil {
		return NewRand(0)
	}
	return rng
}
