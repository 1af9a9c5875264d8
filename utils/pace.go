package utils

import (
	"math/rand"
	"sync"
	"time"
)

// Pacer injects pauses between browser actions. All randomized delay sits
// behind this interface so tests can swap in a zero-delay implementation.
type Pacer interface {
	Pause(min, max time.Duration)
}

// RandomPacer sleeps a uniformly random duration in [min, max], plus a fixed
// per-action offset when an action-slowdown hint is configured. Determinism
// is intentionally sacrificed to reduce behavioral bot signal.
type RandomPacer struct {
	Extra time.Duration

	mu  sync.Mutex
	rng *rand.Rand
}

// NewRandomPacer creates a RandomPacer with the given per-action offset.
func NewRandomPacer(extra time.Duration) *RandomPacer {
	return &RandomPacer{
		Extra: extra,
		rng:   rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Pause blocks for a random duration between min and max plus the offset.
func (p *RandomPacer) Pause(min, max time.Duration) {
	d := min
	if max > min {
		p.mu.Lock()
		d += time.Duration(p.rng.Int63n(int64(max - min)))
		p.mu.Unlock()
	}
	time.Sleep(d + p.Extra)
}

// NoopPacer skips all pauses. Tests use it to keep runs deterministic and fast.
type NoopPacer struct{}

// Pause returns immediately.
func (NoopPacer) Pause(min, max time.Duration) {}
