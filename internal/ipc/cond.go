package ipc

import (
	"math"
	"sync/atomic"
)

// Cond is a futex-backed condition variable addressed by a pointer into
// shared memory, paired with a Mutex the caller already holds. It mirrors
// sync.Cond's contract (Wait requires the mutex held, releases it while
// blocked, and re-acquires before returning) across process boundaries.
type Cond struct {
	seq *uint32
}

// NewCond wraps an existing shared-memory word as a Cond's sequence
// counter. The counter only ever increases; waiters block on its current
// value and are woken by any Broadcast that bumps it.
func NewCond(seq *uint32) *Cond {
	return &Cond{seq: seq}
}

// Wait releases mu, blocks until a Broadcast occurs, and re-acquires mu
// before returning. Like sync.Cond, a spurious wakeup is possible; callers
// must re-check their condition in a loop.
func (c *Cond) Wait(mu *Mutex) error {
	seq := atomic.LoadUint32(c.seq)
	if err := mu.Unlock(); err != nil {
		return err
	}
	waitErr := Wait(c.seq, seq)
	if err := mu.Lock(); err != nil {
		return err
	}
	return waitErr
}

// Broadcast wakes every caller currently blocked in Wait.
func (c *Cond) Broadcast() error {
	atomic.AddUint32(c.seq, 1)
	_, err := Wake(c.seq, math.MaxInt32)
	return err
}
