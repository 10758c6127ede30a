package ipc

import (
	"sync/atomic"
	"time"
)

const (
	mutexUnlocked uint32 = 0
	mutexLocked   uint32 = 1
)

// Mutex is a futex-backed mutual-exclusion lock addressed by a pointer
// into shared memory, so unrelated processes mapping the same region can
// contend on it the way goroutines contend on sync.Mutex. The caller owns
// the backing word's lifetime and must zero-initialize it (unlocked)
// before any process constructs a Mutex over it.
type Mutex struct {
	state *uint32
}

// NewMutex wraps an existing shared-memory word as a Mutex.
func NewMutex(state *uint32) *Mutex {
	return &Mutex{state: state}
}

// Lock blocks until the mutex is acquired.
func (m *Mutex) Lock() error {
	for {
		if atomic.CompareAndSwapUint32(m.state, mutexUnlocked, mutexLocked) {
			return nil
		}
		if err := Wait(m.state, mutexLocked); err != nil {
			return err
		}
	}
}

// TryLock attempts to acquire the mutex without blocking.
func (m *Mutex) TryLock() bool {
	return atomic.CompareAndSwapUint32(m.state, mutexUnlocked, mutexLocked)
}

// LockTimeout blocks until the mutex is acquired or timeout elapses,
// returning ErrTimeout in the latter case. This backs
// PublicationController's max_wait contract on the commit step.
func (m *Mutex) LockTimeout(timeout time.Duration) error {
	if timeout < 0 {
		return m.Lock()
	}
	deadline := time.Now().Add(timeout)
	for {
		if atomic.CompareAndSwapUint32(m.state, mutexUnlocked, mutexLocked) {
			return nil
		}
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return ErrTimeout
		}
		if err := WaitTimeout(m.state, mutexLocked, remaining.Nanoseconds()); err != nil {
			return err
		}
	}
}

// Unlock releases the mutex and wakes one blocked waiter, if any.
func (m *Mutex) Unlock() error {
	atomic.StoreUint32(m.state, mutexUnlocked)
	_, err := Wake(m.state, 1)
	return err
}
