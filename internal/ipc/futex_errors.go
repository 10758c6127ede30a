package ipc

import "errors"

// ErrTimeout is returned by WaitTimeout when the wait times out.
var ErrTimeout = errors.New("ipc: futex wait timed out")
