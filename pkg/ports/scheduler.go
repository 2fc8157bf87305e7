package ports

import "time"

// CancelFunc stops a scheduled callback. It reports whether the call stopped
// the callback before it ran.
type CancelFunc func() bool

// Scheduler issues delayed callbacks.
// Callbacks must never run synchronously inside AfterFunc and must not block.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) CancelFunc
}
