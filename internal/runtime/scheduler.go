package runtime

import (
	"time"

	"github.com/aretw0/genie/pkg/ports"
)

// TimerScheduler is the wall-clock ports.Scheduler backed by time.AfterFunc.
type TimerScheduler struct{}

// AfterFunc runs f in its own goroutine once d has elapsed.
func (TimerScheduler) AfterFunc(d time.Duration, f func()) ports.CancelFunc {
	t := time.AfterFunc(d, f)
	return t.Stop
}
