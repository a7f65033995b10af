// Package coarsetime provides a clock that is refreshed every 50ms by a
// background goroutine. Reading it costs an atomic load instead of a
// time.Now() call, which is enough precision for idle timestamps.
package coarsetime

import (
	"sync/atomic"
	"time"
)

const tick = 50 * time.Millisecond

var now atomic.Pointer[time.Time]

func init() {
	store(time.Now())

	ticker := time.NewTicker(tick)
	go func() {
		for t := range ticker.C {
			store(t)
		}
	}()
}

func store(t time.Time) {
	now.Store(&t)
}

// Now returns the last recorded time, at most one tick old.
func Now() time.Time {
	return *now.Load()
}
