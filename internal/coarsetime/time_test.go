package coarsetime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNow(t *testing.T) {
	assert.WithinDuration(t, time.Now(), Now(), 2*tick)
}

func TestNow_Advances(t *testing.T) {
	start := Now()
	assert.Eventually(t, func() bool {
		return Now().After(start)
	}, time.Second, tick/5)
}

func BenchmarkTimeNow(b *testing.B) {
	var t time.Time

	b.Run("time", func(b *testing.B) {
		for b.Loop() {
			t = time.Now()
		}
	})

	b.Run("coarsetime", func(b *testing.B) {
		for b.Loop() {
			t = Now()
		}
	})

	_ = t
}
