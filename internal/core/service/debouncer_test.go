package service_test

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/niksmo/ecom-admin/internal/core/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDebouncer(t *testing.T) {
	t.Run("LastTriggerWins", func(t *testing.T) {
		clock := new(manualClock)
		d := service.NewDebouncer(time.Second, clock)

		var got []string
		for _, v := range []string{"a", "ab", "abc"} {
			d.Trigger(func() { got = append(got, v) })
		}
		require.True(t, d.Pending())

		assert.Equal(t, 1, clock.Fire())
		assert.Equal(t, []string{"abc"}, got)
		assert.False(t, d.Pending())
	})

	t.Run("Flush", func(t *testing.T) {
		clock := new(manualClock)
		d := service.NewDebouncer(time.Second, clock)

		var n int
		d.Trigger(func() { n++ })
		assert.True(t, d.Flush())
		assert.False(t, d.Flush())
		assert.Zero(t, clock.Fire())
		assert.Equal(t, 1, n)
	})

	t.Run("CancelAndStop", func(t *testing.T) {
		clock := new(manualClock)
		d := service.NewDebouncer(time.Second, clock)

		var n int
		d.Trigger(func() { n++ })
		d.Cancel()
		clock.Fire()

		d.Stop()
		d.Trigger(func() { n++ })
		clock.Fire()
		assert.Zero(t, n)
	})

	t.Run("RealClock", func(t *testing.T) {
		d := service.NewDebouncer(20*time.Millisecond, nil)

		var calls atomic.Int32
		var last atomic.Value
		for _, v := range []string{"s", "si", "silk"} {
			d.Trigger(func() {
				calls.Add(1)
				last.Store(v)
			})
			time.Sleep(2 * time.Millisecond)
		}

		require.Eventually(t, func() bool {
			return calls.Load() == 1
		}, time.Second, 5*time.Millisecond)
		time.Sleep(50 * time.Millisecond)
		assert.EqualValues(t, 1, calls.Load())
		assert.Equal(t, "silk", last.Load())
	})
}
