package dispatch

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDispatcher(t *testing.T) {
	t.Run("runs tasks and waits for them", func(t *testing.T) {
		d := New(time.Second)
		var ran atomic.Int32

		for i := 0; i < 5; i++ {
			d.Go("task", func(ctx context.Context) error {
				ran.Add(1)
				return nil
			})
		}
		d.Wait()

		assert.Equal(t, int32(5), ran.Load())
	})

	t.Run("task errors stay in the log sink", func(t *testing.T) {
		d := New(time.Second)

		d.Go("failing", func(ctx context.Context) error {
			return errors.New("boom")
		})
		d.Wait()
	})

	t.Run("recovers from panics", func(t *testing.T) {
		d := New(time.Second)

		d.Go("panicking", func(ctx context.Context) error {
			panic("boom")
		})
		d.Wait()
	})

	t.Run("task context is bounded", func(t *testing.T) {
		d := New(10 * time.Millisecond)
		var sawDeadline atomic.Bool

		d.Go("slow", func(ctx context.Context) error {
			<-ctx.Done()
			sawDeadline.Store(true)
			return ctx.Err()
		})
		d.Wait()

		assert.True(t, sawDeadline.Load())
	})
}
