package dispatch

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Dispatcher runs best-effort tasks detached from the request/response path.
// Task errors go to the log, never to the caller. The response to the client
// must not wait on these tasks; Wait is for shutdown and tests.
type Dispatcher struct {
	timeout time.Duration
	wg      sync.WaitGroup
}

func New(timeout time.Duration) *Dispatcher {
	return &Dispatcher{timeout: timeout}
}

// Go runs fn on its own goroutine with a fresh bounded context. The request
// context is not reused: it dies as soon as the response is written.
func (d *Dispatcher) Go(name string, fn func(ctx context.Context) error) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				log.Error().Interface("panic", r).Str("task", name).Msg("detached task panicked")
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()

		if err := fn(ctx); err != nil {
			log.Error().Err(err).Str("task", name).Msg("detached task failed")
		}
	}()
}

// Wait blocks until all dispatched tasks have finished.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}
