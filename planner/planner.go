package planner

import (
	"context"
	"time"
)

// InMemoryPlanner runs each job once immediately and then on its interval
// until the context is cancelled.
type InMemoryPlanner struct {
}

func (p *InMemoryPlanner) AddJob(ctx context.Context, interval time.Duration, action func()) {
	go func() {
		t := time.NewTicker(interval)
		defer t.Stop()

		action()

		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				action()
			}
		}
	}()
}
