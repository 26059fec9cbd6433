// Package progress provides a terminal keep-alive indicator for long running
// operations. The spinner carries no data and never touches the computation
// it accompanies.
package progress

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"
)

// DefaultInterval is the delay between two spinner frames
const DefaultInterval = 500 * time.Millisecond

var frames = []string{"/", "-", "\\", "|"}

// Spinner redraws a rotating glyph on a single terminal line
type Spinner struct {
	w        io.Writer
	interval time.Duration

	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	enabled bool
}

// NewSpinner creates a spinner writing to w. A disabled spinner is a no-op,
// which lets callers start and stop it unconditionally.
func NewSpinner(w io.Writer, interval time.Duration, enabled bool) *Spinner {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Spinner{w: w, interval: interval, enabled: enabled}
}

// Start launches the spinner goroutine. It stops on its own when ctx is
// cancelled or Stop is called. Calling Start twice has no effect.
func (s *Spinner) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.enabled || s.done != nil {
		return
	}

	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})

	go func(done chan struct{}) {
		defer close(done)

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		i := 0
		for {
			fmt.Fprintf(s.w, "\r [%s]", frames[i])
			i = (i + 1) % len(frames)

			select {
			case <-ctx.Done():
				fmt.Fprint(s.w, "\r    \r")
				return
			case <-ticker.C:
			}
		}
	}(s.done)
}

// Stop terminates the spinner and waits for its goroutine to exit
func (s *Spinner) Stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel, s.done = nil, nil
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}
