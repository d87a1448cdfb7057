package capture

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/foxseedlab/tsuyaku/internal/audio"
)

// Controller owns at most one running Loop. mu serializes Start and Stop and
// is held while a stopping loop is joined; Running never takes it.
type Controller struct {
	mu     sync.Mutex
	deps   Deps
	open   audio.MicrophoneOpener
	cancel context.CancelFunc
	done   chan struct{}
	active atomic.Pointer[chan struct{}]
}

func NewController(deps Deps, open audio.MicrophoneOpener) *Controller {
	return &Controller{deps: deps, open: open}
}

// Start stops and joins any running loop, opens the microphone and runs a new
// loop with settings. A microphone that cannot be opened is returned as an
// error and no loop is started.
func (c *Controller) Start(ctx context.Context, settings Settings) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stopLocked()

	mic, err := c.open(settings.Microphone)
	if err != nil {
		return fmt.Errorf("open microphone: %w", err)
	}

	loopCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	c.cancel = cancel
	c.done = done

	loop := NewLoop(c.deps, settings, mic)
	c.active.Store(&done)
	go func() {
		defer close(done)
		defer func() {
			if err := mic.Close(); err != nil {
				slog.Warn("failed to close microphone", "error", err)
			}
		}()
		loop.Run(loopCtx)
	}()
	return nil
}

// Stop signals the running loop and waits for it to finish.
func (c *Controller) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopLocked()
}

func (c *Controller) stopLocked() {
	if c.cancel == nil {
		return
	}
	c.active.Store(nil)
	c.cancel()
	<-c.done
	c.cancel = nil
	c.done = nil
}

// Running reports whether a loop is active. A loop that stopped on its own or
// is being stopped counts as not running.
func (c *Controller) Running() bool {
	done := c.active.Load()
	if done == nil {
		return false
	}
	select {
	case <-*done:
		return false
	default:
		return true
	}
}
