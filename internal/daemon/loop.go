// Package daemon runs the window manager's single event loop. The loop
// owns the World and the protocol server; nothing else touches them.
package daemon

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/acmnu/wmii/internal/p9srv"
	"github.com/acmnu/wmii/internal/platform"
	"github.com/acmnu/wmii/internal/wm"
)

// ErrDisplayClosed is returned by Run when the display event stream ends.
var ErrDisplayClosed = errors.New("display connection closed")

// Config wires a Loop.
type Config struct {
	World    *wm.World
	Server   *p9srv.Server
	Requests <-chan p9srv.Request
	Events   <-chan platform.Event
	Surface  platform.Surface
	// Reconcile is the interval between reconciliation passes. Zero uses
	// DefaultReconcileInterval; a negative value disables them.
	Reconcile time.Duration
	Logger    *slog.Logger
}

// Loop serializes protocol requests and display events.
type Loop struct {
	world    *wm.World
	srv      *p9srv.Server
	reqs     <-chan p9srv.Request
	events   <-chan platform.Event
	rec      *Reconciler
	interval time.Duration
	logger   *slog.Logger
}

// New creates a Loop.
func New(cfg Config) *Loop {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	interval := cfg.Reconcile
	if interval == 0 {
		interval = DefaultReconcileInterval
	}
	l := &Loop{
		world:    cfg.World,
		srv:      cfg.Server,
		reqs:     cfg.Requests,
		events:   cfg.Events,
		interval: interval,
		logger:   logger,
	}
	if cfg.Surface != nil && interval > 0 {
		l.rec = NewReconciler(cfg.World, cfg.Surface, logger)
	}
	return l
}

// Run handles requests and events until quit is requested, ctx is
// cancelled or the display goes away. Every client is released to the root
// window before Run returns.
func (l *Loop) Run(ctx context.Context) error {
	defer l.world.Shutdown()

	var tick <-chan time.Time
	if l.rec != nil {
		ticker := time.NewTicker(l.interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	l.logger.Info("event loop started")
	for l.world.Running() {
		select {
		case <-ctx.Done():
			l.logger.Info("event loop stopped", "reason", ctx.Err())
			return nil
		case req := <-l.reqs:
			l.srv.Handle(req)
		case ev, ok := <-l.events:
			if !ok {
				return ErrDisplayClosed
			}
			l.event(ev)
		case <-tick:
			l.rec.Reconcile()
		}
	}
	l.logger.Info("event loop stopped", "reason", "quit")
	return nil
}

func (l *Loop) event(ev platform.Event) {
	defer func() {
		if err := recover(); err != nil {
			l.logger.Error("display event panic recovered", "event", ev.Kind, "window", ev.Window, "error", err)
		}
	}()
	l.world.HandleEvent(ev)
}
