package daemon

import (
	"log/slog"
	"time"

	"github.com/acmnu/wmii/internal/platform"
	"github.com/acmnu/wmii/internal/wm"
)

// DefaultReconcileInterval is how often managed clients are checked
// against the display.
const DefaultReconcileInterval = 10 * time.Second

// Reconciler unmanages clients whose windows disappeared without a
// DestroyNotify reaching the loop.
type Reconciler struct {
	world   *wm.World
	surface platform.Surface
	logger  *slog.Logger
}

// NewReconciler creates a Reconciler.
func NewReconciler(w *wm.World, s platform.Surface, logger *slog.Logger) *Reconciler {
	return &Reconciler{world: w, surface: s, logger: logger}
}

// Reconcile performs one pass and returns the number of clients dropped.
// It must run on the loop goroutine.
func (r *Reconciler) Reconcile() int {
	defer func() {
		if err := recover(); err != nil {
			r.logger.Error("reconciler panic recovered", "error", err)
		}
	}()

	// Managed windows live inside frames, so they are not root children
	// and each one is asked about directly.
	var orphaned []*wm.Client
	for _, c := range r.world.Clients() {
		if _, err := r.surface.Info(c.Window()); err != nil {
			orphaned = append(orphaned, c)
		}
	}
	for _, c := range orphaned {
		r.logger.Info("reconciler: orphaned client detected", "client", c.ID(), "window", c.Window())
		r.world.Unmanage(c, false)
	}
	return len(orphaned)
}
