package daemon

import (
	"fmt"
	"log/slog"

	"github.com/acmnu/wmii/internal/wm"
)

// Label is an initial status bar label.
type Label struct {
	Data   string
	Colors string
}

// Seed creates the initial /keys entries and bar labels. Duplicate keys are
// skipped with a warning; a bad label color fails.
func Seed(w *wm.World, keys []string, labels []Label, logger *slog.Logger) error {
	for _, name := range keys {
		if w.KeyByName(name) != nil {
			logger.Warn("duplicate key ignored", "key", name)
			continue
		}
		if _, err := w.CreateKey(name); err != nil {
			return fmt.Errorf("key %q: %w", name, err)
		}
	}
	for i, lb := range labels {
		l, err := w.CreateLabel()
		if err != nil {
			return fmt.Errorf("bar label %d: %w", i, err)
		}
		w.SetLabelData(l, lb.Data)
		if lb.Colors == "" {
			continue
		}
		if err := w.SetLabelColors(l, lb.Colors); err != nil {
			return fmt.Errorf("bar label %d: %w", i, err)
		}
	}
	logger.Debug("seeded namespace", "keys", len(w.Keys()), "labels", len(w.Labels()))
	return nil
}
