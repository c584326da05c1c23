package command

import (
	"fmt"

	"github.com/acmnu/wmii/internal/wm"
)

// Target is the entity a ctl file belongs to. Only the fields of its
// context are set.
type Target struct {
	Context Context
	View    *wm.View
	Area    *wm.Area
	Frame   *wm.Frame
}

// Exec runs cmd against w.
func Exec(w *wm.World, t Target, cmd Command) error {
	if cmd.Context != t.Context {
		return fmt.Errorf("%w: %s command on %s ctl", ErrNotSupported, cmd.Context, t.Context)
	}
	switch t.Context {
	case RootContext:
		switch cmd.Verb {
		case VerbQuit:
			w.Quit()
			return nil
		case VerbSelect:
			return w.SelectView(cmd.Name)
		case VerbWarp:
			return w.Warp(cmd.Point)
		}
	case ViewContext:
		if t.View == nil {
			return wm.ErrNotFound
		}
		return w.SelectArea(t.View, cmd.Selector)
	case AreaContext:
		if t.Area == nil {
			return wm.ErrNotFound
		}
		switch cmd.Verb {
		case VerbSelect:
			return w.SelectFrame(t.Area, cmd.Selector)
		case VerbNew:
			return w.NewColumn(t.Area)
		case VerbDestroy:
			return w.DestroyColumn(t.Area)
		case VerbSwap:
			return w.SwapFrame(t.Area, cmd.Selector)
		}
	case ClientContext:
		if t.Frame == nil {
			return wm.ErrNotFound
		}
		c := w.Client(t.Frame.ClientID())
		if c == nil {
			return wm.ErrNotFound
		}
		switch cmd.Verb {
		case VerbKill:
			w.Kill(c)
			return nil
		case VerbSendToTag:
			return w.SendToTag(c, cmd.Name)
		case VerbSendToArea:
			return w.SendToArea(t.Frame, cmd.Selector)
		}
	}
	return ErrNotSupported
}

// Run parses and executes one line.
func Run(w *wm.World, t Target, line string) error {
	cmd, err := Parse(t.Context, line)
	if err != nil {
		return err
	}
	return Exec(w, t, cmd)
}
