// Package command parses and runs the one-line commands written to ctl
// files. Each ctl file has a context that fixes its vocabulary.
package command

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/acmnu/wmii/internal/geom"
	"github.com/acmnu/wmii/internal/wm"
)

// MaxLine is the longest command accepted.
const MaxLine = 256

// ErrNotSupported reports an unknown verb or an overlong command.
var ErrNotSupported = errors.New("command not supported")

// Context is the ctl file a command was written to.
type Context int

const (
	RootContext Context = iota
	ViewContext
	AreaContext
	ClientContext
)

func (c Context) String() string {
	switch c {
	case RootContext:
		return "root"
	case ViewContext:
		return "view"
	case AreaContext:
		return "area"
	case ClientContext:
		return "client"
	}
	return fmt.Sprintf("context(%d)", int(c))
}

// Verb is the operation of a command.
type Verb int

const (
	VerbQuit Verb = iota + 1
	VerbSelect
	VerbWarp
	VerbNew
	VerbDestroy
	VerbSwap
	VerbKill
	VerbSendToTag
	VerbSendToArea
)

var verbs = map[string]Verb{
	"quit":       VerbQuit,
	"select":     VerbSelect,
	"warp":       VerbWarp,
	"new":        VerbNew,
	"destroy":    VerbDestroy,
	"swap":       VerbSwap,
	"kill":       VerbKill,
	"sendtotag":  VerbSendToTag,
	"sendtoarea": VerbSendToArea,
}

// vocabulary lists the verbs each context understands.
var vocabulary = map[Context][]Verb{
	RootContext:   {VerbQuit, VerbSelect, VerbWarp},
	ViewContext:   {VerbSelect},
	AreaContext:   {VerbSelect, VerbNew, VerbDestroy, VerbSwap},
	ClientContext: {VerbKill, VerbSendToTag, VerbSendToArea},
}

// Command is a parsed ctl line.
type Command struct {
	Context  Context
	Verb     Verb
	Selector wm.Selector
	// Name is the view of a root select or the tag of sendtotag.
	Name  string
	Point geom.Point
}

// Parse parses one command line written to a ctl file of the given
// context.
func Parse(ctx Context, line string) (Command, error) {
	if len(line) > MaxLine {
		return Command{}, fmt.Errorf("%w: line longer than %d bytes", ErrNotSupported, MaxLine)
	}
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Command{}, fmt.Errorf("%w: empty command", ErrNotSupported)
	}
	verb, ok := verbs[fields[0]]
	if !ok || !allowed(ctx, verb) {
		return Command{}, fmt.Errorf("%w: %q in %s ctl", ErrNotSupported, fields[0], ctx)
	}
	args := fields[1:]
	cmd := Command{Context: ctx, Verb: verb}

	var err error
	switch verb {
	case VerbQuit, VerbKill, VerbNew, VerbDestroy:
		if len(args) != 0 {
			return Command{}, fmt.Errorf("%w: %s takes no argument", wm.ErrBadValue, fields[0])
		}
	case VerbSelect:
		if err = wantArgs(fields[0], args, 1); err != nil {
			return Command{}, err
		}
		switch ctx {
		case RootContext:
			cmd.Name = args[0]
		case ViewContext:
			cmd.Selector, err = ParseSelector(args[0])
		case AreaContext:
			cmd.Selector, err = ParseSelector(args[0], wm.West, wm.East)
		}
	case VerbWarp:
		if err = wantArgs(fields[0], args, 2); err != nil {
			return Command{}, err
		}
		cmd.Point, err = geom.ParsePoint(args[0] + " " + args[1])
		if err != nil {
			err = fmt.Errorf("%w: warp %s %s", wm.ErrBadValue, args[0], args[1])
		}
	case VerbSwap:
		if err = wantArgs(fields[0], args, 1); err != nil {
			return Command{}, err
		}
		cmd.Selector, err = ParseSelector(args[0])
		if err == nil && cmd.Selector != wm.Prev && cmd.Selector != wm.Next {
			err = fmt.Errorf("%w: swap %s", wm.ErrBadValue, args[0])
		}
	case VerbSendToTag:
		if err = wantArgs(fields[0], args, 1); err != nil {
			return Command{}, err
		}
		cmd.Name = args[0]
	case VerbSendToArea:
		if err = wantArgs(fields[0], args, 1); err != nil {
			return Command{}, err
		}
		cmd.Selector, err = ParseSelector(args[0], wm.NewArea)
	}
	if err != nil {
		return Command{}, err
	}
	return cmd, nil
}

func allowed(ctx Context, v Verb) bool {
	for _, o := range vocabulary[ctx] {
		if o == v {
			return true
		}
	}
	return false
}

func wantArgs(verb string, args []string, n int) error {
	if len(args) != n {
		return fmt.Errorf("%w: %s needs %d argument(s)", wm.ErrBadValue, verb, n)
	}
	return nil
}

// ParseSelector parses prev, next, toggle or a non-negative decimal.
// extra lists further selectors valid in the caller's context.
func ParseSelector(s string, extra ...wm.Selector) (wm.Selector, error) {
	switch s {
	case "prev":
		return wm.Prev, nil
	case "next":
		return wm.Next, nil
	case "toggle":
		return wm.Toggle, nil
	}
	for _, e := range extra {
		if e.String() == s {
			return e, nil
		}
	}
	if s != "" && strings.Trim(s, "0123456789") == "" {
		if i, err := strconv.Atoi(s); err == nil {
			return wm.Index(i), nil
		}
	}
	return wm.Selector{}, fmt.Errorf("%w: selector %q", wm.ErrBadValue, s)
}
