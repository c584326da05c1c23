package platform

import (
	"fmt"

	"github.com/acmnu/wmii/internal/geom"
)

// EventKind identifies a display event.
type EventKind int

const (
	EventMapRequest EventKind = iota + 1
	EventUnmap
	EventDestroy
	EventProperty
	EventConfigureRequest
	EventButtonPress
	EventButtonRelease
	EventMotion
	EventKeyPress
	EventBarClick
)

func (k EventKind) String() string {
	switch k {
	case EventMapRequest:
		return "map-request"
	case EventUnmap:
		return "unmap"
	case EventDestroy:
		return "destroy"
	case EventProperty:
		return "property"
	case EventConfigureRequest:
		return "configure-request"
	case EventButtonPress:
		return "button-press"
	case EventButtonRelease:
		return "button-release"
	case EventMotion:
		return "motion"
	case EventKeyPress:
		return "key-press"
	case EventBarClick:
		return "bar-click"
	}
	return fmt.Sprintf("event(%d)", int(k))
}

// Property names a client property that changed.
type Property int

const (
	PropertyOther Property = iota
	PropertyName
	PropertyNormalHints
	PropertyTransient
	PropertyProtocols
)

// Event is a display event delivered to the window manager loop.
type Event struct {
	Kind     EventKind
	Window   WindowID
	Bounds   geom.Rect
	Point    geom.Point
	Button   int
	Mod      bool
	Key      string
	Label    int
	Property Property
}
