package namespace

import (
	"fmt"

	"github.com/acmnu/wmii/internal/registry"
)

// Kind is the type of a namespace node.
type Kind uint16

const (
	KindRoot Kind = iota + 1
	KindCtl
	KindEvent
	KindDef
	KindBorder
	KindSnap
	KindFont
	KindSelColors
	KindNormColors
	KindColWidth
	KindColMode
	KindKeys
	KindKey
	KindTags
	KindTagName
	KindBar
	KindExpand
	KindLabel
	KindLabelData
	KindLabelColors
	KindTagDir
	KindView
	KindViewCtl
	KindArea
	KindAreaCtl
	KindAreaMode
	KindFrame
	KindFrameName
	KindFrameClass
	KindFrameTags
	KindFrameGeom
	KindFrameCtl
)

var kindNames = map[Kind]string{
	KindRoot:        "/",
	KindCtl:         "ctl",
	KindEvent:       "event",
	KindDef:         "def",
	KindBorder:      "border",
	KindSnap:        "snap",
	KindFont:        "font",
	KindSelColors:   "selcolors",
	KindNormColors:  "normcolors",
	KindColWidth:    "colwidth",
	KindColMode:     "colmode",
	KindKeys:        "keys",
	KindTags:        "tags",
	KindBar:         "bar",
	KindExpand:      "expand",
	KindLabelData:   "data",
	KindLabelColors: "colors",
	KindTagDir:      "tag",
	KindViewCtl:     "ctl",
	KindAreaCtl:     "ctl",
	KindAreaMode:    "mode",
	KindFrameName:   "name",
	KindFrameClass:  "class",
	KindFrameTags:   "tags",
	KindFrameGeom:   "geom",
	KindFrameCtl:    "ctl",
}

var kindPerms = map[Kind]uint32{
	KindRoot:        DMDIR | 0o500,
	KindCtl:         0o200,
	KindEvent:       0o400,
	KindDef:         DMDIR | 0o500,
	KindBorder:      0o600,
	KindSnap:        0o600,
	KindFont:        0o600,
	KindSelColors:   0o600,
	KindNormColors:  0o600,
	KindColWidth:    0o600,
	KindColMode:     0o600,
	KindKeys:        DMDIR | 0o700,
	KindKey:         0o200,
	KindTags:        DMDIR | 0o500,
	KindTagName:     0o400,
	KindBar:         DMDIR | 0o700,
	KindExpand:      0o600,
	KindLabel:       DMDIR | 0o500,
	KindLabelData:   0o600,
	KindLabelColors: 0o600,
	KindTagDir:      DMDIR | 0o700,
	KindView:        DMDIR | 0o500,
	KindViewCtl:     0o200,
	KindArea:        DMDIR | 0o500,
	KindAreaCtl:     0o200,
	KindAreaMode:    0o600,
	KindFrame:       DMDIR | 0o500,
	KindFrameName:   0o400,
	KindFrameClass:  0o400,
	KindFrameTags:   0o600,
	KindFrameGeom:   0o600,
	KindFrameCtl:    0o200,
}

// DMDIR marks a directory in a permission word.
const DMDIR = 0x80000000

// Qid identifies a node. ID1, ID2 and ID3 carry the registry ids of the
// entities on the path to the node, outermost first.
type Qid struct {
	Kind Kind
	ID1  registry.ID
	ID2  registry.ID
	ID3  registry.ID
}

// Path packs q into the 64-bit path of a 9P qid.
func (q Qid) Path() uint64 {
	return uint64(q.Kind)<<48 | uint64(q.ID1&0xFFFF)<<32 | uint64(q.ID2&0xFFFF)<<16 | uint64(q.ID3&0xFFFF)
}

// IsDir reports whether q names a directory.
func (q Qid) IsDir() bool { return kindPerms[q.Kind]&DMDIR != 0 }

// Perm returns the permission word of q, DMDIR included.
func (q Qid) Perm() uint32 { return kindPerms[q.Kind] }

// QidFromPath unpacks a path produced by Path.
func QidFromPath(p uint64) Qid {
	return Qid{
		Kind: Kind(p >> 48),
		ID1:  registry.ID(p >> 32 & 0xFFFF),
		ID2:  registry.ID(p >> 16 & 0xFFFF),
		ID3:  registry.ID(p & 0xFFFF),
	}
}

func (q Qid) String() string {
	return fmt.Sprintf("(%d %d %d %d)", q.Kind, q.ID1, q.ID2, q.ID3)
}
