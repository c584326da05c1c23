// Package namespace maps the window manager's entity graph onto a tree of
// synthetic files. Nodes are named by Qid values that embed entity ids, so
// a node whose entity went away stops resolving instead of aliasing a new
// one.
package namespace

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/acmnu/wmii/internal/command"
	"github.com/acmnu/wmii/internal/geom"
	"github.com/acmnu/wmii/internal/registry"
	"github.com/acmnu/wmii/internal/wm"
)

var (
	ErrNotFound    = wm.ErrNotFound
	ErrPermission  = wm.ErrPermission
	ErrNotDir      = errors.New("not a directory")
	ErrIllegalName = errors.New("illegal file name")
)

// Children listed before the dynamic entries of each directory.
var static = map[Kind][]Kind{
	KindRoot:  {KindCtl, KindEvent, KindDef, KindKeys, KindTags, KindBar, KindTagDir},
	KindDef:   {KindBorder, KindSnap, KindFont, KindSelColors, KindNormColors, KindColWidth, KindColMode},
	KindBar:   {KindExpand},
	KindLabel: {KindLabelData, KindLabelColors},
	KindView:  {KindViewCtl},
	KindArea:  {KindAreaCtl, KindAreaMode},
	KindFrame: {KindFrameName, KindFrameClass, KindFrameTags, KindFrameGeom, KindFrameCtl},
}

// Entry describes one node.
type Entry struct {
	Name   string
	Qid    Qid
	Mode   uint32
	Length uint64
	Owner  string
	Time   time.Time
}

// Options configures a Namespace.
type Options struct {
	// Owner is reported as the user and group of every node.
	Owner string
	// Time is reported as the access and modification time of every node.
	// Zero means the time New is called.
	Time time.Time
}

// Namespace serves the tree of one World. Like the World it is not safe
// for concurrent use.
type Namespace struct {
	world *wm.World
	owner string
	time  time.Time
}

// New returns the namespace of w.
func New(w *wm.World, opts Options) *Namespace {
	owner := opts.Owner
	if owner == "" {
		owner = "none"
	}
	t := opts.Time
	if t.IsZero() {
		t = time.Now()
	}
	return &Namespace{world: w, owner: owner, time: t}
}

// Root returns the Qid of "/".
func (n *Namespace) Root() Qid { return Qid{Kind: KindRoot} }

// Resolve looks up name in the directory parent. With create set, the name
// "new" under /tag and /bar makes a new view or label.
func (n *Namespace) Resolve(parent Qid, name string, create bool) (Qid, error) {
	if !n.valid(parent) {
		return Qid{}, ErrNotFound
	}
	if !parent.IsDir() {
		return Qid{}, ErrNotDir
	}
	for _, k := range static[parent.Kind] {
		if kindNames[k] == name {
			q := parent
			q.Kind = k
			return q, nil
		}
	}

	w := n.world
	switch parent.Kind {
	case KindKeys:
		if k := w.KeyByName(name); k != nil {
			return Qid{Kind: KindKey, ID1: k.ID()}, nil
		}
	case KindTags:
		if v := w.ViewByName(name); v != nil {
			return Qid{Kind: KindTagName, ID1: v.ID()}, nil
		}
	case KindBar:
		if name == "new" && create {
			l, err := w.CreateLabel()
			if err != nil {
				return Qid{}, err
			}
			return labelQid(l), nil
		}
		if l, ok := at(w.Labels(), name); ok {
			return labelQid(l), nil
		}
	case KindTagDir:
		if v, ok := at(w.Views(), name); ok {
			return viewQid(v), nil
		}
		switch name {
		case "sel":
			if v := w.SelectedView(); v != nil {
				return viewQid(v), nil
			}
			return Qid{}, ErrNotFound
		case "new":
			if create {
				v, err := w.CreateView(n.freeViewName())
				if err != nil {
					return Qid{}, err
				}
				return viewQid(v), nil
			}
		}
		if _, ok := position(name); !ok {
			if v := w.ViewByName(name); v != nil {
				return viewQid(v), nil
			}
		}
	case KindView:
		v := w.ViewByID(parent.ID1)
		switch name {
		case "sel":
			return areaQid(v, v.SelectedArea()), nil
		case "float":
			return areaQid(v, v.Areas()[0]), nil
		}
		if a, ok := at(v.Areas(), name); ok {
			return areaQid(v, a), nil
		}
	case KindArea:
		a := w.Area(parent.ID2)
		if name == "sel" {
			if f := a.SelectedFrame(); f != nil {
				return frameQid(parent, f), nil
			}
			return Qid{}, ErrNotFound
		}
		if f, ok := at(a.Frames(), name); ok {
			return frameQid(parent, f), nil
		}
	}
	return Qid{}, ErrNotFound
}

func labelQid(l *wm.Label) Qid { return Qid{Kind: KindLabel, ID1: l.ID()} }
func viewQid(v *wm.View) Qid   { return Qid{Kind: KindView, ID1: v.ID()} }

func areaQid(v *wm.View, a *wm.Area) Qid {
	return Qid{Kind: KindArea, ID1: v.ID(), ID2: a.ID()}
}

func frameQid(area Qid, f *wm.Frame) Qid {
	return Qid{Kind: KindFrame, ID1: area.ID1, ID2: area.ID2, ID3: f.ID()}
}

// position parses a decimal directory name.
func position(name string) (int, bool) {
	if name == "" || strings.Trim(name, "0123456789") != "" {
		return 0, false
	}
	i, err := strconv.Atoi(name)
	if err != nil {
		return 0, false
	}
	return i, true
}

func at[T any](items []T, name string) (T, bool) {
	i, ok := position(name)
	if !ok {
		var zero T
		return zero, false
	}
	return registry.At(items, i)
}

func (n *Namespace) freeViewName() string {
	for i := 1; ; i++ {
		name := strconv.Itoa(i)
		if n.world.ViewByName(name) == nil {
			return name
		}
	}
}

// valid reports whether every entity q refers to still exists and the ids
// still nest.
func (n *Namespace) valid(q Qid) bool {
	if _, ok := kindPerms[q.Kind]; !ok {
		return false
	}
	w := n.world
	switch q.Kind {
	case KindKey:
		return w.KeyByID(q.ID1) != nil
	case KindLabel, KindLabelData, KindLabelColors:
		return w.LabelByID(q.ID1) != nil
	case KindTagName, KindView, KindViewCtl:
		return w.ViewByID(q.ID1) != nil
	case KindArea, KindAreaCtl, KindAreaMode:
		_, ok := n.area(q)
		return ok
	case KindFrame, KindFrameName, KindFrameClass, KindFrameTags, KindFrameGeom, KindFrameCtl:
		_, ok := n.frame(q)
		return ok
	}
	return true
}

func (n *Namespace) area(q Qid) (*wm.Area, bool) {
	v := n.world.ViewByID(q.ID1)
	a := n.world.Area(q.ID2)
	if v == nil || a == nil || a.ViewID() != v.ID() {
		return nil, false
	}
	return a, true
}

func (n *Namespace) frame(q Qid) (*wm.Frame, bool) {
	if _, ok := n.area(q); !ok {
		return nil, false
	}
	f := n.world.Frame(q.ID3)
	if f == nil || f.AreaID() != q.ID2 {
		return nil, false
	}
	return f, true
}

func (n *Namespace) client(q Qid) (*wm.Client, *wm.Frame, bool) {
	f, ok := n.frame(q)
	if !ok {
		return nil, nil, false
	}
	c := n.world.Client(f.ClientID())
	return c, f, c != nil
}

// name returns the directory entry name of a valid q.
func (n *Namespace) name(q Qid) string {
	w := n.world
	switch q.Kind {
	case KindKey:
		return w.KeyByID(q.ID1).Name()
	case KindTagName:
		return w.ViewByID(q.ID1).Name()
	case KindLabel:
		return strconv.Itoa(registry.ByID(w.Labels(), q.ID1))
	case KindView:
		return strconv.Itoa(registry.ByID(w.Views(), q.ID1))
	case KindArea:
		a, _ := n.area(q)
		return strconv.Itoa(w.AreaIndex(a))
	case KindFrame:
		a, _ := n.area(q)
		return strconv.Itoa(registry.ByID(a.Frames(), q.ID3))
	}
	return kindNames[q.Kind]
}

// Describe returns the entry of q. The length of a file is the size of
// its current contents.
func (n *Namespace) Describe(q Qid) (Entry, error) {
	if !n.valid(q) {
		return Entry{}, ErrNotFound
	}
	e := Entry{
		Name:  n.name(q),
		Qid:   q,
		Mode:  q.Perm(),
		Owner: n.owner,
		Time:  n.time,
	}
	if !q.IsDir() {
		e.Length = uint64(len(n.text(q)))
	}
	return e, nil
}

// Enumerate lists a directory: static entries first, then one entry per
// entity in order. The selectors sel and new are never listed.
func (n *Namespace) Enumerate(dir Qid) ([]Entry, error) {
	if !n.valid(dir) {
		return nil, ErrNotFound
	}
	if !dir.IsDir() {
		return nil, ErrNotDir
	}
	var qids []Qid
	for _, k := range static[dir.Kind] {
		q := dir
		q.Kind = k
		qids = append(qids, q)
	}

	w := n.world
	switch dir.Kind {
	case KindKeys:
		for _, k := range w.Keys() {
			qids = append(qids, Qid{Kind: KindKey, ID1: k.ID()})
		}
	case KindTags:
		seen := make(map[string]bool)
		for _, v := range w.Views() {
			if !seen[v.Name()] {
				seen[v.Name()] = true
				qids = append(qids, Qid{Kind: KindTagName, ID1: v.ID()})
			}
		}
	case KindBar:
		for _, l := range w.Labels() {
			qids = append(qids, labelQid(l))
		}
	case KindTagDir:
		for _, v := range w.Views() {
			qids = append(qids, viewQid(v))
		}
	case KindView:
		v := w.ViewByID(dir.ID1)
		for _, a := range v.Areas() {
			qids = append(qids, areaQid(v, a))
		}
	case KindArea:
		a, _ := n.area(dir)
		for _, f := range a.Frames() {
			qids = append(qids, frameQid(dir, f))
		}
	}

	out := make([]Entry, 0, len(qids))
	for _, q := range qids {
		e, err := n.Describe(q)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

// Read returns the contents of a file.
func (n *Namespace) Read(q Qid) ([]byte, error) {
	if !n.valid(q) {
		return nil, ErrNotFound
	}
	if q.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", ErrPermission, n.name(q))
	}
	return []byte(n.text(q)), nil
}

func (n *Namespace) text(q Qid) string {
	w := n.world
	def := w.Defaults()
	switch q.Kind {
	case KindBorder:
		return strconv.Itoa(def.Border)
	case KindSnap:
		return strconv.Itoa(def.Snap)
	case KindFont:
		return def.Font
	case KindSelColors:
		return def.SelColors
	case KindNormColors:
		return def.NormColors
	case KindColWidth:
		return strconv.Itoa(def.ColWidth)
	case KindColMode:
		return def.ColMode.String()
	case KindExpand:
		return strconv.Itoa(w.Expand())
	case KindLabelData:
		return w.LabelByID(q.ID1).Data()
	case KindLabelColors:
		return w.LabelByID(q.ID1).Colors()
	case KindTagName:
		return n.viewClients(w.ViewByID(q.ID1))
	case KindAreaMode:
		a, _ := n.area(q)
		return a.Mode().String()
	case KindFrameName, KindFrameClass, KindFrameTags, KindFrameGeom:
		c, f, _ := n.client(q)
		switch q.Kind {
		case KindFrameName:
			return c.Name()
		case KindFrameClass:
			return c.Class()
		case KindFrameTags:
			return c.TagString()
		default:
			return f.Rect().String()
		}
	}
	return ""
}

// viewClients lists the ids of the clients shown by v, one per line.
func (n *Namespace) viewClients(v *wm.View) string {
	var b strings.Builder
	for _, a := range v.Areas() {
		for _, f := range a.Frames() {
			fmt.Fprintf(&b, "%d\n", f.ClientID())
		}
	}
	return b.String()
}

// Write applies data to a file. One write carries one complete value; a
// trailing newline is ignored.
func (n *Namespace) Write(q Qid, data []byte) error {
	if !n.valid(q) {
		return ErrNotFound
	}
	w := n.world
	s := strings.TrimSuffix(string(data), "\n")
	switch q.Kind {
	case KindCtl, KindViewCtl, KindAreaCtl, KindFrameCtl:
		return n.ctl(q, string(data))
	case KindBorder:
		return setValue(s, w.SetBorder)
	case KindSnap:
		return setValue(s, w.SetSnap)
	case KindColWidth:
		return setValue(s, w.SetColWidth)
	case KindExpand:
		return setValue(s, w.SetExpand)
	case KindFont:
		return w.SetFont(s)
	case KindSelColors:
		return w.SetSelColors(s)
	case KindNormColors:
		return w.SetNormColors(s)
	case KindColMode:
		m, err := wm.ParseMode(s)
		if err != nil {
			return err
		}
		return w.SetColMode(m)
	case KindLabelData:
		w.SetLabelData(w.LabelByID(q.ID1), s)
		return nil
	case KindLabelColors:
		return w.SetLabelColors(w.LabelByID(q.ID1), s)
	case KindAreaMode:
		m, err := wm.ParseMode(s)
		if err != nil {
			return err
		}
		a, _ := n.area(q)
		return w.SetMode(a, m)
	case KindFrameTags:
		c, _, _ := n.client(q)
		return w.SetTags(c, s)
	case KindFrameGeom:
		r, err := geom.ParseRect(s)
		if err != nil {
			return fmt.Errorf("%w: %v", wm.ErrBadValue, err)
		}
		_, f, _ := n.client(q)
		return w.SetGeometry(f, r)
	}
	return ErrPermission
}

func setValue(s string, set func(int) error) error {
	v, err := wm.ParseValue(s)
	if err != nil {
		return err
	}
	return set(v)
}

// ctl runs every non-empty line of data as a command. Targets are looked
// up again for each line since a command may move the entity away.
func (n *Namespace) ctl(q Qid, data string) error {
	if len(data) > command.MaxLine {
		return fmt.Errorf("%w: write longer than %d bytes", command.ErrNotSupported, command.MaxLine)
	}
	for _, line := range strings.Split(data, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		t, err := n.target(q)
		if err != nil {
			return err
		}
		if err := command.Run(n.world, t, line); err != nil {
			return err
		}
	}
	return nil
}

func (n *Namespace) target(q Qid) (command.Target, error) {
	if !n.valid(q) {
		return command.Target{}, ErrNotFound
	}
	switch q.Kind {
	case KindCtl:
		return command.Target{Context: command.RootContext}, nil
	case KindViewCtl:
		return command.Target{Context: command.ViewContext, View: n.world.ViewByID(q.ID1)}, nil
	case KindAreaCtl:
		a, _ := n.area(q)
		return command.Target{Context: command.AreaContext, Area: a}, nil
	default:
		f, _ := n.frame(q)
		return command.Target{Context: command.ClientContext, Frame: f}, nil
	}
}

// Create makes a view under /tag, a key binding under /keys or a label
// under /bar.
func (n *Namespace) Create(dir Qid, name string) (Qid, error) {
	if !n.valid(dir) {
		return Qid{}, ErrNotFound
	}
	if name == "" || name == "." || name == ".." || strings.ContainsRune(name, '/') {
		return Qid{}, ErrIllegalName
	}
	w := n.world
	switch dir.Kind {
	case KindTagDir:
		if tags, err := wm.ParseTags(name); err != nil || len(tags) != 1 || tags[0] != name {
			return Qid{}, fmt.Errorf("%w: view name %q", wm.ErrBadValue, name)
		}
		if w.ViewByName(name) != nil {
			return Qid{}, fmt.Errorf("%w: view %q", wm.ErrExists, name)
		}
		v, err := w.CreateView(name)
		if err != nil {
			return Qid{}, err
		}
		return viewQid(v), nil
	case KindKeys:
		k, err := w.CreateKey(name)
		if err != nil {
			return Qid{}, err
		}
		return Qid{Kind: KindKey, ID1: k.ID()}, nil
	case KindBar:
		l, err := w.CreateLabel()
		if err != nil {
			return Qid{}, err
		}
		return labelQid(l), nil
	}
	return Qid{}, ErrPermission
}

// Remove destroys the view, label or key binding q names.
func (n *Namespace) Remove(q Qid) error {
	if !n.valid(q) {
		return ErrNotFound
	}
	w := n.world
	switch q.Kind {
	case KindView:
		return w.DestroyView(w.ViewByID(q.ID1))
	case KindLabel:
		return w.DestroyLabel(w.LabelByID(q.ID1))
	case KindKey:
		return w.DestroyKey(w.KeyByID(q.ID1))
	}
	return ErrPermission
}

// IsEvent reports whether q is the event file.
func IsEvent(q Qid) bool { return q.Kind == KindEvent }
