package p9srv

import (
	"encoding/binary"
	"io"
	"log/slog"
	"testing"

	"9fans.net/go/plan9"
	"github.com/google/go-cmp/cmp"

	"github.com/acmnu/wmii/internal/namespace"
	"github.com/acmnu/wmii/internal/platform/platformtest"
	"github.com/acmnu/wmii/internal/wm"
)

type nopRWC struct{}

func (nopRWC) Read([]byte) (int, error)    { return 0, io.EOF }
func (nopRWC) Write(b []byte) (int, error) { return len(b), nil }
func (nopRWC) Close() error                { return nil }

type fixture struct {
	t    *testing.T
	srv  *Server
	w    *wm.World
	s    *platformtest.Surface
	conn *Conn
	tag  uint16
}

func discard() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func newFixture(t *testing.T) *fixture {
	t.Helper()
	w, s, _ := platformtest.NewWorld(t)
	srv := NewServer(namespace.New(w, namespace.Options{Owner: "glenda"}), discard())
	w.SetEventSink(srv)
	fx := &fixture{t: t, srv: srv, w: w, s: s, conn: newConn(nopRWC{}, "test", discard())}
	fx.ok(&plan9.Fcall{Type: plan9.Tversion, Msize: 65536, Version: "9P2000"})
	fx.ok(&plan9.Fcall{Type: plan9.Tattach, Fid: 0, Afid: plan9.NOFID, Uname: "glenda"})
	return fx
}

// rpc sends f and returns the reply, or nil when the server sent none.
func (fx *fixture) rpc(f *plan9.Fcall) *plan9.Fcall {
	fx.t.Helper()
	fx.tag++
	f.Tag = fx.tag
	fx.srv.Handle(Request{Conn: fx.conn, Fcall: f})
	return fx.reply()
}

func (fx *fixture) reply() *plan9.Fcall {
	select {
	case r := <-fx.conn.out:
		return r
	default:
		return nil
	}
}

func (fx *fixture) ok(f *plan9.Fcall) *plan9.Fcall {
	fx.t.Helper()
	r := fx.rpc(f)
	if r == nil {
		fx.t.Fatalf("type %d: no reply", f.Type)
	}
	if r.Type == plan9.Rerror {
		fx.t.Fatalf("type %d: %s", f.Type, r.Ename)
	}
	if r.Type != f.Type+1 || r.Tag != f.Tag {
		fx.t.Fatalf("reply type %d tag %d to type %d tag %d", r.Type, r.Tag, f.Type, f.Tag)
	}
	return r
}

func (fx *fixture) fail(f *plan9.Fcall, ename string) {
	fx.t.Helper()
	r := fx.rpc(f)
	if r == nil || r.Type != plan9.Rerror {
		fx.t.Fatalf("type %d: reply %v, want error %q", f.Type, r, ename)
	}
	if r.Ename != ename && !hasPrefix(r.Ename, ename+":") {
		fx.t.Fatalf("type %d: error %q, want %q", f.Type, r.Ename, ename)
	}
}

func hasPrefix(s, p string) bool { return len(s) >= len(p) && s[:len(p)] == p }

func (fx *fixture) walk(fid, newfid uint32, names ...string) *plan9.Fcall {
	fx.t.Helper()
	return fx.ok(&plan9.Fcall{Type: plan9.Twalk, Fid: fid, Newfid: newfid, Wname: names})
}

func (fx *fixture) openAt(fid uint32, mode uint8, names ...string) *plan9.Fcall {
	fx.t.Helper()
	fx.walk(0, fid, names...)
	return fx.ok(&plan9.Fcall{Type: plan9.Topen, Fid: fid, Mode: mode})
}

func (fx *fixture) read(fid uint32, offset uint64) string {
	fx.t.Helper()
	r := fx.ok(&plan9.Fcall{Type: plan9.Tread, Fid: fid, Offset: offset, Count: 8192})
	return string(r.Data)
}

func TestVersion(t *testing.T) {
	fx := newFixture(t)
	r := fx.ok(&plan9.Fcall{Type: plan9.Tversion, Msize: 65536, Version: "9P2000.u"})
	if r.Msize != MaxMsize || r.Version != "9P2000" {
		t.Fatalf("Rversion msize=%d version=%q", r.Msize, r.Version)
	}
	// The new version dropped fid 0.
	fx.fail(&plan9.Fcall{Type: plan9.Tstat, Fid: 0}, "fid not found")

	fx.fail(&plan9.Fcall{Type: plan9.Tversion, Msize: 8192, Version: "9P1999"}, "9P version not supported")
	fx.fail(&plan9.Fcall{Type: plan9.Tattach, Fid: 0, Afid: plan9.NOFID}, "version not negotiated")

	r = fx.ok(&plan9.Fcall{Type: plan9.Tversion, Msize: 1024, Version: "9P2000"})
	if r.Msize != 1024 {
		t.Fatalf("msize = %d, want 1024", r.Msize)
	}
	fx.ok(&plan9.Fcall{Type: plan9.Tattach, Fid: 0, Afid: plan9.NOFID})
	open := fx.openAt(1, plan9.OREAD, "def", "border")
	if open.Iounit != 1000 {
		t.Fatalf("iounit = %d, want 1000", open.Iounit)
	}
}

func TestUnsupported(t *testing.T) {
	fx := newFixture(t)
	fx.fail(&plan9.Fcall{Type: plan9.Tauth, Afid: 5}, "function not supported")
	fx.fail(&plan9.Fcall{Type: plan9.Twstat, Fid: 0}, "function not supported")
	fx.fail(&plan9.Fcall{Type: plan9.Tattach, Fid: 0, Afid: plan9.NOFID}, "fid in use")
}

func TestWalk(t *testing.T) {
	fx := newFixture(t)

	r := fx.walk(0, 1, "def", "border")
	if len(r.Wqid) != 2 || r.Wqid[0].Type != plan9.QTDIR || r.Wqid[1].Type != 0 {
		t.Fatalf("wqid = %v", r.Wqid)
	}
	if got := namespace.QidFromPath(r.Wqid[1].Path).Kind; got != namespace.KindBorder {
		t.Fatalf("kind = %d, want border", got)
	}

	r = fx.walk(0, 2, "def", "..", "tag")
	if got := namespace.QidFromPath(r.Wqid[2].Path).Kind; got != namespace.KindTagDir {
		t.Fatalf("kind = %d, want tag", got)
	}
	fx.walk(0, 3, "..")

	// Partial walk: qids so far, newfid left unbound.
	r = fx.walk(0, 4, "def", "nope")
	if len(r.Wqid) != 1 {
		t.Fatalf("partial walk wqid = %v", r.Wqid)
	}
	fx.fail(&plan9.Fcall{Type: plan9.Tstat, Fid: 4}, "fid not found")

	fx.fail(&plan9.Fcall{Type: plan9.Twalk, Fid: 0, Newfid: 5, Wname: []string{"nope"}}, "file not found")
	fx.fail(&plan9.Fcall{Type: plan9.Twalk, Fid: 9, Newfid: 5}, "fid not found")
	fx.fail(&plan9.Fcall{Type: plan9.Twalk, Fid: 0, Newfid: 1}, "fid in use")
	names := make([]string, MaxWalk+1)
	for i := range names {
		names[i] = ".."
	}
	fx.fail(&plan9.Fcall{Type: plan9.Twalk, Fid: 0, Newfid: 5, Wname: names}, "too many names")

	// Walking a fid onto itself rebinds it.
	fx.walk(1, 1)
	fx.walk(2, 2, "new")
	if len(fx.w.Views()) != 1 || fx.w.Views()[0].Name() != "1" {
		t.Fatalf("walking new did not create view 1")
	}

	fx.ok(&plan9.Fcall{Type: plan9.Topen, Fid: 1, Mode: plan9.OREAD})
	fx.fail(&plan9.Fcall{Type: plan9.Twalk, Fid: 1, Newfid: 6}, "fid is open")
}

func TestWalkThroughNewUndoneOnFailure(t *testing.T) {
	fx := newFixture(t)

	r := fx.walk(0, 1, "tag", "new", "nope")
	if len(r.Wqid) != 2 {
		t.Fatalf("partial walk wqid = %v", r.Wqid)
	}
	if got := len(fx.w.Views()); got != 0 {
		t.Fatalf("views after failed walk = %d, want 0", got)
	}
	fx.fail(&plan9.Fcall{Type: plan9.Tstat, Fid: 1}, "fid not found")

	r = fx.walk(0, 2, "bar", "new", "nope")
	if len(r.Wqid) != 2 {
		t.Fatalf("partial walk wqid = %v", r.Wqid)
	}
	if got := len(fx.w.Labels()); got != 0 {
		t.Fatalf("labels after failed walk = %d, want 0", got)
	}

	fx.walk(0, 3, "bar", "new", "data")
	if got := len(fx.w.Labels()); got != 1 {
		t.Fatalf("labels after walk to bar/new/data = %d, want 1", got)
	}
	fx.walk(0, 4, "tag", "new", "ctl")
	if got := len(fx.w.Views()); got != 1 {
		t.Fatalf("views after walk to tag/new/ctl = %d, want 1", got)
	}
}

func TestOpenModes(t *testing.T) {
	fx := newFixture(t)
	fx.walk(0, 1, "ctl")
	fx.fail(&plan9.Fcall{Type: plan9.Topen, Fid: 1, Mode: plan9.OREAD}, "permission denied")
	fx.fail(&plan9.Fcall{Type: plan9.Topen, Fid: 1, Mode: plan9.OWRITE | 0x40}, "mode not supported")
	r := fx.ok(&plan9.Fcall{Type: plan9.Topen, Fid: 1, Mode: plan9.OWRITE})
	if r.Iounit != MaxIounit {
		t.Fatalf("iounit = %d, want %d", r.Iounit, MaxIounit)
	}
	fx.fail(&plan9.Fcall{Type: plan9.Topen, Fid: 1, Mode: plan9.OWRITE}, "fid is open")
	fx.fail(&plan9.Fcall{Type: plan9.Tread, Fid: 1, Count: 10}, "permission denied")

	fx.walk(0, 2, "def")
	fx.fail(&plan9.Fcall{Type: plan9.Topen, Fid: 2, Mode: plan9.OWRITE}, "permission denied")
	fx.walk(0, 3, "event")
	fx.fail(&plan9.Fcall{Type: plan9.Topen, Fid: 3, Mode: plan9.ORDWR}, "permission denied")
	fx.fail(&plan9.Fcall{Type: plan9.Tread, Fid: 3, Count: 10}, "fid not open")
}

func TestReadWriteFile(t *testing.T) {
	fx := newFixture(t)
	fx.openAt(1, plan9.ORDWR, "def", "border")
	if got := fx.read(1, 0); got != "2" {
		t.Fatalf("border = %q, want 2", got)
	}
	r := fx.ok(&plan9.Fcall{Type: plan9.Twrite, Fid: 1, Data: []byte("5\n")})
	if r.Count != 2 {
		t.Fatalf("count = %d, want 2", r.Count)
	}
	if got := fx.read(1, 0); got != "5" {
		t.Fatalf("border = %q, want 5", got)
	}
	if got := fx.read(1, 1); got != "" {
		t.Fatalf("read past end = %q", got)
	}
	fx.fail(&plan9.Fcall{Type: plan9.Twrite, Fid: 1, Data: []byte("wide")}, "bad value")

	fx.openAt(2, plan9.OWRITE, "ctl")
	fx.fail(&plan9.Fcall{Type: plan9.Twrite, Fid: 2, Data: []byte("dance")}, "command not supported")
	fx.ok(&plan9.Fcall{Type: plan9.Twrite, Fid: 2, Data: []byte("select web\n")})
	if fx.w.SelectedView().Name() != "web" {
		t.Fatalf("view = %q", fx.w.SelectedView().Name())
	}
}

// dirNames decodes a directory read.
func dirNames(t *testing.T, b []byte) []string {
	t.Helper()
	var out []string
	for len(b) > 0 {
		n := int(binary.LittleEndian.Uint16(b)) + 2
		d, err := plan9.UnmarshalDir(b[:n])
		if err != nil {
			t.Fatalf("UnmarshalDir: %v", err)
		}
		out = append(out, d.Name)
		b = b[n:]
	}
	return out
}

func TestReadDirectory(t *testing.T) {
	fx := newFixture(t)
	fx.openAt(1, plan9.OREAD)
	all := fx.ok(&plan9.Fcall{Type: plan9.Tread, Fid: 1, Count: 8192}).Data
	if diff := cmp.Diff([]string{"ctl", "event", "def", "keys", "tags", "bar", "tag"}, dirNames(t, all)); diff != "" {
		t.Fatalf("root (-want +got):\n%s", diff)
	}

	first := int(binary.LittleEndian.Uint16(all)) + 2
	fx.fail(&plan9.Fcall{Type: plan9.Tread, Fid: 1, Count: uint32(first - 1)}, "count too small")
	r := fx.ok(&plan9.Fcall{Type: plan9.Tread, Fid: 1, Count: uint32(first + 1)})
	if diff := cmp.Diff([]string{"ctl"}, dirNames(t, r.Data)); diff != "" {
		t.Fatalf("short read (-want +got):\n%s", diff)
	}
	r = fx.ok(&plan9.Fcall{Type: plan9.Tread, Fid: 1, Offset: uint64(first), Count: 8192})
	if got := dirNames(t, r.Data); len(got) != 6 || got[0] != "event" {
		t.Fatalf("read from offset = %v", got)
	}
	if got := fx.ok(&plan9.Fcall{Type: plan9.Tread, Fid: 1, Offset: uint64(len(all)), Count: 8192}).Data; len(got) != 0 {
		t.Fatalf("read at end returned %d bytes", len(got))
	}

	st := fx.ok(&plan9.Fcall{Type: plan9.Tstat, Fid: 1})
	d, err := plan9.UnmarshalDir(st.Stat)
	if err != nil {
		t.Fatalf("UnmarshalDir: %v", err)
	}
	if d.Name != "/" || d.Mode&plan9.DMDIR == 0 || d.Uid != "glenda" {
		t.Fatalf("root stat = %v", d)
	}
}

func TestEventBroadcast(t *testing.T) {
	fx := newFixture(t)
	fx.openAt(1, plan9.OREAD, "event")
	fx.openAt(2, plan9.OREAD, "event")

	if r := fx.rpc(&plan9.Fcall{Type: plan9.Tread, Fid: 1, Count: 8192}); r != nil {
		t.Fatalf("read of empty event file answered: %v", r)
	}
	tag1 := fx.tag
	if r := fx.rpc(&plan9.Fcall{Type: plan9.Tread, Fid: 2, Count: 8192}); r != nil {
		t.Fatalf("read of empty event file answered: %v", r)
	}
	tag2 := fx.tag

	platformtest.Manage(t, fx.w, fx.s)
	got := map[uint16]string{}
	for r := fx.reply(); r != nil; r = fx.reply() {
		got[r.Tag] = string(r.Data)
	}
	if diff := cmp.Diff(map[uint16]string{tag1: "PN 1\n", tag2: "PN 1\n"}, got); diff != "" {
		t.Fatalf("parked replies (-want +got):\n%s", diff)
	}
	for _, fid := range []uint32{1, 2} {
		if got := fx.read(fid, 0); got != "CF 1\nCC 1\n" {
			t.Fatalf("fid %d backlog = %q", fid, got)
		}
	}
}

func TestEventQueueBound(t *testing.T) {
	fx := newFixture(t)
	fx.openAt(1, plan9.OREAD, "event")
	for i := 0; i < MaxQueuedEvents+10; i++ {
		fx.srv.WriteEvent("K x\n")
	}
	if got := len(fx.srv.readers[0].items); got != MaxQueuedEvents {
		t.Fatalf("queued = %d, want %d", got, MaxQueuedEvents)
	}
	r := fx.ok(&plan9.Fcall{Type: plan9.Tread, Fid: 1, Count: 6})
	if string(r.Data) != "K x\n" {
		t.Fatalf("data = %q", r.Data)
	}
	r = fx.ok(&plan9.Fcall{Type: plan9.Tread, Fid: 1, Count: 2})
	if string(r.Data) != "K " {
		t.Fatalf("short read = %q", r.Data)
	}
}

func TestFlushAndClunkDropParkedReads(t *testing.T) {
	fx := newFixture(t)
	fx.openAt(1, plan9.OREAD, "event")
	fx.openAt(2, plan9.OREAD, "event")
	fx.rpc(&plan9.Fcall{Type: plan9.Tread, Fid: 1, Count: 100})
	parked := fx.tag
	fx.rpc(&plan9.Fcall{Type: plan9.Tread, Fid: 2, Count: 100})

	fx.ok(&plan9.Fcall{Type: plan9.Tflush, Oldtag: parked})
	fx.ok(&plan9.Fcall{Type: plan9.Tclunk, Fid: 2})
	fx.srv.WriteEvent("K Mod1-j\n")
	if r := fx.reply(); r != nil {
		t.Fatalf("dropped read answered: %v", r)
	}
	if len(fx.srv.readers) != 1 {
		t.Fatalf("readers = %d, want 1", len(fx.srv.readers))
	}
	if got := fx.read(1, 0); got != "K Mod1-j\n" {
		t.Fatalf("event = %q", got)
	}
	fx.fail(&plan9.Fcall{Type: plan9.Tclunk, Fid: 2}, "fid not found")
}

func TestCreateAndRemove(t *testing.T) {
	fx := newFixture(t)
	fx.walk(0, 1, "tag")
	r := fx.ok(&plan9.Fcall{Type: plan9.Tcreate, Fid: 1, Name: "web", Perm: plan9.DMDIR | 0o700, Mode: plan9.OREAD})
	if r.Qid.Type != plan9.QTDIR {
		t.Fatalf("created qid type = %#x", r.Qid.Type)
	}
	if v := fx.w.ViewByName("web"); v == nil {
		t.Fatal("view web not created")
	}
	fx.walk(0, 2, "tag")
	fx.fail(&plan9.Fcall{Type: plan9.Tcreate, Fid: 2, Name: "..", Mode: plan9.OREAD}, "illegal file name")
	fx.walk(0, 3, "def")
	fx.fail(&plan9.Fcall{Type: plan9.Tcreate, Fid: 3, Name: "x", Mode: plan9.OWRITE}, "permission denied")

	fx.walk(0, 4, "bar")
	fx.ok(&plan9.Fcall{Type: plan9.Tcreate, Fid: 4, Name: "clock", Mode: plan9.OREAD})
	fx.openAt(5, plan9.OWRITE, "bar", "0", "data")
	fx.ok(&plan9.Fcall{Type: plan9.Twrite, Fid: 5, Data: []byte("12:00")})
	if got := fx.w.Labels()[0].Data(); got != "12:00" {
		t.Fatalf("label = %q", got)
	}

	c := platformtest.Manage(t, fx.w, fx.s)
	fx.walk(0, 6, "tag", "sel", "sel", "sel", "geom")
	fx.fail(&plan9.Fcall{Type: plan9.Tremove, Fid: 6}, "permission denied")
	fx.fail(&plan9.Fcall{Type: plan9.Tstat, Fid: 6}, "fid not found")
	if fx.w.Client(c.ID()) == nil {
		t.Fatal("refused remove unmanaged the client")
	}

	fx.walk(0, 7, "tag", "sel", "sel", "sel", "name")
	fx.w.Unmanage(c, false)
	fx.fail(&plan9.Fcall{Type: plan9.Tstat, Fid: 7}, "file not found")

	fx.walk(0, 8, "bar", "0")
	fx.ok(&plan9.Fcall{Type: plan9.Tremove, Fid: 8})
	if len(fx.w.Labels()) != 0 {
		t.Fatal("label not removed")
	}
	fx.fail(&plan9.Fcall{Type: plan9.Twrite, Fid: 5, Data: []byte("x")}, "file not found")
}

func TestHangupDropsSession(t *testing.T) {
	fx := newFixture(t)
	fx.openAt(1, plan9.OREAD, "event")
	fx.rpc(&plan9.Fcall{Type: plan9.Tread, Fid: 1, Count: 100})
	fx.srv.Handle(Request{Conn: fx.conn})
	if len(fx.srv.sessions) != 0 || len(fx.srv.readers) != 0 || len(fx.srv.parked) != 0 {
		t.Fatalf("sessions=%d readers=%d parked=%d after hang-up",
			len(fx.srv.sessions), len(fx.srv.readers), len(fx.srv.parked))
	}
}
