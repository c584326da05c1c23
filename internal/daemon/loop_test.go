package daemon

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"strings"
	"testing"
	"time"

	"9fans.net/go/plan9"
	"9fans.net/go/plan9/client"
	"github.com/google/go-cmp/cmp"

	"github.com/acmnu/wmii/internal/geom"
	"github.com/acmnu/wmii/internal/namespace"
	"github.com/acmnu/wmii/internal/p9srv"
	"github.com/acmnu/wmii/internal/platform"
	"github.com/acmnu/wmii/internal/platform/platformtest"
	"github.com/acmnu/wmii/internal/wm"
)

func discard() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

type harness struct {
	world   *wm.World
	surface *platformtest.Surface
	loop    *Loop
	reqs    chan p9srv.Request
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	w, s, _ := platformtest.NewWorld(t)
	srv := p9srv.NewServer(namespace.New(w, namespace.Options{Owner: "glenda"}), discard())
	w.SetEventSink(srv)
	reqs := make(chan p9srv.Request)
	h := &harness{world: w, surface: s, reqs: reqs}
	h.loop = New(Config{
		World:     w,
		Server:    srv,
		Requests:  reqs,
		Events:    s.Events(),
		Reconcile: -1,
		Logger:    discard(),
	})
	return h
}

func (h *harness) run(t *testing.T, ctx context.Context) <-chan error {
	t.Helper()
	done := make(chan error, 1)
	go func() { done <- h.loop.Run(ctx) }()
	return done
}

func (h *harness) mount(t *testing.T) *client.Fsys {
	t.Helper()
	serverSide, clientSide := net.Pipe()
	p9srv.Serve(context.Background(), serverSide, "pipe", h.reqs, discard())
	conn, err := client.NewConn(clientSide)
	if err != nil {
		t.Fatalf("NewConn: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	fs, err := conn.Attach(nil, "glenda", "")
	if err != nil {
		t.Fatalf("Attach: %v", err)
	}
	return fs
}

func wait(t *testing.T, done <-chan error) error {
	t.Helper()
	select {
	case err := <-done:
		return err
	case <-time.After(5 * time.Second):
		t.Fatal("loop did not stop")
		return nil
	}
}

func TestLoopQuitReleasesClients(t *testing.T) {
	h := newHarness(t)
	done := h.run(t, context.Background())
	fs := h.mount(t)

	ev, err := fs.Open("event", plan9.OREAD)
	if err != nil {
		t.Fatalf("open event: %v", err)
	}

	info := h.surface.AddWindow(geom.Rect{Width: 100, Height: 80})
	h.surface.Send(platform.Event{Kind: platform.EventMapRequest, Window: info.ID})

	var got strings.Builder
	buf := make([]byte, 512)
	for !strings.Contains(got.String(), "CC 1\n") {
		n, err := ev.Read(buf)
		if err != nil {
			t.Fatalf("read event: %v", err)
		}
		got.Write(buf[:n])
	}

	ctl, err := fs.Open("ctl", plan9.OWRITE)
	if err != nil {
		t.Fatalf("open ctl: %v", err)
	}
	if _, err := ctl.Write([]byte("quit\n")); err != nil {
		t.Fatalf("write quit: %v", err)
	}

	if err := wait(t, done); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if n := len(h.world.Clients()); n != 0 {
		t.Fatalf("%d clients still managed after shutdown", n)
	}
}

func TestLoopStopsOnCancel(t *testing.T) {
	h := newHarness(t)
	ctx, cancel := context.WithCancel(context.Background())
	done := h.run(t, ctx)
	cancel()
	if err := wait(t, done); err != nil {
		t.Fatalf("Run: %v", err)
	}
}

func TestLoopDisplayClosed(t *testing.T) {
	h := newHarness(t)
	events := make(chan platform.Event)
	close(events)
	h.loop.events = events
	if err := wait(t, h.run(t, context.Background())); !errors.Is(err, ErrDisplayClosed) {
		t.Fatalf("Run = %v, want ErrDisplayClosed", err)
	}
}

func TestReconcileDropsVanishedClients(t *testing.T) {
	w, s, _ := platformtest.NewWorld(t)
	kept := platformtest.Manage(t, w, s)
	gone := platformtest.Manage(t, w, s)
	delete(s.Known, gone.Window())

	r := NewReconciler(w, s, discard())
	if n := r.Reconcile(); n != 1 {
		t.Fatalf("Reconcile = %d, want 1", n)
	}
	var ids []platform.WindowID
	for _, c := range w.Clients() {
		ids = append(ids, c.Window())
	}
	if diff := cmp.Diff([]platform.WindowID{kept.Window()}, ids); diff != "" {
		t.Fatalf("clients (-want +got):\n%s", diff)
	}
	if n := r.Reconcile(); n != 0 {
		t.Fatalf("second Reconcile = %d, want 0", n)
	}
}

func TestReconcileKeepsReparentedClients(t *testing.T) {
	w, s, _ := platformtest.NewWorld(t)
	a := platformtest.Manage(t, w, s)
	b := platformtest.Manage(t, w, s)
	for _, c := range []*wm.Client{a, b} {
		if _, ok := s.Parent[c.Window()]; !ok {
			t.Fatalf("client window 0x%x was not reparented", c.Window())
		}
	}
	if wins, _ := s.Windows(); len(wins) != 0 {
		t.Fatalf("root children = %d, want 0 once every client is framed", len(wins))
	}

	r := NewReconciler(w, s, discard())
	if n := r.Reconcile(); n != 0 {
		t.Fatalf("Reconcile = %d, want 0", n)
	}
	if got := len(w.Clients()); got != 2 {
		t.Fatalf("clients = %d, want 2", got)
	}
	if _, err := s.Info(a.Window()); err != nil {
		t.Fatalf("client window destroyed: %v", err)
	}
}

func TestSeed(t *testing.T) {
	w, s, _ := platformtest.NewWorld(t)
	labels := []Label{{Data: "clock"}, {Data: "load", Colors: "#000000 #ffffff #ff0000"}}
	if err := Seed(w, []string{"Mod1-j", "Mod1-k", "Mod1-j"}, labels, discard()); err != nil {
		t.Fatalf("Seed: %v", err)
	}
	var keys []string
	for _, k := range w.Keys() {
		keys = append(keys, k.Name())
	}
	if diff := cmp.Diff([]string{"Mod1-j", "Mod1-k"}, keys); diff != "" {
		t.Fatalf("keys (-want +got):\n%s", diff)
	}
	if !s.Grabbed["Mod1-k"] {
		t.Fatal("Mod1-k not grabbed")
	}
	if got := w.Labels()[1].Colors(); got != labels[1].Colors {
		t.Fatalf("label colors = %q", got)
	}

	err := Seed(w, nil, []Label{{Data: "x", Colors: "red"}}, discard())
	if !errors.Is(err, wm.ErrBadColor) {
		t.Fatalf("Seed bad colors = %v, want ErrBadColor", err)
	}
}
