package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/matzehuels/lassoview/internal/scene"
	"github.com/matzehuels/lassoview/pkg/data"
	"github.com/matzehuels/lassoview/pkg/errors"
	"github.com/matzehuels/lassoview/pkg/geom"
	"github.com/matzehuels/lassoview/pkg/layout"
	"github.com/matzehuels/lassoview/pkg/render"
	"github.com/matzehuels/lassoview/pkg/selection"
)

func records(n int) []data.Record {
	out := make([]data.Record, n)
	for i := range out {
		out[i] = data.Record{"x": float64(i + 1), "y": float64(i + 1)}
	}
	return out
}

func static(rs []data.Record) Loader {
	return func(context.Context) ([]data.Record, error) { return rs, nil }
}

type failingEngine struct{}

func (failingEngine) Name() string { return "failing" }
func (failingEngine) Layout(context.Context, int, []data.Link) ([]geom.Point, error) {
	return nil, errors.New(errors.ErrCodeProviderFailed, "layout backend down")
}

func newTestServer(t *testing.T, load Loader, engine layout.Engine) (*Server, *httptest.Server) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	s, err := New(ctx, load, Options{
		Scene: scene.Options{
			Palette: selection.DefaultPalette,
			Engine:  engine,
			Links:   3,
			Seed:    1,
		},
		MinDistance: 0,
		CheckOrigin: func(*http.Request) bool { return true },
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return s, ts
}

func dial(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

// next reads messages until one of type typ arrives.
func next(t *testing.T, conn *websocket.Conn, typ string) outbound {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	for {
		var msg outbound
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatalf("waiting for %q: %v", typ, err)
		}
		if msg.Type == typ {
			return msg
		}
	}
}

func pointer(t *testing.T, conn *websocket.Conn, surface, kind string, p geom.Point) {
	t.Helper()
	msg := inbound{Type: msgPointer, Surface: surface, Kind: kind, X: p.X, Y: p.Y}
	if err := conn.WriteJSON(msg); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func lassoFirstTwo(t *testing.T, s *Server, conn *websocket.Conn) {
	t.Helper()
	path := s.Scene().Scatter.ProjectPolygon(geom.Polygon{
		geom.Pt(0.5, 0.5), geom.Pt(2.5, 0.5), geom.Pt(2.5, 2.5), geom.Pt(0.5, 2.5),
	})
	pointer(t, conn, scene.ScatterID, "press", path[0])
	for _, p := range path[1:] {
		pointer(t, conn, scene.ScatterID, "move", p)
	}
	pointer(t, conn, scene.ScatterID, "release", path[len(path)-1])
}

func TestPage(t *testing.T) {
	_, ts := newTestServer(t, static(records(5)), nil)
	resp, err := http.Get(ts.URL + "/")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	page := string(body)

	for _, want := range []string{`id="view_b"`, `id="view_c"`, `id="scatterplot"`, `<circle data-index="4"`} {
		if !strings.Contains(page, want) {
			t.Errorf("page missing %s", want)
		}
	}
	if strings.Contains(page, "<?xml") {
		t.Error("inline SVG should not carry an XML prolog")
	}
}

func TestHealth(t *testing.T) {
	_, ts := newTestServer(t, static(records(5)), nil)
	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var got map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatal(err)
	}
	if got["status"] != "ok" || got["records"] != 5.0 || got["network"] != "disabled" {
		t.Errorf("health = %v", got)
	}
}

func TestViews(t *testing.T) {
	s, ts := newTestServer(t, static(records(5)), layout.Spring{Seed: 1})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := s.Scene().Wait(ctx); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		path   string
		status int
	}{
		{"/views/scatterplot.svg", http.StatusOK},
		{"/views/network.svg", http.StatusOK},
		{"/views/other.svg", http.StatusNotFound},
	}
	for _, tt := range tests {
		resp, err := http.Get(ts.URL + tt.path)
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
		if resp.StatusCode != tt.status {
			t.Errorf("%s: status %d, want %d", tt.path, resp.StatusCode, tt.status)
		}
		if tt.status == http.StatusOK && resp.Header.Get("Content-Type") != "image/svg+xml" {
			t.Errorf("%s: content type %q", tt.path, resp.Header.Get("Content-Type"))
		}
	}
}

func TestSession_LinkedSelection(t *testing.T) {
	s, ts := newTestServer(t, static(records(5)), layout.Spring{Seed: 1})
	conn := dial(t, ts)

	hello := next(t, conn, msgHello)
	if hello.Session == "" {
		t.Error("hello without session id")
	}
	net := next(t, conn, msgNetwork)
	if !strings.HasPrefix(net.SVG, "<svg") || !strings.Contains(net.SVG, `id="network"`) {
		t.Errorf("network svg = %.60q", net.SVG)
	}

	lassoFirstTwo(t, s, conn)
	fills := next(t, conn, msgFills)
	if fills.Source != scene.ScatterID {
		t.Errorf("source = %q", fills.Source)
	}

	p := selection.DefaultPalette
	want := []render.Color{p.Highlight, p.Highlight, p.Dim, p.Dim, p.Dim}
	for _, id := range []string{scene.ScatterID, scene.NetworkID} {
		got := fills.Views[id]
		if len(got) != len(want) {
			t.Fatalf("%s: %d fills, want %d", id, len(got), len(want))
		}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("%s[%d] = %s, want %s", id, i, got[i], want[i])
			}
		}
	}

	// Sessions work on copies; the shared scene keeps its reset colors.
	for _, f := range s.Scene().Scatter.Fills() {
		if f != p.Reset {
			t.Fatalf("shared scatter recolored to %s", f)
		}
	}

	if err := conn.WriteJSON(inbound{Type: msgReset}); err != nil {
		t.Fatal(err)
	}
	reset := next(t, conn, msgFills)
	for _, f := range reset.Views[scene.ScatterID] {
		if f != p.Reset {
			t.Errorf("after reset fill = %s", f)
		}
	}
}

func TestSession_ReleaseOffView(t *testing.T) {
	s, ts := newTestServer(t, static(records(5)), nil)
	conn := dial(t, ts)
	next(t, conn, msgHello)

	// A release outside the view ends the gesture without a selection.
	path := s.Scene().Scatter.ProjectPolygon(geom.Polygon{
		geom.Pt(0, 0), geom.Pt(6, 0), geom.Pt(6, 6), geom.Pt(0, 6),
	})
	pointer(t, conn, scene.ScatterID, "press", path[0])
	for _, p := range path[1:] {
		pointer(t, conn, scene.ScatterID, "move", p)
	}
	pointer(t, conn, scene.ScatterID, "release", geom.Pt(1e4, 1e4))

	lassoFirstTwo(t, s, conn)
	fills := next(t, conn, msgFills)
	p := selection.DefaultPalette
	want := []render.Color{p.Highlight, p.Highlight, p.Dim, p.Dim, p.Dim}
	got := fills.Views[scene.ScatterID]
	if len(got) != len(want) {
		t.Fatalf("%d fills, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("fill[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestSession_NetworkFailure(t *testing.T) {
	s, ts := newTestServer(t, static(records(5)), failingEngine{})
	conn := dial(t, ts)

	status := next(t, conn, msgStatus)
	if status.Network != "failed" || !strings.Contains(status.Message, "layout backend down") {
		t.Errorf("status = %+v", status)
	}

	// The scatterplot stays interactive.
	lassoFirstTwo(t, s, conn)
	fills := next(t, conn, msgFills)
	if _, ok := fills.Views[scene.NetworkID]; ok {
		t.Error("failed network should not receive fills")
	}
	if len(fills.Views[scene.ScatterID]) != 5 {
		t.Errorf("scatter fills = %v", fills.Views[scene.ScatterID])
	}
}

func TestReload(t *testing.T) {
	var n atomic.Int32
	n.Store(3)
	load := func(context.Context) ([]data.Record, error) { return records(int(n.Load())), nil }
	s, ts := newTestServer(t, load, nil)
	conn := dial(t, ts)
	next(t, conn, msgHello)

	n.Store(6)
	if err := s.Reload(context.Background()); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	next(t, conn, msgReload)
	if got := len(s.Scene().Records); got != 6 {
		t.Errorf("records after reload = %d, want 6", got)
	}

	failing := func(context.Context) ([]data.Record, error) {
		return nil, errors.New(errors.ErrCodeFileNotFound, "gone")
	}
	s.load = failing
	if err := s.Reload(context.Background()); !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("err = %v", err)
	}
	if got := len(s.Scene().Records); got != 6 {
		t.Errorf("failed reload replaced the scene: %d records", got)
	}
}

func TestWatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cars.csv")
	if err := os.WriteFile(path, []byte("x,y\n1,1\n2,2\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	load := func(context.Context) ([]data.Record, error) { return data.Load(path) }
	s, _ := newTestServer(t, load, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Watch(ctx, path) }()
	defer func() {
		cancel()
		if err := <-done; err != nil {
			t.Errorf("Watch: %v", err)
		}
	}()

	deadline := time.Now().Add(5 * time.Second)
	for len(s.Scene().Records) != 3 {
		if time.Now().After(deadline) {
			t.Fatalf("scene not reloaded: %d records", len(s.Scene().Records))
		}
		// Rewrite until the watcher is registered and sees a change.
		if err := os.WriteFile(path, []byte("x,y\n1,1\n2,2\n3,3\n"), 0o644); err != nil {
			t.Fatal(err)
		}
		time.Sleep(150 * time.Millisecond)
	}
}
