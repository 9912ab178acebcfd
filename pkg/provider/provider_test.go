package provider

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/matzehuels/lassoview/pkg/data"
	"github.com/matzehuels/lassoview/pkg/errors"
	"github.com/matzehuels/lassoview/pkg/layout"
)

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

var cars = []data.Record{
	{"mpg": 21.0, "hp": 110.0},
	{"mpg": 22.8, "hp": 93.0},
	{"mpg": 18.7, "hp": 175.0},
}

func testSource() data.Source {
	return data.SourceFunc(func(_ context.Context, name string) ([]data.Record, error) {
		if name != "mtcars.csv" {
			return nil, errors.New(errors.ErrCodeNotFound, "dataset %q not found", name)
		}
		return cars, nil
	})
}

func dialTest(t *testing.T, srv *httptest.Server) *Client {
	t.Helper()
	c, err := Dial(context.Background(), wsURL(srv), WithRetry(1, 0))
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

// rawServer answers each frame with reply(msg).
func rawServer(t *testing.T, reply func(Message) []byte) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for {
			var msg Message
			if err := conn.ReadJSON(&msg); err != nil {
				return
			}
			if out := reply(msg); out != nil {
				if err := conn.WriteMessage(websocket.TextMessage, out); err != nil {
					return
				}
			}
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestClientServer_Records(t *testing.T) {
	srv := httptest.NewServer(NewServer(testSource(), layout.Spring{Seed: 1}))
	defer srv.Close()
	c := dialTest(t, srv)

	records, err := c.Records(context.Background(), "mtcars.csv")
	if err != nil {
		t.Fatalf("Records: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("len = %d, want 3", len(records))
	}
	if records[2]["hp"] != 175.0 {
		t.Errorf("records[2][hp] = %v, want 175", records[2]["hp"])
	}
}

func TestClientServer_Layout(t *testing.T) {
	srv := httptest.NewServer(NewServer(testSource(), layout.Spring{Seed: 1}))
	defer srv.Close()
	c := dialTest(t, srv)

	nodes := data.Indices(5)
	pts, err := c.Layout(context.Background(), nodes, []data.Link{{0, 1}, {1, 2}, {3, 4}})
	if err != nil {
		t.Fatalf("Layout: %v", err)
	}
	if len(pts) != len(nodes) {
		t.Fatalf("len = %d, want %d", len(pts), len(nodes))
	}
	for i, p := range pts {
		if !p.IsFinite() {
			t.Errorf("pts[%d] = %v", i, p)
		}
	}
}

func TestClientServer_ConcurrentRequests(t *testing.T) {
	srv := httptest.NewServer(NewServer(testSource(), layout.Spring{Seed: 1}))
	defer srv.Close()
	c := dialTest(t, srv)

	ctx := context.Background()
	errc := make(chan error, 2)
	go func() {
		_, err := c.Records(ctx, "mtcars.csv")
		errc <- err
	}()
	go func() {
		_, err := c.Layout(ctx, data.Indices(3), nil)
		errc <- err
	}()
	for range 2 {
		if err := <-errc; err != nil {
			t.Errorf("request failed: %v", err)
		}
	}
}

func TestClientServer_Errors(t *testing.T) {
	srv := httptest.NewServer(NewServer(testSource(), layout.Spring{}))
	defer srv.Close()
	c := dialTest(t, srv)
	ctx := context.Background()

	_, err := c.Records(ctx, "missing.csv")
	if !errors.Is(err, errors.ErrCodeProviderFailed) {
		t.Fatalf("err = %v, want PROVIDER_FAILED", err)
	}
	if !strings.Contains(err.Error(), "not found") {
		t.Errorf("err = %v, want provider message", err)
	}

	_, err = c.Layout(ctx, data.Indices(2), []data.Link{{0, 7}})
	if !errors.Is(err, errors.ErrCodeProviderFailed) {
		t.Errorf("err = %v, want PROVIDER_FAILED", err)
	}

	if _, err := c.Records(ctx, "../etc/passwd"); !errors.Is(err, errors.ErrCodeInvalidPath) {
		t.Errorf("err = %v, want INVALID_PATH", err)
	}
}

func TestClient_LegacyProvider(t *testing.T) {
	srv := rawServer(t, func(msg Message) []byte {
		switch msg.Action {
		case ActionRecords:
			inner, _ := json.Marshal(cars)
			out, _ := json.Marshal(map[string]any{"action": 0, "content": string(inner)})
			return out
		case ActionLayout:
			out, _ := json.Marshal(map[string]any{"action": 1, "content": [][]float64{{0, 0}, {1, 1}}})
			return out
		}
		return nil
	})
	c := dialTest(t, srv)
	ctx := context.Background()

	records, err := c.Records(ctx, "mtcars.csv")
	if err != nil {
		t.Fatalf("Records: %v", err)
	}
	if len(records) != 3 {
		t.Errorf("len = %d, want 3", len(records))
	}
	pts, err := c.Layout(ctx, data.Indices(2), nil)
	if err != nil {
		t.Fatalf("Layout: %v", err)
	}
	if pts[1].X != 1 || pts[1].Y != 1 {
		t.Errorf("pts[1] = %v", pts[1])
	}
}

func TestClient_MalformedLayout(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"too few", `[[0, 0]]`},
		{"three coordinates", `[[0, 0], [1, 2, 3]]`},
		{"not an array", `{"x": 1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := rawServer(t, func(Message) []byte {
				return []byte(`{"action": "provide layout", "content": ` + tt.content + `}`)
			})
			c := dialTest(t, srv)
			_, err := c.Layout(context.Background(), data.Indices(2), nil)
			if !errors.Is(err, errors.ErrCodeProviderMalformed) {
				t.Errorf("err = %v, want PROVIDER_MALFORMED", err)
			}
		})
	}
}

func TestClient_Timeout(t *testing.T) {
	srv := rawServer(t, func(Message) []byte { return nil })
	c := dialTest(t, srv)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := c.Layout(ctx, data.Indices(2), nil)
	if !errors.Is(err, errors.ErrCodeTimeout) {
		t.Errorf("err = %v, want TIMEOUT", err)
	}
}

func TestClient_ConnectionLost(t *testing.T) {
	upgrader := websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if conn, err := upgrader.Upgrade(w, r, nil); err == nil {
			conn.Close()
		}
	}))
	defer srv.Close()
	c := dialTest(t, srv)

	select {
	case <-c.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("client did not notice the closed connection")
	}
	if _, err := c.Records(context.Background(), "mtcars.csv"); !errors.Is(err, errors.ErrCodeNetwork) {
		t.Errorf("err = %v, want NETWORK_ERROR", err)
	}
}

func TestDial_Errors(t *testing.T) {
	ctx := context.Background()
	if _, err := Dial(ctx, "http://localhost"); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("http scheme: err = %v, want INVALID_INPUT", err)
	}

	srv := httptest.NewServer(http.NotFoundHandler())
	url := wsURL(srv)
	srv.Close()
	if _, err := Dial(ctx, url, WithRetry(2, time.Millisecond)); !errors.Is(err, errors.ErrCodeNetwork) {
		t.Errorf("closed server: err = %v, want NETWORK_ERROR", err)
	}
}

func TestRetry(t *testing.T) {
	transient := &RetryableError{Err: stderrors.New("flaky")}
	permanent := stderrors.New("bad request")

	calls := 0
	err := Retry(context.Background(), 3, time.Millisecond, func() error {
		calls++
		if calls < 3 {
			return transient
		}
		return nil
	})
	if err != nil || calls != 3 {
		t.Errorf("Retry = %v after %d calls, want success after 3", err, calls)
	}

	calls = 0
	err = Retry(context.Background(), 3, time.Millisecond, func() error {
		calls++
		return permanent
	})
	if err != permanent || calls != 1 {
		t.Errorf("Retry = %v after %d calls, want permanent error after 1", err, calls)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = Retry(ctx, 3, time.Hour, func() error { return transient })
	if !stderrors.Is(err, context.Canceled) {
		t.Errorf("Retry = %v, want context.Canceled", err)
	}
}

func TestAction_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		in      string
		want    Action
		wantErr bool
	}{
		{`"provide records"`, ActionRecords, false},
		{`0`, ActionRecords, false},
		{`1`, ActionLayout, false},
		{`7`, "", true},
		{`true`, "", true},
	}
	for _, tt := range tests {
		var a Action
		err := json.Unmarshal([]byte(tt.in), &a)
		if (err != nil) != tt.wantErr {
			t.Errorf("%s: err = %v", tt.in, err)
			continue
		}
		if a != tt.want {
			t.Errorf("%s: got %q, want %q", tt.in, a, tt.want)
		}
	}
}

func TestLayoutRequest_NodesAlias(t *testing.T) {
	var req LayoutRequest
	if err := json.Unmarshal([]byte(`{"nodes": [4, 5], "links": [[4, 5]]}`), &req); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if len(req.NodeIndices) != 2 || req.NodeIndices[0] != 4 || len(req.Links) != 1 {
		t.Errorf("req = %+v", req)
	}
}

func TestDensify(t *testing.T) {
	links, err := Densify([]int{10, 20, 30}, []data.Link{{30, 10}})
	if err != nil {
		t.Fatalf("Densify: %v", err)
	}
	if links[0] != (data.Link{Source: 2, Target: 0}) {
		t.Errorf("links = %v", links)
	}
	if _, err := Densify([]int{1, 1}, nil); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("duplicate: err = %v", err)
	}
	if _, err := Densify([]int{1}, []data.Link{{1, 2}}); !errors.Is(err, errors.ErrCodeInvalidLink) {
		t.Errorf("unknown node: err = %v", err)
	}
}

func TestServer_UnknownAction(t *testing.T) {
	s := NewServer(nil, nil)
	resp := s.Handle(context.Background(), Message{Action: "provide coffee"})
	if resp.Action != ActionError {
		t.Fatalf("action = %q, want error", resp.Action)
	}
	var ec ErrorContent
	if err := json.Unmarshal(resp.Content, &ec); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if ec.Action != "provide coffee" {
		t.Errorf("error action = %q", ec.Action)
	}
}

func TestRemote(t *testing.T) {
	srv := httptest.NewServer(NewServer(testSource(), layout.Spring{Seed: 3}))
	defer srv.Close()
	r := Remote{URL: wsURL(srv), Timeout: 5 * time.Second, Options: []DialOption{WithRetry(1, 0)}}
	ctx := context.Background()

	records, err := r.Load(ctx, "mtcars.csv")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	pts, err := r.Layout(ctx, len(records), []data.Link{{0, 2}})
	if err != nil {
		t.Fatalf("Layout: %v", err)
	}
	if len(pts) != len(records) {
		t.Errorf("len = %d, want %d", len(pts), len(records))
	}
	if _, err := r.Layout(ctx, 2, []data.Link{{0, 2}}); !errors.Is(err, errors.ErrCodeInvalidLink) {
		t.Errorf("err = %v, want INVALID_LINK before dialing", err)
	}
}
