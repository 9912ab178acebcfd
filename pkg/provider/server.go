package provider

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/matzehuels/lassoview/pkg/data"
	"github.com/matzehuels/lassoview/pkg/errors"
	"github.com/matzehuels/lassoview/pkg/layout"
)

// DefaultWorkers bounds how many requests a server computes at once.
const DefaultWorkers = 4

// Server is a provider that answers records requests from a [data.Source]
// and layout requests with a [layout.Engine]. Requests on one connection run
// concurrently; responses are written one at a time in completion order.
type Server struct {
	source   data.Source
	engine   layout.Engine
	logger   *log.Logger
	upgrader websocket.Upgrader
	sem      chan struct{}
}

// ServerOption configures a [Server].
type ServerOption func(*Server)

// WithServerLogger sets the server logger.
func WithServerLogger(l *log.Logger) ServerOption {
	return func(s *Server) { s.logger = l }
}

// WithWorkers bounds concurrent request handling. n < 1 means DefaultWorkers.
func WithWorkers(n int) ServerOption {
	return func(s *Server) {
		if n < 1 {
			n = DefaultWorkers
		}
		s.sem = make(chan struct{}, n)
	}
}

// WithCheckOrigin sets the websocket origin check. The default accepts any
// origin, matching a local development backend.
func WithCheckOrigin(fn func(*http.Request) bool) ServerOption {
	return func(s *Server) { s.upgrader.CheckOrigin = fn }
}

// NewServer returns a provider serving src and eng.
func NewServer(src data.Source, eng layout.Engine, opts ...ServerOption) *Server {
	s := &Server{
		source: src,
		engine: eng,
		logger: log.NewWithOptions(io.Discard, log.Options{}),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
		sem: make(chan struct{}, DefaultWorkers),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ServeHTTP upgrades the request and serves the connection until it closes.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "remote", r.RemoteAddr, "err", err)
		return
	}
	defer conn.Close()

	logger := s.logger.With("remote", r.RemoteAddr)
	logger.Info("provider connection opened")

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	var (
		writeMu sync.Mutex
		wg      sync.WaitGroup
	)
	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.Debug("read ended", "err", err)
			}
			break
		}
		var msg Message
		if err := json.Unmarshal(raw, &msg); err != nil {
			logger.Warn("ignoring malformed frame", "err", err)
			continue
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			select {
			case s.sem <- struct{}{}:
			case <-ctx.Done():
				return
			}
			resp := s.Handle(ctx, msg)
			<-s.sem

			writeMu.Lock()
			defer writeMu.Unlock()
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(resp); err != nil {
				logger.Debug("write failed", "action", resp.Action, "err", err)
			}
		}()
	}
	cancel()
	wg.Wait()
	logger.Info("provider connection closed")
}

// Handle answers one request. Failures are returned as an error message.
func (s *Server) Handle(ctx context.Context, msg Message) Message {
	start := time.Now()
	var (
		resp Message
		err  error
	)
	switch msg.Action {
	case ActionRecords:
		resp, err = s.records(ctx, msg.Content)
	case ActionLayout:
		resp, err = s.layout(ctx, msg.Content)
	default:
		err = errors.New(errors.ErrCodeUnsupported, "unknown action %q", msg.Action)
	}
	if err != nil {
		s.logger.Warn("request failed", "action", msg.Action, "code", errors.GetCode(err), "err", err)
		resp, _ = newMessage(ActionError, ErrorContent{Action: msg.Action, Message: errors.UserMessage(err)})
		return resp
	}
	s.logger.Info("request served", "action", msg.Action, "duration", time.Since(start).Round(time.Millisecond))
	return resp
}

func (s *Server) records(ctx context.Context, content json.RawMessage) (Message, error) {
	var req RecordsRequest
	if err := json.Unmarshal(content, &req); err != nil {
		return Message{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "records request")
	}
	if s.source == nil {
		return Message{}, errors.New(errors.ErrCodeUnsupported, "no record source configured")
	}
	records, err := s.source.Load(ctx, req.Name)
	if err != nil {
		return Message{}, err
	}
	if records == nil {
		records = []data.Record{}
	}
	return newMessage(ActionRecords, records)
}

func (s *Server) layout(ctx context.Context, content json.RawMessage) (Message, error) {
	var req LayoutRequest
	if err := json.Unmarshal(content, &req); err != nil {
		return Message{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "layout request")
	}
	if s.engine == nil {
		return Message{}, errors.New(errors.ErrCodeUnsupported, "no layout engine configured")
	}
	links, err := Densify(req.NodeIndices, req.Links)
	if err != nil {
		return Message{}, err
	}
	pts, err := s.engine.Layout(ctx, len(req.NodeIndices), links)
	if err != nil {
		return Message{}, err
	}
	return newMessage(ActionLayout, EncodePositions(pts))
}

// Densify rewrites links over arbitrary node ids into links over positions
// in nodes. Duplicate node ids and links to unknown ids are rejected.
func Densify(nodes []int, links []data.Link) ([]data.Link, error) {
	pos := make(map[int]int, len(nodes))
	for i, id := range nodes {
		if _, dup := pos[id]; dup {
			return nil, errors.New(errors.ErrCodeInvalidInput, "node %d listed twice", id)
		}
		pos[id] = i
	}
	out := make([]data.Link, len(links))
	for i, l := range links {
		s, okS := pos[l.Source]
		t, okT := pos[l.Target]
		if !okS || !okT {
			return nil, errors.New(errors.ErrCodeInvalidLink, "link %d %v references an unknown node", i, l)
		}
		out[i] = data.Link{Source: s, Target: t}
	}
	return out, nil
}
