package server

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/matzehuels/lassoview/internal/scene"
	"github.com/matzehuels/lassoview/pkg/errors"
	"github.com/matzehuels/lassoview/pkg/geom"
	"github.com/matzehuels/lassoview/pkg/lasso"
	"github.com/matzehuels/lassoview/pkg/render"
	"github.com/matzehuels/lassoview/pkg/selection"
)

const (
	writeWait    = 10 * time.Second
	pingInterval = 30 * time.Second
	sendBuffer   = 64
)

// Message types.
const (
	msgHello   = "hello"
	msgFills   = "fills"
	msgNetwork = "network"
	msgStatus  = "status"
	msgReload  = "reload"
	msgPointer = "pointer"
	msgBlur    = "blur"
	msgReset   = "reset"
)

// inbound is a browser message. Coordinates are in SVG user space of the
// named surface.
type inbound struct {
	Type    string  `json:"type"`
	Surface string  `json:"surface,omitempty"`
	Kind    string  `json:"kind,omitempty"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
}

// outbound is a server message.
type outbound struct {
	Type    string                    `json:"type"`
	Session string                    `json:"session,omitempty"`
	Source  string                    `json:"source,omitempty"`
	Views   map[string][]render.Color `json:"views,omitempty"`
	SVG     string                    `json:"svg,omitempty"`
	Network string                    `json:"network,omitempty"`
	Message string                    `json:"message,omitempty"`
}

var pointerKinds = map[string]lasso.EventKind{
	"press":   lasso.EventPress,
	"move":    lasso.EventMove,
	"release": lasso.EventRelease,
	"leave":   lasso.EventLeave,
	"cancel":  lasso.EventCancel,
}

// session is one browser connection with its own views.
type session struct {
	id     string
	conn   *websocket.Conn
	scene  *scene.Scene
	logger *log.Logger

	out      chan outbound
	done     chan struct{}
	doneOnce sync.Once

	// mu orders gestures against attaching the network view.
	mu       sync.Mutex
	group    *selection.Group
	palette  selection.Palette
	views    map[string]*render.View
	lastMask lasso.Mask
}

func newSession(s *Server, sc *scene.Scene, conn *websocket.Conn) (*session, error) {
	id := uuid.NewString()
	logger := s.logger.With("session", id[:8])
	scatter := sc.Scatter.Clone()
	group, err := scene.Link(s.opts.Scene.Palette, s.opts.MinDistance, logger, scatter)
	if err != nil {
		return nil, err
	}
	sess := &session{
		id:      id,
		conn:    conn,
		scene:   sc,
		logger:  logger,
		out:     make(chan outbound, sendBuffer),
		done:    make(chan struct{}),
		group:   group,
		palette: s.opts.Scene.Palette,
		views:   map[string]*render.View{scene.ScatterID: scatter},
	}
	group.Coordinator().OnApplied(sess.applied)
	return sess, nil
}

// run serves the connection until it closes. Pointer events are handled in
// read order.
func (s *session) run(ctx context.Context) {
	s.logger.Debug("session opened")
	defer s.logger.Debug("session closed")
	defer s.close()

	go s.writeLoop()
	s.send(outbound{Type: msgHello, Session: s.id, Network: networkStatus(s.scene)})
	go s.attachNetwork(ctx)

	for {
		_, raw, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Debug("read failed", "err", err)
			}
			return
		}
		var msg inbound
		if err := json.Unmarshal(raw, &msg); err != nil {
			s.logger.Warn("malformed message", "err", err)
			continue
		}
		if err := s.handle(msg); err != nil {
			s.logger.Debug("message rejected", "type", msg.Type, "code", errors.GetCode(err), "err", err)
		}
	}
}

func (s *session) handle(msg inbound) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch msg.Type {
	case msgPointer:
		kind, ok := pointerKinds[msg.Kind]
		if !ok {
			return errors.New(errors.ErrCodeInvalidInput, "pointer kind %q", msg.Kind)
		}
		pt := geom.Pt(msg.X, msg.Y)
		// A captured pointer can be released off the view; that ends the
		// gesture like leaving it.
		if kind == lasso.EventRelease {
			if ctrl, ok := s.group.Controller(msg.Surface); ok && !ctrl.OnSurface(pt) {
				kind = lasso.EventLeave
			}
		}
		return s.group.Dispatch(msg.Surface, lasso.Event{Kind: kind, Point: pt})
	case msgBlur:
		s.group.CancelAll()
		return nil
	case msgReset:
		s.group.CancelAll()
		return s.group.Coordinator().Reset()
	default:
		return errors.New(errors.ErrCodeUnsupported, "message type %q", msg.Type)
	}
}

// applied runs under s.mu, inside the gesture that caused it.
func (s *session) applied(res selection.Result) {
	s.lastMask = res.Mask
	views := make(map[string][]render.Color, len(s.views))
	for id, v := range s.views {
		views[id] = v.Fills()
	}
	s.send(outbound{Type: msgFills, Source: res.Source, Views: views})
}

// attachNetwork waits for the shared layout, then links a copy of the
// network view into this session showing the current selection.
func (s *session) attachNetwork(ctx context.Context) {
	if !s.scene.NetworkEnabled() {
		return
	}
	select {
	case <-s.scene.Ready():
	case <-s.done:
		return
	case <-ctx.Done():
		return
	}
	v, _, err := s.scene.Network()
	if err != nil {
		s.send(outbound{Type: msgStatus, Network: "failed", Message: errors.UserMessage(err)})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	net := v.Clone()
	if err := net.Update(selection.Assignment(s.lastMask, s.palette)); err != nil {
		s.logger.Warn("network recolor failed", "err", err)
	}
	if _, err := s.group.Add(net); err != nil {
		s.send(outbound{Type: msgStatus, Network: "failed", Message: errors.UserMessage(err)})
		return
	}
	s.views[scene.NetworkID] = net
	s.send(outbound{Type: msgNetwork, SVG: string(inlineSVG(net.SVG()))})
}

// send queues msg without blocking. A session that cannot keep up is closed.
func (s *session) send(msg outbound) {
	select {
	case <-s.done:
		return
	default:
	}
	select {
	case s.out <- msg:
	default:
		s.logger.Warn("send buffer full, closing session")
		s.close()
	}
}

func (s *session) writeLoop() {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()
	for {
		select {
		case msg := <-s.out:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteJSON(msg); err != nil {
				s.logger.Debug("write failed", "err", err)
				s.close()
				return
			}
		case <-ticker.C:
			if err := s.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				s.close()
				return
			}
		case <-s.done:
			return
		}
	}
}

func (s *session) close() {
	s.doneOnce.Do(func() {
		close(s.done)
		_ = s.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
		_ = s.conn.Close()
	})
}
