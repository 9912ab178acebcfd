package provider

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/matzehuels/lassoview/pkg/data"
	"github.com/matzehuels/lassoview/pkg/errors"
	"github.com/matzehuels/lassoview/pkg/geom"
	"github.com/matzehuels/lassoview/pkg/observability"
)

const (
	defaultAttempts = 3
	defaultDelay    = 500 * time.Millisecond
	writeWait       = 10 * time.Second
)

// Client is a connection to a provider. Requests may be issued concurrently;
// responses are matched to requests by action in the order they were sent.
type Client struct {
	conn   *websocket.Conn
	logger *log.Logger

	writeMu sync.Mutex

	mu      sync.Mutex
	pending map[Action][]chan Message
	closed  bool

	done    chan struct{}
	doneErr error
	once    sync.Once
}

type dialConfig struct {
	attempts int
	delay    time.Duration
	logger   *log.Logger
	header   http.Header
}

// DialOption configures [Dial].
type DialOption func(*dialConfig)

// WithRetry sets how many times a failed dial is attempted and the initial
// backoff between attempts.
func WithRetry(attempts int, delay time.Duration) DialOption {
	return func(c *dialConfig) { c.attempts, c.delay = attempts, delay }
}

// WithLogger sets the client logger.
func WithLogger(l *log.Logger) DialOption {
	return func(c *dialConfig) { c.logger = l }
}

// WithHeader adds HTTP headers to the websocket handshake.
func WithHeader(h http.Header) DialOption {
	return func(c *dialConfig) { c.header = h }
}

// Dial connects to the provider at url. Connection failures are retried
// with backoff; a handshake rejected with a 4xx status is not.
func Dial(ctx context.Context, url string, opts ...DialOption) (*Client, error) {
	if err := errors.ValidateProviderURL(url); err != nil {
		return nil, err
	}
	cfg := dialConfig{attempts: defaultAttempts, delay: defaultDelay}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.logger == nil {
		cfg.logger = log.NewWithOptions(io.Discard, log.Options{})
	}

	var conn *websocket.Conn
	err := Retry(ctx, cfg.attempts, cfg.delay, func() error {
		c, resp, err := websocket.DefaultDialer.DialContext(ctx, url, cfg.header)
		if err != nil {
			if resp != nil && resp.StatusCode >= 400 && resp.StatusCode < 500 {
				return err
			}
			cfg.logger.Debug("provider dial failed", "url", url, "err", err)
			return &RetryableError{Err: err}
		}
		conn = c
		return nil
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, errors.Wrap(errors.ErrCodeTimeout, err, "dial %s", url)
		}
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "dial %s", url)
	}

	c := &Client{
		conn:    conn,
		logger:  cfg.logger.With("provider", url),
		pending: make(map[Action][]chan Message),
		done:    make(chan struct{}),
	}
	go c.readLoop()
	c.logger.Debug("connected")
	return c, nil
}

// Records requests the dataset called name.
func (c *Client) Records(ctx context.Context, name string) ([]data.Record, error) {
	if err := errors.ValidateDatasetName(name); err != nil {
		return nil, err
	}
	resp, err := c.request(ctx, ActionRecords, RecordsRequest{Name: name})
	if err != nil {
		return nil, err
	}
	return DecodeRecords(resp.Content)
}

// Layout requests positions for nodeIndices. The result is index-aligned
// with nodeIndices.
func (c *Client) Layout(ctx context.Context, nodeIndices []int, links []data.Link) ([]geom.Point, error) {
	if nodeIndices == nil {
		nodeIndices = []int{}
	}
	if links == nil {
		links = []data.Link{}
	}
	resp, err := c.request(ctx, ActionLayout, LayoutRequest{NodeIndices: nodeIndices, Links: links})
	if err != nil {
		return nil, err
	}
	return DecodePositions(resp.Content, len(nodeIndices))
}

func (c *Client) request(ctx context.Context, action Action, content any) (resp Message, err error) {
	hooks := observability.Provider()
	hooks.OnRequest(ctx, string(action))
	start := time.Now()
	defer func() { hooks.OnResponse(ctx, string(action), time.Since(start), err) }()

	msg, err := newMessage(action, content)
	if err != nil {
		return Message{}, errors.Wrap(errors.ErrCodeInternal, err, "encode request")
	}

	ch := make(chan Message, 1)
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return Message{}, errors.New(errors.ErrCodeNetwork, "provider connection closed")
	}
	c.pending[action] = append(c.pending[action], ch)
	c.mu.Unlock()

	if err := c.write(ctx, msg); err != nil {
		c.forget(action, ch)
		return Message{}, errors.Wrap(errors.ErrCodeNetwork, err, "send %s", action)
	}
	c.logger.Debug("request sent", "action", action)

	select {
	case resp = <-ch:
		if resp.Action == ActionError {
			var ec ErrorContent
			_ = json.Unmarshal(resp.Content, &ec)
			return Message{}, errors.New(errors.ErrCodeProviderFailed, "%s: %s", action, ec.Message)
		}
		return resp, nil
	case <-c.done:
		return Message{}, errors.Wrap(errors.ErrCodeNetwork, c.doneErr, "%s: connection lost", action)
	case <-ctx.Done():
		c.forget(action, ch)
		if stderrors.Is(ctx.Err(), context.DeadlineExceeded) {
			return Message{}, errors.Wrap(errors.ErrCodeTimeout, ctx.Err(), "%s: no response", action)
		}
		return Message{}, ctx.Err()
	}
}

func (c *Client) write(ctx context.Context, msg Message) error {
	deadline := time.Now().Add(writeWait)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if err := c.conn.SetWriteDeadline(deadline); err != nil {
		return err
	}
	return c.conn.WriteJSON(msg)
}

// forget drops a waiter that gave up. A response that arrives later is
// delivered to the next waiter for the same action or discarded.
func (c *Client) forget(action Action, ch chan Message) {
	c.mu.Lock()
	defer c.mu.Unlock()
	waiters := c.pending[action]
	for i, w := range waiters {
		if w == ch {
			c.pending[action] = append(waiters[:i:i], waiters[i+1:]...)
			return
		}
	}
}

func (c *Client) readLoop() {
	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			c.shutdown(err)
			return
		}
		var msg Message
		if err := json.Unmarshal(raw, &msg); err != nil {
			c.logger.Warn("ignoring malformed frame", "err", err)
			continue
		}
		target := msg.Action
		if msg.Action == ActionError {
			var ec ErrorContent
			if err := json.Unmarshal(msg.Content, &ec); err == nil {
				target = ec.Action
			}
		}
		c.deliver(target, msg)
	}
}

func (c *Client) deliver(action Action, msg Message) {
	c.mu.Lock()
	waiters := c.pending[action]
	if len(waiters) == 0 {
		c.mu.Unlock()
		c.logger.Debug("unsolicited response", "action", msg.Action)
		return
	}
	ch := waiters[0]
	c.pending[action] = waiters[1:]
	c.mu.Unlock()
	ch <- msg
}

func (c *Client) shutdown(err error) {
	c.once.Do(func() {
		c.mu.Lock()
		c.closed = true
		c.mu.Unlock()
		c.doneErr = err
		close(c.done)
		if !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
			c.logger.Debug("connection ended", "err", err)
		}
	})
}

// Done is closed when the connection ends.
func (c *Client) Done() <-chan struct{} { return c.done }

// Close sends a close frame and releases the connection.
func (c *Client) Close() error {
	c.mu.Lock()
	ended := c.closed
	c.closed = true
	c.mu.Unlock()

	if !ended {
		c.writeMu.Lock()
		_ = c.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		c.writeMu.Unlock()
	}
	return c.conn.Close()
}
