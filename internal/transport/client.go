package transport

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/GriffinCanCode/AgentOS/runtime/internal/shared/types"
	"github.com/bytedance/sonic"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const defaultWriteTimeout = 10 * time.Second

// ErrClosed is returned when the server closes the stream
var ErrClosed = errors.New("stream closed")

// errStopped ends the read group without reporting a failure
var errStopped = errors.New("stopped")

// Options configures the stream client
type Options struct {
	URL              string
	HandshakeTimeout time.Duration
	// PingInterval <= 0 disables application pings
	PingInterval time.Duration
	Header       http.Header
	Logger       *zap.Logger
}

// Client is one websocket connection to the generation stream
type Client struct {
	conn    *websocket.Conn
	opts    Options
	logger  *zap.Logger
	writeMu sync.Mutex
	closed  atomic.Bool
}

// Dial connects to the stream
func Dial(ctx context.Context, opts Options) (*Client, error) {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	dialer := websocket.Dialer{
		Proxy:            http.ProxyFromEnvironment,
		HandshakeTimeout: opts.HandshakeTimeout,
	}

	conn, resp, err := dialer.DialContext(ctx, opts.URL, opts.Header)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("dial %s: %w (status %d)", opts.URL, err, resp.StatusCode)
		}
		return nil, fmt.Errorf("dial %s: %w", opts.URL, err)
	}

	return &Client{
		conn:   conn,
		opts:   opts,
		logger: opts.Logger.Named("transport"),
	}, nil
}

// Send writes one message. Safe for concurrent use.
func (c *Client) Send(ctx context.Context, msg types.WSMessage) error {
	if c.closed.Load() {
		return ErrClosed
	}
	data, err := sonic.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode %s: %w", msg.Type, err)
	}

	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(defaultWriteTimeout)
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if err := c.conn.SetWriteDeadline(deadline); err != nil {
		return err
	}
	if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		return fmt.Errorf("write %s: %w", msg.Type, err)
	}
	return nil
}

// Run reads frames until ctx ends or the connection fails. handle runs on
// the read goroutine, so frames are delivered in arrival order.
// Returns nil when ctx is cancelled or Close was called.
func (c *Client) Run(ctx context.Context, handle func(data []byte)) error {
	g, gctx := errgroup.WithContext(ctx)

	// Closing the conn is the only way to unblock ReadMessage
	g.Go(func() error {
		<-gctx.Done()
		c.conn.Close()
		return nil
	})

	if c.opts.PingInterval > 0 {
		g.Go(func() error {
			return c.pingLoop(gctx)
		})
	}

	g.Go(func() error {
		for {
			_, data, err := c.conn.ReadMessage()
			if err != nil {
				if ctx.Err() != nil || c.closed.Load() {
					return errStopped
				}
				if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					return ErrClosed
				}
				return fmt.Errorf("read: %w", err)
			}
			handle(data)
		}
	})

	if err := g.Wait(); err != nil && !errors.Is(err, errStopped) {
		return err
	}
	return nil
}

// Close sends a close frame and closes the connection
func (c *Client) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	c.writeMu.Lock()
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	_ = c.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
	c.writeMu.Unlock()
	return c.conn.Close()
}

func (c *Client) pingLoop(ctx context.Context) error {
	ticker := time.NewTicker(c.opts.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := c.Send(ctx, types.WSMessage{Type: "ping"}); err != nil {
				if c.closed.Load() || ctx.Err() != nil {
					return nil
				}
				c.logger.Warn("ping failed", zap.Error(err))
				return err
			}
		}
	}
}
