package transport

import (
	"context"
	"time"

	"go.uber.org/zap"
)

const (
	minBackoff = 500 * time.Millisecond
	maxBackoff = 30 * time.Second
)

// Hooks observe a maintained connection
type Hooks struct {
	// OnConnect runs after each successful dial, before frames are read
	OnConnect func(c *Client)
	// OnDisconnect runs when a connection ends or a dial fails
	OnDisconnect func(err error)
	// OnFrame receives every inbound frame in order
	OnFrame func(data []byte)
}

// Maintain keeps a connection open until ctx ends, redialing with
// exponential backoff. It always returns ctx.Err().
func Maintain(ctx context.Context, opts Options, hooks Hooks) error {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	backoff := minBackoff

	for {
		client, err := Dial(ctx, opts)
		if err == nil {
			backoff = minBackoff
			logger.Info("stream connected", zap.String("url", opts.URL))
			if hooks.OnConnect != nil {
				hooks.OnConnect(client)
			}
			err = client.Run(ctx, func(data []byte) {
				if hooks.OnFrame != nil {
					hooks.OnFrame(data)
				}
			})
			client.Close()
		}

		if ctx.Err() != nil {
			return ctx.Err()
		}
		if hooks.OnDisconnect != nil {
			hooks.OnDisconnect(err)
		}
		logger.Warn("stream disconnected", zap.Error(err), zap.Duration("retry_in", backoff))

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
		if backoff > maxBackoff {
			backoff = maxBackoff
		}
	}
}
