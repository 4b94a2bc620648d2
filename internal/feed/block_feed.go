// Package feed streams decoded blocks from an upstream firehose endpoint
// over WebSocket. Each frame is one JSON-encoded block; the host guarantees
// frames arrive in block order.
package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/alanyoungcy/polystream/internal/chain"
	"github.com/alanyoungcy/polystream/internal/domain"
)

const (
	// writeWait is the time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// pongWait is the time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// pingPeriod sends pings to the peer at this interval. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// reconnectDelay is the base delay before attempting to reconnect.
	reconnectDelay = 2 * time.Second

	// maxReconnectDelay caps the exponential backoff for reconnection.
	maxReconnectDelay = 60 * time.Second

	// blockBuffer bounds how far the feed may run ahead of the pipeline.
	blockBuffer = 64
)

// BlockFeed is a WebSocket client that implements pipeline.BlockSource. It
// manages the connection lifecycle, reconnects with exponential backoff,
// and hands blocks to the pipeline through a bounded channel.
type BlockFeed struct {
	wsURL  string
	logger *slog.Logger

	mu     sync.Mutex
	conn   *websocket.Conn
	closed bool

	blocks chan *chain.Block
	errs   chan error
	done   chan struct{}
}

// NewBlockFeed creates a feed for the given WebSocket endpoint.
func NewBlockFeed(wsURL string, logger *slog.Logger) *BlockFeed {
	return &BlockFeed{
		wsURL:  wsURL,
		logger: logger.With(slog.String("component", "block_feed")),
		blocks: make(chan *chain.Block, blockBuffer),
		errs:   make(chan error, 1),
		done:   make(chan struct{}),
	}
}

// Start connects and launches the read and keepalive loops. It returns once
// the initial connection is established.
func (f *BlockFeed) Start(ctx context.Context) error {
	if err := f.connect(ctx); err != nil {
		return err
	}
	go f.readLoop(ctx)
	go f.pingLoop(ctx)
	return nil
}

// Next returns the next streamed block, blocking until one arrives, the
// feed fails permanently, or the context is cancelled.
func (f *BlockFeed) Next(ctx context.Context) (*chain.Block, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case err := <-f.errs:
		return nil, err
	case <-f.done:
		return nil, domain.ErrFeedClosed
	case blk := <-f.blocks:
		return blk, nil
	}
}

// Close shuts the feed down. Subsequent Next calls return ErrFeedClosed.
func (f *BlockFeed) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return nil
	}
	f.closed = true
	close(f.done)

	if f.conn != nil {
		_ = f.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(writeWait))
		return f.conn.Close()
	}
	return nil
}

func (f *BlockFeed) connect(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return fmt.Errorf("feed: %w", domain.ErrFeedClosed)
	}

	dialer := websocket.Dialer{
		HandshakeTimeout: 15 * time.Second,
	}

	conn, _, err := dialer.DialContext(ctx, f.wsURL, nil)
	if err != nil {
		return fmt.Errorf("feed: connect %s: %w", f.wsURL, err)
	}

	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	f.conn = conn
	return nil
}

// readLoop reads frames until the feed is closed, reconnecting with capped
// exponential backoff when the connection drops.
func (f *BlockFeed) readLoop(ctx context.Context) {
	delay := reconnectDelay

	for {
		f.mu.Lock()
		conn := f.conn
		closed := f.closed
		f.mu.Unlock()

		if closed || ctx.Err() != nil {
			return
		}

		_, data, err := conn.ReadMessage()
		if err != nil {
			f.logger.Warn("feed read failed, reconnecting",
				slog.String("error", err.Error()),
				slog.Duration("delay", delay),
			)

			select {
			case <-ctx.Done():
				return
			case <-f.done:
				return
			case <-time.After(delay):
			}

			if delay *= 2; delay > maxReconnectDelay {
				delay = maxReconnectDelay
			}

			if err := f.connect(ctx); err != nil {
				continue
			}
			delay = reconnectDelay
			continue
		}

		var blk chain.Block
		if err := json.Unmarshal(data, &blk); err != nil {
			f.logger.Warn("discarding malformed block frame", slog.String("error", err.Error()))
			continue
		}

		select {
		case <-ctx.Done():
			return
		case <-f.done:
			return
		case f.blocks <- &blk:
		}
	}
}

// pingLoop keeps the connection alive.
func (f *BlockFeed) pingLoop(ctx context.Context) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-f.done:
			return
		case <-ticker.C:
			f.mu.Lock()
			conn := f.conn
			f.mu.Unlock()
			if conn == nil {
				continue
			}
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				f.logger.Debug("ping failed", slog.String("error", err.Error()))
			}
		}
	}
}
