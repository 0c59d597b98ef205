// Package kalshi implements Stream Client B: an authenticated,
// venue-wide WebSocket client for a Kalshi-style venue. Unlike Stream
// Client A it subscribes once to a single channel that covers every
// ticker, and every frame carries a complete quote rather than one side.
//
// When no credentials are configured the client starts in a permanently
// disabled state: Run returns immediately without dialing, and the rest
// of the system treats this venue's pairs as having no Kalshi side.
package kalshi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/arborwatch/xvenue-arb/internal/metrics"
	"github.com/arborwatch/xvenue-arb/internal/pricecache"
)

type state int

const (
	stateIdle state = iota
	stateDialing
	stateSubscribing
	stateReading
	stateClosing
	stateBackoff
	stateTerminated
)

const (
	wsURL            = "wss://api.elections.kalshi.com/trade-api/ws/v2"
	dialTimeout      = 10 * time.Second
	pingInterval     = 30 * time.Second
	readDeadline     = 60 * time.Second
	baseBackoff      = 2 * time.Second
	maxBackoff       = 60 * time.Second
	updateBufferSize = 1000
)

// Update is one accepted ticker frame, reported after the client has
// already merged it into the cache.
type Update struct {
	Ticker string
	Record pricecache.KalshiRecord
	At     time.Time
}

// Client is Stream Client B. A Client constructed without usable
// credentials is permanently Disabled: Run is then a no-op.
type Client struct {
	cache   *pricecache.Kalshi
	logger  *slog.Logger
	signer  *signer
	updates chan Update

	connMu sync.Mutex
	conn   *websocket.Conn
}

// Config configures a Client.
type Config struct {
	KeyID   string
	KeyPath string
	Cache   *pricecache.Kalshi
	Logger  *slog.Logger
}

// New creates a Stream Client B. If KeyID or KeyPath is empty, or the key
// file cannot be loaded, the client is Disabled and New still returns it
// without error: a missing credential is a deployment choice ("run
// without this venue"), not a construction failure.
func New(cfg Config) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("component", "kalshi_stream"))

	c := &Client{cache: cfg.Cache, logger: logger, updates: make(chan Update, updateBufferSize)}

	if cfg.KeyID == "" || cfg.KeyPath == "" {
		logger.Warn("kalshi credentials not configured, stream disabled")
		metrics.SetVenueDisabled("kalshi", true)
		return c
	}

	s, err := loadSigner(cfg.KeyID, cfg.KeyPath)
	if err != nil {
		logger.Warn("kalshi private key load failed, stream disabled", slog.String("error", err.Error()))
		metrics.SetVenueDisabled("kalshi", true)
		return c
	}
	c.signer = s
	metrics.SetVenueDisabled("kalshi", false)
	return c
}

// IsEnabled reports whether this client has usable credentials.
func (c *Client) IsEnabled() bool { return c.signer != nil }

// Updates returns the channel of accepted ticker frames. Callers that do
// not drain it lose nothing but the live feed: the cache has already
// been updated by the time a value is sent.
func (c *Client) Updates() <-chan Update { return c.updates }

// Run drives the connection-manager state machine until ctx is cancelled.
// If the client is Disabled, Run returns immediately.
func (c *Client) Run(ctx context.Context) {
	if !c.IsEnabled() {
		return
	}

	st := stateIdle
	delay := baseBackoff

	for {
		switch st {
		case stateIdle:
			st = stateDialing

		case stateDialing:
			attemptID := uuid.NewString()
			conn, err := c.dial(ctx)
			if err != nil {
				c.logger.Warn("kalshi: dial failed", slog.String("attempt", attemptID), slog.String("error", err.Error()))
				metrics.RecordWSReconnect("kalshi")
				st = stateBackoff
				continue
			}
			c.setConn(conn)
			st = stateSubscribing

		case stateSubscribing:
			if err := c.subscribe(ctx); err != nil {
				c.logger.Warn("kalshi: subscribe failed", slog.String("error", err.Error()))
				st = stateClosing
				continue
			}
			metrics.SetWSConnectionStatus("kalshi", true)
			delay = baseBackoff
			st = stateReading

		case stateReading:
			err := c.readUntilStallOrClose(ctx)
			metrics.SetWSConnectionStatus("kalshi", false)
			if errors.Is(err, context.Canceled) {
				st = stateTerminated
				continue
			}
			st = stateClosing

		case stateClosing:
			c.closeConn()
			select {
			case <-ctx.Done():
				st = stateTerminated
			default:
				st = stateBackoff
			}

		case stateBackoff:
			select {
			case <-ctx.Done():
				st = stateTerminated
			case <-time.After(delay):
				delay *= 2
				if delay > maxBackoff {
					delay = maxBackoff
				}
				st = stateDialing
			}

		case stateTerminated:
			c.closeConn()
			return
		}
	}
}

func (c *Client) dial(ctx context.Context) (*websocket.Conn, error) {
	headers, err := c.signer.authHeaders()
	if err != nil {
		return nil, fmt.Errorf("kalshi: %w", err)
	}

	dialCtx, cancel := context.WithTimeout(ctx, dialTimeout)
	defer cancel()

	dialer := websocket.Dialer{HandshakeTimeout: dialTimeout}
	conn, _, err := dialer.DialContext(dialCtx, wsURL, headers)
	if err != nil {
		return nil, fmt.Errorf("kalshi: dial: %w", err)
	}
	return conn, nil
}

// subscribe sends a single venue-wide subscription to the ticker channel.
func (c *Client) subscribe(_ context.Context) error {
	conn := c.getConn()
	if conn == nil {
		return fmt.Errorf("kalshi: subscribe: no connection")
	}

	conn.SetWriteDeadline(time.Now().Add(dialTimeout))
	msg := subscribeMsg{Type: "subscribe", Channel: "ticker"}
	if err := conn.WriteJSON(msg); err != nil {
		return fmt.Errorf("kalshi: write subscribe: %w", err)
	}
	return nil
}

func (c *Client) readUntilStallOrClose(ctx context.Context) error {
	conn := c.getConn()
	if conn == nil {
		return fmt.Errorf("kalshi: read: no connection")
	}

	connCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		c.pingLoop(connCtx, conn)
	}()

	err := c.readLoop(connCtx, conn)
	cancel()
	wg.Wait()

	if ctx.Err() != nil {
		return context.Canceled
	}
	return err
}

func (c *Client) pingLoop(ctx context.Context, conn *websocket.Conn) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(dialTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.logger.Debug("kalshi: ping failed", slog.String("error", err.Error()))
				c.closeConn()
				return
			}
		}
	}
}

func (c *Client) readLoop(ctx context.Context, conn *websocket.Conn) error {
	for {
		select {
		case <-ctx.Done():
			return context.Canceled
		default:
		}

		conn.SetReadDeadline(time.Now().Add(readDeadline))
		_, message, err := conn.ReadMessage()
		if err != nil {
			select {
			case <-ctx.Done():
				return context.Canceled
			default:
			}
			return fmt.Errorf("kalshi: read: %w", err)
		}

		c.handleFrame(message)
	}
}

func (c *Client) handleFrame(raw []byte) {
	var frame tickerFrame
	if err := json.Unmarshal(raw, &frame); err != nil {
		return
	}
	if frame.Channel != "ticker" || frame.Ticker == "" {
		return
	}
	if frame.YesBid <= 0 || frame.YesAsk <= 0 {
		return
	}

	c.cache.Update(frame.Ticker, pricecache.KalshiUpdate{
		YesBid: frame.YesBid,
		YesAsk: frame.YesAsk,
	})
	metrics.RecordPriceUpdate("kalshi")

	if rec, ok := c.cache.Lookup(frame.Ticker); ok {
		select {
		case c.updates <- Update{Ticker: frame.Ticker, Record: rec, At: time.Now()}:
		default:
		}
	}
}

func (c *Client) setConn(conn *websocket.Conn) {
	c.connMu.Lock()
	c.conn = conn
	c.connMu.Unlock()
}

func (c *Client) getConn() *websocket.Conn {
	c.connMu.Lock()
	defer c.connMu.Unlock()
	return c.conn
}

func (c *Client) closeConn() {
	c.connMu.Lock()
	defer c.connMu.Unlock()
	if c.conn != nil {
		_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		_ = c.conn.Close()
		c.conn = nil
	}
}
