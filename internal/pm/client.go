// Package pm implements Stream Client A: a public, many-tokens WebSocket
// client for a Polymarket-style venue. It maintains a best-effort live
// connection, subscribes to a configured set of outcome-token ids in
// chunks, and routes every inbound top-of-book change into a PM price
// cache.
//
// The connection lifecycle is driven by an explicit state machine rather
// than a reconnect-signal channel, so there is no window where a
// reconnect signal can be delivered between loop iterations and silently
// dropped.
package pm

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

// state is one node of the connection-manager finite-state machine.
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

func (s state) String() string {
	switch s {
	case stateIdle:
		return "idle"
	case stateDialing:
		return "dialing"
	case stateSubscribing:
		return "subscribing"
	case stateReading:
		return "reading"
	case stateClosing:
		return "closing"
	case stateBackoff:
		return "backoff"
	case stateTerminated:
		return "terminated"
	default:
		return "unknown"
	}
}

const (
	dialTimeout      = 10 * time.Second
	pingInterval     = 30 * time.Second
	readDeadline     = 60 * time.Second
	interChunkPause  = 100 * time.Millisecond
	baseBackoff      = 2 * time.Second
	maxBackoff       = 60 * time.Second
	updateBufferSize = 1000
)

// Update is a single top-of-book change fanned out on the optional update
// channel, kept for downstream consumers such as the inspection server's
// live-tail endpoint.
type Update struct {
	TokenID string
	Record  pricecache.PMRecord
	At      time.Time
}

// Client is Stream Client A. One Client instance owns one connection at a
// time; Cache is the only state it shares with the rest of the process.
type Client struct {
	wsURL     string
	tokenIDs  []string
	chunkSize int
	cache     *pricecache.PM
	logger    *slog.Logger

	connMu sync.Mutex
	conn   *websocket.Conn

	updates chan Update
}

// Config configures a Client.
type Config struct {
	WSURL     string
	TokenIDs  []string
	ChunkSize int
	Cache     *pricecache.PM
	Logger    *slog.Logger
}

// New creates a Stream Client A in the Idle state. Call Run to start it.
func New(cfg Config) *Client {
	chunk := cfg.ChunkSize
	if chunk <= 0 {
		chunk = 400
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	metrics.SetVenueDisabled("pm", false)
	return &Client{
		wsURL:     cfg.WSURL,
		tokenIDs:  cfg.TokenIDs,
		chunkSize: chunk,
		cache:     cfg.Cache,
		logger:    logger.With(slog.String("component", "pm_stream")),
		updates:   make(chan Update, updateBufferSize),
	}
}

// Updates returns the bounded fan-out channel of top-of-book changes. On a
// full channel, the read loop drops the update; back-pressure here never
// blocks ingestion into the cache. No counter records dropped updates.
func (c *Client) Updates() <-chan Update { return c.updates }

// Run drives the connection-manager state machine until ctx is cancelled.
// It never returns an error to the caller: all network and parse failures
// are local and are retried by reconnection. Run blocks until Terminated.
func (c *Client) Run(ctx context.Context) {
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
				c.logger.Warn("pm: dial failed", slog.String("attempt", attemptID), slog.String("error", err.Error()))
				metrics.RecordWSReconnect("pm")
				st = stateBackoff
				continue
			}
			c.setConn(conn)
			st = stateSubscribing

		case stateSubscribing:
			if err := c.subscribe(ctx); err != nil {
				c.logger.Warn("pm: subscribe failed", slog.String("error", err.Error()))
				st = stateClosing
				continue
			}
			metrics.SetWSConnectionStatus("pm", true)
			delay = baseBackoff
			st = stateReading

		case stateReading:
			err := c.readUntilStallOrClose(ctx)
			metrics.SetWSConnectionStatus("pm", false)
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
	dialCtx, cancel := context.WithTimeout(ctx, dialTimeout)
	defer cancel()

	dialer := websocket.Dialer{HandshakeTimeout: dialTimeout}
	conn, _, err := dialer.DialContext(dialCtx, c.wsURL, nil)
	if err != nil {
		return nil, fmt.Errorf("pm: dial: %w", err)
	}
	return conn, nil
}

// subscribe partitions the instrument list into chunks of c.chunkSize and
// sends each as an independent subscribe frame with a small pause between
// chunks. Ordering across chunks is not observable from the outside.
func (c *Client) subscribe(ctx context.Context) error {
	conn := c.getConn()
	if conn == nil {
		return fmt.Errorf("pm: subscribe: no connection")
	}

	for i := 0; i < len(c.tokenIDs); i += c.chunkSize {
		end := i + c.chunkSize
		if end > len(c.tokenIDs) {
			end = len(c.tokenIDs)
		}
		msg := subscribeMsg{Type: "MARKET", AssetsIDs: c.tokenIDs[i:end]}

		conn.SetWriteDeadline(time.Now().Add(dialTimeout))
		if err := conn.WriteJSON(msg); err != nil {
			return fmt.Errorf("pm: write subscribe chunk: %w", err)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(interChunkPause):
		}
	}
	return nil
}

// readUntilStallOrClose runs the ping loop and the read loop concurrently
// against the current connection, returning when either one observes a
// terminal condition: a read error, a stall (rolling read-deadline
// expiry), a ping write failure, or context cancellation.
func (c *Client) readUntilStallOrClose(ctx context.Context) error {
	conn := c.getConn()
	if conn == nil {
		return fmt.Errorf("pm: read: no connection")
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
				c.logger.Debug("pm: ping failed", slog.String("error", err.Error()))
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
			return fmt.Errorf("pm: read: %w", err)
		}

		c.handleFrame(message)
	}
}

func (c *Client) handleFrame(raw []byte) {
	var env frameEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return
	}
	if env.EventType != "book" && env.EventType != "price_change" {
		return
	}

	var frame priceFrame
	if err := json.Unmarshal(raw, &frame); err != nil {
		return
	}
	if frame.Asset == "" || frame.Price <= 0 {
		return
	}

	upd := pricecache.PMUpdate{}
	switch frame.Side {
	case "sell":
		upd.Ask = frame.Price
	case "buy":
		upd.Bid = frame.Price
	default:
		return
	}

	c.cache.Update(frame.Asset, upd)
	metrics.RecordPriceUpdate("pm")

	rec, _ := c.cache.Lookup(frame.Asset)
	select {
	case c.updates <- Update{TokenID: frame.Asset, Record: rec, At: time.Now()}:
	default:
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
