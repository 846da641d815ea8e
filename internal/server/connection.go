package server

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
)

const (
	writeWait = 10 * time.Second

	pongWait = 60 * time.Second

	pingPeriod = (pongWait * 9) / 10

	maxMessageSize = 8192

	// sendQueueSize bounds the per-connection outbound backlog (spec
	// §5.2: a bot that stalls its reader must not block broadcasts to
	// everyone else).
	sendQueueSize = 64
)

// ErrConnectionClosed is returned by Send once the connection's
// outbound queue has been closed.
var ErrConnectionClosed = errors.New("server: connection closed")

// ErrSendQueueFull is returned by Send when a slow reader has
// let its outbound backlog fill up; the caller should treat this seat
// as disconnected.
var ErrSendQueueFull = errors.New("server: send queue full")

// Connection wraps one bot's WebSocket socket: a bounded outbound
// queue drained by writePump, and inbound frames dispatched to
// onMessage as they arrive. Exactly one readPump and one writePump
// goroutine run per Connection.
type Connection struct {
	conn   *websocket.Conn
	send   chan []byte
	logger *log.Logger

	ctx    context.Context
	cancel context.CancelFunc

	closeOnce sync.Once

	onMessage    func(raw []byte)
	onDisconnect func()
}

// NewConnection builds a Connection. onMessage is invoked from the
// readPump goroutine for every inbound frame; onDisconnect fires
// exactly once, however the connection ends (peer close, read error,
// or explicit Close).
func NewConnection(conn *websocket.Conn, logger *log.Logger, onMessage func([]byte), onDisconnect func()) *Connection {
	ctx, cancel := context.WithCancel(context.Background())
	return &Connection{
		conn:         conn,
		send:         make(chan []byte, sendQueueSize),
		logger:       logger.WithPrefix("conn"),
		ctx:          ctx,
		cancel:       cancel,
		onMessage:    onMessage,
		onDisconnect: onDisconnect,
	}
}

// Start launches the read and write pumps. It returns immediately.
func (c *Connection) Start() {
	go c.writePump()
	go c.readPump()
}

// Close tears the connection down. Safe to call multiple times and
// from multiple goroutines.
func (c *Connection) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.cancel()
		close(c.send)
		err = c.conn.Close()
		if c.onDisconnect != nil {
			c.onDisconnect()
		}
	})
	return err
}

// Send enqueues a raw JSON frame for delivery. It never blocks: a full
// queue closes the connection and reports ErrSendQueueFull, treating a
// slow reader the same as a disconnect rather than stalling the
// broadcaster.
func (c *Connection) Send(raw []byte) error {
	select {
	case <-c.ctx.Done():
		return ErrConnectionClosed
	default:
	}

	select {
	case c.send <- raw:
		return nil
	default:
		c.logger.Warn("send queue full, dropping connection")
		_ = c.Close()
		return ErrSendQueueFull
	}
}

func (c *Connection) readPump() {
	defer func() { _ = c.Close() }()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Error("websocket read error", "error", err)
			}
			return
		}
		if c.onMessage != nil {
			c.onMessage(raw)
		}
	}
}

func (c *Connection) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case raw, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, raw); err != nil {
				c.logger.Error("websocket write error", "error", err)
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.ctx.Done():
			return
		}
	}
}
