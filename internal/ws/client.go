package ws

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// ConnectionConfig bounds a single WebSocket connection
type ConnectionConfig struct {
	// SendBuffer is the number of outbound frames queued before Send fails
	SendBuffer int
	// MaxMessageSize is the largest inbound frame accepted
	MaxMessageSize int64
	// PongWait is how long to wait for the peer's pong before the read fails
	PongWait time.Duration
	// WriteWait is the deadline for a single outbound write
	WriteWait time.Duration
}

// DefaultConnectionConfig returns the limits used when none are configured
func DefaultConnectionConfig() ConnectionConfig {
	return ConnectionConfig{
		SendBuffer:     256,
		MaxMessageSize: 512 * 1024,
		PongWait:       60 * time.Second,
		WriteWait:      10 * time.Second,
	}
}

func (c ConnectionConfig) withDefaults() ConnectionConfig {
	d := DefaultConnectionConfig()
	if c.SendBuffer <= 0 {
		c.SendBuffer = d.SendBuffer
	}
	if c.MaxMessageSize <= 0 {
		c.MaxMessageSize = d.MaxMessageSize
	}
	if c.PongWait <= 0 {
		c.PongWait = d.PongWait
	}
	if c.WriteWait <= 0 {
		c.WriteWait = d.WriteWait
	}
	return c
}

// pingPeriod must be less than pongWait
func (c ConnectionConfig) pingPeriod() time.Duration {
	return (c.PongWait * 9) / 10
}

// Connection is a Channel over a gorilla WebSocket. Outbound frames go
// through a bounded queue drained by a single write pump; the session's read
// loop is the only reader.
type Connection struct {
	conn      *websocket.Conn
	cfg       ConnectionConfig
	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

// NewConnection wraps conn and starts its write pump
func NewConnection(conn *websocket.Conn, cfg ConnectionConfig) *Connection {
	cfg = cfg.withDefaults()
	c := &Connection{
		conn: conn,
		cfg:  cfg,
		send: make(chan []byte, cfg.SendBuffer),
		done: make(chan struct{}),
	}

	conn.SetReadLimit(cfg.MaxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(cfg.PongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(cfg.PongWait))
	})

	go c.writePump()
	return c
}

// Send queues payload as a text frame without blocking
func (c *Connection) Send(payload []byte) error {
	select {
	case <-c.done:
		return ErrConnectionClosed
	default:
	}

	select {
	case c.send <- payload:
		return nil
	case <-c.done:
		return ErrConnectionClosed
	default:
		return ErrSendQueueFull
	}
}

// Close stops the write pump, which flushes queued frames, sends a close
// frame and closes the socket. The blocked reader then returns an error.
func (c *Connection) Close() error {
	c.closeOnce.Do(func() { close(c.done) })
	return nil
}

// Done is closed once the connection has been closed
func (c *Connection) Done() <-chan struct{} {
	return c.done
}

// Read blocks for the next inbound frame
func (c *Connection) Read() ([]byte, error) {
	_, data, err := c.conn.ReadMessage()
	return data, err
}

func (c *Connection) writePump() {
	ticker := time.NewTicker(c.cfg.pingPeriod())
	defer func() {
		ticker.Stop()
		c.Close()
		c.conn.Close()
	}()

	for {
		select {
		case message := <-c.send:
			if err := c.write(message); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.done:
			c.flush()
			_ = c.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(c.cfg.WriteWait))
			return
		}
	}
}

func (c *Connection) write(message []byte) error {
	_ = c.conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteWait))
	return c.conn.WriteMessage(websocket.TextMessage, message)
}

// flush writes whatever is still queued, one frame per message
func (c *Connection) flush() {
	for {
		select {
		case message := <-c.send:
			if err := c.write(message); err != nil {
				return
			}
		default:
			return
		}
	}
}
