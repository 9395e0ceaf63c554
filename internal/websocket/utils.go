package websocket

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeTimeout = 10 * time.Second
	readTimeout  = 5 * time.Minute
)

// Conn wraps a websocket connection with a write lock. gorilla/websocket
// permits at most one concurrent writer per connection, and the chat stream
// writes from both the read loop and the pub/sub fan-in goroutine.
type Conn struct {
	ws *websocket.Conn
	mu sync.Mutex
}

// NewConn wraps an upgraded connection.
func NewConn(ws *websocket.Conn) *Conn {
	return &Conn{ws: ws}
}

// Close closes the underlying connection.
func (c *Conn) Close() error {
	return c.ws.Close()
}

// WriteTyped sends a strongly-typed response payload over the WebSocket.
func (c *Conn) WriteTyped(v interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ws.SetWriteDeadline(time.Now().Add(writeTimeout))
	return c.ws.WriteJSON(v)
}

// WriteError sends a typed ErrorResponse over the WebSocket.
func (c *Conn) WriteError(errMsg string) error {
	return c.WriteTyped(ErrorResponse{
		Event: EventError,
		Error: errMsg,
	})
}

// ReadRaw reads one message as raw bytes so the caller can peek at the
// action before decoding the full payload. It sets a read deadline.
// Only one goroutine may read.
func (c *Conn) ReadRaw() ([]byte, error) {
	c.ws.SetReadDeadline(time.Now().Add(readTimeout))
	_, raw, err := c.ws.ReadMessage()
	return raw, err
}
