package websocket

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/vaweTech/LMS1.5Exam-sub000/internal/response"
)

const (
	writeWait = 10 * time.Second
	readWait  = 5 * time.Minute
)

// Conn serializes writes to a WebSocket connection. gorilla/websocket allows
// one concurrent writer; machine events arrive from timer goroutines as well
// as the read loop.
type Conn struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

// NewConn wraps conn.
func NewConn(conn *websocket.Conn) *Conn {
	return &Conn{conn: conn}
}

// WriteTyped sends a strongly-typed response payload over the WebSocket.
func (c *Conn) WriteTyped(v interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteJSON(v)
}

// WriteEvent sends data wrapped in an EventResponse.
func (c *Conn) WriteEvent(event Event, data interface{}) error {
	return c.WriteTyped(EventResponse{Event: event, Data: data})
}

// WriteError sends a typed ErrorResponse over the WebSocket.
func (c *Conn) WriteError(code response.ErrCode, errMsg string) error {
	return c.WriteTyped(ErrorResponse{
		Event: EventError,
		Code:  code,
		Error: errMsg,
	})
}

// ReadMessage reads one text frame with a read deadline and returns its
// action and raw body. Decode the body into the action's request type.
func (c *Conn) ReadMessage() (Action, []byte, error) {
	c.conn.SetReadDeadline(time.Now().Add(readWait))
	_, data, err := c.conn.ReadMessage()
	if err != nil {
		return "", nil, err
	}
	var env RequestEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return "", data, err
	}
	return env.Action, data, nil
}

// Close closes the underlying connection.
func (c *Conn) Close() error {
	return c.conn.Close()
}
