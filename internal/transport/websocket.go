// Package transport opens the suggestion channel's WebSocket connections.
package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/lexiqai/meeting-assistant/internal/suggestions"
)

// MaxMessageSize bounds a single inbound frame. Larger frames fail the read.
const MaxMessageSize = 1 << 20

// WebSocketDialer dials <BaseURL>/<meetingID>
type WebSocketDialer struct {
	BaseURL string
	Header  http.Header
	dialer  *websocket.Dialer
}

// NewWebSocketDialer creates a dialer for the suggestion endpoint
func NewWebSocketDialer(baseURL string, handshakeTimeout time.Duration) *WebSocketDialer {
	return &WebSocketDialer{
		BaseURL: strings.TrimRight(baseURL, "/"),
		dialer: &websocket.Dialer{
			Proxy:            http.ProxyFromEnvironment,
			HandshakeTimeout: handshakeTimeout,
			ReadBufferSize:   4096,
			WriteBufferSize:  4096,
		},
	}
}

// URL returns the endpoint for a meeting
func (d *WebSocketDialer) URL(meetingID string) string {
	return d.BaseURL + "/" + url.PathEscape(meetingID)
}

// Dial implements suggestions.Dialer
func (d *WebSocketDialer) Dial(ctx context.Context, meetingID string) (suggestions.Conn, error) {
	conn, resp, err := d.dialer.DialContext(ctx, d.URL(meetingID), d.Header)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("failed to dial %s: %w (status %d)", d.URL(meetingID), err, resp.StatusCode)
		}
		return nil, fmt.Errorf("failed to dial %s: %w", d.URL(meetingID), err)
	}
	conn.SetReadLimit(MaxMessageSize)
	return &Conn{conn: conn}, nil
}

// Conn adapts a gorilla connection to suggestions.Conn
type Conn struct {
	conn *websocket.Conn
	// gorilla supports one concurrent writer
	writeMu sync.Mutex
}

// ReadMessage returns the next text or binary message
func (c *Conn) ReadMessage() ([]byte, error) {
	_, message, err := c.conn.ReadMessage()
	return message, err
}

// WriteJSON writes v as one JSON text message with no trailing newline
func (c *Conn) WriteJSON(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

// Close sends a close frame (best effort) and closes the socket
func (c *Conn) Close() error {
	c.writeMu.Lock()
	_ = c.conn.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second),
	)
	c.writeMu.Unlock()
	return c.conn.Close()
}
