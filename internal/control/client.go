package control

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
)

// DefaultReconnectDelay is the pause between connection attempts.
const DefaultReconnectDelay = 5 * time.Second

// Toggler is the narration switch the control channel drives.
type Toggler interface {
	// SetEnabled applies the toggle; disabling must also stop playback.
	SetEnabled(enabled bool)

	// Enabled reports the value actually in effect.
	Enabled() bool
}

// Client maintains one long-lived WebSocket connection to the backend
// coordinator. The connection is an optional enhancement: while it is down,
// narration keeps running with the last applied toggle.
type Client struct {
	url            string
	name           string
	toggler        Toggler
	reconnectDelay time.Duration
	log            *log.Logger

	// writeMu serializes frame writes; gorilla permits one writer at a time.
	writeMu sync.Mutex
}

// NewClient creates a control client for the given backend URL.
func NewClient(url, name string, toggler Toggler, logger *log.Logger) *Client {
	if logger == nil {
		logger = log.Default()
	}
	return &Client{
		url:            url,
		name:           name,
		toggler:        toggler,
		reconnectDelay: DefaultReconnectDelay,
		log:            logger.With("component", "control"),
	}
}

// SetReconnectDelay overrides the pause between connection attempts.
func (c *Client) SetReconnectDelay(d time.Duration) {
	if d > 0 {
		c.reconnectDelay = d
	}
}

// Run maintains the control connection until the context ends. Connection
// failures are never fatal; each one is retried after the reconnect delay.
func (c *Client) Run(ctx context.Context) error {
	for {
		if err := c.session(ctx); err != nil && ctx.Err() == nil {
			c.log.Warn("control connection lost", "url", c.url, "error", err)
		}

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(c.reconnectDelay):
		}
	}
}

// session runs one connection: dial, identify, then serve inbound messages
// until the connection breaks or the context ends.
func (c *Client) session(ctx context.Context) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, c.url, nil)
	if err != nil {
		return fmt.Errorf("dial %s: %w", c.url, err)
	}
	defer conn.Close()

	// Unblock ReadMessage when the context ends.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	if err := c.write(conn, Identify(c.name)); err != nil {
		return fmt.Errorf("identify: %w", err)
	}
	c.log.Info("connected to backend", "url", c.url, "name", c.name)

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		c.handle(conn, data)
	}
}

// handle dispatches one inbound frame. Unknown and malformed messages are
// ignored.
func (c *Client) handle(conn *websocket.Conn, data []byte) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		c.log.Debug("ignoring malformed control message", "error", err)
		return
	}

	switch msg.Type {
	case TypePing:
		if err := c.write(conn, Pong(msg.PingID)); err != nil {
			c.log.Debug("could not answer ping", "error", err)
		}

	case TypeTTSToggle:
		enabled := msg.Enabled == nil || *msg.Enabled
		c.toggler.SetEnabled(enabled)
		applied := c.toggler.Enabled()
		c.log.Info("narration toggled", "enabled", applied)
		if err := c.write(conn, StateConfirm(applied)); err != nil {
			c.log.Debug("could not confirm toggle", "error", err)
		}

	default:
		c.log.Debug("ignoring control message", "type", msg.Type)
	}
}

func (c *Client) write(conn *websocket.Conn, msg Message) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return conn.WriteJSON(msg)
}
