package render

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"graph-explorer/backend/pkg/logger"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 512 * 1024

	// Send buffer size
	sendBufferSize = 256
)

// ClientObserver is told how many clients are connected after every change.
type ClientObserver interface {
	SetRenderClients(n int)
}

// HubOption configures a Hub.
type HubOption func(*Hub)

// WithClientObserver reports connection counts to o.
func WithClientObserver(o ClientObserver) HubOption {
	return func(h *Hub) {
		h.observer = o
	}
}

// WithGreeter sets the commands replayed to every newly connected client.
func WithGreeter(fn func() []Command) HubOption {
	return func(h *Hub) {
		h.greeter = fn
	}
}

// Hub owns the websocket connections of the rendering surface. Commands are
// fanned out to every client; inbound events go to the EventHandler.
type Hub struct {
	upgrader websocket.Upgrader

	mu       sync.RWMutex
	clients  map[string]*Client
	handler  EventHandler
	greeter  func() []Command
	observer ClientObserver

	ctx    context.Context
	cancel context.CancelFunc
	logger *zap.Logger
}

// NewHub creates a hub. Events are dropped until SetHandler is called.
func NewHub(opts ...HubOption) *Hub {
	ctx, cancel := context.WithCancel(context.Background())
	h := &Hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		clients: make(map[string]*Client),
		ctx:     ctx,
		cancel:  cancel,
		logger:  logger.With("render_hub"),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// SetHandler installs the receiver of interaction events.
func (h *Hub) SetHandler(handler EventHandler) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.handler = handler
}

// ServeHTTP upgrades the request to a websocket and starts the client.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("Failed to upgrade connection",
			zap.Error(err),
			zap.String("remote_addr", r.RemoteAddr),
		)
		return
	}

	client := &Client{
		id:   uuid.New().String(),
		hub:  h,
		conn: conn,
		send: make(chan []byte, sendBufferSize),
	}
	client.logger = h.logger.With(zap.String("client_id", client.id))

	h.register(client)

	go client.writePump()
	go client.readPump()

	if h.greeter != nil {
		for _, cmd := range h.greeter() {
			if err := h.sendTo(client, cmd); err != nil {
				client.logger.Warn("Failed to replay state", zap.Error(err))
				break
			}
		}
	}

	h.logger.Info("Rendering client connected",
		zap.String("client_id", client.id),
		zap.String("remote_addr", r.RemoteAddr),
	)
}

// Broadcast sends cmd to every connected client. Clients whose send buffer
// is full are disconnected.
func (h *Hub) Broadcast(cmd Command) error {
	payload, err := json.Marshal(cmd)
	if err != nil {
		return fmt.Errorf("failed to encode %s command: %w", cmd.Action, err)
	}

	var g errgroup.Group
	for _, c := range h.snapshot() {
		c := c
		g.Go(func() error {
			if !c.enqueue(payload) {
				h.unregister(c)
				return fmt.Errorf("client %s is not keeping up", c.id)
			}
			return nil
		})
	}
	return g.Wait()
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close disconnects every client and stops event dispatch.
func (h *Hub) Close() {
	h.cancel()
	for _, c := range h.snapshot() {
		h.unregister(c)
	}
}

func (h *Hub) sendTo(c *Client, cmd Command) error {
	payload, err := json.Marshal(cmd)
	if err != nil {
		return fmt.Errorf("failed to encode %s command: %w", cmd.Action, err)
	}
	if !c.enqueue(payload) {
		h.unregister(c)
		return fmt.Errorf("client %s is not keeping up", c.id)
	}
	return nil
}

func (h *Hub) register(c *Client) {
	h.mu.Lock()
	h.clients[c.id] = c
	count := len(h.clients)
	h.mu.Unlock()

	if h.observer != nil {
		h.observer.SetRenderClients(count)
	}
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	_, ok := h.clients[c.id]
	delete(h.clients, c.id)
	count := len(h.clients)
	h.mu.Unlock()

	c.close()
	if !ok {
		return
	}
	if h.observer != nil {
		h.observer.SetRenderClients(count)
	}
	h.logger.Info("Rendering client disconnected", zap.String("client_id", c.id))
}

func (h *Hub) snapshot() []*Client {
	h.mu.RLock()
	defer h.mu.RUnlock()
	clients := make([]*Client, 0, len(h.clients))
	for _, c := range h.clients {
		clients = append(clients, c)
	}
	return clients
}

func (h *Hub) dispatch(clientID string, ev Event) {
	h.mu.RLock()
	handler := h.handler
	h.mu.RUnlock()

	if handler == nil {
		h.logger.Debug("Dropping event, no handler installed", zap.String("event", ev.Event))
		return
	}
	handler.HandleEvent(h.ctx, clientID, ev)
}

// Client is one websocket connection to a rendering widget.
type Client struct {
	id     string
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	logger *zap.Logger

	mu     sync.Mutex
	closed bool
}

// ID returns the client's connection id.
func (c *Client) ID() string {
	return c.id
}

func (c *Client) enqueue(payload []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return true
	}
	select {
	case c.send <- payload:
		return true
	default:
		return false
	}
}

func (c *Client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

// readPump decodes interaction events until the connection drops.
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		messageType, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Error("WebSocket read error", zap.Error(err))
			}
			return
		}
		if messageType != websocket.TextMessage {
			c.logger.Warn("Binary messages not supported")
			continue
		}

		var ev Event
		if err := json.Unmarshal(bytes.TrimSpace(message), &ev); err != nil || ev.Event == "" {
			c.logger.Warn("Ignoring malformed event", zap.String("message", string(message)))
			continue
		}
		c.hub.dispatch(c.id, ev)
	}
}

// writePump writes queued commands and keeps the connection alive with pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				c.logger.Error("Failed to write message", zap.Error(err))
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.logger.Error("Failed to send ping", zap.Error(err))
				return
			}
		}
	}
}
