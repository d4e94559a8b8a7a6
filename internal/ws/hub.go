package ws

import "sync"

// Transport is the minimal connection surface the hub needs; satisfied
// by *websocket.Conn and faked in tests.
type Transport interface {
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// TextMessage mirrors the websocket text frame opcode so the hub does
// not depend on the websocket package directly.
const TextMessage = 1

// Client is one registered connection. Writes are serialized per
// client; a failed write marks the transport closed and later
// broadcasts skip it.
type Client struct {
	userID    string
	transport Transport

	mu     sync.Mutex
	closed bool
}

// Send writes one text frame to this client only. Used for private
// error replies that must not reach other connections.
func (c *Client) Send(payload []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	if err := c.transport.WriteMessage(TextMessage, payload); err != nil {
		c.closed = true
		return err
	}
	return nil
}

func (c *Client) markClosed() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
}

// Hub owns the live-connection registry and fans payloads out to every
// registered peer. It keeps no history and persists nothing.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*Client

	// Serializes fan-outs so every connection sees broadcasts in the
	// same server-side publish order.
	broadcastMu sync.Mutex
}

// NewHub creates an empty hub
func NewHub() *Hub {
	return &Hub{clients: make(map[string]*Client)}
}

// Register tracks a connection under the authenticated user ID. A
// second connection from the same user replaces the first in the
// registry (last-writer-wins).
func (h *Hub) Register(userID string, transport Transport) *Client {
	client := &Client{userID: userID, transport: transport}

	h.mu.Lock()
	h.clients[userID] = client
	h.mu.Unlock()

	return client
}

// Unregister removes the client's registry entry, but only if the
// entry still points at this client: a connection replaced by a newer
// one must not evict its successor on close.
func (h *Hub) Unregister(client *Client) {
	client.markClosed()

	h.mu.Lock()
	if h.clients[client.userID] == client {
		delete(h.clients, client.userID)
	}
	h.mu.Unlock()
}

// Broadcast sends payload to every registered connection whose
// transport is still open. Closed transports are skipped, not removed;
// removal happens on explicit unregister.
func (h *Hub) Broadcast(payload []byte) {
	h.broadcastMu.Lock()
	defer h.broadcastMu.Unlock()

	h.mu.RLock()
	clients := make([]*Client, 0, len(h.clients))
	for _, client := range h.clients {
		clients = append(clients, client)
	}
	h.mu.RUnlock()

	for _, client := range clients {
		_ = client.Send(payload)
	}
}

// Count returns the number of registered connections.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// CloseAll closes every registered transport and clears the registry.
// Called on shutdown.
func (h *Hub) CloseAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for userID, client := range h.clients {
		client.markClosed()
		_ = client.transport.Close()
		delete(h.clients, userID)
	}
}
