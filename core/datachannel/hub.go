// Package datachannel fans session events out to frontend observers over
// websockets. Each room has its own set of subscribers; a slow subscriber is
// disconnected rather than allowed to stall the others.
package datachannel

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/speakbright/agent-core/core/session"
)

const sendBufferSize = 64

type client struct {
	conn *websocket.Conn

	mu     sync.Mutex
	send   chan []byte
	closed bool
}

func newClient(conn *websocket.Conn) *client {
	c := &client{
		conn: conn,
		send: make(chan []byte, sendBufferSize),
	}
	go c.writePump()
	return c
}

func (c *client) writePump() {
	defer c.conn.Close()
	for msg := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
}

// trySend queues msg for the write pump. It reports false only when the
// client is alive but its buffer is full; a closed client silently drops the
// message. A broadcast may still hold a reference to a client removed
// between its snapshot and its send, so the closed check and the channel
// send share a lock.
func (c *client) trySend(msg []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return true
	}
	select {
	case c.send <- msg:
		return true
	default:
		return false
	}
}

// close stops the write pump once. Idempotent.
func (c *client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

// Hub tracks websocket subscribers per room and broadcasts to them.
type Hub struct {
	mu    sync.RWMutex
	rooms map[string]map[*client]bool
}

func NewHub() *Hub {
	return &Hub{rooms: make(map[string]map[*client]bool)}
}

// AddClient subscribes a websocket connection to a room's events.
func (h *Hub) AddClient(room string, conn *websocket.Conn) *client {
	c := newClient(conn)

	h.mu.Lock()
	if h.rooms[room] == nil {
		h.rooms[room] = make(map[*client]bool)
	}
	h.rooms[room][c] = true
	h.mu.Unlock()

	logger.Info("observer subscribed", "room", room)
	return c
}

// RemoveClient unsubscribes a connection and stops its write pump. Safe to
// call twice.
func (h *Hub) RemoveClient(room string, c *client) {
	h.mu.Lock()
	if clients, ok := h.rooms[room]; ok {
		if _, ok := clients[c]; ok {
			delete(clients, c)
			c.close()
		}
		if len(clients) == 0 {
			delete(h.rooms, room)
		}
	}
	h.mu.Unlock()
}

// Publish broadcasts a session event to every subscriber of a room.
func (h *Hub) Publish(room string, event session.Event) {
	data, err := json.Marshal(event)
	if err != nil {
		logger.Error("failed to marshal session event", "error", err)
		return
	}
	h.broadcast(room, data)
}

// PublishTranscript broadcasts a transcript line to a room's subscribers.
func (h *Hub) PublishTranscript(room string, transcript TranscriptMessage) {
	data, err := json.Marshal(transcript)
	if err != nil {
		logger.Error("failed to marshal transcript", "error", err)
		return
	}
	h.broadcast(room, data)
}

func (h *Hub) broadcast(room string, data []byte) {
	h.mu.RLock()
	clients := make([]*client, 0, len(h.rooms[room]))
	for c := range h.rooms[room] {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		if !c.trySend(data) {
			// Client can't keep up, disconnect it
			logger.Warn("observer too slow, disconnecting", "room", room)
			h.RemoveClient(room, c)
		}
	}
}

// ClientCount returns the number of subscribers for a room.
func (h *Hub) ClientCount(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}

// RoomPublisher binds the hub to a single room, satisfying
// session.Publisher for that room's session.
func (h *Hub) RoomPublisher(room string) *RoomPublisher {
	return &RoomPublisher{hub: h, room: room}
}

// RoomPublisher publishes a single room's events through the hub.
type RoomPublisher struct {
	hub  *Hub
	room string
}

func (p *RoomPublisher) Publish(event session.Event) {
	p.hub.Publish(p.room, event)
}
