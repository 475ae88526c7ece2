package websocket

import (
	"encoding/json"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/scythe504/wordsearch-backend/internal"
)

// Hub tracks live connections and the room groups they belong to. Sends never
// block: a client whose buffer is full misses the message.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*Client
	groups  map[string]map[string]struct{}
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[string]*Client),
		groups:  make(map[string]map[string]struct{}),
	}
}

func (h *Hub) register(c *Client) {
	h.mu.Lock()
	h.clients[c.id] = c
	h.mu.Unlock()
}

// unregister drops the client from the hub and every group and closes its
// send channel, which stops the write pump.
func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if current, ok := h.clients[c.id]; !ok || current != c {
		return
	}
	delete(h.clients, c.id)
	for code, members := range h.groups {
		delete(members, c.id)
		if len(members) == 0 {
			delete(h.groups, code)
		}
	}
	close(c.send)
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) JoinGroup(roomCode, connID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[connID]; !ok {
		return
	}
	members, ok := h.groups[roomCode]
	if !ok {
		members = make(map[string]struct{})
		h.groups[roomCode] = members
	}
	members[connID] = struct{}{}
}

func (h *Hub) LeaveGroup(roomCode, connID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	members, ok := h.groups[roomCode]
	if !ok {
		return
	}
	delete(members, connID)
	if len(members) == 0 {
		delete(h.groups, roomCode)
	}
}

func (h *Hub) SendTo(connID string, msg internal.Message[any]) {
	payload, err := json.Marshal(msg)
	if err != nil {
		log.Error().Err(err).Str("type", msg.Type).Msg("[SendTo] failed to encode message")
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	client, ok := h.clients[connID]
	if !ok {
		log.Debug().Str("conn", connID).Str("type", msg.Type).Msg("[SendTo] connection gone, dropping")
		return
	}
	client.enqueue(payload, msg.Type)
}

// BroadcastExcept sends msg to every member of roomCode but exceptConnID. An
// empty exceptConnID reaches the whole group.
func (h *Hub) BroadcastExcept(roomCode, exceptConnID string, msg internal.Message[any]) {
	payload, err := json.Marshal(msg)
	if err != nil {
		log.Error().Err(err).Str("type", msg.Type).Msg("[Broadcast] failed to encode message")
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	sent := 0
	for connID := range h.groups[roomCode] {
		if connID == exceptConnID {
			continue
		}
		client, ok := h.clients[connID]
		if !ok {
			continue
		}
		if client.enqueue(payload, msg.Type) {
			sent++
		}
	}
	log.Debug().Str("room", roomCode).Str("type", msg.Type).Int("sent", sent).Msg("[Broadcast] delivered")
}
