package ws

import (
	"sync"

	"go.uber.org/zap"

	"auctionshowcase/internal/metrics"
)

// Hub groups connected screens by live topic. Empty rooms are dropped.
type Hub struct {
	mu    sync.Mutex
	rooms map[string]*room
}

func NewHub() *Hub { return &Hub{rooms: make(map[string]*room)} }

func (h *Hub) Join(s *screen) {
	h.mu.Lock()
	r, ok := h.rooms[s.topic]
	if !ok {
		r = newRoom()
		h.rooms[s.topic] = r
	}
	r.add(s)
	h.mu.Unlock()
	metrics.LiveClients.Inc()
}

// Leave removes s from its room and closes the connection.
func (h *Hub) Leave(s *screen) {
	h.mu.Lock()
	var present bool
	if r, ok := h.rooms[s.topic]; ok {
		var remaining int
		present, remaining = r.remove(s)
		if remaining == 0 {
			delete(h.rooms, s.topic)
		}
	}
	h.mu.Unlock()

	if present {
		metrics.LiveClients.Dec()
	}
	s.close()
}

// Broadcast sends msg to every screen on topic and evicts those that fail.
func (h *Hub) Broadcast(topic string, msg []byte) {
	h.mu.Lock()
	r, ok := h.rooms[topic]
	h.mu.Unlock()
	if !ok {
		return
	}
	failed := r.broadcast(msg)
	for _, s := range failed {
		h.Leave(s)
	}
	if len(failed) > 0 {
		zap.L().Debug("ws_screens_dropped", zap.String("topic", topic), zap.Int("count", len(failed)))
	}
}

func (h *Hub) Size(topic string) int {
	h.mu.Lock()
	r, ok := h.rooms[topic]
	h.mu.Unlock()
	if !ok {
		return 0
	}
	return r.size()
}
