package ws

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"auctionshowcase/internal/live"
)

const relayTimeout = 3 * time.Second

// relay forwards live channels from Redis to the hub over a single PubSub
// connection. A topic's channel is joined while at least one screen watches
// it and left when the last one goes.
type relay struct {
	rdb      redis.UniversalClient
	hub      *Hub
	mu       sync.Mutex
	ps       *redis.PubSub
	watchers map[string]int
}

func newRelay(rdb redis.UniversalClient, hub *Hub) *relay {
	return &relay{rdb: rdb, hub: hub, watchers: make(map[string]int)}
}

func (r *relay) watch(topic string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.watchers[topic]++
	if r.watchers[topic] > 1 {
		return
	}

	channel := live.Channel(topic)
	if r.ps == nil {
		r.ps = r.rdb.Subscribe(context.Background(), channel)
		go r.forward(r.ps)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), relayTimeout)
	defer cancel()
	if err := r.ps.Subscribe(ctx, channel); err != nil {
		zap.L().Warn("ws_relay_subscribe_failed", zap.String("channel", channel), zap.Error(err))
	}
}

func (r *relay) unwatch(topic string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	n, ok := r.watchers[topic]
	if !ok {
		return
	}
	if n > 1 {
		r.watchers[topic] = n - 1
		return
	}
	delete(r.watchers, topic)

	ctx, cancel := context.WithTimeout(context.Background(), relayTimeout)
	defer cancel()
	if err := r.ps.Unsubscribe(ctx, live.Channel(topic)); err != nil {
		zap.L().Warn("ws_relay_unsubscribe_failed", zap.String("topic", topic), zap.Error(err))
	}
}

func (r *relay) forward(ps *redis.PubSub) {
	for m := range ps.Channel() {
		topic, ok := live.TopicOf(m.Channel)
		if !ok {
			continue
		}
		wrapped, err := wrapLiveEvent(m.Payload)
		if err != nil {
			zap.L().Warn("ws_wrap_event_failed", zap.String("topic", topic), zap.Error(err))
			continue
		}
		r.hub.Broadcast(topic, wrapped)
	}
}

// close drops the PubSub connection; forward returns once its channel closes.
func (r *relay) close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.ps == nil {
		return nil
	}
	err := r.ps.Close()
	r.ps = nil
	clear(r.watchers)
	return err
}

// wrapLiveEvent turns
//
//	{"event":"running","auction":{…},"at":"…"}
//
// into
//
//	{"event":"live/running","body":{"auction":{…},"at":"…"}}
func wrapLiveEvent(payload string) ([]byte, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal([]byte(payload), &raw); err != nil {
		return nil, err
	}

	var evt string
	if v, ok := raw["event"]; ok {
		_ = json.Unmarshal(v, &evt)
	}
	if evt == "" {
		evt = "unknown"
	}
	delete(raw, "event")

	body, err := json.Marshal(raw)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{Event: "live/" + evt, Body: body})
}
