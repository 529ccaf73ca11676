// Package live publishes auction screen updates through Redis so every API
// instance can fan them out to its websocket clients.
package live

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"auctionshowcase/internal/database/docstore"
	"auctionshowcase/internal/media"
	"auctionshowcase/internal/metrics"
	"auctionshowcase/internal/models"
	"auctionshowcase/internal/redis/redis_functions"
)

const (
	// TopicAll receives every event; auction topics only their own.
	TopicAll = "all"
	// RunningKey holds the presented running auction, absent when none runs.
	RunningKey = "live:running"

	publishTimeout = 2 * time.Second
)

// Event names, prefixed with "live/" on the websocket.
const (
	EventRunning  = "running"
	EventDisplay  = "display"
	EventUpdated  = "updated"
	EventDeleted  = "deleted"
	EventPrice    = "price"
	EventSnapshot = "snapshot"
)

func Channel(topic string) string { return "live:" + topic + ":events" }

// TopicOf is the inverse of Channel.
func TopicOf(channel string) (string, bool) {
	topic, ok := strings.CutPrefix(channel, "live:")
	if !ok {
		return "", false
	}
	topic, ok = strings.CutSuffix(topic, ":events")
	return topic, ok && topic != ""
}

// Publisher is the write side used by the services. Publishing is best
// effort: failures are logged and never fail the request.
type Publisher interface {
	AuctionChanged(ctx context.Context, event string, auction docstore.Document)
	RunningChanged(ctx context.Context, running docstore.Document)
	PriceRecorded(ctx context.Context, price docstore.Document)
}

// Nop discards every event.
type Nop struct{}

func (Nop) AuctionChanged(context.Context, string, docstore.Document) {}
func (Nop) RunningChanged(context.Context, docstore.Document)         {}
func (Nop) PriceRecorded(context.Context, docstore.Document)          {}

// Payload is the JSON published on a channel.
type Payload struct {
	Event   string            `json:"event"`
	Auction docstore.Document `json:"auction,omitempty"`
	Price   docstore.Document `json:"price,omitempty"`
	At      time.Time         `json:"at"`
}

type RedisPublisher struct {
	rdb       redis.UniversalClient
	presenter media.Presenter
	now       func() time.Time
}

var _ Publisher = (*RedisPublisher)(nil)

func NewRedisPublisher(rdb redis.UniversalClient, presenter media.Presenter) *RedisPublisher {
	return &RedisPublisher{rdb: rdb, presenter: presenter, now: time.Now}
}

func (p *RedisPublisher) AuctionChanged(ctx context.Context, event string, auction docstore.Document) {
	p.publish(ctx, Payload{Event: event, Auction: p.presenter.Present(models.Auctions, auction)}, auction.ID())
}

func (p *RedisPublisher) PriceRecorded(ctx context.Context, price docstore.Document) {
	auctionID := price.String("auction")
	p.publish(ctx, Payload{Event: EventPrice, Price: price}, auctionID)
}

// RunningChanged replaces the running snapshot and announces it. A nil
// running document clears the snapshot.
func (p *RedisPublisher) RunningChanged(ctx context.Context, running docstore.Document) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	payload := Payload{Event: EventRunning, Auction: p.presenter.Present(models.Auctions, running), At: p.now()}
	msg, err := json.Marshal(payload)
	if err != nil {
		zap.L().Error("live_encode_failed", zap.Error(err))
		return
	}
	snapshot := ""
	keys := []string{RunningKey, Channel(TopicAll)}
	if running != nil {
		b, err := json.Marshal(payload.Auction)
		if err != nil {
			zap.L().Error("live_encode_failed", zap.Error(err))
			return
		}
		snapshot = string(b)
		keys = append(keys, Channel(running.ID()))
	}

	err = p.rdb.FCall(ctx, redis_functions.LiveSetRunning, keys, snapshot, string(msg)).Err()
	metrics.LiveEventsTotal.WithLabelValues(EventRunning, metrics.Outcome(err)).Inc()
	if err != nil {
		zap.L().Warn("live_set_running_failed", zap.Error(err))
	}
}

func (p *RedisPublisher) publish(ctx context.Context, payload Payload, topic string) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	payload.At = p.now()
	msg, err := json.Marshal(payload)
	if err != nil {
		zap.L().Error("live_encode_failed", zap.Error(err))
		return
	}
	keys := []string{Channel(TopicAll)}
	if topic != "" {
		keys = append(keys, Channel(topic))
	}
	err = p.rdb.FCall(ctx, redis_functions.LivePublish, keys, string(msg)).Err()
	metrics.LiveEventsTotal.WithLabelValues(payload.Event, metrics.Outcome(err)).Inc()
	if err != nil {
		zap.L().Warn("live_publish_failed", zap.String("event", payload.Event), zap.Error(err))
	}
}

// Snapshots reads the running snapshot.
type Snapshots struct {
	rdb redis.UniversalClient
}

func NewSnapshots(rdb redis.UniversalClient) *Snapshots { return &Snapshots{rdb: rdb} }

// Running returns the presented running auction, or nil when none runs.
func (s *Snapshots) Running(ctx context.Context) (json.RawMessage, error) {
	v, err := s.rdb.Get(ctx, RunningKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return json.RawMessage(v), nil
}
