package ws

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

var ErrUnknownEvent = errors.New("unknown_event")

type handlerFunc func(ctx context.Context, topic string, body json.RawMessage) (any, error)

// Router maps inbound screen events to typed handlers. It is filled once at
// construction and read-only afterwards.
type Router struct {
	handlers map[string]handlerFunc
}

func NewRouter() *Router { return &Router{handlers: make(map[string]handlerFunc)} }

// Register binds event to h, decoding the frame body into Req.
func Register[Req any, Res any](
	r *Router,
	event string,
	h func(ctx context.Context, topic string, req Req) (Res, error),
) {
	if event == "" {
		panic("ws router: empty event")
	}
	if _, dup := r.handlers[event]; dup {
		panic("ws router: duplicate event " + event)
	}

	r.handlers[event] = func(ctx context.Context, topic string, body json.RawMessage) (any, error) {
		var req Req
		if len(body) > 0 {
			if err := json.Unmarshal(body, &req); err != nil {
				return nil, fmt.Errorf("invalid body: %w", err)
			}
		}
		return h(ctx, topic, req)
	}
}

// handle runs the handler for env and builds the reply frame: "<event>-ack"
// on success, "live/error" otherwise.
func (r *Router) handle(ctx context.Context, topic string, env Envelope) Envelope {
	h, ok := r.handlers[env.Event]
	if !ok {
		return errorEnvelope(env.ID, ErrUnknownEvent)
	}
	res, err := h(ctx, topic, env.Body)
	if err != nil {
		return errorEnvelope(env.ID, err)
	}
	reply := Envelope{ID: env.ID, Event: env.Event + ackSuffix}
	if res != nil {
		if reply.Body, err = json.Marshal(res); err != nil {
			return errorEnvelope(env.ID, err)
		}
	}
	return reply
}
