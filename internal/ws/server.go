package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"slices"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"auctionshowcase/internal/database/docstore"
	"auctionshowcase/internal/live"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 12 * time.Second
	pingPeriod = 3 * time.Second // must be < pongWait
)

// SnapshotReader returns the presented running auction, nil when none runs.
type SnapshotReader interface {
	Running(ctx context.Context) (json.RawMessage, error)
}

type WsServer struct {
	hub       *Hub
	relay     *relay
	router    *Router
	snapshots SnapshotReader
	upgrader  websocket.Upgrader
}

func NewWsServer(h *Hub, rdb redis.UniversalClient, snapshots SnapshotReader, allowedOrigins []string) *WsServer {
	srv := &WsServer{
		hub:       h,
		relay:     newRelay(rdb, h),
		router:    NewRouter(),
		snapshots: snapshots,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     originChecker(allowedOrigins),
		},
	}
	srv.registerHandlers()
	return srv
}

// @Summary		Live auction screen
// @Description	Upgrades to a websocket streaming live/* events. Without auction_id the client follows every auction.
// @Tags			Live
// @Param			auction_id	query	string	false	"Auction ID"
// @Success		101
// @Failure		400	{object}	ErrorBody
// @Router			/ws/live [get]
func (s *WsServer) Handle(ginCtx *gin.Context) {
	topic := live.TopicAll
	if id := ginCtx.Query("auction_id"); id != "" {
		canonical, err := docstore.ParseID(id)
		if err != nil {
			ginCtx.JSON(http.StatusBadRequest, ErrorBody{Error: "auction_id must be a valid id"})
			return
		}
		topic = canonical
	}

	conn, err := s.upgrader.Upgrade(ginCtx.Writer, ginCtx.Request, nil)
	if err != nil {
		zap.L().Warn("ws_upgrade", zap.Error(err))
		return
	}
	conn.SetReadLimit(512)

	sc := newScreen(conn, topic)
	s.hub.Join(sc)
	s.relay.watch(topic)

	if err := s.pushSnapshot(ginCtx.Request.Context(), sc); err != nil {
		zap.L().Warn("ws_snapshot", zap.Error(err))
	}

	done := make(chan struct{})
	go s.reader(sc, done)
	go s.pinger(sc, done)
}

// Close stops relaying Redis events to connected screens.
func (s *WsServer) Close() error { return s.relay.close() }

func (s *WsServer) registerHandlers() {
	Register(
		s.router,
		"live/"+live.EventSnapshot,
		func(ctx context.Context, _ string, _ NoBody) (SnapshotBody, error) {
			running, err := s.snapshots.Running(ctx)
			return SnapshotBody{Running: running}, err
		},
	)
}

func (s *WsServer) pushSnapshot(ctx context.Context, sc *screen) error {
	ctx, cancel := context.WithTimeout(ctx, 4*time.Second)
	defer cancel()

	running, err := s.snapshots.Running(ctx)
	if err != nil {
		return err
	}
	body, err := json.Marshal(SnapshotBody{Running: running})
	if err != nil {
		return err
	}
	return sc.reply(Envelope{Event: "live/" + live.EventSnapshot, Body: body})
}

func (s *WsServer) reader(sc *screen, done chan<- struct{}) {
	defer func() {
		close(done)
		s.hub.Leave(sc)
		s.relay.unwatch(sc.topic)
	}()

	_ = sc.conn.SetReadDeadline(time.Now().Add(pongWait))
	sc.conn.SetPongHandler(func(string) error {
		return sc.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var env Envelope
		if err := sc.conn.ReadJSON(&env); err != nil {
			return // client closed or errored
		}

		ctx, cancel := context.WithTimeout(context.Background(), 1900*time.Millisecond)
		reply := s.router.handle(ctx, sc.topic, env)
		cancel()

		if err := sc.reply(reply); err != nil {
			return
		}
	}
}

func (s *WsServer) pinger(sc *screen, done <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if err := sc.ping(); err != nil {
				sc.close()
				return
			}
		}
	}
}

func originChecker(allowed []string) func(r *http.Request) bool {
	if len(allowed) == 0 || slices.Contains(allowed, "*") {
		return func(*http.Request) bool { return true }
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || slices.Contains(allowed, origin)
	}
}
