package http_server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/abrar71/swaggerfilesv2" // swagger embed files

	"auctionshowcase/internal/http/auctionhandler"
	"auctionshowcase/internal/http/bannerhandler"
	"auctionshowcase/internal/http/contacthandler"
	"auctionshowcase/internal/http/httpapi"
	"auctionshowcase/internal/http/middleware"
	"auctionshowcase/internal/http/pricehandler"
	"auctionshowcase/internal/http/projecthandler"
	"auctionshowcase/internal/media"
	"auctionshowcase/internal/services/auction"
	"auctionshowcase/internal/services/banner"
	"auctionshowcase/internal/services/contact"
	"auctionshowcase/internal/services/price"
	"auctionshowcase/internal/services/project"
	"auctionshowcase/internal/ws"
)

const (
	defaultJSONBodyLimit = 10 << 10
	healthTimeout        = 2 * time.Second
)

type Services struct {
	Projects project.IProjectService
	Auctions auction.IAuctionService
	Prices   price.IPriceService
	Banners  banner.IBannerService
	Contacts contact.IContactService
}

type Options struct {
	ListenPort uint16
	// UploadDir is served at /uploads when set. Leave empty for MinIO.
	UploadDir            string
	CorsAllowedOrigins   []string
	JSONBodyLimit        int64
	MaxUploadBytes       int64
	ContactRatePerMinute int
	ContactRateBurst     int
}

// Pinger reports database reachability for /healthz.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type httpServer struct {
	opts      Options
	srv       http.Server
	ln        net.Listener
	services  Services
	uploader  httpapi.Uploader
	presenter media.Presenter
	db        Pinger
	wsSrv     *ws.WsServer
	ctx       context.Context
}

// NewHttpServer wires the REST API. wsSrv may be nil when live updates are off.
func NewHttpServer(ctx context.Context, opts Options, services Services, uploader httpapi.Uploader,
	presenter media.Presenter, db Pinger, wsSrv *ws.WsServer) *httpServer {
	if opts.JSONBodyLimit <= 0 {
		opts.JSONBodyLimit = defaultJSONBodyLimit
	}
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = 20 << 20
	}
	return &httpServer{
		opts:      opts,
		services:  services,
		uploader:  uploader,
		presenter: presenter,
		db:        db,
		wsSrv:     wsSrv,
		ctx:       ctx,
	}
}

// Handler builds the gin engine wrapped in the CORS layer.
func (h *httpServer) Handler() http.Handler {
	routerEngine := gin.New()

	routerEngine.Use(ginzap.Ginzap(zap.L(), time.RFC3339, true))
	routerEngine.Use(ginzap.RecoveryWithZap(zap.L(), true))
	routerEngine.Use(middleware.Metrics())

	// Swagger UI and API specs
	routerEngine.StaticFS("/swagger-apis", http.FS(swaggerfilesv2.FS))
	routerEngine.Static("/api-specs", "api_specs")

	if h.opts.UploadDir != "" {
		routerEngine.Static("/uploads", h.opts.UploadDir)
	}

	routerEngine.GET("/", welcome)
	routerEngine.GET("/healthz", h.healthz)
	routerEngine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	if h.wsSrv != nil {
		routerEngine.GET("/ws/live", h.wsSrv.Handle)
	}

	// REST API
	api := routerEngine.Group("/api/v1", middleware.BodyLimit(h.opts.JSONBodyLimit, h.opts.MaxUploadBytes))
	projecthandler.New(h.services.Projects, h.uploader, h.presenter).Register(api)
	auctionhandler.New(h.services.Auctions, h.uploader, h.presenter).Register(api)
	pricehandler.New(h.services.Prices, h.presenter).Register(api)
	bannerhandler.New(h.services.Banners, h.uploader, h.presenter).Register(api)
	contacthandler.New(h.services.Contacts, h.presenter).
		Register(api, middleware.RateLimit(h.opts.ContactRatePerMinute, h.opts.ContactRateBurst))

	routerEngine.NoRoute(httpapi.NoRoute)

	return cors.New(cors.Options{
		AllowedOrigins: h.opts.CorsAllowedOrigins,
		AllowedMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch,
		},
		AllowedHeaders: []string{"*"},
	}).Handler(routerEngine)
}

func (h *httpServer) Start() error {
	var err error
	listenAddr := fmt.Sprintf(":%d", h.opts.ListenPort)
	h.ln, err = net.Listen("tcp", listenAddr)
	if err != nil {
		return err
	}

	h.srv = http.Server{
		Handler:           h.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	zap.L().Info("http_listening", zap.String("addr", listenAddr))

	if err := h.srv.Serve(h.ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Dispose gracefully shuts the HTTP server down.
// It waits up to 10 s for in-flight requests to finish.
func (h *httpServer) Dispose() error {
	// The parent context is usually cancelled already by the signal.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(h.ctx), 10*time.Second)
	defer cancel()

	if err := h.srv.Shutdown(ctx); err != nil {
		zap.L().Error("http_dispose", zap.Error(err))
		return err
	}
	return nil
}

type welcomeResponse struct {
	Message string `json:"message"`
} // @name WelcomeResponse

type healthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
} // @name HealthResponse

// @Summary		Welcome
// @Tags			Operational
// @Produce		json
// @Success		200	{object}	welcomeResponse
// @Router			/ [get]
func welcome(c *gin.Context) {
	c.JSON(http.StatusOK, welcomeResponse{Message: "Welcome to the auction showcase API"})
}

// @Summary		Health check
// @Description	Reports whether the database answers a ping.
// @Tags			Operational
// @Produce		json
// @Success		200	{object}	healthResponse
// @Failure		503	{object}	healthResponse
// @Router			/healthz [get]
func (h *httpServer) healthz(c *gin.Context) {
	if h.db == nil {
		c.JSON(http.StatusOK, healthResponse{Status: "ok", Database: "skipped"})
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
	defer cancel()
	if err := h.db.PingContext(ctx); err != nil {
		zap.L().Warn("healthz_db_unreachable", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, healthResponse{Status: "degraded", Database: "unreachable"})
		return
	}
	c.JSON(http.StatusOK, healthResponse{Status: "ok", Database: "ok"})
}
