package main

//go:generate go tool swag init --v3.1 --outputTypes json,yaml --output api_specs

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"auctionshowcase/internal/config"
	"auctionshowcase/internal/database/db_client"
	"auctionshowcase/internal/database/docstore"
	"auctionshowcase/internal/http/http_server"
	"auctionshowcase/internal/live"
	"auctionshowcase/internal/media"
	"auctionshowcase/internal/redis/redis_client"
	"auctionshowcase/internal/redis/redis_functions"
	"auctionshowcase/internal/services/auction"
	"auctionshowcase/internal/services/banner"
	"auctionshowcase/internal/services/contact"
	"auctionshowcase/internal/services/crud"
	"auctionshowcase/internal/services/price"
	"auctionshowcase/internal/services/project"
	"auctionshowcase/internal/syncdb"
	"auctionshowcase/internal/ws"
)

//	@title			Auction Showcase API
//	@version		1.0
//	@description	Projects, auctions, price records, banners and contact requests behind a live auction screen.
//	@BasePath		/api/v1

var (
	Log, _ = zap.NewDevelopment()
)

func main() {
	defer Log.Sync()
	zap.ReplaceGlobals(Log)

	// 1. Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		Log.Fatal("Failed to load configuration", zap.Error(err))
	}
	if cfg.Production() {
		if Log, err = zap.NewProduction(); err != nil {
			panic(err)
		}
		zap.ReplaceGlobals(Log)
	}
	Log.Debug("Configuration loaded successfully", zap.String("env", cfg.AppEnv))

	// 2. Context with signal handling
	ctx, stop := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGINT, syscall.SIGTERM,
	)
	defer stop()

	// 3. Postgres db client + schema
	pgDb, err := db_client.Open(cfg.PostgresHost, cfg.PostgresPort, cfg.PostgresUser, cfg.PostgresPassword, cfg.PostgresDb)
	if err != nil {
		Log.Fatal("pg-open", zap.Error(err))
	}
	defer pgDb.Close()
	if err := db_client.Migrate(pgDb); err != nil {
		Log.Fatal("pg-migrate", zap.Error(err))
	}

	// 4. Upload storage: MinIO when configured, local directory otherwise
	var (
		storage   media.Storage
		presenter media.Presenter
		uploadDir string
	)
	if cfg.MinioEndpoint != "" {
		storage, err = media.NewMinioStorage(ctx, media.MinioConfig{
			Endpoint:        cfg.MinioEndpoint,
			AccessKeyID:     cfg.MinioAccessKey,
			SecretAccessKey: cfg.MinioSecretKey,
			Bucket:          cfg.MinioBucket,
			UseSSL:          cfg.MinioUseSSL,
		})
		if err != nil {
			Log.Fatal("minio-open", zap.Error(err))
		}
		scheme := "http"
		if cfg.MinioUseSSL {
			scheme = "https"
		}
		presenter = media.NewPresenter(fmt.Sprintf("%s://%s/%s", scheme, cfg.MinioEndpoint, cfg.MinioBucket))
	} else {
		local, err := media.NewLocalStorage(cfg.UploadDir)
		if err != nil {
			Log.Fatal("upload-dir", zap.Error(err))
		}
		storage, uploadDir = local, local.Root()
		presenter = media.NewPresenter(cfg.BaseURL)
	}
	uploader, err := media.NewUploader(storage, cfg.ImageWorkers)
	if err != nil {
		Log.Fatal("uploader", zap.Error(err))
	}
	defer uploader.Release()

	// 5. Redis live updates
	var (
		redisClient *redis.Client
		publisher   live.Publisher = live.Nop{}
	)
	if cfg.LiveUpdatesEnabled {
		redisClient, err = redis_client.NewRedisClient(ctx, redis_client.Options{
			Host:     cfg.RedisHost,
			Port:     int(cfg.RedisPort),
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDb,
		})
		if err != nil {
			Log.Fatal("Failed to create Redis client", zap.Error(err))
		}
		defer redisClient.Close()

		// Load the Redis Functions lua
		if err := redis_functions.LoadAll(ctx, redisClient); err != nil {
			Log.Fatal("load-redis-funcs", zap.Error(err))
		}
		publisher = live.NewRedisPublisher(redisClient, presenter)
	}

	// 6. Services
	repo := docstore.New(pgDb)
	limits := crud.Limits{Default: cfg.DefaultPageLimit, Max: cfg.MaxPageLimit}
	projectService := project.NewProjectService(repo, limits, cfg.Location)
	auctionService := auction.NewAuctionService(repo, limits, publisher)
	services := http_server.Services{
		Projects: projectService,
		Auctions: auctionService,
		Prices:   price.NewPriceService(repo, limits, publisher),
		Banners:  banner.NewBannerService(repo, limits),
		Contacts: contact.NewContactService(repo, limits, cfg.Location),
	}

	// 7. Re-seed the live snapshot from the database
	if err := auctionService.SyncRunning(ctx); err != nil {
		Log.Warn("sync-running", zap.Error(err))
	}

	// 8. Background: project status sweeper
	syncdb.Run(ctx, projectService, cfg.StatusSweepInterval)

	// 9. Live websocket server
	var wsSrv *ws.WsServer
	if redisClient != nil {
		wsSrv = ws.NewWsServer(ws.NewHub(), redisClient, live.NewSnapshots(redisClient), cfg.CorsAllowedOrigins)
		defer wsSrv.Close()
	}

	// 10. HTTP + WS server
	httpServer := http_server.NewHttpServer(ctx, http_server.Options{
		ListenPort:           cfg.HttpServerPort,
		UploadDir:            uploadDir,
		CorsAllowedOrigins:   cfg.CorsAllowedOrigins,
		MaxUploadBytes:       cfg.MaxUploadMB << 20,
		ContactRatePerMinute: cfg.ContactRatePerMinute,
		ContactRateBurst:     cfg.ContactRateBurst,
	}, services, uploader, presenter, pgDb, wsSrv)

	go func() {
		<-ctx.Done()
		Log.Info("shutting down")
		_ = httpServer.Dispose()
	}()

	if err := httpServer.Start(); err != nil {
		Log.Fatal("Failed to start HTTP server", zap.Error(err))
	}
}
