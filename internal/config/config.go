package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

type Config struct {
	AppEnv string `env:"APP_ENV" envDefault:"development" validate:"oneof=development production test"`

	HttpServerPort uint16 `env:"HTTP_SERVER_PORT" envDefault:"8085" validate:"min=1000,max=65535"`

	PostgresHost     string `env:"POSTGRES_HOST"     envDefault:"localhost"`
	PostgresPort     string `env:"POSTGRES_PORT"     envDefault:"5432"`
	PostgresUser     string `env:"POSTGRES_USER"     envDefault:"auction_user"`
	PostgresPassword string `env:"POSTGRES_PASSWORD" envDefault:"auction_password"`
	PostgresDb       string `env:"POSTGRES_DB"       envDefault:"auction_db"`

	RedisHost          string `env:"REDIS_HOST"           envDefault:"localhost"`
	RedisPort          uint16 `env:"REDIS_PORT"           envDefault:"6379" validate:"min=1000,max=65535"`
	RedisPassword      string `env:"REDIS_PASSWORD"`
	RedisDb            int    `env:"REDIS_DB"             envDefault:"0"    validate:"min=0,max=15"`
	LiveUpdatesEnabled bool   `env:"LIVE_UPDATES_ENABLED" envDefault:"true"`

	// BaseURL prefixes stored asset names in responses.
	BaseURL     string `env:"BASE_URL"      envDefault:"http://localhost:8085/uploads" validate:"url"`
	UploadDir   string `env:"UPLOAD_DIR"    envDefault:"uploads"`
	MaxUploadMB int64  `env:"MAX_UPLOAD_MB" envDefault:"20" validate:"min=1,max=512"`

	// Uploads go to MinIO when MinioEndpoint is set, to UploadDir otherwise.
	MinioEndpoint  string `env:"MINIO_ENDPOINT"`
	MinioAccessKey string `env:"MINIO_ACCESS_KEY"`
	MinioSecretKey string `env:"MINIO_SECRET_KEY"`
	MinioBucket    string `env:"MINIO_BUCKET"  envDefault:"auction-uploads"`
	MinioUseSSL    bool   `env:"MINIO_USE_SSL" envDefault:"false"`

	CorsAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`

	ContactRatePerMinute int `env:"CONTACT_RATE_PER_MINUTE" envDefault:"5" validate:"min=1"`
	ContactRateBurst     int `env:"CONTACT_RATE_BURST"      envDefault:"5" validate:"min=1"`

	DefaultPageLimit int `env:"DEFAULT_PAGE_LIMIT" envDefault:"50"  validate:"min=1"`
	MaxPageLimit     int `env:"MAX_PAGE_LIMIT"     envDefault:"500" validate:"gtefield=DefaultPageLimit"`

	StatusSweepInterval time.Duration `env:"STATUS_SWEEP_INTERVAL" envDefault:"30s" validate:"min=1s"`
	Timezone            string        `env:"TIMEZONE"              envDefault:"UTC"`
	ImageWorkers        int           `env:"IMAGE_WORKERS"         envDefault:"4"   validate:"min=1,max=64"`

	Location *time.Location `env:"-"`
}

func (c *Config) Production() bool { return c.AppEnv == "production" }

func LoadConfig() (*Config, error) {
	// Load environment variables from .env file
	err := godotenv.Load(".env")
	if err != nil {
		zap.L().Debug(".env file not found", zap.Error(err))
	}

	cfg := &Config{}
	// Parse config from environment variables
	if err = env.Parse(cfg); err != nil {
		zap.L().Error("config_load_failed", zap.Error(err))
		return nil, err
	}

	// Validate the config
	validate := validator.New()
	err = validate.Struct(cfg)
	if err != nil {
		zap.L().Error("config_validation_failed", zap.Error(err))
		return nil, err
	}

	cfg.Location, err = time.LoadLocation(cfg.Timezone)
	if err != nil {
		zap.L().Error("config_timezone_invalid", zap.String("timezone", cfg.Timezone), zap.Error(err))
		return nil, fmt.Errorf("TIMEZONE: %w", err)
	}
	return cfg, nil
}
