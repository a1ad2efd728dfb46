package config

import (
	"errors"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ServiceName string
	ServerPort  int
	LogLevel    string
	CORSOrigins []string

	DatabaseURL string

	JWTSecret   []byte
	JWTIssuer   string
	JWTAudience string
	JWTTTL      time.Duration

	AdminEmails         []string
	OrderRecomputeTotal bool

	TelegramBotToken string

	StorageDriver  string
	StorageRoot    string
	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioUseSSL    bool

	KafkaBrokers []string

	ESURL      string
	ESUser     string
	ESPassword string

	RedisAddr      string
	RedisPassword  string
	AuthRateLimit  int
	AuthRateWindow time.Duration
}

// Load reads .env (when present) and then the process environment.
func Load(envFiles ...string) Config {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	if err := godotenv.Load(envFiles...); err != nil {
		log.Printf("notice: .env not loaded: %v, using process environment", err)
	}

	return Config{
		ServiceName: EnvDefault("SERVICE_NAME", "storefront"),
		ServerPort:  EnvIntDefault("SERVER_PORT", 8080),
		LogLevel:    EnvDefault("LOG_LEVEL", "info"),
		CORSOrigins: CSV(EnvDefault("CORS_ORIGINS", "*")),

		DatabaseURL: os.Getenv("DATABASE_URL"),

		JWTSecret:   []byte(os.Getenv("JWT_SECRET")),
		JWTIssuer:   EnvDefault("JWT_ISSUER", "storefront"),
		JWTAudience: EnvDefault("JWT_AUDIENCE", "storefront-clients"),
		JWTTTL:      EnvDurationDefault("JWT_TTL", time.Hour),

		AdminEmails:         CSV(os.Getenv("ADMIN_EMAILS")),
		OrderRecomputeTotal: EnvBoolDefault("ORDER_RECOMPUTE_TOTAL", false),

		TelegramBotToken: os.Getenv("TELEGRAM_BOT_TOKEN"),

		StorageDriver:  EnvDefault("STORAGE_DRIVER", "local"),
		StorageRoot:    EnvDefault("STORAGE_ROOT", "wwwroot"),
		MinioEndpoint:  os.Getenv("MINIO_ENDPOINT"),
		MinioAccessKey: os.Getenv("MINIO_ACCESS_KEY"),
		MinioSecretKey: os.Getenv("MINIO_SECRET_KEY"),
		MinioBucket:    EnvDefault("MINIO_BUCKET", "storefront"),
		MinioUseSSL:    EnvBoolDefault("MINIO_USE_SSL", false),

		KafkaBrokers: CSV(os.Getenv("KAFKA_BROKERS")),

		ESURL:      os.Getenv("ES_URL"),
		ESUser:     os.Getenv("ES_USER"),
		ESPassword: os.Getenv("ES_PASSWORD"),

		RedisAddr:      os.Getenv("REDIS_ADDR"),
		RedisPassword:  os.Getenv("REDIS_PASSWORD"),
		AuthRateLimit:  EnvIntDefault("AUTH_RATE_LIMIT", 10),
		AuthRateWindow: EnvDurationDefault("AUTH_RATE_WINDOW", time.Minute),
	}
}

func (c Config) Validate() error {
	var errs []error
	if c.DatabaseURL == "" {
		errs = append(errs, errors.New("missing required env DATABASE_URL"))
	}
	if len(c.JWTSecret) == 0 {
		errs = append(errs, errors.New("missing required env JWT_SECRET"))
	}
	switch c.StorageDriver {
	case "local":
	case "minio":
		if c.MinioEndpoint == "" {
			errs = append(errs, errors.New("STORAGE_DRIVER=minio requires MINIO_ENDPOINT"))
		}
	default:
		errs = append(errs, errors.New("STORAGE_DRIVER must be local or minio"))
	}
	return errors.Join(errs...)
}

func CSV(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func EnvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func EnvIntDefault(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func EnvBoolDefault(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func EnvDurationDefault(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}
