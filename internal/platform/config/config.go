// Package config reads process configuration from the environment, after
// loading an optional .env file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/allisson/go-env"
	"github.com/joho/godotenv"

	strutil "rolegate/pkg/platform/strings"
)

// DevSigningKey is used when JWT_SECRET is unset. Anyone who knows it can
// mint credentials, so startup logs a warning whenever it is in effect.
const DevSigningKey = "dev-secret"

// Audit sinks.
const (
	AuditSinkMemory   = "memory"
	AuditSinkRedis    = "redis"
	AuditSinkPostgres = "postgres"
	AuditSinkKafka    = "kafka"
)

// Server captures process level configuration.
type Server struct {
	Addr string

	JWTSigningKey string
	JWTIssuer     string
	// UsingDevSigningKey is true when JWT_SECRET was absent.
	UsingDevSigningKey bool

	LogLevel  string
	LogFormat string

	// RoleRegistry is the raw "identity=role,..." list. Empty means the
	// seeded demo accounts.
	RoleRegistry string

	CORSAllowedOrigins []string

	ShutdownTimeout time.Duration

	Audit AuditConfig
	Redis RedisConfig
}

type AuditConfig struct {
	Sink       string
	BufferSize int

	// DatabaseDriver is "postgres" (lib/pq) or "pgx".
	DatabaseDriver string
	DatabaseURL    string
	KafkaBrokers   []string
	KafkaTopic     string
}

// RedisConfig holds connection settings for the Redis audit sink.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() (Server, error) {
	loadDotEnv()

	secret := os.Getenv("JWT_SECRET")
	usingDev := secret == ""
	if usingDev {
		secret = DevSigningKey
	}

	cfg := Server{
		Addr:               ":" + env.GetString("PORT", "4000"),
		JWTSigningKey:      secret,
		JWTIssuer:          env.GetString("JWT_ISSUER", "rolegate"),
		UsingDevSigningKey: usingDev,
		LogLevel:           strings.ToLower(env.GetString("LOG_LEVEL", "info")),
		LogFormat:          strings.ToLower(env.GetString("LOG_FORMAT", "json")),
		RoleRegistry:       env.GetString("ROLE_REGISTRY", ""),
		CORSAllowedOrigins: strutil.SplitList(env.GetString("CORS_ALLOWED_ORIGINS", "*"), ","),
		ShutdownTimeout:    env.GetDuration("SHUTDOWN_TIMEOUT_SECONDS", 10, time.Second),
		Audit: AuditConfig{
			Sink:           strings.ToLower(env.GetString("AUDIT_SINK", AuditSinkMemory)),
			BufferSize:     env.GetInt("AUDIT_BUFFER", 1024),
			DatabaseDriver: strings.ToLower(env.GetString("DATABASE_DRIVER", "postgres")),
			DatabaseURL:    env.GetString("DATABASE_URL", ""),
			KafkaBrokers:   strutil.SplitList(env.GetString("KAFKA_BROKERS", ""), ","),
			KafkaTopic:     env.GetString("KAFKA_AUDIT_TOPIC", "rolegate.audit"),
		},
		Redis: RedisConfig{
			URL:          env.GetString("REDIS_URL", ""),
			PoolSize:     env.GetInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: env.GetInt("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  env.GetDuration("REDIS_DIAL_TIMEOUT_SECONDS", 5, time.Second),
			ReadTimeout:  env.GetDuration("REDIS_READ_TIMEOUT_SECONDS", 3, time.Second),
			WriteTimeout: env.GetDuration("REDIS_WRITE_TIMEOUT_SECONDS", 3, time.Second),
		},
	}
	return cfg, cfg.validate()
}

func (c Server) validate() error {
	switch c.Audit.Sink {
	case AuditSinkMemory:
	case AuditSinkRedis:
		if c.Redis.URL == "" {
			return fmt.Errorf("AUDIT_SINK=redis requires REDIS_URL")
		}
	case AuditSinkPostgres:
		if c.Audit.DatabaseURL == "" {
			return fmt.Errorf("AUDIT_SINK=postgres requires DATABASE_URL")
		}
		if c.Audit.DatabaseDriver != "postgres" && c.Audit.DatabaseDriver != "pgx" {
			return fmt.Errorf("unknown DATABASE_DRIVER %q", c.Audit.DatabaseDriver)
		}
	case AuditSinkKafka:
		if len(c.Audit.KafkaBrokers) == 0 {
			return fmt.Errorf("AUDIT_SINK=kafka requires KAFKA_BROKERS")
		}
	default:
		return fmt.Errorf("unknown AUDIT_SINK %q", c.Audit.Sink)
	}
	if c.Audit.BufferSize < 0 {
		return fmt.Errorf("AUDIT_BUFFER must not be negative")
	}
	return nil
}

// loadDotEnv loads the nearest .env file walking up from the working
// directory. Variables already set in the environment win.
func loadDotEnv() {
	dir, err := os.Getwd()
	if err != nil {
		return
	}
	for {
		path := filepath.Join(dir, ".env")
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return
		}
		dir = parent
	}
}
