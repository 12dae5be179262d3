package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/yungbote/arbor/internal/platform/envutil"
)

type ServerConfig struct {
	Addr           string   `yaml:"addr"`
	ServiceName    string   `yaml:"service_name"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

type DBConfig struct {
	// Driver is "postgres" or "sqlite".
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

type RedisConfig struct {
	Addr            string `yaml:"addr"`
	CacheTTLSeconds int    `yaml:"cache_ttl_seconds"`
}

type AuthConfig struct {
	// JWTSecret enables the auth middleware; empty leaves the API open.
	JWTSecret        string `yaml:"jwt_secret"`
	AccessTTLSeconds int    `yaml:"access_ttl_seconds"`
}

type Config struct {
	LogMode     string       `yaml:"log_mode"`
	Environment string       `yaml:"environment"`
	Version     string       `yaml:"version"`
	MetricsAddr string       `yaml:"metrics_addr"`
	Server      ServerConfig `yaml:"server"`
	DB          DBConfig     `yaml:"db"`
	Redis       RedisConfig  `yaml:"redis"`
	Auth        AuthConfig   `yaml:"auth"`
}

func (c Config) CacheTTL() time.Duration {
	if c.Redis.CacheTTLSeconds <= 0 {
		return 5 * time.Minute
	}
	return time.Duration(c.Redis.CacheTTLSeconds) * time.Second
}

func (c Config) AccessTTL() time.Duration {
	if c.Auth.AccessTTLSeconds <= 0 {
		return time.Hour
	}
	return time.Duration(c.Auth.AccessTTLSeconds) * time.Second
}

func defaults() Config {
	return Config{
		LogMode:     "development",
		Environment: "dev",
		Server: ServerConfig{
			Addr:        ":8080",
			ServiceName: "arbor",
		},
		DB: DBConfig{
			Driver: "postgres",
			DSN:    "host=localhost user=arbor password=arbor dbname=arbor port=5432 sslmode=disable",
		},
		Redis: RedisConfig{
			CacheTTLSeconds: 300,
		},
		Auth: AuthConfig{
			AccessTTLSeconds: 3600,
		},
	}
}

// Load builds the runtime configuration: defaults, then the optional YAML
// file at path (or ARBOR_CONFIG when path is empty), then env overrides.
func Load(path string) (Config, error) {
	cfg := defaults()

	if path == "" {
		path = strings.TrimSpace(os.Getenv("ARBOR_CONFIG"))
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	applyEnv(&cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	cfg.LogMode = envutil.String("LOG_MODE", cfg.LogMode)
	cfg.Environment = envutil.String("ARBOR_ENV", cfg.Environment)
	cfg.Version = envutil.String("ARBOR_VERSION", cfg.Version)
	cfg.MetricsAddr = envutil.String("METRICS_ADDR", cfg.MetricsAddr)

	cfg.Server.Addr = envutil.String("SERVER_ADDR", cfg.Server.Addr)
	cfg.Server.ServiceName = envutil.String("SERVICE_NAME", cfg.Server.ServiceName)
	if origins := envutil.String("ALLOWED_ORIGINS", ""); origins != "" {
		parts := strings.Split(origins, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		cfg.Server.AllowedOrigins = out
	}

	cfg.DB.Driver = strings.ToLower(envutil.String("DB_DRIVER", cfg.DB.Driver))
	cfg.DB.DSN = envutil.String("DATABASE_DSN", cfg.DB.DSN)

	cfg.Redis.Addr = envutil.String("REDIS_ADDR", cfg.Redis.Addr)
	cfg.Redis.CacheTTLSeconds = envutil.Int("CACHE_TTL_SECONDS", cfg.Redis.CacheTTLSeconds)

	cfg.Auth.JWTSecret = envutil.String("JWT_SECRET_KEY", cfg.Auth.JWTSecret)
	cfg.Auth.AccessTTLSeconds = envutil.Int("ACCESS_TOKEN_TTL", cfg.Auth.AccessTTLSeconds)
}
