package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Session store kinds accepted by APP_SESSION_STORE.
const (
	SessionStoreCookie   = "cookie"
	SessionStoreRedis    = "redis"
	SessionStorePostgres = "postgres"
)

type Config struct {
	ListenAddr string `yaml:"listen_addr"`
	BaseURL    string `yaml:"base_url"`

	Backend struct {
		URL     string        `yaml:"url"`
		Timeout time.Duration `yaml:"timeout"`
	} `yaml:"backend"`

	DB struct {
		DSN string `yaml:"dsn"`
	} `yaml:"db"`

	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`

	Session struct {
		Secret string        `yaml:"secret"`
		Store  string        `yaml:"store"`
		TTL    time.Duration `yaml:"ttl"`
	} `yaml:"session"`

	UI struct {
		NoticeTTL            time.Duration `yaml:"notice_ttl"`
		ViewStateSize        int           `yaml:"view_state_size"`
		LogoutOnUnauthorized bool          `yaml:"logout_on_unauthorized"`
	} `yaml:"ui"`

	Tracing struct {
		Endpoint string `yaml:"endpoint"`
		Insecure bool   `yaml:"insecure"`
	} `yaml:"tracing"`

	PrometheusEnabled bool     `yaml:"prometheus_enabled"`
	TrustedProxies    []string `yaml:"trusted_proxies"`
}

// Default returns the configuration used when neither a file nor env vars override a value.
func Default() *Config {
	cfg := &Config{}
	cfg.ListenAddr = ":8081"
	cfg.BaseURL = "http://localhost:8081"
	cfg.Backend.URL = "http://localhost:8080/api/v1"
	cfg.Backend.Timeout = 10 * time.Second
	cfg.Session.Store = SessionStoreCookie
	cfg.Session.TTL = 24 * time.Hour
	cfg.UI.NoticeTTL = 5 * time.Second
	cfg.UI.ViewStateSize = 1024
	cfg.Tracing.Insecure = true
	return cfg
}

// Load reads the optional YAML file named by APP_CONFIG_FILE, then applies APP_* env vars on top.
func Load() (*Config, error) {
	cfg := Default()

	if path := os.Getenv("APP_CONFIG_FILE"); path != "" {
		if err := loadFile(path, cfg); err != nil {
			return nil, err
		}
	}

	cfg.ListenAddr = getenvDefault("APP_LISTEN_ADDR", cfg.ListenAddr)
	cfg.BaseURL = getenvDefault("APP_BASE_URL", cfg.BaseURL)
	cfg.Backend.URL = strings.TrimRight(getenvDefault("APP_BACKEND_URL", cfg.Backend.URL), "/")
	cfg.Backend.Timeout = getenvDuration("APP_BACKEND_TIMEOUT", cfg.Backend.Timeout)

	cfg.Session.Secret = getenvDefault("APP_SESSION_SECRET", cfg.Session.Secret)
	cfg.Session.Store = strings.ToLower(getenvDefault("APP_SESSION_STORE", cfg.Session.Store))
	cfg.Session.TTL = getenvDuration("APP_SESSION_TTL", cfg.Session.TTL)

	cfg.Redis.Addr = getenvDefault("APP_REDIS_ADDR", cfg.Redis.Addr)
	cfg.Redis.Password = getenvDefault("APP_REDIS_PASSWORD", cfg.Redis.Password)
	cfg.Redis.DB = getenvInt("APP_REDIS_DB", cfg.Redis.DB)

	cfg.DB.DSN = getenvDefault("APP_DB_DSN", cfg.DB.DSN)
	if cfg.DB.DSN == "" {
		host := os.Getenv("APP_DB_HOST")
		name := os.Getenv("APP_DB_NAME")
		user := os.Getenv("APP_DB_USER")
		password := os.Getenv("APP_DB_PASSWORD")
		port := getenvDefault("APP_DB_PORT", "5432")
		sslmode := getenvDefault("APP_DB_SSLMODE", "disable")
		if host != "" && name != "" && user != "" && password != "" {
			cfg.DB.DSN = fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s", user, password, host, port, name, sslmode)
		}
	}

	cfg.UI.NoticeTTL = getenvDuration("APP_NOTICE_TTL", cfg.UI.NoticeTTL)
	cfg.UI.ViewStateSize = getenvInt("APP_VIEW_STATE_SIZE", cfg.UI.ViewStateSize)
	cfg.UI.LogoutOnUnauthorized = getenvBool("APP_LOGOUT_ON_UNAUTHORIZED", cfg.UI.LogoutOnUnauthorized)

	cfg.Tracing.Endpoint = getenvDefault("APP_OTLP_ENDPOINT", cfg.Tracing.Endpoint)
	cfg.Tracing.Insecure = getenvBool("APP_OTLP_INSECURE", cfg.Tracing.Insecure)

	cfg.PrometheusEnabled = getenvBool("APP_PROMETHEUS_ENDPOINT_ENABLED", cfg.PrometheusEnabled)
	if proxies := getenvList("APP_TRUSTED_PROXIES"); proxies != nil {
		cfg.TrustedProxies = proxies
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if len(cfg.TrustedProxies) == 0 {
		fmt.Println("WARNING: No APP_TRUSTED_PROXIES configured. Forwarded client addresses are ignored and login rate limits apply per peer address.")
	}

	return cfg, nil
}

// Validate checks cross-field requirements after all sources have been applied.
func (c *Config) Validate() error {
	if c.Backend.URL == "" {
		return errors.New("APP_BACKEND_URL is required")
	}
	if c.Session.Secret == "" {
		return errors.New("APP_SESSION_SECRET is required")
	}
	if len(c.Session.Secret) < 32 {
		return fmt.Errorf("APP_SESSION_SECRET must be at least 32 characters long (got %d)", len(c.Session.Secret))
	}
	if c.Session.TTL <= 0 {
		return errors.New("APP_SESSION_TTL must be positive")
	}
	switch c.Session.Store {
	case SessionStoreCookie:
	case SessionStoreRedis:
		if c.Redis.Addr == "" {
			return errors.New("APP_REDIS_ADDR is required when APP_SESSION_STORE=redis")
		}
	case SessionStorePostgres:
		if c.DB.DSN == "" {
			return errors.New("APP_DB_DSN is required when APP_SESSION_STORE=postgres (or set APP_DB_HOST, APP_DB_NAME, APP_DB_USER, and APP_DB_PASSWORD)")
		}
	default:
		return fmt.Errorf("unknown APP_SESSION_STORE %q (want cookie, redis or postgres)", c.Session.Store)
	}
	if c.UI.ViewStateSize <= 0 {
		return errors.New("APP_VIEW_STATE_SIZE must be positive")
	}
	return nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		switch strings.ToLower(v) {
		case "1", "true", "yes", "on":
			return true
		case "0", "false", "no", "off":
			return false
		}
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getenvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func getenvList(key string) []string {
	if v := os.Getenv(key); v != "" {
		var result []string
		for _, item := range strings.Split(v, ",") {
			if trimmed := strings.TrimSpace(item); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		return result
	}
	return nil
}
