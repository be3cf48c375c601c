package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Table store drivers.
const (
	StoreSupabase = "supabase"
	StoreSQLite   = "sqlite"
)

// Record publisher backends.
const (
	PublishNone  = "none"
	PublishNATS  = "nats"
	PublishKafka = "kafka"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	APIPrefix       string
	ServiceName     string
	ServiceVersion  string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration
	CORSOrigins     []string

	// Table store configuration.
	StoreDriver  string
	SupabaseURL  string
	SupabaseKey  string
	StoreTimeout time.Duration
	SQLitePath   string

	// News search configuration.
	NewsAPIKey    string
	NewsAPIURL    string
	NewsTimeout   time.Duration
	NewsPageSize  int
	NewsRateLimit float64
	NewsRateBurst int
	NewsCacheTTL  time.Duration

	// Record publishing configuration.
	PublishBackend    string
	NATSURL           string
	NATSSubjectPrefix string
	KafkaBrokers      []string
	KafkaTopic        string
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	storeTimeout, err := parseDuration("STORE_TIMEOUT", "15s", false)
	if err != nil {
		return nil, err
	}
	newsTimeout, err := parseDuration("NEWS_TIMEOUT", "10s", false)
	if err != nil {
		return nil, err
	}
	newsCacheTTL, err := parseDuration("NEWS_CACHE_TTL", "0s", true)
	if err != nil {
		return nil, err
	}

	newsPageSize, err := parseInt("NEWS_PAGE_SIZE", 20)
	if err != nil {
		return nil, err
	}
	if newsPageSize < 1 || newsPageSize > 100 {
		return nil, errors.New("NEWS_PAGE_SIZE must be between 1 and 100")
	}
	newsRateBurst, err := parseInt("NEWS_RATE_BURST", 5)
	if err != nil {
		return nil, err
	}
	newsRateLimit, err := strconv.ParseFloat(sharedcfg.EnvOrDefault("NEWS_RATE_LIMIT", "5"), 64)
	if err != nil || newsRateLimit <= 0 {
		return nil, errors.New("invalid NEWS_RATE_LIMIT")
	}
	if newsRateBurst <= 0 {
		return nil, errors.New("invalid NEWS_RATE_BURST")
	}

	httpAddr := sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080")
	if port := os.Getenv("PORT"); port != "" {
		httpAddr = ":" + port
	}

	cfg := &Config{
		HTTPAddr:        httpAddr,
		APIPrefix:       strings.TrimRight(sharedcfg.EnvOrDefault("API_PREFIX", "/api"), "/"),
		ServiceName:     sharedcfg.EnvOrDefault("SERVICE_NAME", "disaster-resilience-api"),
		ServiceVersion:  sharedcfg.EnvOrDefault("SERVICE_VERSION", "1.0.0"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,
		CORSOrigins:     splitList(sharedcfg.EnvOrDefault("CORS_ALLOWED_ORIGINS", "*")),

		StoreDriver:  strings.ToLower(sharedcfg.EnvOrDefault("STORE_DRIVER", StoreSupabase)),
		SupabaseURL:  strings.TrimRight(os.Getenv("SUPABASE_URL"), "/"),
		SupabaseKey:  os.Getenv("SUPABASE_KEY"),
		StoreTimeout: storeTimeout,
		SQLitePath:   sharedcfg.EnvOrDefault("SQLITE_PATH", "./data/resilience.db"),

		NewsAPIKey:    strings.TrimSpace(os.Getenv("NEWS_API_KEY")),
		NewsAPIURL:    strings.TrimRight(sharedcfg.EnvOrDefault("NEWS_API_URL", "https://newsapi.org"), "/"),
		NewsTimeout:   newsTimeout,
		NewsPageSize:  newsPageSize,
		NewsRateLimit: newsRateLimit,
		NewsRateBurst: newsRateBurst,
		NewsCacheTTL:  newsCacheTTL,

		PublishBackend:    strings.ToLower(sharedcfg.EnvOrDefault("PUBLISH_BACKEND", PublishNone)),
		NATSURL:           sharedcfg.EnvOrDefault("NATS_URL", "nats://127.0.0.1:4222"),
		NATSSubjectPrefix: sharedcfg.EnvOrDefault("NATS_SUBJECT_PREFIX", "resilience"),
		KafkaBrokers:      sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaTopic:        sharedcfg.EnvOrDefault("KAFKA_TOPIC", "resilience-records"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.APIPrefix != "" && !strings.HasPrefix(c.APIPrefix, "/") {
		return errors.New("API_PREFIX must start with /")
	}

	switch c.StoreDriver {
	case StoreSupabase:
		if c.SupabaseURL == "" {
			return errors.New("SUPABASE_URL is required when STORE_DRIVER is supabase")
		}
		if c.SupabaseKey == "" {
			return errors.New("SUPABASE_KEY is required when STORE_DRIVER is supabase")
		}
	case StoreSQLite:
		if c.SQLitePath == "" {
			return errors.New("SQLITE_PATH is required when STORE_DRIVER is sqlite")
		}
	default:
		return fmt.Errorf("unsupported STORE_DRIVER %q", c.StoreDriver)
	}

	switch c.PublishBackend {
	case PublishNone:
	case PublishNATS:
		if c.NATSURL == "" {
			return errors.New("NATS_URL is required when PUBLISH_BACKEND is nats")
		}
	case PublishKafka:
		if len(c.KafkaBrokers) == 0 {
			return errors.New("KAFKA_BROKERS is required when PUBLISH_BACKEND is kafka")
		}
		if c.KafkaTopic == "" {
			return errors.New("KAFKA_TOPIC is required when PUBLISH_BACKEND is kafka")
		}
	default:
		return fmt.Errorf("unsupported PUBLISH_BACKEND %q", c.PublishBackend)
	}
	return nil
}

// parseDuration reads a duration variable. Zero is accepted only when allowZero is set.
func parseDuration(name, def string, allowZero bool) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(name, def))
	if err != nil || d < 0 || (d == 0 && !allowZero) {
		return 0, fmt.Errorf("invalid %s", name)
	}
	return d, nil
}

func parseInt(name string, def int) (int, error) {
	s := os.Getenv(name)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s", name)
	}
	return n, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
