package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-faster/errors"
	"github.com/sirupsen/logrus"

	"github.com/phillip-england/employeems/internal/envutil"
)

const (
	DraftStoreMemory = "memory"
	DraftStoreRedis  = "redis"
)

var DefaultEnvFiles = []string{".env", ".env.local"}

type RateLimitOptions struct {
	Enabled bool          `env:"RATE_LIMIT_ENABLED" envDefault:"true"`
	Limit   int64         `env:"RATE_LIMIT_AUTH_LIMIT" envDefault:"20"`
	Period  time.Duration `env:"RATE_LIMIT_AUTH_PERIOD" envDefault:"1m"`
	Storage string        `env:"RATE_LIMIT_STORAGE" envDefault:"memory"` // memory or redis
}

// Validate checks the rate limit configuration for errors
func (r *RateLimitOptions) Validate() error {
	if r.Limit <= 0 {
		return fmt.Errorf("rate limit must be positive, got %d", r.Limit)
	}
	if r.Period <= 0 {
		return fmt.Errorf("rate limit period must be positive, got %s", r.Period)
	}
	if r.Storage != "memory" && r.Storage != "redis" {
		return fmt.Errorf("rate limit storage must be 'memory' or 'redis', got '%s'", r.Storage)
	}
	return nil
}

type MetricsOptions struct {
	Enabled bool   `env:"METRICS_ENABLED" envDefault:"false"`
	Path    string `env:"METRICS_PATH" envDefault:"/metrics"`
}

// StubOptions configure the local stand-in API.
type StubOptions struct {
	Seed          bool   `env:"STUB_SEED" envDefault:"true"`
	AdminEmail    string `env:"STUB_ADMIN_EMAIL" envDefault:"admin@example.com"`
	AdminPassword string `env:"STUB_ADMIN_PASSWORD" envDefault:"admin12345"`
}

type Configuration struct {
	ClientAddr   string        `env:"CLIENT_ADDR" envDefault:":3000"`
	StubAddr     string        `env:"STUB_ADDR" envDefault:":8080"`
	APIBaseURL   string        `env:"API_BASE_URL" envDefault:"http://localhost:8080"`
	APITimeout   time.Duration `env:"API_TIMEOUT" envDefault:"0s"`
	ReadTimeout  time.Duration `env:"READ_TIMEOUT" envDefault:"5s"`
	WriteTimeout time.Duration `env:"WRITE_TIMEOUT" envDefault:"30s"`

	PageSize int `env:"PAGE_SIZE" envDefault:"3"`
	// Leaving edit mode keeps the unsaved draft unless this is set.
	CancelResetsDraft bool `env:"CANCEL_RESETS_DRAFT" envDefault:"false"`
	// Search transport failures surface as warnings unless this is set.
	UnifyTransportSeverity bool `env:"UNIFY_TRANSPORT_SEVERITY" envDefault:"false"`

	DraftStore string        `env:"DRAFT_STORE" envDefault:"memory"`
	DraftTTL   time.Duration `env:"DRAFT_TTL" envDefault:"30m"`
	RedisURL   string        `env:"REDIS_URL" envDefault:"redis://localhost:6379/0"`

	MaxUploadSize int64 `env:"MAX_UPLOAD_SIZE" envDefault:"5242880"`
	CookieSecure  bool  `env:"COOKIE_SECURE" envDefault:"false"`

	RateLimit RateLimitOptions
	Metrics   MetricsOptions
	Stub      StubOptions

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`
	// The client looks for this header in the request, if it's not present, it will generate a random uuidv4
	RequestIDHeader string `env:"REQUEST_ID_HEADER" envDefault:"X-Request-ID"`

	logger *logrus.Logger
}

// Load reads the given dotenv files (missing ones are skipped) and parses the
// process environment into a Configuration.
func Load(envFiles ...string) (*Configuration, error) {
	if _, err := envutil.LoadDotEnv(envFiles...); err != nil {
		return nil, errors.Wrap(err, "load env files")
	}
	c := &Configuration{}
	if err := env.Parse(c); err != nil {
		return nil, errors.Wrap(err, "parse environment")
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	c.logger = NewLogger(c.LogLevel, c.LogFormat)
	return c, nil
}

func (c *Configuration) Validate() error {
	c.APIBaseURL = strings.TrimRight(strings.TrimSpace(c.APIBaseURL), "/")
	if c.APIBaseURL == "" {
		return errors.New("API_BASE_URL is required")
	}
	if c.PageSize <= 0 {
		return fmt.Errorf("PAGE_SIZE must be positive, got %d", c.PageSize)
	}
	if c.DraftStore != DraftStoreMemory && c.DraftStore != DraftStoreRedis {
		return fmt.Errorf("DRAFT_STORE must be 'memory' or 'redis', got '%s'", c.DraftStore)
	}
	if c.MaxUploadSize <= 0 {
		return fmt.Errorf("MAX_UPLOAD_SIZE must be positive, got %d", c.MaxUploadSize)
	}
	if c.RateLimit.Enabled {
		if err := c.RateLimit.Validate(); err != nil {
			return err
		}
	}
	return nil
}

func (c *Configuration) Logger() *logrus.Logger {
	if c.logger == nil {
		c.logger = NewLogger(c.LogLevel, c.LogFormat)
	}
	return c.logger
}

// UsesRedis reports whether any component needs a redis connection.
func (c *Configuration) UsesRedis() bool {
	return c.DraftStore == DraftStoreRedis || (c.RateLimit.Enabled && c.RateLimit.Storage == "redis")
}

func NewLogger(level, format string) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)
	logger.SetLevel(logrusLevel(level))
	if strings.EqualFold(format, "json") {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return logger
}

func logrusLevel(level string) logrus.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "silent":
		return logrus.PanicLevel
	case "error":
		return logrus.ErrorLevel
	case "warn":
		return logrus.WarnLevel
	case "debug":
		return logrus.DebugLevel
	default:
		return logrus.InfoLevel
	}
}
