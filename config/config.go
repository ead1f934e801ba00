package config

import (
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

type Config struct {
	ServerPort        string        `env:"PORT" envDefault:"5000"`
	ServiceName       string        `env:"SERVICE_NAME" envDefault:"youtube-transcript-api"`
	Version           string        `env:"VERSION" envDefault:"1.0.0"`
	ReadTimeout       time.Duration `env:"READ_TIMEOUT" envDefault:"15s"`
	WriteTimeout      time.Duration `env:"WRITE_TIMEOUT" envDefault:"60s"`
	IdleTimeout       time.Duration `env:"IDLE_TIMEOUT" envDefault:"60s"`
	ShutdownTimeout   time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
	// RequestTimeout bounds the upstream work of one request. It stays below
	// WriteTimeout so the error response can still be written.
	RequestTimeout    time.Duration `env:"REQUEST_TIMEOUT" envDefault:"50s"`
	SideEffectTimeout time.Duration `env:"SIDE_EFFECT_TIMEOUT" envDefault:"2s"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`
	LogDir    string `env:"LOG_DIR"`

	DefaultLanguage string `env:"DEFAULT_LANGUAGE" envDefault:"en"`
	MetricsEnabled  bool   `env:"METRICS_ENABLED" envDefault:"true"`

	CORS      CORSConfig
	RateLimit RateLimitConfig
	YouTube   YouTubeConfig
	Journal   JournalConfig
	Archive   ArchiveConfig
}

type CORSConfig struct {
	AllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*"`
	AllowedMethods []string `env:"CORS_ALLOWED_METHODS" envDefault:"GET,POST,OPTIONS"`
	AllowedHeaders []string `env:"CORS_ALLOWED_HEADERS" envDefault:"Content-Type,X-Request-ID"`
	MaxAge         int      `env:"CORS_MAX_AGE" envDefault:"86400"`
}

// RateLimitConfig throttles inbound requests per process. Off by default.
type RateLimitConfig struct {
	Enabled           bool `env:"RATE_LIMIT_ENABLED" envDefault:"false"`
	RequestsPerMinute int  `env:"RATE_LIMIT_RPM" envDefault:"60"`
	Burst             int  `env:"RATE_LIMIT_BURST" envDefault:"10"`
}

type YouTubeConfig struct {
	BaseURL        string        `env:"YOUTUBE_BASE_URL" envDefault:"https://www.youtube.com"`
	Timeout        time.Duration `env:"YOUTUBE_TIMEOUT" envDefault:"30s"`
	AcceptLanguage string        `env:"YOUTUBE_ACCEPT_LANGUAGE" envDefault:"en-US"`
	UserAgent      string        `env:"YOUTUBE_USER_AGENT"`
	// 0 disables outbound throttling.
	RequestsPerSecond float64 `env:"YOUTUBE_REQUESTS_PER_SECOND" envDefault:"0"`
}

// JournalConfig enables the sqlite lookup journal when Path is set.
type JournalConfig struct {
	Path string `env:"JOURNAL_DB_PATH"`
}

// ArchiveConfig enables the S3 transcript archive when Bucket is set.
type ArchiveConfig struct {
	Bucket    string `env:"ARCHIVE_BUCKET"`
	Endpoint  string `env:"ARCHIVE_ENDPOINT"`
	Region    string `env:"ARCHIVE_REGION" envDefault:"us-east-1"`
	AccessKey string `env:"ARCHIVE_ACCESS_KEY"`
	SecretKey string `env:"ARCHIVE_SECRET_KEY"`
	Prefix    string `env:"ARCHIVE_PREFIX" envDefault:"transcripts"`
}

// Load reads an optional .env file, then the environment, and validates the
// result. Variables already set in the environment win over the file.
func Load(envFile string) (*Config, error) {
	if envFile == "" {
		envFile = ".env"
	}
	if _, err := os.Stat(envFile); err == nil {
		if err := godotenv.Load(envFile); err != nil {
			return nil, errors.Wrapf(err, "load %s", envFile)
		}
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, errors.Wrap(err, "parse environment")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.ServerPort == "" {
		return errors.New("server port is required")
	}
	if c.ReadTimeout <= 0 {
		return errors.New("read timeout must be greater than 0")
	}
	if c.WriteTimeout <= 0 {
		return errors.New("write timeout must be greater than 0")
	}
	if c.IdleTimeout <= 0 {
		return errors.New("idle timeout must be greater than 0")
	}
	if c.ShutdownTimeout <= 0 {
		return errors.New("shutdown timeout must be greater than 0")
	}
	if c.RequestTimeout <= 0 {
		return errors.New("request timeout must be greater than 0")
	}
	if c.SideEffectTimeout <= 0 {
		return errors.New("side effect timeout must be greater than 0")
	}
	// journal and archive writes run after the upstream work, one after the other
	if budget := c.RequestTimeout + 2*c.SideEffectTimeout; budget >= c.WriteTimeout {
		return errors.Errorf("request timeout plus side effect budget (%s) must be less than write timeout (%s)",
			budget, c.WriteTimeout)
	}
	if c.YouTube.Timeout <= 0 {
		return errors.New("youtube timeout must be greater than 0")
	}
	if c.YouTube.RequestsPerSecond < 0 {
		return errors.New("youtube requests per second must not be negative")
	}
	if c.RateLimit.Enabled && (c.RateLimit.RequestsPerMinute <= 0 || c.RateLimit.Burst <= 0) {
		return errors.New("rate limit requires positive requests per minute and burst")
	}
	if c.Archive.Bucket != "" && c.Archive.Region == "" {
		return errors.New("archive region is required when an archive bucket is set")
	}
	return nil
}

func (c *Config) Addr() string {
	return ":" + c.ServerPort
}
