// Package config provides configuration loading from environment variables.
package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// Static errors for configuration validation.
var (
	// ErrAudioDirRequired is returned when AUDIO_DIR is empty.
	ErrAudioDirRequired = errors.New("config: AUDIO_DIR is required")
	// ErrOutputDirRequired is returned when OUTPUT_DIR is empty.
	ErrOutputDirRequired = errors.New("config: OUTPUT_DIR is required")
	// ErrClipExtInvalid is returned when CLIP_EXT does not start with a dot.
	ErrClipExtInvalid = errors.New("config: CLIP_EXT must start with '.'")
	// ErrDefaultBucketUnknown is returned when DEFAULT_BUCKET is not listed in BUCKETS.
	ErrDefaultBucketUnknown = errors.New("config: DEFAULT_BUCKET must be one of BUCKETS")
	// ErrInvalidRange is returned when a min/max pair is not positive and ordered.
	ErrInvalidRange = errors.New("config: invalid duration range")
	// ErrInvalidRetention is returned when OUTPUT_RETENTION or PRUNE_INTERVAL is negative.
	ErrInvalidRetention = errors.New("config: invalid retention settings")
)

// Config holds all configuration for the application.
type Config struct {
	// Server settings
	Port               int      `env:"PORT, default=9000" json:"port"`
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS, default=*" json:"cors_allowed_origins"`

	// Clip library settings
	AudioDir         string   `env:"AUDIO_DIR, default=./audio" json:"audio_dir"`
	ClipExt          string   `env:"CLIP_EXT, default=.WAV" json:"clip_ext"`
	ClipExtFoldCase  bool     `env:"CLIP_EXT_FOLD_CASE, default=false" json:"clip_ext_fold_case"`
	BucketingEnabled bool     `env:"BUCKETING_ENABLED, default=true" json:"bucketing_enabled"`
	Buckets          []string `env:"BUCKETS, default=long,medium,min" json:"buckets"`
	DefaultBucket    string   `env:"DEFAULT_BUCKET, default=long" json:"default_bucket"`

	// Output settings
	OutputDir       string        `env:"OUTPUT_DIR, default=./output" json:"output_dir"`
	OutputRetention time.Duration `env:"OUTPUT_RETENTION, default=0s" json:"output_retention"`
	PruneInterval   time.Duration `env:"PRUNE_INTERVAL, default=10m" json:"prune_interval"`

	// Synthesis settings
	DefaultMinSec  float64 `env:"DEFAULT_MIN_SEC, default=3" json:"default_min_sec"`
	DefaultMaxSec  float64 `env:"DEFAULT_MAX_SEC, default=8" json:"default_max_sec"`
	MaxDurationSec float64 `env:"MAX_DURATION_SEC, default=300" json:"max_duration_sec"`

	// Duration estimation settings
	EstimateMinSec  float64 `env:"ESTIMATE_MIN_SEC, default=2" json:"estimate_min_sec"`
	EstimateMaxSec  float64 `env:"ESTIMATE_MAX_SEC, default=6" json:"estimate_max_sec"`
	EstimateWordSec float64 `env:"ESTIMATE_WORD_SEC, default=0.4" json:"estimate_word_sec"`
	EstimateCharSec float64 `env:"ESTIMATE_CHAR_SEC, default=0.25" json:"estimate_char_sec"`

	// Optional S3 mirror settings
	S3Bucket           string `env:"S3_BUCKET" json:"s3_bucket,omitempty"`
	S3Region           string `env:"S3_REGION" json:"s3_region,omitempty"`
	S3Endpoint         string `env:"S3_ENDPOINT" json:"s3_endpoint,omitempty"`
	S3Prefix           string `env:"S3_PREFIX, default=synthesized" json:"s3_prefix,omitempty"`
	AWSAccessKeyID     string `env:"AWS_ACCESS_KEY_ID" json:"-"`     // Masked in JSON
	AWSSecretAccessKey string `env:"AWS_SECRET_ACCESS_KEY" json:"-"` // Masked in JSON

	// Logging settings
	LogFormat string `env:"LOG_FORMAT, default=text" json:"log_format"` // "json" or "text"
	LogLevel  string `env:"LOG_LEVEL, default=info" json:"log_level"`   // "debug", "info", "warn", "error"
}

// S3Enabled returns true if S3 configuration is provided.
func (c *Config) S3Enabled() bool {
	return c.S3Bucket != "" && c.S3Region != ""
}

// RetentionEnabled returns true if old outputs should be pruned.
func (c *Config) RetentionEnabled() bool {
	return c.OutputRetention > 0
}

// ActiveBuckets returns the bucket list in priority order, or nil when
// bucketing is disabled.
func (c *Config) ActiveBuckets() []string {
	if !c.BucketingEnabled {
		return nil
	}
	out := make([]string, 0, len(c.Buckets))
	for _, b := range c.Buckets {
		if b = strings.TrimSpace(b); b != "" {
			out = append(out, b)
		}
	}
	return out
}

// Load reads configuration from environment variables using go-envconfig
// and validates it.
func Load() (*Config, error) {
	cfg := &Config{}

	if err := envconfig.Process(context.Background(), cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks cross-field rules that struct tags cannot express.
func (c *Config) Validate() error {
	if c.AudioDir == "" {
		return ErrAudioDirRequired
	}
	if c.OutputDir == "" {
		return ErrOutputDirRequired
	}
	if !strings.HasPrefix(c.ClipExt, ".") {
		return fmt.Errorf("%w: %q", ErrClipExtInvalid, c.ClipExt)
	}
	if buckets := c.ActiveBuckets(); len(buckets) > 0 && !slices.Contains(buckets, c.DefaultBucket) {
		return fmt.Errorf("%w: %q not in %v", ErrDefaultBucketUnknown, c.DefaultBucket, buckets)
	}
	if c.DefaultMinSec <= 0 || c.DefaultMaxSec < c.DefaultMinSec {
		return fmt.Errorf("%w: DEFAULT_MIN_SEC=%g DEFAULT_MAX_SEC=%g", ErrInvalidRange, c.DefaultMinSec, c.DefaultMaxSec)
	}
	if c.EstimateMinSec <= 0 || c.EstimateMaxSec < c.EstimateMinSec {
		return fmt.Errorf("%w: ESTIMATE_MIN_SEC=%g ESTIMATE_MAX_SEC=%g", ErrInvalidRange, c.EstimateMinSec, c.EstimateMaxSec)
	}
	if c.MaxDurationSec <= 0 {
		return fmt.Errorf("%w: MAX_DURATION_SEC=%g", ErrInvalidRange, c.MaxDurationSec)
	}
	if c.OutputRetention < 0 || (c.RetentionEnabled() && c.PruneInterval <= 0) {
		return fmt.Errorf("%w: OUTPUT_RETENTION=%s PRUNE_INTERVAL=%s", ErrInvalidRetention, c.OutputRetention, c.PruneInterval)
	}
	return nil
}

// NewLogger creates a structured logger based on the configuration.
// When LogFormat is "json", it outputs JSON logs suitable for production.
// Otherwise, it outputs human-readable text logs.
func (c *Config) NewLogger() *slog.Logger {
	level := parseLogLevel(c.LogLevel)

	var handler slog.Handler
	if strings.ToLower(c.LogFormat) == "json" {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: level,
		})
	} else {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: level,
		})
	}

	return slog.New(handler)
}

// String returns a string representation of the config with sensitive values masked.
func (c *Config) String() string {
	return fmt.Sprintf(
		"Config{Port: %d, AudioDir: %s, OutputDir: %s, ClipExt: %s, Buckets: %v, DefaultBucket: %s, OutputRetention: %s, S3Bucket: %s, S3Region: %s, LogFormat: %s, LogLevel: %s}",
		c.Port,
		c.AudioDir,
		c.OutputDir,
		c.ClipExt,
		c.ActiveBuckets(),
		c.DefaultBucket,
		c.OutputRetention,
		c.S3Bucket,
		c.S3Region,
		c.LogFormat,
		c.LogLevel,
	)
}

// Seconds converts a float second count to a time.Duration.
func Seconds(sec float64) time.Duration {
	return time.Duration(sec * float64(time.Second))
}

// parseLogLevel converts a string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
