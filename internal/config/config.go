package config

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Config struct {
	Port string

	// Auth
	APIKey string

	// Upload limits
	MaxUploadBytes int64

	// Title resolution
	ResolveConcurrency int
	ResolveTimeout     time.Duration
	UserAgent          string
	TitleCacheTTL      time.Duration

	// PDF
	PDFFallbackPdftotext bool
	PDFFallbackPDFCPU    bool

	// Debug artifacts, disabled when empty
	ArtifactDir string

	LogLevel string
}

const (
	defaultPort               = "8090"
	defaultMaxUploadBytes     = 52428800 // 50MB
	defaultResolveConcurrency = 5
	defaultResolveTimeout     = 10 * time.Second
	defaultUserAgent          = "agendalink/1.0"
)

// flagKeys maps command-line flag names to config keys.
var flagKeys = map[string]string{
	"port":                "port",
	"api-key":             "api_key",
	"max-upload-bytes":    "max_upload_bytes",
	"resolve-concurrency": "resolve_concurrency",
	"resolve-timeout":     "resolve_timeout",
	"user-agent":          "user_agent",
	"title-cache-ttl":     "title_cache_ttl",
	"artifact-dir":        "artifact_dir",
	"log-level":           "log_level",
}

// RegisterFlags adds the shared flags to fs. Only flags that were set on
// the command line override the environment.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String("artifact-dir", "", "Directory for per-run debug artifacts (disabled when empty)")
	fs.Int("resolve-concurrency", defaultResolveConcurrency, "Max in-flight title requests")
	fs.Duration("resolve-timeout", defaultResolveTimeout, "Per-link title request timeout")
	fs.String("log-level", "info", "Log level (debug, info, warn, error)")
}

// RegisterServerFlags adds the HTTP-only flags to fs.
func RegisterServerFlags(fs *pflag.FlagSet) {
	RegisterFlags(fs)
	fs.String("port", defaultPort, "HTTP listen port")
}

// Load reads configuration from defaults, the environment and, when fs is
// not nil, explicitly set flags, in increasing order of precedence.
func Load(fs *pflag.FlagSet) Config {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("port", defaultPort)
	v.SetDefault("api_key", "")
	v.SetDefault("max_upload_bytes", defaultMaxUploadBytes)
	v.SetDefault("resolve_concurrency", defaultResolveConcurrency)
	v.SetDefault("resolve_timeout", defaultResolveTimeout)
	v.SetDefault("user_agent", defaultUserAgent)
	v.SetDefault("title_cache_ttl", time.Duration(0))
	v.SetDefault("pdf_fallback_pdftotext", true)
	v.SetDefault("pdf_fallback_pdfcpu", true)
	v.SetDefault("artifact_dir", "")
	v.SetDefault("log_level", "info")

	if fs != nil {
		fs.Visit(func(f *pflag.Flag) {
			if key, ok := flagKeys[f.Name]; ok {
				_ = v.BindPFlag(key, f)
			}
		})
	}

	cfg := Config{
		Port:                 v.GetString("port"),
		APIKey:               v.GetString("api_key"),
		MaxUploadBytes:       v.GetInt64("max_upload_bytes"),
		ResolveConcurrency:   v.GetInt("resolve_concurrency"),
		ResolveTimeout:       v.GetDuration("resolve_timeout"),
		UserAgent:            v.GetString("user_agent"),
		TitleCacheTTL:        v.GetDuration("title_cache_ttl"),
		PDFFallbackPdftotext: v.GetBool("pdf_fallback_pdftotext"),
		PDFFallbackPDFCPU:    v.GetBool("pdf_fallback_pdfcpu"),
		ArtifactDir:          v.GetString("artifact_dir"),
		LogLevel:             strings.ToLower(v.GetString("log_level")),
	}

	if cfg.Port == "" {
		cfg.Port = defaultPort
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = defaultMaxUploadBytes
	}
	if cfg.ResolveConcurrency <= 0 {
		cfg.ResolveConcurrency = defaultResolveConcurrency
	}
	if cfg.ResolveTimeout <= 0 {
		cfg.ResolveTimeout = defaultResolveTimeout
	}
	if cfg.TitleCacheTTL < 0 {
		cfg.TitleCacheTTL = 0
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultUserAgent
	}

	return cfg
}

func (c Config) Validate() error {
	if n, err := strconv.Atoi(c.Port); err != nil || n <= 0 || n > 65535 {
		return fmt.Errorf("PORT must be a port number, got %q", c.Port)
	}
	if c.ResolveConcurrency <= 0 {
		return fmt.Errorf("RESOLVE_CONCURRENCY must be positive, got %d", c.ResolveConcurrency)
	}
	if c.ResolveTimeout <= 0 {
		return fmt.Errorf("RESOLVE_TIMEOUT must be positive, got %s", c.ResolveTimeout)
	}
	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("MAX_UPLOAD_BYTES must be positive, got %d", c.MaxUploadBytes)
	}
	if _, err := c.SlogLevel(); err != nil {
		return err
	}
	return nil
}

// SlogLevel parses LogLevel.
func (c Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo, fmt.Errorf("LOG_LEVEL: %w", err)
	}
	return level, nil
}
