package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/guillermoBallester/flaskr/internal/core/domain"
	"gopkg.in/yaml.v3"
)

type Config struct {
	// Database connection. The URL scheme selects the driver:
	// postgres:// or postgresql:// (pgx), mysql:// (go-sql-driver).
	DatabaseURL string

	// Web.
	HTTPAddr  string
	SecretKey string

	// Schema script.
	SchemaFile   string // empty means the embedded schema for the dialect
	ScriptSplit  domain.SplitMode
	ScriptCommit domain.CommitPolicy

	// Logging.
	LogLevel slog.Level

	// Connection pool.
	PoolMaxConns        int32         // default: 5
	PoolMinConns        int32         // default: 1
	PoolMaxConnLifetime time.Duration // default: 30m

	// Observability.
	OTelEnabled bool
	AuditLog    string // path to NDJSON audit log file
}

// FileConfig is the YAML form of the settings. Every field is optional.
type FileConfig struct {
	DatabaseURL  string `yaml:"database_url"`
	HTTPAddr     string `yaml:"http_addr"`
	SecretKey    string `yaml:"secret_key"`
	SchemaFile   string `yaml:"schema_file"`
	ScriptSplit  string `yaml:"script_split"`
	ScriptCommit string `yaml:"script_commit"`
	LogLevel     string `yaml:"log_level"`
	AuditLog     string `yaml:"audit_log"`
	OTelEnabled  *bool  `yaml:"otel_enabled"`
	Pool         struct {
		MaxConns        *int32 `yaml:"max_conns"`
		MinConns        *int32 `yaml:"min_conns"`
		MaxConnLifetime string `yaml:"max_conn_lifetime"`
	} `yaml:"pool"`
}

// Overrides holds CLI flag values that override environment variables.
// Pointer fields distinguish "not set" from zero values.
type Overrides struct {
	ConfigFile   *string
	DatabaseURL  *string
	HTTPAddr     *string
	SecretKey    *string
	LogLevel     *string
	SchemaFile   *string
	ScriptSplit  *string
	ScriptCommit *string
	OTelEnabled  bool
	AuditLog     string

	// Connection pool overrides.
	PoolMaxConns        *int32
	PoolMinConns        *int32
	PoolMaxConnLifetime *time.Duration
}

// Load builds a Config from the optional YAML file, then environment
// variables, then CLI overrides, then validates the result.
func Load(overrides Overrides) (*Config, error) {
	cfg := defaults()

	path := os.Getenv("CONFIG_FILE")
	if overrides.ConfigFile != nil {
		path = *overrides.ConfigFile
	}
	if path != "" {
		if err := loadFile(cfg, path); err != nil {
			return nil, err
		}
	}

	if err := loadEnvVars(cfg); err != nil {
		return nil, err
	}
	if err := applyOverrides(cfg, overrides); err != nil {
		return nil, err
	}
	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// defaults returns a Config populated with default values.
func defaults() *Config {
	return &Config{
		HTTPAddr:            ":5000",
		SecretKey:           "dev",
		ScriptSplit:         domain.SplitLine,
		ScriptCommit:        domain.CommitPerLine,
		PoolMaxConns:        5,
		PoolMinConns:        1,
		PoolMaxConnLifetime: 30 * time.Minute,
	}
}

// loadFile reads a YAML config file into cfg.
func loadFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}

	var fc FileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parsing config YAML: %w", err)
	}

	setString(&cfg.DatabaseURL, fc.DatabaseURL)
	setString(&cfg.HTTPAddr, fc.HTTPAddr)
	setString(&cfg.SecretKey, fc.SecretKey)
	setString(&cfg.SchemaFile, fc.SchemaFile)
	setString(&cfg.AuditLog, fc.AuditLog)

	if fc.ScriptSplit != "" {
		if cfg.ScriptSplit, err = domain.ParseSplitMode(fc.ScriptSplit); err != nil {
			return fmt.Errorf("config file script_split: %w", err)
		}
	}
	if fc.ScriptCommit != "" {
		if cfg.ScriptCommit, err = domain.ParseCommitPolicy(fc.ScriptCommit); err != nil {
			return fmt.Errorf("config file script_commit: %w", err)
		}
	}
	if fc.LogLevel != "" {
		if cfg.LogLevel, err = parseLogLevel(fc.LogLevel); err != nil {
			return err
		}
	}
	if fc.OTelEnabled != nil {
		cfg.OTelEnabled = *fc.OTelEnabled
	}
	if fc.Pool.MaxConns != nil {
		cfg.PoolMaxConns = *fc.Pool.MaxConns
	}
	if fc.Pool.MinConns != nil {
		cfg.PoolMinConns = *fc.Pool.MinConns
	}
	if fc.Pool.MaxConnLifetime != "" {
		d, err := time.ParseDuration(fc.Pool.MaxConnLifetime)
		if err != nil {
			return fmt.Errorf("invalid pool.max_conn_lifetime value %q: %w", fc.Pool.MaxConnLifetime, err)
		}
		cfg.PoolMaxConnLifetime = d
	}
	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

// loadEnvVars reads all supported environment variables into cfg.
func loadEnvVars(cfg *Config) error {
	setString(&cfg.DatabaseURL, os.Getenv("DATABASE_URL"))
	setString(&cfg.HTTPAddr, os.Getenv("HTTP_ADDR"))
	setString(&cfg.SecretKey, os.Getenv("SECRET_KEY"))
	setString(&cfg.SchemaFile, os.Getenv("SCHEMA_FILE"))
	setString(&cfg.AuditLog, os.Getenv("AUDIT_LOG"))

	if v := os.Getenv("SCRIPT_SPLIT"); v != "" {
		m, err := domain.ParseSplitMode(v)
		if err != nil {
			return fmt.Errorf("invalid SCRIPT_SPLIT value: %w", err)
		}
		cfg.ScriptSplit = m
	}

	if v := os.Getenv("SCRIPT_COMMIT"); v != "" {
		p, err := domain.ParseCommitPolicy(v)
		if err != nil {
			return fmt.Errorf("invalid SCRIPT_COMMIT value: %w", err)
		}
		cfg.ScriptCommit = p
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		level, err := parseLogLevel(v)
		if err != nil {
			return err
		}
		cfg.LogLevel = level
	}

	if v := os.Getenv("OTEL_ENABLED"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid OTEL_ENABLED value %q: %w", v, err)
		}
		cfg.OTelEnabled = b
	}

	return loadPoolEnvVars(cfg)
}

// loadPoolEnvVars reads connection pool environment variables.
func loadPoolEnvVars(cfg *Config) error {
	if v := os.Getenv("POOL_MAX_CONNS"); v != "" {
		n, err := strconv.ParseInt(v, 10, 32)
		if err != nil || n <= 0 {
			return fmt.Errorf("invalid POOL_MAX_CONNS value %q: must be a positive integer", v)
		}
		cfg.PoolMaxConns = int32(n)
	}
	if v := os.Getenv("POOL_MIN_CONNS"); v != "" {
		n, err := strconv.ParseInt(v, 10, 32)
		if err != nil || n < 0 {
			return fmt.Errorf("invalid POOL_MIN_CONNS value %q: must be a non-negative integer", v)
		}
		cfg.PoolMinConns = int32(n)
	}
	if v := os.Getenv("POOL_MAX_CONN_LIFETIME"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid POOL_MAX_CONN_LIFETIME value %q: %w", v, err)
		}
		cfg.PoolMaxConnLifetime = d
	}
	return nil
}

// applyOverrides applies CLI flag values on top of the env-loaded config.
func applyOverrides(cfg *Config, o Overrides) error {
	if o.DatabaseURL != nil {
		cfg.DatabaseURL = *o.DatabaseURL
	}
	if o.HTTPAddr != nil {
		cfg.HTTPAddr = *o.HTTPAddr
	}
	if o.SecretKey != nil {
		cfg.SecretKey = *o.SecretKey
	}
	if o.SchemaFile != nil {
		cfg.SchemaFile = *o.SchemaFile
	}
	if o.LogLevel != nil {
		level, err := parseLogLevel(*o.LogLevel)
		if err != nil {
			return err
		}
		cfg.LogLevel = level
	}
	if o.ScriptSplit != nil {
		m, err := domain.ParseSplitMode(*o.ScriptSplit)
		if err != nil {
			return fmt.Errorf("invalid --split value: %w", err)
		}
		cfg.ScriptSplit = m
	}
	if o.ScriptCommit != nil {
		p, err := domain.ParseCommitPolicy(*o.ScriptCommit)
		if err != nil {
			return fmt.Errorf("invalid --commit value: %w", err)
		}
		cfg.ScriptCommit = p
	}

	if err := applyPoolOverrides(cfg, o); err != nil {
		return err
	}

	if o.AuditLog != "" {
		cfg.AuditLog = o.AuditLog
	}
	cfg.OTelEnabled = cfg.OTelEnabled || o.OTelEnabled

	return nil
}

// applyPoolOverrides applies connection pool CLI flag overrides.
func applyPoolOverrides(cfg *Config, o Overrides) error {
	if o.PoolMaxConns != nil {
		if *o.PoolMaxConns <= 0 {
			return fmt.Errorf("invalid --pool-max-conns value: must be a positive integer")
		}
		cfg.PoolMaxConns = *o.PoolMaxConns
	}
	if o.PoolMinConns != nil {
		if *o.PoolMinConns < 0 {
			return fmt.Errorf("invalid --pool-min-conns value: must be a non-negative integer")
		}
		cfg.PoolMinConns = *o.PoolMinConns
	}
	if o.PoolMaxConnLifetime != nil {
		cfg.PoolMaxConnLifetime = *o.PoolMaxConnLifetime
	}
	return nil
}

// validate checks cross-field constraints on the final config.
func validate(cfg *Config) error {
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required (set via env var, config file or --database-url flag)")
	}
	if _, err := cfg.Dialect(); err != nil {
		return err
	}
	if cfg.ScriptSplit == domain.SplitPG {
		if d, _ := cfg.Dialect(); d != "postgres" {
			return fmt.Errorf("SCRIPT_SPLIT=pg requires a postgres DATABASE_URL")
		}
	}
	if cfg.SecretKey == "" {
		return fmt.Errorf("SECRET_KEY must not be empty")
	}
	if cfg.PoolMinConns > cfg.PoolMaxConns {
		return fmt.Errorf("POOL_MIN_CONNS (%d) must not exceed POOL_MAX_CONNS (%d)", cfg.PoolMinConns, cfg.PoolMaxConns)
	}

	return nil
}

// Dialect derives the database dialect from the DATABASE_URL scheme.
func (c *Config) Dialect() (string, error) {
	u, err := url.Parse(c.DatabaseURL)
	if err != nil {
		return "", fmt.Errorf("invalid DATABASE_URL: %w", err)
	}
	switch u.Scheme {
	case "postgres", "postgresql":
		return "postgres", nil
	case "mysql":
		return "mysql", nil
	default:
		return "", fmt.Errorf("invalid DATABASE_URL scheme %q: must be postgres, postgresql, or mysql", u.Scheme)
	}
}

func parseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL value %q: must be debug, info, warn, or error", s)
	}
}
