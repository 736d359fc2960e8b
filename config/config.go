package config

import (
	"fmt"
	"strings"
	"time"
)

// Config is the full orchestrator configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server" env:"SERVER"`
	Redis      RedisConfig      `yaml:"redis" env:"REDIS"`
	Database   DatabaseConfig   `yaml:"database" env:"DATABASE"`
	Cache      CacheConfig      `yaml:"cache" env:"CACHE"`
	Scoring    ScoringConfig    `yaml:"scoring" env:"SCORING"`
	Handoff    HandoffConfig    `yaml:"handoff" env:"HANDOFF"`
	RateLimit  RateLimitConfig  `yaml:"rate_limit" env:"RATE_LIMIT"`
	Compliance ComplianceConfig `yaml:"compliance" env:"COMPLIANCE"`
	CRM        CRMConfig        `yaml:"crm" env:"CRM"`
	Auth       AuthConfig       `yaml:"auth" env:"AUTH"`
	Log        LogConfig        `yaml:"log" env:"LOG"`
	Telemetry  TelemetryConfig  `yaml:"telemetry" env:"TELEMETRY"`
}

// ServerConfig configures the webhook HTTP server.
type ServerConfig struct {
	HTTPPort        int           `yaml:"http_port" env:"HTTP_PORT"`
	ReadTimeout     time.Duration `yaml:"read_timeout" env:"READ_TIMEOUT"`
	WriteTimeout    time.Duration `yaml:"write_timeout" env:"WRITE_TIMEOUT"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SHUTDOWN_TIMEOUT"`
	// RequestsPerSecond and Burst bound inbound webhook traffic per client IP.
	RequestsPerSecond float64 `yaml:"requests_per_second" env:"REQUESTS_PER_SECOND"`
	Burst             int     `yaml:"burst" env:"BURST"`
}

// RedisConfig configures the shared cache tier. Disabled means the tiered
// cache runs on the local and durable tiers only.
type RedisConfig struct {
	Enabled      bool   `yaml:"enabled" env:"ENABLED"`
	Addr         string `yaml:"addr" env:"ADDR"`
	Password     string `yaml:"password" env:"PASSWORD"`
	DB           int    `yaml:"db" env:"DB"`
	PoolSize     int    `yaml:"pool_size" env:"POOL_SIZE"`
	MinIdleConns int    `yaml:"min_idle_conns" env:"MIN_IDLE_CONNS"`
}

// DatabaseConfig configures contact persistence and the durable cache tier.
type DatabaseConfig struct {
	// Driver is memory, sqlite, or postgres.
	Driver   string `yaml:"driver" env:"DRIVER"`
	Host     string `yaml:"host" env:"HOST"`
	Port     int    `yaml:"port" env:"PORT"`
	User     string `yaml:"user" env:"USER"`
	Password string `yaml:"password" env:"PASSWORD"`
	// Name is the database name, or the file path for sqlite.
	Name    string `yaml:"name" env:"NAME"`
	SSLMode string `yaml:"ssl_mode" env:"SSL_MODE"`
}

// DSN renders the connection string for the configured driver.
func (d DatabaseConfig) DSN() string {
	switch d.Driver {
	case "postgres":
		return fmt.Sprintf(
			"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode,
		)
	case "sqlite":
		return d.Name
	default:
		return ""
	}
}

// CacheConfig configures the tiered read-through cache.
type CacheConfig struct {
	// LocalSize is the in-process LRU capacity.
	LocalSize int `yaml:"local_size" env:"LOCAL_SIZE"`
	// SignalTTL bounds cached signal extractions.
	SignalTTL time.Duration `yaml:"signal_ttl" env:"SIGNAL_TTL"`
	// ComplianceTTL bounds cached compliance verdicts.
	ComplianceTTL time.Duration `yaml:"compliance_ttl" env:"COMPLIANCE_TTL"`
	// DurableEnabled turns the database tier on.
	DurableEnabled bool `yaml:"durable_enabled" env:"DURABLE_ENABLED"`
}

// ScoringConfig holds the temperature boundaries.
type ScoringConfig struct {
	Hot  float64 `yaml:"hot" env:"HOT"`
	Warm float64 `yaml:"warm" env:"WARM"`
}

// HandoffConfig configures the decision engine.
type HandoffConfig struct {
	Threshold  float64       `yaml:"threshold" env:"THRESHOLD"`
	LoopWindow time.Duration `yaml:"loop_window" env:"LOOP_WINDOW"`
	LoopDepth  int           `yaml:"loop_depth" env:"LOOP_DEPTH"`
	// Workflows maps a target agent name (buyer, seller) to the workflow
	// triggered when a contact hands off to it.
	Workflows map[string]string `yaml:"workflows" env:"-"`
}

// RateLimitConfig holds the per-contact ceilings.
type RateLimitConfig struct {
	Window      time.Duration `yaml:"window" env:"WINDOW"`
	MaxOutbound int           `yaml:"max_outbound" env:"MAX_OUTBOUND"`
	MaxHandoffs int           `yaml:"max_handoffs" env:"MAX_HANDOFFS"`
}

// ComplianceConfig configures the outbound message guard.
type ComplianceConfig struct {
	MaxLength    int           `yaml:"max_length" env:"MAX_LENGTH"`
	AuditTimeout time.Duration `yaml:"audit_timeout" env:"AUDIT_TIMEOUT"`
}

// CRMConfig configures the outbound CRM client and delivery pipeline.
type CRMConfig struct {
	BaseURL string        `yaml:"base_url" env:"BASE_URL"`
	APIKey  string        `yaml:"api_key" env:"API_KEY"`
	Timeout time.Duration `yaml:"timeout" env:"TIMEOUT"`

	Workers   int `yaml:"workers" env:"WORKERS"`
	QueueSize int `yaml:"queue_size" env:"QUEUE_SIZE"`

	MaxRetries        int           `yaml:"max_retries" env:"MAX_RETRIES"`
	InitialBackoff    time.Duration `yaml:"initial_backoff" env:"INITIAL_BACKOFF"`
	MaxBackoff        time.Duration `yaml:"max_backoff" env:"MAX_BACKOFF"`
	BackoffMultiplier float64       `yaml:"backoff_multiplier" env:"BACKOFF_MULTIPLIER"`

	// ScoreFieldID and TemperatureFieldID are the CRM custom fields that
	// mirror the qualification score and temperature. Empty disables the
	// field updates.
	ScoreFieldID       string `yaml:"score_field_id" env:"SCORE_FIELD_ID"`
	TemperatureFieldID string `yaml:"temperature_field_id" env:"TEMPERATURE_FIELD_ID"`
}

// AuthConfig configures webhook authentication.
type AuthConfig struct {
	Enabled   bool   `yaml:"enabled" env:"ENABLED"`
	JWTSecret string `yaml:"jwt_secret" env:"JWT_SECRET"`
}

// LogConfig configures structured logging.
type LogConfig struct {
	// Level is debug, info, warn, or error.
	Level string `yaml:"level" env:"LEVEL"`
	// Format is json or console.
	Format           string   `yaml:"format" env:"FORMAT"`
	OutputPaths      []string `yaml:"output_paths" env:"OUTPUT_PATHS"`
	EnableCaller     bool     `yaml:"enable_caller" env:"ENABLE_CALLER"`
	EnableStacktrace bool     `yaml:"enable_stacktrace" env:"ENABLE_STACKTRACE"`
}

// TelemetryConfig configures OTLP export.
type TelemetryConfig struct {
	Enabled      bool    `yaml:"enabled" env:"ENABLED"`
	OTLPEndpoint string  `yaml:"otlp_endpoint" env:"OTLP_ENDPOINT"`
	ServiceName  string  `yaml:"service_name" env:"SERVICE_NAME"`
	SampleRate   float64 `yaml:"sample_rate" env:"SAMPLE_RATE"`
}

// DefaultConfig returns the development defaults.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			HTTPPort:          8080,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      15 * time.Second,
			ShutdownTimeout:   30 * time.Second,
			RequestsPerSecond: 50,
			Burst:             100,
		},
		Redis: RedisConfig{
			Enabled:      false,
			Addr:         "localhost:6379",
			PoolSize:     10,
			MinIdleConns: 2,
		},
		Database: DatabaseConfig{
			Driver: "memory",
		},
		Cache: CacheConfig{
			LocalSize:      4096,
			SignalTTL:      15 * time.Minute,
			ComplianceTTL:  time.Hour,
			DurableEnabled: false,
		},
		Scoring: ScoringConfig{Hot: 80, Warm: 40},
		Handoff: HandoffConfig{
			Threshold:  0.7,
			LoopWindow: 10 * time.Minute,
			LoopDepth:  3,
		},
		RateLimit: RateLimitConfig{
			Window:      time.Hour,
			MaxOutbound: 20,
			MaxHandoffs: 3,
		},
		Compliance: ComplianceConfig{
			MaxLength:    2000,
			AuditTimeout: 5 * time.Second,
		},
		CRM: CRMConfig{
			Timeout:           10 * time.Second,
			Workers:           4,
			QueueSize:         256,
			MaxRetries:        3,
			InitialBackoff:    time.Second,
			MaxBackoff:        30 * time.Second,
			BackoffMultiplier: 2.0,
		},
		Auth: AuthConfig{Enabled: false},
		Log: LogConfig{
			Level:       "info",
			Format:      "json",
			OutputPaths: []string{"stdout"},
		},
		Telemetry: TelemetryConfig{
			Enabled:     false,
			ServiceName: "leadflow",
			SampleRate:  1.0,
		},
	}
}

// Validate checks cross-field consistency.
func (c *Config) Validate() error {
	var errs []string

	if c.Server.HTTPPort <= 0 || c.Server.HTTPPort > 65535 {
		errs = append(errs, "invalid http port")
	}
	if c.Handoff.Threshold <= 0 || c.Handoff.Threshold > 1 {
		errs = append(errs, "handoff threshold must be in (0, 1]")
	}
	if c.Scoring.Warm >= c.Scoring.Hot {
		errs = append(errs, "scoring warm boundary must be below hot boundary")
	}
	switch c.Database.Driver {
	case "memory", "sqlite", "postgres":
	default:
		errs = append(errs, fmt.Sprintf("unknown database driver %q", c.Database.Driver))
	}
	if c.Auth.Enabled && c.Auth.JWTSecret == "" {
		errs = append(errs, "auth enabled without jwt secret")
	}
	if c.Cache.DurableEnabled && c.Database.Driver == "memory" {
		errs = append(errs, "durable cache tier requires a sql database driver")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation errors: %s", strings.Join(errs, "; "))
	}
	return nil
}
