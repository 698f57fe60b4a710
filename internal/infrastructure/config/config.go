package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Supported storage drivers
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMongo    = "mongo"
)

// Supported snapshot cache backends
const (
	CacheMemory = "memory"
	CacheRedis  = "redis"
	CacheNone   = "none"
)

// Config holds all application configuration
type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Mongo     MongoConfig
	Redis     RedisConfig
	Cache     CacheConfig
	Log       LogConfig
	HTTP      HTTPConfig
	Numbering NumberingConfig
	Settings  SettingsConfig
	Telemetry TelemetryConfig
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path

	// Rotation applies when Output is a file path
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
	Port string
}

// DatabaseConfig holds relational database connection settings
type DatabaseConfig struct {
	Driver          string // postgres, sqlite or mongo
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	SQLitePath      string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int // in minutes
	ConnMaxIdleTime int // in minutes
}

// MongoConfig holds MongoDB connection settings
type MongoConfig struct {
	URI            string
	Database       string
	ConnectTimeout time.Duration
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// CacheConfig holds settings snapshot cache configuration
type CacheConfig struct {
	Backend     string // memory, redis or none
	SnapshotTTL time.Duration
	KeyPrefix   string
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	ReadTimeout      time.Duration
	WriteTimeout     time.Duration
	IdleTimeout      time.Duration
	MaxHeaderBytes   int
	MaxBodySize      int64
	CORSAllowOrigins []string
	CORSAllowMethods []string
	CORSAllowHeaders []string
	TrustedProxies   []string
}

// NumberingConfig holds document number settings
type NumberingConfig struct {
	Length int
}

// TelemetryConfig holds OpenTelemetry export settings. Trace context is
// propagated even when export is disabled.
type TelemetryConfig struct {
	Enabled           bool
	CollectorEndpoint string // OTLP gRPC host:port
	Insecure          bool
	SamplingRatio     float64
	MetricsInterval   time.Duration
	ExportLogs        bool
	TraceSQL          bool
}

// SettingsConfig holds settings store bootstrap options
type SettingsConfig struct {
	SeedDefaults bool
}

// Load loads configuration from TOML file and environment variables
// Priority (highest to lowest):
// 1. Environment variables with ERP_ prefix (e.g., ERP_DATABASE_PASSWORD)
// 2. config.toml
// 3. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("/app")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	return fromViper(v)
}

// LoadFile loads configuration from an explicit TOML file, still honouring
// ERP_ environment overrides
func LoadFile(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("toml")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}
	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	v.SetDefault("telemetry.insecure", true)
	v.SetDefault("telemetry.sampling_ratio", 1.0)
	v.SetEnvPrefix("ERP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
			Port: v.GetString("app.port"),
		},
		Database: DatabaseConfig{
			Driver:          strings.ToLower(v.GetString("database.driver")),
			Host:            v.GetString("database.host"),
			Port:            v.GetInt("database.port"),
			User:            v.GetString("database.user"),
			Password:        v.GetString("database.password"),
			DBName:          v.GetString("database.dbname"),
			SSLMode:         v.GetString("database.sslmode"),
			SQLitePath:      v.GetString("database.sqlite_path"),
			MaxOpenConns:    v.GetInt("database.max_open_conns"),
			MaxIdleConns:    v.GetInt("database.max_idle_conns"),
			ConnMaxLifetime: v.GetInt("database.conn_max_lifetime"),
			ConnMaxIdleTime: v.GetInt("database.conn_max_idle_time"),
		},
		Mongo: MongoConfig{
			URI:            v.GetString("mongo.uri"),
			Database:       v.GetString("mongo.database"),
			ConnectTimeout: v.GetDuration("mongo.connect_timeout"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("redis.host"),
			Port:     v.GetInt("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		Cache: CacheConfig{
			Backend:     strings.ToLower(v.GetString("cache.backend")),
			SnapshotTTL: v.GetDuration("cache.snapshot_ttl"),
			KeyPrefix:   v.GetString("cache.key_prefix"),
		},
		Log: LogConfig{
			Level:      v.GetString("log.level"),
			Format:     v.GetString("log.format"),
			Output:     v.GetString("log.output"),
			MaxSizeMB:  v.GetInt("log.max_size_mb"),
			MaxBackups: v.GetInt("log.max_backups"),
			MaxAgeDays: v.GetInt("log.max_age_days"),
			Compress:   v.GetBool("log.compress"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:      v.GetDuration("http.read_timeout"),
			WriteTimeout:     v.GetDuration("http.write_timeout"),
			IdleTimeout:      v.GetDuration("http.idle_timeout"),
			MaxHeaderBytes:   v.GetInt("http.max_header_bytes"),
			MaxBodySize:      v.GetInt64("http.max_body_size"),
			CORSAllowOrigins: v.GetStringSlice("http.cors_allow_origins"),
			CORSAllowMethods: v.GetStringSlice("http.cors_allow_methods"),
			CORSAllowHeaders: v.GetStringSlice("http.cors_allow_headers"),
			TrustedProxies:   v.GetStringSlice("http.trusted_proxies"),
		},
		Numbering: NumberingConfig{
			Length: v.GetInt("numbering.length"),
		},
		Settings: SettingsConfig{
			SeedDefaults: v.GetBool("settings.seed_defaults"),
		},
		Telemetry: TelemetryConfig{
			Enabled:           v.GetBool("telemetry.enabled"),
			CollectorEndpoint: v.GetString("telemetry.collector_endpoint"),
			Insecure:          v.GetBool("telemetry.insecure"),
			SamplingRatio:     v.GetFloat64("telemetry.sampling_ratio"),
			MetricsInterval:   v.GetDuration("telemetry.metrics_interval"),
			ExportLogs:        v.GetBool("telemetry.export_logs"),
			TraceSQL:          v.GetBool("telemetry.trace_sql"),
		},
	}

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "erp-backoffice"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Port == "" {
		cfg.App.Port = "8080"
	}
	if cfg.Database.Driver == "" {
		cfg.Database.Driver = DriverPostgres
	}
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.User == "" {
		cfg.Database.User = "postgres"
	}
	if cfg.Database.DBName == "" {
		cfg.Database.DBName = "erp"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.SQLitePath == "" {
		cfg.Database.SQLitePath = "backoffice.db"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 25
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = 60
	}
	if cfg.Database.ConnMaxIdleTime == 0 {
		cfg.Database.ConnMaxIdleTime = 30
	}
	if cfg.Mongo.URI == "" {
		cfg.Mongo.URI = "mongodb://localhost:27017"
	}
	if cfg.Mongo.Database == "" {
		cfg.Mongo.Database = "erp"
	}
	if cfg.Mongo.ConnectTimeout == 0 {
		cfg.Mongo.ConnectTimeout = 10 * time.Second
	}
	if cfg.Redis.Host == "" {
		cfg.Redis.Host = "localhost"
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}
	if cfg.Cache.Backend == "" {
		cfg.Cache.Backend = CacheMemory
	}
	if cfg.Cache.SnapshotTTL == 0 {
		cfg.Cache.SnapshotTTL = 5 * time.Minute
	}
	if cfg.Cache.KeyPrefix == "" {
		cfg.Cache.KeyPrefix = "erp:settings:"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}
	if cfg.Log.MaxSizeMB == 0 {
		cfg.Log.MaxSizeMB = 100
	}
	if cfg.Log.MaxBackups == 0 {
		cfg.Log.MaxBackups = 7
	}
	if cfg.Log.MaxAgeDays == 0 {
		cfg.Log.MaxAgeDays = 30
	}
	if cfg.HTTP.ReadTimeout == 0 {
		cfg.HTTP.ReadTimeout = 15 * time.Second
	}
	if cfg.HTTP.WriteTimeout == 0 {
		cfg.HTTP.WriteTimeout = 15 * time.Second
	}
	if cfg.HTTP.IdleTimeout == 0 {
		cfg.HTTP.IdleTimeout = 60 * time.Second
	}
	if cfg.HTTP.MaxHeaderBytes == 0 {
		cfg.HTTP.MaxHeaderBytes = 1 << 20 // 1MB
	}
	if cfg.HTTP.MaxBodySize == 0 {
		cfg.HTTP.MaxBodySize = 1 << 20 // 1MB
	}
	// An empty origin list allows no cross-origin requests
	if len(cfg.HTTP.CORSAllowMethods) == 0 {
		cfg.HTTP.CORSAllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	}
	if len(cfg.HTTP.CORSAllowHeaders) == 0 {
		cfg.HTTP.CORSAllowHeaders = []string{"Content-Type", "Authorization", "X-Request-ID"}
	}
	if cfg.Numbering.Length == 0 {
		cfg.Numbering.Length = 13
	}
	if cfg.Telemetry.CollectorEndpoint == "" {
		cfg.Telemetry.CollectorEndpoint = "localhost:4317"
	}
	if cfg.Telemetry.MetricsInterval == 0 {
		cfg.Telemetry.MetricsInterval = 60 * time.Second
	}
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	switch c.Database.Driver {
	case DriverPostgres, DriverSQLite, DriverMongo:
	default:
		return fmt.Errorf("database.driver must be one of postgres, sqlite, mongo, got %q", c.Database.Driver)
	}

	switch c.Cache.Backend {
	case CacheMemory, CacheRedis, CacheNone:
	default:
		return fmt.Errorf("cache.backend must be one of memory, redis, none, got %q", c.Cache.Backend)
	}
	if c.Cache.SnapshotTTL < 0 {
		return fmt.Errorf("cache.snapshot_ttl cannot be negative")
	}

	if c.Database.MaxOpenConns <= 0 {
		return fmt.Errorf("database.max_open_conns must be positive")
	}
	if c.Database.MaxIdleConns < 0 {
		return fmt.Errorf("database.max_idle_conns cannot be negative")
	}
	if c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		return fmt.Errorf("database.max_idle_conns (%d) cannot exceed database.max_open_conns (%d)",
			c.Database.MaxIdleConns, c.Database.MaxOpenConns)
	}

	if c.Telemetry.SamplingRatio < 0 || c.Telemetry.SamplingRatio > 1 {
		return fmt.Errorf("telemetry.sampling_ratio must be between 0 and 1, got %g", c.Telemetry.SamplingRatio)
	}

	if c.Numbering.Length <= 9 {
		return fmt.Errorf("numbering.length must be greater than 9, got %d", c.Numbering.Length)
	}

	if c.App.Env == "production" {
		if c.Database.Driver == DriverPostgres {
			if c.Database.Password == "" {
				return fmt.Errorf("database.password is required in production")
			}
			if c.Database.SSLMode == "disable" {
				return fmt.Errorf("database.sslmode cannot be 'disable' in production")
			}
		}
		if c.Database.Driver == DriverSQLite {
			return fmt.Errorf("database.driver sqlite is not supported in production")
		}
		for _, origin := range c.HTTP.CORSAllowOrigins {
			if origin == "*" {
				return fmt.Errorf("cors_allow_origins cannot be '*' in production (use specific origins)")
			}
		}
	}

	return nil
}

// DSN returns the database connection string with properly escaped values
func (d *DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   d.DBName,
	}
	q := u.Query()
	q.Set("sslmode", d.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}

// Addr returns the Redis host:port address
func (r *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}
