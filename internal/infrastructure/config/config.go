package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Log       LogConfig
	HTTP      HTTPConfig
	Suppliers SuppliersConfig
	Sync      SyncConfig
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
	Port string
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int // in minutes
	ConnMaxIdleTime int // in minutes
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	MaxHeaderBytes    int
	MaxBodySize       int64
	RateLimitEnabled  bool
	RateLimitRequests int
	RateLimitWindow   time.Duration
	CORSAllowOrigins  []string
	CORSAllowMethods  []string
	CORSAllowHeaders  []string
	TrustedProxies    []string
}

// SupplierAPIConfig holds the shared per-supplier API settings
type SupplierAPIConfig struct {
	Enabled     bool
	BaseURL     string
	MaxRequests int           // sliding window budget
	Window      time.Duration // sliding window size
	MinDelay    time.Duration // minimum spacing between requests
	Timeout     time.Duration
}

// SyscomConfig holds SYSCOM credentials on top of the shared settings
type SyscomConfig struct {
	SupplierAPIConfig
	TokenURL     string
	ClientID     string
	ClientSecret string
}

// TecnosinergiaConfig holds the TECNOSINERGIA static token settings
type TecnosinergiaConfig struct {
	SupplierAPIConfig
	APIToken string
	PageSize int
}

// SuppliersConfig groups the supplier API settings
type SuppliersConfig struct {
	Syscom        SyscomConfig
	Tecnosinergia TecnosinergiaConfig
}

// SyncConfig holds the sync orchestrator settings
type SyncConfig struct {
	RunTimeout          time.Duration
	CategoryDelay       time.Duration
	BatchSize           int
	BatchPause          time.Duration
	MaxPagesPerCategory int
	SchedulerEnabled    bool
	SchedulerInterval   time.Duration
	SchedulerRunOnStart bool
}

// Load loads configuration from TOML file and environment variables.
// Priority (highest to lowest):
// 1. Environment variables with MAYORISTAS_ prefix
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
		// Config file not found is OK, we'll use defaults and env vars
	}

	v.SetEnvPrefix("MAYORISTAS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
			Port: v.GetString("app.port"),
		},
		Database: DatabaseConfig{
			Host:            v.GetString("database.host"),
			Port:            v.GetInt("database.port"),
			User:            v.GetString("database.user"),
			Password:        v.GetString("database.password"),
			DBName:          v.GetString("database.dbname"),
			SSLMode:         v.GetString("database.sslmode"),
			MaxOpenConns:    v.GetInt("database.max_open_conns"),
			MaxIdleConns:    v.GetInt("database.max_idle_conns"),
			ConnMaxLifetime: v.GetInt("database.conn_max_lifetime"),
			ConnMaxIdleTime: v.GetInt("database.conn_max_idle_time"),
		},
		Redis: RedisConfig{
			Enabled:  v.GetBool("redis.enabled"),
			Host:     v.GetString("redis.host"),
			Port:     v.GetInt("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:       v.GetDuration("http.read_timeout"),
			WriteTimeout:      v.GetDuration("http.write_timeout"),
			IdleTimeout:       v.GetDuration("http.idle_timeout"),
			MaxHeaderBytes:    v.GetInt("http.max_header_bytes"),
			MaxBodySize:       v.GetInt64("http.max_body_size"),
			RateLimitEnabled:  v.GetBool("http.rate_limit_enabled"),
			RateLimitRequests: v.GetInt("http.rate_limit_requests"),
			RateLimitWindow:   v.GetDuration("http.rate_limit_window"),
			CORSAllowOrigins:  v.GetStringSlice("http.cors_allow_origins"),
			CORSAllowMethods:  v.GetStringSlice("http.cors_allow_methods"),
			CORSAllowHeaders:  v.GetStringSlice("http.cors_allow_headers"),
			TrustedProxies:    v.GetStringSlice("http.trusted_proxies"),
		},
		Suppliers: SuppliersConfig{
			Syscom: SyscomConfig{
				SupplierAPIConfig: SupplierAPIConfig{
					Enabled:     v.GetBool("suppliers.syscom.enabled"),
					BaseURL:     v.GetString("suppliers.syscom.base_url"),
					MaxRequests: v.GetInt("suppliers.syscom.max_requests"),
					Window:      v.GetDuration("suppliers.syscom.window"),
					MinDelay:    v.GetDuration("suppliers.syscom.min_delay"),
					Timeout:     v.GetDuration("suppliers.syscom.timeout"),
				},
				TokenURL:     v.GetString("suppliers.syscom.token_url"),
				ClientID:     v.GetString("suppliers.syscom.client_id"),
				ClientSecret: v.GetString("suppliers.syscom.client_secret"),
			},
			Tecnosinergia: TecnosinergiaConfig{
				SupplierAPIConfig: SupplierAPIConfig{
					Enabled:     v.GetBool("suppliers.tecnosinergia.enabled"),
					BaseURL:     v.GetString("suppliers.tecnosinergia.base_url"),
					MaxRequests: v.GetInt("suppliers.tecnosinergia.max_requests"),
					Window:      v.GetDuration("suppliers.tecnosinergia.window"),
					MinDelay:    v.GetDuration("suppliers.tecnosinergia.min_delay"),
					Timeout:     v.GetDuration("suppliers.tecnosinergia.timeout"),
				},
				APIToken: v.GetString("suppliers.tecnosinergia.api_token"),
				PageSize: v.GetInt("suppliers.tecnosinergia.page_size"),
			},
		},
		Sync: SyncConfig{
			RunTimeout:          v.GetDuration("sync.run_timeout"),
			CategoryDelay:       v.GetDuration("sync.category_delay"),
			BatchSize:           v.GetInt("sync.batch_size"),
			BatchPause:          v.GetDuration("sync.batch_pause"),
			MaxPagesPerCategory: v.GetInt("sync.max_pages_per_category"),
			SchedulerEnabled:    v.GetBool("sync.scheduler_enabled"),
			SchedulerInterval:   v.GetDuration("sync.scheduler_interval"),
			SchedulerRunOnStart: v.GetBool("sync.scheduler_run_on_start"),
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
		cfg.App.Name = "mayoristas-backend"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Port == "" {
		cfg.App.Port = "8080"
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
		cfg.Database.DBName = "mayoristas"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
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
	if cfg.Redis.Host == "" {
		cfg.Redis.Host = "localhost"
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
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
		cfg.HTTP.MaxBodySize = 10 << 20 // 10MB
	}
	if cfg.HTTP.RateLimitRequests == 0 {
		cfg.HTTP.RateLimitRequests = 100
	}
	if cfg.HTTP.RateLimitWindow == 0 {
		cfg.HTTP.RateLimitWindow = time.Minute
	}
	// CORS origins have no "*" fallback; cross-origin access stays off
	// until configured.
	if len(cfg.HTTP.CORSAllowMethods) == 0 {
		cfg.HTTP.CORSAllowMethods = []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"}
	}
	if len(cfg.HTTP.CORSAllowHeaders) == 0 {
		cfg.HTTP.CORSAllowHeaders = []string{"Content-Type", "Authorization", "X-Request-ID"}
	}

	applySupplierDefaults(&cfg.Suppliers.Syscom.SupplierAPIConfig)
	applySupplierDefaults(&cfg.Suppliers.Tecnosinergia.SupplierAPIConfig)
	if cfg.Suppliers.Tecnosinergia.PageSize == 0 {
		cfg.Suppliers.Tecnosinergia.PageSize = 100
	}

	if cfg.Sync.RunTimeout == 0 {
		cfg.Sync.RunTimeout = 10 * time.Minute
	}
	if cfg.Sync.CategoryDelay == 0 {
		cfg.Sync.CategoryDelay = 2 * time.Second
	}
	if cfg.Sync.BatchSize == 0 {
		cfg.Sync.BatchSize = 100
	}
	if cfg.Sync.BatchPause == 0 {
		cfg.Sync.BatchPause = 100 * time.Millisecond
	}
	if cfg.Sync.MaxPagesPerCategory == 0 {
		cfg.Sync.MaxPagesPerCategory = 50
	}
	if cfg.Sync.SchedulerInterval == 0 {
		cfg.Sync.SchedulerInterval = 6 * time.Hour
	}
}

// applySupplierDefaults fills the shared rate limit settings
func applySupplierDefaults(c *SupplierAPIConfig) {
	if c.MaxRequests == 0 {
		c.MaxRequests = 48
	}
	if c.Window == 0 {
		c.Window = time.Minute
	}
	if c.MinDelay == 0 {
		c.MinDelay = 1250 * time.Millisecond
	}
	if c.Timeout == 0 {
		c.Timeout = 30 * time.Second
	}
}

// validate performs validation on the configuration
func (c *Config) validate() error {
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

	if c.App.Env == "production" {
		if c.Database.Password == "" {
			return fmt.Errorf("database.password is required in production")
		}
		if c.Database.SSLMode == "disable" {
			return fmt.Errorf("database.sslmode cannot be 'disable' in production")
		}
		for _, origin := range c.HTTP.CORSAllowOrigins {
			if origin == "*" {
				return fmt.Errorf("cors_allow_origins cannot be '*' in production (use specific origins)")
			}
		}
		if c.Suppliers.Syscom.Enabled && (c.Suppliers.Syscom.ClientID == "" || c.Suppliers.Syscom.ClientSecret == "") {
			return fmt.Errorf("suppliers.syscom credentials are required when the supplier is enabled in production")
		}
		if c.Suppliers.Tecnosinergia.Enabled && c.Suppliers.Tecnosinergia.APIToken == "" {
			return fmt.Errorf("suppliers.tecnosinergia.api_token is required when the supplier is enabled in production")
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
