package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Log       LogConfig       `mapstructure:"log"`
	Database  DatabaseConfig  `mapstructure:"database"`
	NATS      NATSConfig      `mapstructure:"nats"`
	Valkey    ValkeyConfig    `mapstructure:"valkey"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
	Temporal  TemporalConfig  `mapstructure:"temporal"`
	Engine    EngineConfig    `mapstructure:"engine"`
	SeaGraph  SeaGraphConfig  `mapstructure:"seagraph"`
	Regions   RegionsConfig   `mapstructure:"regions"`
	Render    RenderConfig    `mapstructure:"render"`
}

type ServerConfig struct {
	Port         int `mapstructure:"port"`
	ReadTimeout  int `mapstructure:"read_timeout"`
	WriteTimeout int `mapstructure:"write_timeout"`
	RunTimeout   int `mapstructure:"run_timeout"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type DatabaseConfig struct {
	Driver     string `mapstructure:"driver"`
	Host       string `mapstructure:"host"`
	Port       int    `mapstructure:"port"`
	User       string `mapstructure:"user"`
	Password   string `mapstructure:"password"`
	DBName     string `mapstructure:"dbname"`
	SSLMode    string `mapstructure:"sslmode"`
	SQLitePath string `mapstructure:"sqlite_path"`
}

// DSN returns the pgx connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

// MigrateURL returns the golang-migrate database URL for the postgres driver.
func (d DatabaseConfig) MigrateURL() string {
	return "pgx5" + strings.TrimPrefix(d.DSN(), "postgres")
}

type NATSConfig struct {
	URL     string `mapstructure:"url"`
	Enabled bool   `mapstructure:"enabled"`
}

type ValkeyConfig struct {
	Addr    string `mapstructure:"addr"`
	Enabled bool   `mapstructure:"enabled"`
}

type TelemetryConfig struct {
	ServiceName string `mapstructure:"service_name"`
	TempoAddr   string `mapstructure:"tempo_addr"`
	Enabled     bool   `mapstructure:"enabled"`
}

type TemporalConfig struct {
	HostPort  string `mapstructure:"host_port"`
	Namespace string `mapstructure:"namespace"`
	TaskQueue string `mapstructure:"task_queue"`
}

type EngineConfig struct {
	Workers        int     `mapstructure:"workers"`
	SampleCount    int     `mapstructure:"sample_count"`
	Smoothing      float64 `mapstructure:"smoothing"`
	DefaultWidthKm float64 `mapstructure:"default_width_km"`
	RouteCacheTTL  int     `mapstructure:"route_cache_ttl"`
	HistorySize    int     `mapstructure:"history_size"`
}

type SeaGraphConfig struct {
	NetworkPath    string  `mapstructure:"network_path"`
	DensifyStepDeg float64 `mapstructure:"densify_step_deg"`
}

type RegionsConfig struct {
	OceanPath string `mapstructure:"ocean_path"`
}

type RenderConfig struct {
	PhotoDir       string `mapstructure:"photo_dir"`
	PopupCacheSize int    `mapstructure:"popup_cache_size"`
	OutputDir      string `mapstructure:"output_dir"`
}

// Load reads configuration from file and environment variables.
func Load(service string) (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 10)
	v.SetDefault("server.write_timeout", 60)
	v.SetDefault("server.run_timeout", 120)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "corridor")
	v.SetDefault("database.password", "")
	v.SetDefault("database.dbname", "seacorridor")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.sqlite_path", "seacorridor.db")
	v.SetDefault("nats.url", "nats://localhost:4222")
	v.SetDefault("nats.enabled", true)
	v.SetDefault("valkey.addr", "localhost:6379")
	v.SetDefault("valkey.enabled", true)
	v.SetDefault("telemetry.service_name", service)
	v.SetDefault("telemetry.tempo_addr", "tempo:4317")
	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("temporal.host_port", "localhost:7233")
	v.SetDefault("temporal.namespace", "default")
	v.SetDefault("temporal.task_queue", "corridor-runs")
	v.SetDefault("engine.workers", 4)
	v.SetDefault("engine.sample_count", 100)
	v.SetDefault("engine.smoothing", 0.1)
	v.SetDefault("engine.default_width_km", 1000)
	v.SetDefault("engine.route_cache_ttl", 3600)
	v.SetDefault("engine.history_size", 16)
	v.SetDefault("seagraph.network_path", "data/marnet.geojson")
	v.SetDefault("seagraph.densify_step_deg", 0)
	v.SetDefault("regions.ocean_path", "data/ocean.geojson")
	v.SetDefault("render.photo_dir", "data/photos")
	v.SetDefault("render.popup_cache_size", 32)
	v.SetDefault("render.output_dir", ".")

	// Config file (optional)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	_ = v.ReadInConfig() // OK if missing

	// Environment variables: SEACORRIDOR_DATABASE_HOST → database.host
	v.SetEnvPrefix("SEACORRIDOR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks that required configuration fields are present and sane.
func (c *Config) Validate() error {
	var errs []string

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server.port must be 1-65535, got %d", c.Server.Port))
	}
	if c.Server.ReadTimeout <= 0 {
		errs = append(errs, "server.read_timeout must be positive")
	}
	if c.Server.WriteTimeout <= 0 {
		errs = append(errs, "server.write_timeout must be positive")
	}

	switch c.Database.Driver {
	case "postgres":
		if c.Database.Host == "" {
			errs = append(errs, "database.host is required")
		}
		if c.Database.Port <= 0 || c.Database.Port > 65535 {
			errs = append(errs, fmt.Sprintf("database.port must be 1-65535, got %d", c.Database.Port))
		}
		if c.Database.User == "" {
			errs = append(errs, "database.user is required")
		}
		if c.Database.DBName == "" {
			errs = append(errs, "database.dbname is required")
		}
	case "sqlite":
		if c.Database.SQLitePath == "" {
			errs = append(errs, "database.sqlite_path is required")
		}
	default:
		errs = append(errs, fmt.Sprintf("database.driver must be postgres or sqlite, got %q", c.Database.Driver))
	}

	if c.NATS.Enabled && c.NATS.URL == "" {
		errs = append(errs, "nats.url is required")
	}
	if c.Valkey.Enabled && c.Valkey.Addr == "" {
		errs = append(errs, "valkey.addr is required")
	}
	if c.Engine.Workers <= 0 {
		errs = append(errs, "engine.workers must be positive")
	}
	if c.Engine.SampleCount < 4 {
		errs = append(errs, fmt.Sprintf("engine.sample_count must be at least 4, got %d", c.Engine.SampleCount))
	}
	if c.Engine.Smoothing <= 0 {
		errs = append(errs, "engine.smoothing must be positive")
	}
	if c.Engine.DefaultWidthKm <= 0 {
		errs = append(errs, "engine.default_width_km must be positive")
	}
	if c.SeaGraph.NetworkPath == "" {
		errs = append(errs, "seagraph.network_path is required")
	}
	if c.Render.PopupCacheSize <= 0 {
		errs = append(errs, "render.popup_cache_size must be positive")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
