package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Tiles     TilesConfig     `mapstructure:"tiles"`
	Geocoder  GeocoderConfig  `mapstructure:"geocoder"`
	NATS      NATSConfig      `mapstructure:"nats"`
	Valkey    ValkeyConfig    `mapstructure:"valkey"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

type ServerConfig struct {
	Port         int `mapstructure:"port"`
	ReadTimeout  int `mapstructure:"read_timeout"`
	WriteTimeout int `mapstructure:"write_timeout"`
}

// TilesConfig configures the elevation tile service client and caches.
type TilesConfig struct {
	// URLTemplate must contain {z}, {x}, and {y} placeholders.
	URLTemplate string `mapstructure:"url_template"`
	Zoom        int    `mapstructure:"zoom"`
	// IntervalM is the default sampling interval along a route, in meters.
	IntervalM      float64 `mapstructure:"interval_m"`
	RPS            int     `mapstructure:"rps"`
	TimeoutSeconds int     `mapstructure:"timeout_seconds"`
	// CacheCapacity bounds the in-process decoded tile cache.
	CacheCapacity int `mapstructure:"cache_capacity"`
	// ByteCacheTTL is the Valkey raw-tile TTL in seconds; 0 disables expiry.
	ByteCacheTTL int `mapstructure:"byte_cache_ttl"`
}

type GeocoderConfig struct {
	BaseURL   string `mapstructure:"base_url"`
	UserAgent string `mapstructure:"user_agent"`
	Enabled   bool   `mapstructure:"enabled"`
}

type NATSConfig struct {
	URL string `mapstructure:"url"`
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

// Load reads configuration from file and environment variables.
func Load(service string) (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 10)
	v.SetDefault("server.write_timeout", 120)
	v.SetDefault("tiles.url_template", "https://api.mapbox.com/v4/mapbox.terrain-rgb/{z}/{x}/{y}.pngraw")
	v.SetDefault("tiles.zoom", 14)
	v.SetDefault("tiles.interval_m", 30)
	v.SetDefault("tiles.rps", 10)
	v.SetDefault("tiles.timeout_seconds", 10)
	v.SetDefault("tiles.cache_capacity", 512)
	v.SetDefault("tiles.byte_cache_ttl", 86400)
	v.SetDefault("geocoder.base_url", "https://nominatim.openstreetmap.org")
	v.SetDefault("geocoder.user_agent", "gridpath/1.0")
	v.SetDefault("geocoder.enabled", true)
	v.SetDefault("nats.url", "nats://localhost:4222")
	v.SetDefault("valkey.addr", "localhost:6379")
	v.SetDefault("valkey.enabled", true)
	v.SetDefault("telemetry.service_name", service)
	v.SetDefault("telemetry.tempo_addr", "tempo:4317")
	v.SetDefault("telemetry.enabled", true)

	// Config file (optional)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	_ = v.ReadInConfig() // OK if missing

	// Environment variables: GRIDPATH_TILES_URL_TEMPLATE → tiles.url_template
	v.SetEnvPrefix("GRIDPATH")
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
	if c.Tiles.URLTemplate == "" {
		errs = append(errs, "tiles.url_template is required")
	} else {
		for _, ph := range []string{"{z}", "{x}", "{y}"} {
			if !strings.Contains(c.Tiles.URLTemplate, ph) {
				errs = append(errs, fmt.Sprintf("tiles.url_template missing %s placeholder", ph))
			}
		}
	}
	if c.Tiles.Zoom < 0 || c.Tiles.Zoom > 22 {
		errs = append(errs, fmt.Sprintf("tiles.zoom must be 0-22, got %d", c.Tiles.Zoom))
	}
	if c.Tiles.IntervalM <= 0 {
		errs = append(errs, "tiles.interval_m must be positive")
	}
	if c.Tiles.CacheCapacity <= 0 {
		errs = append(errs, "tiles.cache_capacity must be positive")
	}
	if c.NATS.URL == "" {
		errs = append(errs, "nats.url is required")
	}
	if c.Valkey.Enabled && c.Valkey.Addr == "" {
		errs = append(errs, "valkey.addr is required when valkey is enabled")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
