package config

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Environment names the auth bypass recognizes.
const EnvDevelopment = "development"

// Config holds the full application configuration.
type Config struct {
	Ingest    IngestConfig    `yaml:"ingest" mapstructure:"ingest"`
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	Providers ProvidersConfig `yaml:"providers" mapstructure:"providers"`
	Bounds    BoundsConfig    `yaml:"bounds" mapstructure:"bounds"`
	Dedupe    DedupeConfig    `yaml:"dedupe" mapstructure:"dedupe"`
	Fetch     FetchConfig     `yaml:"fetch" mapstructure:"fetch"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// IngestConfig holds the trigger secret and the deployment environment.
type IngestConfig struct {
	Secret string `yaml:"secret" mapstructure:"secret"`
	Env    string `yaml:"env" mapstructure:"env"`
}

// AllowsAnonymous reports whether triggers may run without a bearer token:
// only in development with no secret configured.
func (c IngestConfig) AllowsAnonymous() bool {
	return c.Secret == "" && c.Env == EnvDevelopment
}

// StoreConfig configures the external place store.
type StoreConfig struct {
	Driver     string `yaml:"driver" mapstructure:"driver"`
	URL        string `yaml:"url" mapstructure:"url"`
	ServiceKey string `yaml:"service_key" mapstructure:"service_key"`
	MaxConns   int32  `yaml:"max_conns" mapstructure:"max_conns"`
}

// ProvidersConfig overrides the upstream endpoints. Empty values keep the
// adapters' defaults.
type ProvidersConfig struct {
	ArcGISURL        string `yaml:"arcgis_url" mapstructure:"arcgis_url"`
	OverpassURL      string `yaml:"overpass_url" mapstructure:"overpass_url"`
	OverpassQuery    string `yaml:"overpass_query" mapstructure:"overpass_query"`
	FreedgeURL       string `yaml:"freedge_url" mapstructure:"freedge_url"`
	FreedgeUserAgent string `yaml:"freedge_user_agent" mapstructure:"freedge_user_agent"`
}

// BoundsConfig is the bounding box the third-party locator is filtered to.
type BoundsConfig struct {
	MinLat float64 `yaml:"min_lat" mapstructure:"min_lat"`
	MaxLat float64 `yaml:"max_lat" mapstructure:"max_lat"`
	MinLng float64 `yaml:"min_lng" mapstructure:"min_lng"`
	MaxLng float64 `yaml:"max_lng" mapstructure:"max_lng"`
}

// DedupeConfig holds the proximity thresholds in meters.
type DedupeConfig struct {
	FridgeThresholdM  float64 `yaml:"fridge_threshold_m" mapstructure:"fridge_threshold_m"`
	DefaultThresholdM float64 `yaml:"default_threshold_m" mapstructure:"default_threshold_m"`
	MismatchM         float64 `yaml:"mismatch_m" mapstructure:"mismatch_m"`
}

// FetchConfig configures the upstream HTTP client.
type FetchConfig struct {
	TimeoutSecs int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	UserAgent   string `yaml:"user_agent" mapstructure:"user_agent"`
}

// ServerConfig configures the trigger server.
type ServerConfig struct {
	Port        int      `yaml:"port" mapstructure:"port"`
	CORSOrigins []string `yaml:"cors_origins" mapstructure:"cors_origins"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// bareEnv maps keys to the unprefixed variable names deployments already set.
var bareEnv = map[string]string{
	"ingest.secret":     "INGEST_SECRET",
	"ingest.env":        "NODE_ENV",
	"store.url":         "EXTERNAL_STORE_URL",
	"store.service_key": "EXTERNAL_STORE_SERVICE_KEY",
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("FRIDGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, env := range bareEnv {
		if err := v.BindEnv(key, "FRIDGE_"+strings.ToUpper(strings.ReplaceAll(key, ".", "_")), env); err != nil {
			return nil, eris.Wrapf(err, "config: bind env %s", env)
		}
	}

	// Defaults
	v.SetDefault("ingest.secret", "")
	v.SetDefault("ingest.env", "production")
	v.SetDefault("store.driver", "postgres")
	v.SetDefault("store.url", "")
	v.SetDefault("store.service_key", "")
	v.SetDefault("store.max_conns", 10)
	v.SetDefault("providers.arcgis_url", "")
	v.SetDefault("providers.overpass_url", "")
	v.SetDefault("providers.overpass_query", "")
	v.SetDefault("providers.freedge_url", "")
	v.SetDefault("providers.freedge_user_agent", "")
	v.SetDefault("bounds.min_lat", 33.7)
	v.SetDefault("bounds.max_lat", 34.3)
	v.SetDefault("bounds.min_lng", -118.7)
	v.SetDefault("bounds.max_lng", -118.1)
	v.SetDefault("dedupe.fridge_threshold_m", 75)
	v.SetDefault("dedupe.default_threshold_m", 125)
	v.SetDefault("dedupe.mismatch_m", 150)
	v.SetDefault("fetch.timeout_secs", 60)
	v.SetDefault("fetch.user_agent", "fridge-ingest/1.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks the settings a command mode needs. Modes are "serve",
// "ingest", "reconcile" and "migrate". A missing store is not an error
// here except for migrate: runs report it as a configuration failure.
func (c *Config) Validate(mode string) error {
	var problems []string

	switch mode {
	case "serve":
		if c.Server.Port <= 0 {
			problems = append(problems, "server.port must be > 0")
		}
	case "ingest", "reconcile":
	case "migrate":
		if c.Store.URL == "" {
			problems = append(problems, "store.url is required")
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	switch c.Store.Driver {
	case "", "postgres", "sqlite":
	default:
		problems = append(problems, fmt.Sprintf("store.driver must be postgres or sqlite, got %q", c.Store.Driver))
	}
	if c.Dedupe.FridgeThresholdM <= 0 || c.Dedupe.DefaultThresholdM <= 0 || c.Dedupe.MismatchM <= 0 {
		problems = append(problems, "dedupe thresholds must be > 0")
	}
	if c.Bounds.MinLat >= c.Bounds.MaxLat || c.Bounds.MinLng >= c.Bounds.MaxLng {
		problems = append(problems, "bounds min must be below max")
	}
	if c.Fetch.TimeoutSecs < 0 {
		problems = append(problems, "fetch.timeout_secs must be >= 0")
	}

	if len(problems) > 0 {
		return eris.Errorf("config: invalid for %s: %s", mode, strings.Join(problems, "; "))
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
