package config

import (
	"fmt"
	"net"
	"net/url"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store      StoreConfig      `yaml:"store" mapstructure:"store"`
	Census     CensusConfig     `yaml:"census" mapstructure:"census"`
	Server     ServerConfig     `yaml:"server" mapstructure:"server"`
	Dashboard  DashboardConfig  `yaml:"dashboard" mapstructure:"dashboard"`
	Monitoring MonitoringConfig `yaml:"monitoring" mapstructure:"monitoring"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend. Postgres connection fields
// fall back to the PG_* environment variables.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	Host        string `yaml:"host" mapstructure:"host"`
	Port        string `yaml:"port" mapstructure:"port"`
	Database    string `yaml:"database" mapstructure:"database"`
	User        string `yaml:"user" mapstructure:"user"`
	Password    string `yaml:"password" mapstructure:"password"`
	SQLitePath  string `yaml:"sqlite_path" mapstructure:"sqlite_path"`
	MaxConns    int32  `yaml:"max_conns" mapstructure:"max_conns"`
}

// CensusConfig configures access to api.census.gov.
type CensusConfig struct {
	APIKey      string          `yaml:"api_key" mapstructure:"api_key"`
	BaseURL     string          `yaml:"base_url" mapstructure:"base_url"`
	TimeoutSecs int             `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	RatePerSec  float64         `yaml:"rate_per_sec" mapstructure:"rate_per_sec"`
	UserAgent   string          `yaml:"user_agent" mapstructure:"user_agent"`
	Vintages    []VintageConfig `yaml:"vintages" mapstructure:"vintages"`
}

// VintageConfig overrides one entry of the year to dataset lookup table.
type VintageConfig struct {
	Year      int               `yaml:"year" mapstructure:"year"`
	Dataset   string            `yaml:"dataset" mapstructure:"dataset"`
	Fields    []string          `yaml:"fields" mapstructure:"fields"`
	DateParam string            `yaml:"date_param" mapstructure:"date_param"`
	DateCode  int               `yaml:"date_code" mapstructure:"date_code"`
	Aliases   map[string]string `yaml:"aliases" mapstructure:"aliases"`
}

// ServerConfig configures the dashboard server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// DashboardConfig configures the year slider and API access.
type DashboardConfig struct {
	MinYear        int      `yaml:"min_year" mapstructure:"min_year"`
	MaxYear        int      `yaml:"max_year" mapstructure:"max_year"`
	DefaultYear    int      `yaml:"default_year" mapstructure:"default_year"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
}

// MonitoringConfig configures load-log alerting.
type MonitoringConfig struct {
	WebhookURL          string `yaml:"webhook_url" mapstructure:"webhook_url"`
	LookbackWindowHours int    `yaml:"lookback_window_hours" mapstructure:"lookback_window_hours"`
	CheckIntervalSecs   int    `yaml:"check_interval_secs" mapstructure:"check_interval_secs"`
	StaleAfterMins      int    `yaml:"stale_after_mins" mapstructure:"stale_after_mins"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("DEMOGRAPHY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// The legacy loader scripts read these names directly.
	legacyEnv := map[string]string{
		"store.host":     "PG_HOST",
		"store.port":     "PG_PORT",
		"store.database": "PG_DATABASE",
		"store.user":     "PG_USER",
		"store.password": "PG_PASSWORD",
		"census.api_key": "CENSUS_API_KEY",
	}
	for key, env := range legacyEnv {
		prefixed := "DEMOGRAPHY_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, prefixed, env); err != nil {
			return nil, eris.Wrapf(err, "config: bind env %s", env)
		}
	}

	// Defaults
	v.SetDefault("store.driver", "postgres")
	v.SetDefault("store.sqlite_path", "demography.db")
	v.SetDefault("store.max_conns", 4)
	v.SetDefault("census.base_url", "https://api.census.gov/data")
	v.SetDefault("census.timeout_secs", 300)
	v.SetDefault("census.rate_per_sec", 5)
	v.SetDefault("census.user_agent", "demography-cli/1.0")
	v.SetDefault("server.port", 8501)
	v.SetDefault("dashboard.min_year", 2010)
	v.SetDefault("dashboard.max_year", 2019)
	v.SetDefault("dashboard.default_year", 2013)
	v.SetDefault("dashboard.allowed_origins", []string{"*"})
	v.SetDefault("monitoring.lookback_window_hours", 24)
	v.SetDefault("monitoring.check_interval_secs", 300)
	v.SetDefault("monitoring.stale_after_mins", 60)
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

// Validate checks the settings a command mode needs before any database
// work starts. Modes: "load", "seed", "migrate", "status", "serve".
func (c *Config) Validate(mode string) error {
	var errs []string

	switch mode {
	case "load", "seed", "migrate", "status", "serve":
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	switch c.Store.Driver {
	case "postgres":
		if _, err := c.Store.DSN(); err != nil {
			errs = append(errs, err.Error())
		}
	case "sqlite":
		if c.Store.SQLitePath == "" {
			errs = append(errs, "store.sqlite_path is required for the sqlite driver")
		}
	default:
		errs = append(errs, fmt.Sprintf("unknown store driver %q (valid: postgres, sqlite)", c.Store.Driver))
	}

	if mode == "load" && c.Census.TimeoutSecs <= 0 {
		errs = append(errs, "census.timeout_secs must be > 0")
	}

	if mode == "serve" {
		if c.Server.Port <= 0 {
			errs = append(errs, "server.port must be > 0")
		}
		d := c.Dashboard
		if d.MinYear > d.MaxYear {
			errs = append(errs, fmt.Sprintf("dashboard.min_year %d is after max_year %d", d.MinYear, d.MaxYear))
		} else if d.DefaultYear < d.MinYear || d.DefaultYear > d.MaxYear {
			errs = append(errs, fmt.Sprintf("dashboard.default_year %d outside [%d, %d]", d.DefaultYear, d.MinYear, d.MaxYear))
		}
	}

	if len(errs) > 0 {
		return eris.Errorf("config: %s", strings.Join(errs, "; "))
	}
	return nil
}

// DSN returns the Postgres connection string. An explicit database_url wins;
// otherwise every PG_* component must be set.
func (s StoreConfig) DSN() (string, error) {
	if s.DatabaseURL != "" {
		return s.DatabaseURL, nil
	}

	var missing []string
	for _, f := range []struct{ env, val string }{
		{"PG_HOST", s.Host},
		{"PG_PORT", s.Port},
		{"PG_DATABASE", s.Database},
		{"PG_USER", s.User},
		{"PG_PASSWORD", s.Password},
	} {
		if f.val == "" {
			missing = append(missing, f.env)
		}
	}
	if len(missing) > 0 {
		return "", eris.Errorf("missing database settings: %s (or set store.database_url)", strings.Join(missing, ", "))
	}

	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(s.User, s.Password),
		Host:   net.JoinHostPort(s.Host, s.Port),
		Path:   "/" + s.Database,
	}
	return u.String(), nil
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
