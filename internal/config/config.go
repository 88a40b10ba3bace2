package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Environment string `toml:"environment"`
	Host        string `toml:"host"`
	Port        int    `toml:"port"`

	// logging
	LogLevel      string `toml:"log_level"`
	LogsPath      string `toml:"logs_path"`
	LogToStdout   bool   `toml:"log_to_stdout"`
	LogFormatJSON bool   `toml:"log_format_json"`
	LogMaxSizeMB  int    `toml:"log_max_size_mb"`
	LogMaxAgeDays int    `toml:"log_max_age_days"`
	SentryEnabled bool   `toml:"sentry_enabled"`

	// metrics
	PrometheusMetricsHost string `toml:"prometheus_metrics_host"`
	PrometheusMetricsPort string `toml:"prometheus_metrics_port"`

	// storage
	PostgresHost   string `toml:"postgres_host"`
	PostgresPort   string `toml:"postgres_port"`
	PostgresDBName string `toml:"postgres_db_name"`
	RedisHost      string `toml:"redis_host"`
	RedisPort      string `toml:"redis_port"`

	// events
	KafkaBrokers       []string `toml:"kafka_brokers"`
	KafkaWorkoutsTopic string   `toml:"kafka_workouts_topic"`

	// stats
	// unset means +9 (JST); 0 is UTC
	StatsTimezoneOffsetHours *int   `toml:"stats_timezone_offset_hours"`
	WarmupKeyword            string `toml:"warmup_keyword"`
	CooldownKeyword          string `toml:"cooldown_keyword"`
	DashboardTrendWeeks      int    `toml:"dashboard_trend_weeks"`

	// auth & sharing
	LoginRateLimitAllowedPerMin int      `toml:"login_rate_limit_per_min"`
	ShareAccessRateLimitPerMin  int      `toml:"share_access_rate_limit_per_min"`
	ShareViewerTokenTTL         Duration `toml:"share_viewer_token_ttl"`
	SessionTTL                  Duration `toml:"session_ttl"`
	AllowedOrigins              []string `toml:"allowed_origins"`
}

// Duration reads TOML strings such as "1h30m".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// TimezoneOffsetHours is the fixed UTC offset weeks are computed in.
func (c *Config) TimezoneOffsetHours() int {
	if c.StatsTimezoneOffsetHours == nil {
		return 9
	}
	return *c.StatsTimezoneOffsetHours
}

type Toml struct {
	Development *Config
	Production  *Config
}

func (t *Toml) Get(env string) (*Config, error) {
	switch strings.ToLower(env) {
	case "dev", "development":
		return t.Development, nil
	case "prod", "production":
		return t.Production, nil
	default:
		return nil, fmt.Errorf("unknown env: %s", env)
	}
}

// Load reads the TOML file at path and returns the config of the given env,
// with defaults applied.
func Load(env, path string) (*Config, error) {
	var t Toml
	if _, err := toml.DecodeFile(path, &t); err != nil {
		return nil, fmt.Errorf("decode config file %s: %w", path, err)
	}

	cfg, err := t.Get(env)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		return nil, fmt.Errorf("config for env [%s] missing in %s", env, path)
	}

	cfg.applyDefaults(env)
	return cfg, nil
}

func (c *Config) applyDefaults(env string) {
	if c.Environment == "" {
		c.Environment = strings.ToLower(env)
	}
	if c.Host == "" {
		c.Host = "localhost"
	}
	if c.Port == 0 {
		c.Port = 8080
	}
	if c.PrometheusMetricsPort == "" {
		c.PrometheusMetricsPort = "2112"
	}
	if c.StatsTimezoneOffsetHours == nil {
		offset := 9
		c.StatsTimezoneOffsetHours = &offset
	}
	if c.DashboardTrendWeeks <= 0 {
		c.DashboardTrendWeeks = 8
	}
	if c.KafkaWorkoutsTopic == "" {
		c.KafkaWorkoutsTopic = "tralog.workouts"
	}
	if c.LoginRateLimitAllowedPerMin <= 0 {
		c.LoginRateLimitAllowedPerMin = 5
	}
	if c.ShareAccessRateLimitPerMin <= 0 {
		c.ShareAccessRateLimitPerMin = 10
	}
	if c.ShareViewerTokenTTL.Duration <= 0 {
		c.ShareViewerTokenTTL.Duration = 24 * time.Hour
	}
	if c.SessionTTL.Duration <= 0 {
		c.SessionTTL.Duration = 7 * 24 * time.Hour
	}
}
