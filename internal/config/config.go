package config

import (
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	HTTPAddress              string
	DatabaseURL              string
	HistoryLimit             int
	RateLimitPerMinute       int
	DebugLogging             bool
	DBMaxOpenConns           int
	DBMaxIdleConns           int
	DBConnMaxLifetimeSeconds int
	DBConnMaxIdleTimeSeconds int
}

func Default() Config {
	return Config{
		HTTPAddress:              ":8080",
		HistoryLimit:             50,
		RateLimitPerMinute:       120,
		DBMaxOpenConns:           10,
		DBMaxIdleConns:           10,
		DBConnMaxLifetimeSeconds: 300,
		DBConnMaxIdleTimeSeconds: 60,
	}
}

// Load resolves configuration from an optional config.yaml and the
// environment. Environment variables win; keys map to names like
// HTTP_ADDRESS and DATABASE_URL.
func Load() Config {
	def := Default()

	v := viper.New()
	v.SetDefault("http_address", def.HTTPAddress)
	v.SetDefault("database_url", "")
	v.SetDefault("history_limit", def.HistoryLimit)
	v.SetDefault("rate_limit_per_minute", def.RateLimitPerMinute)
	v.SetDefault("debug_logging", false)
	v.SetDefault("db_max_open_conns", def.DBMaxOpenConns)
	v.SetDefault("db_max_idle_conns", def.DBMaxIdleConns)
	v.SetDefault("db_conn_max_lifetime_seconds", def.DBConnMaxLifetimeSeconds)
	v.SetDefault("db_conn_max_idle_seconds", def.DBConnMaxIdleTimeSeconds)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.ReadInConfig()

	cfg := Config{
		HTTPAddress:              v.GetString("http_address"),
		DatabaseURL:              v.GetString("database_url"),
		HistoryLimit:             v.GetInt("history_limit"),
		RateLimitPerMinute:       v.GetInt("rate_limit_per_minute"),
		DebugLogging:             v.GetBool("debug_logging"),
		DBMaxOpenConns:           v.GetInt("db_max_open_conns"),
		DBMaxIdleConns:           v.GetInt("db_max_idle_conns"),
		DBConnMaxLifetimeSeconds: v.GetInt("db_conn_max_lifetime_seconds"),
		DBConnMaxIdleTimeSeconds: v.GetInt("db_conn_max_idle_seconds"),
	}
	if cfg.HistoryLimit <= 0 {
		cfg.HistoryLimit = def.HistoryLimit
	}
	if cfg.RateLimitPerMinute <= 0 {
		cfg.RateLimitPerMinute = def.RateLimitPerMinute
	}
	return cfg
}
