package config

import (
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the service settings. Everything is env-driven; a .env file in
// the working directory is loaded first so local runs need no exported vars.
type Config struct {
	Addr           string        `mapstructure:"addr"`
	DBPath         string        `mapstructure:"db_path"`
	GinMode        string        `mapstructure:"gin_mode"`
	SessionTTL     time.Duration `mapstructure:"session_ttl"`
	SecureCookie   bool          `mapstructure:"secure_cookie"`
	TrustedProxies []string      `mapstructure:"trusted_proxies"`
	LogLevel       string        `mapstructure:"log_level"`
}

// Load reads configuration from the environment, applying defaults that make
// the binary runnable with no configuration at all.
func Load() (*Config, error) {
	_ = godotenv.Load() // .env is optional

	v := viper.New()
	v.SetEnvPrefix("playlog")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("addr", ":8080")
	v.SetDefault("db_path", "playlog.db")
	v.SetDefault("gin_mode", "release")
	v.SetDefault("session_ttl", 30*24*time.Hour)
	v.SetDefault("secure_cookie", false)
	v.SetDefault("trusted_proxies", "127.0.0.1,::1")
	v.SetDefault("log_level", "info")

	cfg := &Config{
		Addr:         v.GetString("addr"),
		DBPath:       v.GetString("db_path"),
		GinMode:      v.GetString("gin_mode"),
		SessionTTL:   v.GetDuration("session_ttl"),
		SecureCookie: v.GetBool("secure_cookie"),
		LogLevel:     v.GetString("log_level"),
	}
	for _, p := range strings.Split(v.GetString("trusted_proxies"), ",") {
		if p = strings.TrimSpace(p); p != "" {
			cfg.TrustedProxies = append(cfg.TrustedProxies, p)
		}
	}
	return cfg, nil
}
