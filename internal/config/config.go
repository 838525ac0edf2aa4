package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the full server/worker configuration, loaded from a TOML
// file with LAB400_-prefixed environment overrides.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Worker    WorkerConfig    `mapstructure:"worker"`
	Fixer     FixerConfig     `mapstructure:"fixer"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
}

type ServerConfig struct {
	Addr           string        `mapstructure:"addr"`
	SessionTimeout time.Duration `mapstructure:"session_timeout"`
	SignonPerMin   int           `mapstructure:"signon_per_min"`
	SignonBurst    int           `mapstructure:"signon_burst"`
}

type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

type RedisConfig struct {
	Addr string `mapstructure:"addr"`
}

type WorkerConfig struct {
	Concurrency int `mapstructure:"concurrency"`
}

type FixerConfig struct {
	Enabled        bool          `mapstructure:"enabled"`
	RunbookDir     string        `mapstructure:"runbook_dir"`
	Model          string        `mapstructure:"model"`
	AnthropicKey   string        `mapstructure:"anthropic_key"`
	TelegramToken  string        `mapstructure:"telegram_token"`
	TelegramChatID int64         `mapstructure:"telegram_chat_id"`
	ThrottleWindow time.Duration `mapstructure:"throttle_window"`
}

type SchedulerConfig struct {
	NTPServer string `mapstructure:"ntp_server"`
}

// Load reads configuration. An explicit path must exist; otherwise the
// file is optional and defaults plus environment apply.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("toml")
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("lab400")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/lab400")
		v.AddConfigPath("/etc/lab400")
	}

	v.SetDefault("server.addr", ":8400")
	v.SetDefault("server.session_timeout", "30m")
	v.SetDefault("server.signon_per_min", 10)
	v.SetDefault("server.signon_burst", 5)
	v.SetDefault("database.path", "lab400.db")
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("worker.concurrency", 10)
	v.SetDefault("fixer.enabled", false)
	v.SetDefault("fixer.runbook_dir", "runbooks")
	v.SetDefault("fixer.model", "claude-sonnet-4-20250514")
	v.SetDefault("fixer.throttle_window", "1h")
	v.SetDefault("scheduler.ntp_server", "pool.ntp.org")

	v.SetEnvPrefix("LAB400")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || path != "" {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return &cfg, nil
}
