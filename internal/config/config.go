package config

import (
	"time"

	"github.com/spf13/viper"
)

// Config is the fully resolved configuration for a taskqueue server
// process, covering the in-process scheduler, its HTTP/WebSocket
// control surface, and the optional Redis status mirror.
type Config struct {
	Server   ServerConfig
	Queue    QueueConfig
	Events   EventsConfig
	Metrics  MetricsConfig
	Auth     AuthConfig
	LogLevel string
}

type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	RateLimitRPS int
}

// QueueConfig configures the in-process scheduler itself. It has no
// persistence or cluster knobs: the scheduler is a single process's
// worker pool, not a distributed job system.
type QueueConfig struct {
	Name              string
	Threads           int
	AdminTickInterval time.Duration
}

// EventsConfig configures the optional Redis Pub/Sub mirror that lets
// other processes observe status changes. It is never read from: the
// scheduler's own status table is always authoritative.
type EventsConfig struct {
	Enabled   bool
	RedisAddr string
	Password  string
	DB        int
	Channel   string
}

type MetricsConfig struct {
	Enabled bool
	Path    string
}

type AuthConfig struct {
	Enabled   bool
	JWTSecret string
}

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("/etc/taskqueue")

	setDefaults()

	viper.SetEnvPrefix("TASKQUEUE")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults() {
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.readtimeout", 30*time.Second)
	viper.SetDefault("server.writetimeout", 30*time.Second)
	viper.SetDefault("server.idletimeout", 120*time.Second)
	viper.SetDefault("server.ratelimitrps", 0)

	viper.SetDefault("queue.name", "default")
	viper.SetDefault("queue.threads", 4)
	viper.SetDefault("queue.admintickinterval", 1*time.Second)

	viper.SetDefault("events.enabled", false)
	viper.SetDefault("events.redisaddr", "localhost:6379")
	viper.SetDefault("events.password", "")
	viper.SetDefault("events.db", 0)
	viper.SetDefault("events.channel", "taskqueue.status")

	viper.SetDefault("metrics.enabled", true)
	viper.SetDefault("metrics.path", "/metrics")

	viper.SetDefault("auth.enabled", false)
	viper.SetDefault("auth.jwtsecret", "")

	viper.SetDefault("loglevel", "info")
}
