package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/chatdir/chatdir/internal/log"
)

type Config struct {
	Server  ServerConfig
	Mongo   MongoConfig
	Redis   RedisConfig
	Cache   CacheConfig
	Janitor JanitorConfig
	Log     log.Config
}

type ServerConfig struct {
	Host string
	Port int
}

type MongoConfig struct {
	URI      string `mapstructure:"uri"`
	Database string `mapstructure:"database"`
	Timeout  int    `mapstructure:"timeout"` // seconds, per store call
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type CacheConfig struct {
	Prefix string        `mapstructure:"prefix"`
	TTL    time.Duration `mapstructure:"ttl"`
}

type JanitorConfig struct {
	Enabled       bool          `mapstructure:"enabled"`
	PurgeInterval time.Duration `mapstructure:"purge_interval"`
	ProbeInterval time.Duration `mapstructure:"probe_interval"`
}

// Load reads configuration from ./config/config.yaml and environment
// variables, with sane defaults for local development.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Set defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("mongo.uri", "mongodb://localhost:27017")
	v.SetDefault("mongo.database", "chatdir")
	v.SetDefault("mongo.timeout", 10)
	v.SetDefault("redis.address", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("cache.prefix", "chatdir")
	v.SetDefault("cache.ttl", "30s")
	v.SetDefault("janitor.enabled", true)
	v.SetDefault("janitor.purge_interval", "24h")
	v.SetDefault("janitor.probe_interval", "1m")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)
	v.SetDefault("log.service_name", "chatdir")

	// Bind environment variables
	v.BindEnv("server.port", "PORT")
	v.BindEnv("mongo.uri", "MONGO_URI")
	v.BindEnv("mongo.database", "MONGO_DATABASE")
	v.BindEnv("mongo.timeout", "MONGO_TIMEOUT")
	v.BindEnv("redis.address", "REDIS_ADDRESS")
	v.BindEnv("redis.password", "REDIS_PASSWORD")
	v.BindEnv("redis.db", "REDIS_DB")
	v.BindEnv("janitor.enabled", "JANITOR_ENABLED")
	v.BindEnv("janitor.purge_interval", "JANITOR_PURGE_INTERVAL")
	v.BindEnv("janitor.probe_interval", "JANITOR_PROBE_INTERVAL")
	v.BindEnv("log.level", "LOG_LEVEL")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		// Config file not found, rely on defaults and env vars.
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
