package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config greenhouse-pro backend configuration, loaded from environment
// variables with development-friendly defaults.
type Config struct {
	HTTP struct {
		Addr string
	}
	Database DatabaseConfig
	Redis    struct {
		Enabled  bool
		Addr     string
		Password string
		DB       int
	}
	Log struct {
		Level  string
		Format string
	}
	Platform PlatformConfig
	MQTT     MQTTConfig
	Notify   NotifyConfig
}

// DatabaseConfig PostgreSQL connection settings.
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
	MaxConns int
	MaxIdle  int
}

// DSN returns the lib/pq connection string.
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode)
}

// PlatformConfig upstream IoT platform (telemetry/attribute/RPC provider).
type PlatformConfig struct {
	BaseURL         string
	Token           string        // bearer token
	RPCTimeout      time.Duration // default two-way RPC timeout
	LivenessTimeout time.Duration // connectivity check timeout
}

// MQTTConfig monitor-event bridge settings (disabled by default; the
// external monitor can also use POST /events).
type MQTTConfig struct {
	Enabled  bool
	Broker   string
	ClientID string
	Username string
	Password string
	Topic    string
}

// NotifyConfig notification retention sweep settings.
type NotifyConfig struct {
	RetentionDays int
	SweepInterval time.Duration
}

func Load() *Config {
	cfg := &Config{}
	cfg.HTTP.Addr = getEnv("HTTP_ADDR", ":8080")

	cfg.Database.Host = getEnv("DB_HOST", "localhost")
	cfg.Database.Port = parseInt(getEnv("DB_PORT", "5432"), 5432)
	cfg.Database.User = getEnv("DB_USER", "postgres")
	cfg.Database.Password = getEnv("DB_PASSWORD", "postgres")
	cfg.Database.Database = getEnv("DB_NAME", "greenhouse")
	cfg.Database.SSLMode = getEnv("DB_SSLMODE", "disable")
	cfg.Database.MaxConns = parseInt(getEnv("DB_MAX_CONNS", "10"), 10)
	cfg.Database.MaxIdle = parseInt(getEnv("DB_MAX_IDLE", "5"), 5)

	cfg.Redis.Enabled = getEnv("REDIS_ENABLED", "true") == "true"
	cfg.Redis.Addr = getEnv("REDIS_ADDR", "localhost:6379")
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", "")
	cfg.Redis.DB = 0

	cfg.Log.Level = getEnv("LOG_LEVEL", "info")
	cfg.Log.Format = getEnv("LOG_FORMAT", "json")

	cfg.Platform.BaseURL = getEnv("PLATFORM_BASE_URL", "http://localhost:9090")
	cfg.Platform.Token = getEnv("PLATFORM_TOKEN", "")
	cfg.Platform.RPCTimeout = parseDuration(getEnv("PLATFORM_RPC_TIMEOUT", "10s"), 10*time.Second)
	cfg.Platform.LivenessTimeout = parseDuration(getEnv("PLATFORM_LIVENESS_TIMEOUT", "5s"), 5*time.Second)

	cfg.MQTT.Enabled = getEnv("MQTT_ENABLED", "false") == "true"
	cfg.MQTT.Broker = getEnv("MQTT_BROKER", "tcp://localhost:1883")
	cfg.MQTT.ClientID = getEnv("MQTT_CLIENT_ID", "greenhouse-pro-monitor")
	cfg.MQTT.Username = getEnv("MQTT_USERNAME", "")
	cfg.MQTT.Password = getEnv("MQTT_PASSWORD", "")
	cfg.MQTT.Topic = getEnv("MQTT_TOPIC", "greenhouse/monitor/events")

	cfg.Notify.RetentionDays = parseInt(getEnv("NOTIFY_RETENTION_DAYS", "30"), 30)
	cfg.Notify.SweepInterval = parseDuration(getEnv("NOTIFY_SWEEP_INTERVAL", "1h"), time.Hour)

	return cfg
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseInt(s string, def int) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return i
}

func parseDuration(s string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return def
	}
	return d
}
