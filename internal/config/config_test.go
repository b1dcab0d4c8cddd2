package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad_DefaultValues(t *testing.T) {
	os.Clearenv()

	cfg := Load()

	if cfg.HTTP.Addr != ":8080" {
		t.Errorf("Expected HTTP_ADDR default ':8080', got '%s'", cfg.HTTP.Addr)
	}
	if cfg.Database.Host != "localhost" {
		t.Errorf("Expected DB_HOST default 'localhost', got '%s'", cfg.Database.Host)
	}
	if cfg.Database.Port != 5432 {
		t.Errorf("Expected DB_PORT default 5432, got %d", cfg.Database.Port)
	}
	if cfg.Database.Database != "greenhouse" {
		t.Errorf("Expected DB_NAME default 'greenhouse', got '%s'", cfg.Database.Database)
	}
	if cfg.Platform.RPCTimeout != 10*time.Second {
		t.Errorf("Expected PLATFORM_RPC_TIMEOUT default 10s, got %v", cfg.Platform.RPCTimeout)
	}
	if cfg.MQTT.Enabled {
		t.Error("Expected MQTT_ENABLED default false")
	}
	if cfg.Notify.RetentionDays != 30 {
		t.Errorf("Expected NOTIFY_RETENTION_DAYS default 30, got %d", cfg.Notify.RetentionDays)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("Expected LOG_LEVEL default 'info', got '%s'", cfg.Log.Level)
	}
}

func TestLoad_EnvironmentVariables(t *testing.T) {
	os.Clearenv()
	os.Setenv("DB_HOST", "test-host")
	os.Setenv("DB_PORT", "15432")
	os.Setenv("PLATFORM_BASE_URL", "https://iot.example.com")
	os.Setenv("PLATFORM_TOKEN", "secret-token")
	os.Setenv("PLATFORM_RPC_TIMEOUT", "3s")
	os.Setenv("MQTT_ENABLED", "true")
	os.Setenv("NOTIFY_RETENTION_DAYS", "7")
	defer os.Clearenv()

	cfg := Load()

	if cfg.Database.Host != "test-host" {
		t.Errorf("Expected DB_HOST 'test-host', got '%s'", cfg.Database.Host)
	}
	if cfg.Database.Port != 15432 {
		t.Errorf("Expected DB_PORT 15432, got %d", cfg.Database.Port)
	}
	if cfg.Platform.BaseURL != "https://iot.example.com" {
		t.Errorf("Expected PLATFORM_BASE_URL 'https://iot.example.com', got '%s'", cfg.Platform.BaseURL)
	}
	if cfg.Platform.Token != "secret-token" {
		t.Errorf("Expected PLATFORM_TOKEN 'secret-token', got '%s'", cfg.Platform.Token)
	}
	if cfg.Platform.RPCTimeout != 3*time.Second {
		t.Errorf("Expected PLATFORM_RPC_TIMEOUT 3s, got %v", cfg.Platform.RPCTimeout)
	}
	if !cfg.MQTT.Enabled {
		t.Error("Expected MQTT_ENABLED true")
	}
	if cfg.Notify.RetentionDays != 7 {
		t.Errorf("Expected NOTIFY_RETENTION_DAYS 7, got %d", cfg.Notify.RetentionDays)
	}
}

func TestLoad_InvalidNumbersFallBack(t *testing.T) {
	os.Clearenv()
	os.Setenv("DB_PORT", "not-a-number")
	os.Setenv("PLATFORM_RPC_TIMEOUT", "soon")
	defer os.Clearenv()

	cfg := Load()

	if cfg.Database.Port != 5432 {
		t.Errorf("Expected DB_PORT fallback 5432, got %d", cfg.Database.Port)
	}
	if cfg.Platform.RPCTimeout != 10*time.Second {
		t.Errorf("Expected PLATFORM_RPC_TIMEOUT fallback 10s, got %v", cfg.Platform.RPCTimeout)
	}
}

func TestDatabaseConfig_DSN(t *testing.T) {
	c := DatabaseConfig{
		Host:     "db",
		Port:     5432,
		User:     "gh",
		Password: "pw",
		Database: "greenhouse",
		SSLMode:  "disable",
	}
	want := "host=db port=5432 user=gh password=pw dbname=greenhouse sslmode=disable"
	if got := c.DSN(); got != want {
		t.Errorf("DSN mismatch: got %q want %q", got, want)
	}
}
