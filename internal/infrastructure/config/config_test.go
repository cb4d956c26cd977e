package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return configPath
}

func TestLoad_ValidConfig(t *testing.T) {
	content := `
bridge:
  id: "mpd-bridge-test"
  connect_timeout: 5
mqtt:
  broker:
    host: "localhost"
    port: 1883
    client_id: "test-client"
  qos: 1
players:
  kitchen:
    host: "10.0.0.5"
    port: "6600"
  livingroom:
    host: "10.0.0.6"
    port: "6600"
    password: "secret"
bindings:
  - item: "KitchenRadio"
    command: "ON"
    player: "kitchen"
    operation: "play"
`
	cfg, err := Load(writeConfig(t, content))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Bridge.ID != "mpd-bridge-test" {
		t.Errorf("Bridge.ID = %q, want %q", cfg.Bridge.ID, "mpd-bridge-test")
	}

	if cfg.MQTT.Broker.Host != "localhost" {
		t.Errorf("MQTT.Broker.Host = %q, want %q", cfg.MQTT.Broker.Host, "localhost")
	}

	if len(cfg.Players) != 2 {
		t.Errorf("len(Players) = %d, want 2", len(cfg.Players))
	}

	if len(cfg.Bindings) != 1 {
		t.Fatalf("len(Bindings) = %d, want 1", len(cfg.Bindings))
	}
	if cfg.Bindings[0].Player != "kitchen" {
		t.Errorf("Bindings[0].Player = %q, want %q", cfg.Bindings[0].Player, "kitchen")
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "bridge:\n  id: \"b1\"\n"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Bridge.ConnectTimeout != 5 {
		t.Errorf("Bridge.ConnectTimeout = %d, want 5", cfg.Bridge.ConnectTimeout)
	}
	if cfg.MQTT.Broker.Port != 1883 {
		t.Errorf("MQTT.Broker.Port = %d, want 1883", cfg.MQTT.Broker.Port)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, "info")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("Load() expected error for missing file, got nil")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "invalid: [yaml: content"))
	if err == nil {
		t.Error("Load() expected error for invalid YAML, got nil")
	}
}

func TestLoad_ValidationFailure(t *testing.T) {
	content := `
bridge:
  id: ""
mqtt:
  qos: 7
`
	_, err := Load(writeConfig(t, content))
	if err == nil {
		t.Error("Load() expected validation error, got nil")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("GRAYLOGIC_MPD_MQTT_HOST", "broker.example")
	t.Setenv("GRAYLOGIC_MPD_MQTT_PASSWORD", "env-secret")

	cfg, err := Load(writeConfig(t, "bridge:\n  id: \"b1\"\n"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.MQTT.Broker.Host != "broker.example" {
		t.Errorf("MQTT.Broker.Host = %q, want env override", cfg.MQTT.Broker.Host)
	}
	if cfg.MQTT.Auth.Password != "env-secret" {
		t.Errorf("MQTT.Auth.Password = %q, want env override", cfg.MQTT.Auth.Password)
	}
}

func TestPlayerSettings_Flatten(t *testing.T) {
	cfg := &Config{
		Players: map[string]map[string]string{
			"kitchen": {"host": "10.0.0.5", "port": "6600"},
			"bath":    {"host": "10.0.0.7"},
		},
	}

	flat := cfg.PlayerSettings()
	want := map[string]string{
		"kitchen.host": "10.0.0.5",
		"kitchen.port": "6600",
		"bath.host":    "10.0.0.7",
	}

	if len(flat) != len(want) {
		t.Fatalf("len(flat) = %d, want %d", len(flat), len(want))
	}
	for k, v := range want {
		if flat[k] != v {
			t.Errorf("flat[%q] = %q, want %q", k, flat[k], v)
		}
	}
}

func TestPlayerSettings_EmptyIsNil(t *testing.T) {
	cfg := &Config{}
	if cfg.PlayerSettings() != nil {
		t.Error("PlayerSettings() = non-nil for empty players section, want nil")
	}
}
