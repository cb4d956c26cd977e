package influxdb

import (
	"errors"
	"testing"

	"github.com/nerrad567/gray-logic-mpd/internal/infrastructure/config"
)

func TestConnect_Disabled(t *testing.T) {
	_, err := Connect(config.InfluxDBConfig{Enabled: false})
	if !errors.Is(err, ErrDisabled) {
		t.Errorf("Connect() error = %v, want ErrDisabled", err)
	}
}

func TestClose_NilClient(t *testing.T) {
	c := &Client{}
	if err := c.Close(); err != nil {
		t.Errorf("Close() on zero client = %v, want nil", err)
	}
}

func TestWrite_Disconnected(t *testing.T) {
	// Writes on a disconnected client must be silent no-ops.
	c := &Client{}

	c.WritePlayerState("kitchen", "play")
	c.WritePlayerVolume("kitchen", 50)
	c.Flush()

	if c.IsConnected() {
		t.Error("IsConnected() = true for zero client, want false")
	}
}
