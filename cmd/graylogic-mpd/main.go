// Gray Logic MPD Bridge
//
// This is the main entry point for the Gray Logic MPD bridge, a standalone
// service that connects Music Player Daemon instances to the Gray Logic
// MQTT bus. Item commands on the bus drive the players; playback and volume
// changes on the players flow back as item state updates.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/nerrad567/gray-logic-mpd/internal/bridges/mpd"
	"github.com/nerrad567/gray-logic-mpd/internal/infrastructure/config"
	"github.com/nerrad567/gray-logic-mpd/internal/infrastructure/influxdb"
	"github.com/nerrad567/gray-logic-mpd/internal/infrastructure/logging"
	"github.com/nerrad567/gray-logic-mpd/internal/infrastructure/mqtt"
	"github.com/nerrad567/gray-logic-mpd/internal/scheduler"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

func main() {
	// Create a context that cancels on interrupt signals (Ctrl+C, SIGTERM)
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
// Returning an error allows main to handle exit codes consistently.
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting Gray Logic MPD bridge",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	// Load configuration
	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	// Connect to MQTT broker
	mqttClient, err := mqtt.Connect(cfg.MQTT)
	if err != nil {
		return fmt.Errorf("connecting to MQTT: %w", err)
	}
	defer func() {
		log.Info("disconnecting from MQTT")
		if closeErr := mqttClient.Close(); closeErr != nil {
			log.Error("error closing MQTT", "error", closeErr)
		}
	}()
	mqttClient.SetLogger(log)
	log.Info("MQTT connected",
		"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
		"client_id", cfg.MQTT.Broker.ClientID,
	)

	mqttClient.SetOnConnect(func() {
		log.Info("MQTT reconnected")
	})
	mqttClient.SetOnDisconnect(func(err error) {
		log.Warn("MQTT disconnected", "error", err)
	})

	// Connect to InfluxDB (optional)
	var influxClient *influxdb.Client
	if cfg.InfluxDB.Enabled {
		influxClient, err = influxdb.Connect(cfg.InfluxDB)
		if err != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", err)
		}
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		log.Info("InfluxDB connected",
			"url", cfg.InfluxDB.URL,
			"org", cfg.InfluxDB.Org,
			"bucket", cfg.InfluxDB.Bucket,
		)

		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
	} else {
		log.Info("InfluxDB disabled")
	}

	// Job scheduler for the daily reconnect sweep
	jobs := scheduler.New()
	jobs.SetLogger(log)
	defer func() {
		log.Info("stopping scheduler")
		jobs.Stop()
	}()

	// Start the MPD bridge
	bridge, err := startBridge(cfg, mqttClient, jobs, influxClient, log)
	if err != nil {
		return fmt.Errorf("starting MPD bridge: %w", err)
	}
	defer func() {
		log.Info("stopping MPD bridge")
		bridge.Stop()
	}()

	if err := bridge.Start(ctx); err != nil {
		return fmt.Errorf("starting MPD bridge: %w", err)
	}

	// Connect the configured players. Per-key config errors are logged and
	// the remaining players still come up.
	if err := bridge.ApplyConfig(cfg.PlayerSettings()); err != nil {
		log.Warn("some player settings were rejected", "error", err)
	}
	log.Info("MPD bridge started", "players", bridge.Registry().Len())

	// Verify infrastructure connections are healthy
	if err := healthCheck(ctx, mqttClient, influxClient); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	log.Info("all health checks passed")

	log.Info("initialisation complete, waiting for shutdown signal")

	// Wait for shutdown signal
	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")

	// Deferred Close() calls will run in reverse order:
	// 1. MPD bridge
	// 2. Scheduler
	// 3. InfluxDB (if enabled)
	// 4. MQTT

	log.Info("Gray Logic MPD bridge stopped")
	return nil
}

// getConfigPath returns the configuration file path.
// Uses GRAYLOGIC_MPD_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("GRAYLOGIC_MPD_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// startBridge builds the MPD bridge from configuration.
func startBridge(cfg *config.Config, mqttClient *mqtt.Client, jobs *scheduler.Scheduler, influxClient *influxdb.Client, log *logging.Logger) (*mpd.Bridge, error) {
	specs := make([]mpd.BindingSpec, 0, len(cfg.Bindings))
	for _, b := range cfg.Bindings {
		specs = append(specs, mpd.BindingSpec{
			Item:      b.Item,
			Command:   b.Command,
			Player:    b.Player,
			Operation: b.Operation,
		})
	}

	bindings, err := mpd.NewBindingTable(specs)
	if err != nil {
		return nil, fmt.Errorf("loading bindings: %w", err)
	}

	// The interface value must stay nil when InfluxDB is disabled;
	// a typed nil pointer would defeat the bridge's nil check.
	var telemetry mpd.TelemetryWriter
	if influxClient != nil {
		telemetry = influxClient
	}

	bridge, err := mpd.NewBridge(mpd.BridgeOptions{
		BridgeID:       cfg.Bridge.ID,
		Version:        version,
		ConnectTimeout: cfg.GetConnectTimeout(),
		HealthInterval: cfg.GetHealthInterval(),
		MQTTClient:     &mqttBridgeAdapter{client: mqttClient},
		Dialer:         mpd.GompdDialer{},
		Providers:      []mpd.Provider{bindings},
		Scheduler:      jobs,
		Telemetry:      telemetry,
		Logger:         log,
	})
	if err != nil {
		return nil, fmt.Errorf("creating bridge: %w", err)
	}

	return bridge, nil
}

// healthCheck verifies all infrastructure connections are healthy.
func healthCheck(ctx context.Context, mqttClient *mqtt.Client, influxClient *influxdb.Client) error {
	if err := mqttClient.HealthCheck(ctx); err != nil {
		return fmt.Errorf("mqtt: %w", err)
	}

	if influxClient != nil {
		if err := influxClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("influxdb: %w", err)
		}
	}

	// Player connections are verified by the bridge's own health reporting;
	// a down player degrades but never blocks startup.

	return nil
}

// mqttBridgeAdapter adapts the infrastructure MQTT client to the MPD bridge's
// MQTTClient interface. The only difference is the Subscribe handler
// signature: the infrastructure client's handlers return an error, the
// bridge's do not.
type mqttBridgeAdapter struct {
	client *mqtt.Client
}

// Publish implements mpd.MQTTClient.
func (a *mqttBridgeAdapter) Publish(topic string, payload []byte, qos byte, retained bool) error {
	return a.client.Publish(topic, payload, qos, retained)
}

// Subscribe implements mpd.MQTTClient.
func (a *mqttBridgeAdapter) Subscribe(topic string, qos byte, handler func(topic string, payload []byte)) error {
	return a.client.Subscribe(topic, qos, func(t string, p []byte) error {
		handler(t, p)
		return nil
	})
}

// IsConnected implements mpd.MQTTClient.
func (a *mqttBridgeAdapter) IsConnected() bool {
	return a.client.IsConnected()
}
