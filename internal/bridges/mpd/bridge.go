package mpd

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/nerrad567/gray-logic-mpd/internal/infrastructure/mqtt"
	"github.com/nerrad567/gray-logic-mpd/internal/scheduler"
)

// Bridge operation constants.
const (
	// eventQueueSize is the buffer size for the player event channel.
	eventQueueSize = 100

	// reconnectJobName is the stable id of the daily reconnect sweep job.
	reconnectJobName = "mpd-reconnect"
)

// Bridge orchestrates bidirectional translation between MPD players and MQTT.
// It handles:
//   - Receiving item commands via MQTT and dispatching them to players
//   - Receiving player events and publishing item state updates to MQTT
//   - Wholesale player reconfiguration from runtime config snapshots
//   - A daily reconnect sweep, health reporting, and graceful shutdown
//
// Thread Safety: All methods are safe for concurrent use.
type Bridge struct {
	bridgeID       string
	version        string
	connectTimeout time.Duration

	mqtt      MQTTClient
	dialer    Dialer
	providers []Provider
	scheduler JobScheduler
	telemetry TelemetryWriter
	health    *HealthReporter

	registry *Registry
	events   chan Event

	// Serializes ApplyConfig so per-player lifecycle transitions never
	// interleave across two reloads.
	applyMu sync.Mutex

	// Shutdown coordination
	done      chan struct{}
	wg        sync.WaitGroup
	stopOnce  sync.Once
	ctx       context.Context
	ctxCancel context.CancelFunc

	// Logger
	logger   Logger
	loggerMu sync.RWMutex
}

// MQTTClient is the interface for MQTT operations.
// This allows mocking in tests and flexibility in implementation.
type MQTTClient interface {
	// Publish sends a message to a topic.
	Publish(topic string, payload []byte, qos byte, retained bool) error

	// Subscribe registers a handler for a topic pattern.
	Subscribe(topic string, qos byte, handler func(topic string, payload []byte)) error

	// IsConnected returns true if connected to the broker.
	IsConnected() bool
}

// JobScheduler schedules named recurring jobs. Satisfied by
// *scheduler.Scheduler.
type JobScheduler interface {
	// Schedule registers fn under a stable name, replacing any job with
	// the same name.
	Schedule(name string, next scheduler.NextFunc, fn func()) error

	// Cancel removes a job by name.
	Cancel(name string) bool
}

// TelemetryWriter receives player state changes for time-series storage.
// This is optional - if nil, the bridge operates without telemetry.
type TelemetryWriter interface {
	// WritePlayerState records a playback state transition.
	WritePlayerState(playerID string, state string)

	// WritePlayerVolume records a volume change.
	WritePlayerVolume(playerID string, volume int)
}

// BridgeOptions holds configuration for creating a bridge.
type BridgeOptions struct {
	// BridgeID identifies this bridge instance in health messages.
	BridgeID string

	// Version is the bridge software version for health messages.
	Version string

	// ConnectTimeout is the per-player dial timeout. Default: 5 seconds.
	ConnectTimeout time.Duration

	// HealthInterval is how often to publish health status.
	HealthInterval time.Duration

	// MQTTClient is the MQTT client implementation.
	MQTTClient MQTTClient

	// Dialer establishes player connections.
	Dialer Dialer

	// Providers resolve item bindings. Queried in order on dispatch.
	Providers []Provider

	// Scheduler runs the daily reconnect sweep. Optional - if nil, no
	// sweep is scheduled and players reconnect on demand only.
	Scheduler JobScheduler

	// Telemetry is optional time-series storage for player events.
	Telemetry TelemetryWriter

	// Logger is optional structured logger.
	Logger Logger
}

// NewBridge creates a new bridge instance.
// Call Start() to begin operation.
func NewBridge(opts BridgeOptions) (*Bridge, error) {
	if opts.MQTTClient == nil {
		return nil, fmt.Errorf("MQTT client is required")
	}
	if opts.Dialer == nil {
		return nil, fmt.Errorf("dialer is required")
	}

	connectTimeout := opts.ConnectTimeout
	if connectTimeout <= 0 {
		connectTimeout = defaultConnectTimeout
	}

	// Bridge-level context aborts in-flight reconnects on shutdown.
	ctx, ctxCancel := context.WithCancel(context.Background())

	b := &Bridge{
		bridgeID:       opts.BridgeID,
		version:        opts.Version,
		connectTimeout: connectTimeout,
		mqtt:           opts.MQTTClient,
		dialer:         opts.Dialer,
		providers:      opts.Providers,
		scheduler:      opts.Scheduler,
		telemetry:      opts.Telemetry, // May be nil (optional)
		registry:       NewRegistry(),
		events:         make(chan Event, eventQueueSize),
		done:           make(chan struct{}),
		ctx:            ctx,
		ctxCancel:      ctxCancel,
		logger:         opts.Logger,
	}

	b.health = NewHealthReporter(HealthReporterConfig{
		BridgeID:  opts.BridgeID,
		Version:   opts.Version,
		Interval:  opts.HealthInterval,
		Publisher: opts.MQTTClient,
		Registry:  b.registry,
	})
	if opts.Logger != nil {
		b.health.SetLogger(opts.Logger)
	}

	return b, nil
}

// Start begins bridge operation.
// This subscribes to the command and config topics, starts the event
// consumer, and starts health reporting. Player connections are established
// by the first ApplyConfig call.
func (b *Bridge) Start(ctx context.Context) error {
	if err := b.health.PublishStarting(); err != nil {
		b.logError("failed to publish starting status", err)
	}

	commandTopic := mqtt.Topics{}.ItemCommands()
	if err := b.mqtt.Subscribe(commandTopic, 1, b.handleCommandMessage); err != nil {
		return fmt.Errorf("subscribe to commands: %w", err)
	}
	b.logInfo("subscribed to commands", "topic", commandTopic)

	configTopic := mqtt.Topics{}.BridgeConfig()
	if err := b.mqtt.Subscribe(configTopic, 1, b.handleConfigMessage); err != nil {
		return fmt.Errorf("subscribe to config: %w", err)
	}
	b.logInfo("subscribed to config", "topic", configTopic)

	b.wg.Add(1)
	go b.consumeEvents()

	b.health.Start(ctx)

	if err := b.health.PublishNow(); err != nil {
		b.logError("failed to publish healthy status", err)
	}

	b.logInfo("bridge started", "bridge_id", b.bridgeID)
	return nil
}

// Stop gracefully shuts down the bridge.
func (b *Bridge) Stop() {
	b.stopOnce.Do(func() {
		close(b.done)

		// Cancel bridge context to abort in-flight reconnects
		b.ctxCancel()

		if b.scheduler != nil {
			b.scheduler.Cancel(reconnectJobName)
		}

		// Stop health reporting (publishes "stopping" status)
		b.health.Stop()

		// Tear down players; their monitors stop with them
		for _, conn := range b.registry.All() {
			conn.Disconnect()
		}

		// Wait for the event consumer
		b.wg.Wait()

		b.logInfo("bridge stopped")
	})
}

// ApplyConfig replaces the player set from a flat settings snapshot and
// reconnects everything. A nil snapshot keeps the prior state. An empty
// snapshot removes all players.
//
// The returned error joins one ConfigError per rejected key; the remaining
// keys are still applied, so a partially bad snapshot degrades per key
// rather than wholesale.
func (b *Bridge) ApplyConfig(settings map[string]string) error {
	if settings == nil {
		return nil
	}

	b.applyMu.Lock()
	defer b.applyMu.Unlock()

	// Tear down the current generation before building the new one.
	if b.scheduler != nil {
		b.scheduler.Cancel(reconnectJobName)
	}
	for _, conn := range b.registry.All() {
		conn.Disconnect()
	}

	configs, err := ParsePlayerSettings(settings)
	if err != nil {
		b.logError("rejected player settings", err)
	}

	players := make(map[string]*Connection, len(configs))
	for id, cfg := range configs {
		conn := NewConnection(cfg, b.dialer, b.connectTimeout, b.events)
		conn.SetLogger(b.getLogger())
		players[id] = conn
	}

	b.registry.Replace(players)

	for id, conn := range players {
		if cerr := conn.Connect(b.ctx); cerr != nil {
			// Connect failures are per player; the rest proceed and the
			// sweep or next command retries this one.
			b.logError("player connect failed", fmt.Errorf("player %s: %w", id, cerr))
		}
	}

	b.scheduleSweep()

	b.logInfo("player configuration applied", "players", len(players))
	return err
}

// scheduleSweep registers the daily midnight reconnect job, replacing any
// previous registration.
func (b *Bridge) scheduleSweep() {
	if b.scheduler == nil {
		return
	}

	if err := b.scheduler.Schedule(reconnectJobName, scheduler.DailyAt(0, 0), b.reconnectAll); err != nil {
		// Sweep is a hygiene measure; on-demand reconnect still covers
		// dropped connections.
		b.logError("failed to schedule reconnect sweep", err)
	}
}

// reconnectAll disconnects and reconnects every registered player. Failures
// are logged per player and never stop the sweep.
func (b *Bridge) reconnectAll() {
	b.logInfo("reconnect sweep started", "players", b.registry.Len())

	for _, conn := range b.registry.All() {
		if err := conn.Reconnect(b.ctx); err != nil {
			b.logError("sweep reconnect failed", fmt.Errorf("player %s: %w", conn.ID(), err))
		}
	}
}

// handleConfigMessage applies a runtime settings snapshot delivered on the
// config topic as a flat JSON object.
func (b *Bridge) handleConfigMessage(topic string, payload []byte) {
	var settings map[string]string
	if err := json.Unmarshal(payload, &settings); err != nil {
		b.logError("failed to parse config snapshot", fmt.Errorf("topic %s: %w", topic, err))
		return
	}

	// Rejected keys are already logged inside ApplyConfig; nothing to
	// propagate to the broker.
	_ = b.ApplyConfig(settings)
}

// Registry exposes the player registry for health reporting and tests.
func (b *Bridge) Registry() *Registry {
	return b.registry
}

// SetLogger sets the logger for the bridge.
func (b *Bridge) SetLogger(logger Logger) {
	b.loggerMu.Lock()
	b.logger = logger
	b.loggerMu.Unlock()

	if b.health != nil {
		b.health.SetLogger(logger)
	}
}

// getLogger returns the current logger (may be nil).
func (b *Bridge) getLogger() Logger {
	b.loggerMu.RLock()
	defer b.loggerMu.RUnlock()
	return b.logger
}

// logInfo logs an info message if logger is set.
func (b *Bridge) logInfo(msg string, keysAndValues ...any) {
	if logger := b.getLogger(); logger != nil {
		logger.Info(msg, keysAndValues...)
	}
}

// logWarn logs a warning if logger is set.
func (b *Bridge) logWarn(msg string, keysAndValues ...any) {
	if logger := b.getLogger(); logger != nil {
		logger.Warn(msg, keysAndValues...)
	}
}

// logError logs an error message if logger is set.
func (b *Bridge) logError(msg string, err error) {
	if logger := b.getLogger(); logger != nil {
		logger.Error(msg, "error", err)
	}
}

// logDebug logs a debug message if logger is set.
func (b *Bridge) logDebug(msg string, keysAndValues ...any) {
	if logger := b.getLogger(); logger != nil {
		logger.Debug(msg, keysAndValues...)
	}
}
