package mpd

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/nerrad567/gray-logic-mpd/internal/infrastructure/mqtt"
)

// HealthStatus is the bridge's reported operational state.
type HealthStatus string

// Health statuses.
const (
	HealthStarting HealthStatus = "starting"
	HealthHealthy  HealthStatus = "healthy"
	HealthDegraded HealthStatus = "degraded"
	HealthStopping HealthStatus = "stopping"
	HealthOffline  HealthStatus = "offline"
)

// defaultHealthInterval is how often health status is published.
const defaultHealthInterval = 30 * time.Second

// HealthMessage is the retained status document published to the health
// topic.
type HealthMessage struct {
	BridgeID          string       `json:"bridge_id"`
	Status            HealthStatus `json:"status"`
	Reason            string       `json:"reason,omitempty"`
	Version           string       `json:"version,omitempty"`
	Timestamp         time.Time    `json:"timestamp"`
	UptimeSeconds     int64        `json:"uptime_seconds"`
	PlayersConfigured int          `json:"players_configured"`
	PlayersConnected  int          `json:"players_connected"`
	EventsDropped     uint64       `json:"events_dropped,omitempty"`
}

// HealthPublisher is the interface for publishing health messages.
// This is typically implemented by an MQTT client.
type HealthPublisher interface {
	// Publish sends a message to a topic with the specified QoS and retention.
	Publish(topic string, payload []byte, qos byte, retained bool) error

	// IsConnected returns true if the publisher is connected.
	IsConnected() bool
}

// HealthReporter manages periodic health status reporting.
// It publishes health messages to MQTT at regular intervals.
type HealthReporter struct {
	bridgeID  string
	version   string
	startTime time.Time
	interval  time.Duration
	publisher HealthPublisher
	registry  *Registry

	// Shutdown coordination (stopOnce prevents double-close panics)
	done     chan struct{}
	wg       sync.WaitGroup
	stopOnce sync.Once

	// Logger (optional)
	logger   Logger
	loggerMu sync.RWMutex
}

// HealthReporterConfig holds configuration for the health reporter.
type HealthReporterConfig struct {
	// BridgeID is the bridge identifier for health messages.
	BridgeID string

	// Version is the bridge software version.
	Version string

	// Interval is how often to publish health status.
	// Default: 30 seconds.
	Interval time.Duration

	// Publisher is the MQTT client for publishing messages.
	Publisher HealthPublisher

	// Registry provides player counts.
	Registry *Registry
}

// NewHealthReporter creates a new health reporter.
func NewHealthReporter(cfg HealthReporterConfig) *HealthReporter {
	interval := cfg.Interval
	if interval == 0 {
		interval = defaultHealthInterval
	}

	return &HealthReporter{
		bridgeID:  cfg.BridgeID,
		version:   cfg.Version,
		startTime: time.Now(),
		interval:  interval,
		publisher: cfg.Publisher,
		registry:  cfg.Registry,
		done:      make(chan struct{}),
	}
}

// Start begins periodic health reporting.
// Must be called after creation. Call Stop to shut down.
func (h *HealthReporter) Start(ctx context.Context) {
	h.wg.Add(1)
	go h.reportLoop(ctx)
}

// Stop gracefully stops health reporting.
// Publishes a final "stopping" status before returning.
// Safe to call multiple times (uses sync.Once).
func (h *HealthReporter) Stop() {
	h.stopOnce.Do(func() {
		close(h.done)
		h.wg.Wait()

		// Best-effort during shutdown, nothing we can do if it fails
		_ = h.publishStatus(HealthStopping, "")
	})
}

// SetLogger sets the logger for this reporter.
func (h *HealthReporter) SetLogger(logger Logger) {
	h.loggerMu.Lock()
	h.logger = logger
	h.loggerMu.Unlock()
}

// PublishStarting publishes a "starting" status.
// Called during bridge initialization.
func (h *HealthReporter) PublishStarting() error {
	return h.publishStatus(HealthStarting, "bridge starting")
}

// PublishNow publishes the current health status immediately.
// Useful for forcing an update after a significant event.
func (h *HealthReporter) PublishNow() error {
	status, reason := h.determineStatus()
	return h.publishStatus(status, reason)
}

// reportLoop runs the periodic health reporting.
func (h *HealthReporter) reportLoop(ctx context.Context) {
	defer h.wg.Done()

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-h.done:
			return
		case <-ticker.C:
			if err := h.PublishNow(); err != nil {
				h.logError("failed to publish health", err)
			}
		}
	}
}

// determineStatus evaluates the current bridge status.
func (h *HealthReporter) determineStatus() (HealthStatus, string) {
	if h.publisher == nil || !h.publisher.IsConnected() {
		return HealthDegraded, "MQTT disconnected"
	}

	configured, connected := h.playerCounts()
	if configured > 0 && connected == 0 {
		return HealthDegraded, "all players disconnected"
	}
	if connected < configured {
		return HealthDegraded, "some players disconnected"
	}

	return HealthHealthy, ""
}

// playerCounts returns the configured and connected player counts.
func (h *HealthReporter) playerCounts() (configured, connected int) {
	if h.registry == nil {
		return 0, 0
	}

	conns := h.registry.All()
	configured = len(conns)
	for _, conn := range conns {
		if conn.IsConnected() {
			connected++
		}
	}
	return configured, connected
}

// eventsDropped totals the dropped-event counters across all players.
func (h *HealthReporter) eventsDropped() uint64 {
	if h.registry == nil {
		return 0
	}

	var total uint64
	for _, conn := range h.registry.All() {
		total += conn.EventsDropped()
	}
	return total
}

// publishStatus publishes a health status message.
func (h *HealthReporter) publishStatus(status HealthStatus, reason string) error {
	if h.publisher == nil {
		return nil // No publisher configured
	}

	configured, connected := h.playerCounts()

	msg := HealthMessage{
		BridgeID:          h.bridgeID,
		Status:            status,
		Reason:            reason,
		Version:           h.version,
		Timestamp:         time.Now().UTC(),
		UptimeSeconds:     int64(time.Since(h.startTime).Seconds()),
		PlayersConfigured: configured,
		PlayersConnected:  connected,
		EventsDropped:     h.eventsDropped(),
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	// QoS 1, retained so the last status survives a bridge restart
	return h.publisher.Publish(mqtt.Topics{}.BridgeHealth(), payload, 1, true)
}

// logError logs an error if logger is set.
func (h *HealthReporter) logError(msg string, err error) {
	h.loggerMu.RLock()
	logger := h.logger
	h.loggerMu.RUnlock()

	if logger != nil {
		logger.Error(msg, "error", err)
	}
}
