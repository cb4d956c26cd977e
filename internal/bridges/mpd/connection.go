package mpd

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

// Idle subsystems the monitor subscribes to.
const (
	subsystemPlayer = "player"
	subsystemMixer  = "mixer"
)

// defaultConnectTimeout is the maximum time to wait for a player connection.
const defaultConnectTimeout = 5 * time.Second

// Logger interface for optional logging.
type Logger interface {
	Debug(msg string, keysAndValues ...any)
	Info(msg string, keysAndValues ...any)
	Warn(msg string, keysAndValues ...any)
	Error(msg string, keysAndValues ...any)
}

// monitorHandle pairs a monitor goroutine's stop signal with its completion
// signal so Disconnect can wait for a clean exit.
type monitorHandle struct {
	done    chan struct{}
	stopped chan struct{}
}

// Connection owns the command client, idle watcher, and monitor goroutine
// for a single player.
//
// Invariant: the client and watcher are both present or both absent. A dial
// failure of either rolls back to fully disconnected.
//
// Thread Safety: all methods are safe for concurrent use. Commands and
// lifecycle transitions are serialized on one mutex; a command racing a
// Disconnect observes the connection either up or down.
type Connection struct {
	cfg            PlayerConfig
	dialer         Dialer
	connectTimeout time.Duration
	events         chan<- Event

	mu      sync.Mutex
	client  Client
	watcher Watcher
	mon     *monitorHandle

	// Events dropped because the bridge's event channel was full.
	eventsDropped atomic.Uint64

	logger   Logger
	loggerMu sync.RWMutex
}

// NewConnection creates a disconnected player connection.
// Events emitted by the monitor goroutine are sent to the events channel,
// tagged with the player id.
func NewConnection(cfg PlayerConfig, dialer Dialer, connectTimeout time.Duration, events chan<- Event) *Connection {
	if connectTimeout <= 0 {
		connectTimeout = defaultConnectTimeout
	}

	return &Connection{
		cfg:            cfg,
		dialer:         dialer,
		connectTimeout: connectTimeout,
		events:         events,
	}
}

// ID returns the player id this connection belongs to.
func (c *Connection) ID() string {
	return c.cfg.ID
}

// Connect dials the command client and idle watcher, then starts the monitor
// goroutine. No-op when already connected.
func (c *Connection) Connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.client != nil {
		return nil
	}

	dialCtx, cancel := context.WithTimeout(ctx, c.connectTimeout)
	client, err := c.dialer.DialClient(dialCtx, c.cfg)
	cancel()
	if err != nil {
		return err
	}

	watchCtx, cancel := context.WithTimeout(ctx, c.connectTimeout)
	watcher, err := c.dialer.DialWatcher(watchCtx, c.cfg, subsystemPlayer, subsystemMixer)
	cancel()
	if err != nil {
		// Roll back the half-open pair.
		if closeErr := client.Close(); closeErr != nil {
			c.logDebug("close after failed watcher dial", "player", c.cfg.ID, "error", closeErr)
		}
		return err
	}

	mon := &monitorHandle{
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
	}

	c.client = client
	c.watcher = watcher
	c.mon = mon

	go c.monitor(watcher, mon)

	c.logInfo("player connected", "player", c.cfg.ID, "addr", c.cfg.Addr())
	return nil
}

// Disconnect stops the monitor and closes both handles. No-op when already
// disconnected. Protocol errors during close are logged and swallowed.
func (c *Connection) Disconnect() {
	c.mu.Lock()
	client := c.client
	watcher := c.watcher
	mon := c.mon
	c.client = nil
	c.watcher = nil
	c.mon = nil
	c.mu.Unlock()

	if client == nil {
		return
	}

	// Signal the monitor first so it stops issuing status reads, then close
	// the handles to unblock it, then wait for its exit. Closing happens
	// outside the mutex so a blocked monitor status call cannot deadlock us.
	close(mon.done)

	if err := watcher.Close(); err != nil {
		c.logDebug("watcher close", "player", c.cfg.ID, "error", err)
	}
	if err := client.Close(); err != nil {
		c.logDebug("client close", "player", c.cfg.ID, "error", err)
	}

	<-mon.stopped

	c.logInfo("player disconnected", "player", c.cfg.ID)
}

// Reconnect disconnects then connects. The two phases are not atomic;
// commands arriving in between fail with ErrNotConnected and are retried by
// the dispatcher.
func (c *Connection) Reconnect(ctx context.Context) error {
	c.Disconnect()
	return c.Connect(ctx)
}

// IsConnected returns true if the player connection is up.
func (c *Connection) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.client != nil
}

// EventsDropped returns the number of events dropped due to a full
// event channel.
func (c *Connection) EventsDropped() uint64 {
	return c.eventsDropped.Load()
}

// Play resumes or starts playback.
func (c *Connection) Play() error {
	return c.withClient(func(cl Client) error { return cl.Play(-1) })
}

// Pause pauses playback.
func (c *Connection) Pause() error {
	return c.withClient(func(cl Client) error { return cl.Pause(true) })
}

// Stop stops playback.
func (c *Connection) Stop() error {
	return c.withClient(func(cl Client) error { return cl.Stop() })
}

// Next advances to the next track.
func (c *Connection) Next() error {
	return c.withClient(func(cl Client) error { return cl.Next() })
}

// Previous moves to the previous track.
func (c *Connection) Previous() error {
	return c.withClient(func(cl Client) error { return cl.Previous() })
}

// SetVolume sets the mixer volume. Values outside 0-100 are clamped by the
// daemon, not here.
func (c *Connection) SetVolume(volume int) error {
	return c.withClient(func(cl Client) error { return cl.SetVolume(volume) })
}

// Ping verifies the connection is alive.
func (c *Connection) Ping() error {
	return c.withClient(func(cl Client) error { return cl.Ping() })
}

// Status returns the player's current playback state and volume.
func (c *Connection) Status() (PlayerStatus, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.client == nil {
		return PlayerStatus{}, ErrNotConnected
	}

	attrs, err := c.client.Status()
	if err != nil {
		return PlayerStatus{}, fmt.Errorf("status %s: %w", c.cfg.ID, err)
	}

	return parseStatus(attrs), nil
}

// withClient runs fn against the command client under the connection mutex.
func (c *Connection) withClient(fn func(Client) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.client == nil {
		return ErrNotConnected
	}

	return fn(c.client)
}

// monitor turns idle notifications into typed events until the watcher shuts
// down. Repeated identical states are suppressed so a burst of idle wakeups
// produces at most one event per actual change.
func (c *Connection) monitor(w Watcher, mon *monitorHandle) {
	defer close(mon.stopped)

	var lastState PlaybackState
	lastVolume := -1

	for {
		select {
		case <-mon.done:
			return

		case err, ok := <-w.Errors():
			if !ok {
				return
			}
			c.logWarn("watcher error", "player", c.cfg.ID, "error", err)

		case subsystem, ok := <-w.Events():
			if !ok {
				return
			}

			status, err := c.Status()
			if err != nil {
				// Status fails during teardown; the done signal handles exit.
				c.logDebug("status after idle event", "player", c.cfg.ID, "error", err)
				continue
			}

			switch subsystem {
			case subsystemPlayer:
				if status.State == lastState {
					continue
				}
				lastState = status.State
				c.emit(Event{
					PlayerID: c.cfg.ID,
					Kind:     EventPlayback,
					State:    status.State,
					Volume:   status.Volume,
				})

			case subsystemMixer:
				if status.Volume < 0 || status.Volume == lastVolume {
					continue
				}
				lastVolume = status.Volume
				c.emit(Event{
					PlayerID: c.cfg.ID,
					Kind:     EventVolume,
					Volume:   status.Volume,
				})
			}
		}
	}
}

// emit sends an event without blocking, dropping on overflow to keep the
// monitor responsive when the consumer stalls.
func (c *Connection) emit(ev Event) {
	select {
	case c.events <- ev:
	default:
		c.eventsDropped.Add(1)
		c.logWarn("event channel full, dropping event", "player", c.cfg.ID)
	}
}

// SetLogger sets the logger for this connection.
func (c *Connection) SetLogger(logger Logger) {
	c.loggerMu.Lock()
	c.logger = logger
	c.loggerMu.Unlock()
}

// logInfo logs an info message if logger is set.
func (c *Connection) logInfo(msg string, keysAndValues ...any) {
	c.loggerMu.RLock()
	logger := c.logger
	c.loggerMu.RUnlock()

	if logger != nil {
		logger.Info(msg, keysAndValues...)
	}
}

// logWarn logs a warning if logger is set.
func (c *Connection) logWarn(msg string, keysAndValues ...any) {
	c.loggerMu.RLock()
	logger := c.logger
	c.loggerMu.RUnlock()

	if logger != nil {
		logger.Warn(msg, keysAndValues...)
	}
}

// logDebug logs a debug message if logger is set.
func (c *Connection) logDebug(msg string, keysAndValues ...any) {
	c.loggerMu.RLock()
	logger := c.logger
	c.loggerMu.RUnlock()

	if logger != nil {
		logger.Debug(msg, keysAndValues...)
	}
}
