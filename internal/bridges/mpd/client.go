package mpd

import (
	"context"
	"fmt"

	gompd "github.com/fhs/gompd/v2/mpd"
)

// Client is the command-side connection to one MPD daemon.
// This allows mocking the gompd client in tests.
type Client interface {
	// Play starts playback at the given queue position (-1 resumes).
	Play(pos int) error

	// Pause pauses (true) or resumes (false) playback.
	Pause(pause bool) error

	// Stop stops playback.
	Stop() error

	// Next advances to the next queue entry.
	Next() error

	// Previous moves to the previous queue entry.
	Previous() error

	// SetVolume sets the mixer volume (0-100).
	SetVolume(volume int) error

	// Status returns the raw MPD status attribute map.
	Status() (map[string]string, error)

	// Ping verifies the connection is alive.
	Ping() error

	// Close closes the connection.
	Close() error
}

// Watcher delivers MPD idle-subsystem notifications.
type Watcher interface {
	// Events returns the channel of subsystem names ("player", "mixer").
	// The channel is closed when the watcher shuts down.
	Events() <-chan string

	// Errors returns the channel of watcher errors.
	Errors() <-chan error

	// Close stops the watcher and closes its connection.
	Close() error
}

// Dialer establishes command and watcher connections to a player.
type Dialer interface {
	// DialClient connects the command client, honouring ctx for timeout.
	DialClient(ctx context.Context, cfg PlayerConfig) (Client, error)

	// DialWatcher connects an idle watcher subscribed to the given
	// subsystems, honouring ctx for timeout.
	DialWatcher(ctx context.Context, cfg PlayerConfig, subsystems ...string) (Watcher, error)
}

// GompdDialer dials players with the gompd protocol client.
type GompdDialer struct{}

// Ensure GompdDialer implements Dialer.
var _ Dialer = GompdDialer{}

// gompdClient adapts *gompd.Client to the Client interface
// (gompd returns its own Attrs map type from Status).
type gompdClient struct {
	c *gompd.Client
}

func (g *gompdClient) Play(pos int) error         { return g.c.Play(pos) }
func (g *gompdClient) Pause(pause bool) error     { return g.c.Pause(pause) }
func (g *gompdClient) Stop() error                { return g.c.Stop() }
func (g *gompdClient) Next() error                { return g.c.Next() }
func (g *gompdClient) Previous() error            { return g.c.Previous() }
func (g *gompdClient) SetVolume(volume int) error { return g.c.SetVolume(volume) }
func (g *gompdClient) Ping() error                { return g.c.Ping() }
func (g *gompdClient) Close() error               { return g.c.Close() }

func (g *gompdClient) Status() (map[string]string, error) {
	attrs, err := g.c.Status()
	if err != nil {
		return nil, err
	}
	return attrs, nil
}

// gompdWatcher adapts *gompd.Watcher to the Watcher interface.
type gompdWatcher struct {
	w *gompd.Watcher
}

func (g *gompdWatcher) Events() <-chan string { return g.w.Event }
func (g *gompdWatcher) Errors() <-chan error  { return g.w.Error }
func (g *gompdWatcher) Close() error          { return g.w.Close() }

// DialClient connects the command client.
//
// gompd has no context-aware dial, so the dial runs in a goroutine and the
// caller abandons it when ctx expires. A late-arriving connection is closed
// to avoid leaking it.
func (GompdDialer) DialClient(ctx context.Context, cfg PlayerConfig) (Client, error) {
	type result struct {
		client *gompd.Client
		err    error
	}

	ch := make(chan result, 1)
	go func() {
		c, err := gompd.DialAuthenticated("tcp", cfg.Addr(), cfg.Password)
		ch <- result{client: c, err: err}
	}()

	select {
	case res := <-ch:
		if res.err != nil {
			return nil, fmt.Errorf("%w: dial %s: %w", ErrConnectionFailed, cfg.Addr(), res.err)
		}
		return &gompdClient{c: res.client}, nil
	case <-ctx.Done():
		go func() {
			if res := <-ch; res.client != nil {
				res.client.Close()
			}
		}()
		return nil, fmt.Errorf("%w: dial %s: %w", ErrConnectionFailed, cfg.Addr(), ctx.Err())
	}
}

// DialWatcher connects an idle watcher for the given subsystems.
func (GompdDialer) DialWatcher(ctx context.Context, cfg PlayerConfig, subsystems ...string) (Watcher, error) {
	type result struct {
		watcher *gompd.Watcher
		err     error
	}

	ch := make(chan result, 1)
	go func() {
		w, err := gompd.NewWatcher("tcp", cfg.Addr(), cfg.Password, subsystems...)
		ch <- result{watcher: w, err: err}
	}()

	select {
	case res := <-ch:
		if res.err != nil {
			return nil, fmt.Errorf("%w: watch %s: %w", ErrConnectionFailed, cfg.Addr(), res.err)
		}
		return &gompdWatcher{w: res.watcher}, nil
	case <-ctx.Done():
		go func() {
			if res := <-ch; res.watcher != nil {
				res.watcher.Close()
			}
		}()
		return nil, fmt.Errorf("%w: watch %s: %w", ErrConnectionFailed, cfg.Addr(), ctx.Err())
	}
}
