package mpd

import (
	"errors"
	"fmt"
	"io"
	"net"
	"strings"

	"github.com/nerrad567/gray-logic-mpd/internal/infrastructure/mqtt"
)

// handleCommandMessage routes an inbound item command from the bus.
func (b *Bridge) handleCommandMessage(topic string, payload []byte) {
	itemName, ok := mqtt.ItemNameFromCommandTopic(topic)
	if !ok {
		b.logError("invalid command topic", fmt.Errorf("topic: %s", topic))
		return
	}

	b.Dispatch(itemName, strings.TrimSpace(string(payload)))
}

// Dispatch resolves an item command through the providers and executes the
// bound player operation. The first provider with a binding for the pair
// wins; with no binding the command is logged and ignored.
func (b *Bridge) Dispatch(itemName, command string) {
	for _, provider := range b.providers {
		mapping, ok := provider.PlayerCommand(itemName, command)
		if !ok {
			continue
		}

		playerID, opName, found := strings.Cut(mapping, ":")
		if !found || playerID == "" {
			b.logError("malformed binding", fmt.Errorf("item %s: mapping %q", itemName, mapping))
			return
		}

		op, err := ParseOperation(opName)
		if err != nil {
			b.logWarn("ignoring command with unknown operation",
				"item", itemName, "command", command, "operation", opName)
			return
		}

		b.logDebug("dispatching command",
			"item", itemName, "command", command, "player", playerID, "operation", string(op))

		b.executeOperation(playerID, op)
		return
	}

	b.logWarn("no binding for command", "item", itemName, "command", command)
}

// executeOperation runs one operation against one player. Failures are
// logged, never propagated, so one player cannot affect another.
//
// Recovery policy: a down connection gets exactly one reconnect before the
// attempt; an attempt failing with a connection-class error gets exactly one
// reconnect and one retry. Anything beyond that waits for the next command
// or the daily sweep.
func (b *Bridge) executeOperation(playerID string, op Operation) {
	conn, ok := b.registry.Lookup(playerID)
	if !ok {
		b.logError("command for unknown player",
			fmt.Errorf("%w: %s (operation %s)", ErrUnknownPlayer, playerID, op))
		return
	}

	if !conn.IsConnected() {
		if err := conn.Reconnect(b.ctx); err != nil {
			b.logError("reconnect before command failed", fmt.Errorf("player %s: %w", playerID, err))
			return
		}
	}

	err := b.runOperation(conn, op)
	if err == nil {
		return
	}

	if !isConnectionError(err) {
		b.logError("operation failed", fmt.Errorf("player %s op %s: %w", playerID, op, err))
		return
	}

	b.logWarn("connection lost during command, retrying once",
		"player", playerID, "operation", string(op), "error", err.Error())

	if rerr := conn.Reconnect(b.ctx); rerr != nil {
		b.logError("reconnect after failed command failed", fmt.Errorf("player %s: %w", playerID, rerr))
		return
	}

	if err := b.runOperation(conn, op); err != nil {
		b.logError("operation retry failed", fmt.Errorf("player %s op %s: %w", playerID, op, err))
	}
}

// runOperation invokes the player method for an operation.
func (b *Bridge) runOperation(conn *Connection, op Operation) error {
	switch op {
	case OpPlay:
		return conn.Play()
	case OpPause:
		return conn.Pause()
	case OpStop:
		return conn.Stop()
	case OpNext:
		return conn.Next()
	case OpPrev:
		return conn.Previous()
	case OpVolumeIncrease:
		return b.adjustVolume(conn, volumeStep)
	case OpVolumeDecrease:
		return b.adjustVolume(conn, -volumeStep)
	case OpVolume:
		return b.reportVolume(conn)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownOperation, op)
	}
}

// adjustVolume steps the volume relative to the player's current value.
// Out-of-range results are clamped by the daemon.
func (b *Bridge) adjustVolume(conn *Connection, delta int) error {
	status, err := conn.Status()
	if err != nil {
		return err
	}
	if status.Volume < 0 {
		return fmt.Errorf("mpd: player %s has no mixer", conn.ID())
	}

	return conn.SetVolume(status.Volume + delta)
}

// reportVolume reads the current volume and posts it to the bound items.
func (b *Bridge) reportVolume(conn *Connection) error {
	status, err := conn.Status()
	if err != nil {
		return err
	}
	if status.Volume < 0 {
		return fmt.Errorf("mpd: player %s has no mixer", conn.ID())
	}

	b.postVolume(conn.ID(), status.Volume)
	return nil
}

// isConnectionError reports whether err indicates a dead connection worth a
// reconnect, as opposed to a protocol-level refusal the daemon returned over
// a healthy link.
func isConnectionError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrNotConnected) || errors.Is(err, ErrConnectionFailed) {
		return true
	}
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return true
	}

	var netErr net.Error
	return errors.As(err, &netErr)
}
