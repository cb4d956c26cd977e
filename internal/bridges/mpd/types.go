package mpd

import (
	"fmt"
	"net"
	"strconv"
	"strings"
)

// volumeStep is the amount a single volume_increase/volume_decrease command
// adjusts the volume by. The daemon clamps the result to 0-100.
const volumeStep = 5

// defaultPort is the standard MPD listen port.
const defaultPort = 6600

// Operation is a player action an item can be bound to.
type Operation string

// Operations a binding may name.
const (
	OpPlay           Operation = "play"
	OpPause          Operation = "pause"
	OpStop           Operation = "stop"
	OpNext           Operation = "next"
	OpPrev           Operation = "prev"
	OpVolumeIncrease Operation = "volume_increase"
	OpVolumeDecrease Operation = "volume_decrease"
	OpVolume         Operation = "volume"
)

// ParseOperation parses an operation name case-insensitively.
func ParseOperation(s string) (Operation, error) {
	op := Operation(strings.ToLower(strings.TrimSpace(s)))
	switch op {
	case OpPlay, OpPause, OpStop, OpNext, OpPrev,
		OpVolumeIncrease, OpVolumeDecrease, OpVolume:
		return op, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownOperation, s)
	}
}

// PlaybackState is the playback state reported by a player.
type PlaybackState string

// Playback states as reported in the MPD status response.
const (
	StatePlay  PlaybackState = "play"
	StatePause PlaybackState = "pause"
	StateStop  PlaybackState = "stop"
)

// PlayerStatus is the subset of the MPD status response the bridge acts on.
// Volume is -1 when the daemon has no mixer or the value is unparseable.
type PlayerStatus struct {
	State  PlaybackState
	Volume int
}

// parseStatus extracts the playback state and volume from a raw MPD status
// attribute map.
func parseStatus(attrs map[string]string) PlayerStatus {
	status := PlayerStatus{
		State:  PlaybackState(attrs["state"]),
		Volume: -1,
	}

	if v, err := strconv.Atoi(attrs["volume"]); err == nil {
		status.Volume = v
	}

	return status
}

// EventKind distinguishes the two event classes a player monitor emits.
type EventKind int

// Event kinds.
const (
	// EventPlayback signals a playback state transition.
	EventPlayback EventKind = iota

	// EventVolume signals a mixer volume change.
	EventVolume
)

// Event is a player-originated change, tagged with the id of the player it
// came from so consumers never need to resolve the source by identity.
type Event struct {
	PlayerID string
	Kind     EventKind
	State    PlaybackState
	Volume   int
}

// PlayerConfig holds the connection settings for one player.
type PlayerConfig struct {
	ID       string
	Host     string
	Port     int
	Password string
}

// Addr returns the host:port dial address for the player.
func (p PlayerConfig) Addr() string {
	port := p.Port
	if port == 0 {
		port = defaultPort
	}
	return net.JoinHostPort(p.Host, strconv.Itoa(port))
}
