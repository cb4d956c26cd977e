package mpd

import "errors"

// Domain errors for the MPD bridge package.
var (
	// ErrNotConnected is returned when an operation requires a connection
	// but the player is not connected.
	ErrNotConnected = errors.New("mpd: not connected to player")

	// ErrConnectionFailed is returned when dialing a player fails.
	ErrConnectionFailed = errors.New("mpd: connection to player failed")

	// ErrUnknownOperation is returned when a bound operation name cannot
	// be parsed.
	ErrUnknownOperation = errors.New("mpd: unknown operation")

	// ErrUnknownPlayer is returned when a command targets a player id that
	// is not in the registry.
	ErrUnknownPlayer = errors.New("mpd: unknown player")

	// ErrInvalidBinding is returned when an item binding is malformed.
	ErrInvalidBinding = errors.New("mpd: invalid binding")
)
