// Package mpd implements the MPD player bridge for Gray Logic.
//
// This package provides connectivity to one or more Music Player Daemon
// instances. It translates between Gray Logic's MQTT item commands and the
// MPD command protocol, and feeds player-originated changes back to the bus.
//
// # Architecture
//
// The bridge operates as a translator between the event bus and a set of
// independently managed player connections:
//
//	┌─────────────────┐          ┌─────────────────┐          ┌───────────┐
//	│   Gray Logic    │   MQTT   │   MPD Bridge    │   TCP    │  mpd #1   │
//	│      Core       │◄────────►│   (this pkg)    │◄────────►│  mpd #2   │
//	└─────────────────┘          └─────────────────┘          │  ...      │
//	                                                          └───────────┘
//
// # Key Responsibilities
//
//   - Maintain one command connection and one idle watcher per player
//   - Dispatch item commands (play, pause, volume, ...) to the right player
//   - Translate playback and mixer changes into item state updates
//   - Reload the player set wholesale from runtime config snapshots
//   - Reconnect every player once a day to clear stale daemon sessions
//   - Publish health status and metrics
//
// # Players
//
// Players are identified by a stable id chosen in configuration. Settings
// arrive as a flat key/value map:
//
//	kitchen.host = 192.168.1.50
//	kitchen.port = 6600
//	kitchen.password = secret
//
// The port defaults to 6600 and the password is optional.
//
// # Thread Safety
//
// All exported types are safe for concurrent use from multiple goroutines.
// Connection lifecycle transitions for a single player are serialized by the
// bridge; racing commands observe the connection either up or down, never a
// partial state.
//
// # References
//
//   - MPD protocol: https://mpd.readthedocs.io/en/latest/protocol.html
//   - gompd client: https://github.com/fhs/gompd
package mpd
