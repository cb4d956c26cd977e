// Package influxdb provides optional playback telemetry for the MPD bridge.
//
// This package wraps the InfluxDB v2 client to record player state and
// volume changes as time-series points. It is entirely optional — when
// disabled in configuration the bridge operates without it.
//
// # Features
//
//   - Non-blocking batched writes (no impact on event processing latency)
//   - Async error callback for write failures
//   - Health check via server ping
//
// # Usage
//
//	client, err := influxdb.Connect(cfg.InfluxDB)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	client.WritePlayerState("kitchen", "play")
//	client.WritePlayerVolume("kitchen", 65)
package influxdb
