package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// WritePlayerState records a playback state change for a player.
//
// The write is non-blocking; data is batched and sent asynchronously.
//
// Parameters:
//   - playerID: The configured player id (e.g., "kitchen")
//   - state: The playback state ("play", "pause", "stop")
func (c *Client) WritePlayerState(playerID string, state string) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"mpd_playback",
		map[string]string{
			"player_id": playerID,
		},
		map[string]interface{}{
			"state":   state,
			"playing": state == "play",
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WritePlayerVolume records a volume change for a player.
//
// The write is non-blocking; data is batched and sent asynchronously.
//
// Parameters:
//   - playerID: The configured player id (e.g., "kitchen")
//   - volume: The new volume as a 0-100 percentage
func (c *Client) WritePlayerVolume(playerID string, volume int) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"mpd_volume",
		map[string]string{
			"player_id": playerID,
		},
		map[string]interface{}{
			"volume": volume,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}
