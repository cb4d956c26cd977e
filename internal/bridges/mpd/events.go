package mpd

import (
	"strconv"

	"github.com/nerrad567/gray-logic-mpd/internal/infrastructure/mqtt"
)

// Bus state payloads for playback transitions.
const (
	statePayloadOn  = "ON"
	statePayloadOff = "OFF"
)

// consumeEvents drains the player event channel until shutdown.
func (b *Bridge) consumeEvents() {
	defer b.wg.Done()

	for {
		select {
		case <-b.done:
			return
		case ev := <-b.events:
			b.handleEvent(ev)
		}
	}
}

// handleEvent publishes one player event to the bus and telemetry.
// Events from players no longer in the registry are stale monitor output
// from a replaced configuration and are dropped.
func (b *Bridge) handleEvent(ev Event) {
	if !b.registry.Has(ev.PlayerID) {
		b.logDebug("dropping event from unregistered player", "player", ev.PlayerID)
		return
	}

	switch ev.Kind {
	case EventPlayback:
		b.handlePlaybackEvent(ev)
	case EventVolume:
		b.handleVolumeEvent(ev)
	}
}

// handlePlaybackEvent posts ON to items bound to (player, play) when playback
// starts, and OFF to items bound to (player, stop) when it pauses or stops.
func (b *Bridge) handlePlaybackEvent(ev Event) {
	var payload string
	var op Operation

	switch ev.State {
	case StatePlay:
		payload = statePayloadOn
		op = OpPlay
	case StatePause, StateStop:
		payload = statePayloadOff
		op = OpStop
	default:
		b.logDebug("unrecognized playback state", "player", ev.PlayerID, "state", string(ev.State))
		return
	}

	for _, item := range b.itemsFor(ev.PlayerID, op) {
		b.postState(item, payload)
	}

	if b.telemetry != nil {
		b.telemetry.WritePlayerState(ev.PlayerID, string(ev.State))
	}
}

// handleVolumeEvent posts the new volume to items bound to (player, volume).
func (b *Bridge) handleVolumeEvent(ev Event) {
	b.postVolume(ev.PlayerID, ev.Volume)

	if b.telemetry != nil {
		b.telemetry.WritePlayerVolume(ev.PlayerID, ev.Volume)
	}
}

// postVolume publishes a volume value to every item bound to the player's
// volume operation.
func (b *Bridge) postVolume(playerID string, volume int) {
	payload := strconv.Itoa(volume)
	for _, item := range b.itemsFor(playerID, OpVolume) {
		b.postState(item, payload)
	}
}

// itemsFor collects the item names bound to a player operation across all
// providers, deduplicated.
func (b *Bridge) itemsFor(playerID string, op Operation) []string {
	seen := make(map[string]struct{})
	var items []string

	for _, provider := range b.providers {
		for _, item := range provider.ItemNamesForPlayerOperation(playerID, op) {
			if _, ok := seen[item]; ok {
				continue
			}
			seen[item] = struct{}{}
			items = append(items, item)
		}
	}

	return items
}

// postState publishes an item state update (QoS 1, retained so late
// subscribers see the current value).
func (b *Bridge) postState(itemName, payload string) {
	topic := mqtt.Topics{}.ItemState(itemName)
	if err := b.mqtt.Publish(topic, []byte(payload), 1, true); err != nil {
		b.logError("failed to publish item state", err)
		return
	}

	b.logDebug("published item state", "item", itemName, "state", payload)
}
