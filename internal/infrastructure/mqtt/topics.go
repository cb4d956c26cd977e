package mqtt

import "fmt"

// Topic layout for the MPD bridge, following the Gray Logic flat scheme:
// graylogic/{category}/mpd/{item_or_id}.
const (
	// TopicPrefix is the base for all Gray Logic topics.
	TopicPrefix = "graylogic"

	// protocol identifies this bridge in the topic hierarchy.
	protocol = "mpd"
)

// Topics provides builders for the MPD bridge's MQTT topics.
// Using these helpers ensures consistent topic naming across the codebase.
//
//	topics := mqtt.Topics{}
//	stateTopic := topics.ItemState("KitchenRadio")
//	// Returns: "graylogic/state/mpd/KitchenRadio"
type Topics struct{}

// ItemCommand returns the topic on which commands for a single item arrive.
//
// Example: graylogic/command/mpd/KitchenRadio
func (Topics) ItemCommand(itemName string) string {
	return fmt.Sprintf("%s/command/%s/%s", TopicPrefix, protocol, itemName)
}

// ItemCommands returns the wildcard subscription covering all item commands.
//
// Example: graylogic/command/mpd/+
func (Topics) ItemCommands() string {
	return fmt.Sprintf("%s/command/%s/+", TopicPrefix, protocol)
}

// ItemState returns the topic on which state updates for an item are posted.
//
// Example: graylogic/state/mpd/KitchenRadio
func (Topics) ItemState(itemName string) string {
	return fmt.Sprintf("%s/state/%s/%s", TopicPrefix, protocol, itemName)
}

// BridgeConfig returns the topic on which runtime configuration snapshots
// arrive (JSON object of flat player keys).
//
// Example: graylogic/config/mpd
func (Topics) BridgeConfig() string {
	return fmt.Sprintf("%s/config/%s", TopicPrefix, protocol)
}

// BridgeHealth returns the topic for bridge health status and LWT.
//
// Example: graylogic/health/mpd
func (Topics) BridgeHealth() string {
	return fmt.Sprintf("%s/health/%s", TopicPrefix, protocol)
}

// ItemNameFromCommandTopic extracts the item name from an item command topic.
// Returns false when the topic does not match the command scheme.
func ItemNameFromCommandTopic(topic string) (string, bool) {
	prefix := fmt.Sprintf("%s/command/%s/", TopicPrefix, protocol)
	if len(topic) <= len(prefix) || topic[:len(prefix)] != prefix {
		return "", false
	}
	item := topic[len(prefix):]
	for i := 0; i < len(item); i++ {
		if item[i] == '/' {
			return "", false
		}
	}
	return item, true
}
