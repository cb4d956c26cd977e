package mqtt

import "testing"

func TestTopics_Builders(t *testing.T) {
	topics := Topics{}

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"ItemCommand", topics.ItemCommand("KitchenRadio"), "graylogic/command/mpd/KitchenRadio"},
		{"ItemCommands", topics.ItemCommands(), "graylogic/command/mpd/+"},
		{"ItemState", topics.ItemState("KitchenRadio"), "graylogic/state/mpd/KitchenRadio"},
		{"BridgeConfig", topics.BridgeConfig(), "graylogic/config/mpd"},
		{"BridgeHealth", topics.BridgeHealth(), "graylogic/health/mpd"},
	}

	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s = %q, want %q", tt.name, tt.got, tt.want)
		}
	}
}

func TestItemNameFromCommandTopic(t *testing.T) {
	tests := []struct {
		topic    string
		wantItem string
		wantOK   bool
	}{
		{"graylogic/command/mpd/KitchenRadio", "KitchenRadio", true},
		{"graylogic/command/mpd/", "", false},
		{"graylogic/command/mpd/a/b", "", false},
		{"graylogic/state/mpd/KitchenRadio", "", false},
		{"unrelated", "", false},
	}

	for _, tt := range tests {
		item, ok := ItemNameFromCommandTopic(tt.topic)
		if ok != tt.wantOK || item != tt.wantItem {
			t.Errorf("ItemNameFromCommandTopic(%q) = (%q, %v), want (%q, %v)",
				tt.topic, item, ok, tt.wantItem, tt.wantOK)
		}
	}
}
