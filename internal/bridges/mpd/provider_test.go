package mpd

import (
	"errors"
	"sort"
	"testing"
)

func testBindingTable(t *testing.T) *BindingTable {
	t.Helper()

	table, err := NewBindingTable([]BindingSpec{
		{Item: "KitchenMusic", Command: "ON", Player: "kitchen", Operation: "play"},
		{Item: "KitchenMusic", Command: "OFF", Player: "kitchen", Operation: "stop"},
		{Item: "KitchenVolume", Command: "UP", Player: "kitchen", Operation: "volume_increase"},
		{Item: "KitchenVolume", Command: "DOWN", Player: "kitchen", Operation: "volume_decrease"},
		{Item: "KitchenVolumeLevel", Command: "REFRESH", Player: "kitchen", Operation: "volume"},
		{Item: "BedroomMusic", Command: "ON", Player: "bedroom", Operation: "play"},
	})
	if err != nil {
		t.Fatalf("NewBindingTable() error = %v", err)
	}
	return table
}

func TestBindingTable_PlayerCommand(t *testing.T) {
	table := testBindingTable(t)

	tests := []struct {
		item    string
		command string
		want    string
		wantOK  bool
	}{
		{"KitchenMusic", "ON", "kitchen:play", true},
		{"KitchenMusic", "on", "kitchen:play", true}, // case-insensitive command
		{"KitchenMusic", "OFF", "kitchen:stop", true},
		{"KitchenVolume", "UP", "kitchen:volume_increase", true},
		{"BedroomMusic", "ON", "bedroom:play", true},
		{"KitchenMusic", "DIM", "", false},
		{"UnknownItem", "ON", "", false},
	}

	for _, tt := range tests {
		got, ok := table.PlayerCommand(tt.item, tt.command)
		if ok != tt.wantOK {
			t.Errorf("PlayerCommand(%q, %q) ok = %v, want %v", tt.item, tt.command, ok, tt.wantOK)
			continue
		}
		if got != tt.want {
			t.Errorf("PlayerCommand(%q, %q) = %q, want %q", tt.item, tt.command, got, tt.want)
		}
	}
}

func TestBindingTable_ItemNamesForPlayerOperation(t *testing.T) {
	table := testBindingTable(t)

	items := table.ItemNamesForPlayerOperation("kitchen", OpPlay)
	if len(items) != 1 || items[0] != "KitchenMusic" {
		t.Errorf("ItemNamesForPlayerOperation(kitchen, play) = %v, want [KitchenMusic]", items)
	}

	if items := table.ItemNamesForPlayerOperation("bedroom", OpStop); len(items) != 0 {
		t.Errorf("ItemNamesForPlayerOperation(bedroom, stop) = %v, want none", items)
	}

	if items := table.ItemNamesForPlayerOperation("garage", OpPlay); len(items) != 0 {
		t.Errorf("ItemNamesForPlayerOperation(garage, play) = %v, want none", items)
	}
}

func TestBindingTable_MultipleItemsSameOperation(t *testing.T) {
	table, err := NewBindingTable([]BindingSpec{
		{Item: "WallSwitch", Command: "ON", Player: "kitchen", Operation: "play"},
		{Item: "PanelButton", Command: "ON", Player: "kitchen", Operation: "play"},
	})
	if err != nil {
		t.Fatalf("NewBindingTable() error = %v", err)
	}

	items := table.ItemNamesForPlayerOperation("kitchen", OpPlay)
	sort.Strings(items)
	if len(items) != 2 || items[0] != "PanelButton" || items[1] != "WallSwitch" {
		t.Errorf("items = %v, want [PanelButton WallSwitch]", items)
	}
}

func TestNewBindingTable_Validation(t *testing.T) {
	tests := []struct {
		name string
		spec BindingSpec
	}{
		{"missing item", BindingSpec{Command: "ON", Player: "kitchen", Operation: "play"}},
		{"missing command", BindingSpec{Item: "X", Player: "kitchen", Operation: "play"}},
		{"missing player", BindingSpec{Item: "X", Command: "ON", Operation: "play"}},
		{"bad operation", BindingSpec{Item: "X", Command: "ON", Player: "kitchen", Operation: "rewind"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewBindingTable([]BindingSpec{tt.spec}); !errors.Is(err, ErrInvalidBinding) {
				t.Errorf("NewBindingTable() error = %v, want ErrInvalidBinding", err)
			}
		})
	}
}
