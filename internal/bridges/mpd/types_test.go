package mpd

import (
	"errors"
	"testing"
)

func TestParseOperation(t *testing.T) {
	tests := []struct {
		input   string
		want    Operation
		wantErr bool
	}{
		{"play", OpPlay, false},
		{"PLAY", OpPlay, false},
		{"  pause ", OpPause, false},
		{"stop", OpStop, false},
		{"next", OpNext, false},
		{"prev", OpPrev, false},
		{"volume_increase", OpVolumeIncrease, false},
		{"Volume_Decrease", OpVolumeDecrease, false},
		{"volume", OpVolume, false},
		{"rewind", "", true},
		{"", "", true},
		{"play now", "", true},
	}

	for _, tt := range tests {
		got, err := ParseOperation(tt.input)
		if tt.wantErr {
			if !errors.Is(err, ErrUnknownOperation) {
				t.Errorf("ParseOperation(%q) error = %v, want ErrUnknownOperation", tt.input, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseOperation(%q) error = %v", tt.input, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseOperation(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestParseStatus(t *testing.T) {
	tests := []struct {
		name  string
		attrs map[string]string
		want  PlayerStatus
	}{
		{
			name:  "playing with volume",
			attrs: map[string]string{"state": "play", "volume": "80"},
			want:  PlayerStatus{State: StatePlay, Volume: 80},
		},
		{
			name:  "stopped",
			attrs: map[string]string{"state": "stop", "volume": "0"},
			want:  PlayerStatus{State: StateStop, Volume: 0},
		},
		{
			name:  "no mixer",
			attrs: map[string]string{"state": "pause"},
			want:  PlayerStatus{State: StatePause, Volume: -1},
		},
		{
			name:  "garbage volume",
			attrs: map[string]string{"state": "play", "volume": "loud"},
			want:  PlayerStatus{State: StatePlay, Volume: -1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := parseStatus(tt.attrs); got != tt.want {
				t.Errorf("parseStatus() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestPlayerConfig_Addr(t *testing.T) {
	cfg := PlayerConfig{ID: "kitchen", Host: "192.168.1.50", Port: 6601}
	if got := cfg.Addr(); got != "192.168.1.50:6601" {
		t.Errorf("Addr() = %q, want %q", got, "192.168.1.50:6601")
	}

	// Zero port falls back to the MPD default.
	cfg.Port = 0
	if got := cfg.Addr(); got != "192.168.1.50:6600" {
		t.Errorf("Addr() with zero port = %q, want %q", got, "192.168.1.50:6600")
	}
}
