package hotkey

import (
	"errors"
	"testing"
)

func TestParseChord(t *testing.T) {
	tests := []struct {
		in   string
		mods Modifier
		key  string
		vk   uint32
	}{
		{"ctrl+alt+b", ModCtrl | ModAlt, "b", 0x42},
		{"Control + Shift + SPACE", ModCtrl | ModShift, "space", 0x20},
		{"win+enter", ModWin, "enter", 0x0D},
		{"alt+7", ModAlt, "7", 0x37},
		{"ctrl+f1", ModCtrl, "f1", 0x70},
		{"shift+f24", ModShift, "f24", 0x87},
		{"z", 0, "z", 0x5A},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			c, err := ParseChord(tt.in)
			if err != nil {
				t.Fatalf("ParseChord: %v", err)
			}
			if c.Mods != tt.mods || c.Key != tt.key || c.VK != tt.vk {
				t.Errorf("got %+v, want mods=%#x key=%s vk=%#x", c, tt.mods, tt.key, tt.vk)
			}
		})
	}
}

func TestParseChordErrors(t *testing.T) {
	for _, in := range []string{"", "ctrl+alt", "ctrl+hyper+b", "ctrl+f25", "ctrl+f01", "a+b", "ctrl+!"} {
		_, err := ParseChord(in)
		var pe *ParseError
		if !errors.As(err, &pe) {
			t.Errorf("ParseChord(%q): expected ParseError, got %v", in, err)
		}
	}
}

func TestChordString(t *testing.T) {
	c, _ := ParseChord("b+alt+ctrl")
	if got := c.String(); got != "ctrl+alt+b" {
		t.Errorf("String = %q", got)
	}
}
