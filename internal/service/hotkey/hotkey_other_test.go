//go:build !windows && !(linux && x11)

package hotkey

import (
	"errors"
	"testing"

	"go.uber.org/zap"
)

// Сборка без X11 не тянет библиотеку хоткеев и работает без дисплея.
func TestHeadlessBuildHasNoGlobalHotkey(t *testing.T) {
	chord, err := ParseChord("ctrl+alt+f9")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := newPlatform(chord, zap.NewNop().Sugar()); !errors.Is(err, errUnsupported) {
		t.Fatalf("newPlatform = %v, want errUnsupported", err)
	}
	if !fallbackToManual {
		t.Error("headless build must fall back to the manual trigger")
	}
}
