//go:build !windows

package executor

import (
	"strings"
	"testing"
)

func TestSystemCommand(t *testing.T) {
	linux := unixPlatform{goos: "linux"}
	argv, err := linux.systemCommand(Action{Kind: VolumeSet, Level: 30})
	if err != nil {
		t.Fatal(err)
	}
	if got := strings.Join(argv, " "); got != "pactl set-sink-volume @DEFAULT_SINK@ 30%" {
		t.Errorf("linux volume_set = %q", got)
	}

	mac := unixPlatform{goos: "darwin"}
	argv, err = mac.systemCommand(Action{Kind: Sleep})
	if err != nil {
		t.Fatal(err)
	}
	if argv[0] != "pmset" {
		t.Errorf("darwin sleep = %v", argv)
	}

	for k := VolumeMute; k <= Lock; k++ {
		if _, err := linux.systemCommand(Action{Kind: k}); err != nil {
			t.Errorf("linux kind %d: %v", k, err)
		}
	}
}
