//go:build !windows

package executor

import (
	"fmt"
	"os/exec"
	"runtime"
)

// unixPlatform: xdg-open/open для файлов, shell для приложений, системные утилиты для остального.
type unixPlatform struct {
	goos string
}

func nativePlatform() Platform { return unixPlatform{goos: runtime.GOOS} }

func (p unixPlatform) OpenPath(path string) error {
	if p.goos == "darwin" {
		return exec.Command("open", path).Start()
	}
	return exec.Command("xdg-open", path).Start()
}

func (unixPlatform) Launch(command string) error {
	return exec.Command("sh", "-c", command).Start()
}

func (p unixPlatform) System(a Action) error {
	argv, err := p.systemCommand(a)
	if err != nil {
		return err
	}
	return exec.Command(argv[0], argv[1:]...).Run()
}

func (p unixPlatform) systemCommand(a Action) ([]string, error) {
	if p.goos == "darwin" {
		switch a.Kind {
		case VolumeMute:
			return []string{"osascript", "-e", "set volume output muted not (output muted of (get volume settings))"}, nil
		case VolumeUp:
			return []string{"osascript", "-e", "set volume output volume ((output volume of (get volume settings)) + 6)"}, nil
		case VolumeDown:
			return []string{"osascript", "-e", "set volume output volume ((output volume of (get volume settings)) - 6)"}, nil
		case VolumeSet:
			return []string{"osascript", "-e", fmt.Sprintf("set volume output volume %d", a.Level)}, nil
		case Sleep:
			return []string{"pmset", "sleepnow"}, nil
		case Shutdown:
			return []string{"osascript", "-e", `tell app "System Events" to shut down`}, nil
		case Restart:
			return []string{"osascript", "-e", `tell app "System Events" to restart`}, nil
		case Lock:
			return []string{"pmset", "displaysleepnow"}, nil
		}
		return nil, &UnsupportedActionError{Action: fmt.Sprint(a.Kind)}
	}

	switch a.Kind {
	case VolumeMute:
		return []string{"pactl", "set-sink-mute", "@DEFAULT_SINK@", "toggle"}, nil
	case VolumeUp:
		return []string{"pactl", "set-sink-volume", "@DEFAULT_SINK@", "+5%"}, nil
	case VolumeDown:
		return []string{"pactl", "set-sink-volume", "@DEFAULT_SINK@", "-5%"}, nil
	case VolumeSet:
		return []string{"pactl", "set-sink-volume", "@DEFAULT_SINK@", fmt.Sprintf("%d%%", a.Level)}, nil
	case Sleep:
		return []string{"systemctl", "suspend"}, nil
	case Shutdown:
		return []string{"systemctl", "poweroff"}, nil
	case Restart:
		return []string{"systemctl", "reboot"}, nil
	case Lock:
		return []string{"loginctl", "lock-session"}, nil
	}
	return nil, &UnsupportedActionError{Action: fmt.Sprint(a.Kind)}
}
