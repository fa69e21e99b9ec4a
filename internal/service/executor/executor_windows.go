//go:build windows

package executor

import (
	"os/exec"
	"syscall"
	"unsafe"

	"github.com/lxn/win"
)

var (
	user32              = syscall.NewLazyDLL("user32.dll")
	powrprof            = syscall.NewLazyDLL("powrprof.dll")
	procLockWorkStation = user32.NewProc("LockWorkStation")
	procSetSuspendState = powrprof.NewProc("SetSuspendState")
)

// Один шаг медиаклавиши громкости меняет уровень на 2%.
const volumeStep = 2

type winPlatform struct{}

func nativePlatform() Platform { return winPlatform{} }

func (winPlatform) OpenPath(path string) error {
	ok := win.ShellExecute(0,
		syscall.StringToUTF16Ptr("open"),
		syscall.StringToUTF16Ptr(path),
		nil, nil, win.SW_SHOWNORMAL)
	if !ok {
		return syscall.GetLastError()
	}
	return nil
}

// Launch через cmd start, чтобы работали и пути, и имена из App Paths.
func (winPlatform) Launch(command string) error {
	cmd := exec.Command("cmd", "/C", "start", "", command)
	cmd.SysProcAttr = &syscall.SysProcAttr{HideWindow: true}
	return cmd.Start()
}

func (winPlatform) System(a Action) error {
	switch a.Kind {
	case VolumeMute:
		return pressKeys(win.VK_VOLUME_MUTE, 1)
	case VolumeUp:
		return pressKeys(win.VK_VOLUME_UP, 1)
	case VolumeDown:
		return pressKeys(win.VK_VOLUME_DOWN, 1)
	case VolumeSet:
		// Сначала в ноль, затем вверх до нужного уровня
		if err := pressKeys(win.VK_VOLUME_DOWN, 100/volumeStep); err != nil {
			return err
		}
		return pressKeys(win.VK_VOLUME_UP, a.Level/volumeStep)
	case Sleep:
		if r, _, err := procSetSuspendState.Call(0, 0, 0); r == 0 {
			return err
		}
		return nil
	case Shutdown:
		return exec.Command("shutdown", "/s", "/t", "0").Start()
	case Restart:
		return exec.Command("shutdown", "/r", "/t", "0").Start()
	case Lock:
		if r, _, err := procLockWorkStation.Call(); r == 0 {
			return err
		}
		return nil
	}
	return &UnsupportedActionError{Action: "unknown"}
}

func pressKeys(vk uint16, times int) error {
	if times <= 0 {
		return nil
	}
	inputs := make([]win.KEYBD_INPUT, 0, 2*times)
	for i := 0; i < times; i++ {
		inputs = append(inputs,
			win.KEYBD_INPUT{Type: win.INPUT_KEYBOARD, Ki: win.KEYBDINPUT{WVk: vk}},
			win.KEYBD_INPUT{Type: win.INPUT_KEYBOARD, Ki: win.KEYBDINPUT{WVk: vk, DwFlags: win.KEYEVENTF_KEYUP}},
		)
	}
	n := win.SendInput(uint32(len(inputs)), unsafe.Pointer(&inputs[0]), int32(unsafe.Sizeof(inputs[0])))
	if int(n) != len(inputs) {
		return syscall.GetLastError()
	}
	return nil
}
