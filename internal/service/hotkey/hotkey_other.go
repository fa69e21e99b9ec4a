//go:build !windows && !(linux && x11)

package hotkey

import "go.uber.org/zap"

// Linux без тега x11 тоже сюда: глобального хоткея нет, только ручной режим.
const fallbackToManual = true

func newPlatform(Chord, *zap.SugaredLogger) (Listener, error) {
	return nil, errUnsupported
}
