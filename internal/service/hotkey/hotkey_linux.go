//go:build linux && x11

package hotkey

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	xhotkey "golang.design/x/hotkey"
)

// Сборка с -tags x11: golang.design/x/hotkey падает в init без дисплея.
// Без X11 (Wayland, ssh) регистрация не пройдёт, тогда работаем в ручном режиме.
const fallbackToManual = true

// x11Listener глобальный хоткей через X11 (golang.design/x/hotkey).
type x11Listener struct {
	chord  Chord
	hk     *xhotkey.Hotkey
	queue  *eventQueue
	stop   chan struct{}
	done   chan struct{}
	logger *zap.SugaredLogger

	closeOnce sync.Once
	closeErr  error
}

func newPlatform(chord Chord, logger *zap.SugaredLogger) (Listener, error) {
	key, err := x11Key(chord.Key)
	if err != nil {
		return nil, err
	}
	hk := xhotkey.New(x11Mods(chord.Mods), key)
	if err := hk.Register(); err != nil {
		return nil, &RegisterError{Chord: chord, Err: err}
	}

	l := &x11Listener{
		chord:  chord,
		hk:     hk,
		queue:  newEventQueue(),
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
		logger: logger,
	}
	keydown := hk.Keydown()
	go func() {
		defer close(l.done)
		for {
			select {
			case <-l.stop:
				return
			case _, ok := <-keydown:
				if !ok {
					return
				}
				l.queue.push(Event{At: time.Now()})
			}
		}
	}()
	return l, nil
}

func (l *x11Listener) Wait(ctx context.Context) error {
	_, err := l.queue.pop(ctx)
	return err
}

func (l *x11Listener) Close() error {
	l.closeOnce.Do(func() {
		close(l.stop)
		<-l.done
		l.closeErr = l.hk.Unregister()
		l.queue.close()
	})
	return l.closeErr
}

func x11Mods(m Modifier) []xhotkey.Modifier {
	var mods []xhotkey.Modifier
	if m&ModCtrl != 0 {
		mods = append(mods, xhotkey.ModCtrl)
	}
	if m&ModShift != 0 {
		mods = append(mods, xhotkey.ModShift)
	}
	if m&ModAlt != 0 {
		mods = append(mods, xhotkey.Mod1)
	}
	if m&ModWin != 0 {
		mods = append(mods, xhotkey.Mod4)
	}
	return mods
}

// x11Key переводит имя клавиши в X11 keysym: буквы и цифры совпадают с ASCII в нижнем регистре,
// F1 = 0xffbe и далее подряд.
func x11Key(name string) (xhotkey.Key, error) {
	switch name {
	case "space":
		return xhotkey.KeySpace, nil
	case "enter":
		return xhotkey.KeyReturn, nil
	}
	if len(name) == 1 {
		return xhotkey.Key(name[0]), nil
	}
	var n int
	if _, err := fmt.Sscanf(name, "f%d", &n); err == nil && n >= 1 && n <= 24 {
		return xhotkey.Key(0xffbe + n - 1), nil
	}
	return 0, fmt.Errorf("hotkey: key %q has no X11 mapping", name)
}
