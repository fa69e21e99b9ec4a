//go:build windows

package hotkey

import (
	"context"
	"errors"
	"runtime"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/lxn/win"
	"go.uber.org/zap"
)

// Обёртки для функций, которых нет в lxn/win
var (
	user32                 = syscall.NewLazyDLL("user32.dll")
	kernel32               = syscall.NewLazyDLL("kernel32.dll")
	procRegisterHotKey     = user32.NewProc("RegisterHotKey")
	procUnregisterHotKey   = user32.NewProc("UnregisterHotKey")
	procPostThreadMessageW = user32.NewProc("PostThreadMessageW")
	procGetCurrentThreadId = kernel32.NewProc("GetCurrentThreadId")
)

const (
	modNoRepeat      = 0x4000
	fallbackToManual = false
)

var nextID atomic.Int32

// winListener держит регистрацию хоткея на выделенном системном потоке:
// RegisterHotKey привязывает комбинацию к очереди сообщений потока, который её вызвал.
type winListener struct {
	chord    Chord
	id       int32
	threadID uint32
	queue    *eventQueue
	done     chan struct{}
	logger   *zap.SugaredLogger

	closeOnce sync.Once
	closeErr  error
}

type readyMsg struct {
	threadID uint32
	err      error
}

func newPlatform(chord Chord, logger *zap.SugaredLogger) (Listener, error) {
	l := &winListener{
		chord:  chord,
		id:     nextID.Add(1),
		queue:  newEventQueue(),
		done:   make(chan struct{}),
		logger: logger,
	}
	ready := make(chan readyMsg, 1)
	go l.run(ready)

	// Ждём только регистрацию, сам цикл сообщений живёт в своём потоке
	r := <-ready
	if r.err != nil {
		<-l.done
		return nil, &RegisterError{Chord: chord, Err: r.err}
	}
	l.threadID = r.threadID
	return l, nil
}

func (l *winListener) run(ready chan<- readyMsg) {
	// WinAPI должен жить в закреплённом системном потоке
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	defer close(l.done)
	defer l.queue.close()

	// Очередь сообщений потока создаётся первым вызовом USER32; без неё PostThreadMessage не дойдёт
	var msg win.MSG
	win.PeekMessage(&msg, 0, 0, 0, win.PM_NOREMOVE)

	tid, _, _ := procGetCurrentThreadId.Call()
	if err := registerHotKey(l.id, uint32(l.chord.Mods)|modNoRepeat, l.chord.VK); err != nil {
		ready <- readyMsg{err: err}
		return
	}
	defer func() {
		if err := unregisterHotKey(l.id); err != nil {
			l.logger.Warnw("UnregisterHotKey failed", "chord", l.chord.String(), "error", err)
		}
	}()
	ready <- readyMsg{threadID: uint32(tid)}

	for {
		r := win.GetMessage(&msg, 0, 0, 0)
		if r == 0 || r == -1 { // WM_QUIT или ошибка
			return
		}
		if msg.Message == win.WM_HOTKEY && int32(msg.WParam) == l.id {
			l.queue.push(Event{At: time.Now()})
		}
	}
}

func (l *winListener) Wait(ctx context.Context) error {
	_, err := l.queue.pop(ctx)
	return err
}

// Close отправляет WM_QUIT в поток хоткея и ждёт его выхода (и снятия регистрации).
func (l *winListener) Close() error {
	l.closeOnce.Do(func() {
		// рабочий поток уже вышел, слать WM_QUIT некому
		select {
		case <-l.done:
			return
		default:
		}
		var err error
		for attempt := 0; attempt < 5; attempt++ {
			if err = postQuit(l.threadID); err == nil {
				break
			}
			time.Sleep(10 * time.Millisecond)
		}
		if err != nil {
			l.closeErr = err
			return
		}
		<-l.done
	})
	return l.closeErr
}

func registerHotKey(id int32, modifiers, vk uint32) error {
	if err := procRegisterHotKey.Find(); err != nil {
		return err
	}
	r, _, err := procRegisterHotKey.Call(0, uintptr(id), uintptr(modifiers), uintptr(vk))
	if r == 0 {
		return callErr(err)
	}
	return nil
}

func unregisterHotKey(id int32) error {
	r, _, err := procUnregisterHotKey.Call(0, uintptr(id))
	if r == 0 {
		return callErr(err)
	}
	return nil
}

func postQuit(threadID uint32) error {
	r, _, err := procPostThreadMessageW.Call(uintptr(threadID), win.WM_QUIT, 0, 0)
	if r == 0 {
		return callErr(err)
	}
	return nil
}

func callErr(err error) error {
	var errno syscall.Errno
	if errors.As(err, &errno) && errno == 0 {
		return errors.New("unknown error")
	}
	return err
}
