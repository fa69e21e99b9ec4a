package hotkey

import (
	"context"
	"errors"
	"fmt"
	"os"

	"go.uber.org/zap"
)

var ErrChannelClosed = errors.New("hotkey: event channel closed")

var errUnsupported = errors.New("hotkey: global hotkeys are not supported on this platform")

// RegisterError ОС отказала в регистрации комбинации (например, она уже занята).
type RegisterError struct {
	Chord Chord
	Err   error
}

func (e *RegisterError) Error() string {
	return fmt.Sprintf("hotkey: register %s: %v", e.Chord, e.Err)
}
func (e *RegisterError) Unwrap() error { return e.Err }

// Listener источник срабатываний хоткея.
type Listener interface {
	// Wait блокирует до следующего срабатывания. ErrChannelClosed, если источник завершился.
	Wait(ctx context.Context) error
	// Close снимает регистрацию и дожидается завершения рабочего потока. Повторный вызов безопасен.
	Close() error
}

type Config struct {
	Key    string
	Manual bool
	// Interrupt вызывается на Ctrl+C в ручном режиме: консоль в сыром режиме не шлёт SIGINT.
	Interrupt func()
}

// New регистрирует глобальную комбинацию. Там, где глобальные хоткеи недоступны,
// переключается на ручной режим (Enter в консоли). На Windows ошибка регистрации фатальна.
func New(cfg Config, logger *zap.SugaredLogger) (Listener, error) {
	chord, err := ParseChord(cfg.Key)
	if err != nil {
		return nil, err
	}
	if !cfg.Manual {
		l, err := newPlatform(chord, logger)
		if err == nil {
			logger.Infow("Hotkey registered", "chord", chord.String())
			return l, nil
		}
		if !fallbackToManual {
			return nil, err
		}
		logger.Warnw("Global hotkey unavailable, using manual trigger", "chord", chord.String(), "error", err)
	}
	return NewManual(chord.String(), cfg.Interrupt, logger), nil
}

// NewManual ручной триггер: клавиатура в сыром режиме, если stdin терминал, иначе построчное чтение stdin.
func NewManual(label string, interrupt func(), logger *zap.SugaredLogger) Listener {
	if m, err := NewManualKeyboard(label, interrupt, logger); err == nil {
		return m
	}
	return NewManualReader(label, os.Stdin, logger)
}
