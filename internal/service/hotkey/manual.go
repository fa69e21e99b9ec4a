package hotkey

import (
	"bufio"
	"context"
	"io"
	"sync"
	"time"

	"github.com/eiannone/keyboard"
	"go.uber.org/zap"
)

// Manual имитирует хоткей нажатием Enter.
type Manual struct {
	label  string
	queue  *eventQueue
	logger *zap.SugaredLogger

	closeOnce sync.Once
	release   func() error
}

// NewManualReader считает срабатыванием каждую строку из r. Конец потока закрывает очередь.
func NewManualReader(label string, r io.Reader, logger *zap.SugaredLogger) *Manual {
	m := &Manual{label: label, queue: newEventQueue(), logger: logger}
	go func() {
		defer m.queue.close()
		sc := bufio.NewScanner(r)
		for sc.Scan() {
			m.queue.push(Event{At: time.Now()})
		}
	}()
	return m
}

// NewManualKeyboard читает клавиши напрямую из терминала. Ошибка, если stdin не терминал.
func NewManualKeyboard(label string, interrupt func(), logger *zap.SugaredLogger) (*Manual, error) {
	keys, err := keyboard.GetKeys(8)
	if err != nil {
		return nil, err
	}
	m := &Manual{label: label, queue: newEventQueue(), logger: logger, release: keyboard.Close}
	go func() {
		defer m.queue.close()
		for ev := range keys {
			if ev.Err != nil {
				logger.Warnw("Keyboard read failed", "error", ev.Err)
				continue
			}
			switch ev.Key {
			case keyboard.KeyEnter:
				m.queue.push(Event{At: time.Now()})
			case keyboard.KeyCtrlC:
				if interrupt != nil {
					interrupt()
				}
				return
			}
		}
	}()
	return m, nil
}

func (m *Manual) Wait(ctx context.Context) error {
	if m.queue.len() == 0 {
		m.logger.Infow("Press Enter to simulate hotkey", "hotkey", m.label)
	}
	_, err := m.queue.pop(ctx)
	return err
}

func (m *Manual) Close() error {
	var err error
	m.closeOnce.Do(func() {
		if m.release != nil {
			err = m.release()
		}
		m.queue.close()
	})
	return err
}
