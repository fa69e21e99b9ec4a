package notify

import (
	"context"
	"sync"
	"time"

	"github.com/gen2brain/beeep"
	"go.uber.org/zap"
)

// Mode режим обратной связи.
type Mode string

const (
	ModeSound Mode = "sound"
	ModeTTS   Mode = "tts"
	ModeBoth  Mode = "both"
	ModeNone  Mode = "none"
)

// ParseMode неизвестное значение считается tts.
func ParseMode(s string) Mode {
	switch Mode(s) {
	case ModeSound, ModeTTS, ModeBoth, ModeNone:
		return Mode(s)
	}
	return ModeTTS
}

// Speaker озвучивает текст (tts.Synthesizer).
type Speaker interface {
	Synthesize(ctx context.Context, text string) error
}

const (
	appName    = "Buddy"
	successMsg = "Ok"
	queueSize  = 8
	jobTimeout = 30 * time.Second
)

type job struct {
	sound func(ctx context.Context) error
	text  string
	toast string
}

// Feedback звук, голос и всплывающие уведомления. Вызовы не блокируют конвейер:
// задания выполняются по одному в фоновой горутине, при переполнении очереди отбрасываются.
type Feedback struct {
	mode    Mode
	sounds  *SoundNotifier
	speaker Speaker
	notify  bool
	toast   func(title, message string) error
	logger  *zap.SugaredLogger

	jobs      chan job
	done      chan struct{}
	mu        sync.Mutex
	closed    bool
	closeOnce sync.Once
}

// New: speaker может быть nil, тогда голосовая часть пропускается.
func New(mode Mode, sounds *SoundNotifier, speaker Speaker, notify bool, logger *zap.SugaredLogger) *Feedback {
	f := &Feedback{
		mode:    mode,
		sounds:  sounds,
		speaker: speaker,
		notify:  notify,
		toast:   func(title, message string) error { return beeep.Notify(title, message, "") },
		logger:  logger,
		jobs:    make(chan job, queueSize),
		done:    make(chan struct{}),
	}
	go f.run()
	return f
}

// Success звук успеха и/или «Ok».
func (f *Feedback) Success(ctx context.Context) {
	f.enqueue(ctx, job{sound: f.sounds.PlaySuccess, text: successMsg})
}

// Error звук ошибки и/или сообщение голосом; при notify=true ещё и всплывающее уведомление.
func (f *Feedback) Error(ctx context.Context, message string) {
	j := job{sound: f.sounds.PlayError, text: message}
	if f.notify {
		j.toast = message
	}
	f.enqueue(ctx, j)
}

// Answer озвучивает ответ ассистента; в режиме sound играет звук успеха.
func (f *Feedback) Answer(ctx context.Context, text string) {
	j := job{sound: f.sounds.PlaySuccess, text: text}
	if f.notify {
		j.toast = text
	}
	f.enqueue(ctx, j)
}

func (f *Feedback) enqueue(ctx context.Context, j job) {
	if f.mode == ModeNone && j.toast == "" {
		return
	}
	// Остановка приложения: новые звуки уже не нужны
	if ctx.Err() != nil {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return
	}
	select {
	case f.jobs <- j:
	default:
		f.logger.Warnw("Feedback queue full, dropping", "text", j.text)
	}
}

func (f *Feedback) run() {
	defer close(f.done)
	for j := range f.jobs {
		f.perform(j)
	}
}

func (f *Feedback) perform(j job) {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	if j.toast != "" {
		if err := f.toast(appName, j.toast); err != nil {
			f.logger.Debugw("Desktop notification failed", "error", err)
		}
	}
	if (f.mode == ModeSound || f.mode == ModeBoth) && f.sounds != nil {
		// Ошибки уже залогированы в SoundNotifier
		_ = j.sound(ctx)
	}
	if (f.mode == ModeTTS || f.mode == ModeBoth) && f.speaker != nil && j.text != "" {
		if err := f.speaker.Synthesize(ctx, j.text); err != nil {
			f.logger.Warnw("Speech feedback failed", "text", j.text, "error", err)
		}
	}
}

// Close дожидается выполнения поставленных заданий.
func (f *Feedback) Close() error {
	f.closeOnce.Do(func() {
		f.mu.Lock()
		f.closed = true
		close(f.jobs)
		f.mu.Unlock()
	})
	<-f.done
	return nil
}
