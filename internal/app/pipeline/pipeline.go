package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"Buddy/internal/service/executor"
	"Buddy/internal/service/intent"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Сообщения обратной связи по стадиям.
const (
	MsgRecordingFailed     = "Recording failed"
	MsgNothingHeard        = "I didn't hear anything"
	MsgTranscriptionFailed = "Transcription failed"
	MsgIntentFailed        = "Intent failed"
	MsgUnknown             = "I don't know how to do that"
	MsgNotSure             = "I'm not sure what you meant"
	MsgCommandFailed       = "Command failed"
)

type Trigger interface {
	Wait(ctx context.Context) error
}

// Recorder при duration == 0 пишет до закрытия stop. Закрытие до начала записи
// тоже должно её завершить.
type Recorder interface {
	CaptureUntil(ctx context.Context, duration time.Duration, stop <-chan struct{}) ([]int16, error)
}

type Transcriber interface {
	Transcribe(ctx context.Context, samples []int16) (string, error)
}

type Classifier interface {
	Classify(ctx context.Context, transcript string) (intent.Target, error)
}

type Executor interface {
	Execute(ctx context.Context, t intent.Target) (executor.Result, error)
}

type Feedback interface {
	Success(ctx context.Context)
	Error(ctx context.Context, message string)
	Answer(ctx context.Context, text string)
}

// SpeechGate отсеивает записи без речи до распознавания.
type SpeechGate interface {
	HasSpeech(samples []int16) (bool, error)
}

type Deps struct {
	Trigger     Trigger
	Recorder    Recorder
	Transcriber Transcriber
	Classifier  Classifier
	Executor    Executor
	Feedback    Feedback
	Gate        SpeechGate // необязательный
}

type Config struct {
	// 0: запись до следующего нажатия хоткея
	CaptureDuration   time.Duration
	TranscribeTimeout time.Duration
	MinConfidence     float64
}

// Pipeline цикл «хоткей → запись → распознавание → намерение → действие».
// Циклы строго последовательны, ошибки стадий не останавливают цикл.
type Pipeline struct {
	cfg    Config
	deps   Deps
	logger *zap.SugaredLogger

	history *History

	pending           int // нажатия, принятые во время записи и ещё не обработанные
	consecutiveErrors int
}

func New(cfg Config, deps Deps, logger *zap.SugaredLogger) *Pipeline {
	return &Pipeline{cfg: cfg, deps: deps, logger: logger, history: NewHistory(historySize)}
}

const historySize = 20

// History последние циклы, от старых к новым.
func (p *Pipeline) History() []Outcome { return p.history.Snapshot() }

// Run работает до отмены контекста (возвращает nil) или закрытия источника хоткея (ошибка).
func (p *Pipeline) Run(ctx context.Context) error {
	p.logger.Infow("Pipeline started", "capture", p.cfg.CaptureDuration.String(), "min_confidence", p.cfg.MinConfidence)
	for {
		if p.pending > 0 {
			p.pending--
		} else if err := p.deps.Trigger.Wait(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("pipeline: hotkey: %w", err)
		}

		if err := p.cycle(ctx); err != nil {
			return err
		}
		if ctx.Err() != nil {
			return nil
		}
	}
}

// cycle один проход. Возвращает ошибку только если источник хоткея закрылся во время записи.
func (p *Pipeline) cycle(ctx context.Context) error {
	logger := p.logger.With("cycle", uuid.NewString()[:8])
	started := time.Now()
	out := Outcome{At: started}
	defer func() {
		if out.Message != "" {
			p.history.Add(out)
		}
	}()

	logger.Infow("Recording audio")
	samples, err := p.record(ctx)
	if err != nil {
		var closed *triggerClosedError
		if errors.As(err, &closed) {
			return fmt.Errorf("pipeline: hotkey: %w", closed.err)
		}
		if ctx.Err() != nil {
			return nil
		}
		p.fail(ctx, logger, &out, "capture", MsgRecordingFailed, err)
		return nil
	}

	if p.deps.Gate != nil {
		ok, err := p.deps.Gate.HasSpeech(samples)
		if err != nil {
			logger.Warnw("Voice activity check failed", "error", err)
		} else if !ok {
			logger.Infow("No speech detected by VAD", "samples", len(samples))
			p.fail(ctx, logger, &out, "vad", MsgNothingHeard, nil)
			return nil
		}
	}

	logger.Infow("Transcribing", "samples", len(samples))
	tctx := ctx
	if p.cfg.TranscribeTimeout > 0 {
		var cancel context.CancelFunc
		tctx, cancel = context.WithTimeout(ctx, p.cfg.TranscribeTimeout)
		defer cancel()
	}
	transcript, err := p.deps.Transcriber.Transcribe(tctx, samples)
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		p.fail(ctx, logger, &out, "transcribe", MsgTranscriptionFailed, err)
		return nil
	}
	transcript = strings.TrimSpace(transcript)
	if transcript == "" {
		p.fail(ctx, logger, &out, "transcribe", MsgNothingHeard, nil)
		return nil
	}
	out.Transcript = transcript
	logger.Infow("Heard", "transcript", transcript)

	target, err := p.deps.Classifier.Classify(ctx, transcript)
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		p.fail(ctx, logger, &out, "classify", MsgIntentFailed, err)
		return nil
	}
	out.Intent = target.String()
	logger.Infow("Intent", "kind", target.Kind.String(), "value", target.Value, "confidence", target.Confidence)

	if target.Kind == intent.KindUnknown {
		p.fail(ctx, logger, &out, "classify", MsgUnknown, nil)
		return nil
	}
	if target.Confidence < p.cfg.MinConfidence {
		logger.Infow("Confidence below threshold", "confidence", target.Confidence, "min", p.cfg.MinConfidence)
		p.fail(ctx, logger, &out, "classify", MsgNotSure, nil)
		return nil
	}

	res, err := p.deps.Executor.Execute(ctx, target)
	if err != nil {
		p.fail(ctx, logger, &out, "execute", MsgCommandFailed, err)
		return nil
	}

	p.consecutiveErrors = 0
	out.OK, out.Message = true, res.Message
	if res.Answer {
		logger.Infow("Answer", "text", res.Message, "took", time.Since(started).String())
		p.deps.Feedback.Answer(ctx, res.Message)
	} else {
		logger.Infow("Done", "result", res.Message, "confidence", fmt.Sprintf("%.2f", target.Confidence), "took", time.Since(started).String())
		p.deps.Feedback.Success(ctx)
	}
	return nil
}

func (p *Pipeline) fail(ctx context.Context, logger *zap.SugaredLogger, out *Outcome, stage, message string, err error) {
	p.consecutiveErrors++
	out.Message = message
	if err != nil {
		logger.Errorw("Stage failed", "stage", stage, "error", err, "consecutiveErrors", p.consecutiveErrors)
	} else {
		logger.Warnw("Stage rejected", "stage", stage, "reason", message, "consecutiveErrors", p.consecutiveErrors)
	}
	p.deps.Feedback.Error(ctx, message)
}

type triggerClosedError struct{ err error }

func (e *triggerClosedError) Error() string { return e.err.Error() }

type captureResult struct {
	samples []int16
	err     error
}

// record запускает запись в отдельной горутине. Без фиксированной длительности
// следующее нажатие хоткея останавливает запись.
func (p *Pipeline) record(ctx context.Context) ([]int16, error) {
	resCh := make(chan captureResult, 1)
	stop := make(chan struct{})
	go func() {
		s, err := p.deps.Recorder.CaptureUntil(ctx, p.cfg.CaptureDuration, stop)
		resCh <- captureResult{samples: s, err: err}
	}()

	if p.cfg.CaptureDuration > 0 {
		r := <-resCh
		return r.samples, r.err
	}

	waitCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	trig := make(chan error, 1)
	go func() { trig <- p.deps.Trigger.Wait(waitCtx) }()

	select {
	case r := <-resCh:
		// Запись закончилась сама; нажатие, успевшее прийти, не теряем
		cancel()
		if err := <-trig; err == nil {
			p.pending++
		}
		return r.samples, r.err
	case err := <-trig:
		close(stop)
		r := <-resCh
		if err != nil && ctx.Err() == nil {
			return nil, &triggerClosedError{err: err}
		}
		return r.samples, r.err
	}
}
