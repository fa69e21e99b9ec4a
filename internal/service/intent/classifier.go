package intent

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Transport отправляет готовый промпт модели и возвращает её текстовый ответ.
type Transport interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Prober проверка готовности удалённой модели.
type Prober interface {
	Ready(ctx context.Context) error
}

// TransportError ошибка сети/HTTP при обращении к классификатору.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string { return "intent: transport: " + e.Err.Error() }
func (e *TransportError) Unwrap() error { return e.Err }

type Classifier struct {
	transport Transport
	mappings  Mappings
	timeout   time.Duration
	logger    *zap.SugaredLogger
}

func NewClassifier(t Transport, m Mappings, timeout time.Duration, logger *zap.SugaredLogger) *Classifier {
	return &Classifier{transport: t, mappings: m, timeout: timeout, logger: logger}
}

// Classify: промпт → модель → разбор → проверка цели.
// Пустая расшифровка сразу даёт Unknown без запроса.
func (c *Classifier) Classify(ctx context.Context, transcript string) (Target, error) {
	if strings.TrimSpace(transcript) == "" {
		return Unknown(0), nil
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	start := time.Now()
	raw, err := c.transport.Complete(ctx, BuildPrompt(transcript, c.mappings))
	if err != nil {
		return Target{}, &TransportError{Err: err}
	}
	c.logger.Debugw("Classifier replied", "raw", raw, "elapsed", time.Since(start))

	target, err := Parse(raw)
	if err != nil {
		return Target{}, err
	}
	if err := Validate(target, c.mappings); err != nil {
		return Target{}, err
	}
	return target, nil
}

// WaitReady опрашивает модель до первого успеха, не больше retries раз.
func WaitReady(ctx context.Context, p Prober, retries int, interval time.Duration, logger *zap.SugaredLogger) error {
	if retries < 1 {
		retries = 1
	}
	var lastErr error
	for attempt := 1; attempt <= retries; attempt++ {
		if lastErr = p.Ready(ctx); lastErr == nil {
			logger.Infow("Classifier ready", "attempt", attempt)
			return nil
		}
		logger.Warnw("Classifier not ready", "attempt", attempt, "retries", retries, "error", lastErr)
		if attempt == retries {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(interval):
		}
	}
	return fmt.Errorf("intent: classifier not ready after %d attempts: %w", retries, lastErr)
}
