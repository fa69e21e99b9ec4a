// Package stt выбирает движок распознавания речи по конфигурации.
package stt

import (
	"context"
	"fmt"
	"time"

	"Buddy/internal/config"
	"Buddy/internal/service/stt/google"
	"Buddy/internal/service/stt/whisper"
	"Buddy/internal/service/stt/yandex"

	"go.uber.org/zap"
)

// Transcriber превращает запись 16 кГц моно в текст. Пустая запись даёт пустую строку.
type Transcriber interface {
	Transcribe(ctx context.Context, samples []int16) (string, error)
}

// New создаёт движок transcription.engine. Начальная подсказка собирается из ключей команд.
func New(cfg *config.Config, logger *zap.SugaredLogger) (Transcriber, error) {
	tc := cfg.Transcription
	timeout := time.Duration(tc.TimeoutSecs) * time.Second
	logger = logger.With("engine", tc.Engine)

	switch tc.Engine {
	case "", "whisper-cli":
		return whisper.NewCLI(whisper.CLIConfig{
			Binary:    tc.Binary,
			ModelPath: tc.ModelPath,
			Language:  tc.Language,
			Threads:   tc.Threads,
			Prompt:    cfg.TranscriptionPrompt(),
			ShowLog:   cfg.Logging.WhisperLog,
		}, logger), nil
	case "whisper-http":
		if tc.ServerURL == "" {
			return nil, fmt.Errorf("stt: transcription.server_url is required for %s", tc.Engine)
		}
		return whisper.NewServer(tc.ServerURL, tc.Language, cfg.TranscriptionPrompt(), timeout, logger), nil
	case "yandex":
		yc, err := yandex.New(yandex.Config{
			Endpoint:   tc.ServerURL,
			APIKey:     tc.YandexKey,
			Language:   tc.Language,
			SampleRate: 16000,
		}, logger)
		if err != nil {
			return nil, err
		}
		return yc, nil
	case "google":
		return google.New(tc.Language, cfg.TranscriptionPhrases(), logger), nil
	default:
		return nil, fmt.Errorf("stt: unknown engine %q", tc.Engine)
	}
}
