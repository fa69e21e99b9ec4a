package tts

import (
	"context"
	"fmt"

	"Buddy/internal/config"
	"Buddy/internal/service/tts/gemini"
	"Buddy/internal/service/tts/google"
	"Buddy/internal/service/tts/player"
	"Buddy/internal/service/tts/system"
	"Buddy/internal/service/tts/yandex"

	"go.uber.org/zap"
)

// Synthesizer озвучивает текст и возвращается после окончания воспроизведения.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) error
}

// New выбирает провайдера по feedback.tts_service. Пустое значение: голос ОС.
func New(cfg *config.Config, p player.Player, logger *zap.SugaredLogger) (Synthesizer, error) {
	switch cfg.Feedback.TTSService {
	case "", "system":
		return system.New(cfg.Feedback.TTSVoice, logger), nil
	case "google":
		return google.New(cfg.GoogleTTS, p, logger), nil
	case "yandex":
		y, err := yandex.New(cfg.YandexTTS, p)
		if err != nil {
			return nil, err
		}
		return y, nil
	case "gemini":
		return gemini.New(cfg.GeminiTTS, p, logger), nil
	default:
		return nil, fmt.Errorf("tts: unknown service %q", cfg.Feedback.TTSService)
	}
}
