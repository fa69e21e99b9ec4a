package google

import (
	"context"
	"fmt"
	"strings"

	speech "cloud.google.com/go/speech/apiv1"
	speechpb "cloud.google.com/go/speech/apiv1/speechpb"
	"go.uber.org/zap"
)

// Client распознаёт запись через Google Cloud Speech-to-Text (синхронный Recognize).
// Учётные данные берутся из Application Default Credentials.
type Client struct {
	language string
	phrases  []string
	logger   *zap.SugaredLogger
}

func New(language string, phrases []string, logger *zap.SugaredLogger) *Client {
	if language == "" {
		language = "en-US"
	}
	return &Client{language: language, phrases: phrases, logger: logger}
}

func (c *Client) Transcribe(ctx context.Context, samples []int16) (string, error) {
	if len(samples) == 0 {
		return "", nil
	}

	sc, err := speech.NewClient(ctx)
	if err != nil {
		return "", fmt.Errorf("google stt: %w", err)
	}
	defer sc.Close()

	resp, err := sc.Recognize(ctx, c.request(samples))
	if err != nil {
		return "", fmt.Errorf("google stt: recognize: %w", err)
	}
	text := joinResults(resp.GetResults())
	c.logger.Debugw("Google STT replied", "results", len(resp.GetResults()), "text", text)
	return text, nil
}

func (c *Client) request(samples []int16) *speechpb.RecognizeRequest {
	cfg := &speechpb.RecognitionConfig{
		Encoding:        speechpb.RecognitionConfig_LINEAR16,
		SampleRateHertz: 16000,
		LanguageCode:    c.language,
		MaxAlternatives: 1,
	}
	// Известные команды повышают точность коротких фраз
	if len(c.phrases) > 0 {
		cfg.SpeechContexts = []*speechpb.SpeechContext{{Phrases: c.phrases}}
	}
	return &speechpb.RecognizeRequest{
		Config: cfg,
		Audio: &speechpb.RecognitionAudio{
			AudioSource: &speechpb.RecognitionAudio_Content{Content: pcmBytes(samples)},
		},
	}
}

func joinResults(results []*speechpb.SpeechRecognitionResult) string {
	var parts []string
	for _, r := range results {
		alts := r.GetAlternatives()
		if len(alts) == 0 {
			continue
		}
		if t := strings.TrimSpace(alts[0].GetTranscript()); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, " ")
}

func pcmBytes(samples []int16) []byte {
	b := make([]byte, 0, 2*len(samples))
	for _, s := range samples {
		b = append(b, byte(s), byte(s>>8))
	}
	return b
}
