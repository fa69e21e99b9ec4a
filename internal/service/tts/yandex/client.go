package yandex

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"Buddy/internal/config"
	"Buddy/internal/service/tts/player"
)

const defaultEndpoint = "https://tts.api.cloud.yandex.net/speech/v1/tts:synthesize"

// Client синтез речи через Yandex SpeechKit с воспроизведением результата.
type Client struct {
	cfg      config.YandexTTSConfig
	endpoint string
	http     *http.Client
	player   player.Player
}

func New(cfg config.YandexTTSConfig, p player.Player) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("yandex tts: empty API key (set YC_TTS_API_KEY in .env/ENV)")
	}
	return &Client{cfg: cfg, endpoint: defaultEndpoint, http: http.DefaultClient, player: p}, nil
}

func (c *Client) Synthesize(ctx context.Context, text string) error {
	format := strings.ToLower(c.cfg.Format)

	form := url.Values{}
	form.Set("text", text)
	form.Set("voice", c.cfg.Voice)
	form.Set("format", format)
	form.Set("speed", c.cfg.Speed)
	form.Set("emotion", strings.ToLower(c.cfg.Emotion))
	// 100: громкость сервиса по умолчанию, параметр не передаём
	if c.cfg.Volume > 0 && c.cfg.Volume < 100 {
		form.Set("volume", strconv.Itoa(c.cfg.Volume))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", "Api-Key "+c.cfg.APIKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}

	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if len(b) == 0 {
			b = []byte(resp.Status)
		}
		return fmt.Errorf("yandex tts error: status=%d, body=%s", resp.StatusCode, bytes.TrimSpace(b))
	}

	// Play закрывает тело ответа
	return c.player.Play(format, resp.Body)
}
