package yandex

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const defaultEndpoint = "wss://stt.api.cloud.yandex.net/speech/v1/stt:streaming"

// Config настройки клиента Yandex STT Streaming (WebSocket).
type Config struct {
	Endpoint   string // по умолчанию wss://stt.api.cloud.yandex.net/speech/v1/stt:streaming
	APIKey     string // Api-Key из окружения (YC_STT_API_KEY)
	Language   string // например, "ru-RU"
	SampleRate int
	ChunkMS    int // длительность бинарного фрейма, мс

	// Необязательный стартовый JSON вместо минимальной конфигурации.
	StartJSON string
	// Сигнал конца аудио; если пусто, отправляется только websocket.CloseMessage.
	EndJSON string

	// Сколько ждать финальных гипотез после отправки всего аудио.
	FinalTimeout time.Duration
}

// Result единица результата распознавания.
type Result struct {
	Text  string
	Final bool
}

// Client распознаёт готовую запись, проигрывая её в потоковый WebSocket API.
// Каждый вызов Transcribe открывает своё соединение.
type Client struct {
	cfg    Config
	dialer websocket.Dialer
	logger *zap.SugaredLogger
}

func New(cfg Config, logger *zap.SugaredLogger) (*Client, error) {
	if cfg.Endpoint == "" {
		cfg.Endpoint = defaultEndpoint
	}
	if cfg.APIKey == "" {
		return nil, errors.New("yandex stt: пустой API key (ожидается YC_STT_API_KEY)")
	}
	if cfg.Language == "" {
		cfg.Language = "ru-RU"
	}
	if cfg.SampleRate == 0 {
		cfg.SampleRate = 16000
	}
	if cfg.ChunkMS <= 0 {
		cfg.ChunkMS = 100
	}
	if cfg.FinalTimeout <= 0 {
		cfg.FinalTimeout = 5 * time.Second
	}
	return &Client{
		cfg: cfg,
		dialer: websocket.Dialer{
			Proxy:            http.ProxyFromEnvironment,
			HandshakeTimeout: 15 * time.Second,
		},
		logger: logger,
	}, nil
}

func (c *Client) Transcribe(ctx context.Context, samples []int16) (string, error) {
	if len(samples) == 0 {
		return "", nil
	}

	conn, err := c.dial(ctx)
	if err != nil {
		return "", err
	}
	defer conn.Close()

	results := make(chan Result, 32)
	done := make(chan struct{})
	defer close(done)
	go readLoop(conn, results, done)

	// Соединение закрывается при отмене контекста, чтобы разблокировать запись и чтение
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	perChunk := c.cfg.SampleRate * c.cfg.ChunkMS / 1000
	for i := 0; i < len(samples); i += perChunk {
		end := min(i+perChunk, len(samples))
		if err := conn.WriteMessage(websocket.BinaryMessage, pcmBytes(samples[i:end])); err != nil {
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
			return "", fmt.Errorf("yandex stt: отправка аудио: %w", err)
		}
	}
	if ej := c.cfg.EndJSON; ej != "" {
		_ = conn.WriteMessage(websocket.TextMessage, []byte(ej))
	}
	_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "eof"))

	return c.collect(ctx, results)
}

// collect ждёт закрытия потока результатов. Финальные гипотезы склеиваются,
// при их отсутствии возвращается последняя частичная.
func (c *Client) collect(ctx context.Context, results <-chan Result) (string, error) {
	timer := time.NewTimer(c.cfg.FinalTimeout)
	defer timer.Stop()

	var finals []string
	var partial string
	for {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-timer.C:
			c.logger.Warnw("Yandex STT final timeout", "finals", len(finals))
			return pick(finals, partial), nil
		case r, ok := <-results:
			if !ok {
				return pick(finals, partial), nil
			}
			if r.Final {
				if t := strings.TrimSpace(r.Text); t != "" {
					finals = append(finals, t)
				}
			} else {
				partial = strings.TrimSpace(r.Text)
			}
		}
	}
}

func pick(finals []string, partial string) string {
	if len(finals) > 0 {
		return strings.Join(finals, " ")
	}
	return partial
}

func (c *Client) dial(ctx context.Context) (*websocket.Conn, error) {
	// SpeechKit v1 ожидает lang, sampleRateHertz, topic и format в query
	u, err := url.Parse(c.cfg.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("yandex stt: неверный endpoint: %w", err)
	}
	q := u.Query()
	q.Set("lang", c.cfg.Language)
	q.Set("sampleRateHertz", fmt.Sprint(c.cfg.SampleRate))
	if q.Get("topic") == "" {
		q.Set("topic", "general")
	}
	if q.Get("format") == "" {
		q.Set("format", "lpcm")
	}
	u.RawQuery = q.Encode()

	header := http.Header{}
	header.Set("Authorization", "Api-Key "+c.cfg.APIKey)

	conn, resp, err := c.dialer.DialContext(ctx, u.String(), header)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("yandex stt: не удалось подключиться к %s: %s (HTTP %d): %w", u.Host, http.StatusText(resp.StatusCode), resp.StatusCode, err)
		}
		return nil, fmt.Errorf("yandex stt: не удалось подключиться к %s: %w", u.Host, err)
	}

	start := []byte(c.cfg.StartJSON)
	if len(start) == 0 {
		start, _ = json.Marshal(map[string]any{
			"lang":            c.cfg.Language,
			"format":          "lpcm",
			"sampleRateHertz": c.cfg.SampleRate,
			"topic":           "general",
		})
	}
	if err := conn.WriteMessage(websocket.TextMessage, start); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("yandex stt: не удалось отправить стартовое сообщение: %w", err)
	}
	return conn, nil
}

// readLoop читает ответы сервера до закрытия соединения.
func readLoop(conn *websocket.Conn, results chan<- Result, done <-chan struct{}) {
	defer close(results)
	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		if msgType != websocket.TextMessage {
			continue
		}
		if res, ok := parseServerMessage(data); ok {
			select {
			case results <- res:
			case <-done:
				return
			}
		}
	}
}

// parseServerMessage вытаскивает текст и признак финальности из известных вариантов JSON.
func parseServerMessage(data []byte) (Result, bool) {
	// {"result":"text","final":true}
	var s1 struct {
		Result string `json:"result"`
		Final  bool   `json:"final"`
	}
	if json.Unmarshal(data, &s1) == nil && (s1.Result != "" || s1.Final) {
		return Result{Text: s1.Result, Final: s1.Final}, true
	}

	// {"alternatives":[{"text":"..."}],"final":true}
	var s2 struct {
		Alternatives []struct {
			Text string `json:"text"`
		} `json:"alternatives"`
		Final bool `json:"final"`
	}
	if json.Unmarshal(data, &s2) == nil && len(s2.Alternatives) > 0 {
		return Result{Text: s2.Alternatives[0].Text, Final: s2.Final}, true
	}

	// {"partial":"..."}
	var s3 struct {
		Partial string `json:"partial"`
	}
	if json.Unmarshal(data, &s3) == nil && s3.Partial != "" {
		return Result{Text: s3.Partial}, true
	}

	// {"text":"...","is_final":true}
	var s4 struct {
		Text    string `json:"text"`
		IsFinal bool   `json:"is_final"`
		Final   bool   `json:"final"`
	}
	if json.Unmarshal(data, &s4) == nil && (s4.Text != "" || s4.IsFinal || s4.Final) {
		return Result{Text: s4.Text, Final: s4.IsFinal || s4.Final}, true
	}

	return Result{}, false
}

// pcmBytes PCM16 little-endian.
func pcmBytes(samples []int16) []byte {
	b := make([]byte, 0, 2*len(samples))
	for _, s := range samples {
		b = append(b, byte(s), byte(s>>8))
	}
	return b
}
