package whisper

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"Buddy/internal/service/stt/wavfile"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Server распознаёт через HTTP whisper.cpp server (POST /inference).
type Server struct {
	url        string
	language   string
	prompt     string
	httpClient *http.Client
	logger     *zap.SugaredLogger
}

func NewServer(baseURL, language, prompt string, timeout time.Duration, logger *zap.SugaredLogger) *Server {
	u := strings.TrimRight(baseURL, "/")
	if !strings.HasSuffix(u, "/inference") {
		u += "/inference"
	}
	return &Server{
		url:        u,
		language:   language,
		prompt:     prompt,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

func (s *Server) Transcribe(ctx context.Context, samples []int16) (string, error) {
	if len(samples) == 0 {
		return "", nil
	}

	path := filepath.Join(os.TempDir(), "buddy-"+uuid.NewString()+".wav")
	if err := wavfile.Write(path, samples, sampleRate); err != nil {
		return "", err
	}
	defer os.Remove(path)
	clip, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("whisper: %w", err)
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", "clip.wav")
	if err != nil {
		return "", fmt.Errorf("whisper: %w", err)
	}
	if _, err := fw.Write(clip); err != nil {
		return "", fmt.Errorf("whisper: %w", err)
	}
	fields := map[string]string{
		"temperature":     "0.0",
		"response_format": "json",
	}
	if s.language != "" {
		fields["language"] = s.language
	}
	if s.prompt != "" {
		fields["prompt"] = s.prompt
	}
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			return "", fmt.Errorf("whisper: %w", err)
		}
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("whisper: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, &body)
	if err != nil {
		return "", fmt.Errorf("whisper: create request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("whisper: request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("whisper: status %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}

	var out struct {
		Text  string `json:"text"`
		Error string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("whisper: decode response: %w", err)
	}
	if out.Error != "" {
		return "", fmt.Errorf("whisper: server: %s", out.Error)
	}
	text := joinSegments(out.Text)
	s.logger.Debugw("Whisper server replied", "samples", len(samples), "text", text)
	return text, nil
}
