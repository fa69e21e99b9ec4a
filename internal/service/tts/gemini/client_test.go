package gemini

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"Buddy/internal/config"

	"go.uber.org/zap"
)

type capturePlayer struct {
	format string
	data   []byte
}

func (p *capturePlayer) Play(format string, r io.ReadCloser) error {
	defer r.Close()
	p.format = format
	p.data, _ = io.ReadAll(r)
	return nil
}

func TestSynthesize(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var rp requestPayload
		if err := json.NewDecoder(r.Body).Decode(&rp); err != nil {
			t.Errorf("decode: %v", err)
			return
		}
		if rp.Input.Text != "Command failed" || rp.Voice.ModelName != "gemini-2.5-flash-tts" || rp.AudioConfig.AudioEncoding != "MP3" {
			t.Errorf("payload = %+v", rp)
		}
		if rp.Input.Prompt != "" {
			t.Errorf("empty prompt must be omitted, got %q", rp.Input.Prompt)
		}
		_ = json.NewEncoder(w).Encode(jsonAudioResponse{AudioContent: base64.StdEncoding.EncodeToString([]byte("mp3data"))})
	}))
	defer srv.Close()

	cfg := config.Defaults().GeminiTTS
	cfg.Endpoint = srv.URL
	p := &capturePlayer{}
	c := New(cfg, p, zap.NewNop().Sugar())
	c.http = func(context.Context) (*http.Client, error) { return srv.Client(), nil }

	if err := c.Synthesize(context.Background(), "Command failed"); err != nil {
		t.Fatal(err)
	}
	if p.format != "mp3" || string(p.data) != "mp3data" {
		t.Errorf("played %s %q", p.format, p.data)
	}
}

func TestSynthesizeEmptyText(t *testing.T) {
	c := New(config.Defaults().GeminiTTS, &capturePlayer{}, zap.NewNop().Sugar())
	if err := c.Synthesize(context.Background(), "  "); err == nil {
		t.Error("expected error for empty text")
	}
}
