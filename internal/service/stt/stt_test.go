package stt

import (
	"testing"

	"Buddy/internal/config"
	"Buddy/internal/service/stt/google"
	"Buddy/internal/service/stt/whisper"
	"Buddy/internal/service/stt/yandex"

	"go.uber.org/zap"
)

func TestNewSelectsEngine(t *testing.T) {
	logger := zap.NewNop().Sugar()

	cfg := config.Defaults()
	tr, err := New(cfg, logger)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := tr.(*whisper.CLI); !ok {
		t.Errorf("default engine = %T", tr)
	}

	cfg.Transcription.Engine = "whisper-http"
	if _, err := New(cfg, logger); err == nil {
		t.Error("whisper-http without server_url must fail")
	}
	cfg.Transcription.ServerURL = "http://localhost:8080"
	if tr, err = New(cfg, logger); err != nil {
		t.Fatal(err)
	} else if _, ok := tr.(*whisper.Server); !ok {
		t.Errorf("got %T", tr)
	}

	cfg.Transcription.Engine = "yandex"
	cfg.Transcription.ServerURL = ""
	if _, err := New(cfg, logger); err == nil {
		t.Error("yandex without key must fail")
	}
	cfg.Transcription.YandexKey = "k"
	if tr, err = New(cfg, logger); err != nil {
		t.Fatal(err)
	} else if _, ok := tr.(*yandex.Client); !ok {
		t.Errorf("got %T", tr)
	}

	cfg.Transcription.Engine = "google"
	if tr, err = New(cfg, logger); err != nil {
		t.Fatal(err)
	} else if _, ok := tr.(*google.Client); !ok {
		t.Errorf("got %T", tr)
	}

	cfg.Transcription.Engine = "vosk"
	if _, err := New(cfg, logger); err == nil {
		t.Error("unknown engine must fail")
	}
}
