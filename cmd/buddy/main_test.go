package main

import (
	"bytes"
	"strings"
	"testing"

	"Buddy/internal/config"
	"Buddy/internal/service/audio"
	"Buddy/internal/service/intent/ollama"
	"Buddy/internal/service/intent/openai"
)

func TestNewTransportByProvider(t *testing.T) {
	cfg := config.Defaults()
	if _, ok := newTransport(cfg).(*ollama.Client); !ok {
		t.Error("default provider must be ollama")
	}
	cfg.Classifier.Provider = "openai"
	if _, ok := newTransport(cfg).(*openai.Client); !ok {
		t.Error("provider openai must use the OpenAI client")
	}
}

func TestPrintDevices(t *testing.T) {
	var buf bytes.Buffer
	printDevices(&buf, []audio.DeviceInfo{
		{Name: "USB Mic", Channels: 1, DefaultRate: 48000, Format: audio.FormatInt16, SupportedRates: []int{16000, 48000}, Default: true},
		{Name: "Line In", Channels: 2, DefaultRate: 44100, Format: audio.FormatFloat32},
	})
	out := buf.String()
	for _, want := range []string{"* USB Mic", "Line In", "16000, 48000", "44100"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	buf.Reset()
	printDevices(&buf, nil)
	if !strings.Contains(buf.String(), "не найдены") {
		t.Errorf("empty list output = %q", buf.String())
	}
}

func TestLoadConfigFromArgument(t *testing.T) {
	cmd := checkCmd
	if err := cmd.ParseFlags([]string{"--duration=0"}); err != nil {
		t.Fatal(err)
	}
	cfg, fileErr, err := loadConfig(cmd, []string{"does-not-exist.toml"})
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if fileErr == nil {
		t.Error("missing file must be reported")
	}
	if cfg.Audio.CaptureDurationSecs != 0 {
		t.Errorf("flag not applied: %d", cfg.Audio.CaptureDurationSecs)
	}
}
