package vad

import "testing"

func TestNewRejectsRate(t *testing.T) {
	if _, err := New(44100, 2, 3); err == nil {
		t.Fatal("expected error for 44100 Hz")
	}
}

func TestSilenceIsNotSpeech(t *testing.T) {
	g, err := New(16000, 3, 3)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	silence := make([]int16, 16000)
	ok, err := g.HasSpeech(silence)
	if err != nil {
		t.Fatalf("HasSpeech: %v", err)
	}
	if ok {
		t.Error("one second of silence must not count as speech")
	}
}

func TestShortInputHasNoFrames(t *testing.T) {
	g, err := New(16000, 0, 1)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	n, err := g.VoicedFrames(make([]int16, 100))
	if err != nil || n != 0 {
		t.Errorf("VoicedFrames = %d, %v", n, err)
	}
}
