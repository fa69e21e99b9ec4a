package system

import (
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"
)

func TestCommandWindowsQuotes(t *testing.T) {
	s := New("Microsoft Zira Desktop", zap.NewNop().Sugar())
	s.goos = "windows"
	argv, err := s.command("I don't know how to do that")
	if err != nil {
		t.Fatal(err)
	}
	if argv[0] != "powershell" {
		t.Fatalf("argv = %v", argv)
	}
	script := argv[len(argv)-1]
	if !strings.Contains(script, "Speak('I don''t know how to do that')") {
		t.Errorf("text not quoted: %s", script)
	}
	if !strings.Contains(script, "SelectVoice('Microsoft Zira Desktop')") {
		t.Errorf("voice not selected: %s", script)
	}
}

func TestCommandDefaultVoice(t *testing.T) {
	s := New("Default", zap.NewNop().Sugar())
	s.goos = "darwin"
	argv, err := s.command("Ok")
	if err != nil {
		t.Fatal(err)
	}
	if strings.Join(argv, " ") != "say Ok" {
		t.Errorf("argv = %v", argv)
	}
}

func TestCommandLinuxFallbacks(t *testing.T) {
	orig := lookPath
	t.Cleanup(func() { lookPath = orig })

	s := New("", zap.NewNop().Sugar())
	s.goos = "linux"

	lookPath = func(name string) (string, error) {
		if name == "espeak" {
			return "/usr/bin/espeak", nil
		}
		return "", errors.New("not found")
	}
	argv, err := s.command("Ok")
	if err != nil || argv[0] != "espeak" {
		t.Errorf("argv = %v, err = %v", argv, err)
	}

	lookPath = func(string) (string, error) { return "", errors.New("not found") }
	if _, err := s.command("Ok"); err == nil {
		t.Error("expected error without synthesizer")
	}
}
