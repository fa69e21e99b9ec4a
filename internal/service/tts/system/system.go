// Package system озвучивает текст встроенным голосом ОС:
// SAPI через PowerShell на Windows, say на macOS, spd-say или espeak на Linux.
package system

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"runtime"
	"strings"

	"go.uber.org/zap"
)

var lookPath = exec.LookPath

type Speaker struct {
	voice  string
	goos   string
	logger *zap.SugaredLogger
}

// New: voice "default" или пусто: голос системы по умолчанию.
func New(voice string, logger *zap.SugaredLogger) *Speaker {
	if strings.EqualFold(voice, "default") {
		voice = ""
	}
	return &Speaker{voice: voice, goos: runtime.GOOS, logger: logger}
}

func (s *Speaker) Synthesize(ctx context.Context, text string) error {
	argv, err := s.command(text)
	if err != nil {
		return err
	}
	out, err := exec.CommandContext(ctx, argv[0], argv[1:]...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("system tts: %s: %w: %s", argv[0], err, strings.TrimSpace(string(out)))
	}
	return nil
}

func (s *Speaker) command(text string) ([]string, error) {
	switch s.goos {
	case "windows":
		script := "Add-Type -AssemblyName System.Speech; $s = New-Object System.Speech.Synthesis.SpeechSynthesizer; "
		if s.voice != "" {
			script += "try { $s.SelectVoice(" + psQuote(s.voice) + ") } catch {}; "
		}
		script += "$s.Speak(" + psQuote(text) + ")"
		return []string{"powershell", "-NoProfile", "-NonInteractive", "-Command", script}, nil
	case "darwin":
		if s.voice != "" {
			return []string{"say", "-v", s.voice, text}, nil
		}
		return []string{"say", text}, nil
	}

	if _, err := lookPath("spd-say"); err == nil {
		argv := []string{"spd-say", "--wait"}
		if s.voice != "" {
			argv = append(argv, "-y", s.voice)
		}
		return append(argv, text), nil
	}
	if _, err := lookPath("espeak"); err == nil {
		if s.voice != "" {
			return []string{"espeak", "-v", s.voice, text}, nil
		}
		return []string{"espeak", text}, nil
	}
	return nil, errors.New("system tts: no speech synthesizer found (install spd-say or espeak)")
}

// psQuote строка PowerShell в одинарных кавычках.
func psQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
