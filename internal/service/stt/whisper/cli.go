package whisper

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"Buddy/internal/service/stt/wavfile"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const sampleRate = 16000

var execCommand = exec.CommandContext

// CLIConfig параметры запуска whisper.cpp (whisper-cli).
type CLIConfig struct {
	Binary    string
	ModelPath string
	Language  string // пусто: автоопределение
	Threads   int    // 0: по числу ядер, не больше 16
	Prompt    string // начальная подсказка со списком команд
	ShowLog   bool   // пробрасывать stderr whisper-cli в консоль
}

// CLI распознаёт запись, запуская whisper-cli на временном WAV.
type CLI struct {
	cfg    CLIConfig
	logger *zap.SugaredLogger
}

func NewCLI(cfg CLIConfig, logger *zap.SugaredLogger) *CLI {
	if cfg.Binary == "" {
		cfg.Binary = "whisper-cli"
	}
	cfg.ModelPath = resolvePath(cfg.ModelPath)
	if cfg.Threads <= 0 {
		cfg.Threads = runtime.NumCPU()
	}
	cfg.Threads = max(1, min(cfg.Threads, 16))
	return &CLI{cfg: cfg, logger: logger}
}

func (c *CLI) Transcribe(ctx context.Context, samples []int16) (string, error) {
	if len(samples) == 0 {
		return "", nil
	}

	path := filepath.Join(os.TempDir(), "buddy-"+uuid.NewString()+".wav")
	if err := wavfile.Write(path, samples, sampleRate); err != nil {
		return "", err
	}
	defer os.Remove(path)

	cmd := execCommand(ctx, c.cfg.Binary, c.args(path)...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	if c.cfg.ShowLog {
		cmd.Stderr = io.MultiWriter(os.Stderr, &stderr)
	} else {
		cmd.Stderr = &stderr
	}

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return "", fmt.Errorf("whisper: %w", ctx.Err())
		}
		return "", fmt.Errorf("whisper: %s: %w: %s", c.cfg.Binary, err, lastLine(stderr.String()))
	}
	text := joinSegments(stdout.String())
	c.logger.Debugw("Whisper finished", "samples", len(samples), "text", text)
	return text, nil
}

func (c *CLI) args(wavPath string) []string {
	args := []string{
		"-m", c.cfg.ModelPath,
		"-f", wavPath,
		"-t", strconv.Itoa(c.cfg.Threads),
		"-bs", "5",
		"-nt",
		"-np",
	}
	if c.cfg.Language != "" {
		args = append(args, "-l", c.cfg.Language)
	}
	if c.cfg.Prompt != "" {
		args = append(args, "--prompt", c.cfg.Prompt)
	}
	return args
}

// joinSegments склеивает непустые строки вывода через пробел.
func joinSegments(out string) string {
	var parts []string
	for _, line := range strings.Split(out, "\n") {
		if s := strings.TrimSpace(line); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " ")
}

func lastLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		return strings.TrimSpace(s[i+1:])
	}
	return s
}

// resolvePath относительные пути считаются от рабочей директории.
func resolvePath(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	if wd, err := os.Getwd(); err == nil {
		return filepath.Join(wd, p)
	}
	return p
}
