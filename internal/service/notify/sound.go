package notify

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	ttsplayer "Buddy/internal/service/tts/player"

	"go.uber.org/zap"
)

// SoundNotifier проигрывает короткие звуки успеха и ошибки.
type SoundNotifier struct {
	logger      *zap.SugaredLogger
	pathSuccess string
	pathError   string
	ply         ttsplayer.Player
}

// NewSoundNotifier: относительные пути ищутся сначала рядом с бинарём, затем от рабочей директории.
// Пустой путь означает «без звука».
func NewSoundNotifier(logger *zap.SugaredLogger, ply ttsplayer.Player, pathSuccess, pathError string) *SoundNotifier {
	return &SoundNotifier{
		logger:      logger,
		pathSuccess: resolve(pathSuccess),
		pathError:   resolve(pathError),
		ply:         ply,
	}
}

func resolve(p string) string {
	p = strings.TrimSpace(p)
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	if exe, err := os.Executable(); err == nil {
		cand := filepath.Join(filepath.Dir(exe), p)
		if _, statErr := os.Stat(cand); statErr == nil {
			return cand
		}
	}
	return filepath.FromSlash(p)
}

// play: отсутствующий файл пропускается молча, прочие ошибки логируются и возвращаются.
func (n *SoundNotifier) play(ctx context.Context, path string) error {
	if path == "" {
		return nil
	}
	if err := context.Cause(ctx); err != nil {
		return err
	}

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		n.logger.Warnw("Failed to open notification sound", "path", path, "error", err)
		return err
	}

	// Play закрывает файл
	if err := n.ply.Play(ttsplayer.Format(path), f); err != nil {
		n.logger.Warnw("Failed to play notification sound", "path", path, "error", err)
		return err
	}
	return nil
}

func (n *SoundNotifier) PlaySuccess(ctx context.Context) error { return n.play(ctx, n.pathSuccess) }

func (n *SoundNotifier) PlayError(ctx context.Context) error { return n.play(ctx, n.pathError) }
