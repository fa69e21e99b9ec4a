package executor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"Buddy/internal/config"
	"Buddy/internal/service/intent"

	"github.com/atotto/clipboard"
	"go.uber.org/zap"
)

var ErrUnknownIntent = errors.New("executor: intent classified as unknown")

// MissingMappingError ключа нет в таблице files/applications.
type MissingMappingError struct {
	Key string
}

func (e *MissingMappingError) Error() string {
	return fmt.Sprintf("executor: no mapping for key %q", e.Key)
}

// UnsupportedActionError системное действие не распознано или недоступно на этой ОС.
type UnsupportedActionError struct {
	Action string
}

func (e *UnsupportedActionError) Error() string {
	return fmt.Sprintf("executor: unsupported system action %q", e.Action)
}

// ActionKind системное действие.
type ActionKind int

const (
	VolumeMute ActionKind = iota
	VolumeUp
	VolumeDown
	VolumeSet
	Sleep
	Shutdown
	Restart
	Lock
)

type Action struct {
	Kind  ActionKind
	Level int // 0..100, только для VolumeSet
}

// ParseAction имя из классификатора → действие. volume_set без числа: 50%.
func ParseAction(name string) (Action, error) {
	switch name {
	case "volume_mute":
		return Action{Kind: VolumeMute}, nil
	case "volume_up":
		return Action{Kind: VolumeUp}, nil
	case "volume_down":
		return Action{Kind: VolumeDown}, nil
	case "sleep":
		return Action{Kind: Sleep}, nil
	case "shutdown":
		return Action{Kind: Shutdown}, nil
	case "restart":
		return Action{Kind: Restart}, nil
	case "lock":
		return Action{Kind: Lock}, nil
	}
	if strings.HasPrefix(name, "volume_set") {
		var digits strings.Builder
		for _, r := range name {
			if r >= '0' && r <= '9' {
				digits.WriteRune(r)
			}
		}
		level, err := strconv.Atoi(digits.String())
		if err != nil || level > 255 {
			level = 50
		}
		return Action{Kind: VolumeSet, Level: min(level, 100)}, nil
	}
	return Action{}, &UnsupportedActionError{Action: name}
}

// Platform действия операционной системы.
type Platform interface {
	OpenPath(path string) error
	Launch(command string) error
	System(a Action) error
}

// Result итог выполнения: сообщение о действии или ответ для озвучивания.
type Result struct {
	Message string
	Answer  bool
}

type Executor struct {
	files      map[string]string
	apps       map[string]string
	copyAnswer bool
	platform   Platform
	clipboard  func(string) error
	logger     *zap.SugaredLogger
}

func New(cfg *config.Config, logger *zap.SugaredLogger) *Executor {
	return NewWithPlatform(cfg, nativePlatform(), logger)
}

func NewWithPlatform(cfg *config.Config, p Platform, logger *zap.SugaredLogger) *Executor {
	return &Executor{
		files:      cfg.Files,
		apps:       cfg.Applications,
		copyAnswer: cfg.Feedback.CopyAnswer,
		platform:   p,
		clipboard:  clipboard.WriteAll,
		logger:     logger,
	}
}

func (e *Executor) Execute(ctx context.Context, t intent.Target) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	switch t.Kind {
	case intent.KindOpenFile:
		return e.openFile(t.Value)
	case intent.KindOpenApp:
		return e.launch(t.Value)
	case intent.KindSystem:
		return e.system(t.Value)
	case intent.KindAnswer:
		if e.copyAnswer {
			if err := e.clipboard(t.Value); err != nil {
				e.logger.Warnw("Copy answer to clipboard failed", "error", err)
			}
		}
		return Result{Message: t.Value, Answer: true}, nil
	default:
		return Result{}, ErrUnknownIntent
	}
}

func (e *Executor) openFile(key string) (Result, error) {
	path, ok := e.files[key]
	if !ok {
		return Result{}, &MissingMappingError{Key: key}
	}
	resolved, err := resolvePath(path)
	if err != nil {
		return Result{}, err
	}
	if err := e.platform.OpenPath(resolved); err != nil {
		return Result{}, fmt.Errorf("executor: open %s: %w", resolved, err)
	}
	e.logger.Infow("Opened file", "key", key, "path", resolved)
	return Result{Message: "Opened " + key}, nil
}

func (e *Executor) launch(key string) (Result, error) {
	command, ok := e.apps[key]
	if !ok {
		return Result{}, &MissingMappingError{Key: key}
	}
	if err := e.platform.Launch(command); err != nil {
		return Result{}, fmt.Errorf("executor: launch %s: %w", key, err)
	}
	e.logger.Infow("Launched application", "key", key, "command", command)
	return Result{Message: "Launched " + key}, nil
}

func (e *Executor) system(name string) (Result, error) {
	a, err := ParseAction(name)
	if err != nil {
		return Result{}, err
	}
	if err := e.platform.System(a); err != nil {
		return Result{}, fmt.Errorf("executor: %s: %w", name, err)
	}
	e.logger.Infow("Executed system action", "action", name)
	return Result{Message: "Executed " + name}, nil
}

// resolvePath относительные пути считаются от рабочей директории.
func resolvePath(p string) (string, error) {
	if filepath.IsAbs(p) {
		return p, nil
	}
	wd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("executor: %w", err)
	}
	return filepath.Join(wd, p), nil
}
