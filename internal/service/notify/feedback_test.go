package notify

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"sync"
	"testing"

	"go.uber.org/zap"
)

type recorder struct {
	mu     sync.Mutex
	events []string
}

func (r *recorder) add(s string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, s)
}

func (r *recorder) snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...)
}

type recPlayer struct{ rec *recorder }

func (p recPlayer) Play(format string, rc io.ReadCloser) error {
	defer rc.Close()
	b, _ := io.ReadAll(rc)
	p.rec.add("sound:" + string(b))
	return nil
}

type recSpeaker struct{ rec *recorder }

func (s recSpeaker) Synthesize(_ context.Context, text string) error {
	s.rec.add("say:" + text)
	return nil
}

func soundFiles(t *testing.T) (string, string) {
	dir := t.TempDir()
	ok := filepath.Join(dir, "ok.wav")
	bad := filepath.Join(dir, "err.wav")
	if err := os.WriteFile(ok, []byte("ok"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(bad, []byte("err"), 0o644); err != nil {
		t.Fatal(err)
	}
	return ok, bad
}

func TestFeedbackModes(t *testing.T) {
	ok, bad := soundFiles(t)
	tests := []struct {
		mode Mode
		want []string
	}{
		{ModeSound, []string{"sound:ok", "sound:err"}},
		{ModeTTS, []string{"say:Ok", "say:Command failed"}},
		{ModeBoth, []string{"sound:ok", "say:Ok", "sound:err", "say:Command failed"}},
		{ModeNone, nil},
	}
	for _, tt := range tests {
		t.Run(string(tt.mode), func(t *testing.T) {
			rec := &recorder{}
			logger := zap.NewNop().Sugar()
			sounds := NewSoundNotifier(logger, recPlayer{rec}, ok, bad)
			f := New(tt.mode, sounds, recSpeaker{rec}, false, logger)

			f.Success(context.Background())
			f.Error(context.Background(), "Command failed")
			_ = f.Close()

			if got := rec.snapshot(); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("events = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMissingSoundSkippedSilently(t *testing.T) {
	rec := &recorder{}
	logger := zap.NewNop().Sugar()
	missing := filepath.Join(t.TempDir(), "nope.mp3")
	sounds := NewSoundNotifier(logger, recPlayer{rec}, missing, "")

	if err := sounds.PlaySuccess(context.Background()); err != nil {
		t.Errorf("missing file must be skipped, got %v", err)
	}
	if err := sounds.PlayError(context.Background()); err != nil {
		t.Errorf("empty path must be skipped, got %v", err)
	}
	if len(rec.snapshot()) != 0 {
		t.Error("nothing should have played")
	}
}

func TestAnswerAndToast(t *testing.T) {
	rec := &recorder{}
	logger := zap.NewNop().Sugar()
	f := New(ModeNone, NewSoundNotifier(logger, recPlayer{rec}, "", ""), recSpeaker{rec}, true, logger)
	f.toast = func(title, msg string) error {
		rec.add("toast:" + msg)
		return nil
	}

	f.Answer(context.Background(), "5")
	f.Success(context.Background())
	_ = f.Close()

	// none: голос и звук молчат, уведомление показывается
	if got := rec.snapshot(); !reflect.DeepEqual(got, []string{"toast:5"}) {
		t.Errorf("events = %v", got)
	}
}

func TestEnqueueAfterCloseIsIgnored(t *testing.T) {
	logger := zap.NewNop().Sugar()
	f := New(ModeTTS, nil, nil, false, logger)
	_ = f.Close()
	f.Error(context.Background(), "late")
	_ = f.Close()
}

func TestParseMode(t *testing.T) {
	if ParseMode("both") != ModeBoth || ParseMode("loud") != ModeTTS {
		t.Error("ParseMode mismatch")
	}
}
