package intent

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
)

func testMappings() Mappings {
	return Mappings{
		Files:   map[string]string{"resume": "docs/resume.pdf"},
		Apps:    map[string]string{"chrome": "chrome.exe", "notepad": "notepad.exe"},
		Actions: []string{"volume_up", "lock", "volume_set"},
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want Target
	}{
		{"open file", `{"action":"open_file","target":"resume","response":null,"confidence":0.9}`,
			Target{Kind: KindOpenFile, Value: "resume", Confidence: 0.9}},
		{"fenced json", "```json\n{\"action\":\"open_app\",\"target\":\"chrome\",\"confidence\":\"medium\"}\n```",
			Target{Kind: KindOpenApp, Value: "chrome", Confidence: 0.6}},
		{"bare fence", "```{\"action\":\"system\",\"target\":\"lock\",\"confidence\":true}```",
			Target{Kind: KindSystem, Value: "lock", Confidence: 1}},
		{"answer", `{"action":"Answer","target":null,"response":"5","confidence":"HIGH"}`,
			Target{Kind: KindAnswer, Value: "5", Confidence: 0.9}},
		{"answer without response", `{"action":"answer","target":null,"response":null,"confidence":0.8}`,
			Unknown(0.8)},
		{"open file without target", `{"action":"open_file","confidence":0.7}`, Unknown(0.7)},
		{"unrecognized action", `{"action":"dance","target":"x","confidence":"low"}`, Unknown(0.3)},
		{"unrecognized confidence string", `{"action":"system","target":"lock","confidence":"sure"}`,
			Target{Kind: KindSystem, Value: "lock", Confidence: 0}},
		{"false confidence", `{"action":"system","target":"lock","confidence":false}`,
			Target{Kind: KindSystem, Value: "lock", Confidence: 0}},
		{"missing confidence", `{"action":"unknown","target":null}`, Unknown(0)},
		{"object confidence", `{"action":"unknown","confidence":{"v":1}}`, Unknown(0)},
		{"out of range", `{"action":"system","target":"lock","confidence":7}`,
			Target{Kind: KindSystem, Value: "lock", Confidence: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.raw)
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseMalformed(t *testing.T) {
	for _, raw := range []string{"", "sure, opening chrome", `{"action":`, "```json\n```"} {
		_, err := Parse(raw)
		if !errors.Is(err, ErrMalformedResponse) {
			t.Errorf("Parse(%q) = %v, want ErrMalformedResponse", raw, err)
		}
	}
}

func TestValidate(t *testing.T) {
	m := testMappings()
	ok := []Target{
		{Kind: KindOpenFile, Value: "resume"},
		{Kind: KindOpenApp, Value: "notepad"},
		{Kind: KindSystem, Value: "lock"},
		{Kind: KindSystem, Value: "volume_set_30"},
		{Kind: KindSystem, Value: "volume_set"},
		{Kind: KindAnswer, Value: "anything"},
		Unknown(0),
	}
	for _, tgt := range ok {
		if err := Validate(tgt, m); err != nil {
			t.Errorf("Validate(%v): %v", tgt, err)
		}
	}

	bad := []Target{
		{Kind: KindOpenFile, Value: "ghost"},
		{Kind: KindOpenApp, Value: "resume"},
		{Kind: KindSystem, Value: "shutdown"},
		{Kind: KindSystem, Value: "volume_set_loud"},
	}
	for _, tgt := range bad {
		var ute *UnknownTargetError
		if err := Validate(tgt, m); !errors.As(err, &ute) {
			t.Errorf("Validate(%v) = %v, want UnknownTargetError", tgt, err)
		} else if ute.Target != tgt.Value {
			t.Errorf("error target = %q", ute.Target)
		}
	}
}

func TestBuildPrompt(t *testing.T) {
	p := BuildPrompt("  open my resume ", testMappings())
	for _, want := range []string{
		`User said: "open my resume"`,
		"Available files: resume\n",
		"Available apps: chrome, notepad\n",
		"Available system actions: lock, volume_set, volume_up\n",
		"open_file, open_app, system, answer, unknown",
		"Return JSON only",
	} {
		if !strings.Contains(p, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

type fakeTransport struct {
	reply string
	err   error
	calls int
	last  string
}

func (f *fakeTransport) Complete(ctx context.Context, prompt string) (string, error) {
	f.calls++
	f.last = prompt
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func TestClassifyEmptyTranscriptSkipsTransport(t *testing.T) {
	ft := &fakeTransport{}
	c := NewClassifier(ft, testMappings(), time.Second, zap.NewNop().Sugar())
	got, err := c.Classify(context.Background(), " \t\n")
	if err != nil {
		t.Fatal(err)
	}
	if got != Unknown(0) || ft.calls != 0 {
		t.Errorf("got %v after %d calls", got, ft.calls)
	}
}

func TestClassify(t *testing.T) {
	logger := zap.NewNop().Sugar()

	ft := &fakeTransport{reply: `{"action":"open_app","target":"chrome","response":null,"confidence":0.8}`}
	got, err := NewClassifier(ft, testMappings(), time.Second, logger).Classify(context.Background(), "start chrome")
	if err != nil {
		t.Fatal(err)
	}
	if got.Kind != KindOpenApp || got.Value != "chrome" {
		t.Errorf("got %v", got)
	}
	if !strings.Contains(ft.last, `"start chrome"`) {
		t.Error("transcript not passed into prompt")
	}

	ft = &fakeTransport{reply: `{"action":"open_file","target":"ghost","confidence":0.9}`}
	_, err = NewClassifier(ft, testMappings(), time.Second, logger).Classify(context.Background(), "open ghost")
	var ute *UnknownTargetError
	if !errors.As(err, &ute) {
		t.Errorf("expected UnknownTargetError, got %v", err)
	}

	ft = &fakeTransport{err: errors.New("connection refused")}
	_, err = NewClassifier(ft, testMappings(), time.Second, logger).Classify(context.Background(), "hello")
	var te *TransportError
	if !errors.As(err, &te) {
		t.Errorf("expected TransportError, got %v", err)
	}
}

type blockingTransport struct{}

func (blockingTransport) Complete(ctx context.Context, _ string) (string, error) {
	<-ctx.Done()
	return "", ctx.Err()
}

func TestClassifyTimeout(t *testing.T) {
	c := NewClassifier(blockingTransport{}, testMappings(), 20*time.Millisecond, zap.NewNop().Sugar())
	_, err := c.Classify(context.Background(), "hello")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline, got %v", err)
	}
}

type flakyProber struct {
	failures int
	calls    int
}

func (p *flakyProber) Ready(context.Context) error {
	p.calls++
	if p.calls <= p.failures {
		return errors.New("not yet")
	}
	return nil
}

func TestWaitReady(t *testing.T) {
	logger := zap.NewNop().Sugar()

	p := &flakyProber{failures: 2}
	if err := WaitReady(context.Background(), p, 5, time.Millisecond, logger); err != nil {
		t.Fatalf("WaitReady: %v", err)
	}
	if p.calls != 3 {
		t.Errorf("calls = %d", p.calls)
	}

	p = &flakyProber{failures: 10}
	if err := WaitReady(context.Background(), p, 3, time.Millisecond, logger); err == nil {
		t.Fatal("expected failure")
	}
	if p.calls != 3 {
		t.Errorf("retries not bounded: %d calls", p.calls)
	}
}
