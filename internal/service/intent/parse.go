package intent

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var ErrMalformedResponse = errors.New("intent: malformed classifier response")

// MalformedError сохраняет сырой ответ классификатора для логов.
type MalformedError struct {
	Raw string
	Err error
}

func (e *MalformedError) Error() string {
	return fmt.Sprintf("intent: invalid intent payload %q: %v", e.Raw, e.Err)
}

func (e *MalformedError) Unwrap() []error { return []error{ErrMalformedResponse, e.Err} }

// UnknownTargetError классификатор вернул ключ, которого нет в таблицах.
type UnknownTargetError struct {
	Kind   Kind
	Target string
}

func (e *UnknownTargetError) Error() string {
	return fmt.Sprintf("intent: unknown %s target %q", e.Kind, e.Target)
}

type rawIntent struct {
	Action     *string         `json:"action"`
	Target     *string         `json:"target"`
	Response   *string         `json:"response"`
	Confidence json.RawMessage `json:"confidence"`
}

// Parse разбирает ответ модели. Допускаются обёртки ```json ... ``` и ``` ... ```.
func Parse(raw string) (Target, error) {
	cleaned := stripFences(raw)

	var ri rawIntent
	if err := json.Unmarshal([]byte(cleaned), &ri); err != nil {
		return Target{}, &MalformedError{Raw: raw, Err: err}
	}

	confidence := parseConfidence(ri.Confidence)

	var action string
	if ri.Action != nil {
		action = strings.ToLower(strings.TrimSpace(*ri.Action))
	}

	switch action {
	case "open_file":
		return withValue(KindOpenFile, ri.Target, confidence), nil
	case "open_app":
		return withValue(KindOpenApp, ri.Target, confidence), nil
	case "system":
		return withValue(KindSystem, ri.Target, confidence), nil
	case "answer":
		return withValue(KindAnswer, ri.Response, confidence), nil
	default:
		return Unknown(confidence), nil
	}
}

func withValue(kind Kind, v *string, confidence float64) Target {
	if v == nil {
		return Unknown(confidence)
	}
	return Target{Kind: kind, Value: *v, Confidence: confidence}
}

func stripFences(raw string) string {
	s := strings.TrimSpace(raw)
	switch {
	case strings.HasPrefix(s, "```json"):
		s = strings.TrimPrefix(s, "```json")
	case strings.HasPrefix(s, "```"):
		s = strings.TrimPrefix(s, "```")
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// parseConfidence: число как есть (в пределах [0,1]), high/medium/low, bool; всё прочее 0.
func parseConfidence(raw json.RawMessage) float64 {
	if len(raw) == 0 {
		return 0
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return 0
	}
	switch c := v.(type) {
	case float64:
		return clamp01(c)
	case string:
		switch strings.ToLower(strings.TrimSpace(c)) {
		case "high":
			return 0.9
		case "medium":
			return 0.6
		case "low":
			return 0.3
		}
		return 0
	case bool:
		if c {
			return 1
		}
		return 0
	default:
		return 0
	}
}

func clamp01(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}

// Validate проверяет, что цель есть в таблицах. Answer и Unknown проходят всегда.
func Validate(t Target, m Mappings) error {
	switch t.Kind {
	case KindOpenFile:
		if _, ok := m.Files[t.Value]; !ok {
			return &UnknownTargetError{Kind: t.Kind, Target: t.Value}
		}
	case KindOpenApp:
		if _, ok := m.Apps[t.Value]; !ok {
			return &UnknownTargetError{Kind: t.Kind, Target: t.Value}
		}
	case KindSystem:
		if !m.HasAction(t.Value) {
			return &UnknownTargetError{Kind: t.Kind, Target: t.Value}
		}
	}
	return nil
}
