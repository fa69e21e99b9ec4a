package intent

import (
	"fmt"
	"sort"
	"strings"

	"Buddy/internal/config"
)

// Kind тип распознанного намерения.
type Kind int

const (
	KindUnknown Kind = iota
	KindOpenFile
	KindOpenApp
	KindSystem
	KindAnswer
)

func (k Kind) String() string {
	switch k {
	case KindOpenFile:
		return "open_file"
	case KindOpenApp:
		return "open_app"
	case KindSystem:
		return "system"
	case KindAnswer:
		return "answer"
	default:
		return "unknown"
	}
}

// Target результат классификации. Value: ключ файла/приложения, имя системного действия
// или текст ответа для KindAnswer. Для KindUnknown Value пустой.
type Target struct {
	Kind       Kind
	Value      string
	Confidence float64
}

func Unknown(confidence float64) Target {
	return Target{Kind: KindUnknown, Confidence: confidence}
}

func (t Target) String() string {
	if t.Kind == KindUnknown {
		return fmt.Sprintf("unknown(%.2f)", t.Confidence)
	}
	return fmt.Sprintf("%s:%s(%.2f)", t.Kind, t.Value, t.Confidence)
}

// Mappings снимок таблиц из конфигурации, используется только для проверки принадлежности.
type Mappings struct {
	Files   map[string]string
	Apps    map[string]string
	Actions []string
}

func MappingsFromConfig(cfg *config.Config) Mappings {
	return Mappings{
		Files:   cfg.Files,
		Apps:    cfg.Applications,
		Actions: cfg.EnabledActions(),
	}
}

func (m Mappings) FileKeys() []string { return sortedKeys(m.Files) }
func (m Mappings) AppKeys() []string  { return sortedKeys(m.Apps) }

// SortedActions включённые системные действия по алфавиту.
func (m Mappings) SortedActions() []string {
	out := append([]string(nil), m.Actions...)
	sort.Strings(out)
	return out
}

// HasAction проверяет системное действие. Имена семейства volume_set (volume_set_30, volume_set40)
// допустимы, если включено volume_set.
func (m Mappings) HasAction(name string) bool {
	for _, a := range m.Actions {
		if a == name {
			return true
		}
		if a == "volume_set" && strings.HasPrefix(name, "volume_set") && volumeSuffixOK(name[len("volume_set"):]) {
			return true
		}
	}
	return false
}

func volumeSuffixOK(s string) bool {
	s = strings.TrimPrefix(s, "_")
	if s == "" || len(s) > 3 {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
