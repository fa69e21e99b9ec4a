package pipeline

import (
	"sync"
	"time"
)

// Outcome итог одного цикла.
type Outcome struct {
	At         time.Time
	Transcript string
	Intent     string
	Message    string // результат действия или текст ошибки для пользователя
	OK         bool
}

// History потокобезопасный буфер последних циклов фиксированной ёмкости. Только в памяти.
type History struct {
	cap      int
	outcomes []Outcome
	mu       sync.Mutex
}

func NewHistory(capacity int) *History {
	if capacity <= 0 {
		capacity = 20
	}
	return &History{cap: capacity, outcomes: make([]Outcome, 0, capacity)}
}

// Add добавляет запись, при переполнении удаляет самую старую.
func (h *History) Add(o Outcome) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.outcomes) == h.cap {
		copy(h.outcomes, h.outcomes[1:])
		h.outcomes = h.outcomes[:h.cap-1]
	}
	h.outcomes = append(h.outcomes, o)
}

// Snapshot копия записей от старых к новым.
func (h *History) Snapshot() []Outcome {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]Outcome, len(h.outcomes))
	copy(out, h.outcomes)
	return out
}

func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.outcomes)
}
