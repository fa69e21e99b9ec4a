package hotkey

import (
	"context"
	"sync"
	"time"
)

// Event одно срабатывание комбинации.
type Event struct {
	At time.Time
}

// eventQueue неограниченная очередь событий: много писателей, один читатель.
// push никогда не блокирует поток сообщений ОС.
type eventQueue struct {
	mu     sync.Mutex
	items  []Event
	closed bool
	signal chan struct{} // буфер 1: «есть новые данные или закрытие»
}

func newEventQueue() *eventQueue {
	return &eventQueue{signal: make(chan struct{}, 1)}
}

func (q *eventQueue) push(ev Event) bool {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return false
	}
	q.items = append(q.items, ev)
	q.mu.Unlock()
	q.notify()
	return true
}

func (q *eventQueue) notify() {
	select {
	case q.signal <- struct{}{}:
	default:
	}
}

// pop ждёт событие. После закрытия сначала отдаются накопленные события, затем ErrChannelClosed.
func (q *eventQueue) pop(ctx context.Context) (Event, error) {
	for {
		q.mu.Lock()
		if len(q.items) > 0 {
			ev := q.items[0]
			q.items = q.items[1:]
			q.mu.Unlock()
			return ev, nil
		}
		closed := q.closed
		q.mu.Unlock()
		if closed {
			return Event{}, ErrChannelClosed
		}

		select {
		case <-ctx.Done():
			return Event{}, context.Cause(ctx)
		case <-q.signal:
		}
	}
}

func (q *eventQueue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

func (q *eventQueue) close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()
	q.notify()
}
