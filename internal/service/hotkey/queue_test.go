package hotkey

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestQueueNeverBlocksProducers(t *testing.T) {
	q := newEventQueue()
	var wg sync.WaitGroup
	for p := 0; p < 4; p++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 1000; i++ {
				q.push(Event{At: time.Now()})
			}
		}()
	}
	wg.Wait()
	if q.len() != 4000 {
		t.Fatalf("len = %d", q.len())
	}
	for i := 0; i < 4000; i++ {
		if _, err := q.pop(context.Background()); err != nil {
			t.Fatalf("pop %d: %v", i, err)
		}
	}
}

func TestQueueDrainsThenReportsClosed(t *testing.T) {
	q := newEventQueue()
	q.push(Event{})
	q.close()
	if q.push(Event{}) {
		t.Error("push after close must be rejected")
	}
	if _, err := q.pop(context.Background()); err != nil {
		t.Fatalf("queued event lost: %v", err)
	}
	if _, err := q.pop(context.Background()); !errors.Is(err, ErrChannelClosed) {
		t.Errorf("expected ErrChannelClosed, got %v", err)
	}
}

func TestQueueWakesWaiter(t *testing.T) {
	q := newEventQueue()
	got := make(chan error, 1)
	go func() {
		_, err := q.pop(context.Background())
		got <- err
	}()
	time.Sleep(10 * time.Millisecond)
	q.push(Event{At: time.Now()})
	select {
	case err := <-got:
		if err != nil {
			t.Errorf("pop: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("waiter was not woken")
	}
}

func TestQueuePopHonoursContext(t *testing.T) {
	q := newEventQueue()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if _, err := q.pop(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline, got %v", err)
	}
}

func TestManualReader(t *testing.T) {
	m := NewManualReader("ctrl+alt+b", strings.NewReader("\n\n"), zap.NewNop().Sugar())
	defer m.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	for i := 0; i < 2; i++ {
		if err := m.Wait(ctx); err != nil {
			t.Fatalf("Wait %d: %v", i, err)
		}
	}
	if err := m.Wait(ctx); !errors.Is(err, ErrChannelClosed) {
		t.Errorf("EOF must close the listener, got %v", err)
	}
}

func TestManualCloseUnblocksWait(t *testing.T) {
	r, w := io.Pipe()
	defer w.Close()
	m := NewManualReader("x", r, zap.NewNop().Sugar())

	errc := make(chan error, 1)
	go func() { errc <- m.Wait(context.Background()) }()
	time.Sleep(10 * time.Millisecond)
	if err := m.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := m.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
	select {
	case err := <-errc:
		if !errors.Is(err, ErrChannelClosed) {
			t.Errorf("expected ErrChannelClosed, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Wait still blocked after Close")
	}
}
