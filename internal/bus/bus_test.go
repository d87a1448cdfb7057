package bus

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

func TestBusPreservesProducerOrder(t *testing.T) {
	b := New()
	const producers, perProducer = 4, 200

	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			source := fmt.Sprintf("p%d", p)
			for i := 0; i < perProducer; i++ {
				b.Publish(StatusEvent(source, fmt.Sprintf("%d", i)))
			}
		}(p)
	}
	wg.Wait()

	next := map[string]int{}
	events := b.Drain()
	if len(events) != producers*perProducer {
		t.Fatalf("expected %d events, got %d", producers*perProducer, len(events))
	}
	for _, e := range events {
		want := fmt.Sprintf("%d", next[e.Source])
		if e.Text != want {
			t.Fatalf("source %s: expected %s, got %s", e.Source, want, e.Text)
		}
		next[e.Source]++
	}
}

func TestBusReadySignal(t *testing.T) {
	b := New()
	b.Publish(InfoEvent("test", "a"))
	b.Publish(InfoEvent("test", "b"))

	select {
	case <-b.Ready():
	case <-time.After(time.Second):
		t.Fatal("expected ready signal")
	}
	if got := len(b.Drain()); got != 2 {
		t.Fatalf("expected 2 events, got %d", got)
	}
	if b.Drain() != nil {
		t.Fatal("expected empty drain")
	}
}

func TestBusRejectsAfterClose(t *testing.T) {
	b := New()
	b.Close()
	if b.Publish(InfoEvent("test", "late")) {
		t.Fatal("expected publish to fail after close")
	}
	if b.Len() != 0 {
		t.Fatalf("expected empty queue, got %d", b.Len())
	}
}

func TestFormatElapsed(t *testing.T) {
	if got := FormatElapsed(125 * time.Second); got != "02:05" {
		t.Fatalf("expected 02:05, got %s", got)
	}
	if got := FormatElapsed(-time.Second); got != "00:00" {
		t.Fatalf("expected 00:00, got %s", got)
	}
}
