package capture

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/foxseedlab/tsuyaku/internal/audio"
	"github.com/foxseedlab/tsuyaku/internal/bus"
	"github.com/foxseedlab/tsuyaku/internal/recognition"
)

func TestControllerRunsOneLoopAtATime(t *testing.T) {
	var mu sync.Mutex
	var mics []*fakeMic
	open := func(audio.Options) (audio.Microphone, error) {
		mu.Lock()
		defer mu.Unlock()
		for _, m := range mics {
			m.mu.Lock()
			closed := m.closed
			m.mu.Unlock()
			if !closed {
				t.Error("expected previous microphone to be closed before opening a new one")
			}
		}
		m := &fakeMic{}
		mics = append(mics, m)
		return m, nil
	}

	c := NewController(Deps{Recognizer: &scriptedRecognizer{}, Translator: echoTranslator{}, Publisher: bus.New()}, open)
	if err := c.Start(context.Background(), testSettings()); err != nil {
		t.Fatalf("unexpected start error: %v", err)
	}
	if !c.Running() {
		t.Fatal("expected loop to be running")
	}
	if err := c.Start(context.Background(), testSettings()); err != nil {
		t.Fatalf("unexpected restart error: %v", err)
	}
	c.Stop()
	if c.Running() {
		t.Fatal("expected loop to be stopped")
	}
	if len(mics) != 2 {
		t.Fatalf("expected two microphones to be opened, got %d", len(mics))
	}
	for i, m := range mics {
		if !m.closed {
			t.Fatalf("microphone %d was not closed", i)
		}
	}
}

func TestControllerOpenFailure(t *testing.T) {
	open := func(audio.Options) (audio.Microphone, error) {
		return nil, audio.ErrDeviceUnavailable
	}
	c := NewController(Deps{Publisher: bus.New()}, open)
	err := c.Start(context.Background(), testSettings())
	if !errors.Is(err, audio.ErrDeviceUnavailable) {
		t.Fatalf("expected device unavailable, got %v", err)
	}
	if c.Running() {
		t.Fatal("expected no loop after open failure")
	}
}

func TestControllerStopInterruptsPause(t *testing.T) {
	open := func(audio.Options) (audio.Microphone, error) {
		return &fakeMic{script: buffers(100)}, nil
	}
	rec := &scriptedRecognizer{}
	for i := 0; i < 100; i++ {
		rec.results = append(rec.results, errors.New("unexpected"))
	}
	c := NewController(Deps{Recognizer: rec, Translator: echoTranslator{}, Publisher: bus.New()}, open)
	if err := c.Start(context.Background(), testSettings()); err != nil {
		t.Fatalf("unexpected start error: %v", err)
	}
	time.Sleep(20 * time.Millisecond)

	done := make(chan struct{})
	go func() {
		c.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("expected stop to wake the loop from its recovery pause")
	}
}

type blockingRecognizer struct {
	entered chan struct{}
	release chan struct{}
}

func (r *blockingRecognizer) Recognize(context.Context, audio.Buffer, recognition.Options) (recognition.Result, error) {
	r.entered <- struct{}{}
	<-r.release
	return recognition.Result{Text: "hello", Language: "en", Confidence: recognition.Confidence}, nil
}

func TestControllerRunningDoesNotWaitForStop(t *testing.T) {
	open := func(audio.Options) (audio.Microphone, error) {
		return &fakeMic{script: buffers(1)}, nil
	}
	rec := &blockingRecognizer{entered: make(chan struct{}, 1), release: make(chan struct{})}
	c := NewController(Deps{Recognizer: rec, Translator: echoTranslator{}, Publisher: bus.New()}, open)
	if err := c.Start(context.Background(), testSettings()); err != nil {
		t.Fatalf("unexpected start error: %v", err)
	}
	select {
	case <-rec.entered:
	case <-time.After(time.Second):
		t.Fatal("expected recognition to start")
	}

	stopped := make(chan struct{})
	go func() {
		c.Stop()
		close(stopped)
	}()
	time.Sleep(50 * time.Millisecond)

	running := make(chan bool, 1)
	go func() {
		running <- c.Running()
	}()
	select {
	case r := <-running:
		if r {
			t.Fatal("expected a stopping loop to report not running")
		}
	case <-time.After(500 * time.Millisecond):
		t.Fatal("Running blocked while Stop joined the loop")
	}

	select {
	case <-stopped:
		t.Fatal("expected Stop to wait for the in-flight recognition")
	default:
	}
	close(rec.release)
	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("expected Stop to return once recognition finished")
	}
}
