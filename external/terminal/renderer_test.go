package terminal

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/foxseedlab/tsuyaku/internal/bus"
	"github.com/foxseedlab/tsuyaku/internal/dialogue"
)

func TestRenderer_Message(t *testing.T) {
	var out bytes.Buffer
	r := NewRenderer(&out, time.UTC)

	at := time.Date(2026, 3, 1, 9, 5, 7, 0, time.UTC)
	msg, err := dialogue.NewMessage(dialogue.Speaker1, "ru", "en", "привет", "hello", at, 0.8)
	if err != nil {
		t.Fatalf("failed to build message: %v", err)
	}
	r.Message(msg)

	got := out.String()
	if !strings.HasPrefix(got, "[09:05:07] Speaker 1 (ru): привет\n") {
		t.Fatalf("unexpected output: %q", got)
	}
	if !strings.Contains(got, "-> hello") {
		t.Fatalf("expected translation line, got %q", got)
	}
}

func TestRenderer_NoticePrefixes(t *testing.T) {
	var out bytes.Buffer
	r := NewRenderer(&out, time.UTC)

	r.Notice(bus.KindError, "boom")
	r.Notice(bus.KindInfo, "note")
	r.Notice(bus.KindStatus, "listening")
	r.Notice(bus.KindInfo, "")

	want := "error: boom\n* note\n> listening\n"
	if out.String() != want {
		t.Fatalf("unexpected output: %q", out.String())
	}
}

func TestRenderer_StatePrintedOnChangeOnly(t *testing.T) {
	var out bytes.Buffer
	r := NewRenderer(&out, time.UTC)

	stats := dialogue.Stats{Speaker1: 2, Speaker2: 1}
	r.State(bus.StateListening, 5*time.Second, stats)
	r.State(bus.StateListening, 6*time.Second, stats)
	r.State(bus.StateStopped, 7*time.Second, stats)

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 state lines, got %q", out.String())
	}
	if lines[0] != "[listening] 00:05 | Speaker 1: 2 | Speaker 2: 1" {
		t.Fatalf("unexpected state line: %q", lines[0])
	}
}

func TestRenderer_LiveRedrawsStatus(t *testing.T) {
	var out bytes.Buffer
	r := NewRenderer(&out, time.UTC)
	r.live = true

	r.State(bus.StateListening, 0, dialogue.Stats{})
	r.Notice(bus.KindInfo, "hi")

	got := out.String()
	status := "[listening] 00:00 | Speaker 1: 0 | Speaker 2: 0"
	if !strings.HasSuffix(got, "* hi\n"+status) {
		t.Fatalf("expected status redrawn after notice, got %q", got)
	}
}
