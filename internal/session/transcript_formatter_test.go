package session

import (
	"strings"
	"testing"
	"time"

	"github.com/foxseedlab/tsuyaku/internal/dialogue"
)

func TestBuildTranscriptText(t *testing.T) {
	loc := time.FixedZone("UTC+3", 3*60*60)
	exportedAt := time.Date(2026, 2, 28, 12, 0, 0, 0, time.UTC)
	notice := dialogue.NewSystemNotice("welcome", exportedAt)
	first, err := dialogue.NewMessage(dialogue.Speaker2, "en", "ru", "hello", "привет", exportedAt.Add(-2*time.Minute), 0.8)
	if err != nil {
		t.Fatalf("failed to build message: %v", err)
	}
	second, err := dialogue.NewMessage(dialogue.Speaker1, "ru", "en", "как дела", "how are you", exportedAt.Add(-time.Minute), 0.9)
	if err != nil {
		t.Fatalf("failed to build message: %v", err)
	}

	body := string(buildTranscriptText([]dialogue.Message{notice, first, second}, exportedAt, loc))

	want := strings.Join([]string{
		strings.Repeat("=", 60),
		"TRANSLATOR DIALOGUE EXPORT",
		"Export time: 2026-02-28 15:00:00",
		strings.Repeat("=", 60),
		"",
		"[14:58:00] Speaker 2 (en):",
		"  Original: hello",
		"  Translation: привет",
		strings.Repeat("-", 40),
		"[14:59:00] Speaker 1 (ru):",
		"  Original: как дела",
		"  Translation: how are you",
		strings.Repeat("-", 40),
		"",
	}, "\n")
	if body != want {
		t.Fatalf("unexpected transcript:\n%s\nwant:\n%s", body, want)
	}
	if strings.Contains(body, "welcome") {
		t.Fatal("expected system notices to be excluded")
	}
}

func TestBuildTranscriptText_NilLocationUsesUTC(t *testing.T) {
	exportedAt := time.Date(2026, 2, 28, 12, 0, 0, 0, time.UTC)
	body := string(buildTranscriptText(nil, exportedAt, nil))
	if !strings.Contains(body, "Export time: 2026-02-28 12:00:00") {
		t.Fatalf("expected UTC export time, got %s", body)
	}
}

func TestCountDialogueMessages(t *testing.T) {
	at := time.Now()
	msg, _ := dialogue.NewMessage(dialogue.Speaker1, "ru", "en", "да", "yes", at, 0.8)
	got := countDialogueMessages([]dialogue.Message{dialogue.NewSystemNotice("x", at), msg})
	if got != 1 {
		t.Fatalf("expected 1 dialogue message, got %d", got)
	}
}
