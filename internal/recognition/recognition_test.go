package recognition

import (
	"context"
	"errors"
	"testing"

	"github.com/foxseedlab/tsuyaku/internal/audio"
	"github.com/foxseedlab/tsuyaku/internal/language"
)

type fakeEngine struct {
	autoText  string
	autoErr   error
	byLocale  map[string]string
	localeErr map[string]error
	calls     []string
}

func (f *fakeEngine) RecognizeAutoDetect(_ context.Context, _ audio.Buffer) (string, error) {
	f.calls = append(f.calls, "auto")
	if f.autoErr != nil {
		return "", f.autoErr
	}
	if f.autoText == "" {
		return "", ErrNoMatch
	}
	return f.autoText, nil
}

func (f *fakeEngine) RecognizeWithLocale(_ context.Context, _ audio.Buffer, locale string) (string, error) {
	f.calls = append(f.calls, locale)
	if err := f.localeErr[locale]; err != nil {
		return "", err
	}
	text, ok := f.byLocale[locale]
	if !ok {
		return "", ErrNoMatch
	}
	return text, nil
}

var (
	auto   = Options{Lang1: language.NewSlot("ru", ""), Lang2: language.NewSlot("en", ""), AutoDetect: true}
	direct = Options{Lang1: language.NewSlot("ru", ""), Lang2: language.NewSlot("en", "")}
)

func TestRecognizeAutoDetectUsesDetector(t *testing.T) {
	engine := &fakeEngine{autoText: "hello and welcome"}
	got, err := NewClient(engine).Recognize(context.Background(), audio.Buffer{}, auto)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Language != "en" || got.Text != "hello and welcome" || got.Confidence != 0.8 {
		t.Fatalf("unexpected result: %+v", got)
	}
	if len(engine.calls) != 1 {
		t.Fatalf("expected a single engine call, got %v", engine.calls)
	}
}

func TestRecognizeAutoDetectDefaultsToFirstLanguage(t *testing.T) {
	engine := &fakeEngine{autoText: "ok"}
	got, err := NewClient(engine).Recognize(context.Background(), audio.Buffer{}, auto)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Language != "ru" {
		t.Fatalf("expected fallback to ru, got %s", got.Language)
	}
}

func TestRecognizeFallsBackThroughLocales(t *testing.T) {
	engine := &fakeEngine{byLocale: map[string]string{"en-US": "hi"}}
	got, err := NewClient(engine).Recognize(context.Background(), audio.Buffer{}, auto)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Language != "en" || got.Text != "hi" {
		t.Fatalf("unexpected result: %+v", got)
	}
	want := []string{"auto", "ru-RU", "en-US"}
	if len(engine.calls) != len(want) {
		t.Fatalf("expected calls %v, got %v", want, engine.calls)
	}
	for i := range want {
		if engine.calls[i] != want[i] {
			t.Fatalf("expected calls %v, got %v", want, engine.calls)
		}
	}
}

func TestRecognizeNoSpeech(t *testing.T) {
	engine := &fakeEngine{}
	_, err := NewClient(engine).Recognize(context.Background(), audio.Buffer{}, auto)
	if !errors.Is(err, ErrNoSpeechDetected) {
		t.Fatalf("expected ErrNoSpeechDetected, got %v", err)
	}
}

func TestRecognizeServiceErrorPropagates(t *testing.T) {
	engine := &fakeEngine{autoErr: errors.New("unavailable")}
	_, err := NewClient(engine).Recognize(context.Background(), audio.Buffer{}, auto)
	var svcErr *ServiceError
	if !errors.As(err, &svcErr) {
		t.Fatalf("expected ServiceError, got %v", err)
	}
	if len(engine.calls) != 1 {
		t.Fatalf("expected no locale fallback after service error, got %v", engine.calls)
	}
}

func TestRecognizeWithoutAutoDetect(t *testing.T) {
	engine := &fakeEngine{autoText: "ignored", byLocale: map[string]string{"ru-RU": "привет"}}
	got, err := NewClient(engine).Recognize(context.Background(), audio.Buffer{}, direct)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Language != "ru" || engine.calls[0] != "ru-RU" {
		t.Fatalf("expected direct locale recognition, got %+v calls=%v", got, engine.calls)
	}
}
