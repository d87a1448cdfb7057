package translation

import (
	"context"
	"errors"
	"testing"
	"time"
)

type fakeBackend struct {
	fragments []string
	err       error
	delay     time.Duration
	calls     int
	lastArgs  [3]string
}

func (f *fakeBackend) Translate(ctx context.Context, text, source, target string) ([]string, error) {
	f.calls++
	f.lastArgs = [3]string{text, source, target}
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return f.fragments, f.err
}

func TestTranslateIdentityMakesNoCall(t *testing.T) {
	backend := &fakeBackend{fragments: []string{"nope"}}
	c := NewClient(backend, time.Second)
	for _, text := range []string{"", "привет", "anything at all"} {
		got := c.Translate(context.Background(), text, "ru", "ru")
		if got.Text != text || got.Err != nil {
			t.Fatalf("expected identity for %q, got %+v", text, got)
		}
	}
	if backend.calls != 0 {
		t.Fatalf("expected no backend calls, got %d", backend.calls)
	}
}

func TestTranslateJoinsFragments(t *testing.T) {
	backend := &fakeBackend{fragments: []string{"привет,", "мир"}}
	got := NewClient(backend, time.Second).Translate(context.Background(), "hello, world", "en", "ru")
	if got.Text != "привет, мир" || got.Err != nil {
		t.Fatalf("unexpected result: %+v", got)
	}
	if backend.lastArgs != [3]string{"hello, world", "en", "ru"} {
		t.Fatalf("unexpected backend args: %v", backend.lastArgs)
	}
}

func TestTranslateEmptyFragmentsReturnsOriginal(t *testing.T) {
	got := NewClient(&fakeBackend{}, time.Second).Translate(context.Background(), "hi", "en", "ru")
	if got.Text != "hi" || got.Err != nil {
		t.Fatalf("expected original text, got %+v", got)
	}
}

func TestTranslateStatusErrorPlaceholder(t *testing.T) {
	backend := &fakeBackend{err: &StatusError{StatusCode: 500}}
	got := NewClient(backend, time.Second).Translate(context.Background(), "hi", "en", "ru")
	if got.Text != PlaceholderError {
		t.Fatalf("expected %q, got %q", PlaceholderError, got.Text)
	}
	var terr *Error
	if !errors.As(got.Err, &terr) || terr.Kind != KindStatus {
		t.Fatalf("expected status error, got %v", got.Err)
	}
}

func TestTranslateTimeoutPlaceholder(t *testing.T) {
	backend := &fakeBackend{delay: time.Second}
	got := NewClient(backend, 10*time.Millisecond).Translate(context.Background(), "hi", "en", "ru")
	if got.Text != PlaceholderTimeout {
		t.Fatalf("expected %q, got %q", PlaceholderTimeout, got.Text)
	}
}

func TestTranslateNetworkPlaceholder(t *testing.T) {
	backend := &fakeBackend{err: errors.New("connection refused")}
	got := NewClient(backend, time.Second).Translate(context.Background(), "hi", "en", "ru")
	if got.Text != PlaceholderNetwork {
		t.Fatalf("expected %q, got %q", PlaceholderNetwork, got.Text)
	}
}
