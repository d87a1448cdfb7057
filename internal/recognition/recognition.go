package recognition

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/foxseedlab/tsuyaku/internal/audio"
	"github.com/foxseedlab/tsuyaku/internal/language"
)

const Confidence = 0.8

var (
	// ErrNoMatch is returned by an Engine when audio contained no recognizable speech.
	ErrNoMatch = errors.New("recognition: no match")
	// ErrNoSpeechDetected means every recognition attempt for a buffer came back empty.
	ErrNoSpeechDetected = errors.New("recognition: no speech detected")
)

// ServiceError wraps a network or backend failure, as opposed to a clean no-match.
type ServiceError struct {
	Op  string
	Err error
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("recognition %s: %v", e.Op, e.Err)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

// Engine is the speech-to-text backend.
type Engine interface {
	RecognizeAutoDetect(ctx context.Context, buf audio.Buffer) (string, error)
	RecognizeWithLocale(ctx context.Context, buf audio.Buffer, locale string) (string, error)
}

type Result struct {
	Text       string
	Language   string
	Confidence float64
}

// Options are the per-run recognition settings.
type Options struct {
	Lang1      language.Slot
	Lang2      language.Slot
	AutoDetect bool
}

type Client struct {
	engine Engine
}

func NewClient(engine Engine) *Client {
	return &Client{engine: engine}
}

// Recognize tries provider auto-detection first, then each configured locale
// in order. Only ErrNoMatch moves on to the next attempt; any other engine
// failure is returned as a *ServiceError.
func (c *Client) Recognize(ctx context.Context, buf audio.Buffer, opts Options) (Result, error) {
	if opts.AutoDetect {
		text, err := c.engine.RecognizeAutoDetect(ctx, buf)
		switch {
		case err == nil && text != "":
			detected, ok := language.Detect(text)
			if !ok {
				detected = opts.Lang1.Code
			}
			slog.Debug("recognized with auto detect", "language", detected)
			return Result{Text: text, Language: detected, Confidence: Confidence}, nil
		case err != nil && !errors.Is(err, ErrNoMatch):
			return Result{}, &ServiceError{Op: "auto detect", Err: err}
		}
	}

	for _, slot := range []language.Slot{opts.Lang1, opts.Lang2} {
		text, err := c.engine.RecognizeWithLocale(ctx, buf, slot.Locale)
		if err != nil {
			if errors.Is(err, ErrNoMatch) {
				continue
			}
			return Result{}, &ServiceError{Op: "recognize " + slot.Locale, Err: err}
		}
		if text == "" {
			continue
		}
		slog.Debug("recognized with locale", "locale", slot.Locale, "language", slot.Code)
		return Result{Text: text, Language: slot.Code, Confidence: Confidence}, nil
	}
	return Result{}, ErrNoSpeechDetected
}
