package capture

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/foxseedlab/tsuyaku/internal/audio"
	"github.com/foxseedlab/tsuyaku/internal/bus"
	"github.com/foxseedlab/tsuyaku/internal/dialogue"
	"github.com/foxseedlab/tsuyaku/internal/language"
	"github.com/foxseedlab/tsuyaku/internal/recognition"
	"github.com/foxseedlab/tsuyaku/internal/translation"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const (
	Source = "capture"

	ErrorThreshold    = 5
	RecoveryPause     = 2 * time.Second
	ServiceErrorPause = 1 * time.Second
	CaptureErrorPause = 500 * time.Millisecond

	recognitionTimeout = 30 * time.Second
)

var tracer = otel.Tracer("github.com/foxseedlab/tsuyaku/internal/capture")

// Settings is the snapshot a loop runs with. It is copied at start and never
// shared with the goroutine that edits configuration.
type Settings struct {
	Lang1               language.Slot
	Lang2               language.Slot
	AutoDetect          bool
	ListenTimeout       time.Duration
	PhraseTimeLimit     time.Duration
	MaxDuration         time.Duration
	CalibrationDuration time.Duration
	Microphone          audio.Options
}

type Recognizer interface {
	Recognize(ctx context.Context, buf audio.Buffer, opts recognition.Options) (recognition.Result, error)
}

type Translator interface {
	Translate(ctx context.Context, text, source, target string) translation.Result
}

// Observer receives pipeline counters. A nil Observer is ignored.
type Observer interface {
	UtteranceProcessed(ctx context.Context, language string)
	CaptureFailed(ctx context.Context, reason string)
	RecoveryPaused(ctx context.Context)
}

type Deps struct {
	Recognizer Recognizer
	Translator Translator
	Publisher  bus.Publisher
	Observer   Observer
	// Sleep waits for d or until ctx is done. Defaults to a timer.
	Sleep func(ctx context.Context, d time.Duration)
	Now   func() time.Time
}

type Loop struct {
	deps     Deps
	settings Settings
	mic      audio.Microphone
}

func NewLoop(deps Deps, settings Settings, mic audio.Microphone) *Loop {
	if deps.Sleep == nil {
		deps.Sleep = sleepContext
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &Loop{deps: deps, settings: settings, mic: mic}
}

type step int

const (
	stepTimeout step = iota
	stepPublished
	stepNoSpeech
	stepCaptureError
	stepServiceError
	stepFailed
)

var stepReasons = map[step]string{
	stepNoSpeech:     "no_speech",
	stepCaptureError: "capture",
	stepServiceError: "service",
	stepFailed:       "unexpected",
}

// Run calibrates once and then listens until ctx is cancelled or the maximum
// recording duration is exceeded. Cancellation is checked between iterations;
// a request already in flight is allowed to finish.
func (l *Loop) Run(ctx context.Context) {
	defer l.publish(bus.CaptureStateEvent(Source, bus.StateStopped))

	l.publish(bus.CaptureStateEvent(Source, bus.StateCalibrating))
	if err := l.mic.Calibrate(ctx, l.settings.CalibrationDuration); err != nil {
		slog.Warn("microphone calibration failed", "error", err)
		l.publish(bus.InfoEvent(Source, msgCalibrationFailed))
	}

	start := l.deps.Now()
	l.publish(bus.CaptureStateEvent(Source, bus.StateListening))
	slog.Info("capture loop listening", "lang1", l.settings.Lang1.Code, "lang2", l.settings.Lang2.Code, "max_duration", l.settings.MaxDuration)

	consecutiveErrors := 0
	for ctx.Err() == nil {
		elapsed := l.deps.Now().Sub(start)
		l.publish(bus.ElapsedEvent(Source, elapsed))

		result := l.iterate(ctx)
		if ctx.Err() != nil {
			return
		}

		if result == stepPublished || result == stepTimeout {
			consecutiveErrors = 0
		} else {
			consecutiveErrors++
		}
		if reason, ok := stepReasons[result]; ok && l.deps.Observer != nil {
			l.deps.Observer.CaptureFailed(ctx, reason)
		}

		// The recovery pause replaces the short per-error pause.
		if consecutiveErrors >= ErrorThreshold {
			slog.Warn("too many consecutive capture errors; pausing", "errors", consecutiveErrors, "pause", RecoveryPause)
			l.publish(bus.ErrorEvent(Source, msgRecovering, nil))
			if l.deps.Observer != nil {
				l.deps.Observer.RecoveryPaused(ctx)
			}
			l.deps.Sleep(ctx, RecoveryPause)
			consecutiveErrors = 0
		} else if pause := errorPause(result); pause > 0 {
			l.deps.Sleep(ctx, pause)
		}

		if l.settings.MaxDuration > 0 && elapsed > l.settings.MaxDuration {
			slog.Info("maximum recording duration reached", "elapsed", elapsed)
			l.publish(bus.InfoEvent(Source, msgMaxDurationReached))
			return
		}
	}
}

func errorPause(s step) time.Duration {
	switch s {
	case stepServiceError:
		return ServiceErrorPause
	case stepCaptureError:
		return CaptureErrorPause
	}
	return 0
}

func (l *Loop) iterate(ctx context.Context) (result step) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("capture iteration panicked", "panic", r)
			l.publish(bus.ErrorEvent(Source, fmt.Sprintf(msgUnexpectedError, r), fmt.Errorf("panic: %v", r)))
			result = stepFailed
		}
	}()

	l.publish(bus.StatusEvent(Source, msgListening))
	buf, err := l.mic.Listen(ctx, l.settings.ListenTimeout, l.settings.PhraseTimeLimit)
	switch {
	case errors.Is(err, audio.ErrListenTimeout):
		slog.Debug("listen timed out")
		return stepTimeout
	case ctx.Err() != nil:
		return stepTimeout
	case err != nil:
		slog.Warn("audio capture failed", "error", err)
		l.publish(bus.ErrorEvent(Source, msgCaptureFailed, err))
		return stepCaptureError
	}

	// Requests started here run to completion even if the loop is stopped.
	netCtx := context.WithoutCancel(ctx)
	return l.process(netCtx, buf)
}

func (l *Loop) process(ctx context.Context, buf audio.Buffer) step {
	ctx, span := tracer.Start(ctx, "capture.utterance")
	defer span.End()

	l.publish(bus.StatusEvent(Source, msgRecognizing))
	recCtx, cancel := context.WithTimeout(ctx, recognitionTimeout)
	res, err := l.deps.Recognizer.Recognize(recCtx, buf, recognition.Options{
		Lang1:      l.settings.Lang1,
		Lang2:      l.settings.Lang2,
		AutoDetect: l.settings.AutoDetect,
	})
	cancel()

	var svcErr *recognition.ServiceError
	switch {
	case errors.Is(err, recognition.ErrNoSpeechDetected):
		slog.Debug("no speech recognized", "audio_duration", buf.Duration())
		l.publish(bus.ErrorEvent(Source, msgNoSpeech, err))
		return stepNoSpeech
	case errors.As(err, &svcErr):
		slog.Warn("recognition service error", "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "recognition failed")
		l.publish(bus.ErrorEvent(Source, fmt.Sprintf(msgServiceError, truncate(err.Error(), 50)), err))
		return stepServiceError
	case err != nil:
		slog.Error("recognition failed", "error", err)
		span.RecordError(err)
		l.publish(bus.ErrorEvent(Source, fmt.Sprintf(msgUnexpectedError, truncate(err.Error(), 30)), err))
		return stepFailed
	}
	l.publish(bus.InfoEvent(Source, fmt.Sprintf(msgDetectedLanguage, res.Language)))

	speaker, target := language.Attribute(res.Language, l.settings.Lang1.Code, l.settings.Lang2.Code)
	span.SetAttributes(
		attribute.String("language", res.Language),
		attribute.String("target_language", target),
		attribute.String("speaker", string(speaker)),
	)

	l.publish(bus.StatusEvent(Source, msgTranslating))
	tr := l.deps.Translator.Translate(ctx, res.Text, res.Language, target)
	if tr.Err != nil {
		l.publish(bus.ErrorEvent(Source, msgTranslationFailed, tr.Err))
	}

	msg, err := dialogue.NewMessage(speaker, res.Language, target, res.Text, tr.Text, l.deps.Now(), res.Confidence)
	if err != nil {
		l.publish(bus.ErrorEvent(Source, fmt.Sprintf(msgUnexpectedError, err), err))
		return stepFailed
	}
	l.publish(bus.MessageEvent(Source, msg))
	if l.deps.Observer != nil {
		l.deps.Observer.UtteranceProcessed(ctx, res.Language)
	}
	return stepPublished
}

func (l *Loop) publish(e bus.Event) {
	l.deps.Publisher.Publish(e)
}

func sleepContext(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
	case <-ctx.Done():
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
