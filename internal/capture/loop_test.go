package capture

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/foxseedlab/tsuyaku/internal/audio"
	"github.com/foxseedlab/tsuyaku/internal/bus"
	"github.com/foxseedlab/tsuyaku/internal/dialogue"
	"github.com/foxseedlab/tsuyaku/internal/language"
	"github.com/foxseedlab/tsuyaku/internal/recognition"
	"github.com/foxseedlab/tsuyaku/internal/translation"
)

type listenResult struct {
	buf audio.Buffer
	err error
}

type fakeMic struct {
	mu           sync.Mutex
	script       []listenResult
	onExhausted  func()
	calibrateErr error
	listens      int
	closed       bool
}

func (m *fakeMic) Calibrate(context.Context, time.Duration) error {
	return m.calibrateErr
}

func (m *fakeMic) Listen(ctx context.Context, _, _ time.Duration) (audio.Buffer, error) {
	m.mu.Lock()
	idx := m.listens
	m.listens++
	m.mu.Unlock()
	if idx < len(m.script) {
		return m.script[idx].buf, m.script[idx].err
	}
	if m.onExhausted != nil {
		m.onExhausted()
		return audio.Buffer{}, audio.ErrListenTimeout
	}
	<-ctx.Done()
	return audio.Buffer{}, ctx.Err()
}

func (m *fakeMic) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func (m *fakeMic) Listens() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.listens
}

type scriptedRecognizer struct {
	results []error
	calls   int
	panicAt int
}

func (r *scriptedRecognizer) Recognize(_ context.Context, _ audio.Buffer, _ recognition.Options) (recognition.Result, error) {
	r.calls++
	if r.panicAt == r.calls {
		panic("boom")
	}
	if r.calls <= len(r.results) && r.results[r.calls-1] != nil {
		return recognition.Result{}, r.results[r.calls-1]
	}
	return recognition.Result{Text: "hello", Language: "en", Confidence: recognition.Confidence}, nil
}

type echoTranslator struct{}

func (echoTranslator) Translate(_ context.Context, text, _, _ string) translation.Result {
	return translation.Result{Text: text}
}

type sleepRecord struct {
	d       time.Duration
	listens int
}

func buffers(n int) []listenResult {
	out := make([]listenResult, n)
	for i := range out {
		out[i] = listenResult{buf: audio.Buffer{PCM: []byte{0, 0}, SampleRate: 16000, Channels: 1}}
	}
	return out
}

func runLoop(t *testing.T, mic *fakeMic, rec Recognizer, tr Translator) (*bus.Bus, []sleepRecord) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	mic.onExhausted = cancel

	b := bus.New()
	var sleeps []sleepRecord
	deps := Deps{
		Recognizer: rec,
		Translator: tr,
		Publisher:  b,
		Sleep: func(_ context.Context, d time.Duration) {
			sleeps = append(sleeps, sleepRecord{d: d, listens: mic.Listens()})
		},
	}
	NewLoop(deps, testSettings(), mic).Run(ctx)
	return b, sleeps
}

func testSettings() Settings {
	return Settings{
		Lang1:           language.NewSlot("ru", ""),
		Lang2:           language.NewSlot("en", ""),
		AutoDetect:      true,
		ListenTimeout:   time.Second,
		PhraseTimeLimit: time.Second,
		MaxDuration:     time.Hour,
	}
}

func messages(events []bus.Event) []dialogue.Message {
	var out []dialogue.Message
	for _, e := range events {
		if e.Kind == bus.KindMessage {
			out = append(out, *e.Message)
		}
	}
	return out
}

func TestLoopRecoveryPauseAfterFiveFailures(t *testing.T) {
	mic := &fakeMic{script: buffers(6)}
	noSpeech := recognition.ErrNoSpeechDetected
	rec := &scriptedRecognizer{results: []error{noSpeech, noSpeech, noSpeech, noSpeech, noSpeech}}

	b, sleeps := runLoop(t, mic, rec, echoTranslator{})

	if len(sleeps) != 1 || sleeps[0].d != RecoveryPause {
		t.Fatalf("expected exactly one recovery pause, got %+v", sleeps)
	}
	if sleeps[0].listens != 5 {
		t.Fatalf("expected pause before the 6th attempt, got it after %d listens", sleeps[0].listens)
	}
	if got := len(messages(b.Drain())); got != 1 {
		t.Fatalf("expected the 6th attempt to publish a message, got %d", got)
	}
}

func TestLoopSuccessResetsCounter(t *testing.T) {
	mic := &fakeMic{script: buffers(9)}
	noSpeech := recognition.ErrNoSpeechDetected
	rec := &scriptedRecognizer{results: []error{noSpeech, noSpeech, noSpeech, noSpeech, nil, noSpeech, noSpeech, noSpeech, noSpeech}}

	_, sleeps := runLoop(t, mic, rec, echoTranslator{})

	if len(sleeps) != 0 {
		t.Fatalf("expected no pause, got %+v", sleeps)
	}
}

func TestLoopServiceErrorPauses(t *testing.T) {
	mic := &fakeMic{script: buffers(2)}
	rec := &scriptedRecognizer{results: []error{&recognition.ServiceError{Op: "auto detect", Err: errors.New("503")}}}

	b, sleeps := runLoop(t, mic, rec, echoTranslator{})

	if len(sleeps) != 1 || sleeps[0].d != ServiceErrorPause {
		t.Fatalf("expected one service error pause, got %+v", sleeps)
	}
	var sawError bool
	for _, e := range b.Drain() {
		if e.Kind == bus.KindError {
			sawError = true
		}
	}
	if !sawError {
		t.Fatal("expected an error event for the service failure")
	}
}

func TestLoopCaptureErrorsCountTowardRecovery(t *testing.T) {
	var script []listenResult
	for i := 0; i < 9; i++ {
		script = append(script, listenResult{err: errors.New("device busy")})
	}
	mic := &fakeMic{script: script}
	rec := &scriptedRecognizer{}

	b, sleeps := runLoop(t, mic, rec, echoTranslator{})

	want := []time.Duration{
		CaptureErrorPause, CaptureErrorPause, CaptureErrorPause, CaptureErrorPause,
		RecoveryPause,
		CaptureErrorPause, CaptureErrorPause, CaptureErrorPause, CaptureErrorPause,
	}
	if len(sleeps) != len(want) {
		t.Fatalf("expected %d pauses, got %+v", len(want), sleeps)
	}
	for i, d := range want {
		if sleeps[i].d != d {
			t.Fatalf("pause %d: expected %v, got %v", i, d, sleeps[i].d)
		}
	}
	if sleeps[4].listens != 5 {
		t.Fatalf("expected recovery pause after the 5th capture error, got it after %d listens", sleeps[4].listens)
	}
	if rec.calls != 0 {
		t.Fatalf("expected no recognition on capture errors, got %d calls", rec.calls)
	}
	var recovering int
	for _, e := range b.Drain() {
		if e.Kind == bus.KindError && e.Text == msgRecovering {
			recovering++
		}
	}
	if recovering != 1 {
		t.Fatalf("expected one recovery notice, got %d", recovering)
	}
}

func TestLoopListenTimeoutIsNotAnError(t *testing.T) {
	script := []listenResult{{err: audio.ErrListenTimeout}, {err: audio.ErrListenTimeout}}
	mic := &fakeMic{script: script}
	rec := &scriptedRecognizer{}

	b, sleeps := runLoop(t, mic, rec, echoTranslator{})

	if rec.calls != 0 || len(sleeps) != 0 {
		t.Fatalf("expected no recognition and no pause, got calls=%d sleeps=%+v", rec.calls, sleeps)
	}
	for _, e := range b.Drain() {
		if e.Kind == bus.KindError {
			t.Fatalf("unexpected error event %q", e.Text)
		}
	}
}

func TestLoopRecoversFromPanic(t *testing.T) {
	mic := &fakeMic{script: buffers(2)}
	rec := &scriptedRecognizer{panicAt: 1}

	b, _ := runLoop(t, mic, rec, echoTranslator{})

	if got := len(messages(b.Drain())); got != 1 {
		t.Fatalf("expected loop to continue after panic, got %d messages", got)
	}
}

func TestLoopCalibrationFailureIsNotFatal(t *testing.T) {
	mic := &fakeMic{script: buffers(1), calibrateErr: errors.New("no signal")}
	b, _ := runLoop(t, mic, &scriptedRecognizer{}, echoTranslator{})
	if got := len(messages(b.Drain())); got != 1 {
		t.Fatalf("expected a message after failed calibration, got %d", got)
	}
}

func TestLoopStopsAtMaxDuration(t *testing.T) {
	script := make([]listenResult, 10)
	for i := range script {
		script[i] = listenResult{err: audio.ErrListenTimeout}
	}
	mic := &fakeMic{script: script}

	var mu sync.Mutex
	now := time.Unix(0, 0)
	clock := func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		now = now.Add(time.Minute)
		return now
	}

	settings := testSettings()
	settings.MaxDuration = 2 * time.Minute
	b := bus.New()
	NewLoop(Deps{Recognizer: &scriptedRecognizer{}, Translator: echoTranslator{}, Publisher: b, Now: clock}, settings, mic).Run(context.Background())

	if mic.Listens() >= len(script) {
		t.Fatalf("expected loop to stop before the script ran out, got %d listens", mic.Listens())
	}
	events := b.Drain()
	last := events[len(events)-1]
	if last.Kind != bus.KindCaptureState || last.State != bus.StateStopped {
		t.Fatalf("expected final stopped state, got %+v", last)
	}
	var sawInfo bool
	for _, e := range events {
		if e.Kind == bus.KindInfo && e.Text == msgMaxDurationReached {
			sawInfo = true
		}
	}
	if !sawInfo {
		t.Fatal("expected max duration notice")
	}
}

type recordingBackend struct {
	args [3]string
}

func (r *recordingBackend) Translate(_ context.Context, text, source, target string) ([]string, error) {
	r.args = [3]string{text, source, target}
	return []string{"привет"}, nil
}

type autoEngine struct{}

func (autoEngine) RecognizeAutoDetect(context.Context, audio.Buffer) (string, error) {
	return "hello", nil
}

func (autoEngine) RecognizeWithLocale(context.Context, audio.Buffer, string) (string, error) {
	return "", recognition.ErrNoMatch
}

func TestLoopEndToEnd(t *testing.T) {
	mic := &fakeMic{script: buffers(1)}
	backend := &recordingBackend{}
	rec := recognition.NewClient(autoEngine{})
	tr := translation.NewClient(backend, time.Second)

	b, _ := runLoop(t, mic, rec, tr)

	msgs := messages(b.Drain())
	if len(msgs) != 1 {
		t.Fatalf("expected one message, got %d", len(msgs))
	}
	m := msgs[0]
	if m.Speaker != dialogue.Speaker2 || m.Language != "en" || m.OriginalText != "hello" {
		t.Fatalf("unexpected message %+v", m)
	}
	if m.TargetLanguage != "ru" || m.TranslatedText != "привет" {
		t.Fatalf("unexpected translation %+v", m)
	}
	if backend.args != [3]string{"hello", "en", "ru"} {
		t.Fatalf("unexpected translate args %v", backend.args)
	}
}
