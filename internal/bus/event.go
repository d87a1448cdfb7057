package bus

import (
	"fmt"
	"time"

	"github.com/foxseedlab/tsuyaku/internal/dialogue"
)

type Kind string

const (
	KindMessage      Kind = "message"
	KindStatus       Kind = "status"
	KindInfo         Kind = "info"
	KindError        Kind = "error"
	KindElapsed      Kind = "elapsed"
	KindCaptureState Kind = "capture_state"
	KindSynthesis    Kind = "synthesis"
)

type CaptureState string

const (
	StateIdle        CaptureState = "idle"
	StateCalibrating CaptureState = "calibrating"
	StateListening   CaptureState = "listening"
	StateStopped     CaptureState = "stopped"
)

// Event is a tagged union; only the fields relevant to Kind are set.
type Event struct {
	Kind     Kind              `json:"kind"`
	Source   string            `json:"source,omitempty"`
	At       time.Time         `json:"at"`
	Message  *dialogue.Message `json:"message,omitempty"`
	Text     string            `json:"text,omitempty"`
	Elapsed  time.Duration     `json:"elapsed,omitempty"`
	State    CaptureState      `json:"state,omitempty"`
	Artifact string            `json:"artifact,omitempty"`
	Err      error             `json:"-"`
}

func MessageEvent(source string, m dialogue.Message) Event {
	return Event{Kind: KindMessage, Source: source, At: time.Now(), Message: &m}
}

func StatusEvent(source, text string) Event {
	return Event{Kind: KindStatus, Source: source, At: time.Now(), Text: text}
}

func InfoEvent(source, text string) Event {
	return Event{Kind: KindInfo, Source: source, At: time.Now(), Text: text}
}

func ErrorEvent(source, text string, err error) Event {
	return Event{Kind: KindError, Source: source, At: time.Now(), Text: text, Err: err}
}

func ElapsedEvent(source string, elapsed time.Duration) Event {
	return Event{Kind: KindElapsed, Source: source, At: time.Now(), Elapsed: elapsed}
}

func CaptureStateEvent(source string, state CaptureState) Event {
	return Event{Kind: KindCaptureState, Source: source, At: time.Now(), State: state}
}

// SynthesisEvent reports a finished speak task. Err is nil on success.
func SynthesisEvent(source, artifact string, err error) Event {
	e := Event{Kind: KindSynthesis, Source: source, At: time.Now(), Artifact: artifact, Err: err}
	if err != nil {
		e.Text = err.Error()
	}
	return e
}

// FormatElapsed renders d as MM:SS.
func FormatElapsed(d time.Duration) string {
	total := int(d / time.Second)
	if total < 0 {
		total = 0
	}
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}
