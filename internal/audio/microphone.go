package audio

import (
	"context"
	"errors"
	"time"
)

var (
	ErrListenTimeout     = errors.New("audio: no phrase started before listen timeout")
	ErrDeviceUnavailable = errors.New("audio: input device unavailable")
)

// Buffer is one captured utterance as 16-bit little-endian PCM.
type Buffer struct {
	PCM        []byte
	SampleRate int
	Channels   int
}

func (b Buffer) Empty() bool {
	return len(b.PCM) == 0
}

func (b Buffer) Duration() time.Duration {
	if b.SampleRate <= 0 || b.Channels <= 0 {
		return 0
	}
	samples := len(b.PCM) / 2 / b.Channels
	return time.Duration(samples) * time.Second / time.Duration(b.SampleRate)
}

type Options struct {
	DeviceIndex     int
	SampleRate      int
	EnergyThreshold float64
	PauseThreshold  time.Duration
}

// Microphone captures utterances from an input device.
type Microphone interface {
	Calibrate(ctx context.Context, duration time.Duration) error
	// Listen blocks until a phrase ends, phraseLimit elapses, or no phrase
	// starts within timeout (ErrListenTimeout).
	Listen(ctx context.Context, timeout, phraseLimit time.Duration) (Buffer, error)
	Close() error
}

type MicrophoneOpener func(opts Options) (Microphone, error)
