package audio

import (
	"context"
	"encoding/binary"
	"math"
	"time"

	"github.com/foxseedlab/tsuyaku/internal/audio"
)

const (
	dynamicEnergyDamping = 0.15
	dynamicEnergyRatio   = 1.5
	maxNonSpeakingTail   = 500 * time.Millisecond
)

// FrameSource yields fixed-size frames of mono 16-bit samples.
type FrameSource interface {
	ReadFrame(ctx context.Context) ([]int16, error)
	SampleRate() int
	Close() error
}

// Listener segments a frame stream into utterances with an RMS energy gate.
type Listener struct {
	source    FrameSource
	threshold float64
	pause     time.Duration
}

func NewListener(source FrameSource, opts audio.Options) *Listener {
	return &Listener{
		source:    source,
		threshold: opts.EnergyThreshold,
		pause:     opts.PauseThreshold,
	}
}

func (l *Listener) Threshold() float64 {
	return l.threshold
}

// Calibrate moves the threshold toward the ambient noise level heard during duration.
func (l *Listener) Calibrate(ctx context.Context, duration time.Duration) error {
	var elapsed time.Duration
	for elapsed < duration {
		frame, err := l.source.ReadFrame(ctx)
		if err != nil {
			return err
		}
		frameDur := l.frameDuration(frame)
		elapsed += frameDur
		damping := math.Pow(dynamicEnergyDamping, frameDur.Seconds())
		target := rms(frame) * dynamicEnergyRatio
		l.threshold = l.threshold*damping + target*(1-damping)
	}
	return nil
}

func (l *Listener) Listen(ctx context.Context, timeout, phraseLimit time.Duration) (audio.Buffer, error) {
	tail := l.pause
	if tail > maxNonSpeakingTail {
		tail = maxNonSpeakingTail
	}

	var preRoll [][]int16
	var preRollDur, waited time.Duration
	for {
		frame, err := l.source.ReadFrame(ctx)
		if err != nil {
			return audio.Buffer{}, err
		}
		frameDur := l.frameDuration(frame)
		if rms(frame) > l.threshold {
			preRoll = append(preRoll, frame)
			break
		}
		waited += frameDur
		if timeout > 0 && waited > timeout {
			return audio.Buffer{}, audio.ErrListenTimeout
		}
		preRoll = append(preRoll, frame)
		preRollDur += frameDur
		for preRollDur > tail && len(preRoll) > 0 {
			preRollDur -= l.frameDuration(preRoll[0])
			preRoll = preRoll[1:]
		}
	}

	frames := preRoll
	var phrase, silence time.Duration
	silentFrames := 0
	for {
		frame, err := l.source.ReadFrame(ctx)
		if err != nil {
			return audio.Buffer{}, err
		}
		frameDur := l.frameDuration(frame)
		frames = append(frames, frame)
		phrase += frameDur
		if rms(frame) > l.threshold {
			silence = 0
			silentFrames = 0
		} else {
			silence += frameDur
			silentFrames++
		}
		if silence > l.pause {
			break
		}
		if phraseLimit > 0 && phrase > phraseLimit {
			break
		}
	}

	frames = trimSilentTail(frames, silentFrames, l.framesIn(tail, frames))
	return audio.Buffer{PCM: encodePCM(frames), SampleRate: l.source.SampleRate(), Channels: 1}, nil
}

func (l *Listener) Close() error {
	return l.source.Close()
}

func (l *Listener) frameDuration(frame []int16) time.Duration {
	rate := l.source.SampleRate()
	if rate <= 0 {
		return 0
	}
	return time.Duration(len(frame)) * time.Second / time.Duration(rate)
}

func (l *Listener) framesIn(d time.Duration, frames [][]int16) int {
	if len(frames) == 0 {
		return 0
	}
	per := l.frameDuration(frames[len(frames)-1])
	if per <= 0 {
		return 0
	}
	return int(d / per)
}

// trimSilentTail drops trailing silent frames beyond keep.
func trimSilentTail(frames [][]int16, silent, keep int) [][]int16 {
	if drop := silent - keep; drop > 0 && drop < len(frames) {
		return frames[:len(frames)-drop]
	}
	return frames
}

func rms(frame []int16) float64 {
	if len(frame) == 0 {
		return 0
	}
	var sum float64
	for _, s := range frame {
		v := float64(s)
		sum += v * v
	}
	return math.Sqrt(sum / float64(len(frame)))
}

func encodePCM(frames [][]int16) []byte {
	n := 0
	for _, f := range frames {
		n += len(f)
	}
	out := make([]byte, 0, n*2)
	for _, f := range frames {
		for _, s := range f {
			out = binary.LittleEndian.AppendUint16(out, uint16(s))
		}
	}
	return out
}
