//go:build portaudio

package audio

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/foxseedlab/tsuyaku/internal/audio"
	"github.com/gordonklaus/portaudio"
)

const framesPerBuffer = 1024

type portAudioSource struct {
	mu         sync.Mutex
	stream     *portaudio.Stream
	buffer     []int16
	sampleRate int
}

// OpenMicrophone opens the input device at opts.DeviceIndex, or the default
// input device when the index is negative.
func OpenMicrophone(opts audio.Options) (audio.Microphone, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("%w: %v", audio.ErrDeviceUnavailable, err)
	}
	dev, err := inputDevice(opts.DeviceIndex)
	if err != nil {
		_ = portaudio.Terminate()
		return nil, fmt.Errorf("%w: %v", audio.ErrDeviceUnavailable, err)
	}

	buffer := make([]int16, framesPerBuffer)
	params := portaudio.HighLatencyParameters(dev, nil)
	params.Input.Channels = 1
	params.SampleRate = float64(opts.SampleRate)
	params.FramesPerBuffer = framesPerBuffer
	stream, err := portaudio.OpenStream(params, buffer)
	if err != nil {
		_ = portaudio.Terminate()
		return nil, fmt.Errorf("%w: %v", audio.ErrDeviceUnavailable, err)
	}
	if err := stream.Start(); err != nil {
		_ = stream.Close()
		_ = portaudio.Terminate()
		return nil, fmt.Errorf("%w: %v", audio.ErrDeviceUnavailable, err)
	}
	slog.Info("microphone opened", "device", dev.Name, "sample_rate", opts.SampleRate)

	src := &portAudioSource{stream: stream, buffer: buffer, sampleRate: opts.SampleRate}
	return NewListener(src, opts), nil
}

func inputDevice(index int) (*portaudio.DeviceInfo, error) {
	if index < 0 {
		return portaudio.DefaultInputDevice()
	}
	devices, err := portaudio.Devices()
	if err != nil {
		return nil, err
	}
	if index >= len(devices) {
		return nil, fmt.Errorf("device index %d out of range (%d devices)", index, len(devices))
	}
	if devices[index].MaxInputChannels < 1 {
		return nil, fmt.Errorf("device %q has no input channels", devices[index].Name)
	}
	return devices[index], nil
}

func (s *portAudioSource) ReadFrame(ctx context.Context) ([]int16, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stream == nil {
		return nil, audio.ErrDeviceUnavailable
	}
	if err := s.stream.Read(); err != nil && err != portaudio.InputOverflowed {
		return nil, err
	}
	frame := make([]int16, len(s.buffer))
	copy(frame, s.buffer)
	return frame, nil
}

func (s *portAudioSource) SampleRate() int {
	return s.sampleRate
}

func (s *portAudioSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stream == nil {
		return nil
	}
	_ = s.stream.Stop()
	err := s.stream.Close()
	s.stream = nil
	_ = portaudio.Terminate()
	return err
}
