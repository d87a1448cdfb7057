//go:build !portaudio

package audio

import (
	"fmt"

	"github.com/foxseedlab/tsuyaku/internal/audio"
)

func OpenMicrophone(audio.Options) (audio.Microphone, error) {
	return nil, fmt.Errorf("%w: built without portaudio support", audio.ErrDeviceUnavailable)
}
