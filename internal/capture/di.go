package capture

import (
	"github.com/foxseedlab/tsuyaku/internal/audio"
	"github.com/foxseedlab/tsuyaku/internal/bus"
	"github.com/foxseedlab/tsuyaku/internal/recognition"
	"github.com/foxseedlab/tsuyaku/internal/telemetry"
	"github.com/foxseedlab/tsuyaku/internal/translation"
	"github.com/samber/do/v2"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (*Controller, error) {
		deps := Deps{
			Recognizer: do.MustInvoke[*recognition.Client](i),
			Translator: do.MustInvoke[*translation.Client](i),
			Publisher:  do.MustInvoke[*bus.Bus](i),
		}
		if metrics := do.MustInvoke[*telemetry.Metrics](i); metrics != nil {
			deps.Observer = metrics
		}
		return NewController(deps, do.MustInvoke[audio.MicrophoneOpener](i)), nil
	})
}
