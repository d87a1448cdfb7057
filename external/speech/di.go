package speech

import (
	"github.com/foxseedlab/tsuyaku/internal/config"
	"github.com/foxseedlab/tsuyaku/internal/recognition"
	"github.com/samber/do/v2"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (recognition.Engine, error) {
		c := do.MustInvoke[*config.Config](i)
		if !c.HasSpeechBackend() {
			return unavailableEngine{}, nil
		}
		return NewCloudSpeechEngine(CloudSpeechConfig{
			ProjectID:       c.GoogleCloudProjectID,
			CredentialsJSON: c.GoogleCloudCredentialsJSON,
			Location:        c.GoogleCloudSpeechLocation,
			Model:           c.GoogleCloudSpeechModel,
		}), nil
	})
	do.Provide(injector, func(i do.Injector) (*recognition.Client, error) {
		return recognition.NewClient(do.MustInvoke[recognition.Engine](i)), nil
	})
}
