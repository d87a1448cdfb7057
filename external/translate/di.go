package translate

import (
	"github.com/foxseedlab/tsuyaku/internal/config"
	"github.com/foxseedlab/tsuyaku/internal/translation"
	"github.com/samber/do/v2"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (translation.Backend, error) {
		c := do.MustInvoke[*config.Config](i)
		return NewGTXBackend(c.TranslateURL, nil), nil
	})
	do.Provide(injector, func(i do.Injector) (*translation.Client, error) {
		c := do.MustInvoke[*config.Config](i)
		return translation.NewClient(do.MustInvoke[translation.Backend](i), config.Seconds(c.TranslationTimeoutSec)), nil
	})
}
