package terminal

import (
	"os"

	"github.com/foxseedlab/tsuyaku/internal/config"
	"github.com/foxseedlab/tsuyaku/internal/session"
	"github.com/samber/do/v2"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (*Renderer, error) {
		c := do.MustInvoke[*config.Config](i)
		return NewRenderer(os.Stdout, c.TranscriptLocation()), nil
	})
	do.Provide(injector, func(i do.Injector) (session.Renderer, error) {
		return do.MustInvoke[*Renderer](i), nil
	})
}
