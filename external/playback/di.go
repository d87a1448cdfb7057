package playback

import (
	"github.com/foxseedlab/tsuyaku/internal/config"
	"github.com/foxseedlab/tsuyaku/internal/synthesis"
	"github.com/samber/do/v2"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (synthesis.Player, error) {
		c := do.MustInvoke[*config.Config](i)
		return NewCommandPlayer(c.PlaybackCommand)
	})
}
