package session

import (
	"github.com/foxseedlab/tsuyaku/internal/bus"
	"github.com/foxseedlab/tsuyaku/internal/capture"
	"github.com/foxseedlab/tsuyaku/internal/config"
	"github.com/foxseedlab/tsuyaku/internal/discord"
	"github.com/foxseedlab/tsuyaku/internal/repository"
	"github.com/foxseedlab/tsuyaku/internal/synthesis"
	"github.com/foxseedlab/tsuyaku/internal/telemetry"
	"github.com/foxseedlab/tsuyaku/internal/translation"
	"github.com/foxseedlab/tsuyaku/internal/webhook"
	"github.com/samber/do/v2"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (*Manager, error) {
		cfg := do.MustInvoke[*config.Config](i)
		var player synthesis.Player
		if cfg.PlaybackCommand != "" {
			player = do.MustInvoke[synthesis.Player](i)
		}
		return NewManager(*cfg, Deps{
			Bus:        do.MustInvoke[*bus.Bus](i),
			Capture:    do.MustInvoke[*capture.Controller](i),
			Translator: do.MustInvoke[*translation.Client](i),
			NewVendor:  do.MustInvoke[synthesis.VendorFactory](i),
			Player:     player,
			Repository: do.MustInvoke[repository.Repository](i),
			Discord:    do.MustInvoke[discord.Client](i),
			Webhook:    do.MustInvoke[webhook.Sender](i),
			Mirror:     do.MustInvoke[bus.Mirror](i),
			Metrics:    do.MustInvoke[*telemetry.Metrics](i),
			Renderer:   do.MustInvoke[Renderer](i),
		}), nil
	})
}
