package eventbus

import (
	"log/slog"

	"github.com/foxseedlab/tsuyaku/internal/bus"
	"github.com/foxseedlab/tsuyaku/internal/config"
	"github.com/samber/do/v2"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (bus.Mirror, error) {
		c := do.MustInvoke[*config.Config](i)
		return OpenMirror(c.NATSURL, c.NATSSubjectPrefix), nil
	})
}

// OpenMirror connects to NATS when url is set. An unreachable server is
// logged and mirroring is disabled so the interpreter keeps running.
func OpenMirror(url, prefix string) bus.Mirror {
	if url == "" {
		return noopMirror{}
	}
	m, err := ConnectNATS(url, prefix)
	if err != nil {
		slog.Warn("nats unavailable; continuing without event mirror", "error", err)
		return noopMirror{}
	}
	return m
}
