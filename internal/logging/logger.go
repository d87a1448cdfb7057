package logging

import (
	"log/slog"
	"strings"

	"github.com/foxseedlab/tsuyaku/internal/config"
	"go.uber.org/zap"
	"go.uber.org/zap/exp/zapslog"
)

// New builds a slog logger backed by zap. The returned function flushes
// buffered entries and should be called before exit.
func New(cfg *config.Config) (*slog.Logger, func(), error) {
	var zapConfig zap.Config
	switch strings.ToLower(cfg.LogFormat) {
	case "console":
		zapConfig = zap.NewDevelopmentConfig()
	default:
		zapConfig = zap.NewProductionConfig()
	}

	level, err := zap.ParseAtomicLevel(strings.ToLower(cfg.LogLevel))
	if err != nil {
		level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	if cfg.IsDevelopment() {
		level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	zapConfig.Level = level

	logger, err := zapConfig.Build(zap.AddStacktrace(zap.ErrorLevel))
	if err != nil {
		return nil, nil, err
	}
	sync := func() {
		// Sync fails on some terminals; nothing useful can be done about it.
		_ = logger.Sync()
	}
	return slog.New(zapslog.NewHandler(logger.Core())), sync, nil
}
