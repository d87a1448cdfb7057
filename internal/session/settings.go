package session

import (
	"github.com/foxseedlab/tsuyaku/internal/audio"
	"github.com/foxseedlab/tsuyaku/internal/capture"
	"github.com/foxseedlab/tsuyaku/internal/config"
	"github.com/foxseedlab/tsuyaku/internal/language"
	"github.com/foxseedlab/tsuyaku/internal/synthesis"
)

func captureSettings(cfg config.Config) capture.Settings {
	return capture.Settings{
		Lang1:               language.NewSlot(cfg.Language1, cfg.Language1Locale),
		Lang2:               language.NewSlot(cfg.Language2, cfg.Language2Locale),
		AutoDetect:          cfg.AutoDetectLanguage,
		ListenTimeout:       config.Seconds(cfg.ListenTimeoutSec),
		PhraseTimeLimit:     config.Seconds(cfg.PhraseTimeLimitSec),
		MaxDuration:         config.Seconds(cfg.RecordDurationSec),
		CalibrationDuration: config.Seconds(cfg.CalibrationDurationSec),
		Microphone: audio.Options{
			DeviceIndex:     cfg.MicIndex,
			SampleRate:      cfg.SampleRate,
			EnergyThreshold: cfg.EnergyThreshold,
			PauseThreshold:  config.Seconds(cfg.PauseThresholdSec),
		},
	}
}

func synthesisRequest(cfg config.Config, text, lang string) synthesis.Request {
	return synthesis.Request{
		Text:     text,
		Language: lang,
		VoiceID:  cfg.TTSVoiceID,
		Speed:    cfg.TTSSpeed,
		Volume:   cfg.TTSVolume,
	}
}

func providerOptions(cfg config.Config) synthesis.Options {
	return synthesis.Options{
		ArtifactDir: cfg.ArtifactDir,
		Timeout:     config.Seconds(cfg.TTSTimeoutSec),
	}
}
