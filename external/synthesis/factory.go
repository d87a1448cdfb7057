package synthesis

import (
	"fmt"

	"github.com/foxseedlab/tsuyaku/internal/config"
	"github.com/foxseedlab/tsuyaku/internal/synthesis"
)

// NewVendor builds the vendor named by cfg.TTSProvider.
func NewVendor(cfg config.Config) (synthesis.Vendor, error) {
	switch cfg.TTSProvider {
	case config.TTSProviderElevenLabs:
		return NewElevenLabs(ElevenLabsConfig{
			APIKey:       cfg.ElevenLabsAPIKey,
			Model:        cfg.ElevenLabsModel,
			DefaultVoice: cfg.ElevenLabsVoiceID,
		}), nil
	case config.TTSProviderGoogleCloud:
		return NewGoogleCloud(GoogleCloudConfig{
			APIKey:       cfg.GoogleCloudAPIKey,
			DefaultVoice: cfg.GoogleCloudVoiceName,
		}), nil
	}
	return nil, fmt.Errorf("unknown tts provider %q", cfg.TTSProvider)
}
