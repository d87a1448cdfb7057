package config

import (
	"fmt"
	"strings"
	"time"
)

const (
	TTSProviderElevenLabs  = "elevenlabs"
	TTSProviderGoogleCloud = "google_cloud"

	defaultElevenLabsModel = "eleven_turbo_v2"
)

var deprecatedElevenLabsModels = []string{"eleven_multilingual_v1", "eleven_monolingual_v1"}

type Config struct {
	Env       string `yaml:"env" env:"ENV"`
	LogLevel  string `yaml:"log_level" env:"LOG_LEVEL"`
	LogFormat string `yaml:"log_format" env:"LOG_FORMAT"`

	Language1       string `yaml:"language1" env:"LANGUAGE1"`
	Language2       string `yaml:"language2" env:"LANGUAGE2"`
	Language1Locale string `yaml:"language1_locale" env:"LANGUAGE1_LOCALE"`
	Language2Locale string `yaml:"language2_locale" env:"LANGUAGE2_LOCALE"`
	MaxMessages     int    `yaml:"max_messages" env:"MAX_MESSAGES"`

	SampleRate             int     `yaml:"sample_rate" env:"SAMPLE_RATE"`
	RecordDurationSec      float64 `yaml:"record_duration_sec" env:"RECORD_DURATION_SEC"`
	EnergyThreshold        float64 `yaml:"energy_threshold" env:"ENERGY_THRESHOLD"`
	PauseThresholdSec      float64 `yaml:"pause_threshold_sec" env:"PAUSE_THRESHOLD_SEC"`
	CalibrationDurationSec float64 `yaml:"calibration_duration_sec" env:"CALIBRATION_DURATION_SEC"`
	MicIndex               int     `yaml:"mic_index" env:"MIC_INDEX"`
	ListenTimeoutSec       float64 `yaml:"listen_timeout_sec" env:"LISTEN_TIMEOUT_SEC"`
	PhraseTimeLimitSec     float64 `yaml:"phrase_time_limit_sec" env:"PHRASE_TIME_LIMIT_SEC"`
	AutoDetectLanguage     bool    `yaml:"auto_detect_language" env:"AUTO_DETECT_LANGUAGE"`
	EnableTextInput        bool    `yaml:"enable_text_input" env:"ENABLE_TEXT_INPUT"`

	TranslationTimeoutSec float64 `yaml:"translation_timeout_sec" env:"TRANSLATION_TIMEOUT_SEC"`
	TranslateURL          string  `yaml:"translate_url" env:"TRANSLATE_URL"`

	EnableTTS            bool    `yaml:"enable_tts" env:"ENABLE_TTS"`
	AutoPlayTTS          bool    `yaml:"auto_play_tts" env:"AUTO_PLAY_TTS"`
	TTSProvider          string  `yaml:"tts_provider" env:"TTS_PROVIDER"`
	TTSVoiceID           string  `yaml:"tts_voice_id" env:"TTS_VOICE_ID"`
	TTSSpeed             float64 `yaml:"tts_speed" env:"TTS_SPEED"`
	TTSVolume            int     `yaml:"tts_volume" env:"TTS_VOLUME"`
	TTSTimeoutSec        float64 `yaml:"tts_timeout_sec" env:"TTS_TIMEOUT_SEC"`
	ElevenLabsAPIKey     string  `yaml:"elevenlabs_api_key" env:"ELEVENLABS_API_KEY"`
	ElevenLabsModel      string  `yaml:"elevenlabs_model" env:"ELEVENLABS_MODEL"`
	ElevenLabsVoiceID    string  `yaml:"elevenlabs_voice_id" env:"ELEVENLABS_VOICE_ID"`
	GoogleCloudAPIKey    string  `yaml:"google_cloud_api_key" env:"GOOGLE_CLOUD_API_KEY"`
	GoogleCloudVoiceName string  `yaml:"google_cloud_voice_name" env:"GOOGLE_CLOUD_VOICE_NAME"`
	ArtifactDir          string  `yaml:"artifact_dir" env:"ARTIFACT_DIR"`
	PlaybackCommand      string  `yaml:"playback_command" env:"PLAYBACK_COMMAND"`

	GoogleCloudProjectID       string `yaml:"google_cloud_project_id" env:"GOOGLE_CLOUD_PROJECT_ID"`
	GoogleCloudCredentialsJSON string `yaml:"google_cloud_credentials_json" env:"GOOGLE_CLOUD_CREDENTIALS_JSON"`
	GoogleCloudSpeechLocation  string `yaml:"google_cloud_speech_location" env:"GOOGLE_CLOUD_SPEECH_LOCATION"`
	GoogleCloudSpeechModel     string `yaml:"google_cloud_speech_model" env:"GOOGLE_CLOUD_SPEECH_MODEL"`

	DatabaseURL           string `yaml:"database_url" env:"DATABASE_URL"`
	DiscordToken          string `yaml:"discord_token" env:"DISCORD_TOKEN"`
	DiscordGuildID        string `yaml:"discord_guild_id" env:"DISCORD_GUILD_ID"`
	DiscordRelayChannelID string `yaml:"discord_relay_channel_id" env:"DISCORD_RELAY_CHANNEL_ID"`
	TranscriptWebhookURL  string `yaml:"transcript_webhook_url" env:"TRANSCRIPT_WEBHOOK_URL"`
	TranscriptTimezone    string `yaml:"transcript_timezone" env:"TRANSCRIPT_TIMEZONE"`
	NATSURL               string `yaml:"nats_url" env:"NATS_URL"`
	NATSSubjectPrefix     string `yaml:"nats_subject_prefix" env:"NATS_SUBJECT_PREFIX"`
	MetricsBind           string `yaml:"metrics_bind" env:"METRICS_BIND"`
	OTLPEndpoint          string `yaml:"otlp_endpoint" env:"OTLP_ENDPOINT"`
	OTLPInsecure          bool   `yaml:"otlp_insecure" env:"OTLP_INSECURE"`
}

func Default() Config {
	return Config{
		Env:                       "production",
		LogLevel:                  "info",
		LogFormat:                 "json",
		Language1:                 "ru",
		Language2:                 "en",
		MaxMessages:               30,
		SampleRate:                16000,
		RecordDurationSec:         300,
		EnergyThreshold:           300,
		PauseThresholdSec:         0.8,
		CalibrationDurationSec:    0.5,
		MicIndex:                  -1,
		ListenTimeoutSec:          10,
		PhraseTimeLimitSec:        10,
		AutoDetectLanguage:        true,
		EnableTextInput:           true,
		TranslationTimeoutSec:     5,
		TranslateURL:              "https://translate.googleapis.com/translate_a/single",
		EnableTTS:                 true,
		TTSProvider:               TTSProviderElevenLabs,
		TTSSpeed:                  1.0,
		TTSVolume:                 80,
		TTSTimeoutSec:             30,
		ElevenLabsModel:           defaultElevenLabsModel,
		ElevenLabsVoiceID:         "CwhRBWXzGAHq8TQ4Fs17",
		GoogleCloudVoiceName:      "ru-RU-Standard-A",
		GoogleCloudSpeechLocation: "global",
		GoogleCloudSpeechModel:    "chirp_3",
		TranscriptTimezone:        "Local",
		NATSSubjectPrefix:         "tsuyaku",
	}
}

func (c *Config) Validate() error {
	for _, req := range c.requiredFieldChecks() {
		if req.value == "" {
			return fmt.Errorf("%s is required", req.name)
		}
	}
	if c.MaxMessages <= 0 {
		return fmt.Errorf("MAX_MESSAGES must be positive, got %d", c.MaxMessages)
	}
	if c.SampleRate <= 0 {
		return fmt.Errorf("SAMPLE_RATE must be positive, got %d", c.SampleRate)
	}
	if c.RecordDurationSec <= 0 {
		return fmt.Errorf("RECORD_DURATION_SEC must be positive, got %v", c.RecordDurationSec)
	}
	if c.ListenTimeoutSec < 0 || c.PhraseTimeLimitSec < 0 || c.PauseThresholdSec < 0 {
		return fmt.Errorf("listen timeout, phrase time limit and pause threshold must not be negative")
	}
	if c.TTSSpeed < 0.5 || c.TTSSpeed > 2.0 {
		return fmt.Errorf("TTS_SPEED must be between 0.5 and 2.0, got %v", c.TTSSpeed)
	}
	if c.TTSVolume < 0 || c.TTSVolume > 100 {
		return fmt.Errorf("TTS_VOLUME must be between 0 and 100, got %d", c.TTSVolume)
	}
	switch c.TTSProvider {
	case TTSProviderElevenLabs, TTSProviderGoogleCloud:
	default:
		return fmt.Errorf("TTS_PROVIDER must be %q or %q, got %q", TTSProviderElevenLabs, TTSProviderGoogleCloud, c.TTSProvider)
	}
	if c.DiscordRelayChannelID != "" && c.DiscordToken == "" {
		return fmt.Errorf("DISCORD_TOKEN is required when DISCORD_RELAY_CHANNEL_ID is set")
	}
	if _, err := time.LoadLocation(c.TranscriptTimezone); err != nil {
		return fmt.Errorf("TRANSCRIPT_TIMEZONE is invalid: %w", err)
	}
	return nil
}

type requiredEnvField struct {
	name  string
	value string
}

func (c *Config) requiredFieldChecks() []requiredEnvField {
	return []requiredEnvField{
		{name: "LANGUAGE1", value: c.Language1},
		{name: "LANGUAGE2", value: c.Language2},
		{name: "TRANSCRIPT_TIMEZONE", value: c.TranscriptTimezone},
	}
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// HasSpeechBackend reports whether enough is configured to run speech recognition.
func (c *Config) HasSpeechBackend() bool {
	return c.GoogleCloudProjectID != ""
}

// MigrateDeprecatedModel replaces retired ElevenLabs models and reports whether it did.
func (c *Config) MigrateDeprecatedModel() bool {
	for _, m := range deprecatedElevenLabsModels {
		if c.ElevenLabsModel == m {
			c.ElevenLabsModel = defaultElevenLabsModel
			return true
		}
	}
	return false
}

func (c *Config) TranscriptLocation() *time.Location {
	loc, err := time.LoadLocation(c.TranscriptTimezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// LogValues returns a summary safe to log, with every credential masked.
func (c *Config) LogValues() []any {
	return []any{
		"env", c.Env,
		"languages", c.Language1 + "," + c.Language2,
		"tts_provider", c.TTSProvider,
		"enable_tts", c.EnableTTS,
		"auto_play_tts", c.AutoPlayTTS,
		"elevenlabs_api_key", MaskSecret(c.ElevenLabsAPIKey),
		"google_cloud_api_key", MaskSecret(c.GoogleCloudAPIKey),
		"discord_token", MaskSecret(c.DiscordToken),
		"database_configured", c.DatabaseURL != "",
		"nats_configured", c.NATSURL != "",
	}
}

func MaskSecret(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 8 {
		return strings.Repeat("*", len(s))
	}
	return s[:4] + strings.Repeat("*", len(s)-8) + s[len(s)-4:]
}

func Seconds(v float64) time.Duration {
	return time.Duration(v * float64(time.Second))
}
