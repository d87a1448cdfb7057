package synthesis

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/foxseedlab/tsuyaku/internal/synthesis"
)

const (
	elevenLabsBaseURL      = "https://api.elevenlabs.io"
	elevenLabsKeyPrefix    = "sk_"
	elevenLabsVendorName   = "elevenlabs"
	elevenLabsStability    = 0.5
	elevenLabsSimilarity   = 0.5
	maxAudioResponseBytes  = 16 << 20
	maxErrorResponseBytes  = 4 << 10
	maxCatalogResponseSize = 4 << 20
)

var elevenLabsVoices = map[string]string{
	"ru": "IKne3meq5aSn9XLyUdCD",
	"en": "CwhRBWXzGAHq8TQ4Fs17",
	"es": "MF3mGyEYCl7XYWbV9V6O",
	"fr": "N2lVS1w4EtoT3dr4eOWO",
	"de": "ThT5KcBeYPX3keUQqHPh",
}

type ElevenLabsConfig struct {
	APIKey       string
	Model        string
	DefaultVoice string
	BaseURL      string
	HTTPClient   *http.Client
}

type ElevenLabs struct {
	apiKey       string
	model        string
	defaultVoice string
	baseURL      string
	client       *http.Client
}

func NewElevenLabs(cfg ElevenLabsConfig) *ElevenLabs {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = elevenLabsBaseURL
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{}
	}
	return &ElevenLabs{
		apiKey:       strings.TrimSpace(cfg.APIKey),
		model:        cfg.Model,
		defaultVoice: cfg.DefaultVoice,
		baseURL:      strings.TrimRight(baseURL, "/"),
		client:       client,
	}
}

func (e *ElevenLabs) Name() string {
	return elevenLabsVendorName
}

func (e *ElevenLabs) HasCredential() bool {
	return e.apiKey != ""
}

func (e *ElevenLabs) ValidateCredential() error {
	if e.apiKey == "" {
		return synthesis.NewAuthError("ElevenLabs API key is not set")
	}
	if !strings.HasPrefix(e.apiKey, elevenLabsKeyPrefix) {
		return synthesis.NewAuthError("ElevenLabs API key must start with " + elevenLabsKeyPrefix)
	}
	return nil
}

func (e *ElevenLabs) VoiceFor(language string) string {
	if v, ok := elevenLabsVoices[language]; ok {
		return v
	}
	return e.defaultVoice
}

type elevenLabsVoiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
	Speed           float64 `json:"speed"`
	UseSpeakerBoost bool    `json:"use_speaker_boost"`
}

type elevenLabsRequest struct {
	Text          string                  `json:"text"`
	ModelID       string                  `json:"model_id"`
	VoiceSettings elevenLabsVoiceSettings `json:"voice_settings"`
}

func (e *ElevenLabs) Synthesize(ctx context.Context, req synthesis.Request) ([]byte, error) {
	payload, err := json.Marshal(elevenLabsRequest{
		Text:    req.Text,
		ModelID: e.model,
		VoiceSettings: elevenLabsVoiceSettings{
			Stability:       elevenLabsStability,
			SimilarityBoost: elevenLabsSimilarity,
			Speed:           req.Speed,
			UseSpeakerBoost: true,
		},
	})
	if err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("%s/v1/text-to-speech/%s", e.baseURL, url.PathEscape(req.VoiceID))
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Accept", "audio/mpeg")
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("xi-api-key", e.apiKey)

	resp, err := e.client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode != http.StatusOK {
		return nil, synthesis.NewStatusError(resp.StatusCode, readErrorMessage(resp.Body), synthesis.KindAuth)
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxAudioResponseBytes))
}

type elevenLabsVoice struct {
	VoiceID  string            `json:"voice_id"`
	Name     string            `json:"name"`
	Category string            `json:"category"`
	Labels   map[string]string `json:"labels"`
}

func (e *ElevenLabs) ListVoices(ctx context.Context) ([]synthesis.Voice, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, e.baseURL+"/v1/voices", nil)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("xi-api-key", e.apiKey)
	resp, err := e.client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode != http.StatusOK {
		return nil, synthesis.NewStatusError(resp.StatusCode, readErrorMessage(resp.Body), synthesis.KindAuth)
	}

	var body struct {
		Voices []elevenLabsVoice `json:"voices"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxCatalogResponseSize)).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode voices: %w", err)
	}
	voices := make([]synthesis.Voice, 0, len(body.Voices))
	for _, v := range body.Voices {
		voices = append(voices, synthesis.Voice{
			ID:          v.VoiceID,
			Name:        v.Name,
			Description: describeElevenLabsVoice(v),
		})
	}
	return voices, nil
}

func describeElevenLabsVoice(v elevenLabsVoice) string {
	parts := make([]string, 0, 3)
	for _, key := range []string{"gender", "accent", "description"} {
		if label := v.Labels[key]; label != "" {
			parts = append(parts, label)
		}
	}
	if len(parts) == 0 {
		return v.Category
	}
	return strings.Join(parts, ", ")
}

// readErrorMessage returns the vendor's error message when the body is the
// usual JSON envelope, otherwise a truncated copy of the raw body.
func readErrorMessage(r io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(r, maxErrorResponseBytes))
	if err != nil || len(raw) == 0 {
		return "no details"
	}
	var envelope struct {
		Detail any `json:"detail"`
		Error  struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if json.Unmarshal(raw, &envelope) == nil {
		if envelope.Error.Message != "" {
			return envelope.Error.Message
		}
		switch d := envelope.Detail.(type) {
		case string:
			return d
		case map[string]any:
			if msg, ok := d["message"].(string); ok && msg != "" {
				return msg
			}
		}
	}
	msg := strings.TrimSpace(string(raw))
	if len(msg) > 200 {
		msg = msg[:200]
	}
	return msg
}
