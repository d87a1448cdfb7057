package synthesis

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/foxseedlab/tsuyaku/internal/synthesis"
)

const (
	googleCloudBaseURL    = "https://texttospeech.googleapis.com"
	googleCloudKeyPrefix  = "AIza"
	googleCloudVendorName = "google_cloud"
)

var googleCloudVoices = map[string]string{
	"ru": "ru-RU-Standard-A",
	"en": "en-US-Standard-C",
	"es": "es-ES-Standard-A",
	"fr": "fr-FR-Standard-A",
	"de": "de-DE-Standard-A",
}

type GoogleCloudConfig struct {
	APIKey       string
	DefaultVoice string
	BaseURL      string
	HTTPClient   *http.Client
}

// GoogleCloud talks to the Cloud Text-to-Speech REST API with an API key.
type GoogleCloud struct {
	apiKey       string
	defaultVoice string
	baseURL      string
	client       *http.Client
}

func NewGoogleCloud(cfg GoogleCloudConfig) *GoogleCloud {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = googleCloudBaseURL
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{}
	}
	return &GoogleCloud{
		apiKey:       strings.TrimSpace(cfg.APIKey),
		defaultVoice: cfg.DefaultVoice,
		baseURL:      strings.TrimRight(baseURL, "/"),
		client:       client,
	}
}

func (g *GoogleCloud) Name() string {
	return googleCloudVendorName
}

func (g *GoogleCloud) HasCredential() bool {
	return g.apiKey != ""
}

func (g *GoogleCloud) ValidateCredential() error {
	if g.apiKey == "" {
		return synthesis.NewAuthError("Google Cloud API key is not set")
	}
	if !strings.HasPrefix(g.apiKey, googleCloudKeyPrefix) {
		return synthesis.NewAuthError("Google Cloud API key must start with " + googleCloudKeyPrefix)
	}
	return nil
}

func (g *GoogleCloud) VoiceFor(language string) string {
	if v, ok := googleCloudVoices[language]; ok {
		return v
	}
	return g.defaultVoice
}

type googleSynthesizeRequest struct {
	Input struct {
		Text string `json:"text"`
	} `json:"input"`
	Voice struct {
		LanguageCode string `json:"languageCode"`
		Name         string `json:"name"`
	} `json:"voice"`
	AudioConfig struct {
		AudioEncoding string  `json:"audioEncoding"`
		SpeakingRate  float64 `json:"speakingRate"`
		VolumeGainDB  float64 `json:"volumeGainDb"`
	} `json:"audioConfig"`
}

func (g *GoogleCloud) Synthesize(ctx context.Context, req synthesis.Request) ([]byte, error) {
	var body googleSynthesizeRequest
	body.Input.Text = req.Text
	body.Voice.Name = req.VoiceID
	body.Voice.LanguageCode = languageCodeFromVoice(req.VoiceID)
	body.AudioConfig.AudioEncoding = "MP3"
	body.AudioConfig.SpeakingRate = req.Speed
	body.AudioConfig.VolumeGainDB = volumeGainDB(req.Volume)

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint("/v1/text:synthesize"), bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode != http.StatusOK {
		return nil, synthesis.NewStatusError(resp.StatusCode, readErrorMessage(resp.Body), synthesis.KindPermission)
	}

	var result struct {
		AudioContent string `json:"audioContent"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxAudioResponseBytes)).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode synthesis response: %w", err)
	}
	if result.AudioContent == "" {
		return nil, nil
	}
	audio, err := base64.StdEncoding.DecodeString(result.AudioContent)
	if err != nil {
		return nil, fmt.Errorf("decode audio content: %w", err)
	}
	return audio, nil
}

type googleVoice struct {
	Name          string   `json:"name"`
	LanguageCodes []string `json:"languageCodes"`
	SSMLGender    string   `json:"ssmlGender"`
}

func (g *GoogleCloud) ListVoices(ctx context.Context) ([]synthesis.Voice, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, g.endpoint("/v1/voices"), nil)
	if err != nil {
		return nil, err
	}
	resp, err := g.client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode != http.StatusOK {
		return nil, synthesis.NewStatusError(resp.StatusCode, readErrorMessage(resp.Body), synthesis.KindPermission)
	}

	var body struct {
		Voices []googleVoice `json:"voices"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxCatalogResponseSize)).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode voices: %w", err)
	}
	voices := make([]synthesis.Voice, 0, len(body.Voices))
	for _, v := range body.Voices {
		voices = append(voices, synthesis.Voice{
			ID:          v.Name,
			Name:        v.Name,
			Description: fmt.Sprintf("%s - %s", v.SSMLGender, strings.Join(v.LanguageCodes, ", ")),
		})
	}
	return voices, nil
}

func (g *GoogleCloud) endpoint(path string) string {
	return g.baseURL + path + "?key=" + url.QueryEscape(g.apiKey)
}

// languageCodeFromVoice takes the locale prefix of a voice name such as
// ru-RU-Standard-A.
func languageCodeFromVoice(voice string) string {
	parts := strings.Split(voice, "-")
	if len(parts) < 2 {
		return "en-US"
	}
	return parts[0] + "-" + parts[1]
}

// volumeGainDB maps the 0..100 volume scale onto -25..+25 dB around 50.
func volumeGainDB(volume int) float64 {
	return float64(volume-50) * 0.5
}
