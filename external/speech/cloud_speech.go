package speech

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"cloud.google.com/go/auth/credentials"
	speech "cloud.google.com/go/speech/apiv2"
	speechpb "cloud.google.com/go/speech/apiv2/speechpb"
	"github.com/foxseedlab/tsuyaku/internal/audio"
	"github.com/foxseedlab/tsuyaku/internal/recognition"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	speechAPIEndpointPort = 443
	autoDetectLanguage    = "auto"
)

var errNoSpeechBackend = errors.New("speech backend is not configured")

type CloudSpeechConfig struct {
	ProjectID       string
	CredentialsJSON string
	Location        string
	Model           string
}

type recognizeFunc func(ctx context.Context, req *speechpb.RecognizeRequest) (*speechpb.RecognizeResponse, error)

type CloudSpeechEngine struct {
	projectID       string
	credentialsJSON string
	location        string
	model           string

	mu        sync.Mutex
	client    *speech.Client
	recognize recognizeFunc
}

func NewCloudSpeechEngine(cfg CloudSpeechConfig) *CloudSpeechEngine {
	location := strings.TrimSpace(cfg.Location)
	if location == "" {
		location = "global"
	}
	return &CloudSpeechEngine{
		projectID:       cfg.ProjectID,
		credentialsJSON: cfg.CredentialsJSON,
		location:        location,
		model:           strings.TrimSpace(cfg.Model),
	}
}

func (e *CloudSpeechEngine) RecognizeAutoDetect(ctx context.Context, buf audio.Buffer) (string, error) {
	return e.run(ctx, buf, autoDetectLanguage)
}

func (e *CloudSpeechEngine) RecognizeWithLocale(ctx context.Context, buf audio.Buffer, locale string) (string, error) {
	return e.run(ctx, buf, locale)
}

func (e *CloudSpeechEngine) run(ctx context.Context, buf audio.Buffer, languageCode string) (string, error) {
	if buf.Empty() {
		return "", recognition.ErrNoMatch
	}
	recognize, err := e.recognizer(ctx)
	if err != nil {
		return "", err
	}
	resp, err := recognize(ctx, e.buildRequest(buf, languageCode))
	if err != nil {
		if st, ok := status.FromError(err); ok && st.Code() == codes.InvalidArgument && languageCode == autoDetectLanguage {
			slog.Debug("auto language detection rejected by model", "model", e.model, "error", err)
			return "", recognition.ErrNoMatch
		}
		return "", err
	}
	return joinTranscripts(resp)
}

func (e *CloudSpeechEngine) buildRequest(buf audio.Buffer, languageCode string) *speechpb.RecognizeRequest {
	channels := buf.Channels
	if channels <= 0 {
		channels = 1
	}
	return &speechpb.RecognizeRequest{
		Recognizer: fmt.Sprintf("projects/%s/locations/%s/recognizers/_", e.projectID, e.location),
		Config: &speechpb.RecognitionConfig{
			Model:         e.model,
			LanguageCodes: []string{languageCode},
			DecodingConfig: &speechpb.RecognitionConfig_ExplicitDecodingConfig{
				ExplicitDecodingConfig: &speechpb.ExplicitDecodingConfig{
					Encoding:          speechpb.ExplicitDecodingConfig_LINEAR16,
					SampleRateHertz:   int32(buf.SampleRate),
					AudioChannelCount: int32(channels),
				},
			},
			Features: &speechpb.RecognitionFeatures{EnableAutomaticPunctuation: true},
		},
		AudioSource: &speechpb.RecognizeRequest_Content{Content: buf.PCM},
	}
}

func joinTranscripts(resp *speechpb.RecognizeResponse) (string, error) {
	parts := make([]string, 0, len(resp.GetResults()))
	for _, result := range resp.GetResults() {
		if len(result.GetAlternatives()) == 0 {
			continue
		}
		if text := strings.TrimSpace(result.GetAlternatives()[0].GetTranscript()); text != "" {
			parts = append(parts, text)
		}
	}
	if len(parts) == 0 {
		return "", recognition.ErrNoMatch
	}
	return strings.Join(parts, " "), nil
}

func (e *CloudSpeechEngine) recognizer(ctx context.Context) (recognizeFunc, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.recognize != nil {
		return e.recognize, nil
	}

	creds, err := credentials.DetectDefault(&credentials.DetectOptions{
		CredentialsJSON: []byte(e.credentialsJSON),
		Scopes:          []string{"https://www.googleapis.com/auth/cloud-platform"},
	})
	if err != nil {
		return nil, fmt.Errorf("detect credentials: %w", err)
	}
	opts := []option.ClientOption{
		option.WithAuthCredentials(creds),
	}
	if e.location != "global" {
		opts = append(opts, option.WithEndpoint(fmt.Sprintf("%s-speech.googleapis.com:%d", e.location, speechAPIEndpointPort)))
	}
	client, err := speech.NewClient(ctx, opts...)
	if err != nil {
		return nil, err
	}
	slog.Info("cloud speech client initialized", "location", e.location, "model", e.model)
	e.client = client
	e.recognize = func(ctx context.Context, req *speechpb.RecognizeRequest) (*speechpb.RecognizeResponse, error) {
		return client.Recognize(ctx, req)
	}
	return e.recognize, nil
}

func (e *CloudSpeechEngine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.client == nil {
		return nil
	}
	err := e.client.Close()
	e.client = nil
	e.recognize = nil
	return err
}

type unavailableEngine struct{}

func (unavailableEngine) RecognizeAutoDetect(context.Context, audio.Buffer) (string, error) {
	return "", errNoSpeechBackend
}

func (unavailableEngine) RecognizeWithLocale(context.Context, audio.Buffer, string) (string, error) {
	return "", errNoSpeechBackend
}
