package synthesis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/foxseedlab/tsuyaku/internal/config"
)

const DefaultTimeout = 30 * time.Second

type Voice struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type Request struct {
	Text     string
	Language string
	// VoiceID overrides the per-language default when set.
	VoiceID string
	Speed   float64
	Volume  int
}

// Vendor is one text-to-speech service.
type Vendor interface {
	Name() string
	HasCredential() bool
	// ValidateCredential checks the credential format locally without any network call.
	ValidateCredential() error
	VoiceFor(language string) string
	Synthesize(ctx context.Context, req Request) ([]byte, error)
	ListVoices(ctx context.Context) ([]Voice, error)
}

// VendorFactory builds the vendor selected by cfg.
type VendorFactory func(cfg config.Config) (Vendor, error)

type Options struct {
	ArtifactDir string
	Timeout     time.Duration
}

// Provider runs speak requests against a Vendor, each on its own goroutine.
type Provider struct {
	vendor      Vendor
	artifactDir string
	timeout     time.Duration
	wg          sync.WaitGroup
}

func NewProvider(vendor Vendor, opts Options) *Provider {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Provider{vendor: vendor, artifactDir: opts.ArtifactDir, timeout: timeout}
}

func (p *Provider) VendorName() string {
	return p.vendor.Name()
}

// Speak returns immediately. Credential and input problems fail the task
// before any request is made; otherwise the request runs in the background
// with a fixed timeout that the caller cannot cancel.
func (p *Provider) Speak(req Request) *Task {
	task := newTask()
	if strings.TrimSpace(req.Text) == "" {
		task.finish(Outcome{Err: &Error{Kind: KindValidation, Message: "text is empty"}})
		return task
	}
	if err := p.vendor.ValidateCredential(); err != nil {
		task.finish(Outcome{Err: asSynthesisError(err, KindAuth)})
		return task
	}
	if req.VoiceID == "" {
		req.VoiceID = p.vendor.VoiceFor(req.Language)
	}

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		task.finish(p.run(req))
	}()
	return task
}

func (p *Provider) run(req Request) Outcome {
	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()

	slog.Debug("synthesis request started", "vendor", p.vendor.Name(), "voice", req.VoiceID, "language", req.Language)
	body, err := p.vendor.Synthesize(ctx, req)
	if err != nil {
		if isTimeout(ctx, err) {
			return Outcome{Err: &Error{Kind: KindTimeout, Message: "request timed out", Err: err}}
		}
		return Outcome{Err: asSynthesisError(err, KindService)}
	}
	if len(body) == 0 {
		return Outcome{Err: &Error{Kind: KindEmptyResponse, Message: "vendor returned no audio"}}
	}

	path, err := p.writeArtifact(body)
	if err != nil {
		return Outcome{Err: &Error{Kind: KindService, Message: "write artifact", Err: err}}
	}
	slog.Debug("synthesis artifact written", "vendor", p.vendor.Name(), "path", path, "bytes", len(body))
	return Outcome{Artifact: path}
}

func (p *Provider) writeArtifact(body []byte) (string, error) {
	f, err := os.CreateTemp(p.artifactDir, "tsuyaku-*.mp3")
	if err != nil {
		return "", err
	}
	if _, err := f.Write(body); err != nil {
		_ = f.Close()
		_ = os.Remove(f.Name())
		return "", err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(f.Name())
		return "", err
	}
	return f.Name(), nil
}

// ListVoices returns the vendor catalog, or nothing when no credential is configured.
func (p *Provider) ListVoices(ctx context.Context) ([]Voice, error) {
	if !p.vendor.HasCredential() {
		return nil, nil
	}
	voices, err := p.vendor.ListVoices(ctx)
	if err != nil {
		return nil, fmt.Errorf("list %s voices: %w", p.vendor.Name(), err)
	}
	return voices, nil
}

// Wait blocks until every spawned speak request has finished.
func (p *Provider) Wait() {
	p.wg.Wait()
}

func asSynthesisError(err error, fallback ErrorKind) *Error {
	var se *Error
	if errors.As(err, &se) {
		return se
	}
	return &Error{Kind: fallback, Message: err.Error(), Err: err}
}

func isTimeout(ctx context.Context, err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return true
	}
	var t interface{ Timeout() bool }
	return errors.As(err, &t) && t.Timeout()
}
