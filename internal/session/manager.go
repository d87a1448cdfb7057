package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/foxseedlab/tsuyaku/internal/audio"
	"github.com/foxseedlab/tsuyaku/internal/bus"
	"github.com/foxseedlab/tsuyaku/internal/capture"
	"github.com/foxseedlab/tsuyaku/internal/config"
	"github.com/foxseedlab/tsuyaku/internal/dialogue"
	"github.com/foxseedlab/tsuyaku/internal/discord"
	"github.com/foxseedlab/tsuyaku/internal/repository"
	"github.com/foxseedlab/tsuyaku/internal/synthesis"
	"github.com/foxseedlab/tsuyaku/internal/telemetry"
	"github.com/foxseedlab/tsuyaku/internal/translation"
	"github.com/foxseedlab/tsuyaku/internal/webhook"
	"github.com/google/uuid"
)

const (
	Source = "session"

	pollInterval     = 100 * time.Millisecond
	outboxSize       = 256
	playbackSize     = 16
	deliveryTimeout  = 10 * time.Second
	voicesTimeout    = 15 * time.Second
	manualConfidence = 0.9
	sourceManual     = "manual"
)

// CaptureController starts and stops the single capture loop.
type CaptureController interface {
	Start(ctx context.Context, settings capture.Settings) error
	Stop()
	Running() bool
}

// Renderer draws consumer state on the user-facing surface. It is only ever
// called from the consumer goroutine.
type Renderer interface {
	Message(m dialogue.Message)
	Notice(kind bus.Kind, text string)
	State(state bus.CaptureState, elapsed time.Duration, stats dialogue.Stats)
}

// Deps are the manager's collaborators. Player, Repository, Discord, Webhook,
// Mirror and Metrics may be nil.
type Deps struct {
	Bus        *bus.Bus
	Capture    CaptureController
	Translator capture.Translator
	NewVendor  synthesis.VendorFactory
	Player     synthesis.Player
	Repository repository.Repository
	Discord    discord.Client
	Webhook    webhook.Sender
	Mirror     bus.Mirror
	Metrics    *telemetry.Metrics
	Renderer   Renderer
	Now        func() time.Time
}

// Manager is the single consumer of the bus. It owns the dialogue history,
// the speaker statistics and its own copy of the configuration; nothing else
// writes them.
type Manager struct {
	deps Deps
	cfg  config.Config

	guildID        string
	relayChannelID string
	location       *time.Location

	provider        *synthesis.Provider
	providerProblem string
	history         *dialogue.History
	stats           dialogue.Stats
	state           bus.CaptureState
	elapsed         time.Duration
	disabledReason  string

	sessionID string
	archiving bool
	seq       int

	commands chan commandRequest
	outbox   chan outbound
	playback chan string
}

type commandRequest struct {
	line  string
	reply chan string
}

// outbound is one unit of work for the delivery goroutine. Exactly one field is set.
type outbound struct {
	event      *bus.Event
	message    *archivedMessage
	transcript *exportedTranscript
	complete   *repository.CompleteSessionInput
}

type archivedMessage struct {
	seq int
	msg dialogue.Message
}

type exportedTranscript struct {
	filename string
	body     []byte
	meta     webhook.TranscriptMetadata
}

func NewManager(cfg config.Config, deps Deps) *Manager {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	m := &Manager{
		deps:           deps,
		cfg:            cfg,
		guildID:        cfg.DiscordGuildID,
		relayChannelID: cfg.DiscordRelayChannelID,
		location:       cfg.TranscriptLocation(),
		history:        dialogue.NewHistory(cfg.MaxMessages),
		state:          bus.StateIdle,
		commands:       make(chan commandRequest),
		outbox:         make(chan outbound, outboxSize),
		playback:       make(chan string, playbackSize),
	}
	if !cfg.HasSpeechBackend() {
		m.disabledReason = msgNoSpeechBackend
	}
	if cfg.EnableTTS {
		provider, err := m.buildProvider(cfg)
		if err != nil {
			m.providerProblem = err.Error()
		}
		m.provider = provider
	}
	return m
}

func (m *Manager) buildProvider(cfg config.Config) (*synthesis.Provider, error) {
	if m.deps.NewVendor == nil {
		return nil, errors.New("no speech provider configured")
	}
	vendor, err := m.deps.NewVendor(cfg)
	if err != nil {
		slog.Warn("failed to build speech vendor", "provider", cfg.TTSProvider, "error", err)
		return nil, err
	}
	slog.Info("speech provider ready", "provider", vendor.Name(), "has_credential", vendor.HasCredential())
	return synthesis.NewProvider(vendor, providerOptions(cfg)), nil
}

// Run consumes the bus until ctx is done. On return the capture loop has been
// stopped and every queued delivery has been attempted.
func (m *Manager) Run(ctx context.Context) error {
	m.openArchiveSession(ctx)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		m.runOutbox()
	}()
	go func() {
		defer wg.Done()
		m.runPlayback(ctx)
	}()

	m.appendNotice(msgInstructions)
	m.renderState()

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			m.shutdown()
			close(m.outbox)
			close(m.playback)
			wg.Wait()
			return nil
		case <-m.deps.Bus.Ready():
			m.drain(ctx)
		case <-ticker.C:
			m.drain(ctx)
		case req := <-m.commands:
			req.reply <- m.execute(ctx, req.line)
		}
	}
}

// Execute hands a command line or manual text to the consumer and waits for
// its reply. An empty reply means there is nothing to show.
func (m *Manager) Execute(ctx context.Context, line string) (string, error) {
	req := commandRequest{line: line, reply: make(chan string, 1)}
	select {
	case m.commands <- req:
	case <-ctx.Done():
		return "", ctx.Err()
	}
	select {
	case out := <-req.reply:
		return out, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (m *Manager) shutdown() {
	if m.deps.Capture != nil && m.deps.Capture.Running() {
		slog.Info("stopping capture for shutdown")
		m.deps.Capture.Stop()
	}
	m.drain(context.Background())
	m.deps.Bus.Close()
	if m.archiving {
		m.enqueue(outbound{complete: &repository.CompleteSessionInput{
			SessionID:    m.sessionID,
			EndedAt:      m.deps.Now(),
			MessageCount: m.seq,
		}})
	}
}

func (m *Manager) drain(ctx context.Context) {
	for _, e := range m.deps.Bus.Drain() {
		m.handle(ctx, e)
	}
}

func (m *Manager) handle(ctx context.Context, e bus.Event) {
	switch e.Kind {
	case bus.KindMessage:
		if e.Message != nil {
			m.acceptMessage(*e.Message)
		}
	case bus.KindStatus, bus.KindInfo:
		m.deps.Renderer.Notice(e.Kind, e.Text)
	case bus.KindError:
		m.handleError(ctx, e)
	case bus.KindElapsed:
		m.elapsed = e.Elapsed
		m.renderState()
	case bus.KindCaptureState:
		m.state = e.State
		m.renderState()
	case bus.KindSynthesis:
		m.handleSynthesis(ctx, e)
	}
	if m.deps.Mirror != nil {
		m.enqueue(outbound{event: &e})
	}
}

func (m *Manager) acceptMessage(msg dialogue.Message) {
	m.history.Append(msg)
	m.stats.Record(msg)
	m.deps.Renderer.Message(msg)
	if msg.IsSystem() {
		return
	}
	m.renderState()
	m.seq++
	m.enqueue(outbound{message: &archivedMessage{seq: m.seq, msg: msg}})

	if m.cfg.EnableTTS && m.cfg.AutoPlayTTS && msg.TranslatedText != "" && !translation.IsPlaceholder(msg.TranslatedText) {
		m.speak(msg.TranslatedText, msg.TargetLanguage)
	}
}

func (m *Manager) appendNotice(text string) {
	m.acceptMessage(dialogue.NewSystemNotice(text, m.deps.Now()))
}

func (m *Manager) handleError(ctx context.Context, e bus.Event) {
	m.deps.Renderer.Notice(bus.KindError, e.Text)
	if errors.Is(e.Err, audio.ErrDeviceUnavailable) {
		m.disabledReason = msgMicrophoneUnavailable
	}
	var te *translation.Error
	if errors.As(e.Err, &te) {
		m.deps.Metrics.TranslationFailed(ctx, string(te.Kind))
	}
}

func (m *Manager) handleSynthesis(ctx context.Context, e bus.Event) {
	if e.Err != nil {
		m.deps.Metrics.SynthesisFinished(ctx, e.Source, string(synthesis.KindOf(e.Err)))
		m.deps.Renderer.Notice(bus.KindError, describeSynthesisError(e.Err))
		return
	}
	m.deps.Metrics.SynthesisFinished(ctx, e.Source, "ok")
	if m.deps.Player == nil {
		m.deps.Renderer.Notice(bus.KindInfo, fmt.Sprintf(msgAudioSaved, e.Artifact))
		return
	}
	select {
	case m.playback <- e.Artifact:
	default:
		slog.Warn("playback queue full; keeping artifact", "artifact", e.Artifact)
		m.deps.Renderer.Notice(bus.KindInfo, fmt.Sprintf(msgAudioSaved, e.Artifact))
	}
}

func (m *Manager) renderState() {
	m.deps.Renderer.State(m.state, m.elapsed, m.stats)
}

// speak starts a synthesis task. Its outcome comes back through the bus as a
// synthesis event.
func (m *Manager) speak(text, lang string) string {
	if !m.cfg.EnableTTS {
		return msgTTSDisabled
	}
	if m.provider == nil {
		return fmt.Sprintf(msgTTSUnavailable, m.providerProblem)
	}
	task := m.provider.Speak(synthesisRequest(m.cfg, text, lang))
	vendor := m.provider.VendorName()
	publisher := m.deps.Bus
	go func() {
		o := task.Outcome()
		publisher.Publish(bus.SynthesisEvent(vendor, o.Artifact, o.Err))
	}()
	return fmt.Sprintf(msgSpeaking, text)
}

func (m *Manager) enqueue(item outbound) {
	select {
	case m.outbox <- item:
	default:
		slog.Warn("delivery queue full; dropping item")
	}
}

func (m *Manager) openArchiveSession(ctx context.Context) {
	m.sessionID = uuid.NewString()
	if m.deps.Repository == nil {
		return
	}
	createCtx, cancel := context.WithTimeout(ctx, deliveryTimeout)
	defer cancel()
	created, err := m.deps.Repository.CreateSession(createCtx, repository.CreateSessionInput{
		ID:        m.sessionID,
		Language1: m.cfg.Language1,
		Language2: m.cfg.Language2,
		StartedAt: m.deps.Now(),
	})
	if err != nil {
		slog.Error("failed to create archive session; archiving disabled", "error", err, "session_id", m.sessionID)
		return
	}
	m.archiving = true
	slog.Info("archive session created", "session_id", created.ID)
}

func (m *Manager) runOutbox() {
	for item := range m.outbox {
		ctx, cancel := context.WithTimeout(context.Background(), deliveryTimeout)
		m.deliver(ctx, item)
		cancel()
	}
}

func (m *Manager) deliver(ctx context.Context, item outbound) {
	switch {
	case item.event != nil:
		if err := m.deps.Mirror.Mirror(ctx, *item.event); err != nil {
			slog.Warn("failed to mirror event", "kind", item.event.Kind, "error", err)
		}
	case item.message != nil:
		m.deliverMessage(ctx, item.message)
	case item.transcript != nil:
		m.deliverTranscript(ctx, item.transcript)
	case item.complete != nil:
		if err := m.deps.Repository.CompleteSession(ctx, *item.complete); err != nil {
			slog.Error("failed to complete archive session", "error", err, "session_id", item.complete.SessionID)
			return
		}
		slog.Info("archive session completed", "session_id", item.complete.SessionID, "messages", item.complete.MessageCount)
	}
}

func (m *Manager) deliverMessage(ctx context.Context, am *archivedMessage) {
	if m.archiving {
		if err := m.deps.Repository.InsertMessage(ctx, repository.InsertMessageInput{
			SessionID: m.sessionID,
			Seq:       am.seq,
			Message:   am.msg,
		}); err != nil {
			slog.Error("failed to archive message", "error", err, "session_id", m.sessionID, "seq", am.seq)
		}
	}
	if m.relayEnabled() {
		if err := m.deps.Discord.SendChannelMessage(m.relayChannelID, formatRelayMessage(am.msg)); err != nil {
			slog.Error("failed to relay message", "error", err, "channel_id", m.relayChannelID)
		}
	}
}

func (m *Manager) deliverTranscript(ctx context.Context, t *exportedTranscript) {
	if m.deps.Webhook != nil {
		if err := m.deps.Webhook.SendTranscript(ctx, t.filename, t.body, t.meta); err != nil {
			slog.Error("failed to send webhook transcript", "error", err, "session_id", t.meta.SessionID)
		}
	}
	if m.relayEnabled() {
		if err := m.deps.Discord.SendChannelMessageWithFile(discord.FileMessage{
			ChannelID: m.relayChannelID,
			Content:   fmt.Sprintf("Dialogue export (%d messages)", t.meta.MessageCount),
			Filename:  t.filename,
			FileBody:  t.body,
		}); err != nil {
			slog.Error("failed to relay transcript", "error", err, "channel_id", m.relayChannelID)
		}
	}
}

func (m *Manager) relayEnabled() bool {
	return m.deps.Discord != nil && m.deps.Discord.Enabled() && m.relayChannelID != ""
}

func (m *Manager) runPlayback(ctx context.Context) {
	for artifact := range m.playback {
		if err := m.deps.Player.Play(ctx, artifact); err != nil {
			slog.Warn("failed to play artifact", "artifact", artifact, "error", err)
			m.deps.Bus.Publish(bus.ErrorEvent(Source, msgPlaybackFailed, err))
		}
	}
}
