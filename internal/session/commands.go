package session

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/foxseedlab/tsuyaku/internal/bus"
	"github.com/foxseedlab/tsuyaku/internal/config"
	"github.com/foxseedlab/tsuyaku/internal/dialogue"
	"github.com/foxseedlab/tsuyaku/internal/language"
)

const (
	cmdStart      = "/start"
	cmdStop       = "/stop"
	cmdStatus     = "/status"
	cmdClear      = "/clear"
	cmdExport     = "/export"
	cmdSpeak      = "/speak"
	cmdTTSTest    = "/tts-test"
	cmdVoices     = "/voices"
	cmdVoice      = "/voice"
	cmdLang       = "/lang"
	cmdMax        = "/max"
	cmdAutoPlay   = "/autoplay"
	cmdAutoDetect = "/autodetect"
	cmdProvider   = "/provider"
	cmdHelp       = "/help"
)

func (m *Manager) execute(ctx context.Context, line string) string {
	line = strings.TrimSpace(line)
	if line == "" {
		return ""
	}
	if !strings.HasPrefix(line, "/") {
		return m.submitText(line)
	}
	fields := strings.Fields(line)
	name, args := strings.ToLower(fields[0]), fields[1:]
	slog.Debug("command received", "command", name, "args", len(args))

	switch name {
	case cmdStart:
		return m.startCapture(ctx)
	case cmdStop:
		return m.stopCapture()
	case cmdStatus:
		return m.statusText()
	case cmdClear:
		return m.clear()
	case cmdExport:
		return m.export(args)
	case cmdSpeak:
		return m.speakRecent(args)
	case cmdTTSTest:
		return m.speak(msgTTSTestSentence, msgTTSTestLanguage)
	case cmdVoices:
		return m.listVoices(ctx)
	case cmdVoice:
		return m.selectVoice(args)
	case cmdLang:
		return m.setLanguages(args)
	case cmdMax:
		return m.setMax(args)
	case cmdAutoPlay:
		return m.toggle(name, args, &m.cfg.AutoPlayTTS, msgAutoPlaySet)
	case cmdAutoDetect:
		return m.toggle(name, args, &m.cfg.AutoDetectLanguage, msgAutoDetectSet)
	case cmdProvider:
		return m.switchProvider(args)
	case cmdHelp:
		return msgHelp
	}
	return fmt.Sprintf(msgUnknownCommand, name)
}

// submitText translates a typed line on its own goroutine and publishes the
// result like any other producer.
func (m *Manager) submitText(text string) string {
	if !m.cfg.EnableTextInput {
		return msgTextInputDisabled
	}
	if m.deps.Translator == nil {
		return msgTextInputDisabled
	}
	lang1, lang2 := m.cfg.Language1, m.cfg.Language2
	translator, publisher, now := m.deps.Translator, m.deps.Bus, m.deps.Now
	go func() {
		detected, ok := language.Detect(text)
		if !ok {
			detected = lang1
		}
		speaker, target := language.Attribute(detected, lang1, lang2)
		res := translator.Translate(context.Background(), text, detected, target)
		if res.Err != nil {
			publisher.Publish(bus.ErrorEvent(sourceManual, msgTranslationFailed, res.Err))
		}
		msg, err := dialogue.NewMessage(speaker, detected, target, text, res.Text, now(), manualConfidence)
		if err != nil {
			slog.Warn("dropping manual input", "error", err)
			return
		}
		publisher.Publish(bus.MessageEvent(sourceManual, msg))
	}()
	return ""
}

func (m *Manager) startCapture(ctx context.Context) string {
	if m.disabledReason != "" {
		return fmt.Sprintf(msgRecordingDisabled, m.disabledReason)
	}
	if m.deps.Capture.Running() {
		return msgCaptureAlreadyRunning
	}
	settings := captureSettings(m.cfg)
	controller, publisher := m.deps.Capture, m.deps.Bus
	go func() {
		if err := controller.Start(ctx, settings); err != nil {
			slog.Error("failed to start capture", "error", err)
			publisher.Publish(bus.ErrorEvent(Source, fmt.Sprintf("%s: %v", msgCaptureStartFailed, err), err))
		}
	}()
	return msgCaptureStarting
}

func (m *Manager) stopCapture() string {
	if !m.deps.Capture.Running() {
		return msgCaptureNotRunning
	}
	go m.deps.Capture.Stop()
	return msgCaptureStopping
}

func (m *Manager) statusText() string {
	provider := "disabled"
	if m.provider != nil {
		provider = m.provider.VendorName()
	}
	lines := []string{
		fmt.Sprintf("State: %s (%s)", m.state, bus.FormatElapsed(m.elapsed)),
		fmt.Sprintf("Languages: %s / %s", m.cfg.Language1, m.cfg.Language2),
		fmt.Sprintf("Messages: %d (Speaker 1: %d, Speaker 2: %d)", m.stats.Total(), m.stats.Speaker1, m.stats.Speaker2),
		fmt.Sprintf("Speech: %s, auto-play %s", provider, onOff(m.cfg.AutoPlayTTS)),
		fmt.Sprintf("Auto-detect: %s", onOff(m.cfg.AutoDetectLanguage)),
	}
	if m.disabledReason != "" {
		lines = append(lines, fmt.Sprintf(msgRecordingDisabled, m.disabledReason))
	}
	return strings.Join(lines, "\n")
}

func (m *Manager) clear() string {
	m.history.Clear()
	m.stats.Reset()
	m.appendNotice(msgInstructions)
	m.renderState()
	return msgCleared
}

func (m *Manager) export(args []string) string {
	messages := m.history.All()
	count := countDialogueMessages(messages)
	if count == 0 {
		return msgDialogueEmpty
	}
	path := defaultExportFilename
	if len(args) > 0 {
		path = args[0]
	}
	now := m.deps.Now()
	body := buildTranscriptText(messages, now, m.location)
	if err := os.WriteFile(path, body, 0o644); err != nil {
		slog.Error("failed to export dialogue", "error", err, "path", path)
		return fmt.Sprintf(msgExportFailed, err)
	}
	slog.Info("dialogue exported", "path", path, "messages", count)
	m.enqueue(outbound{transcript: &exportedTranscript{
		filename: filepath.Base(path),
		body:     body,
		meta:     buildTranscriptMetadata(m.sessionID, m.cfg.Language1, m.cfg.Language2, count, now),
	}})
	return fmt.Sprintf(msgExported, path)
}

func (m *Manager) speakRecent(args []string) string {
	n := 1
	if len(args) > 0 {
		v, err := strconv.Atoi(args[0])
		if err != nil || v < 1 {
			return msgSpeakUsage
		}
		n = v
	}
	msg, ok := m.history.Recent(n)
	if !ok || msg.TranslatedText == "" {
		return msgNothingToSpeak
	}
	return m.speak(msg.TranslatedText, msg.TargetLanguage)
}

func (m *Manager) listVoices(ctx context.Context) string {
	if m.provider == nil {
		return fmt.Sprintf(msgTTSUnavailable, m.providerProblem)
	}
	provider, publisher := m.provider, m.deps.Bus
	go func() {
		listCtx, cancel := context.WithTimeout(ctx, voicesTimeout)
		defer cancel()
		voices, err := provider.ListVoices(listCtx)
		switch {
		case err != nil:
			slog.Warn("failed to list voices", "provider", provider.VendorName(), "error", err)
			publisher.Publish(bus.ErrorEvent(Source, msgVoicesFailed, err))
		case len(voices) == 0:
			publisher.Publish(bus.InfoEvent(Source, msgVoicesEmpty))
		default:
			publisher.Publish(bus.InfoEvent(Source, formatVoices(provider.VendorName(), voices)))
		}
	}()
	return msgVoicesLoading
}

func (m *Manager) selectVoice(args []string) string {
	if len(args) == 0 {
		m.cfg.TTSVoiceID = ""
		return msgVoiceReset
	}
	m.cfg.TTSVoiceID = args[0]
	return fmt.Sprintf(msgVoiceSet, args[0])
}

func (m *Manager) setLanguages(args []string) string {
	usage := fmt.Sprintf(msgLanguagesUsage, strings.Join(language.Supported(), ", "))
	if len(args) != 2 {
		return usage
	}
	lang1, lang2 := strings.ToLower(args[0]), strings.ToLower(args[1])
	if !language.IsSupported(lang1) || !language.IsSupported(lang2) {
		return usage
	}
	if lang1 == lang2 {
		return msgLanguagesSame
	}
	if lang1 != m.cfg.Language1 {
		m.cfg.Language1Locale = ""
	}
	if lang2 != m.cfg.Language2 {
		m.cfg.Language2Locale = ""
	}
	m.cfg.Language1, m.cfg.Language2 = lang1, lang2
	return fmt.Sprintf(msgLanguagesSet, lang1, lang2)
}

func (m *Manager) setMax(args []string) string {
	if len(args) != 1 {
		return msgMaxUsage
	}
	n, err := strconv.Atoi(args[0])
	if err != nil || n < 1 {
		return msgMaxUsage
	}
	m.cfg.MaxMessages = n
	m.history.SetMax(n)
	return fmt.Sprintf(msgMaxSet, n)
}

func (m *Manager) toggle(name string, args []string, target *bool, format string) string {
	if len(args) != 1 {
		return fmt.Sprintf(msgToggleUsage, name)
	}
	switch strings.ToLower(args[0]) {
	case "on", "true", "1":
		*target = true
	case "off", "false", "0":
		*target = false
	default:
		return fmt.Sprintf(msgToggleUsage, name)
	}
	return fmt.Sprintf(format, onOff(*target))
}

func (m *Manager) switchProvider(args []string) string {
	if len(args) != 1 {
		return fmt.Sprintf(msgProviderUnknown, "")
	}
	name := strings.ToLower(args[0])
	if name != config.TTSProviderElevenLabs && name != config.TTSProviderGoogleCloud {
		return fmt.Sprintf(msgProviderUnknown, name)
	}
	next := m.cfg
	next.TTSProvider = name
	next.TTSVoiceID = ""
	provider, err := m.buildProvider(next)
	if err != nil {
		return fmt.Sprintf(msgProviderFailed, err)
	}
	m.cfg = next
	m.provider = provider
	m.providerProblem = ""
	return fmt.Sprintf(msgProviderSet, name)
}
