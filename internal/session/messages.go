package session

import (
	"fmt"
	"strings"

	"github.com/foxseedlab/tsuyaku/internal/synthesis"
)

const (
	msgInstructions = "Press /start to begin listening. Speak in either language; each phrase is translated into the other one. Type /help for commands."
	msgCleared      = "Chat cleared"

	msgCaptureStarting       = "Starting capture..."
	msgCaptureStopping       = "Stopping capture..."
	msgCaptureAlreadyRunning = "Capture is already running"
	msgCaptureNotRunning     = "Capture is not running"
	msgCaptureStartFailed    = "Failed to start capture"
	msgRecordingDisabled     = "Recording is disabled: %s"
	msgNoSpeechBackend       = "speech recognition is not configured"
	msgMicrophoneUnavailable = "microphone is unavailable"

	msgTextInputDisabled = "Text input is disabled"
	msgTranslationFailed = "Translation failed"

	msgDialogueEmpty = "Dialogue is empty, nothing to export"
	msgExported      = "Dialogue exported to %s"
	msgExportFailed  = "Export failed: %v"

	msgTTSDisabled     = "Speech synthesis is disabled"
	msgTTSUnavailable  = "Speech synthesis is unavailable: %s"
	msgNothingToSpeak  = "No message to speak"
	msgSpeaking        = "Speaking: %s"
	msgAudioSaved      = "Audio saved to %s"
	msgPlaybackFailed  = "Playback failed"
	msgVoicesLoading   = "Loading voices..."
	msgVoicesEmpty     = "No voices available"
	msgVoicesFailed    = "Failed to load voices"
	msgVoiceSet        = "Voice set to %s"
	msgVoiceReset      = "Voice reset to the per-language default"
	msgProviderSet     = "Speech provider set to %s"
	msgProviderFailed  = "Failed to switch speech provider: %v"
	msgProviderUnknown = "Unknown speech provider %q (use elevenlabs or google_cloud)"
	msgTTSTestSentence = "Hello! This is a test of speech synthesis."
	msgTTSTestLanguage = "en"
	msgLanguagesSet    = "Languages set to %s / %s (applies at next start)"
	msgLanguagesUsage  = "Usage: /lang <language1> <language2> (supported: %s)"
	msgLanguagesSame   = "The two languages must differ"
	msgMaxSet          = "History limit set to %d"
	msgMaxUsage        = "Usage: /max <n> (n >= 1)"
	msgToggleUsage     = "Usage: %s on|off"
	msgAutoPlaySet     = "Auto-play %s"
	msgAutoDetectSet   = "Language auto-detection %s (applies at next start)"
	msgUnknownCommand  = "Unknown command %s, type /help"
	msgSpeakUsage      = "Usage: /speak [n] (n >= 1)"
	msgWrongGuild      = "This command cannot be used in this server"

	msgHelp = `Commands:
  /start               start listening
  /stop                stop listening
  /status              show capture state and statistics
  /clear               clear the dialogue
  /export [path]       export the dialogue (default dialog.txt)
  /speak [n]           speak the n-th most recent translation
  /tts-test            speak a test sentence
  /voices              list voices of the speech provider
  /voice [id]          select a voice, or reset to default
  /lang <l1> <l2>      set the two dialogue languages
  /max <n>             set the history limit
  /autoplay on|off     speak every translation automatically
  /autodetect on|off   toggle language auto-detection
  /provider <name>     switch speech provider (elevenlabs, google_cloud)
  /quit                exit`
)

func onOff(v bool) string {
	if v {
		return "on"
	}
	return "off"
}

func describeSynthesisError(err error) string {
	switch synthesis.KindOf(err) {
	case synthesis.KindAuth:
		return "Speech synthesis failed: invalid API key"
	case synthesis.KindQuota:
		return "Speech synthesis failed: quota exceeded"
	case synthesis.KindPermission:
		return "Speech synthesis failed: API key lacks permission"
	case synthesis.KindValidation:
		return "Speech synthesis failed: invalid request"
	case synthesis.KindRateLimited:
		return "Speech synthesis failed: too many requests, try again later"
	case synthesis.KindTimeout:
		return "Speech synthesis failed: request timed out"
	case synthesis.KindEmptyResponse:
		return "Speech synthesis failed: empty audio received"
	}
	return fmt.Sprintf("Speech synthesis failed: %v", err)
}

func formatVoices(vendor string, voices []synthesis.Voice) string {
	lines := make([]string, 0, len(voices)+1)
	lines = append(lines, fmt.Sprintf("Voices (%s):", vendor))
	for _, v := range voices {
		line := fmt.Sprintf("  %s  %s", v.ID, v.Name)
		if v.Description != "" {
			line += " (" + v.Description + ")"
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}
