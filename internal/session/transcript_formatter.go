package session

import (
	"fmt"
	"strings"
	"time"

	"github.com/foxseedlab/tsuyaku/internal/dialogue"
	"github.com/foxseedlab/tsuyaku/internal/webhook"
)

// time.DateTime is not used so the layout can be changed independently.
const (
	transcriptTimeLayout    = "2006-01-02 15:04:05"
	transcriptMessageLayout = "15:04:05"
	transcriptTitle         = "TRANSLATOR DIALOGUE EXPORT"
	defaultExportFilename   = "dialog.txt"
)

func buildTranscriptText(messages []dialogue.Message, exportedAt time.Time, loc *time.Location) []byte {
	loc = safeLocation(loc)
	header := strings.Repeat("=", 60)
	separator := strings.Repeat("-", 40)

	var b strings.Builder
	b.WriteString(header + "\n")
	b.WriteString(transcriptTitle + "\n")
	fmt.Fprintf(&b, "Export time: %s\n", exportedAt.In(loc).Format(transcriptTimeLayout))
	b.WriteString(header + "\n\n")
	for _, m := range messages {
		if m.IsSystem() {
			continue
		}
		fmt.Fprintf(&b, "[%s] %s (%s):\n", m.Timestamp.In(loc).Format(transcriptMessageLayout), m.Speaker, m.Language)
		fmt.Fprintf(&b, "  Original: %s\n", m.OriginalText)
		fmt.Fprintf(&b, "  Translation: %s\n", m.TranslatedText)
		b.WriteString(separator + "\n")
	}
	return []byte(b.String())
}

func countDialogueMessages(messages []dialogue.Message) int {
	n := 0
	for _, m := range messages {
		if !m.IsSystem() {
			n++
		}
	}
	return n
}

func buildTranscriptMetadata(sessionID, lang1, lang2 string, count int, exportedAt time.Time) webhook.TranscriptMetadata {
	return webhook.TranscriptMetadata{
		SessionID:    sessionID,
		Language1:    lang1,
		Language2:    lang2,
		MessageCount: count,
		ExportedAt:   exportedAt.UTC(),
	}
}

func formatRelayMessage(m dialogue.Message) string {
	return fmt.Sprintf("**%s** (%s → %s)\n> %s\n%s", m.Speaker, m.Language, m.TargetLanguage, m.OriginalText, m.TranslatedText)
}

func safeLocation(loc *time.Location) *time.Location {
	if loc == nil {
		return time.UTC
	}
	return loc
}
