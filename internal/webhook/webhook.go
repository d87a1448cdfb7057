package webhook

import (
	"context"
	"time"
)

type TranscriptMetadata struct {
	SessionID    string    `json:"session_id"`
	Language1    string    `json:"language1"`
	Language2    string    `json:"language2"`
	MessageCount int       `json:"message_count"`
	ExportedAt   time.Time `json:"exported_at"`
}

type Sender interface {
	SendTranscript(ctx context.Context, filename string, body []byte, meta TranscriptMetadata) error
}
