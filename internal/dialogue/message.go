package dialogue

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

type Speaker string

const (
	Speaker1 Speaker = "Speaker 1"
	Speaker2 Speaker = "Speaker 2"
	System   Speaker = "System"
)

var ErrEmptyText = errors.New("message text is empty")

// Message is one produced utterance. It is passed by value and never modified
// after construction. System notices carry no Language or TargetLanguage.
type Message struct {
	ID             string    `json:"id"`
	Speaker        Speaker   `json:"speaker"`
	Language       string    `json:"language"`
	TargetLanguage string    `json:"target_language"`
	OriginalText   string    `json:"original_text"`
	TranslatedText string    `json:"translated_text"`
	Timestamp      time.Time `json:"timestamp"`
	Confidence     float64   `json:"confidence"`
}

func NewMessage(speaker Speaker, language, target, original, translated string, at time.Time, confidence float64) (Message, error) {
	if original == "" {
		return Message{}, ErrEmptyText
	}
	return Message{
		ID:             uuid.NewString(),
		Speaker:        speaker,
		Language:       language,
		TargetLanguage: target,
		OriginalText:   original,
		TranslatedText: translated,
		Timestamp:      at,
		Confidence:     clamp(confidence),
	}, nil
}

func NewSystemNotice(text string, at time.Time) Message {
	return Message{
		ID:           uuid.NewString(),
		Speaker:      System,
		OriginalText: text,
		Timestamp:    at,
		Confidence:   1,
	}
}

func (m Message) IsSystem() bool {
	return m.Speaker == System
}

func clamp(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
