package repository

import "time"

type SessionStatus string

const (
	SessionStatusRunning   SessionStatus = "running"
	SessionStatusCompleted SessionStatus = "completed"
)

type Session struct {
	ID           string
	Language1    string
	Language2    string
	StartedAt    time.Time
	EndedAt      *time.Time
	Status       SessionStatus
	MessageCount int
}

type DialogueMessage struct {
	ID             string
	SessionID      string
	Seq            int
	Speaker        string
	Language       string
	TargetLanguage string
	OriginalText   string
	TranslatedText string
	Confidence     float64
	SpokenAt       time.Time
}
