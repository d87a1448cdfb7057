package repository

import (
	"context"
	"time"

	"github.com/foxseedlab/tsuyaku/internal/dialogue"
)

type CreateSessionInput struct {
	ID        string
	Language1 string
	Language2 string
	StartedAt time.Time
}

type CompleteSessionInput struct {
	SessionID    string
	EndedAt      time.Time
	MessageCount int
}

type InsertMessageInput struct {
	SessionID string
	Seq       int
	Message   dialogue.Message
}

type SessionRepository interface {
	CreateSession(ctx context.Context, input CreateSessionInput) (*Session, error)
	CompleteSession(ctx context.Context, input CompleteSessionInput) error
	GetSession(ctx context.Context, sessionID string) (*Session, error)
}

type MessageRepository interface {
	InsertMessage(ctx context.Context, input InsertMessageInput) error
	ListMessagesBySessionID(ctx context.Context, sessionID string) ([]DialogueMessage, error)
}

// Repository archives dialogue sessions. It is optional; the in-memory history
// stays authoritative for display and export.
type Repository interface {
	SessionRepository
	MessageRepository
	Close() error
}
