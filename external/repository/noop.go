package repository

import (
	"context"

	"github.com/foxseedlab/tsuyaku/internal/repository"
)

// NoopRepository is used when no DATABASE_URL is configured.
type NoopRepository struct{}

func (NoopRepository) CreateSession(_ context.Context, input repository.CreateSessionInput) (*repository.Session, error) {
	return &repository.Session{
		ID:        input.ID,
		Language1: input.Language1,
		Language2: input.Language2,
		StartedAt: input.StartedAt,
		Status:    repository.SessionStatusRunning,
	}, nil
}

func (NoopRepository) CompleteSession(context.Context, repository.CompleteSessionInput) error {
	return nil
}

func (NoopRepository) GetSession(context.Context, string) (*repository.Session, error) {
	return nil, nil
}

func (NoopRepository) InsertMessage(context.Context, repository.InsertMessageInput) error {
	return nil
}

func (NoopRepository) ListMessagesBySessionID(context.Context, string) ([]repository.DialogueMessage, error) {
	return nil, nil
}

func (NoopRepository) Close() error {
	return nil
}
