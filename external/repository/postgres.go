package repository

import (
	"context"
	"errors"
	"time"

	"github.com/foxseedlab/tsuyaku/internal/repository"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) repository.Repository {
	return &PostgresRepository{pool: pool}
}

func (r *PostgresRepository) CreateSession(ctx context.Context, input repository.CreateSessionInput) (*repository.Session, error) {
	row := r.pool.QueryRow(ctx,
		`INSERT INTO sessions (id, language1, language2, started_at, status)
		 VALUES ($1, $2, $3, $4, 'running')
		 RETURNING id, language1, language2, started_at, ended_at, status, message_count`,
		input.ID, input.Language1, input.Language2, input.StartedAt)
	return scanSession(row)
}

func (r *PostgresRepository) CompleteSession(ctx context.Context, input repository.CompleteSessionInput) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE sessions SET status = 'completed', ended_at = $2, message_count = $3 WHERE id = $1`,
		input.SessionID, input.EndedAt, input.MessageCount)
	return err
}

func (r *PostgresRepository) GetSession(ctx context.Context, sessionID string) (*repository.Session, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT id, language1, language2, started_at, ended_at, status, message_count
		 FROM sessions WHERE id = $1`,
		sessionID)
	s, err := scanSession(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return s, err
}

func (r *PostgresRepository) InsertMessage(ctx context.Context, input repository.InsertMessageInput) error {
	m := input.Message
	_, err := r.pool.Exec(ctx,
		`INSERT INTO dialogue_messages
		 (id, session_id, seq, speaker, language, target_language, original_text, translated_text, confidence, spoken_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		m.ID, input.SessionID, input.Seq, string(m.Speaker), m.Language, m.TargetLanguage,
		m.OriginalText, m.TranslatedText, m.Confidence, m.Timestamp)
	return err
}

func (r *PostgresRepository) ListMessagesBySessionID(ctx context.Context, sessionID string) ([]repository.DialogueMessage, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, session_id, seq, speaker, language, target_language, original_text, translated_text, confidence, spoken_at
		 FROM dialogue_messages WHERE session_id = $1 ORDER BY seq ASC`,
		sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []repository.DialogueMessage
	for rows.Next() {
		var m repository.DialogueMessage
		if err := rows.Scan(&m.ID, &m.SessionID, &m.Seq, &m.Speaker, &m.Language, &m.TargetLanguage,
			&m.OriginalText, &m.TranslatedText, &m.Confidence, &m.SpokenAt); err != nil {
			return nil, err
		}
		list = append(list, m)
	}
	return list, rows.Err()
}

func (r *PostgresRepository) Close() error {
	r.pool.Close()
	return nil
}

func scanSession(row pgx.Row) (*repository.Session, error) {
	var s repository.Session
	var endedAt *time.Time
	var status string
	if err := row.Scan(&s.ID, &s.Language1, &s.Language2, &s.StartedAt, &endedAt, &status, &s.MessageCount); err != nil {
		return nil, err
	}
	s.EndedAt = endedAt
	s.Status = repository.SessionStatus(status)
	return &s, nil
}
