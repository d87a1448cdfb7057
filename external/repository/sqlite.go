package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/foxseedlab/tsuyaku/internal/repository"
	_ "modernc.org/sqlite"
)

type SQLiteRepository struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the archive database at path and
// applies the schema.
func OpenSQLite(ctx context.Context, path string) (*SQLiteRepository, error) {
	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
	}
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	if err := RunSQLiteMigration(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate sqlite: %w", err)
	}
	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) CreateSession(ctx context.Context, input repository.CreateSessionInput) (*repository.Session, error) {
	if _, err := r.db.ExecContext(ctx,
		`INSERT INTO sessions (id, language1, language2, started_at, status) VALUES (?, ?, ?, ?, 'running')`,
		input.ID, input.Language1, input.Language2, formatTime(input.StartedAt)); err != nil {
		return nil, err
	}
	return r.GetSession(ctx, input.ID)
}

func (r *SQLiteRepository) CompleteSession(ctx context.Context, input repository.CompleteSessionInput) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE sessions SET status = 'completed', ended_at = ?, message_count = ? WHERE id = ?`,
		formatTime(input.EndedAt), input.MessageCount, input.SessionID)
	return err
}

func (r *SQLiteRepository) GetSession(ctx context.Context, sessionID string) (*repository.Session, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, language1, language2, started_at, ended_at, status, message_count FROM sessions WHERE id = ?`,
		sessionID)
	var (
		s         repository.Session
		startedAt string
		endedAt   sql.NullString
		status    string
	)
	if err := row.Scan(&s.ID, &s.Language1, &s.Language2, &startedAt, &endedAt, &status, &s.MessageCount); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	var err error
	if s.StartedAt, err = parseTime(startedAt); err != nil {
		return nil, err
	}
	if endedAt.Valid {
		t, err := parseTime(endedAt.String)
		if err != nil {
			return nil, err
		}
		s.EndedAt = &t
	}
	s.Status = repository.SessionStatus(status)
	return &s, nil
}

func (r *SQLiteRepository) InsertMessage(ctx context.Context, input repository.InsertMessageInput) error {
	m := input.Message
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO dialogue_messages
		 (id, session_id, seq, speaker, language, target_language, original_text, translated_text, confidence, spoken_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.ID, input.SessionID, input.Seq, string(m.Speaker), m.Language, m.TargetLanguage,
		m.OriginalText, m.TranslatedText, m.Confidence, formatTime(m.Timestamp))
	return err
}

func (r *SQLiteRepository) ListMessagesBySessionID(ctx context.Context, sessionID string) ([]repository.DialogueMessage, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, session_id, seq, speaker, language, target_language, original_text, translated_text, confidence, spoken_at
		 FROM dialogue_messages WHERE session_id = ? ORDER BY seq ASC`,
		sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []repository.DialogueMessage
	for rows.Next() {
		var m repository.DialogueMessage
		var spokenAt string
		if err := rows.Scan(&m.ID, &m.SessionID, &m.Seq, &m.Speaker, &m.Language, &m.TargetLanguage,
			&m.OriginalText, &m.TranslatedText, &m.Confidence, &spokenAt); err != nil {
			return nil, err
		}
		if m.SpokenAt, err = parseTime(spokenAt); err != nil {
			return nil, err
		}
		list = append(list, m)
	}
	return list, rows.Err()
}

func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse stored time %q: %w", s, err)
	}
	return t, nil
}
