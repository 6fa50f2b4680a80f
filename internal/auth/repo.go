package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

type Session struct {
	ID         string
	CreatedAt  time.Time
	LastSeenAt time.Time
}

type Repo struct {
	DB *sql.DB
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{DB: db}
}

func (r *Repo) CreateSession(ctx context.Context, id string) error {
	if _, err := r.DB.ExecContext(ctx, `INSERT INTO sessions (id) VALUES (?)`, id); err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

// GetSession returns nil, nil when the session does not exist.
func (r *Repo) GetSession(ctx context.Context, id string) (*Session, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT id, created_at, last_seen_at
		FROM sessions
		WHERE id = ?
	`, id)

	var s Session
	if err := row.Scan(&s.ID, &s.CreatedAt, &s.LastSeenAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get session: %w", err)
	}
	return &s, nil
}

// Touch records activity on a session and reports whether it exists.
func (r *Repo) Touch(ctx context.Context, id string) (bool, error) {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE sessions SET last_seen_at = CURRENT_TIMESTAMP WHERE id = ?
	`, id)
	if err != nil {
		return false, fmt.Errorf("touch session: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("touch session: %w", err)
	}
	return n > 0, nil
}

// DeleteSession removes the session and, by cascade, its preferences.
func (r *Repo) DeleteSession(ctx context.Context, id string) error {
	if _, err := r.DB.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
