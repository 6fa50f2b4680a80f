package prefs

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"

	"readdit/pkg/models"
)

type Repo struct {
	DB *sql.DB
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{DB: db}
}

// Load returns the stored preferences of a session. Fields missing from
// the stored document keep their defaults; a session without a stored
// document gets DefaultPreferences.
func (r *Repo) Load(ctx context.Context, sessionID string) (models.Preferences, error) {
	p := models.DefaultPreferences()

	var raw string
	var updated time.Time
	err := r.DB.QueryRowContext(ctx, `
		SELECT prefs, updated_at
		FROM preferences
		WHERE session_id = ?
	`, sessionID).Scan(&raw, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return p, nil
	}
	if err != nil {
		return p, fmt.Errorf("load preferences: %w", err)
	}

	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		// A damaged document is replaced by defaults on the next save.
		return models.DefaultPreferences(), nil
	}
	p = Sanitize(p)
	p.UpdatedAt = updated.UTC()
	return p, nil
}

// Save upserts the preferences of a session.
func (r *Repo) Save(ctx context.Context, sessionID string, p models.Preferences) error {
	p = Sanitize(p)
	p.UpdatedAt = time.Time{}
	b, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal preferences: %w", err)
	}

	_, err = r.DB.ExecContext(ctx, `
		INSERT INTO preferences (session_id, prefs, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(session_id) DO UPDATE SET
			prefs = excluded.prefs,
			updated_at = CURRENT_TIMESTAMP
	`, sessionID, string(b))
	if err != nil {
		return fmt.Errorf("save preferences: %w", err)
	}
	return nil
}

// Sanitize clamps sliders to 0..100 and keeps known genres once, in
// their original order.
func Sanitize(p models.Preferences) models.Preferences {
	p.Style = clamp(p.Style)
	p.Pace = clamp(p.Pace)
	p.Complexity = clamp(p.Complexity)

	seen := make(map[string]struct{}, len(p.Genres))
	genres := make([]string, 0, len(p.Genres))
	for _, g := range p.Genres {
		if !models.IsGenre(g) {
			continue
		}
		if _, ok := seen[g]; ok {
			continue
		}
		seen[g] = struct{}{}
		genres = append(genres, g)
	}
	p.Genres = genres
	return p
}

func clamp(v int) int {
	return min(max(v, 0), 100)
}
