package db

import (
	"context"
	"errors"
	"fmt"

	"quizforge/internal/models"
	"quizforge/internal/scoring"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// UpsertUser creates the user on first login (seeded with zero statistics
// via the column defaults) or refreshes the Google profile fields on a
// returning one. Statistics are never touched here. The bool reports whether
// the row was freshly created (xmax = 0 only holds for inserts).
func (db *DB) UpsertUser(ctx context.Context, googleID, email, name, picture string) (models.User, bool, error) {
	row := db.Pool.QueryRow(ctx, `
		INSERT INTO users (google_id, email, name, picture)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (email) DO UPDATE
		SET google_id = EXCLUDED.google_id,
		    name = EXCLUDED.name,
		    picture = EXCLUDED.picture,
		    updated_at = now()
		RETURNING id, google_id, email, name, picture, tests_attempted, average_score, weak_tags, created_at, (xmax = 0)`,
		googleID, email, name, picture)

	var u models.User
	var created bool
	err := row.Scan(&u.ID, &u.GoogleID, &u.Email, &u.Name, &u.Picture,
		&u.TestsAttempted, &u.AverageScore, &u.WeakTags, &u.CreatedAt, &created)
	if err != nil {
		return models.User{}, false, fmt.Errorf("failed to upsert user: %w", err)
	}
	if u.WeakTags == nil {
		u.WeakTags = []string{}
	}
	return u, created, nil
}

// GetUserByID returns the user or ErrNotFound.
func (db *DB) GetUserByID(ctx context.Context, id uuid.UUID) (models.User, error) {
	row := db.Pool.QueryRow(ctx, `
		SELECT id, google_id, email, name, picture, tests_attempted, average_score, weak_tags, created_at
		FROM users WHERE id = $1`, id)

	u, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.User{}, ErrNotFound
	}
	return u, err
}

// ListLeaderboard returns users ordered by average score, best first.
func (db *DB) ListLeaderboard(ctx context.Context, limit int) ([]models.LeaderboardEntry, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT id, email, name, tests_attempted, average_score
		FROM users
		ORDER BY average_score DESC, tests_attempted DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query leaderboard: %w", err)
	}
	defer rows.Close()

	entries := []models.LeaderboardEntry{}
	for rows.Next() {
		var e models.LeaderboardEntry
		if err := rows.Scan(&e.UserID, &e.Email, &e.Name, &e.TestsAttempted, &e.AverageScore); err != nil {
			return nil, fmt.Errorf("failed to scan leaderboard row: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// ApplySubmission folds one attempt result into the user's statistics
// atomically: the row is locked FOR UPDATE for the whole read-modify-write,
// so concurrent submissions serialize instead of losing updates.
func (db *DB) ApplySubmission(ctx context.Context, userID uuid.UUID, res scoring.Result, missThreshold int) (models.User, error) {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return models.User{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	row := tx.QueryRow(ctx, `
		SELECT id, google_id, email, name, picture, tests_attempted, average_score, weak_tags, created_at
		FROM users WHERE id = $1
		FOR UPDATE`, userID)

	u, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.User{}, ErrNotFound
	}
	if err != nil {
		return models.User{}, err
	}

	u = scoring.ApplyResult(u, res, missThreshold)

	if _, err := tx.Exec(ctx, `
		UPDATE users
		SET tests_attempted = $2, average_score = $3, weak_tags = $4, updated_at = now()
		WHERE id = $1`,
		u.ID, u.TestsAttempted, u.AverageScore, u.WeakTags); err != nil {
		return models.User{}, fmt.Errorf("failed to update user statistics: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return models.User{}, fmt.Errorf("failed to commit statistics update: %w", err)
	}
	return u, nil
}

func scanUser(row pgx.Row) (models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.GoogleID, &u.Email, &u.Name, &u.Picture,
		&u.TestsAttempted, &u.AverageScore, &u.WeakTags, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, err
		}
		return models.User{}, fmt.Errorf("failed to scan user: %w", err)
	}
	if u.WeakTags == nil {
		u.WeakTags = []string{}
	}
	return u, nil
}
