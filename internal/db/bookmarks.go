package db

import (
	"context"
	"encoding/json"
	"fmt"

	"quizforge/internal/models"

	"github.com/google/uuid"
)

// AddBookmark pins a question for the user. Re-bookmarking the same question
// is a no-op; the bool reports whether a new row was inserted.
func (db *DB) AddBookmark(ctx context.Context, userID uuid.UUID, question models.Question) (bool, error) {
	questionJSON, err := json.Marshal(question)
	if err != nil {
		return false, fmt.Errorf("failed to marshal question: %w", err)
	}

	tag, err := db.Pool.Exec(ctx, `
		INSERT INTO bookmarks (user_id, question_id, question)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, question_id) DO NOTHING`,
		userID, question.ID, questionJSON)
	if err != nil {
		return false, fmt.Errorf("failed to insert bookmark: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// ListBookmarks returns the user's bookmarked questions, newest first.
func (db *DB) ListBookmarks(ctx context.Context, userID uuid.UUID) ([]models.Bookmark, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT id, user_id, question, created_at
		FROM bookmarks WHERE user_id = $1
		ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query bookmarks: %w", err)
	}
	defer rows.Close()

	bookmarks := []models.Bookmark{}
	for rows.Next() {
		var b models.Bookmark
		var questionJSON []byte
		if err := rows.Scan(&b.ID, &b.UserID, &questionJSON, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan bookmark: %w", err)
		}
		if err := json.Unmarshal(questionJSON, &b.Question); err != nil {
			return nil, fmt.Errorf("failed to unmarshal bookmarked question %s: %w", b.ID, err)
		}
		bookmarks = append(bookmarks, b)
	}
	return bookmarks, rows.Err()
}
