package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"quizforge/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// CreateAttempt appends one scored submission. Attempts are append-only;
// resubmitting a quiz creates a new row.
func (db *DB) CreateAttempt(ctx context.Context, attempt models.Attempt) (models.Attempt, error) {
	answersJSON, err := json.Marshal(attempt.Answers)
	if err != nil {
		return models.Attempt{}, fmt.Errorf("failed to marshal answers: %w", err)
	}
	tagCountsJSON, err := json.Marshal(attempt.WrongTagCounts)
	if err != nil {
		return models.Attempt{}, fmt.Errorf("failed to marshal tag counts: %w", err)
	}

	row := db.Pool.QueryRow(ctx, `
		INSERT INTO attempts (quiz_id, user_id, answers, correct_count, wrong_count,
		                      total_questions, score_percentage, wrong_tag_counts)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at`,
		attempt.QuizID, attempt.UserID, answersJSON, attempt.CorrectCount, attempt.WrongCount,
		attempt.TotalQuestions, attempt.ScorePercentage, tagCountsJSON)

	if err := row.Scan(&attempt.ID, &attempt.CreatedAt); err != nil {
		return models.Attempt{}, fmt.Errorf("failed to insert attempt: %w", err)
	}
	return attempt, nil
}

// GetAttempt returns the attempt when it belongs to userID, ErrNotFound
// otherwise.
func (db *DB) GetAttempt(ctx context.Context, id, userID uuid.UUID) (models.Attempt, error) {
	row := db.Pool.QueryRow(ctx, `
		SELECT id, quiz_id, user_id, answers, correct_count, wrong_count,
		       total_questions, score_percentage, wrong_tag_counts, created_at
		FROM attempts WHERE id = $1 AND user_id = $2`, id, userID)

	a, err := scanAttempt(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Attempt{}, ErrNotFound
	}
	return a, err
}

// ListAttemptsByUser returns the user's attempts, newest first.
func (db *DB) ListAttemptsByUser(ctx context.Context, userID uuid.UUID) ([]models.Attempt, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT id, quiz_id, user_id, answers, correct_count, wrong_count,
		       total_questions, score_percentage, wrong_tag_counts, created_at
		FROM attempts WHERE user_id = $1
		ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query attempts: %w", err)
	}
	defer rows.Close()

	attempts := []models.Attempt{}
	for rows.Next() {
		a, err := scanAttempt(rows)
		if err != nil {
			return nil, err
		}
		attempts = append(attempts, a)
	}
	return attempts, rows.Err()
}

func scanAttempt(row pgx.Row) (models.Attempt, error) {
	var a models.Attempt
	var answersJSON, tagCountsJSON []byte
	err := row.Scan(&a.ID, &a.QuizID, &a.UserID, &answersJSON, &a.CorrectCount, &a.WrongCount,
		&a.TotalQuestions, &a.ScorePercentage, &tagCountsJSON, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Attempt{}, err
		}
		return models.Attempt{}, fmt.Errorf("failed to scan attempt: %w", err)
	}
	if err := json.Unmarshal(answersJSON, &a.Answers); err != nil {
		return models.Attempt{}, fmt.Errorf("failed to unmarshal answers for attempt %s: %w", a.ID, err)
	}
	if err := json.Unmarshal(tagCountsJSON, &a.WrongTagCounts); err != nil {
		return models.Attempt{}, fmt.Errorf("failed to unmarshal tag counts for attempt %s: %w", a.ID, err)
	}
	return a, nil
}
