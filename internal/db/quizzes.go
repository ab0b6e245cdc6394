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

// CreateQuiz persists a quiz with its questions as one JSONB document.
func (db *DB) CreateQuiz(ctx context.Context, quiz models.Quiz) (models.Quiz, error) {
	questionsJSON, err := json.Marshal(quiz.Questions)
	if err != nil {
		return models.Quiz{}, fmt.Errorf("failed to marshal questions: %w", err)
	}

	row := db.Pool.QueryRow(ctx, `
		INSERT INTO quizzes (owner_id, topic, requested_count, difficulty, time_limit, questions)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`,
		quiz.OwnerID, quiz.Topic, quiz.RequestedCount, quiz.Difficulty, quiz.TimeLimit, questionsJSON)

	if err := row.Scan(&quiz.ID, &quiz.CreatedAt); err != nil {
		return models.Quiz{}, fmt.Errorf("failed to insert quiz: %w", err)
	}
	return quiz, nil
}

// GetQuizOwned returns the quiz only when it exists AND belongs to ownerID;
// any other combination is ErrNotFound.
func (db *DB) GetQuizOwned(ctx context.Context, id, ownerID uuid.UUID) (models.Quiz, error) {
	row := db.Pool.QueryRow(ctx, `
		SELECT id, owner_id, topic, requested_count, difficulty, time_limit, questions, created_at
		FROM quizzes WHERE id = $1 AND owner_id = $2`, id, ownerID)

	var quiz models.Quiz
	var questionsJSON []byte
	err := row.Scan(&quiz.ID, &quiz.OwnerID, &quiz.Topic, &quiz.RequestedCount,
		&quiz.Difficulty, &quiz.TimeLimit, &questionsJSON, &quiz.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Quiz{}, ErrNotFound
	}
	if err != nil {
		return models.Quiz{}, fmt.Errorf("failed to scan quiz: %w", err)
	}
	if err := json.Unmarshal(questionsJSON, &quiz.Questions); err != nil {
		return models.Quiz{}, fmt.Errorf("failed to unmarshal questions for quiz %s: %w", quiz.ID, err)
	}
	return quiz, nil
}

// ListQuizzesByOwner returns the owner's quizzes, newest first, without
// question bodies.
func (db *DB) ListQuizzesByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.QuizSummary, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT id, topic, difficulty, jsonb_array_length(questions), time_limit, created_at
		FROM quizzes WHERE owner_id = $1
		ORDER BY created_at DESC`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query quizzes: %w", err)
	}
	defer rows.Close()

	summaries := []models.QuizSummary{}
	for rows.Next() {
		var s models.QuizSummary
		if err := rows.Scan(&s.ID, &s.Topic, &s.Difficulty, &s.QuestionCount, &s.TimeLimit, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan quiz summary: %w", err)
		}
		summaries = append(summaries, s)
	}
	return summaries, rows.Err()
}

// DeleteQuiz removes the quiz when it belongs to ownerID, ErrNotFound
// otherwise. Attempts cascade.
func (db *DB) DeleteQuiz(ctx context.Context, id, ownerID uuid.UUID) error {
	tag, err := db.Pool.Exec(ctx, `DELETE FROM quizzes WHERE id = $1 AND owner_id = $2`, id, ownerID)
	if err != nil {
		return fmt.Errorf("failed to delete quiz: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
