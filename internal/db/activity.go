package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// Activity log actions.
const (
	ActionUserLoggedIn       = "user_logged_in"
	ActionUserLoggedOut      = "user_logged_out"
	ActionQuizCreated        = "quiz_created"
	ActionQuizDeleted        = "quiz_deleted"
	ActionQuizSubmitted      = "quiz_submitted"
	ActionPracticeGenerated  = "practice_generated"
	ActionNotesGenerated     = "notes_generated"
	ActionQuestionBookmarked = "question_bookmarked"
	ActionError              = "error"
)

// LogActivity appends one audit row. details may be nil or any
// JSON-marshalable value.
func (db *DB) LogActivity(ctx context.Context, userID uuid.UUID, action, targetType, targetID string, details any) error {
	var detailsJSON []byte
	if details != nil {
		var err error
		detailsJSON, err = json.Marshal(details)
		if err != nil {
			return fmt.Errorf("failed to marshal activity details: %w", err)
		}
	}

	_, err := db.Pool.Exec(ctx, `
		INSERT INTO activity_log (user_id, action, target_type, target_id, details)
		VALUES ($1, $2, $3, $4, $5)`,
		userID, action, targetType, targetID, detailsJSON)
	if err != nil {
		return fmt.Errorf("failed to insert activity log: %w", err)
	}
	return nil
}
