package models

import (
	"time"

	"github.com/google/uuid"
)

// Difficulty levels recognized by the generator. "Mixed" asks for a graded
// spread across all three.
const (
	DifficultyBeginner     = "Beginner"
	DifficultyIntermediate = "Intermediate"
	DifficultyAdvanced     = "Advanced"
	DifficultyMixed        = "Mixed"
)

// OptionKeys is the fixed set of option keys every question must carry.
var OptionKeys = []string{"a", "b", "c", "d"}

// Question is one multiple-choice item, stored as a JSONB document inside
// its quiz. The JSON field names match the generation schema exactly.
type Question struct {
	ID              string            `json:"id"`
	Text            string            `json:"question"`
	Options         map[string]string `json:"options"`
	Difficulty      string            `json:"difficulty"`
	Tags            []string          `json:"tags"`
	CorrectAnswer   string            `json:"correct_answer"`
	AttemptedOption string            `json:"attempted_option"`
	Hint            string            `json:"hint,omitempty"`
	Solution        string            `json:"solution,omitempty"`
}

// Quiz is a named collection of questions plus the parameters it was
// generated with.
type Quiz struct {
	ID             uuid.UUID  `json:"id"`
	OwnerID        uuid.UUID  `json:"owner_id"`
	Topic          string     `json:"topic"`
	RequestedCount int        `json:"requested_count"`
	Difficulty     string     `json:"difficulty"`
	TimeLimit      int        `json:"time_limit,omitempty"` // minutes, 0 = none
	Questions      []Question `json:"questions"`
	CreatedAt      time.Time  `json:"created_at"`
}

// QuizSummary is the listing shape (no question bodies).
type QuizSummary struct {
	ID            uuid.UUID `json:"id"`
	Topic         string    `json:"topic"`
	Difficulty    string    `json:"difficulty"`
	QuestionCount int       `json:"question_count"`
	TimeLimit     int       `json:"time_limit,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// User carries aggregate learner statistics. AverageScore is the running
// arithmetic mean of every submitted score percentage (serialized as
// total_marks for the frontend), never a raw sum.
type User struct {
	ID             uuid.UUID `json:"user_id"`
	GoogleID       string    `json:"-"`
	Email          string    `json:"email"`
	Name           string    `json:"name,omitempty"`
	Picture        string    `json:"picture,omitempty"`
	TestsAttempted int       `json:"number_of_tests_attempted"`
	AverageScore   float64   `json:"total_marks"`
	WeakTags       []string  `json:"weak_tags"`
	CreatedAt      time.Time `json:"created_at"`
}

// Attempt is one scored submission of a quiz by a user. Append-only: the
// quiz's questions never carry per-user state.
type Attempt struct {
	ID              uuid.UUID         `json:"id"`
	QuizID          uuid.UUID         `json:"quiz_id"`
	UserID          uuid.UUID         `json:"user_id"`
	Answers         map[string]string `json:"answers"`
	CorrectCount    int               `json:"correct_count"`
	WrongCount      int               `json:"wrong_count"`
	TotalQuestions  int               `json:"total_questions"`
	ScorePercentage float64           `json:"score_percentage"`
	WrongTagCounts  map[string]int    `json:"wrong_tag_counts"`
	CreatedAt       time.Time         `json:"created_at"`
}

// Bookmark is a question a user pinned for later review.
type Bookmark struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Question  Question  `json:"question"`
	CreatedAt time.Time `json:"created_at"`
}

// LeaderboardEntry is one row of the public leaderboard.
type LeaderboardEntry struct {
	UserID         uuid.UUID `json:"userID"`
	Email          string    `json:"email"`
	Name           string    `json:"name,omitempty"`
	TestsAttempted int       `json:"number_of_tests_attempted"`
	AverageScore   float64   `json:"average_marks"`
}

// ErrorResponse represents an error response body.
type ErrorResponse struct {
	Error string `json:"error"`
}
