// Package quizgen turns topics into validated multiple-choice question sets
// by way of a ranked list of Gemini connectivity strategies.
package quizgen

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"quizforge/internal/models"

	"github.com/google/uuid"
)

// Kind classifies a GenerationError.
type Kind int

const (
	// KindUnreachable: every connectivity strategy failed or returned an
	// empty response.
	KindUnreachable Kind = iota
	// KindUnparsable: a response arrived but no parsing strategy could
	// extract a question array from it.
	KindUnparsable
)

func (k Kind) String() string {
	switch k {
	case KindUnreachable:
		return "unreachable"
	case KindUnparsable:
		return "unparsable"
	default:
		return "unknown"
	}
}

// GenerationError is a classified generation failure. Callers map Kind onto
// a transport status (unreachable -> 503, unparsable -> 502).
type GenerationError struct {
	Kind Kind
	Err  error
}

func (e *GenerationError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("generation failed (%s)", e.Kind)
	}
	return fmt.Sprintf("generation failed (%s): %v", e.Kind, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// ErrTopicRejected means the model deliberately answered with an empty list,
// the instructed response for unsafe or nonsensical topics. Generation
// itself succeeded.
var ErrTopicRejected = errors.New("topic rejected: model produced no questions")

// ErrUnderfilled wraps a successful generation that yielded fewer valid
// questions than requested. The partial batch is still returned; the caller
// decides whether to accept it.
var ErrUnderfilled = errors.New("generated fewer questions than requested")

// TextGenerator is one connectivity strategy: a named way of getting prompt
// text answered.
type TextGenerator interface {
	Name() string
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// Archiver persists a raw prompt/response exchange for later debugging.
// Archival is best-effort; failures are logged, never propagated.
type Archiver interface {
	ArchiveGeneration(ctx context.Context, topic, strategy, prompt, response string) (string, error)
}

// Generator produces question sets and study notes. Strategies are tried in
// order until one answers.
type Generator struct {
	strategies []TextGenerator
	archiver   Archiver // may be nil
}

// New creates a Generator over the given strategy order. archiver may be nil
// to disable exchange archival.
func New(strategies []TextGenerator, archiver Archiver) (*Generator, error) {
	if len(strategies) == 0 {
		return nil, fmt.Errorf("at least one text-generation strategy is required")
	}
	return &Generator{strategies: strategies, archiver: archiver}, nil
}

// Generate produces count questions on topic at the given difficulty.
//
// Invalid items in the model's output are dropped with a warning. If the
// surviving batch is smaller than count it is returned alongside
// ErrUnderfilled; an empty model answer returns ErrTopicRejected.
func (g *Generator) Generate(ctx context.Context, topic string, count int, difficulty string) ([]models.Question, error) {
	prompt := QuizPrompt(topic, count, difficulty)
	questions, err := g.generateQuestions(ctx, topic, prompt)
	if err != nil {
		return nil, err
	}
	if len(questions) < count {
		return questions, fmt.Errorf("%w: got %d, want %d", ErrUnderfilled, len(questions), count)
	}
	return questions, nil
}

// GeneratePractice produces a graded practice set (beginner through
// advanced) on topic. Practice is best-effort: a smaller-than-nominal batch
// is returned as-is, without ErrUnderfilled.
func (g *Generator) GeneratePractice(ctx context.Context, topic string) ([]models.Question, error) {
	prompt := PracticePrompt(topic)
	return g.generateQuestions(ctx, topic, prompt)
}

// GenerateNotes produces plain-text study notes on topic, using the same
// strategy fallback as question generation.
func (g *Generator) GenerateNotes(ctx context.Context, topic string) (string, error) {
	raw, strategy, err := g.generateText(ctx, NotesPrompt(topic))
	if err != nil {
		return "", err
	}
	g.archive(ctx, topic, strategy, NotesPrompt(topic), raw)

	notes := strings.TrimSpace(raw)
	if notes == "" || notes == "NONE" {
		return "", ErrTopicRejected
	}
	return notes, nil
}

func (g *Generator) generateQuestions(ctx context.Context, topic, prompt string) ([]models.Question, error) {
	raw, strategy, err := g.generateText(ctx, prompt)
	if err != nil {
		return nil, err
	}
	g.archive(ctx, topic, strategy, prompt, raw)

	parsed, ok := parseQuestions(raw)
	if !ok {
		log.Printf("WARN: no parsing strategy extracted a question array (topic=%q, strategy=%s, len=%d)", topic, strategy, len(raw))
		return nil, &GenerationError{Kind: KindUnparsable, Err: fmt.Errorf("no question array found in model response")}
	}
	if len(parsed) == 0 {
		log.Printf("INFO: model returned an empty question list for topic %q", topic)
		return nil, ErrTopicRejected
	}

	questions := make([]models.Question, 0, len(parsed))
	for i, q := range parsed {
		if err := validateQuestion(q); err != nil {
			log.Printf("WARN: dropping generated question %d for topic %q: %v", i, topic, err)
			continue
		}
		q.ID = uuid.New().String()
		q.AttemptedOption = ""
		questions = append(questions, q)
	}
	if len(questions) == 0 {
		return nil, &GenerationError{Kind: KindUnparsable, Err: fmt.Errorf("every generated question failed validation")}
	}
	return questions, nil
}

// generateText runs the strategy ladder: connectivity failures and empty
// responses advance to the next strategy, exhaustion is an unreachable
// error. A malformed-but-nonempty response is NOT retried on another
// strategy; parsing gets exactly one response to work with.
func (g *Generator) generateText(ctx context.Context, prompt string) (text, strategy string, err error) {
	var lastErr error
	for _, s := range g.strategies {
		raw, err := s.GenerateText(ctx, prompt)
		if err != nil {
			log.Printf("WARN: strategy %s failed: %v", s.Name(), err)
			lastErr = err
			continue
		}
		if strings.TrimSpace(raw) == "" {
			log.Printf("WARN: strategy %s returned an empty response", s.Name())
			lastErr = fmt.Errorf("strategy %s returned an empty response", s.Name())
			continue
		}
		return raw, s.Name(), nil
	}
	return "", "", &GenerationError{Kind: KindUnreachable, Err: fmt.Errorf("all %d strategies exhausted: %w", len(g.strategies), lastErr)}
}

func (g *Generator) archive(ctx context.Context, topic, strategy, prompt, response string) {
	if g.archiver == nil {
		return
	}
	key, err := g.archiver.ArchiveGeneration(ctx, topic, strategy, prompt, response)
	if err != nil {
		log.Printf("WARN: failed to archive generation exchange for topic %q: %v", topic, err)
		return
	}
	log.Printf("DEBUG: archived generation exchange at %s", key)
}

// validateQuestion enforces the generation schema: non-empty question text,
// all four options present and non-empty, and a correct_answer that names an
// existing option key.
func validateQuestion(q models.Question) error {
	if strings.TrimSpace(q.Text) == "" {
		return fmt.Errorf("missing question text")
	}
	if len(q.Options) != len(models.OptionKeys) {
		return fmt.Errorf("expected %d options, got %d", len(models.OptionKeys), len(q.Options))
	}
	for _, key := range models.OptionKeys {
		if strings.TrimSpace(q.Options[key]) == "" {
			return fmt.Errorf("option %q missing or empty", key)
		}
	}
	if _, ok := q.Options[q.CorrectAnswer]; !ok {
		return fmt.Errorf("correct_answer %q does not name an option", q.CorrectAnswer)
	}
	return nil
}
