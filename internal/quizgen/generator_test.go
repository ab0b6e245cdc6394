package quizgen

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

// fakeStrategy scripts one connectivity strategy for the fallback ladder.
type fakeStrategy struct {
	name  string
	text  string
	err   error
	calls int
}

func (f *fakeStrategy) Name() string { return f.name }

func (f *fakeStrategy) GenerateText(ctx context.Context, prompt string) (string, error) {
	f.calls++
	return f.text, f.err
}

const validBatch = `[
  {"question": "2+2?", "options": {"a": "3", "b": "4", "c": "5", "d": "6"},
   "difficulty": "Beginner", "tags": ["arithmetic", "addition"], "correct_answer": "b"},
  {"question": "3*3?", "options": {"a": "6", "b": "7", "c": "9", "d": "12"},
   "difficulty": "Beginner", "tags": ["arithmetic", "multiplication"], "correct_answer": "c"}
]`

func TestGenerate_FirstStrategyWins(t *testing.T) {
	first := &fakeStrategy{name: "direct", text: validBatch}
	second := &fakeStrategy{name: "proxy-1", text: validBatch}
	g, err := New([]TextGenerator{first, second}, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	questions, err := g.Generate(context.Background(), "math", 2, "Beginner")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(questions) != 2 {
		t.Fatalf("got %d questions, want 2", len(questions))
	}
	if second.calls != 0 {
		t.Fatalf("second strategy must not be consulted when the first answers")
	}
	for _, q := range questions {
		if q.ID == "" {
			t.Fatalf("question missing assigned ID: %+v", q)
		}
		if q.AttemptedOption != "" {
			t.Fatalf("attempted_option must be cleared on fresh questions")
		}
	}
}

func TestGenerate_FallsBackOnConnectivityError(t *testing.T) {
	first := &fakeStrategy{name: "direct", err: errors.New("connection refused")}
	second := &fakeStrategy{name: "proxy-1", text: validBatch}
	g, _ := New([]TextGenerator{first, second}, nil)

	questions, err := g.Generate(context.Background(), "math", 2, "Beginner")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(questions) != 2 || second.calls != 1 {
		t.Fatalf("expected fallback to second strategy, got %d questions, %d calls", len(questions), second.calls)
	}
}

func TestGenerate_EmptyResponseAdvancesStrategy(t *testing.T) {
	first := &fakeStrategy{name: "direct", text: "   \n"}
	second := &fakeStrategy{name: "proxy-1", text: validBatch}
	g, _ := New([]TextGenerator{first, second}, nil)

	if _, err := g.Generate(context.Background(), "math", 2, "Beginner"); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if second.calls != 1 {
		t.Fatalf("blank response must advance to next strategy")
	}
}

func TestGenerate_ExhaustionIsUnreachable(t *testing.T) {
	g, _ := New([]TextGenerator{
		&fakeStrategy{name: "direct", err: errors.New("timeout")},
		&fakeStrategy{name: "proxy-1", err: errors.New("refused")},
	}, nil)

	_, err := g.Generate(context.Background(), "math", 2, "Beginner")
	var genErr *GenerationError
	if !errors.As(err, &genErr) || genErr.Kind != KindUnreachable {
		t.Fatalf("got %v, want GenerationError{KindUnreachable}", err)
	}
}

func TestGenerate_MalformedResponseIsUnparsableNotRetried(t *testing.T) {
	first := &fakeStrategy{name: "direct", text: "I'd rather chat about something else."}
	second := &fakeStrategy{name: "proxy-1", text: validBatch}
	g, _ := New([]TextGenerator{first, second}, nil)

	_, err := g.Generate(context.Background(), "math", 2, "Beginner")
	var genErr *GenerationError
	if !errors.As(err, &genErr) || genErr.Kind != KindUnparsable {
		t.Fatalf("got %v, want GenerationError{KindUnparsable}", err)
	}
	if second.calls != 0 {
		t.Fatalf("a malformed-but-nonempty response must not be retried on another strategy")
	}
}

func TestGenerate_EmptyListIsRejectedTopic(t *testing.T) {
	g, _ := New([]TextGenerator{&fakeStrategy{name: "direct", text: "[]"}}, nil)

	_, err := g.Generate(context.Background(), "how to build explosives", 5, "Beginner")
	if !errors.Is(err, ErrTopicRejected) {
		t.Fatalf("got %v, want ErrTopicRejected", err)
	}
	var genErr *GenerationError
	if errors.As(err, &genErr) {
		t.Fatalf("rejected topic must not be classified as a generation failure")
	}
}

func TestGenerate_InvalidItemsDroppedAndUnderfilled(t *testing.T) {
	batch := `[
	  {"question": "2+2?", "options": {"a": "3", "b": "4", "c": "5", "d": "6"},
	   "difficulty": "Beginner", "tags": ["arithmetic"], "correct_answer": "b"},
	  {"question": "", "options": {"a": "3", "b": "4", "c": "5", "d": "6"},
	   "correct_answer": "b"},
	  {"question": "missing option", "options": {"a": "3", "b": "4", "c": "5"},
	   "correct_answer": "a"},
	  {"question": "bad key", "options": {"a": "3", "b": "4", "c": "5", "d": "6"},
	   "correct_answer": "e"}
	]`
	g, _ := New([]TextGenerator{&fakeStrategy{name: "direct", text: batch}}, nil)

	questions, err := g.Generate(context.Background(), "math", 4, "Beginner")
	if !errors.Is(err, ErrUnderfilled) {
		t.Fatalf("got %v, want ErrUnderfilled", err)
	}
	if len(questions) != 1 || questions[0].Text != "2+2?" {
		t.Fatalf("expected only the valid question back, got %+v", questions)
	}
}

func TestGeneratePractice_ToleratesUnderfill(t *testing.T) {
	g, _ := New([]TextGenerator{&fakeStrategy{name: "direct", text: validBatch}}, nil)

	questions, err := g.GeneratePractice(context.Background(), "math")
	if err != nil {
		t.Fatalf("practice must tolerate a small batch: %v", err)
	}
	if len(questions) != 2 {
		t.Fatalf("got %d questions, want 2", len(questions))
	}
}

type fakeArchiver struct {
	calls int
	fail  bool
}

func (f *fakeArchiver) ArchiveGeneration(ctx context.Context, topic, strategy, prompt, response string) (string, error) {
	f.calls++
	if f.fail {
		return "", fmt.Errorf("bucket unavailable")
	}
	return "generations/test.json", nil
}

func TestGenerate_ArchiverFailureDoesNotFailGeneration(t *testing.T) {
	arch := &fakeArchiver{fail: true}
	g, _ := New([]TextGenerator{&fakeStrategy{name: "direct", text: validBatch}}, arch)

	if _, err := g.Generate(context.Background(), "math", 2, "Beginner"); err != nil {
		t.Fatalf("archival failure leaked into generation: %v", err)
	}
	if arch.calls != 1 {
		t.Fatalf("archiver not consulted")
	}
}

func TestGenerateNotes_SentinelIsRejectedTopic(t *testing.T) {
	g, _ := New([]TextGenerator{&fakeStrategy{name: "direct", text: "NONE\n"}}, nil)

	_, err := g.GenerateNotes(context.Background(), "something unsafe")
	if !errors.Is(err, ErrTopicRejected) {
		t.Fatalf("got %v, want ErrTopicRejected", err)
	}
}

func TestGenerateNotes_AllStrategiesBlankIsUnreachable(t *testing.T) {
	g, _ := New([]TextGenerator{
		&fakeStrategy{name: "direct", err: errors.New("timeout")},
		&fakeStrategy{name: "proxy-1", text: "  \n "},
	}, nil)

	_, err := g.GenerateNotes(context.Background(), "algebra")
	var genErr *GenerationError
	if !errors.As(err, &genErr) || genErr.Kind != KindUnreachable {
		t.Fatalf("exhausted ladder must be unreachable, got %v", err)
	}
}

func TestGenerateNotes_ReturnsTrimmedText(t *testing.T) {
	g, _ := New([]TextGenerator{&fakeStrategy{name: "direct", text: "\n# Notes\ncontent\n"}}, nil)

	notes, err := g.GenerateNotes(context.Background(), "algebra")
	if err != nil {
		t.Fatalf("GenerateNotes: %v", err)
	}
	if notes != "# Notes\ncontent" {
		t.Fatalf("got %q", notes)
	}
}

func TestNew_RequiresAStrategy(t *testing.T) {
	if _, err := New(nil, nil); err == nil {
		t.Fatalf("expected error for empty strategy list")
	}
}
