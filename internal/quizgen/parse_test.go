package quizgen

import "testing"

const sampleArray = `[
  {
    "question": "What is the capital of France?",
    "options": {"a": "Berlin", "b": "Madrid", "c": "Paris", "d": "Lisbon"},
    "difficulty": "Beginner",
    "tags": ["geography", "capital cities"],
    "correct_answer": "c",
    "attempted_option": ""
  }
]`

func TestParseQuestions_DirectJSON(t *testing.T) {
	questions, ok := parseQuestions(sampleArray)
	if !ok {
		t.Fatalf("expected direct JSON to parse")
	}
	if len(questions) != 1 || questions[0].CorrectAnswer != "c" {
		t.Fatalf("unexpected parse result: %+v", questions)
	}
	if questions[0].Options["a"] != "Berlin" {
		t.Fatalf("options not decoded: %+v", questions[0].Options)
	}
}

func TestParseQuestions_FencedCodeBlock(t *testing.T) {
	fenced := "Here you go:\n```json\n" + sampleArray + "\n```\nHope this helps!"
	questions, ok := parseQuestions(fenced)
	if !ok {
		t.Fatalf("expected fenced JSON to parse")
	}
	if len(questions) != 1 {
		t.Fatalf("got %d questions, want 1", len(questions))
	}
}

func TestParseQuestions_FencedWithoutLanguageTag(t *testing.T) {
	fenced := "```\n" + sampleArray + "\n```"
	if _, ok := parseQuestions(fenced); !ok {
		t.Fatalf("expected untagged fence to parse")
	}
}

func TestParseQuestions_EmbeddedArray(t *testing.T) {
	chatty := "Sure! The questions you asked for are " + sampleArray + " and that is all."
	questions, ok := parseQuestions(chatty)
	if !ok {
		t.Fatalf("expected embedded array to parse")
	}
	if len(questions) != 1 {
		t.Fatalf("got %d questions, want 1", len(questions))
	}
}

func TestParseQuestions_IdenticalAcrossWrappings(t *testing.T) {
	direct, _ := parseQuestions(sampleArray)
	fenced, _ := parseQuestions("```json\n" + sampleArray + "\n```")
	embedded, _ := parseQuestions("prose before " + sampleArray + " prose after")

	for i, got := range [][]string{
		{fenced[0].Text, fenced[0].CorrectAnswer},
		{embedded[0].Text, embedded[0].CorrectAnswer},
	} {
		if got[0] != direct[0].Text || got[1] != direct[0].CorrectAnswer {
			t.Fatalf("wrapping %d decoded differently: %v", i, got)
		}
	}
}

func TestParseQuestions_EmptyArrayIsValid(t *testing.T) {
	questions, ok := parseQuestions("[]")
	if !ok {
		t.Fatalf("empty array must parse")
	}
	if len(questions) != 0 {
		t.Fatalf("got %d questions, want 0", len(questions))
	}
}

func TestParseQuestions_ProseFails(t *testing.T) {
	if _, ok := parseQuestions("I cannot help with that topic."); ok {
		t.Fatalf("plain prose must not parse")
	}
}

func TestParseQuestions_UnbalancedArrayFails(t *testing.T) {
	if _, ok := parseQuestions(`[{"question": "truncated`); ok {
		t.Fatalf("truncated array must not parse")
	}
}

func TestExtractJSONArray_IgnoresBracketsInsideStrings(t *testing.T) {
	text := `note: ["a ] tricky [ string", "plain"] trailing`
	got := extractJSONArray(text)
	want := `["a ] tricky [ string", "plain"]`
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestExtractJSONArray_NestedArrays(t *testing.T) {
	text := `x [[1, 2], [3]] y`
	if got := extractJSONArray(text); got != "[[1, 2], [3]]" {
		t.Fatalf("got %q", got)
	}
}
