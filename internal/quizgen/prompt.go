package quizgen

import (
	"fmt"
	"strings"

	"quizforge/internal/models"
)

// questionSchema is the document shape every generated question must follow.
// The keys match what the store persists and the frontend renders, so the
// prompt spells them out verbatim.
const questionSchema = `{
    "question": "What is the capital of France?",
    "options": {"a": "Berlin", "b": "Madrid", "c": "Paris", "d": "Lisbon"},
    "difficulty": "Beginner",
    "tags": ["geography", "capital cities"],
    "correct_answer": "c",
    "attempted_option": "",
    "hint": "Famous for Eiffel Tower",
    "solution": "Paris is the capital of France and famous for Eiffel Tower and croissants."
}`

// safetyClause instructs the model to answer unsafe or nonsensical topics
// with an empty JSON list instead of refusing in prose. An empty list is a
// recognized, successful outcome for the parser.
func safetyClause(topic string) string {
	return fmt.Sprintf("If the given topic '%s' is NSFW, or is some sensitive topic or something you don't understand or something not safe for children to know, just don't give anything - give an empty JSON list.", topic)
}

// QuizPrompt builds the quiz-generation prompt for a topic, question count
// and difficulty. Difficulty "Mixed" asks for a graded spread instead of a
// single level.
func QuizPrompt(topic string, numQuestions int, difficulty string) string {
	var b strings.Builder
	b.WriteString(safetyClause(topic))
	b.WriteString("\n\n")
	if difficulty == models.DifficultyMixed {
		fmt.Fprintf(&b, "Otherwise generate %d multiple-choice quiz questions on %q with 2-3 tags each and a mix of Beginner, Intermediate and Advanced difficulties (where Beginner is the easiest, Intermediate being medium-level and Advanced being hard questions).", numQuestions, topic)
	} else {
		fmt.Fprintf(&b, "Otherwise generate %d multiple-choice quiz questions on %q with 2-3 tags each and difficulty %s (where Beginner is the easiest, Intermediate being medium-level and Advanced being hard questions).", numQuestions, topic, difficulty)
	}
	b.WriteString(" The options should be keyed \"a\", \"b\", \"c\", \"d\".\n")
	b.WriteString("Each question should be in JSON format like this:\n\n")
	b.WriteString(questionSchema)
	b.WriteString("\n\nReturn the result as a JSON array, without any markdown formatting.")
	return b.String()
}

// PracticePromptCount is the fixed size of a graded practice set.
const PracticePromptCount = 20

// PracticePrompt builds the graded practice-set prompt: a fixed-size run of
// questions sloping from beginner to advanced.
func PracticePrompt(topic string) string {
	var b strings.Builder
	b.WriteString(safetyClause(topic))
	fmt.Fprintf(&b, "\n\nBut if '%s' is a normal topic then generate %d multiple-choice questions on the topic %q with three difficulty levels:\n", topic, PracticePromptCount, topic)
	b.WriteString("- First 10 should be beginner-level\n")
	b.WriteString("- Next 6 should be intermediate-level\n")
	b.WriteString("- Last 4 should be advanced-level\n\n")
	b.WriteString("Each question should be in JSON format like this:\n\n")
	b.WriteString(questionSchema)
	b.WriteString("\n\nReturn the result as a JSON array, without any markdown formatting.")
	return b.String()
}

// NotesPrompt builds the study-notes prompt. Output is plain markdown text,
// not JSON, so the unsafe-topic answer is a sentinel word instead of an
// empty list.
func NotesPrompt(topic string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "If the given topic '%s' is NSFW, or is some sensitive topic or something you don't understand or something not safe for children to know, reply with exactly the single word NONE.\n\n", topic)
	fmt.Fprintf(&b, "Otherwise write clear, well-structured study notes on %q for a student preparing for a quiz. ", topic)
	b.WriteString("Cover the key concepts, definitions and common pitfalls, use markdown headings and bullet points, and keep the notes self-contained.")
	return b.String()
}
