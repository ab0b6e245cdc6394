package quizgen

import (
	"encoding/json"
	"regexp"
	"strings"

	"quizforge/internal/models"
)

var codeBlockPattern = regexp.MustCompile("```(?:json)?\\s*((?s).*?)\\s*```")

// parseQuestions extracts a JSON array of question documents from raw model
// output. Strategies, in order:
//
//  1. parse the whole trimmed text as JSON;
//  2. parse the contents of the first fenced code block;
//  3. scan for the first balanced top-level JSON array anywhere in the text.
//
// The first strategy that yields valid JSON wins; later ones are not
// consulted. A valid empty array parses successfully to an empty slice, it
// is the caller's job to interpret that as a rejected topic.
func parseQuestions(text string) ([]models.Question, bool) {
	candidates := []string{strings.TrimSpace(text)}
	if m := codeBlockPattern.FindStringSubmatch(text); len(m) > 1 {
		candidates = append(candidates, m[1])
	}
	if arr := extractJSONArray(text); arr != "" {
		candidates = append(candidates, arr)
	}

	for _, candidate := range candidates {
		if candidate == "" {
			continue
		}
		var questions []models.Question
		if err := json.Unmarshal([]byte(candidate), &questions); err == nil {
			return questions, true
		}
	}
	return nil, false
}

// extractJSONArray returns the first balanced top-level JSON array in text,
// or "" when none closes. Bracket depth is tracked outside string literals
// only, honoring backslash escapes.
func extractJSONArray(text string) string {
	start := strings.IndexByte(text, '[')
	if start < 0 {
		return ""
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		if escaped {
			escaped = false
			continue
		}
		switch c {
		case '\\':
			if inString {
				escaped = true
			}
		case '"':
			inString = !inString
		case '[':
			if !inString {
				depth++
			}
		case ']':
			if !inString {
				depth--
				if depth == 0 {
					return text[start : i+1]
				}
			}
		}
	}
	return ""
}
