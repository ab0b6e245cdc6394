// Package scoring implements quiz scoring and weak-topic aggregation.
// It is pure: persistence of the resulting user statistics is the
// store's concern (see db.ApplySubmission).
package scoring

import (
	"sort"

	"quizforge/internal/models"
)

// DefaultMissThreshold is the per-attempt miss count at which a tag is
// promoted into a user's weak-tag set. Overridable via
// WEAK_TAG_MISS_THRESHOLD.
const DefaultMissThreshold = 2

// Result is the outcome of scoring one quiz attempt.
type Result struct {
	CorrectCount    int            `json:"correct_count"`
	WrongCount      int            `json:"wrong_count"`
	TotalQuestions  int            `json:"total_questions"`
	ScorePercentage float64        `json:"score_percentage"`
	WrongTagCounts  map[string]int `json:"wrong_tag_counts"`
}

// Score compares submitted answers against the quiz's questions.
//
// Answers are keyed by question ID; the value is the chosen option key.
// A question with no submitted answer is skipped entirely: it counts
// neither correct nor wrong and contributes no tag penalties, but it still
// counts against the denominator. Option keys are compared exactly,
// case-sensitively.
func Score(questions []models.Question, answers map[string]string) Result {
	res := Result{
		TotalQuestions: len(questions),
		WrongTagCounts: make(map[string]int),
	}

	for _, q := range questions {
		chosen, answered := answers[q.ID]
		if !answered || chosen == "" {
			continue // unanswered is not wrong
		}
		if chosen == q.CorrectAnswer {
			res.CorrectCount++
			continue
		}
		res.WrongCount++
		for _, tag := range q.Tags {
			res.WrongTagCounts[tag]++
		}
	}

	if res.TotalQuestions > 0 {
		res.ScorePercentage = float64(res.CorrectCount) / float64(res.TotalQuestions) * 100
	}
	return res
}

// WeakTags returns the tags whose miss count in a single attempt meets or
// exceeds missThreshold, sorted for stable output. The threshold is
// per-attempt; misses never accumulate across attempts.
func WeakTags(wrongTagCounts map[string]int, missThreshold int) []string {
	if missThreshold <= 0 {
		missThreshold = DefaultMissThreshold
	}
	var tags []string
	for tag, misses := range wrongTagCounts {
		if misses >= missThreshold {
			tags = append(tags, tag)
		}
	}
	sort.Strings(tags)
	return tags
}

// ApplyResult folds one attempt's result into a user's running statistics:
// the test counter increments by one, the stored average is recomputed as
// (old*n + p) / (n+1), and tags promoted by this attempt are unioned into
// the existing weak-tag set (cumulative, never destructive).
func ApplyResult(u models.User, res Result, missThreshold int) models.User {
	n := u.TestsAttempted
	u.AverageScore = (u.AverageScore*float64(n) + res.ScorePercentage) / float64(n+1)
	u.TestsAttempted = n + 1
	u.WeakTags = mergeTags(u.WeakTags, WeakTags(res.WrongTagCounts, missThreshold))
	return u
}

// mergeTags unions two tag sets, de-duplicated and sorted.
func mergeTags(existing, added []string) []string {
	seen := make(map[string]struct{}, len(existing)+len(added))
	merged := make([]string, 0, len(existing)+len(added))
	for _, lists := range [][]string{existing, added} {
		for _, tag := range lists {
			if _, ok := seen[tag]; ok {
				continue
			}
			seen[tag] = struct{}{}
			merged = append(merged, tag)
		}
	}
	sort.Strings(merged)
	return merged
}
