package scoring

import (
	"math"
	"testing"

	"quizforge/internal/models"
)

func q(id string, correct string, tags ...string) models.Question {
	return models.Question{
		ID:   id,
		Text: "q" + id,
		Options: map[string]string{
			"a": "A", "b": "B", "c": "C", "d": "D",
		},
		Difficulty:    models.DifficultyBeginner,
		Tags:          tags,
		CorrectAnswer: correct,
	}
}

func TestScore_AlgebraGeometryScenario(t *testing.T) {
	questions := []models.Question{
		q("1", "a", "algebra"),
		q("2", "b", "algebra"),
		q("3", "c", "algebra"),
		q("4", "d", "geometry"),
	}
	answers := map[string]string{
		"1": "a", // correct
		"2": "c", // miss algebra
		"3": "a", // miss algebra
		"4": "a", // miss geometry
	}

	res := Score(questions, answers)
	if res.CorrectCount != 1 || res.WrongCount != 3 {
		t.Fatalf("got correct=%d wrong=%d, want 1/3", res.CorrectCount, res.WrongCount)
	}
	if res.ScorePercentage != 25.0 {
		t.Fatalf("got percentage=%v, want 25.0", res.ScorePercentage)
	}
	if res.WrongTagCounts["algebra"] != 2 || res.WrongTagCounts["geometry"] != 1 {
		t.Fatalf("unexpected tag counts: %v", res.WrongTagCounts)
	}

	weak := WeakTags(res.WrongTagCounts, 2)
	if len(weak) != 1 || weak[0] != "algebra" {
		t.Fatalf("got weak tags %v, want [algebra]", weak)
	}
}

func TestScore_UnansweredIsSkippedButCountsInDenominator(t *testing.T) {
	questions := []models.Question{
		q("1", "a", "x"),
		q("2", "b", "x"),
		q("3", "c", "y"),
		q("4", "d", "y"),
	}
	answers := map[string]string{
		"1": "a",
		"2": "a",
		// 3 and 4 unanswered
	}

	res := Score(questions, answers)
	if res.CorrectCount != 1 || res.WrongCount != 1 {
		t.Fatalf("got correct=%d wrong=%d, want 1/1", res.CorrectCount, res.WrongCount)
	}
	skipped := res.TotalQuestions - res.CorrectCount - res.WrongCount
	if skipped != 2 {
		t.Fatalf("got %d skipped, want 2", skipped)
	}
	if res.ScorePercentage != 25.0 {
		t.Fatalf("unanswered questions must count against the denominator: got %v", res.ScorePercentage)
	}
	if _, ok := res.WrongTagCounts["y"]; ok {
		t.Fatalf("unanswered questions must not add tag penalties: %v", res.WrongTagCounts)
	}
}

func TestScore_CountingIdentity(t *testing.T) {
	questions := []models.Question{
		q("1", "a", "t"), q("2", "b", "t"), q("3", "c", "t"),
		q("4", "d", "t"), q("5", "a", "t"),
	}
	cases := []map[string]string{
		{},
		{"1": "a"},
		{"1": "b", "2": "b", "3": "a"},
		{"1": "a", "2": "b", "3": "c", "4": "d", "5": "a"},
	}
	for _, answers := range cases {
		res := Score(questions, answers)
		skipped := res.TotalQuestions - res.CorrectCount - res.WrongCount
		if res.CorrectCount+res.WrongCount+skipped != len(questions) {
			t.Fatalf("counting identity violated for %v: %+v", answers, res)
		}
		if res.ScorePercentage < 0 || res.ScorePercentage > 100 {
			t.Fatalf("percentage out of range: %v", res.ScorePercentage)
		}
	}
}

func TestScore_EmptyQuizScoresZero(t *testing.T) {
	res := Score(nil, map[string]string{"1": "a"})
	if res.TotalQuestions != 0 || res.ScorePercentage != 0 {
		t.Fatalf("empty quiz must score 0, got %+v", res)
	}
}

func TestScore_OptionComparisonIsCaseSensitive(t *testing.T) {
	questions := []models.Question{q("1", "a", "t")}
	res := Score(questions, map[string]string{"1": "A"})
	if res.CorrectCount != 0 || res.WrongCount != 1 {
		t.Fatalf("expected case-sensitive mismatch to be wrong, got %+v", res)
	}
}

func TestWeakTags_ThresholdBoundary(t *testing.T) {
	counts := map[string]int{"below": 1, "at": 2, "above": 3}
	weak := WeakTags(counts, 2)
	if len(weak) != 2 || weak[0] != "above" || weak[1] != "at" {
		t.Fatalf("got %v, want [above at]", weak)
	}
}

func TestApplyResult_RunningAverage(t *testing.T) {
	u := models.User{TestsAttempted: 0, AverageScore: 0}

	u = ApplyResult(u, Result{ScorePercentage: 80, WrongTagCounts: map[string]int{}}, 2)
	if u.TestsAttempted != 1 || u.AverageScore != 80.0 {
		t.Fatalf("after first submission got (%d, %v), want (1, 80.0)", u.TestsAttempted, u.AverageScore)
	}

	u = ApplyResult(u, Result{ScorePercentage: 40, WrongTagCounts: map[string]int{}}, 2)
	if u.TestsAttempted != 2 || u.AverageScore != 60.0 {
		t.Fatalf("after second submission got (%d, %v), want (2, 60.0)", u.TestsAttempted, u.AverageScore)
	}
}

func TestApplyResult_AverageIsMeanInAnyOrder(t *testing.T) {
	perms := [][]float64{
		{100, 50, 0, 75},
		{0, 75, 100, 50},
		{75, 100, 50, 0},
	}
	want := (100.0 + 50.0 + 0.0 + 75.0) / 4.0
	for _, scores := range perms {
		u := models.User{}
		for _, p := range scores {
			u = ApplyResult(u, Result{ScorePercentage: p, WrongTagCounts: map[string]int{}}, 2)
		}
		if math.Abs(u.AverageScore-want) > 1e-9 {
			t.Fatalf("order %v: got average %v, want %v", scores, u.AverageScore, want)
		}
	}
}

func TestApplyResult_WeakTagsAreCumulativeUnion(t *testing.T) {
	u := models.User{WeakTags: []string{"calculus"}}

	u = ApplyResult(u, Result{
		ScorePercentage: 50,
		WrongTagCounts:  map[string]int{"algebra": 2, "geometry": 1},
	}, 2)

	if len(u.WeakTags) != 2 || u.WeakTags[0] != "algebra" || u.WeakTags[1] != "calculus" {
		t.Fatalf("got weak tags %v, want [algebra calculus]", u.WeakTags)
	}

	// A later attempt must not remove previously promoted tags, and must
	// not promote tags below the threshold.
	u = ApplyResult(u, Result{
		ScorePercentage: 90,
		WrongTagCounts:  map[string]int{"geometry": 1},
	}, 2)
	if len(u.WeakTags) != 2 {
		t.Fatalf("below-threshold attempt changed weak tags: %v", u.WeakTags)
	}
}

func TestApplyResult_DuplicatePromotionIsDeduplicated(t *testing.T) {
	u := models.User{WeakTags: []string{"algebra"}}
	u = ApplyResult(u, Result{
		ScorePercentage: 0,
		WrongTagCounts:  map[string]int{"algebra": 5},
	}, 2)
	if len(u.WeakTags) != 1 || u.WeakTags[0] != "algebra" {
		t.Fatalf("got %v, want [algebra]", u.WeakTags)
	}
}
