package scoring

import (
	"testing"

	"github.com/vaweTech/LMS1.5Exam-sub000/internal/model"
)

func intPtr(i int) *int    { return &i }
func boolPtr(b bool) *bool { return &b }

func mcq(correct ...int) model.Question {
	return model.Question{
		Type:           model.QuestionTypeMCQ,
		Text:           "pick",
		Options:        []string{"a", "b", "c", "d"},
		CorrectAnswers: correct,
	}
}

func TestMCQCorrect(t *testing.T) {
	legacy := model.Question{Type: model.QuestionTypeMCQ, Options: []string{"a", "b"}, CorrectAnswer: intPtr(1)}
	explicitMulti := mcq(2)
	explicitMulti.MultiSelect = boolPtr(true)

	tests := []struct {
		name string
		q    model.Question
		ans  model.AnswerValue
		want bool
	}{
		{name: "multi exact set", q: mcq(0, 2), ans: model.AnswerValue{Indices: []int{0, 2}}, want: true},
		{name: "multi exact set any order", q: mcq(0, 2), ans: model.AnswerValue{Indices: []int{2, 0}}, want: true},
		{name: "multi strict subset", q: mcq(0, 2), ans: model.AnswerValue{Indices: []int{0}}, want: false},
		{name: "multi strict superset", q: mcq(0, 2), ans: model.AnswerValue{Indices: []int{0, 1, 2}}, want: false},
		{name: "multi duplicates collapse", q: mcq(0, 2), ans: model.AnswerValue{Indices: []int{0, 2, 2}}, want: true},
		{name: "single match", q: mcq(1), ans: model.AnswerValue{Index: intPtr(1)}, want: true},
		{name: "single miss", q: mcq(1), ans: model.AnswerValue{Index: intPtr(3)}, want: false},
		{name: "single as one element set", q: mcq(1), ans: model.AnswerValue{Indices: []int{1}}, want: true},
		{name: "single with two picks", q: mcq(1), ans: model.AnswerValue{Indices: []int{1, 2}}, want: false},
		{name: "legacy scalar", q: legacy, ans: model.AnswerValue{Index: intPtr(1)}, want: true},
		{name: "legacy scalar miss", q: legacy, ans: model.AnswerValue{Index: intPtr(0)}, want: false},
		{name: "no key at all", q: mcq(), ans: model.AnswerValue{Index: intPtr(0)}, want: false},
		{name: "explicit multi one correct", q: explicitMulti, ans: model.AnswerValue{Indices: []int{2}}, want: true},
		{name: "explicit multi extra pick", q: explicitMulti, ans: model.AnswerValue{Indices: []int{1, 2}}, want: false},
		{name: "negative index ignored", q: mcq(-1), ans: model.AnswerValue{Index: intPtr(-1)}, want: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			q := tc.q
			if got := MCQCorrect(&q, tc.ans); got != tc.want {
				t.Fatalf("MCQCorrect = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestScoreCoding(t *testing.T) {
	pass := model.Verdict{Passed: true, Status: model.VerdictAccepted}
	fail := model.Verdict{Passed: false, Status: model.VerdictWrong}
	errored := model.Verdict{Passed: false, Status: model.VerdictError}

	tests := []struct {
		name      string
		max       float64
		verdicts  []model.Verdict
		wantScore float64
		wantPass  int
		wantTotal int
	}{
		{name: "never ran", max: 10, verdicts: nil, wantScore: 0, wantPass: 0, wantTotal: 0},
		{name: "two of three out of nine", max: 9, verdicts: []model.Verdict{pass, fail, pass}, wantScore: 6.0, wantPass: 2, wantTotal: 3},
		{name: "three of four out of ten", max: 10, verdicts: []model.Verdict{pass, pass, errored, pass}, wantScore: 7.5, wantPass: 3, wantTotal: 4},
		{name: "all pass", max: 5, verdicts: []model.Verdict{pass, pass}, wantScore: 5, wantPass: 2, wantTotal: 2},
		{name: "sandbox errors zero out", max: 10, verdicts: []model.Verdict{errored, errored}, wantScore: 0, wantPass: 0, wantTotal: 2},
		{name: "default max", max: 0, verdicts: []model.Verdict{pass}, wantScore: 10, wantPass: 1, wantTotal: 1},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := ScoreCoding(tc.max, tc.verdicts)
			if got.Score != tc.wantScore {
				t.Errorf("score = %v, want %v", got.Score, tc.wantScore)
			}
			if got.PassCount != tc.wantPass || got.TotalTests != tc.wantTotal {
				t.Errorf("pass/total = %d/%d, want %d/%d", got.PassCount, got.TotalTests, tc.wantPass, tc.wantTotal)
			}
		})
	}
}

func TestScoreScenario(t *testing.T) {
	coding := model.Question{
		Type:     model.QuestionTypeCoding,
		Text:     "sum",
		Section:  "Easy",
		MaxScore: 10,
		TestCases: []model.TestCase{
			{Input: "1 2", ExpectedOutput: "3"},
			{Input: "2 2", ExpectedOutput: "4"},
			{Input: "5 5", ExpectedOutput: "10"},
			{Input: "0 0", ExpectedOutput: "0"},
		},
	}
	questions := []model.Question{mcq(1), mcq(0, 2), coding}

	answers := map[int]model.AnswerValue{
		0: {Index: intPtr(1)},
		1: {Indices: []int{0, 2}},
		2: {Source: "print(sum(map(int, input().split())))"},
	}
	verdicts := map[int][]model.Verdict{
		2: {{Passed: true}, {Passed: true}, {Passed: false}, {Passed: true}},
	}

	res := Score(questions, answers, verdicts)

	if res.MCQ != (model.ScoreTally{Correct: 2, Total: 2, Score: 2}) {
		t.Errorf("mcq = %+v", res.MCQ)
	}
	if res.CodingScore != 7.5 {
		t.Errorf("coding = %v, want 7.5", res.CodingScore)
	}
	if res.TotalScore != 9.5 {
		t.Errorf("total = %v, want 9.5", res.TotalScore)
	}
	if res.MaxTotalScore != 12 {
		t.Errorf("max total = %v, want 12", res.MaxTotalScore)
	}
	if res.Percentage != 79 {
		t.Errorf("percentage = %d, want 79", res.Percentage)
	}
	if got := res.Sections[UnassignedSection]; got.Total != 2 || got.Correct != 2 {
		t.Errorf("unassigned section = %+v", got)
	}
}

func TestScoreSectionsAndUnanswered(t *testing.T) {
	a := mcq(0)
	a.Section = "Aptitude"
	b := mcq(1)
	b.Section = "Aptitude"
	c := mcq(2)
	desc := model.Question{Type: model.QuestionTypeDescriptive, Text: "explain", MaxScore: 5}

	res := Score([]model.Question{a, b, c, desc}, map[int]model.AnswerValue{
		0: {Index: intPtr(0)},
		1: {}, // empty value counts as unanswered
		3: {Text: "because"},
	}, nil)

	if res.MCQ.Total != 3 || res.MCQ.Correct != 1 {
		t.Fatalf("mcq = %+v", res.MCQ)
	}
	if got := res.Sections["Aptitude"]; got != (model.ScoreTally{Correct: 1, Total: 2, Score: 1}) {
		t.Errorf("aptitude = %+v", got)
	}
	if got := res.Sections[UnassignedSection]; got != (model.ScoreTally{Correct: 0, Total: 1, Score: 0}) {
		t.Errorf("unassigned = %+v", got)
	}
	if res.MaxTotalScore != 3 {
		t.Errorf("descriptive must not count toward max, got %v", res.MaxTotalScore)
	}
	if res.Questions[1].Answered {
		t.Error("empty answer reported as answered")
	}
	if !res.Questions[3].Manual {
		t.Error("descriptive question not flagged for manual grading")
	}
}

func TestScoreEmptyExam(t *testing.T) {
	res := Score(nil, nil, nil)
	if res.Percentage != 0 || res.MaxTotalScore != 0 {
		t.Fatalf("empty exam = %+v", res)
	}
}

func TestScoreIsDeterministic(t *testing.T) {
	questions := []model.Question{mcq(0, 1), mcq(3)}
	answers := map[int]model.AnswerValue{0: {Indices: []int{1, 0}}, 1: {Index: intPtr(3)}}

	first := Score(questions, answers, nil)
	for i := 0; i < 20; i++ {
		again := Score(questions, answers, nil)
		if again.TotalScore != first.TotalScore || again.Percentage != first.Percentage {
			t.Fatalf("run %d differs: %+v vs %+v", i, again, first)
		}
	}
}

func TestRecomputePercentageRoundTrip(t *testing.T) {
	res := Score([]model.Question{mcq(0), mcq(1), mcq(2)}, map[int]model.AnswerValue{
		0: {Index: intPtr(0)},
		1: {Index: intPtr(1)},
	}, nil)

	sub := &model.Submission{TotalScore: res.TotalScore, MaxTotalScore: res.MaxTotalScore, Percentage: res.Percentage}
	if got := RecomputePercentage(sub); got != sub.Percentage {
		t.Fatalf("recomputed %d, stored %d", got, sub.Percentage)
	}
	if sub.Percentage != 67 {
		t.Fatalf("percentage = %d, want 67", sub.Percentage)
	}
}
