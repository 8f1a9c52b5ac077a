// Package scoring computes exam results from a question set, the recorded
// answers and the sandbox verdicts of coding runs. Everything here is pure:
// the same inputs always give the same Result and nothing can fail.
package scoring

import (
	"math"
	"sort"

	"github.com/vaweTech/LMS1.5Exam-sub000/internal/model"
)

// UnassignedSection buckets MCQs authored without a section label.
const UnassignedSection = "Unassigned"

// QuestionScore is the per-question line of a Result.
type QuestionScore struct {
	Index    int                `json:"index"`
	Type     model.QuestionType `json:"type"`
	Section  string             `json:"section,omitempty"`
	Answered bool               `json:"answered"`
	Earned   float64            `json:"earned"`
	Max      float64            `json:"max"`
	// Manual is set for descriptive questions, which need a human grader.
	Manual bool `json:"manual,omitempty"`
}

// Result is the full scoring outcome of one attempt.
type Result struct {
	MCQ      model.ScoreTally            `json:"mcq_score"`
	Sections map[string]model.ScoreTally `json:"section_scores"`

	Coding      map[int]model.CodingScore `json:"coding"`
	CodingScore float64                   `json:"coding_score"`

	TotalScore    float64 `json:"total_score"`
	MaxTotalScore float64 `json:"max_total_score"`
	Percentage    int     `json:"percentage"`

	Questions []QuestionScore `json:"questions"`
}

// Score grades answers against questions. answers and verdicts key by the
// question's position in questions.
func Score(questions []model.Question, answers map[int]model.AnswerValue, verdicts map[int][]model.Verdict) Result {
	res := Result{
		Sections:  make(map[string]model.ScoreTally),
		Coding:    make(map[int]model.CodingScore),
		Questions: make([]QuestionScore, 0, len(questions)),
	}

	var codingMax float64
	for i := range questions {
		q := &questions[i]
		ans, answered := answers[i]
		if answered && ans.Empty() {
			answered = false
		}

		line := QuestionScore{Index: i, Type: q.Type, Answered: answered}

		switch q.Type {
		case model.QuestionTypeMCQ:
			section := q.Section
			if section == "" {
				section = UnassignedSection
			}
			line.Section = section
			line.Max = 1

			ok := answered && MCQCorrect(q, ans)
			tally := res.Sections[section]
			tally.Total++
			res.MCQ.Total++
			if ok {
				tally.Correct++
				res.MCQ.Correct++
				line.Earned = 1
			}
			tally.Score = tally.Correct
			res.Sections[section] = tally

		case model.QuestionTypeCoding:
			cs := ScoreCoding(q.CodingMaxScore(), verdicts[i])
			res.Coding[i] = cs
			res.CodingScore += cs.Score
			codingMax += cs.MaxScore
			line.Section = q.Section
			line.Earned = cs.Score
			line.Max = cs.MaxScore

		case model.QuestionTypeDescriptive:
			line.Manual = true
			line.Max = q.MaxScore
		}

		res.Questions = append(res.Questions, line)
	}
	res.MCQ.Score = res.MCQ.Correct

	res.TotalScore = float64(res.MCQ.Score) + res.CodingScore
	res.MaxTotalScore = float64(res.MCQ.Total) + codingMax
	res.Percentage = Percentage(res.TotalScore, res.MaxTotalScore)
	return res
}

// MCQCorrect reports whether ans earns full credit on q. Multi-select
// questions need the exact set; there is no partial credit.
func MCQCorrect(q *model.Question, ans model.AnswerValue) bool {
	correct := correctSet(q)
	if len(correct) == 0 {
		return false
	}
	selected := ans.Selected()

	if q.Mode() == model.SelectionMultiple || len(correct) > 1 {
		return equalSets(selected, correct)
	}
	return len(selected) == 1 && selected[0] == correct[0]
}

// ScoreCoding gives proportional credit: maxScore * passed / total. No
// verdicts means the candidate never ran the code and scores zero.
func ScoreCoding(maxScore float64, verdicts []model.Verdict) model.CodingScore {
	if maxScore <= 0 {
		maxScore = model.DefaultCodingMaxScore
	}
	cs := model.CodingScore{MaxScore: maxScore, TotalTests: len(verdicts)}
	if len(verdicts) == 0 {
		return cs
	}
	for _, v := range verdicts {
		if v.Passed {
			cs.PassCount++
		}
	}
	cs.Score = maxScore * float64(cs.PassCount) / float64(cs.TotalTests)
	return cs
}

// Percentage rounds 100*total/max to the nearest integer, 0 when max is 0.
func Percentage(total, max float64) int {
	if max <= 0 {
		return 0
	}
	return int(math.Round(100 * total / max))
}

// RecomputePercentage re-derives the stored percentage of a submission so
// audits can check it against the persisted value.
func RecomputePercentage(sub *model.Submission) int {
	return Percentage(sub.TotalScore, sub.MaxTotalScore)
}

// correctSet returns the de-duplicated, sorted correct indices, falling back
// to the legacy scalar when the set is empty.
func correctSet(q *model.Question) []int {
	seen := make(map[int]struct{}, len(q.CorrectAnswers))
	for _, i := range q.CorrectAnswers {
		if i >= 0 {
			seen[i] = struct{}{}
		}
	}
	if len(seen) == 0 && q.CorrectAnswer != nil && *q.CorrectAnswer >= 0 {
		seen[*q.CorrectAnswer] = struct{}{}
	}
	out := make([]int, 0, len(seen))
	for i := range seen {
		out = append(out, i)
	}
	sort.Ints(out)
	return out
}

// equalSets compares two sorted, de-duplicated slices.
func equalSets(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
