package repository

import (
	"testing"

	"github.com/vaweTech/LMS1.5Exam-sub000/internal/model"
	"github.com/vaweTech/LMS1.5Exam-sub000/internal/scoring"
)

func TestDecodeQuestion_BadFieldKeepsTheRest(t *testing.T) {
	var badFields []string
	q := decodeQuestion(model.QuestionTypeMCQ,
		[]byte(`{"text":"Pick B","options":"A,B,C","correct_answers":[1]}`),
		func(field string, err error) { badFields = append(badFields, field) })

	if len(badFields) != 1 || badFields[0] != "options" {
		t.Fatalf("bad fields = %v, want [options]", badFields)
	}
	if q.Text != "Pick B" {
		t.Errorf("text = %q, want %q", q.Text, "Pick B")
	}
	if len(q.Options) != 0 {
		t.Errorf("options = %v, want empty", q.Options)
	}
	if len(q.CorrectAnswers) != 1 || q.CorrectAnswers[0] != 1 {
		t.Fatalf("correct_answers = %v, want [1]", q.CorrectAnswers)
	}

	exam := &model.Exam{Questions: []model.Question{q}}
	exam.Normalize()
	one := 1
	res := scoring.Score(exam.Questions, map[int]model.AnswerValue{0: {Index: &one}}, nil)
	if res.MCQ.Correct != 1 || res.MCQ.Total != 1 {
		t.Errorf("mcq = %+v, want 1 of 1 correct", res.MCQ)
	}
}

func TestDecodeQuestion_TypeMismatches(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		check func(t *testing.T, q model.Question)
	}{
		{
			name: "correct answers not an array",
			body: `{"text":"Q","options":["a","b"],"correct_answers":"1"}`,
			check: func(t *testing.T, q model.Question) {
				if q.CorrectAnswers != nil || len(q.Options) != 2 {
					t.Errorf("got options=%v correct=%v", q.Options, q.CorrectAnswers)
				}
			},
		},
		{
			name: "test cases not an array",
			body: `{"text":"Code","test_cases":{"input":"1"},"max_score":4,"language":"go"}`,
			check: func(t *testing.T, q model.Question) {
				if q.TestCases != nil || q.MaxScore != 4 || q.Language != "go" {
					t.Errorf("got %+v", q)
				}
			},
		},
		{
			name: "max score as string",
			body: `{"text":"Essay","max_score":"five"}`,
			check: func(t *testing.T, q model.Question) {
				if q.MaxScore != 0 || q.Text != "Essay" {
					t.Errorf("got %+v", q)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := decodeQuestion(model.QuestionTypeMCQ, []byte(tt.body), func(string, error) {})
			tt.check(t, q)
		})
	}
}

func TestDecodeQuestion_NotAnObject(t *testing.T) {
	reported := false
	q := decodeQuestion(model.QuestionTypeCoding, []byte(`[1,2,3]`), func(field string, err error) {
		reported = field == "body"
	})
	if !reported {
		t.Error("expected the body to be reported as malformed")
	}
	if q.Type != model.QuestionTypeCoding || q.Text != "" {
		t.Errorf("got %+v, want an empty coding question", q)
	}
}

func TestAssembleQuestions_IndexesByPosition(t *testing.T) {
	in := []positionedQuestion{
		{position: 0, question: model.Question{Type: model.QuestionTypeMCQ, Text: "first"}},
		{position: 2, question: model.Question{Type: model.QuestionTypeMCQ, Text: "third"}},
		{position: 3, question: model.Question{Type: model.QuestionTypeCoding, Text: "fourth"}},
	}

	var warned []int
	out := assembleQuestions(in, func(position int, _ string) { warned = append(warned, position) })

	if len(out) != 4 {
		t.Fatalf("len = %d, want 4", len(out))
	}
	if out[2].Text != "third" || out[3].Text != "fourth" {
		t.Errorf("questions shifted: %q, %q", out[2].Text, out[3].Text)
	}
	if out[1].Type != model.QuestionTypeDescriptive || out[1].Text != "" {
		t.Errorf("gap = %+v, want empty descriptive", out[1])
	}
	if len(warned) != 1 || warned[0] != 1 {
		t.Errorf("warned = %v, want [1]", warned)
	}
}

func TestAssembleQuestions_DropsDuplicateAndOutOfRange(t *testing.T) {
	in := []positionedQuestion{
		{position: -1, question: model.Question{Text: "negative"}},
		{position: 0, question: model.Question{Text: "kept"}},
		{position: 0, question: model.Question{Text: "dup"}},
		{position: maxQuestionPosition + 1, question: model.Question{Text: "huge"}},
	}

	warnings := 0
	out := assembleQuestions(in, func(int, string) { warnings++ })

	if len(out) != 1 || out[0].Text != "kept" {
		t.Fatalf("out = %+v, want only the first question at position 0", out)
	}
	if warnings != 3 {
		t.Errorf("warnings = %d, want 3", warnings)
	}
}
