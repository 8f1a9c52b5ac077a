package sandbox

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/vaweTech/LMS1.5Exam-sub000/internal/model"
	"github.com/vaweTech/LMS1.5Exam-sub000/internal/scoring"
)

// Judge runs a candidate's source against the test cases of a question.
type Judge struct {
	runner Runner
	log    zerolog.Logger
}

// NewJudge creates a Judge over runner.
func NewJudge(runner Runner, log zerolog.Logger) *Judge {
	return &Judge{runner: runner, log: log.With().Str("component", "sandbox_judge").Logger()}
}

// RunTestCases executes source once per test case, feeding the transformed
// input and comparing the transformed output with the expected one. A
// sandbox failure yields an Error verdict for that case and never aborts the
// remaining cases.
func (j *Judge) RunTestCases(ctx context.Context, language, source string, cases []model.TestCase) []model.Verdict {
	if language == "" {
		language = model.DefaultCodingLanguage
	}
	verdicts := make([]model.Verdict, len(cases))
	for i, tc := range cases {
		verdicts[i] = j.runOne(ctx, i, language, source, tc)
	}
	return verdicts
}

func (j *Judge) runOne(ctx context.Context, index int, language, source string, tc model.TestCase) model.Verdict {
	v := model.Verdict{TestCase: index, Status: model.VerdictError}
	if ctx.Err() != nil {
		return v
	}

	out, err := j.runner.Run(ctx, language, source, scoring.TransformIO(tc.Input))
	if err != nil {
		j.log.Warn().Err(err).Int("test_case", index).Str("language", language).Msg("Sandbox call failed")
		return v
	}

	v.Stdout = out.Stdout
	if out.Status != "ok" {
		return v
	}
	if scoring.OutputMatches(out.Stdout, tc.ExpectedOutput) {
		v.Passed = true
		v.Status = model.VerdictAccepted
		return v
	}
	v.Status = model.VerdictWrong
	return v
}
