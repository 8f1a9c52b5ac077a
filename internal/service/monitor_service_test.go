package service

import (
	"testing"
	"time"

	"github.com/vaweTech/LMS1.5Exam-sub000/internal/model"
	"github.com/vaweTech/LMS1.5Exam-sub000/internal/repository"
)

func TestBuildSnapshot(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 30, 0, 0, time.UTC)
	live := []repository.LiveAttempt{
		{Phone: "9000000002", StartedAt: now.Add(-5 * time.Minute)},
		{Phone: "9000000001", StartedAt: now.Add(-20 * time.Minute)},
	}
	violations := map[string]map[string]int64{
		"9000000001": {"tab": 2, "fullscreen": 1},
		"9000000003": {"tab": 3},
	}
	blocks := []model.BlockRecord{{Phone: "9000000003", Blocked: true}}

	snap := buildSnapshot(now, live, violations, blocks, 7)

	if len(snap.Live) != 2 {
		t.Fatalf("live = %d, want 2", len(snap.Live))
	}
	if snap.Live[0].Phone != "9000000001" {
		t.Errorf("live[0] = %s, want oldest attempt first", snap.Live[0].Phone)
	}
	if snap.Live[0].ElapsedSeconds != 1200 {
		t.Errorf("elapsed = %d, want 1200", snap.Live[0].ElapsedSeconds)
	}
	if snap.Live[0].Violations["tab"] != 2 {
		t.Errorf("tab violations = %d, want 2", snap.Live[0].Violations["tab"])
	}
	if snap.Live[1].Violations == nil {
		t.Error("violations map must not be nil")
	}
	if snap.TotalViolations != 6 {
		t.Errorf("total violations = %d, want 6", snap.TotalViolations)
	}
	if snap.SubmittedCount != 7 {
		t.Errorf("submitted = %d, want 7", snap.SubmittedCount)
	}
}
