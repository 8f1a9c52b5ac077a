package service

import (
	"testing"

	"github.com/google/uuid"
	"github.com/vaweTech/LMS1.5Exam-sub000/internal/attempt"
	"github.com/vaweTech/LMS1.5Exam-sub000/internal/model"
)

func TestMonitorMessageFor(t *testing.T) {
	examID := uuid.New()
	tests := []struct {
		name string
		ev   attempt.Event
		ok   bool
	}{
		{name: "tick skipped", ev: attempt.Event{Type: attempt.EventTick, ExamID: examID, Phone: "9876543210"}, ok: false},
		{name: "anonymous skipped", ev: attempt.Event{Type: attempt.EventState, ExamID: examID}, ok: false},
		{name: "state", ev: attempt.Event{Type: attempt.EventState, ExamID: examID, Phone: "9876543210", State: attempt.StateActive}, ok: true},
		{name: "violation", ev: attempt.Event{Type: attempt.EventViolation, ExamID: examID, Phone: "9876543210",
			Violation: &attempt.ViolationReport{Kind: attempt.ViolationTab, Count: 2}}, ok: true},
		{name: "result", ev: attempt.Event{Type: attempt.EventResult, ExamID: examID, Phone: "9876543210",
			Result: &model.Submission{Percentage: 79}}, ok: true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			msg, ok := MonitorMessageFor(tc.ev)
			if ok != tc.ok {
				t.Fatalf("ok = %v, want %v", ok, tc.ok)
			}
			if !ok {
				return
			}
			if msg.Type != string(tc.ev.Type) || msg.Phone != tc.ev.Phone {
				t.Fatalf("msg = %+v", msg)
			}
			if tc.ev.Result != nil && (msg.Percentage == nil || *msg.Percentage != 79) {
				t.Fatalf("percentage = %v", msg.Percentage)
			}
		})
	}
}
