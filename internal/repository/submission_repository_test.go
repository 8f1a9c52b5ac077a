package repository

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/vaweTech/LMS1.5Exam-sub000/internal/attempt"
)

func TestFindSubmissionQuery_PhoneMatchesSignedInRows(t *testing.T) {
	examID := uuid.New()
	query, args := findSubmissionQuery(examID, attempt.SubmissionKey{Phone: "919000000001"})

	if strings.Contains(query, "account_id IS NULL") {
		t.Errorf("phone lookup must not skip signed-in submissions:\n%s", query)
	}
	if !strings.Contains(query, "phone = $2") {
		t.Errorf("phone lookup does not filter on phone:\n%s", query)
	}
	if len(args) != 2 || args[0] != examID || args[1] != "919000000001" {
		t.Errorf("args = %v", args)
	}
}

func TestFindSubmissionQuery_AccountIDWins(t *testing.T) {
	examID := uuid.New()
	query, args := findSubmissionQuery(examID, attempt.SubmissionKey{AccountID: "acc-1", Phone: "919000000001"})

	if !strings.Contains(query, "account_id = $2") || strings.Contains(query, "phone =") {
		t.Errorf("account lookup should filter on account_id only:\n%s", query)
	}
	if len(args) != 2 || args[1] != "acc-1" {
		t.Errorf("args = %v", args)
	}
}
