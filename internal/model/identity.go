package model

import "strings"

// MinPhoneDigits is the minimum length of a normalized phone number.
const MinPhoneDigits = 10

// CandidateIdentity identifies the person taking an exam. AccountID, when
// present, is the dedup key for submissions; Phone is always required and is
// the blocking key.
type CandidateIdentity struct {
	AccountID string `json:"account_id,omitempty"`
	Name      string `json:"name"`
	Phone     string `json:"phone"`
}

// NormalizePhone keeps only the ASCII digits of raw.
func NormalizePhone(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// IdentityRequest is the payload a candidate submits before starting.
type IdentityRequest struct {
	Name          string `json:"name" binding:"required,min=1,max=120"`
	Phone         string `json:"phone" binding:"required,phone"`
	RulesAccepted bool   `json:"rules_accepted"`
}
