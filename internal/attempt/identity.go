package attempt

import (
	"strings"

	"github.com/vaweTech/LMS1.5Exam-sub000/internal/model"
)

// ValidateIdentity trims the name, normalizes the phone to digits and checks
// both. It has no side effects.
func ValidateIdentity(id model.CandidateIdentity) (model.CandidateIdentity, error) {
	id.Name = strings.TrimSpace(id.Name)
	id.Phone = model.NormalizePhone(id.Phone)
	id.AccountID = strings.TrimSpace(id.AccountID)

	if id.Name == "" || len(id.Phone) < model.MinPhoneDigits {
		return id, ErrInvalidIdentity
	}
	return id, nil
}
