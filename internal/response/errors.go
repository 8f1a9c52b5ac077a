package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Authentication ────────────────────────────────────────────────
	ErrTokenRequired ErrCode = "TOKEN_REQUIRED"
	ErrTokenInvalid  ErrCode = "TOKEN_INVALID"

	// ─── Authorization ─────────────────────────────────────────────────
	ErrPermissionDenied ErrCode = "PERMISSION_DENIED"
	ErrAdminAccessOnly  ErrCode = "ADMIN_ACCESS_ONLY"

	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidID      ErrCode = "INVALID_ID"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound ErrCode = "NOT_FOUND"

	// ─── Attempt ───────────────────────────────────────────────────────
	ErrInvalidIdentity     ErrCode = "INVALID_IDENTITY"
	ErrRulesNotAccepted    ErrCode = "RULES_NOT_ACCEPTED"
	ErrAlreadyBlocked      ErrCode = "ALREADY_BLOCKED"
	ErrDuplicateSubmission ErrCode = "DUPLICATE_SUBMISSION"
	ErrNoAnswers           ErrCode = "NO_ANSWERS"
	ErrInvalidTransition   ErrCode = "INVALID_TRANSITION"
	ErrQuestionOutOfRange  ErrCode = "QUESTION_OUT_OF_RANGE"
	ErrNotCodingQuestion   ErrCode = "NOT_CODING_QUESTION"
	ErrWriteFailure        ErrCode = "WRITE_FAILURE"
	ErrBlockNotFound       ErrCode = "BLOCK_NOT_FOUND"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	// ─── Authentication ────────────────────────────────────────────────
	case ErrTokenRequired:
		return "Authentication token is required."
	case ErrTokenInvalid:
		return "Authentication token is invalid or expired."

	// ─── Authorization ─────────────────────────────────────────────────
	case ErrPermissionDenied:
		return "Permission denied."
	case ErrAdminAccessOnly:
		return "This resource is restricted to administrators."

	// ─── Validation ────────────────────────────────────────────────────
	case ErrValidation:
		return "Validation failed. Please check your input."
	case ErrInvalidID:
		return "Invalid ID format."
	case ErrInvalidPayload:
		return "Invalid request payload."

	// ─── Resources ─────────────────────────────────────────────────────
	case ErrNotFound:
		return "Resource not found."

	// ─── Attempt ───────────────────────────────────────────────────────
	case ErrInvalidIdentity:
		return "Name is required and the phone number needs at least 10 digits."
	case ErrRulesNotAccepted:
		return "Please accept the exam rules before starting."
	case ErrAlreadyBlocked:
		return "You have been blocked from this exam."
	case ErrDuplicateSubmission:
		return "You have already submitted this exam."
	case ErrNoAnswers:
		return "Answer at least one question before submitting."
	case ErrInvalidTransition:
		return "This action is not allowed right now."
	case ErrQuestionOutOfRange:
		return "Question does not exist in this exam."
	case ErrNotCodingQuestion:
		return "Only coding questions can be run."
	case ErrWriteFailure:
		return "Could not save your progress. Please retry."
	case ErrBlockNotFound:
		return "No block record exists for this candidate."

	// ─── Rate Limiting ─────────────────────────────────────────────────
	case ErrRateLimitExceeded:
		return "Too many requests. Please try again later."

	// ─── Server ────────────────────────────────────────────────────────
	case ErrInternal:
		return "Internal server error."
	default:
		return "An unexpected error occurred."
	}
}
