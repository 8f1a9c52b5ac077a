package websocket

import (
	"github.com/vaweTech/LMS1.5Exam-sub000/internal/model"
	"github.com/vaweTech/LMS1.5Exam-sub000/internal/response"
)

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionStart             Action = "start"
	ActionFullscreenEntered Action = "fullscreen_entered"
	ActionSignal            Action = "signal"
	ActionAnswer            Action = "answer"
	ActionRun               Action = "run"
	ActionSubmit            Action = "submit"
	ActionChangeIdentity    Action = "change_identity"
	ActionSnapshot          Action = "snapshot"
	ActionPing              Action = "ping"
)

// RequestEnvelope is used to peek at the action before full parsing.
type RequestEnvelope struct {
	Action Action `json:"action"`
}

// StartRequest opens the attempt. Fullscreen tells whether the client is
// already fullscreen.
type StartRequest struct {
	Action        Action `json:"action"`
	Name          string `json:"name"`
	Phone         string `json:"phone"`
	RulesAccepted bool   `json:"rules_accepted"`
	Fullscreen    bool   `json:"fullscreen"`
}

// SignalRequest reports a raw browser signal (visibility, blur, keydown,
// fullscreen exit). The server decides whether it is a violation.
type SignalRequest struct {
	Action Action `json:"action"`
	Type   string `json:"type"`
	Key    string `json:"key,omitempty"`
}

// AnswerRequest records or clears the answer to one question.
type AnswerRequest struct {
	Action   Action            `json:"action"`
	Question int               `json:"question"`
	Answer   model.AnswerValue `json:"answer"`
}

// RunRequest runs candidate code against a coding question's test cases.
type RunRequest struct {
	Action   Action `json:"action"`
	Question int    `json:"question"`
	Language string `json:"language"`
	Source   string `json:"source"`
}

// ChangeIdentityRequest is sent when the candidate edits the phone field.
type ChangeIdentityRequest struct {
	Action Action `json:"action"`
	Phone  string `json:"phone"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventError     Event = "error"
	EventSaved     Event = "saved"
	EventRunResult Event = "run_result"
	EventSnapshot  Event = "snapshot"
	EventPong      Event = "pong"
)

// EventResponse wraps a payload with its event name. Machine events are sent
// with their own type as the event name.
type EventResponse struct {
	Event Event       `json:"event"`
	Data  interface{} `json:"data,omitempty"`
}

type SavedResponse struct {
	Question int `json:"question"`
}

type ErrorResponse struct {
	Event Event            `json:"event"`
	Code  response.ErrCode `json:"code,omitempty"`
	Error string           `json:"error"`
}

type PongResponse struct {
	Event Event `json:"event"`
}
