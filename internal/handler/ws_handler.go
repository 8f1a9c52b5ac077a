package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/vaweTech/LMS1.5Exam-sub000/internal/attempt"
	"github.com/vaweTech/LMS1.5Exam-sub000/internal/middleware"
	"github.com/vaweTech/LMS1.5Exam-sub000/internal/model"
	"github.com/vaweTech/LMS1.5Exam-sub000/internal/response"
	"github.com/vaweTech/LMS1.5Exam-sub000/internal/service"
	ws "github.com/vaweTech/LMS1.5Exam-sub000/internal/websocket"
)

// buildUpgrader creates a WebSocket upgrader with origin validation.
// allowedOrigins comes from config.Config.AllowedOrigins.
// An empty slice permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// WSHandler runs one attempt state machine per WebSocket connection.
type WSHandler struct {
	attemptService *service.AttemptService
	log            zerolog.Logger
	upgrader       websocket.Upgrader
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(attemptService *service.AttemptService, log zerolog.Logger, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		attemptService: attemptService,
		log:            log.With().Str("component", "ws_handler").Logger(),
		upgrader:       buildUpgrader(allowedOrigins),
	}
}

// session is the per-connection state of AttemptStream.
type session struct {
	conn      *ws.Conn
	machine   *attempt.Machine
	exam      *model.Exam
	accountID string
	log       zerolog.Logger
}

// AttemptStream godoc
// WS /ws/v1/exams/:exam_id/attempt
// Upgrades to WebSocket and drives the attempt: start, fullscreen, integrity
// signals, answers, code runs, submission.
func (h *WSHandler) AttemptStream(c *gin.Context) {
	examID, err := uuid.Parse(c.Param("exam_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	raw, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	conn := ws.NewConn(raw)
	defer conn.Close()

	// A hijacked connection's request context does not track the socket.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sink := attempt.SinkFunc(func(ev attempt.Event) error {
		return conn.WriteEvent(ws.Event(ev.Type), ev)
	})

	machine, exam, err := h.attemptService.NewSession(ctx, examID, sink)
	if err != nil {
		_, code := errorCode(err)
		conn.WriteError(code, response.GetMessage(code))
		return
	}
	defer machine.Close()

	s := &session{
		conn:      conn,
		machine:   machine,
		exam:      exam,
		accountID: middleware.AccountID(c),
		log:       h.log.With().Str("exam_id", examID.String()).Logger(),
	}
	s.log.Info().Msg("Candidate connected")

	conn.WriteEvent(ws.EventSnapshot, machine.Snapshot())

	for {
		action, data, err := conn.ReadMessage()
		if err != nil {
			if data != nil {
				conn.WriteError(response.ErrInvalidPayload, response.GetMessage(response.ErrInvalidPayload))
				continue
			}
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.log.Warn().Err(err).Msg("Unexpected close")
			} else {
				s.log.Debug().Msg("Connection closed")
			}
			break
		}

		if err := h.dispatch(ctx, s, action, data); err != nil {
			s.fail(err)
		}
	}

	snap := machine.Snapshot()
	s.log.Info().
		Str("phone", snap.Identity.Phone).
		Str("state", string(snap.State)).
		Msg("Candidate disconnected")
}

func (h *WSHandler) dispatch(ctx context.Context, s *session, action ws.Action, data []byte) error {
	switch action {
	case ws.ActionStart:
		var req ws.StartRequest
		if err := json.Unmarshal(data, &req); err != nil {
			return errInvalidPayload
		}
		return s.machine.Start(ctx, attempt.StartRequest{
			Identity: model.CandidateIdentity{
				AccountID: s.accountID,
				Name:      req.Name,
				Phone:     req.Phone,
			},
			RulesAccepted: req.RulesAccepted,
			Fullscreen:    req.Fullscreen,
		})

	case ws.ActionFullscreenEntered:
		return s.machine.ConfirmFullscreen(ctx)

	case ws.ActionSignal:
		var req ws.SignalRequest
		if err := json.Unmarshal(data, &req); err != nil {
			return errInvalidPayload
		}
		kind, ok := attempt.Classify(attempt.Signal{Type: req.Type, Key: req.Key})
		if !ok {
			return nil
		}
		_, err := s.machine.ReportViolation(ctx, kind)
		return err

	case ws.ActionAnswer:
		var req ws.AnswerRequest
		if err := json.Unmarshal(data, &req); err != nil {
			return errInvalidPayload
		}
		if err := s.machine.RecordAnswer(req.Question, req.Answer); err != nil {
			return err
		}
		return s.conn.WriteEvent(ws.EventSaved, ws.SavedResponse{Question: req.Question})

	case ws.ActionRun:
		var req ws.RunRequest
		if err := json.Unmarshal(data, &req); err != nil {
			return errInvalidPayload
		}
		if s.machine.State() != attempt.StateActive {
			return attempt.ErrInvalidTransition
		}
		result, err := h.attemptService.RunCode(ctx, s.exam, req.Question, req.Language, req.Source)
		if err != nil {
			return err
		}
		// The attempt may have ended while the sandbox was running.
		answer := model.AnswerValue{Source: req.Source, Language: req.Language}
		if err := s.machine.RecordRun(req.Question, answer, result.Verdicts); err != nil {
			return err
		}
		return s.conn.WriteEvent(ws.EventRunResult, result)

	case ws.ActionSubmit:
		_, err := s.machine.Submit(ctx, attempt.TriggerManual)
		return err

	case ws.ActionChangeIdentity:
		var req ws.ChangeIdentityRequest
		if err := json.Unmarshal(data, &req); err != nil {
			return errInvalidPayload
		}
		return s.machine.ChangeIdentity(req.Phone)

	case ws.ActionSnapshot:
		return s.conn.WriteEvent(ws.EventSnapshot, s.machine.Snapshot())

	case ws.ActionPing:
		return s.conn.WriteTyped(ws.PongResponse{Event: ws.EventPong})

	default:
		s.log.Warn().Str("action", string(action)).Msg("Unknown action")
		return errUnknownAction
	}
}

// fail reports err to the candidate. Engine errors carry their API code;
// blocks also carry the stored reason.
func (s *session) fail(err error) {
	var code response.ErrCode
	switch {
	case errors.Is(err, errInvalidPayload), errors.Is(err, errUnknownAction):
		code = response.ErrInvalidPayload
	default:
		_, code = errorCode(err)
	}

	msg := response.GetMessage(code)
	var blocked *attempt.BlockedError
	if errors.As(err, &blocked) && blocked.Reason != "" {
		msg = blocked.Reason
	}
	if code == response.ErrInternal || code == response.ErrWriteFailure {
		s.log.Error().Err(err).Msg("Attempt action failed")
	}
	s.conn.WriteError(code, msg)
}
