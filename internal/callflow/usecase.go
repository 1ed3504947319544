package callflow

import (
	"context"
	"fmt"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/gravywork/assessment-backend/internal/catalog"
	"github.com/gravywork/assessment-backend/internal/config"
	"github.com/gravywork/assessment-backend/internal/entity"
	"github.com/gravywork/assessment-backend/internal/repository"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	cache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

type Telephony interface {
	CreateCall(ctx context.Context, toNumber, webhookURL string) (*entity.TelephonyCall, error)
}

// CallTurn is one webhook exchange: the markup to answer with and whether
// the call just finished, which is the handler's cue to kick off scoring.
type CallTurn struct {
	Markup    []byte
	Completed bool
}

// replayEntry remembers the markup already issued for one recording
// delivery so provider retries get the identical answer back.
type replayEntry struct {
	recordingRef string
	markup       []byte
}

// Usecase drives the interactive assessment call: initiating it, walking
// the question sequence, and persisting answers as they arrive.
type Usecase struct {
	catalog   *catalog.Catalog
	sessions  *repository.SessionStore
	responses *repository.ResponseArchive
	telephony Telephony
	replays   *cache.Cache
	cfg       config.CallFlowConfig

	publicBaseURL string
	mediaBaseURL  string
}

func NewUsecase(
	cat *catalog.Catalog,
	sessions *repository.SessionStore,
	responses *repository.ResponseArchive,
	telephony Telephony,
	cfg config.CallFlowConfig,
	publicBaseURL, mediaBaseURL string,
) *Usecase {
	return &Usecase{
		catalog:       cat,
		sessions:      sessions,
		responses:     responses,
		telephony:     telephony,
		replays:       cache.New(cfg.ReplayWindow, cfg.ReplayWindow),
		cfg:           cfg,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
		mediaBaseURL:  strings.TrimRight(mediaBaseURL, "/"),
	}
}

// Initiate creates the session and places the outbound call.
func (u *Usecase) Initiate(ctx context.Context, req *entity.InitiateRequest) (*entity.InitiateResponse, error) {
	role, ok := u.catalog.Role(req.Role)
	if !ok {
		return nil, fmt.Errorf("%w: %q", entity.ErrUnknownRole, req.Role)
	}

	assessmentID := newAssessmentID(req.Role, req.WorkerPhone, time.Now().UTC())

	session := &entity.Session{
		AssessmentID:     assessmentID,
		Role:             req.Role,
		QuestionSequence: slices.Clone(role.Sequence),
		Status:           entity.SessionStatusInProgress,
		Responses:        map[string]entity.Response{},
		CreatedAt:        time.Now().UTC(),
	}
	if err := u.sessions.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	q := url.Values{}
	q.Set("assessment_id", assessmentID)
	q.Set("role", req.Role)
	webhookURL := fmt.Sprintf("%s/webhook?%s", u.publicBaseURL, q.Encode())

	call, err := u.telephony.CreateCall(ctx, req.WorkerPhone, webhookURL)
	if err != nil {
		return nil, fmt.Errorf("%w: place call: %v", entity.ErrTelephonyUnavailable, err)
	}

	ctxzap.Info(ctx, "assessment initiated",
		zap.String("assessment_id", assessmentID),
		zap.String("role", req.Role),
		zap.String("call_sid", call.SID),
	)

	return &entity.InitiateResponse{
		AssessmentID: assessmentID,
		CallSID:      call.SID,
		WorkerPhone:  req.WorkerPhone,
		Role:         req.Role,
		Status:       call.Status,
	}, nil
}

// newAssessmentID builds the timestamped id the index parses later:
// {role}_{yyyymmdd}_{hhmmss}_{phone last 4 digits}.
func newAssessmentID(role, phone string, now time.Time) string {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, phone)
	if len(digits) > 4 {
		digits = digits[len(digits)-4:]
	}
	return fmt.Sprintf("%s_%s_%s", role, now.Format("20060102_150405"), digits)
}

// Answer handles the initial webhook when the callee picks up.
func (u *Usecase) Answer(ctx context.Context, assessmentID string) (*CallTurn, error) {
	session, err := u.sessions.Get(ctx, assessmentID)
	if err != nil {
		return nil, err
	}
	return u.turnFor(ctx, session, session.CurrentQuestion())
}

// HandleRecording processes one finished recording window: repeat requests,
// silence re-prompts, and real answers that advance the sequence.
func (u *Usecase) HandleRecording(ctx context.Context, assessmentID, questionID string, cb *entity.RecordingCallback) (*CallTurn, error) {
	// Provider retries of the same delivery get the identical markup back.
	replayKey := assessmentID + "|" + questionID
	if cached, ok := u.replays.Get(replayKey); ok {
		if entry := cached.(replayEntry); entry.recordingRef == cb.RecordingURL {
			ctxzap.Info(ctx, "duplicate recording callback replayed",
				zap.String("assessment_id", assessmentID),
				zap.String("question_id", questionID),
			)
			return &CallTurn{Markup: entry.markup}, nil
		}
	}

	session, err := u.sessions.Get(ctx, assessmentID)
	if err != nil {
		return nil, err
	}

	// Star press means repeat; nothing is saved and the index stays put.
	if cb.Digits == u.cfg.RepeatDigit && u.cfg.RepeatDigit != "" {
		markup, err := u.repeatMarkup(assessmentID, session.Role, questionID)
		if err != nil {
			return nil, err
		}
		return &CallTurn{Markup: markup}, nil
	}

	// A stale callback for an already-answered question must not rewind
	// the session. Re-issue the current turn instead.
	if questionID != session.CurrentQuestion() {
		ctxzap.Warn(ctx, "recording callback for non-current question",
			zap.String("assessment_id", assessmentID),
			zap.String("callback_question", questionID),
			zap.String("current_question", session.CurrentQuestion()),
		)
		return u.turnFor(ctx, session, session.CurrentQuestion())
	}

	// Silence heuristic: the window closed at the pre-answer timeout with
	// no key pressed, so nobody spoke. Play the instructions and reopen.
	if cb.Digits == "" && cb.RecordingDuration <= u.cfg.RecordTimeoutSeconds {
		markup, err := u.timeoutMarkup(assessmentID, session.Role, questionID)
		if err != nil {
			return nil, err
		}
		return &CallTurn{Markup: markup}, nil
	}

	if cb.RecordingURL != "" {
		resp := entity.Response{
			RecordingRef: cb.RecordingURL,
			RecordedAt:   time.Now().UTC(),
		}
		session.Responses[questionID] = resp
		if err := u.responses.SaveMeta(ctx, assessmentID, questionID, resp); err != nil {
			ctxzap.Warn(ctx, "failed to save response meta",
				zap.String("question_id", questionID),
				zap.Error(err),
			)
		}
	}

	session.Advance()
	if err := u.sessions.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}

	turn, err := u.turnFor(ctx, session, session.CurrentQuestion())
	if err != nil {
		return nil, err
	}

	u.replays.SetDefault(replayKey, replayEntry{recordingRef: cb.RecordingURL, markup: turn.Markup})

	return turn, nil
}

// HandleGather processes a keypad press outside a recording window.
func (u *Usecase) HandleGather(ctx context.Context, assessmentID, questionID, digits string) (*CallTurn, error) {
	session, err := u.sessions.Get(ctx, assessmentID)
	if err != nil {
		return nil, err
	}

	if digits == u.cfg.RepeatDigit && u.cfg.RepeatDigit != "" {
		markup, err := u.repeatMarkup(assessmentID, session.Role, questionID)
		if err != nil {
			return nil, err
		}
		return &CallTurn{Markup: markup}, nil
	}

	// Any other key, or none, just reopens the recording window.
	resp, err := u.questionMarkup(assessmentID, session.Role, questionID)
	if err != nil {
		return nil, err
	}
	return &CallTurn{Markup: resp}, nil
}

// turnFor renders the markup for the session's current position.
func (u *Usecase) turnFor(ctx context.Context, session *entity.Session, questionID string) (*CallTurn, error) {
	switch questionID {
	case "":
		return u.complete(ctx, session)
	case "intro":
		// Intro is presentation only: advance past it now and chain the
		// first real question into the same document.
		session.Advance()
		if err := u.sessions.Save(ctx, session); err != nil {
			return nil, fmt.Errorf("save session: %w", err)
		}
		next := session.CurrentQuestion()
		if next == "" || next == "goodbye" {
			return u.complete(ctx, session)
		}
		markup, err := u.introMarkup(session.AssessmentID, session.Role, next)
		if err != nil {
			return nil, err
		}
		return &CallTurn{Markup: markup}, nil
	case "goodbye":
		return u.complete(ctx, session)
	default:
		markup, err := u.questionMarkup(session.AssessmentID, session.Role, questionID)
		if err != nil {
			return nil, err
		}
		return &CallTurn{Markup: markup}, nil
	}
}

// complete marks the session finished and renders the goodbye. Completion
// is idempotent; a second pass never moves CompletedAt.
func (u *Usecase) complete(ctx context.Context, session *entity.Session) (*CallTurn, error) {
	if session.Status != entity.SessionStatusCompleted {
		now := time.Now().UTC()
		session.Status = entity.SessionStatusCompleted
		session.CompletedAt = &now
		if err := u.sessions.Save(ctx, session); err != nil {
			return nil, fmt.Errorf("complete session: %w", err)
		}
		ctxzap.Info(ctx, "assessment call completed",
			zap.String("assessment_id", session.AssessmentID),
			zap.Int("responses", len(session.Responses)),
		)
	}

	markup, err := u.completionMarkup(session.Role)
	if err != nil {
		return nil, err
	}
	return &CallTurn{Markup: markup, Completed: true}, nil
}
