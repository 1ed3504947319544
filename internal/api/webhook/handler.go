package webhook

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gravywork/assessment-backend/internal/callflow"
	"github.com/gravywork/assessment-backend/internal/entity"
	"github.com/gravywork/assessment-backend/internal/pkg/logger"
	"github.com/gravywork/assessment-backend/internal/twiml"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// Handler answers the telephony provider's webhooks. Every response is
// call markup with status 200: an HTTP error would leave the callee in
// dead air, so failures degrade to a spoken apology instead.
type Handler struct {
	callflow CallFlowUsecase
	scoring  ScoringUsecase
}

func NewHandler(cf CallFlowUsecase, scoring ScoringUsecase) *Handler {
	return &Handler{
		callflow: cf,
		scoring:  scoring,
	}
}

// Answer handles POST /webhook - the callee picked up
func (h *Handler) Answer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	assessmentID := r.URL.Query().Get("assessment_id")

	ctx = logger.AddFields(ctx,
		zap.String("assessment_id", assessmentID),
		zap.String("action", "Answer"),
	)

	ctxzap.Info(ctx, "call answered")

	turn, err := h.callflow.Answer(ctx, assessmentID)
	if err != nil {
		ctxzap.Error(ctx, "failed to build answer turn", zap.Error(err))
		h.respondApology(w)
		return
	}

	h.respondTurn(ctx, w, r, assessmentID, turn)
}

// Recording handles POST /webhook/recording - a recording window closed
func (h *Handler) Recording(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	assessmentID := r.URL.Query().Get("assessment_id")
	questionID := r.URL.Query().Get("question")

	ctx = logger.AddFields(ctx,
		zap.String("assessment_id", assessmentID),
		zap.String("question_id", questionID),
		zap.String("action", "Recording"),
	)

	if err := r.ParseForm(); err != nil {
		ctxzap.Error(ctx, "failed to parse recording callback form", zap.Error(err))
		h.respondApology(w)
		return
	}

	cb := &entity.RecordingCallback{
		Digits:       r.PostFormValue("Digits"),
		RecordingURL: r.PostFormValue("RecordingUrl"),
		CallSID:      r.PostFormValue("CallSid"),
	}
	if raw := r.PostFormValue("RecordingDuration"); raw != "" {
		duration, err := strconv.Atoi(raw)
		if err != nil {
			ctxzap.Warn(ctx, "unparseable recording duration", zap.String("value", raw))
		} else {
			cb.RecordingDuration = duration
		}
	}

	ctxzap.Info(ctx, "recording callback received",
		zap.Int("duration_seconds", cb.RecordingDuration),
		zap.Bool("has_recording", cb.RecordingURL != ""),
	)

	turn, err := h.callflow.HandleRecording(ctx, assessmentID, questionID, cb)
	if err != nil {
		ctxzap.Error(ctx, "failed to handle recording callback", zap.Error(err))
		h.respondApology(w)
		return
	}

	h.respondTurn(ctx, w, r, assessmentID, turn)
}

// Gather handles POST /webhook/gather - a keypad press outside a recording window
func (h *Handler) Gather(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	assessmentID := r.URL.Query().Get("assessment_id")
	questionID := r.URL.Query().Get("question")

	ctx = logger.AddFields(ctx,
		zap.String("assessment_id", assessmentID),
		zap.String("question_id", questionID),
		zap.String("action", "Gather"),
	)

	if err := r.ParseForm(); err != nil {
		ctxzap.Error(ctx, "failed to parse gather form", zap.Error(err))
		h.respondApology(w)
		return
	}
	digits := r.PostFormValue("Digits")

	ctxzap.Info(ctx, "gather callback received", zap.String("digits", digits))

	turn, err := h.callflow.HandleGather(ctx, assessmentID, questionID, digits)
	if err != nil {
		ctxzap.Error(ctx, "failed to handle gather callback", zap.Error(err))
		h.respondApology(w)
		return
	}

	h.respondTurn(ctx, w, r, assessmentID, turn)
}

// respondTurn writes the turn's markup and, when the call just finished,
// kicks off scoring in the background. The provider only waits for markup;
// transcription and evaluation take minutes.
func (h *Handler) respondTurn(ctx context.Context, w http.ResponseWriter, r *http.Request, assessmentID string, turn *callflow.CallTurn) {
	if turn.Completed {
		requestID := r.Header.Get("X-Request-ID")

		go func() {
			bgCtx := logger.AddFields(ctxzap.ToContext(context.Background(), ctxzap.Extract(ctx)),
				zap.String("request_id", requestID),
				zap.String("assessment_id", assessmentID),
				zap.String("action", "ProcessAssessment-async"),
			)

			ctxzap.Info(bgCtx, "processing completed assessment")

			if _, err := h.scoring.Process(bgCtx, assessmentID); err != nil {
				ctxzap.Error(bgCtx, "failed to process assessment", zap.Error(err))
			}
		}()
	}

	h.respondMarkup(w, turn.Markup)
}

func (h *Handler) respondMarkup(w http.ResponseWriter, markup []byte) {
	w.Header().Set("Content-Type", twiml.ContentType)
	w.WriteHeader(http.StatusOK)
	w.Write(markup)
}

func (h *Handler) respondApology(w http.ResponseWriter) {
	h.respondMarkup(w, callflow.ApologyMarkup())
}
