package assessment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gravywork/assessment-backend/internal/entity"
	"github.com/gravywork/assessment-backend/internal/pkg/formatter"
	"github.com/gravywork/assessment-backend/internal/pkg/logger"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// Handler serves the operator-facing REST surface: initiating calls,
// triggering reprocessing, and reading results.
type Handler struct {
	callflow  CallFlowUsecase
	scoring   ScoringUsecase
	validator Validator
}

func NewHandler(cf CallFlowUsecase, scoring ScoringUsecase, validator Validator) *Handler {
	return &Handler{
		callflow:  cf,
		scoring:   scoring,
		validator: validator,
	}
}

// InitiateAssessment handles POST /initiate - Place an outbound assessment call
func (h *Handler) InitiateAssessment(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "InitiateAssessment")

	var req entity.InitiateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ctxzap.Error(ctx, "failed to decode request body", zap.Error(err))
		h.respondError(ctx, w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	if err := h.validator.ValidateInitiate(&req); err != nil {
		ctxzap.Error(ctx, "failed to validate request", zap.Error(err))
		h.respondError(ctx, w, http.StatusBadRequest, "validation failed", err)
		return
	}

	ctxzap.Info(ctx, "initiating assessment", zap.String("role", req.Role))

	resp, err := h.callflow.Initiate(ctx, &req)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	ctxzap.Info(ctx, "assessment initiated", zap.String("assessment_id", resp.AssessmentID))
	h.respondJSON(w, http.StatusOK, resp)
}

// ProcessAssessment handles POST /assessments/{id}/process - Rescore a completed assessment
func (h *Handler) ProcessAssessment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	assessmentID := chi.URLParam(r, "id")
	requestID := r.Header.Get("X-Request-ID")

	ctx = logger.AddFields(ctx,
		zap.String("assessment_id", assessmentID),
		zap.String("action", "ProcessAssessment"),
	)

	// The body is optional; when present the role acts as a cross-check.
	if r.ContentLength > 0 {
		var req entity.ProcessRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			ctxzap.Error(ctx, "failed to decode request body", zap.Error(err))
			h.respondError(ctx, w, http.StatusBadRequest, "invalid request body", err)
			return
		}
		if err := h.validator.ValidateProcess(&req); err != nil {
			ctxzap.Error(ctx, "failed to validate request", zap.Error(err))
			h.respondError(ctx, w, http.StatusBadRequest, "validation failed", err)
			return
		}
	}

	ctxzap.Info(ctx, "scheduling assessment processing")

	go func() {
		bgCtx := logger.AddFields(ctxzap.ToContext(context.Background(), ctxzap.Extract(ctx)),
			zap.String("request_id", requestID),
			zap.String("assessment_id", assessmentID),
			zap.String("action", "ProcessAssessment-async"),
		)

		ctxzap.Info(bgCtx, "processing assessment")

		if _, err := h.scoring.Process(bgCtx, assessmentID); err != nil {
			ctxzap.Error(bgCtx, "failed to process assessment", zap.Error(err))
		}
	}()

	h.respondJSON(w, http.StatusAccepted, map[string]string{
		"status":  "accepted",
		"message": "assessment is being processed",
	})
}

// ListAssessments handles GET /assessments - List scored assessments
func (h *Handler) ListAssessments(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "ListAssessments")

	index, err := h.scoring.Index(ctx)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	ctxzap.Debug(ctx, "assessment index fetched", zap.Int("total", index.TotalCount))
	h.respondJSON(w, http.StatusOK, index)
}

// GetResult handles GET /assessments/{id}/results - Get the scoring outcome
func (h *Handler) GetResult(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	assessmentID := chi.URLParam(r, "id")

	ctx = logger.AddFields(ctx,
		zap.String("assessment_id", assessmentID),
		zap.String("action", "GetResult"),
	)

	formatParam := r.URL.Query().Get("format")
	if formatParam == "" {
		formatParam = "json"
	}

	format := entity.ResultFormat(formatParam)
	if !format.IsValid() {
		ctxzap.Warn(ctx, "invalid format parameter", zap.String("format", formatParam))
		h.respondError(ctx, w, http.StatusBadRequest, "invalid format parameter",
			fmt.Errorf("format must be one of: json, markdown, docx, pdf"))
		return
	}

	ctx = logger.AddFields(ctx, zap.String("format", string(format)))
	ctxzap.Debug(ctx, "fetching assessment result")

	result, err := h.scoring.Result(ctx, assessmentID)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	factory := formatter.NewFactory()
	fmtr, err := factory.Create(format)
	if err != nil {
		ctxzap.Error(ctx, "format not implemented", zap.Error(err))
		h.respondError(ctx, w, http.StatusNotImplemented, "format not implemented", err)
		return
	}

	formatted, err := fmtr.Format(result)
	if err != nil {
		ctxzap.Error(ctx, "failed to format result", zap.Error(err))
		h.respondError(ctx, w, http.StatusInternalServerError, "failed to format result", err)
		return
	}

	ctxzap.Info(ctx, "assessment result fetched and formatted successfully")
	w.Header().Set("Content-Type", fmtr.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"assessment-%s%s\"", assessmentID, fmtr.FileExtension()))
	w.WriteHeader(http.StatusOK)
	w.Write(formatted)
}

// Helper methods
func (h *Handler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func (h *Handler) respondError(ctx context.Context, w http.ResponseWriter, status int, message string, err error) {
	ctxzap.Error(ctx, message, zap.Error(err))
	h.respondJSON(w, status, entity.ErrorResponse{
		Error:   http.StatusText(status),
		Message: message,
	})
}

func (h *Handler) handleUsecaseError(ctx context.Context, w http.ResponseWriter, err error) {
	if errors.Is(err, entity.ErrSessionNotFound) || errors.Is(err, entity.ErrResultNotFound) {
		h.respondError(ctx, w, http.StatusNotFound, "resource not found", err)
	} else if errors.Is(err, entity.ErrUnknownRole) || errors.Is(err, entity.ErrInvalidParameter) || errors.Is(err, entity.ErrInvalidFormat) || errors.Is(err, entity.ErrMissingField) {
		h.respondError(ctx, w, http.StatusBadRequest, "invalid parameter", err)
	} else if errors.Is(err, entity.ErrSessionNotCompleted) || errors.Is(err, entity.ErrNoResponses) {
		h.respondError(ctx, w, http.StatusConflict, "invalid session state", err)
	} else if errors.Is(err, entity.ErrTelephonyUnavailable) {
		h.respondError(ctx, w, http.StatusBadGateway, "telephony provider unavailable", err)
	} else {
		h.respondError(ctx, w, http.StatusInternalServerError, "internal server error", err)
	}
}
