package webhook

import (
	"context"

	"github.com/gravywork/assessment-backend/internal/callflow"
	"github.com/gravywork/assessment-backend/internal/entity"
)

type CallFlowUsecase interface {
	Answer(ctx context.Context, assessmentID string) (*callflow.CallTurn, error)
	HandleRecording(ctx context.Context, assessmentID, questionID string, cb *entity.RecordingCallback) (*callflow.CallTurn, error)
	HandleGather(ctx context.Context, assessmentID, questionID, digits string) (*callflow.CallTurn, error)
}

type ScoringUsecase interface {
	Process(ctx context.Context, assessmentID string) (*entity.AssessmentResult, error)
}
