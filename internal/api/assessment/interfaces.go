package assessment

import (
	"context"

	"github.com/gravywork/assessment-backend/internal/entity"
)

type CallFlowUsecase interface {
	Initiate(ctx context.Context, req *entity.InitiateRequest) (*entity.InitiateResponse, error)
}

type ScoringUsecase interface {
	Process(ctx context.Context, assessmentID string) (*entity.AssessmentResult, error)
	Result(ctx context.Context, assessmentID string) (*entity.AssessmentResult, error)
	Index(ctx context.Context) (*entity.AssessmentIndex, error)
}

type Validator interface {
	ValidateInitiate(req *entity.InitiateRequest) error
	ValidateProcess(req *entity.ProcessRequest) error
}
