package speech

import (
	"context"
	"fmt"
	"sync"

	"github.com/gravywork/assessment-backend/internal/entity"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// MockConnector fakes the transcription provider. Jobs complete on the
// first poll with a canned transcript.
type MockConnector struct {
	logger *zap.Logger

	mu   sync.Mutex
	jobs map[string]*entity.SpeechJob
}

func NewMockConnector(logger *zap.Logger) *MockConnector {
	return &MockConnector{
		logger: logger,
		jobs:   make(map[string]*entity.SpeechJob),
	}
}

func (m *MockConnector) SubmitJob(ctx context.Context, req entity.SpeechJobRequest) (*entity.SpeechJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.jobs[req.JobName]; ok {
		return nil, fmt.Errorf("%w: %s", ErrJobAlreadyExists, req.JobName)
	}

	ctxzap.Info(ctx, "[MOCK] submitting transcription job",
		zap.String("job_name", req.JobName),
		zap.String("media_ref", req.MediaRef),
	)

	job := &entity.SpeechJob{
		JobName:    req.JobName,
		Status:     entity.SpeechJobCompleted,
		Transcript: "I have worked as a bartender for three years at a busy hotel bar, mixing cocktails and handling closing duties.",
	}
	m.jobs[req.JobName] = job

	queued := *job
	queued.Status = entity.SpeechJobInProgress
	queued.Transcript = ""
	return &queued, nil
}

func (m *MockConnector) GetJob(ctx context.Context, jobName string) (*entity.SpeechJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	job, ok := m.jobs[jobName]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrJobNotFound, jobName)
	}

	ctxzap.Info(ctx, "[MOCK] transcription job polled", zap.String("job_name", jobName))

	cp := *job
	return &cp, nil
}
