package speech

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gravywork/assessment-backend/internal/config"
	"github.com/gravywork/assessment-backend/internal/entity"
	"github.com/gravywork/assessment-backend/internal/integration/common"
	pkghttp "github.com/gravywork/assessment-backend/pkg/http"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

var (
	// ErrJobNotFound means the provider has no job under that name.
	ErrJobNotFound = errors.New("transcription job not found")
	// ErrJobAlreadyExists means a job with that name was submitted before.
	// Callers poll the existing job instead of failing.
	ErrJobAlreadyExists = errors.New("transcription job already exists")
)

type Connector struct {
	config    config.SpeechConnectorConfig
	connector *pkghttp.Connector
	logger    *zap.Logger
}

func NewConnector(
	cfg config.SpeechConnectorConfig,
	logger *zap.Logger,
) *Connector {
	return &Connector{
		connector: common.NewBaseConnector(cfg.HTTPClientConfig, logger),
		config:    cfg,
		logger:    logger,
	}
}

// SubmitJob starts an asynchronous transcription of one stored recording.
func (c *Connector) SubmitJob(ctx context.Context, req entity.SpeechJobRequest) (*entity.SpeechJob, error) {
	ctxzap.Info(ctx, "submitting transcription job",
		zap.String("job_name", req.JobName),
		zap.String("media_ref", req.MediaRef),
	)

	var job entity.SpeechJob
	if err := c.connector.DoRequest(ctx, http.MethodPost, c.config.SubmitEndpoint, req, &job); err != nil {
		var httpErr *pkghttp.HTTPError
		if errors.As(err, &httpErr) && httpErr.StatusCode == http.StatusConflict {
			return nil, fmt.Errorf("%w: %s", ErrJobAlreadyExists, req.JobName)
		}
		return nil, fmt.Errorf("submit transcription job: %w", err)
	}

	return &job, nil
}

// GetJob fetches the current state of a transcription job.
func (c *Connector) GetJob(ctx context.Context, jobName string) (*entity.SpeechJob, error) {
	var job entity.SpeechJob
	endpoint := fmt.Sprintf("%s/%s", c.config.JobEndpoint, jobName)
	if err := c.connector.DoRequest(ctx, http.MethodGet, endpoint, nil, &job); err != nil {
		var httpErr *pkghttp.HTTPError
		if errors.As(err, &httpErr) && httpErr.StatusCode == http.StatusNotFound {
			return nil, fmt.Errorf("%w: %s", ErrJobNotFound, jobName)
		}
		return nil, fmt.Errorf("get transcription job: %w", err)
	}

	return &job, nil
}
