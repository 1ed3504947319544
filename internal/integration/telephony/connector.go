package telephony

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/gravywork/assessment-backend/internal/config"
	"github.com/gravywork/assessment-backend/internal/entity"
	"github.com/gravywork/assessment-backend/internal/integration/common"
	pkghttp "github.com/gravywork/assessment-backend/pkg/http"
	"github.com/avast/retry-go/v4"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

type Connector struct {
	config    config.TelephonyConnectorConfig
	connector *pkghttp.Connector
	logger    *zap.Logger
}

func NewConnector(
	cfg config.TelephonyConnectorConfig,
	logger *zap.Logger,
) *Connector {
	return &Connector{
		connector: common.NewBaseConnector(cfg.HTTPClientConfig, logger,
			pkghttp.WithBasicAuth(cfg.AccountSID, cfg.AuthToken)),
		config: cfg,
		logger: logger,
	}
}

// twilioCallResponse mirrors the provider's call resource JSON.
type twilioCallResponse struct {
	Sid    string `json:"sid"`
	Status string `json:"status"`
}

// CreateCall places an outbound call. The provider fetches its first
// instructions from webhookURL once the callee answers.
func (c *Connector) CreateCall(ctx context.Context, toNumber, webhookURL string) (*entity.TelephonyCall, error) {
	form := url.Values{}
	form.Set("To", toNumber)
	form.Set("From", c.config.FromNumber)
	form.Set("Url", webhookURL)
	form.Set("Method", http.MethodPost)

	ctxzap.Info(ctx, "placing outbound call",
		zap.String("to", toNumber),
		zap.String("webhook_url", webhookURL),
	)

	endpoint := fmt.Sprintf("/2010-04-01/Accounts/%s/Calls.json", c.config.AccountSID)

	var resp twilioCallResponse
	if err := c.connector.DoFormRequest(ctx, http.MethodPost, endpoint, form, &resp); err != nil {
		return nil, fmt.Errorf("create call: %w", err)
	}

	ctxzap.Info(ctx, "outbound call created",
		zap.String("call_sid", resp.Sid),
		zap.String("call_status", resp.Status),
	)

	return &entity.TelephonyCall{SID: resp.Sid, Status: resp.Status}, nil
}

// FetchRecording downloads the raw audio of a finished recording.
// The provider serves MP3 when the media URL carries the extension.
func (c *Connector) FetchRecording(ctx context.Context, recordingURL string) ([]byte, error) {
	if recordingURL == "" {
		return nil, fmt.Errorf("empty recording url")
	}
	if !strings.HasSuffix(recordingURL, ".mp3") {
		recordingURL += ".mp3"
	}

	// Recordings may not be ready the instant the callback fires, so
	// transient failures are retried.
	opts := append(c.config.Retry.ToRetryOptions(),
		retry.Context(ctx),
		retry.LastErrorOnly(true),
	)
	data, err := retry.DoWithData(func() ([]byte, error) {
		return c.connector.DoRawRequest(ctx, http.MethodGet, "", pkghttp.WithURL(recordingURL))
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("fetch recording: %w", err)
	}

	ctxzap.Info(ctx, "recording downloaded",
		zap.String("recording_url", recordingURL),
		zap.Int("size", len(data)),
	)

	return data, nil
}
