package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gravywork/assessment-backend/internal/config"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

// Client wraps the Google GenAI client for answer evaluation.
type Client struct {
	client *genai.Client
	config config.ModelConfig
	logger *zap.Logger
}

func NewClient(ctx context.Context, cfg config.ModelConfig, logger *zap.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("model api key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return &Client{client: client, config: cfg, logger: logger}, nil
}

// Evaluate sends the scoring prompt and returns the model's textual output.
func (c *Client) Evaluate(ctx context.Context, prompt string) (string, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", errors.New("prompt must not be empty")
	}

	ctxzap.Info(ctx, "evaluating assessment with model",
		zap.String("model", c.config.Model),
		zap.Int("prompt_length", len(prompt)),
	)

	temperature := c.config.Temperature
	genCfg := &genai.GenerateContentConfig{
		Temperature:     &temperature,
		MaxOutputTokens: c.config.MaxOutputTokens,
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.config.Model, genai.Text(prompt), genCfg)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}

	var builder strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part == nil {
				continue
			}
			text := strings.TrimSpace(part.Text)
			if text == "" {
				continue
			}
			if builder.Len() > 0 {
				builder.WriteString("\n")
			}
			builder.WriteString(text)
		}
	}

	output := strings.TrimSpace(builder.String())
	if output == "" {
		return "", errors.New("model returned empty response")
	}

	ctxzap.Info(ctx, "model evaluation finished", zap.Int("output_length", len(output)))

	return output, nil
}
