package moderation

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
)

// Checker decides whether a piece of text should be rejected
type Checker interface {
	IsFlagged(ctx context.Context, text string) (bool, error)
}

// Config controls the text classification client
type Config struct {
	Enabled   bool
	Endpoint  string
	Token     string
	Label     string
	Threshold float64
	Timeout   time.Duration
}

// NewChecker returns a classifier client, or a no-op checker when moderation is disabled
func NewChecker(cfg Config, logger zerolog.Logger) Checker {
	if !cfg.Enabled || cfg.Endpoint == "" {
		return Noop{}
	}
	return NewHTTPChecker(cfg, logger)
}

// Noop never flags anything
type Noop struct{}

func (Noop) IsFlagged(context.Context, string) (bool, error) { return false, nil }

// HTTPChecker calls a hosted text-classification endpoint.
// The endpoint receives {"inputs": text} and answers with a list of {label, score}
// pairs, either flat or nested one level deep.
type HTTPChecker struct {
	client    *resty.Client
	label     string
	threshold float64
	logger    zerolog.Logger
}

type classifyRequest struct {
	Inputs string `json:"inputs"`
}

type labelScore struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// NewHTTPChecker builds a resty-backed checker
func NewHTTPChecker(cfg Config, logger zerolog.Logger) *HTTPChecker {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	if cfg.Label == "" {
		cfg.Label = "NEGATIVE"
	}
	if cfg.Threshold <= 0 {
		cfg.Threshold = 0.5
	}

	client := resty.New().
		SetBaseURL(cfg.Endpoint).
		SetTimeout(cfg.Timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")
	if cfg.Token != "" {
		client.SetAuthToken(cfg.Token)
	}

	client.OnAfterResponse(func(c *resty.Client, resp *resty.Response) error {
		logger.Debug().Int("status", resp.StatusCode()).Dur("elapsed", resp.Time()).Msg("Moderation response")
		return nil
	})

	return &HTTPChecker{
		client:    client,
		label:     strings.ToUpper(cfg.Label),
		threshold: cfg.Threshold,
		logger:    logger,
	}
}

// IsFlagged classifies text and reports whether the configured label scored at or above the threshold
func (h *HTTPChecker) IsFlagged(ctx context.Context, text string) (bool, error) {
	if strings.TrimSpace(text) == "" {
		return false, nil
	}

	resp, err := h.client.R().
		SetContext(ctx).
		SetBody(classifyRequest{Inputs: text}).
		Post("")
	if err != nil {
		return false, fmt.Errorf("moderation request failed: %w", err)
	}
	if resp.IsError() {
		return false, fmt.Errorf("moderation endpoint returned %d", resp.StatusCode())
	}

	scores, err := decodeScores(resp.Body())
	if err != nil {
		return false, err
	}

	for _, s := range scores {
		if strings.EqualFold(s.Label, h.label) && s.Score >= h.threshold {
			return true, nil
		}
	}
	return false, nil
}

func decodeScores(body []byte) ([]labelScore, error) {
	var flat []labelScore
	if err := json.Unmarshal(body, &flat); err == nil {
		return flat, nil
	}

	var nested [][]labelScore
	if err := json.Unmarshal(body, &nested); err != nil {
		return nil, fmt.Errorf("unexpected moderation response: %w", err)
	}
	if len(nested) == 0 {
		return nil, nil
	}
	return nested[0], nil
}
