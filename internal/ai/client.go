package ai

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"storycraft-server/internal/models"
)

var (
	generationRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storycraft_generation_requests_total",
			Help: "Total number of generation requests to the AI API.",
		},
		[]string{"capability", "status"}, // capability: "text" | "image"
	)
	generationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "storycraft_generation_duration_seconds",
			Help:    "Histogram of AI generation request durations.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"capability"},
	)
)

// Client is the Generation Gateway: two opaque, slow, non-idempotent
// capabilities. Both return typed failures and never partial results.
type Client interface {
	// GenerateText returns a continuation of seedText conditioned on
	// systemContext, bounded by the configured output token limit.
	GenerateText(ctx context.Context, systemContext, seedText string) (string, error)
	// GenerateImage synthesizes an image for the prompt and returns its bytes.
	GenerateImage(ctx context.Context, prompt string) ([]byte, error)
}

// Config holds the gateway settings.
type Config struct {
	APIKey          string
	BaseURL         string // empty for the default OpenAI endpoint
	TextModel       string
	ImageModel      string
	MaxOutputTokens int
	Timeout         time.Duration
}

type openAIClient struct {
	api        *openai.Client
	httpClient *http.Client
	cfg        Config
	logger     *zap.Logger
}

// NewClient creates a Generation Gateway backed by an OpenAI-compatible API.
func NewClient(cfg Config, logger *zap.Logger) Client {
	apiConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		apiConfig.BaseURL = cfg.BaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	if cfg.MaxOutputTokens <= 0 {
		cfg.MaxOutputTokens = 200
	}
	apiConfig.HTTPClient = &http.Client{Timeout: cfg.Timeout}

	return &openAIClient{
		api:        openai.NewClientWithConfig(apiConfig),
		httpClient: &http.Client{Timeout: cfg.Timeout},
		cfg:        cfg,
		logger:     logger.Named("AIClient"),
	}
}

func (c *openAIClient) GenerateText(ctx context.Context, systemContext, seedText string) (string, error) {
	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	prompt := BuildContinuationPrompt(systemContext, seedText)
	c.logger.Debug("Requesting text continuation",
		zap.String("model", c.cfg.TextModel), zap.Int("prompt_chars", len(prompt)))

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     c.cfg.TextModel,
		MaxTokens: c.cfg.MaxOutputTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: prompt},
		},
	})
	generationDuration.WithLabelValues("text").Observe(time.Since(start).Seconds())
	if err != nil {
		generationRequestsTotal.WithLabelValues("text", "error").Inc()
		return "", c.wrapError("text completion", err)
	}
	if len(resp.Choices) == 0 {
		generationRequestsTotal.WithLabelValues("text", "error").Inc()
		return "", fmt.Errorf("%w: completion returned no choices", models.ErrGenerationFailed)
	}

	generationRequestsTotal.WithLabelValues("text", "success").Inc()
	return resp.Choices[0].Message.Content, nil
}

func (c *openAIClient) GenerateImage(ctx context.Context, prompt string) ([]byte, error) {
	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	c.logger.Debug("Requesting image generation",
		zap.String("model", c.cfg.ImageModel), zap.Int("prompt_chars", len(prompt)))

	resp, err := c.api.CreateImage(ctx, openai.ImageRequest{
		Model:   c.cfg.ImageModel,
		Prompt:  prompt,
		Size:    openai.CreateImageSize1024x1024,
		Quality: openai.CreateImageQualityStandard,
		N:       1,
	})
	if err != nil {
		generationDuration.WithLabelValues("image").Observe(time.Since(start).Seconds())
		generationRequestsTotal.WithLabelValues("image", "error").Inc()
		return nil, c.wrapError("image generation", err)
	}
	if len(resp.Data) == 0 || resp.Data[0].URL == "" {
		generationDuration.WithLabelValues("image").Observe(time.Since(start).Seconds())
		generationRequestsTotal.WithLabelValues("image", "error").Inc()
		return nil, fmt.Errorf("%w: image response carried no URL", models.ErrGenerationFailed)
	}

	data, err := c.downloadImage(ctx, resp.Data[0].URL)
	generationDuration.WithLabelValues("image").Observe(time.Since(start).Seconds())
	if err != nil {
		generationRequestsTotal.WithLabelValues("image", "error").Inc()
		return nil, err
	}

	generationRequestsTotal.WithLabelValues("image", "success").Inc()
	return data, nil
}

// downloadImage fetches the generated image bytes. A non-200 status or a
// non-image content type is a generation failure, not a partial success.
func (c *openAIClient) downloadImage(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build download request: %v", models.ErrGenerationFailed, err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, c.wrapError("image download", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: image download returned status %d", models.ErrGenerationFailed, resp.StatusCode)
	}
	contentType := resp.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		return nil, fmt.Errorf("%w: unexpected content type %q", models.ErrGenerationFailed, contentType)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read image body: %v", models.ErrGenerationFailed, err)
	}
	return data, nil
}

// wrapError maps transport errors onto the gateway's two failure kinds.
// Timeouts get their own sentinel; callers treat both as retryable.
func (c *openAIClient) wrapError(op string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %s: %v", models.ErrGenerationTimeout, op, err)
	}
	var netErr interface{ Timeout() bool }
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %s: %v", models.ErrGenerationTimeout, op, err)
	}
	return fmt.Errorf("%w: %s: %v", models.ErrGenerationFailed, op, err)
}
