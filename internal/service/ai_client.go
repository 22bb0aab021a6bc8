package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"adventure-server/internal/config"
	"adventure-server/internal/schemas"

	"github.com/pkoukk/tiktoken-go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
)

var log = zerolog.New(zerolog.NewConsoleWriter()).With().Timestamp().Logger()

// ErrAIGenerationFailed is returned when the model call itself fails.
var ErrAIGenerationFailed = errors.New("AI text generation failed")

var (
	aiRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "adventure_server_ai_requests_total",
			Help: "Total number of requests to the AI API.",
		},
		[]string{"model", "status"},
	)
	aiRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "adventure_server_ai_request_duration_seconds",
			Help:    "Histogram of AI API request durations.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"model"},
	)
	aiPromptTokens = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "adventure_server_ai_prompt_tokens",
			Help:    "Estimated number of prompt tokens sent to the AI API.",
			Buckets: prometheus.ExponentialBuckets(64, 2, 10),
		},
		[]string{"model"},
	)
)

// AIClient is the text-generation boundary: one prompt in, one raw JSON
// document out. Implementations perform exactly one model invocation per
// call; retry policy belongs to the provider side.
type AIClient interface {
	GenerateStoryJSON(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// openAIClient talks to any OpenAI-compatible endpoint (OpenRouter included)
// and constrains the response to the story JSON schema.
type openAIClient struct {
	client    *openai.Client
	modelName string
	timeout   time.Duration
	encoder   *tiktoken.Tiktoken
}

// rawJSONSchema adapts a plain schema map to the json.Marshaler the OpenAI
// response_format field expects.
type rawJSONSchema map[string]interface{}

func (s rawJSONSchema) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]interface{}(s))
}

// NewOpenAIClient creates an AI client from the service configuration.
func NewOpenAIClient(cfg *config.Config) (AIClient, error) {
	if cfg.AIAPIKey == "" {
		return nil, errors.New("AI API key is not set")
	}

	clientConfig := openai.DefaultConfig(cfg.AIAPIKey)
	if cfg.AIBaseURL != "" {
		clientConfig.BaseURL = cfg.AIBaseURL
	}

	// Token estimation is best-effort; cl100k_base covers the chat models we
	// target closely enough for metrics purposes.
	encoder, err := tiktoken.GetEncoding(tiktoken.MODEL_CL100K_BASE)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to load tiktoken encoding, token metrics disabled")
		encoder = nil
	}

	return &openAIClient{
		client:    openai.NewClientWithConfig(clientConfig),
		modelName: cfg.AIModel,
		timeout:   cfg.AITimeout,
		encoder:   encoder,
	}, nil
}

// GenerateStoryJSON performs a single schema-constrained chat completion and
// returns the raw JSON content of the first choice.
func (c *openAIClient) GenerateStoryJSON(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	schema, schemaName := schemas.ResponseJSONSchema()

	req := openai.ChatCompletionRequest{
		Model: c.modelName,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: systemPrompt,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: userPrompt,
			},
		},
		Temperature: 0.9,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:   schemaName,
				Schema: rawJSONSchema(schema),
				Strict: true,
			},
		},
	}

	c.recordPromptTokens(systemPrompt, userPrompt)

	start := time.Now()
	resp, err := c.client.CreateChatCompletion(ctx, req)
	aiRequestDuration.WithLabelValues(c.modelName).Observe(time.Since(start).Seconds())
	if err != nil {
		aiRequestsTotal.WithLabelValues(c.modelName, "error").Inc()
		log.Error().Err(err).Str("model", c.modelName).Msg("AI request failed")
		return "", fmt.Errorf("%w: %v", ErrAIGenerationFailed, err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		aiRequestsTotal.WithLabelValues(c.modelName, "empty").Inc()
		return "", fmt.Errorf("%w: empty response from model", ErrAIGenerationFailed)
	}

	aiRequestsTotal.WithLabelValues(c.modelName, "success").Inc()
	log.Info().
		Str("model", c.modelName).
		Dur("duration", time.Since(start)).
		Int("completion_tokens", resp.Usage.CompletionTokens).
		Msg("AI request completed")

	return resp.Choices[0].Message.Content, nil
}

func (c *openAIClient) recordPromptTokens(systemPrompt, userPrompt string) {
	if c.encoder == nil {
		return
	}
	tokens := len(c.encoder.Encode(systemPrompt, nil, nil)) + len(c.encoder.Encode(userPrompt, nil, nil))
	aiPromptTokens.WithLabelValues(c.modelName).Observe(float64(tokens))
}
