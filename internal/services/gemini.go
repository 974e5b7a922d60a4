package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"alfredoptarigan/ats-analyzer/internal/models"
)

const (
	defaultModel   = "gemini-2.5-flash"
	maxStrengths   = 3
	jsonMIMEType   = "application/json"
	defaultTimeout = 40 * time.Second
)

// sleep is replaced in tests.
var sleep = time.Sleep

type GeminiService interface {
	GenerateInsights(ctx context.Context, resumeText string) (*models.Insights, error)
}

// contentGenerator is the part of genai.Models used here.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

type GeminiOptions struct {
	Model          string
	Timeout        time.Duration
	MaxAttempts    int
	InitialBackoff time.Duration
}

type geminiService struct {
	generator      contentGenerator
	modelName      string
	timeout        time.Duration
	maxAttempts    int
	initialBackoff time.Duration
	promptBuilder  *PromptBuilder
	logger         *zap.Logger
}

func NewGeminiService(ctx context.Context, apiKey string, opts GeminiOptions, logger *zap.Logger) (GeminiService, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return newGeminiService(client.Models, opts, logger), nil
}

func newGeminiService(generator contentGenerator, opts GeminiOptions, logger *zap.Logger) *geminiService {
	if opts.Model = strings.TrimSpace(opts.Model); opts.Model == "" {
		opts.Model = defaultModel
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 3
	}
	if opts.InitialBackoff <= 0 {
		opts.InitialBackoff = 2 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &geminiService{
		generator:      generator,
		modelName:      opts.Model,
		timeout:        opts.Timeout,
		maxAttempts:    opts.MaxAttempts,
		initialBackoff: opts.InitialBackoff,
		promptBuilder:  NewPromptBuilder(),
		logger:         logger,
	}
}

// GenerateInsights asks Gemini for qualitative feedback on the resume.
// Rate limited attempts are retried with a doubling delay; any other upstream
// failure is returned immediately.
func (g *geminiService) GenerateInsights(ctx context.Context, resumeText string) (*models.Insights, error) {
	prompt := g.promptBuilder.BuildInsightPrompt(resumeText)

	temperature := float32(0)
	config := &genai.GenerateContentConfig{
		Temperature:      &temperature,
		ResponseMIMEType: jsonMIMEType,
	}

	delay := g.initialBackoff
	for attempt := 1; attempt <= g.maxAttempts; attempt++ {
		resp, err := g.generate(ctx, prompt, config)
		if err == nil {
			return parseInsights(resp)
		}

		if !isRateLimited(err) {
			g.logger.Error("gemini request failed", zap.Int("attempt", attempt), zap.Error(err))
			return nil, fmt.Errorf("%w: %w", ErrAIRequest, err)
		}

		g.logger.Warn("gemini rate limited",
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", g.maxAttempts),
			zap.Duration("backoff", delay),
		)

		if attempt < g.maxAttempts {
			sleep(delay)
			delay *= 2
		}
	}

	return nil, ErrAIUnavailable
}

func (g *geminiService) generate(ctx context.Context, prompt string, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	return g.generator.GenerateContent(attemptCtx, g.modelName, genai.Text(prompt), config)
}

func isRateLimited(err error) bool {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code == http.StatusTooManyRequests
	}

	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return apiErrPtr.Code == http.StatusTooManyRequests
	}

	return false
}

func parseInsights(resp *genai.GenerateContentResponse) (*models.Insights, error) {
	raw, ok := firstText(resp)
	if !ok {
		return nil, fmt.Errorf("%w: no text content in response", ErrAIResponse)
	}

	var insights models.Insights
	if err := json.Unmarshal([]byte(extractJSON(raw)), &insights); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAIResponse, err)
	}

	if len(insights.Strengths) > maxStrengths {
		insights.Strengths = insights.Strengths[:maxStrengths]
	}
	insights.Strengths = nonNil(insights.Strengths)
	insights.ATSImprovements = nonNil(insights.ATSImprovements)
	insights.TechnicalImprovements = nonNil(insights.TechnicalImprovements)
	insights.RecommendedJobRoles = nonNil(insights.RecommendedJobRoles)

	return &insights, nil
}

// firstText returns the first non-thought text part of the first candidate.
func firstText(resp *genai.GenerateContentResponse) (string, bool) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", false
	}

	candidate := resp.Candidates[0]
	if candidate == nil || candidate.Content == nil {
		return "", false
	}

	for _, part := range candidate.Content.Parts {
		if part == nil || part.Thought {
			continue
		}
		if strings.TrimSpace(part.Text) != "" {
			return part.Text, true
		}
	}

	return "", false
}

// extractJSON strips markdown fences the model may wrap around the object.
func extractJSON(text string) string {
	text = strings.ReplaceAll(text, "```json", "")
	text = strings.ReplaceAll(text, "```", "")

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start != -1 && end > start {
		return text[start : end+1]
	}

	return strings.TrimSpace(text)
}

func nonNil(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}
