package services

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

type fakeResponse struct {
	resp *genai.GenerateContentResponse
	err  error
}

type generateCall struct {
	model       string
	prompt      string
	config      *genai.GenerateContentConfig
	hasDeadline bool
}

type fakeGenerator struct {
	mu    sync.Mutex
	queue []fakeResponse
	calls []generateCall
}

func (f *fakeGenerator) enqueue(resp *genai.GenerateContentResponse, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queue = append(f.queue, fakeResponse{resp: resp, err: err})
}

func (f *fakeGenerator) GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var prompt strings.Builder
	for _, content := range contents {
		for _, part := range content.Parts {
			prompt.WriteString(part.Text)
		}
	}
	_, hasDeadline := ctx.Deadline()
	f.calls = append(f.calls, generateCall{model: model, prompt: prompt.String(), config: config, hasDeadline: hasDeadline})

	if len(f.queue) == 0 {
		return nil, errors.New("unexpected call")
	}
	next := f.queue[0]
	f.queue = f.queue[1:]
	return next.resp, next.err
}

func textResponse(text string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []*genai.Part{{Text: text}}},
		}},
	}
}

func stubSleep(t *testing.T) *[]time.Duration {
	t.Helper()
	var slept []time.Duration
	originalSleep := sleep
	sleep = func(d time.Duration) { slept = append(slept, d) }
	t.Cleanup(func() { sleep = originalSleep })
	return &slept
}

func newTestGemini(gen *fakeGenerator) *geminiService {
	return newGeminiService(gen, GeminiOptions{
		Model:          "gemini-test",
		Timeout:        time.Second,
		MaxAttempts:    3,
		InitialBackoff: 2 * time.Second,
	}, zap.NewNop())
}

const insightJSON = `{
  "strengths": ["one", "two", "three", "four", "five"],
  "ats_improvements": ["add a skills section"],
  "technical_improvements": ["show testing depth"],
  "recommended_job_roles": ["Backend Engineer"],
  "overall_summary": "Solid backend profile. Needs metrics.",
  "ats_score": 12
}`

func TestGenerateInsightsSuccess(t *testing.T) {
	slept := stubSleep(t)

	gen := &fakeGenerator{}
	gen.enqueue(textResponse(insightJSON), nil)

	insights, err := newTestGemini(gen).GenerateInsights(context.Background(), "RESUME BODY")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if got := strings.Join(insights.Strengths, ","); got != "one,two,three" {
		t.Fatalf("expected strengths capped to 3, got %q", got)
	}
	if len(insights.ATSImprovements) != 1 || insights.ATSImprovements[0] != "add a skills section" {
		t.Fatalf("unexpected ats improvements %v", insights.ATSImprovements)
	}
	if insights.OverallSummary != "Solid backend profile. Needs metrics." {
		t.Fatalf("unexpected summary %q", insights.OverallSummary)
	}
	if len(*slept) != 0 {
		t.Fatalf("expected no sleeps, got %v", *slept)
	}

	if len(gen.calls) != 1 {
		t.Fatalf("expected 1 call, got %d", len(gen.calls))
	}
	call := gen.calls[0]
	if call.model != "gemini-test" {
		t.Fatalf("unexpected model %q", call.model)
	}
	if !strings.Contains(call.prompt, `"""RESUME BODY"""`) {
		t.Fatalf("expected resume text embedded in prompt, got %q", call.prompt)
	}
	if !strings.Contains(call.prompt, "Do NOT give numeric scores") {
		t.Fatalf("expected no-score rule in prompt")
	}
	if call.config == nil || call.config.Temperature == nil || *call.config.Temperature != 0 {
		t.Fatalf("expected temperature 0, got %+v", call.config)
	}
	if call.config.ResponseMIMEType != "application/json" {
		t.Fatalf("expected json mime type, got %q", call.config.ResponseMIMEType)
	}
	if !call.hasDeadline {
		t.Fatalf("expected a per-attempt deadline")
	}
}

func TestGenerateInsightsRetriesRateLimit(t *testing.T) {
	slept := stubSleep(t)

	gen := &fakeGenerator{}
	gen.enqueue(nil, genai.APIError{Code: http.StatusTooManyRequests, Status: "RESOURCE_EXHAUSTED"})
	gen.enqueue(textResponse(insightJSON), nil)

	if _, err := newTestGemini(gen).GenerateInsights(context.Background(), "resume"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if len(gen.calls) != 2 {
		t.Fatalf("expected 2 calls, got %d", len(gen.calls))
	}
	if len(*slept) != 1 || (*slept)[0] != 2*time.Second {
		t.Fatalf("expected a single 2s sleep, got %v", *slept)
	}
}

func TestGenerateInsightsExhaustsRetries(t *testing.T) {
	slept := stubSleep(t)

	gen := &fakeGenerator{}
	for i := 0; i < 3; i++ {
		gen.enqueue(nil, genai.APIError{Code: http.StatusTooManyRequests})
	}

	_, err := newTestGemini(gen).GenerateInsights(context.Background(), "resume")
	if !errors.Is(err, ErrAIUnavailable) {
		t.Fatalf("expected ErrAIUnavailable, got %v", err)
	}
	if err.Error() != "AI service unavailable" {
		t.Fatalf("unexpected message %q", err.Error())
	}

	if len(gen.calls) != 3 {
		t.Fatalf("expected 3 attempts, got %d", len(gen.calls))
	}

	want := []time.Duration{2 * time.Second, 4 * time.Second}
	if len(*slept) != len(want) {
		t.Fatalf("expected sleeps %v, got %v", want, *slept)
	}
	var total time.Duration
	for i, d := range *slept {
		if d != want[i] {
			t.Fatalf("expected sleeps %v, got %v", want, *slept)
		}
		total += d
	}
	if total != 6*time.Second {
		t.Fatalf("expected 6s total backoff, got %s", total)
	}
}

func TestGenerateInsightsFailsFastOnOtherErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{name: "server error", err: genai.APIError{Code: http.StatusInternalServerError, Status: "INTERNAL"}},
		{name: "bad request", err: genai.APIError{Code: http.StatusBadRequest}},
		{name: "timeout", err: context.DeadlineExceeded},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			slept := stubSleep(t)

			gen := &fakeGenerator{}
			gen.enqueue(nil, tt.err)

			_, err := newTestGemini(gen).GenerateInsights(context.Background(), "resume")
			if !errors.Is(err, ErrAIRequest) {
				t.Fatalf("expected ErrAIRequest, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.err.Error()) {
				t.Fatalf("expected upstream error in %q", err.Error())
			}
			if len(gen.calls) != 1 {
				t.Fatalf("expected 1 call, got %d", len(gen.calls))
			}
			if len(*slept) != 0 {
				t.Fatalf("expected no sleeps, got %v", *slept)
			}
		})
	}
}

func TestGenerateInsightsMalformedResponse(t *testing.T) {
	tests := []struct {
		name string
		resp *genai.GenerateContentResponse
	}{
		{name: "invalid json", resp: textResponse(`{"strengths": [`)},
		{name: "no candidates", resp: &genai.GenerateContentResponse{}},
		{name: "nil response", resp: nil},
		{name: "empty text", resp: textResponse("   ")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stubSleep(t)

			gen := &fakeGenerator{}
			gen.enqueue(tt.resp, nil)

			_, err := newTestGemini(gen).GenerateInsights(context.Background(), "resume")
			if !errors.Is(err, ErrAIResponse) {
				t.Fatalf("expected ErrAIResponse, got %v", err)
			}
		})
	}
}

func TestGenerateInsightsNormalizesPayload(t *testing.T) {
	stubSleep(t)

	gen := &fakeGenerator{}
	gen.enqueue(textResponse("```json\n{\"overall_summary\": \"Short.\"}\n```"), nil)

	insights, err := newTestGemini(gen).GenerateInsights(context.Background(), "resume")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if insights.Strengths == nil || insights.ATSImprovements == nil ||
		insights.TechnicalImprovements == nil || insights.RecommendedJobRoles == nil {
		t.Fatalf("expected empty lists instead of nil, got %+v", insights)
	}
	if insights.OverallSummary != "Short." {
		t.Fatalf("unexpected summary %q", insights.OverallSummary)
	}
}

func TestNewGeminiServiceRequiresKey(t *testing.T) {
	if _, err := NewGeminiService(context.Background(), "  ", GeminiOptions{}, nil); err == nil {
		t.Fatalf("expected error for empty api key")
	}
}
