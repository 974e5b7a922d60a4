package services

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"alfredoptarigan/ats-analyzer/internal/models"
)

type AnalyzerService interface {
	Analyze(ctx context.Context, filePath string) (AnalysisResult, error)
}

// AnalysisResult carries the response plus what was learned about the
// document. PageCount and TextLength are filled as far as the pipeline got,
// also when an error is returned.
type AnalysisResult struct {
	Response   *models.AnalysisResponse
	PageCount  int
	TextLength int
}

type analyzerService struct {
	pdfParser     PDFParserService
	scorer        *Scorer
	geminiService GeminiService
	minChars      int
	logger        *zap.Logger
}

func NewAnalyzerService(
	pdfParser PDFParserService,
	scorer *Scorer,
	geminiService GeminiService,
	minChars int,
	logger *zap.Logger,
) AnalyzerService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &analyzerService{
		pdfParser:     pdfParser,
		scorer:        scorer,
		geminiService: geminiService,
		minChars:      minChars,
		logger:        logger,
	}
}

// Analyze extracts the resume text, scores it and asks for insights, in that
// order. Scores are computed before the AI call and never taken from it.
func (a *analyzerService) Analyze(ctx context.Context, filePath string) (AnalysisResult, error) {
	var result AnalysisResult

	content, err := a.pdfParser.ExtractTextWithMetaData(filePath)
	if err != nil {
		return result, fmt.Errorf("failed to extract resume text: %w", err)
	}

	trimmed := strings.TrimSpace(content.Text)
	result.PageCount = content.PageCount
	result.TextLength = utf8.RuneCountInString(trimmed)

	a.logger.Debug("resume text extracted",
		zap.Int("pages", result.PageCount),
		zap.Int("chars", result.TextLength),
	)

	if result.TextLength < a.minChars {
		return result, ErrTextTooShort
	}

	scores := a.scorer.Score(content.Text)

	insights, err := a.geminiService.GenerateInsights(ctx, content.Text)
	if err != nil {
		return result, fmt.Errorf("failed to generate insights: %w", err)
	}

	result.Response = &models.AnalysisResponse{
		ATSScore:    OverallScore(scores),
		ScoreTriple: scores,
		Insights:    *insights,
	}

	return result, nil
}
