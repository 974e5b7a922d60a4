package services

import (
	"strings"

	"alfredoptarigan/ats-analyzer/internal/models"
)

const (
	scoreBase         = 60
	scoreCap          = 90
	keywordStep       = 4
	technicalStep     = 5
	formattingFull    = 85
	formattingPartial = 70
)

var (
	coreKeywords     = []string{"python", "java", "sql", "projects", "experience", "internship", "skills", "github", "api"}
	requiredSections = []string{"skills", "experience", "projects"}
	technicalTerms   = []string{"framework", "database", "api", "cloud", "backend", "frontend", "sql"}
)

// Scorer computes rule-based ATS scores. The same text always yields the same
// scores; nothing here talks to the language model.
type Scorer struct{}

func NewScorer() *Scorer {
	return &Scorer{}
}

// ScoreHits lists which terms of each rule matched the resume.
type ScoreHits struct {
	Keywords  []string
	Sections  []string
	Technical []string
}

func (s *Scorer) Score(text string) models.ScoreTriple {
	hits := s.Hits(text)

	formatting := formattingPartial
	if len(hits.Sections) == len(requiredSections) {
		formatting = formattingFull
	}

	return models.ScoreTriple{
		KeywordScore:    min(scoreCap, scoreBase+keywordStep*len(hits.Keywords)),
		FormattingScore: formatting,
		TechnicalScore:  min(scoreCap, scoreBase+technicalStep*len(hits.Technical)),
	}
}

// Hits matches every term as a case-insensitive substring of text.
func (s *Scorer) Hits(text string) ScoreHits {
	lower := strings.ToLower(text)
	return ScoreHits{
		Keywords:  matchTerms(lower, coreKeywords),
		Sections:  matchTerms(lower, requiredSections),
		Technical: matchTerms(lower, technicalTerms),
	}
}

// OverallScore weights the sub scores 0.45/0.20/0.35 and rounds half up.
// The sum is kept in hundredths so ties are exact.
func OverallScore(triple models.ScoreTriple) int {
	hundredths := 45*triple.KeywordScore + 20*triple.FormattingScore + 35*triple.TechnicalScore
	return (hundredths + 50) / 100
}

func matchTerms(lower string, terms []string) []string {
	var matched []string
	for _, term := range terms {
		if strings.Contains(lower, term) {
			matched = append(matched, term)
		}
	}
	return matched
}
