package models

// ScoreTriple holds the rule-based sub scores of a resume.
type ScoreTriple struct {
	KeywordScore    int `json:"keyword_score"`
	FormattingScore int `json:"formatting_score"`
	TechnicalScore  int `json:"technical_score"`
}

// Insights is the qualitative feedback returned by the language model.
type Insights struct {
	Strengths             []string `json:"strengths"`
	ATSImprovements       []string `json:"ats_improvements"`
	TechnicalImprovements []string `json:"technical_improvements"`
	RecommendedJobRoles   []string `json:"recommended_job_roles"`
	OverallSummary        string   `json:"overall_summary"`
}

type AnalysisResponse struct {
	ATSScore int `json:"ats_score"`
	ScoreTriple
	Insights
}

type ErrorResponse struct {
	Error string `json:"error"`
}
