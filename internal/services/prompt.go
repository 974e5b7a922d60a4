package services

import "fmt"

type PromptBuilder struct{}

func NewPromptBuilder() *PromptBuilder {
	return &PromptBuilder{}
}

// BuildInsightPrompt creates the recruiter prompt for qualitative resume
// feedback. The model is told not to produce scores; scores come from Scorer.
func (pb *PromptBuilder) BuildInsightPrompt(resumeText string) string {
	return fmt.Sprintf(`You are a senior recruiter.

STRICT RULES:
- Do NOT give numeric scores
- Keep output short, factual, and resume-based
- ATS Improvements: keywords, sections, formatting only
- Technical Improvements: skills, tools, project depth only
- Give at most 3 strengths
- Avoid assumptions and generic claims

OUTPUT VALID JSON ONLY:

{
  "strengths": ["clear resume-based strength"],
  "ats_improvements": ["ATS-specific improvement"],
  "technical_improvements": ["technical improvement"],
  "recommended_job_roles": ["role name"],
  "overall_summary": "2 concise sentences"
}

RESUME:
"""%s"""
`, resumeText)
}
