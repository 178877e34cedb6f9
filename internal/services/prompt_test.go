package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildSubstitutesEveryOccurrence(t *testing.T) {
	pb := NewPromptBuilder()

	out := pb.Build("{{ROLE}} at {{INDUSTRY}}; again {{ROLE}}", map[string]string{
		PlaceholderRole:     "Engineer",
		PlaceholderIndustry: "Fintech",
	})

	assert.Equal(t, "Engineer at Fintech; again Engineer", out)
}

func TestBuildIsSinglePass(t *testing.T) {
	pb := NewPromptBuilder()

	out := pb.Build("CV: {{CV_JSON}} / JD: {{JD_TEXT}}", map[string]string{
		PlaceholderCVJSON: `{"summary":"mentions {{JD_TEXT}}"}`,
		PlaceholderJDText: "Go developer",
	})

	assert.Equal(t, `CV: {"summary":"mentions {{JD_TEXT}}"} / JD: Go developer`, out)
}

func TestBuildIsDeterministic(t *testing.T) {
	pb := NewPromptBuilder()
	subs := map[string]string{
		PlaceholderCVJSON:   "{}",
		PlaceholderIndustry: "Health",
		PlaceholderRole:     "Nurse",
	}

	first := pb.Build(ATSRewriteTemplate, subs)
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, pb.Build(ATSRewriteTemplate, subs))
	}
}

func TestBuildLeavesUnknownPlaceholders(t *testing.T) {
	out := NewPromptBuilder().Build("{{ROLE}} {{TONE}}", map[string]string{PlaceholderRole: "Chef"})
	assert.Equal(t, "Chef {{TONE}}", out)
}

func TestTemplatesAreFullySubstituted(t *testing.T) {
	pb := NewPromptBuilder()

	prompts := map[string]string{
		"parse":        pb.BuildParseCVPrompt("cv text"),
		"ats_rewrite":  pb.BuildATSRewritePrompt("{}", "General", "Generalist"),
		"jd_match":     pb.BuildJDMatchPrompt("{}", "jd"),
		"cover_letter": pb.BuildCoverLetterPrompt("{}", "General", "General", "General role", "professional"),
		"job_insights": pb.BuildJobInsightsPrompt("Acme", "jd"),
		"tailored_cv":  pb.BuildTailoredCVPrompt("{}", "cv", "null", "{}", "WARM"),
		"ats_score":    pb.BuildATSScorePrompt("before", "after", "jd"),
	}

	for name, prompt := range prompts {
		assert.NotContains(t, prompt, "{{", name)
	}
}
