package services

// StrictParsedResume is the extraction result for an uploaded résumé. Nullable
// fields stay nil when the model did not find them.
type StrictParsedResume struct {
	Summary   *string     `json:"summary"`
	Skills    []string    `json:"skills"`
	Jobs      []ParsedJob `json:"jobs"`
	Education []string    `json:"education"`
}

type ParsedJob struct {
	Title     *string  `json:"title"`
	Company   *string  `json:"company"`
	StartDate *string  `json:"start_date"`
	EndDate   *string  `json:"end_date"`
	Bullets   []string `json:"bullets"`
}

type ATSRewriteResult struct {
	OptimizedHTML   string   `json:"optimized_html"`
	ATSScore        int      `json:"ats_score"`
	KeywordsUsed    []string `json:"keywords_used"`
	MissingKeywords []string `json:"missing_keywords"`
}

type JDMatchResult struct {
	MissingKeywords  []string `json:"missing_keywords"`
	MatchedKeywords  []string `json:"matched_keywords"`
	RewrittenBullets []string `json:"rewritten_bullets"`
	ImprovedSummary  string   `json:"improved_summary"`
}

type CoverLetterResult struct {
	CoverLetterHTML string `json:"cover_letter_html"`
}

type JobInsights struct {
	CleanedDescription string   `json:"cleanedDescription"`
	RoleTitle          string   `json:"roleTitle,omitempty"`
	Seniority          string   `json:"seniority,omitempty"`
	CompanyTone        string   `json:"companyTone,omitempty"`
	Summary            string   `json:"summary,omitempty"`
	MustHaveSkills     []string `json:"mustHaveSkills,omitempty"`
	NiceToHaveSkills   []string `json:"niceToHaveSkills,omitempty"`
	Responsibilities   []string `json:"responsibilities,omitempty"`
	Keywords           []string `json:"keywords,omitempty"`
}

type StructuredCV struct {
	FullName         string          `json:"fullName"`
	Headline         string          `json:"headline"`
	Contact          CVContact       `json:"contact"`
	Summary          string          `json:"summary"`
	SkillsByCategory []SkillCategory `json:"skillsByCategory"`
	Experiences      []CVExperience  `json:"experiences"`
	Projects         []CVProject     `json:"projects,omitempty"`
	Education        []CVEducation   `json:"education"`
	Certifications   []string        `json:"certifications,omitempty"`
	Interests        []string        `json:"interests,omitempty"`
}

type CVContact struct {
	Location string `json:"location,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Email    string `json:"email,omitempty"`
	LinkedIn string `json:"linkedin,omitempty"`
	GitHub   string `json:"github,omitempty"`
	Website  string `json:"website,omitempty"`
}

// Lines returns the non-empty contact values in display order.
func (c CVContact) Lines() []string {
	var out []string
	for _, v := range []string{c.Location, c.Phone, c.Email, c.LinkedIn, c.GitHub, c.Website} {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

type SkillCategory struct {
	Category string   `json:"category"`
	Skills   []string `json:"skills"`
}

type CVExperience struct {
	RoleTitle string   `json:"roleTitle"`
	Company   string   `json:"company"`
	Location  string   `json:"location,omitempty"`
	StartDate string   `json:"startDate,omitempty"`
	EndDate   string   `json:"endDate,omitempty"`
	Bullets   []string `json:"bullets"`
}

type CVProject struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Bullets     []string `json:"bullets"`
}

type CVEducation struct {
	Institution string `json:"institution"`
	Degree      string `json:"degree"`
	Location    string `json:"location,omitempty"`
	StartDate   string `json:"startDate,omitempty"`
	EndDate     string `json:"endDate,omitempty"`
}

type ATSScoreResult struct {
	BeforeScore   int      `json:"beforeScore"`
	AfterScore    int      `json:"afterScore"`
	WhatImproved  []string `json:"whatImproved"`
	RemainingGaps []string `json:"remainingGaps,omitempty"`
}

// ATSFeedback is advisory. An empty value means scoring never ran.
type ATSFeedback struct {
	Strengths     []string `json:"strengths,omitempty"`
	Improvements  []string `json:"improvements,omitempty"`
	BeforeScore   *int     `json:"beforeScore,omitempty"`
	AfterScore    *int     `json:"afterScore,omitempty"`
	WhatImproved  []string `json:"whatImproved,omitempty"`
	RemainingGaps []string `json:"remainingGaps,omitempty"`
}

// GenerationResult is the full tailored output for one application. It is
// produced whole and never patched.
type GenerationResult struct {
	StructuredCV StructuredCV `json:"structuredCv"`
	CVHTML       string       `json:"cvHtml"`
	PreviewHTML  string       `json:"blurredCvHtml"`
	ATSScore     int          `json:"atsScore"`
	ATSFeedback  ATSFeedback  `json:"atsFeedback"`
	Placeholder  bool         `json:"placeholder"`
}
