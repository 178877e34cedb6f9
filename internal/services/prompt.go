package services

import (
	"sort"
	"strings"
)

// Placeholder tokens understood by the templates below.
const (
	PlaceholderCVText           = "{{CV_TEXT}}"
	PlaceholderCVJSON           = "{{CV_JSON}}"
	PlaceholderIndustry         = "{{INDUSTRY}}"
	PlaceholderRole             = "{{ROLE}}"
	PlaceholderJDText           = "{{JD_TEXT}}"
	PlaceholderTone             = "{{TONE}}"
	PlaceholderCompany          = "{{COMPANY}}"
	PlaceholderProfileJSON      = "{{PROFILE_JSON}}"
	PlaceholderCVStructuredJSON = "{{CV_STRUCTURED_JSON}}"
	PlaceholderJobJSON          = "{{JOB_JSON}}"
	PlaceholderOriginalCV       = "{{ORIGINAL_CV}}"
	PlaceholderImprovedCV       = "{{IMPROVED_CV}}"
)

// System roles, one per use case.
const (
	SystemJSONOnly   = "You output JSON only."
	SystemJobAnalyst = "You analyse job descriptions for recruiters. Return JSON only."
	SystemCVWriter   = "You craft truthful, ATS-safe CVs. Never invent employers, education, dates, or achievements. Return only JSON that matches the schema provided."
	SystemATSScorer  = "You are an ATS scoring engine. Return JSON only."
)

type PromptBuilder struct{}

func NewPromptBuilder() *PromptBuilder {
	return &PromptBuilder{}
}

// Build replaces every occurrence of each placeholder in one left-to-right pass.
// Substituted values are never rescanned, so a value containing another
// placeholder token is emitted verbatim. Placeholders missing from subs are left
// in place.
func (pb *PromptBuilder) Build(template string, subs map[string]string) string {
	if len(subs) == 0 {
		return template
	}

	keys := make([]string, 0, len(subs))
	for k := range subs {
		keys = append(keys, k)
	}
	// longest first so overlapping tokens resolve the same way every call
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})

	pairs := make([]string, 0, len(keys)*2)
	for _, k := range keys {
		pairs = append(pairs, k, subs[k])
	}

	return strings.NewReplacer(pairs...).Replace(template)
}

// BuildParseCVPrompt creates the prompt that turns raw résumé text into StrictParsedResume JSON.
func (pb *PromptBuilder) BuildParseCVPrompt(cvText string) string {
	return pb.Build(ParseCVTemplate, map[string]string{
		PlaceholderCVText: cvText,
	})
}

func (pb *PromptBuilder) BuildATSRewritePrompt(cvJSON, industry, role string) string {
	return pb.Build(ATSRewriteTemplate, map[string]string{
		PlaceholderCVJSON:   cvJSON,
		PlaceholderIndustry: industry,
		PlaceholderRole:     role,
	})
}

func (pb *PromptBuilder) BuildJDMatchPrompt(cvJSON, jdText string) string {
	return pb.Build(JDMatchTemplate, map[string]string{
		PlaceholderCVJSON: cvJSON,
		PlaceholderJDText: jdText,
	})
}

func (pb *PromptBuilder) BuildCoverLetterPrompt(cvJSON, industry, role, jdText, tone string) string {
	return pb.Build(CoverLetterTemplate, map[string]string{
		PlaceholderCVJSON:   cvJSON,
		PlaceholderIndustry: industry,
		PlaceholderRole:     role,
		PlaceholderJDText:   jdText,
		PlaceholderTone:     tone,
	})
}

func (pb *PromptBuilder) BuildJobInsightsPrompt(company, jdText string) string {
	return pb.Build(JobInsightsTemplate, map[string]string{
		PlaceholderCompany: company,
		PlaceholderJDText:  jdText,
	})
}

func (pb *PromptBuilder) BuildTailoredCVPrompt(profileJSON, cvText, cvStructuredJSON, jobJSON, tone string) string {
	return pb.Build(TailoredCVTemplate, map[string]string{
		PlaceholderProfileJSON:      profileJSON,
		PlaceholderCVText:           cvText,
		PlaceholderCVStructuredJSON: cvStructuredJSON,
		PlaceholderJobJSON:          jobJSON,
		PlaceholderTone:             tone,
	})
}

func (pb *PromptBuilder) BuildATSScorePrompt(originalCV, improvedCV, jdText string) string {
	return pb.Build(ATSScoreTemplate, map[string]string{
		PlaceholderOriginalCV: originalCV,
		PlaceholderImprovedCV: improvedCV,
		PlaceholderJDText:     jdText,
	})
}

const ParseCVTemplate = `You are an expert resume parser.

Extract the candidate's resume into structured JSON. Only record what is written in the resume.
Do NOT invent, infer or embellish jobs, companies, dates, skills or education. Use null when a value is absent.

Return ONLY valid JSON in this exact shape:
{
  "summary": string | null,
  "skills": string[] | null,
  "jobs": [
    {
      "title": string | null,
      "company": string | null,
      "start_date": string | null,
      "end_date": string | null,
      "bullets": string[]
    }
  ],
  "education": string[] | null
}

RESUME TEXT:
{{CV_TEXT}}`

const ATSRewriteTemplate = `You are an ATS optimisation specialist rewriting a resume for the {{INDUSTRY}} industry, targeting a {{ROLE}} role.

Rules:
- Never fabricate experience, employers, dates, metrics, degrees or certifications.
- Rephrase bullets with strong action verbs and relevant keywords that the candidate can truthfully claim.
- Produce clean, single-column, ATS-friendly HTML: headings, paragraphs and lists only. No tables, images, scripts or styles.
- ats_score is your estimate from 0 to 100 of how well the rewritten resume will parse and rank.

Return ONLY valid JSON in this exact shape:
{
  "optimized_html": string,
  "keywords_used": string[],
  "missing_keywords": string[],
  "ats_score": number
}

PARSED RESUME JSON:
{{CV_JSON}}`

const JDMatchTemplate = `You compare a resume against a job description.

Rules:
- A keyword is "matched" only when the resume already contains it; otherwise it is "missing".
- Rewritten bullets must stay truthful to the original resume. Do not invent experience or results.
- The improved summary must only reference skills and experience present in the resume.

Return ONLY valid JSON in this exact shape:
{
  "missing_keywords": string[],
  "matched_keywords": string[],
  "rewritten_bullets": string[],
  "improved_summary": string
}

PARSED RESUME JSON:
{{CV_JSON}}

JOB DESCRIPTION:
{{JD_TEXT}}`

const CoverLetterTemplate = `You write concise cover letters for the {{INDUSTRY}} industry, for a {{ROLE}} role, in a {{TONE}} tone.

Rules:
- Use only facts present in the resume. Never invent employers, achievements, numbers or credentials.
- Three to five short paragraphs, addressed generically when no hiring manager is known.
- Format as simple HTML paragraphs. No scripts, styles or images.

Return ONLY valid JSON in this exact shape:
{
  "cover_letter_html": string
}

PARSED RESUME JSON:
{{CV_JSON}}

JOB DESCRIPTION:
{{JD_TEXT}}`

const JobInsightsTemplate = `You analyse a job description posted by {{COMPANY}}.

Clean the description (drop boilerplate, benefits lists, legal notices and navigation text) and extract what a candidate needs to tailor a CV.
Only report what the description states. Do not guess salary, seniority or skills that are not mentioned.

Return ONLY valid JSON in this exact shape:
{
  "cleanedDescription": string,
  "roleTitle": string,
  "seniority": string,
  "companyTone": string,
  "summary": string,
  "mustHaveSkills": string[],
  "niceToHaveSkills": string[],
  "responsibilities": string[],
  "keywords": string[]
}

JOB DESCRIPTION:
{{JD_TEXT}}`

const TailoredCVTemplate = `You are an expert CV writer and recruiter.

Rewrite the user's CV into a recruiter-ready, ATS-optimised CV tailored to the job below, written in a {{TONE}} tone.

STRICT INSTRUCTIONS:
- NEVER invent jobs, companies, degrees, responsibilities, dates or certifications.
- You MAY reorganise, rephrase, compress or expand what is already there.
- Use strong action verbs and role-relevant keywords the candidate can truthfully claim.
- Keep an ATS-friendly structure: single column, clear headings, no tables or graphics.

Return ONLY valid JSON in this exact shape:
{
  "fullName": string,
  "headline": string,
  "contact": {
    "email": string | null,
    "phone": string | null,
    "location": string | null,
    "linkedin": string | null,
    "github": string | null,
    "website": string | null
  },
  "summary": string,
  "skillsByCategory": [{ "category": string, "skills": string[] }],
  "experiences": [
    {
      "roleTitle": string,
      "company": string,
      "location": string | null,
      "startDate": string | null,
      "endDate": string | null,
      "bullets": string[]
    }
  ],
  "projects": [{ "name": string, "description": string, "bullets": string[] }],
  "education": [
    {
      "institution": string,
      "degree": string,
      "location": string | null,
      "startDate": string | null,
      "endDate": string | null
    }
  ],
  "certifications": string[],
  "interests": string[]
}

USER PROFILE:
{{PROFILE_JSON}}

CV TEXT:
{{CV_TEXT}}

STRUCTURED CV DATA:
{{CV_STRUCTURED_JSON}}

JOB DETAILS:
{{JOB_JSON}}`

const ATSScoreTemplate = `You are an ATS (Applicant Tracking System) analyser.

Compare the ORIGINAL CV with the IMPROVED CV against the job description.
Score each from 0 to 100 on keyword match, skills relevance, quantified achievements, clarity, section structure and ATS-friendly formatting.
Only list improvements that are actually present in the improved CV.

Return ONLY valid JSON in this exact shape:
{
  "beforeScore": number,
  "afterScore": number,
  "whatImproved": string[],
  "remainingGaps": string[]
}

JOB DESCRIPTION:
{{JD_TEXT}}

ORIGINAL CV:
{{ORIGINAL_CV}}

IMPROVED CV:
{{IMPROVED_CV}}`
