package services

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/xeipuuv/gojsonschema"
)

// DefaultRewriteScore is used when an ATS rewrite omits ats_score.
const DefaultRewriteScore = 70

// SchemaError lists every field that violated the expected shape.
type SchemaError struct {
	Errors []FieldError
}

type FieldError struct {
	Field   string
	Message string
}

func (e *SchemaError) Error() string {
	var sb strings.Builder
	sb.WriteString("schema mismatch:")
	for i, fe := range e.Errors {
		if i > 0 {
			sb.WriteString(";")
		}
		sb.WriteString(fmt.Sprintf(" %s: %s", fe.Field, fe.Message))
	}
	return sb.String()
}

func (e *SchemaError) Is(target error) bool {
	return target == ErrSchemaMismatch
}

// ResponseValidator checks model output against one strict schema per use case,
// then applies defaults and clamps. Values are returned whole or not at all.
type ResponseValidator struct {
	schemas map[SchemaKind]*gojsonschema.Schema
}

func NewResponseValidator() (*ResponseValidator, error) {
	schemas := make(map[SchemaKind]*gojsonschema.Schema, len(schemaSources))
	for kind, src := range schemaSources {
		schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(src))
		if err != nil {
			return nil, fmt.Errorf("failed to compile %s schema: %w", kind, err)
		}
		schemas[kind] = schema
	}
	return &ResponseValidator{schemas: schemas}, nil
}

// MustNewResponseValidator panics if an embedded schema does not compile.
func MustNewResponseValidator() *ResponseValidator {
	v, err := NewResponseValidator()
	if err != nil {
		panic(err)
	}
	return v
}

// Validate dispatches on kind and returns the typed value as any.
func (v *ResponseValidator) Validate(raw string, kind SchemaKind) (any, error) {
	switch kind {
	case SchemaParsedCV:
		return v.ParsedResume(raw)
	case SchemaATSRewrite:
		return v.ATSRewrite(raw)
	case SchemaJDMatch:
		return v.JDMatch(raw)
	case SchemaCoverLetter:
		return v.CoverLetter(raw)
	case SchemaJobInsights:
		return v.JobInsights(raw)
	case SchemaStructuredCV:
		return v.StructuredCV(raw)
	case SchemaATSScore:
		return v.ATSScore(raw)
	default:
		return nil, fmt.Errorf("unknown schema kind %q", kind)
	}
}

func (v *ResponseValidator) ParsedResume(raw string) (*StrictParsedResume, error) {
	var out StrictParsedResume
	if err := v.decode(raw, SchemaParsedCV, &out); err != nil {
		return nil, err
	}

	if out.Jobs == nil {
		out.Jobs = []ParsedJob{}
	}
	for i := range out.Jobs {
		if out.Jobs[i].Bullets == nil {
			out.Jobs[i].Bullets = []string{}
		}
	}

	return &out, nil
}

func (v *ResponseValidator) ATSRewrite(raw string) (*ATSRewriteResult, error) {
	var payload struct {
		OptimizedHTML   string   `json:"optimized_html"`
		KeywordsUsed    []string `json:"keywords_used"`
		MissingKeywords []string `json:"missing_keywords"`
		ATSScore        *float64 `json:"ats_score"`
	}
	if err := v.decode(raw, SchemaATSRewrite, &payload); err != nil {
		return nil, err
	}

	score := DefaultRewriteScore
	if payload.ATSScore != nil {
		score = ClampScore(*payload.ATSScore)
	}

	return &ATSRewriteResult{
		OptimizedHTML:   SanitizeHTML(payload.OptimizedHTML),
		ATSScore:        score,
		KeywordsUsed:    orEmpty(payload.KeywordsUsed),
		MissingKeywords: orEmpty(payload.MissingKeywords),
	}, nil
}

func (v *ResponseValidator) JDMatch(raw string) (*JDMatchResult, error) {
	var out JDMatchResult
	if err := v.decode(raw, SchemaJDMatch, &out); err != nil {
		return nil, err
	}

	out.MissingKeywords = orEmpty(out.MissingKeywords)
	out.MatchedKeywords = orEmpty(out.MatchedKeywords)
	out.RewrittenBullets = orEmpty(out.RewrittenBullets)

	return &out, nil
}

func (v *ResponseValidator) CoverLetter(raw string) (*CoverLetterResult, error) {
	var out CoverLetterResult
	if err := v.decode(raw, SchemaCoverLetter, &out); err != nil {
		return nil, err
	}

	out.CoverLetterHTML = SanitizeHTML(out.CoverLetterHTML)

	return &out, nil
}

func (v *ResponseValidator) JobInsights(raw string) (*JobInsights, error) {
	var out JobInsights
	if err := v.decode(raw, SchemaJobInsights, &out); err != nil {
		return nil, err
	}

	return &out, nil
}

// StructuredCV accepts both {"structuredCv": {...}} and a bare CV object.
func (v *ResponseValidator) StructuredCV(raw string) (*StructuredCV, error) {
	var out StructuredCV
	if err := v.decode(raw, SchemaStructuredCV, &out); err != nil {
		return nil, err
	}

	if out.SkillsByCategory == nil {
		out.SkillsByCategory = []SkillCategory{}
	}
	for i := range out.SkillsByCategory {
		out.SkillsByCategory[i].Skills = orEmpty(out.SkillsByCategory[i].Skills)
	}
	if out.Experiences == nil {
		out.Experiences = []CVExperience{}
	}
	for i := range out.Experiences {
		out.Experiences[i].Bullets = orEmpty(out.Experiences[i].Bullets)
	}
	for i := range out.Projects {
		out.Projects[i].Bullets = orEmpty(out.Projects[i].Bullets)
	}
	if out.Education == nil {
		out.Education = []CVEducation{}
	}

	return &out, nil
}

func (v *ResponseValidator) ATSScore(raw string) (*ATSScoreResult, error) {
	var payload struct {
		BeforeScore   float64  `json:"beforeScore"`
		AfterScore    float64  `json:"afterScore"`
		WhatImproved  []string `json:"whatImproved"`
		RemainingGaps []string `json:"remainingGaps"`
	}
	if err := v.decode(raw, SchemaATSScore, &payload); err != nil {
		return nil, err
	}

	return &ATSScoreResult{
		BeforeScore:   ClampScore(payload.BeforeScore),
		AfterScore:    ClampScore(payload.AfterScore),
		WhatImproved:  orEmpty(payload.WhatImproved),
		RemainingGaps: payload.RemainingGaps,
	}, nil
}

// decode runs cleanup, JSON parsing and schema validation, then unmarshals into target.
func (v *ResponseValidator) decode(raw string, kind SchemaKind, target any) error {
	doc := extractJSON(StripCodeFences(raw))

	if !json.Valid([]byte(doc)) {
		return &ValidationFailure{Kind: kind, Raw: raw, Err: ErrMalformedJSON}
	}

	if kind == SchemaStructuredCV {
		if wrapped := gjson.Get(doc, "structuredCv"); wrapped.IsObject() {
			doc = wrapped.Raw
		}
	}

	schema, ok := v.schemas[kind]
	if !ok {
		return fmt.Errorf("unknown schema kind %q", kind)
	}

	result, err := schema.Validate(gojsonschema.NewStringLoader(doc))
	if err != nil {
		return &ValidationFailure{Kind: kind, Raw: raw, Err: fmt.Errorf("%w: %v", ErrMalformedJSON, err)}
	}

	if !result.Valid() {
		schemaErr := &SchemaError{Errors: make([]FieldError, 0, len(result.Errors()))}
		for _, desc := range result.Errors() {
			field := desc.Field()
			if field == "" {
				field = "(root)"
			}
			schemaErr.Errors = append(schemaErr.Errors, FieldError{
				Field:   field,
				Message: desc.Description(),
			})
		}
		return &ValidationFailure{Kind: kind, Raw: raw, Err: schemaErr}
	}

	if err := json.Unmarshal([]byte(doc), target); err != nil {
		return &ValidationFailure{Kind: kind, Raw: raw, Err: fmt.Errorf("%w: %v", ErrSchemaMismatch, err)}
	}

	return nil
}

// ClampScore rounds v and bounds it to [0,100].
func ClampScore(v float64) int {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return int(math.Round(v))
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// extractJSON tries to extract JSON from text that might contain markdown or other formatting
func extractJSON(text string) string {
	text = strings.TrimSpace(text)

	startObj := strings.Index(text, "{")
	endObj := strings.LastIndex(text, "}")

	if startObj != -1 && endObj > startObj {
		return text[startObj : endObj+1]
	}

	return text
}
