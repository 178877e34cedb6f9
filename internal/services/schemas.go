package services

type SchemaKind string

const (
	SchemaParsedCV     SchemaKind = "parsed_cv"
	SchemaATSRewrite   SchemaKind = "ats_rewrite"
	SchemaJDMatch      SchemaKind = "jd_match"
	SchemaCoverLetter  SchemaKind = "cover_letter"
	SchemaJobInsights  SchemaKind = "job_insights"
	SchemaStructuredCV SchemaKind = "structured_cv"
	SchemaATSScore     SchemaKind = "ats_score"
)

var schemaSources = map[SchemaKind]string{
	SchemaParsedCV:     parsedCVSchema,
	SchemaATSRewrite:   atsRewriteSchema,
	SchemaJDMatch:      jdMatchSchema,
	SchemaCoverLetter:  coverLetterSchema,
	SchemaJobInsights:  jobInsightsSchema,
	SchemaStructuredCV: structuredCVSchema,
	SchemaATSScore:     atsScoreSchema,
}

const parsedCVSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["summary", "skills", "education"],
  "properties": {
    "summary": {"type": ["string", "null"]},
    "skills": {"type": ["array", "null"], "items": {"type": "string"}},
    "education": {"type": ["array", "null"], "items": {"type": "string"}},
    "jobs": {
      "type": ["array", "null"],
      "items": {
        "type": "object",
        "required": ["title", "company", "start_date", "end_date", "bullets"],
        "properties": {
          "title": {"type": ["string", "null"]},
          "company": {"type": ["string", "null"]},
          "start_date": {"type": ["string", "null"]},
          "end_date": {"type": ["string", "null"]},
          "bullets": {"type": ["array", "null"], "items": {"type": "string"}}
        }
      }
    }
  }
}`

const atsRewriteSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["optimized_html"],
  "properties": {
    "optimized_html": {"type": "string"},
    "keywords_used": {"type": "array", "items": {"type": "string"}},
    "missing_keywords": {"type": "array", "items": {"type": "string"}},
    "ats_score": {"type": "number"}
  }
}`

const jdMatchSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "properties": {
    "missing_keywords": {"type": "array", "items": {"type": "string"}},
    "matched_keywords": {"type": "array", "items": {"type": "string"}},
    "rewritten_bullets": {"type": "array", "items": {"type": "string"}},
    "improved_summary": {"type": "string"}
  }
}`

const coverLetterSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["cover_letter_html"],
  "properties": {
    "cover_letter_html": {"type": "string"}
  }
}`

const jobInsightsSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["cleanedDescription"],
  "properties": {
    "cleanedDescription": {"type": "string"},
    "roleTitle": {"type": ["string", "null"]},
    "seniority": {"type": ["string", "null"]},
    "companyTone": {"type": ["string", "null"]},
    "summary": {"type": ["string", "null"]},
    "mustHaveSkills": {"type": ["array", "null"], "items": {"type": "string"}},
    "niceToHaveSkills": {"type": ["array", "null"], "items": {"type": "string"}},
    "responsibilities": {"type": ["array", "null"], "items": {"type": "string"}},
    "keywords": {"type": ["array", "null"], "items": {"type": "string"}}
  }
}`

const structuredCVSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["fullName", "headline", "summary"],
  "definitions": {
    "optString": {"type": ["string", "null"]},
    "stringList": {"type": "array", "items": {"type": "string"}}
  },
  "properties": {
    "fullName": {"type": "string"},
    "headline": {"type": "string"},
    "summary": {"type": "string"},
    "contact": {
      "type": "object",
      "properties": {
        "location": {"$ref": "#/definitions/optString"},
        "phone": {"$ref": "#/definitions/optString"},
        "email": {"$ref": "#/definitions/optString"},
        "linkedin": {"$ref": "#/definitions/optString"},
        "github": {"$ref": "#/definitions/optString"},
        "website": {"$ref": "#/definitions/optString"}
      }
    },
    "skillsByCategory": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["category"],
        "properties": {
          "category": {"type": "string"},
          "skills": {"$ref": "#/definitions/stringList"}
        }
      }
    },
    "experiences": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["roleTitle", "company"],
        "properties": {
          "roleTitle": {"type": "string"},
          "company": {"type": "string"},
          "location": {"$ref": "#/definitions/optString"},
          "startDate": {"$ref": "#/definitions/optString"},
          "endDate": {"$ref": "#/definitions/optString"},
          "bullets": {"$ref": "#/definitions/stringList"}
        }
      }
    },
    "projects": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["name", "description"],
        "properties": {
          "name": {"type": "string"},
          "description": {"type": "string"},
          "bullets": {"$ref": "#/definitions/stringList"}
        }
      }
    },
    "education": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["institution", "degree"],
        "properties": {
          "institution": {"type": "string"},
          "degree": {"type": "string"},
          "location": {"$ref": "#/definitions/optString"},
          "startDate": {"$ref": "#/definitions/optString"},
          "endDate": {"$ref": "#/definitions/optString"}
        }
      }
    },
    "certifications": {"$ref": "#/definitions/stringList"},
    "interests": {"$ref": "#/definitions/stringList"}
  }
}`

const atsScoreSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["beforeScore", "afterScore", "whatImproved"],
  "properties": {
    "beforeScore": {"type": "number"},
    "afterScore": {"type": "number"},
    "whatImproved": {"type": "array", "items": {"type": "string"}},
    "remainingGaps": {"type": "array", "items": {"type": "string"}}
  }
}`
