package models

import "encoding/json"

type ParseCVResponse struct {
	ResumeID string `json:"resume_id"`
}

type ATSRewriteRequest struct {
	ResumeID string `json:"resume_id" validate:"required,uuid"`
	Industry string `json:"industry"`
	Role     string `json:"role"`
}

type JDMatchRequest struct {
	ResumeID string `json:"resume_id" validate:"required,uuid"`
	JDText   string `json:"jd_text" validate:"required"`
}

type CoverLetterRequest struct {
	ResumeID string `json:"resume_id" validate:"required,uuid"`
	JDText   string `json:"jd_text"`
	Industry string `json:"industry"`
	Role     string `json:"role"`
	Tone     string `json:"tone"`
}

type ExportPDFRequest struct {
	HTML     string `json:"html" validate:"required"`
	FileName string `json:"fileName"`
}

type SaveCVRequest struct {
	Title          string          `json:"title" validate:"required,min=2,max=120"`
	RawText        string          `json:"rawText" validate:"required,min=20"`
	StructuredData json.RawMessage `json:"structuredData"`
}

// GenerateApplicationRequest is the full tailored-generation input.
type GenerateApplicationRequest struct {
	Title       string `json:"title" validate:"required,min=2"`
	Company     string `json:"company" validate:"required,min=2"`
	Location    string `json:"location"`
	SourceURL   string `json:"sourceUrl" validate:"omitempty,url"`
	Description string `json:"description" validate:"required,min=30"`
	Tone        Tone   `json:"tone" validate:"required,oneof=PROFESSIONAL WARM ENTHUSIASTIC FORMAL"`
	CVTitle     string `json:"cvTitle" validate:"omitempty,min=2"`
	CVText      string `json:"cvText" validate:"required,min=20"`
}

type UpdateApplicationStatusRequest struct {
	Status ApplicationStatus `json:"status" validate:"required,oneof=DRAFT APPLIED INTERVIEW REJECTED OFFER"`
}

type ApplicationView struct {
	Application *Application `json:"application"`
	Unlocked    bool         `json:"unlocked"`
}
