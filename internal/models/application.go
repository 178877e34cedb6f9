package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type ApplicationStatus string

const (
	ApplicationStatusDraft     ApplicationStatus = "DRAFT"
	ApplicationStatusApplied   ApplicationStatus = "APPLIED"
	ApplicationStatusInterview ApplicationStatus = "INTERVIEW"
	ApplicationStatusRejected  ApplicationStatus = "REJECTED"
	ApplicationStatusOffer     ApplicationStatus = "OFFER"
)

type Tone string

const (
	ToneProfessional Tone = "PROFESSIONAL"
	ToneWarm         Tone = "WARM"
	ToneEnthusiastic Tone = "ENTHUSIASTIC"
	ToneFormal       Tone = "FORMAL"
)

const PurchaseTypeCV = "CV"

// CV is the latest pasted or uploaded résumé for a session.
type CV struct {
	ID             uuid.UUID      `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	SessionID      string         `gorm:"type:text;index;not null" json:"session_id"`
	Title          string         `gorm:"type:text" json:"title"`
	RawText        string         `gorm:"type:text" json:"raw_text"`
	StructuredData datatypes.JSON `gorm:"type:jsonb" json:"structured_data,omitempty"`
	CreatedAt      time.Time      `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt      time.Time      `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (CV) TableName() string {
	return "cvs"
}

type JobPosting struct {
	ID                 uuid.UUID      `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	SessionID          string         `gorm:"type:text;index;not null" json:"session_id"`
	Title              string         `gorm:"type:text" json:"title"`
	Company            string         `gorm:"type:text" json:"company"`
	Location           *string        `gorm:"type:text" json:"location,omitempty"`
	SourceURL          *string        `gorm:"type:text" json:"source_url,omitempty"`
	RawDescription     string         `gorm:"type:text" json:"raw_description"`
	CleanedDescription string         `gorm:"type:text" json:"cleaned_description"`
	Insights           datatypes.JSON `gorm:"type:jsonb" json:"insights,omitempty"`
	CreatedAt          time.Time      `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (JobPosting) TableName() string {
	return "job_postings"
}

type Application struct {
	ID              uuid.UUID         `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	SessionID       string            `gorm:"type:text;index;not null" json:"session_id"`
	CVID            uuid.UUID         `gorm:"type:uuid;not null" json:"cv_id"`
	JobPostingID    uuid.UUID         `gorm:"type:uuid;not null" json:"job_posting_id"`
	Status          ApplicationStatus `gorm:"type:text;not null;default:'DRAFT'" json:"status"`
	Tone            Tone              `gorm:"type:text" json:"tone"`
	GeneratedCVHTML string            `gorm:"type:text" json:"generated_cv_html,omitempty"`
	PreviewHTML     string            `gorm:"type:text" json:"preview_html"`
	StructuredCV    datatypes.JSON    `gorm:"type:jsonb" json:"structured_cv,omitempty"`
	ATSScore        int               `json:"ats_score"`
	ATSFeedback     datatypes.JSON    `gorm:"type:jsonb" json:"ats_feedback,omitempty"`
	CreatedAt       time.Time         `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt       time.Time         `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`

	// Relations
	JobPosting JobPosting `gorm:"foreignKey:JobPostingID" json:"job_posting"`
	CV         CV         `gorm:"foreignKey:CVID" json:"-"`
}

func (Application) TableName() string {
	return "applications"
}

// Purchase records a completed one-time payment for an application.
type Purchase struct {
	ID              uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	SessionID       string    `gorm:"type:text;index" json:"session_id"`
	ApplicationID   uuid.UUID `gorm:"type:uuid;index;not null" json:"application_id"`
	Type            string    `gorm:"type:text;not null" json:"type"`
	AmountTotal     int64     `json:"amount_total"`
	Currency        string    `gorm:"type:text" json:"currency"`
	PaymentIntentID string    `gorm:"type:text;uniqueIndex" json:"payment_intent_id"`
	CreatedAt       time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (Purchase) TableName() string {
	return "purchases"
}
