package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type PaymentStatus string

const (
	PaymentStatusInit PaymentStatus = "INIT"
	PaymentStatusPaid PaymentStatus = "PAID"
)

// Resume is the keyed record behind the upload, rewrite, match and cover letter flows.
type Resume struct {
	ID                       uuid.UUID      `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	CVRawText                string         `gorm:"type:text" json:"cv_raw_text"`
	CVParsedJSON             datatypes.JSON `gorm:"type:jsonb" json:"cv_parsed_json"`
	OptimizedResumeHTML      *string        `gorm:"type:text" json:"optimized_resume_html,omitempty"`
	OptimizedCoverLetterHTML *string        `gorm:"type:text" json:"optimized_cover_letter_html,omitempty"`
	ATSScore                 *int           `json:"ats_score,omitempty"`
	ATSMatchedKeywords       datatypes.JSON `gorm:"type:jsonb" json:"ats_matched_keywords,omitempty"`
	ATSMissingKeywords       datatypes.JSON `gorm:"type:jsonb" json:"ats_missing_keywords,omitempty"`
	JDText                   *string        `gorm:"type:text" json:"jd_text,omitempty"`
	DownloadToken            string         `gorm:"type:text" json:"-"`
	PaymentStatus            PaymentStatus  `gorm:"type:text;not null;default:'INIT'" json:"payment_status"`
	CreatedAt                time.Time      `gorm:"type:timestamp;default:now()" json:"created_at"`
	UpdatedAt                time.Time      `gorm:"type:timestamp;default:now()" json:"updated_at"`
}

func (r *Resume) TableName() string {
	return "resumes"
}

// IsPaid reports whether the payment collaborator has confirmed this record.
func (r *Resume) IsPaid() bool {
	return r.PaymentStatus == PaymentStatusPaid
}
