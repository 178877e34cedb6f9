package repositories

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"alfredoptarigan/resume-tailor/internal/models"
)

type ResumeRepository interface {
	Create(resume *models.Resume) error
	FindByID(id uuid.UUID) (*models.Resume, error)
	Update(id uuid.UUID, data *ResumeUpdateData) error
}

// ResumeUpdateData lists the fields a flow may replace. Nil fields are left untouched.
type ResumeUpdateData struct {
	OptimizedResumeHTML      *string
	OptimizedCoverLetterHTML *string
	ATSScore                 *int
	ATSMatchedKeywords       []string
	ATSMissingKeywords       []string
	JDText                   *string
	DownloadToken            *string
	PaymentStatus            *models.PaymentStatus
}

type resumeRepository struct {
	db *gorm.DB
}

func NewResumeRepository(db *gorm.DB) ResumeRepository {
	return &resumeRepository{db: db}
}

// Create implements ResumeRepository.
func (r *resumeRepository) Create(resume *models.Resume) error {
	if err := r.db.Create(resume).Error; err != nil {
		return fmt.Errorf("failed to create resume: %w", err)
	}

	return nil
}

// FindByID implements ResumeRepository.
func (r *resumeRepository) FindByID(id uuid.UUID) (*models.Resume, error) {
	var resume models.Resume
	if err := r.db.Where("id = ?", id).First(&resume).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("resume %s: %w", id, ErrNotFound)
		}

		return nil, fmt.Errorf("failed to find resume: %w", err)
	}

	return &resume, nil
}

// Update implements ResumeRepository.
func (r *resumeRepository) Update(id uuid.UUID, data *ResumeUpdateData) error {
	updates, err := data.toMap()
	if err != nil {
		return err
	}

	result := r.db.Model(&models.Resume{}).
		Where("id = ?", id).
		Updates(updates)

	if result.Error != nil {
		return fmt.Errorf("failed to update resume: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return fmt.Errorf("resume %s: %w", id, ErrNotFound)
	}

	return nil
}

func (d *ResumeUpdateData) toMap() (map[string]interface{}, error) {
	updates := map[string]interface{}{
		"updated_at": time.Now(),
	}

	if d.OptimizedResumeHTML != nil {
		updates["optimized_resume_html"] = *d.OptimizedResumeHTML
	}
	if d.OptimizedCoverLetterHTML != nil {
		updates["optimized_cover_letter_html"] = *d.OptimizedCoverLetterHTML
	}
	if d.ATSScore != nil {
		updates["ats_score"] = *d.ATSScore
	}
	if d.ATSMatchedKeywords != nil {
		raw, err := toJSON(d.ATSMatchedKeywords)
		if err != nil {
			return nil, err
		}
		updates["ats_matched_keywords"] = raw
	}
	if d.ATSMissingKeywords != nil {
		raw, err := toJSON(d.ATSMissingKeywords)
		if err != nil {
			return nil, err
		}
		updates["ats_missing_keywords"] = raw
	}
	if d.JDText != nil {
		updates["jd_text"] = *d.JDText
	}
	if d.DownloadToken != nil {
		updates["download_token"] = *d.DownloadToken
	}
	if d.PaymentStatus != nil {
		updates["payment_status"] = *d.PaymentStatus
	}

	return updates, nil
}

func toJSON(v interface{}) (datatypes.JSON, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode json column: %w", err)
	}
	return datatypes.JSON(raw), nil
}
