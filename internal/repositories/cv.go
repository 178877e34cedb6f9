package repositories

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"alfredoptarigan/resume-tailor/internal/models"
)

type CVRepository interface {
	FindLatestBySession(sessionID string) (*models.CV, error)
	// SaveLatest replaces the session's most recent CV, or creates one when none exists.
	SaveLatest(sessionID, title, rawText string, structured datatypes.JSON) (*models.CV, error)
}

type cvRepository struct {
	db *gorm.DB
}

func NewCVRepository(db *gorm.DB) CVRepository {
	return &cvRepository{db: db}
}

func (r *cvRepository) FindLatestBySession(sessionID string) (*models.CV, error) {
	var cv models.CV
	err := r.db.
		Where("session_id = ?", sessionID).
		Order("updated_at DESC").
		First(&cv).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("cv for session: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find cv: %w", err)
	}
	return &cv, nil
}

func (r *cvRepository) SaveLatest(sessionID, title, rawText string, structured datatypes.JSON) (*models.CV, error) {
	var saved models.CV

	err := r.db.Transaction(func(tx *gorm.DB) error {
		var existing models.CV
		err := tx.Where("session_id = ?", sessionID).Order("updated_at DESC").First(&existing).Error

		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			saved = models.CV{
				ID:             uuid.New(),
				SessionID:      sessionID,
				Title:          title,
				RawText:        rawText,
				StructuredData: structured,
			}
			return tx.Create(&saved).Error
		case err != nil:
			return err
		}

		updates := map[string]interface{}{
			"title":           title,
			"raw_text":        rawText,
			"structured_data": structured,
			"updated_at":      time.Now(),
		}
		if err := tx.Model(&existing).Updates(updates).Error; err != nil {
			return err
		}

		existing.Title = title
		existing.RawText = rawText
		existing.StructuredData = structured
		saved = existing
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to save cv: %w", err)
	}

	return &saved, nil
}
