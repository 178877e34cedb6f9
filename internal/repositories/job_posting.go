package repositories

import (
	"fmt"

	"gorm.io/gorm"

	"alfredoptarigan/resume-tailor/internal/models"
)

type JobPostingRepository interface {
	Create(posting *models.JobPosting) error
}

type jobPostingRepository struct {
	db *gorm.DB
}

func NewJobPostingRepository(db *gorm.DB) JobPostingRepository {
	return &jobPostingRepository{db: db}
}

func (r *jobPostingRepository) Create(posting *models.JobPosting) error {
	if err := r.db.Create(posting).Error; err != nil {
		return fmt.Errorf("failed to create job posting: %w", err)
	}
	return nil
}
