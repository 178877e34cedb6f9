package repositories

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"alfredoptarigan/resume-tailor/internal/models"
)

type PurchaseRepository interface {
	// Create is idempotent on the payment intent, so webhook redeliveries are harmless.
	Create(purchase *models.Purchase) error
	Exists(applicationID uuid.UUID, purchaseType string) (bool, error)
}

type purchaseRepository struct {
	db *gorm.DB
}

func NewPurchaseRepository(db *gorm.DB) PurchaseRepository {
	return &purchaseRepository{db: db}
}

func (r *purchaseRepository) Create(purchase *models.Purchase) error {
	err := r.db.
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "payment_intent_id"}}, DoNothing: true}).
		Create(purchase).Error
	if err != nil {
		return fmt.Errorf("failed to create purchase: %w", err)
	}
	return nil
}

func (r *purchaseRepository) Exists(applicationID uuid.UUID, purchaseType string) (bool, error) {
	var count int64
	err := r.db.Model(&models.Purchase{}).
		Where("application_id = ? AND type = ?", applicationID, purchaseType).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check purchase: %w", err)
	}
	return count > 0, nil
}
