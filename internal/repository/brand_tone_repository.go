package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"brandreply/internal/model"
)

type BrandToneRepository struct {
	db *gorm.DB
}

func NewBrandToneRepository(db *gorm.DB) *BrandToneRepository {
	return &BrandToneRepository{db: db}
}

func (r *BrandToneRepository) Create(tone *model.BrandTone) error {
	if err := r.db.Create(tone).Error; err != nil {
		return fmt.Errorf("create brand tone failed: %w", err)
	}
	return nil
}

func (r *BrandToneRepository) ListByUserID(userID uint) ([]model.BrandTone, error) {
	var list []model.BrandTone
	if err := r.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&list).Error; err != nil {
		return nil, fmt.Errorf("list brand tones failed: %w", err)
	}
	return list, nil
}

func (r *BrandToneRepository) GetByIDAndUserID(id, userID uint) (*model.BrandTone, error) {
	var tone model.BrandTone
	if err := r.db.Where("id = ? AND user_id = ?", id, userID).First(&tone).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get brand tone failed: %w", err)
	}
	return &tone, nil
}

// GetDefaultByUserID returns the tenant's default tone. The exactly-one
// invariant is not enforced at write time, so when several rows carry the
// flag the most recently updated one wins.
func (r *BrandToneRepository) GetDefaultByUserID(userID uint) (*model.BrandTone, error) {
	var tone model.BrandTone
	err := r.db.Where("user_id = ? AND is_default = ?", userID, true).
		Order("updated_at DESC").
		First(&tone).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get default brand tone failed: %w", err)
	}
	return &tone, nil
}

func (r *BrandToneRepository) DeleteByIDAndUserID(id, userID uint) error {
	if err := r.db.Where("id = ? AND user_id = ?", id, userID).Delete(&model.BrandTone{}).Error; err != nil {
		return fmt.Errorf("delete brand tone failed: %w", err)
	}
	return nil
}
