package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"brandreply/internal/model"
)

// ErrDuplicateInboundAddress reports that another tenant already holds the
// inbound email address, detected via the unique index.
var ErrDuplicateInboundAddress = errors.New("inbound email address already exists")

type EmailSlackConfigRepository struct {
	db *gorm.DB
}

func NewEmailSlackConfigRepository(db *gorm.DB) *EmailSlackConfigRepository {
	return &EmailSlackConfigRepository{db: db}
}

func (r *EmailSlackConfigRepository) GetByUserID(userID uint) (*model.UserEmailSlackConfig, error) {
	var cfg model.UserEmailSlackConfig
	if err := r.db.Where("user_id = ?", userID).First(&cfg).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("query config by user failed: %w", err)
	}
	return &cfg, nil
}

func (r *EmailSlackConfigRepository) GetByInboundAddress(address string) (*model.UserEmailSlackConfig, error) {
	var cfg model.UserEmailSlackConfig
	if err := r.db.Where("inbound_email_address = ?", address).First(&cfg).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("query config by inbound address failed: %w", err)
	}
	return &cfg, nil
}

// Upsert replaces the user's config wholesale (one row per user). The unique
// index on inbound_email_address is the backstop against two tenants racing
// for the same address.
func (r *EmailSlackConfigRepository) Upsert(cfg *model.UserEmailSlackConfig) error {
	var existing model.UserEmailSlackConfig
	err := r.db.Where("user_id = ?", cfg.UserID).First(&existing).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("query config for upsert failed: %w", err)
		}
		if err := r.db.Create(cfg).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrDuplicateInboundAddress
			}
			return fmt.Errorf("create config failed: %w", err)
		}
		return nil
	}

	cfg.ID = existing.ID
	cfg.CreatedAt = existing.CreatedAt
	if err := r.db.Save(cfg).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicateInboundAddress
		}
		return fmt.Errorf("update config failed: %w", err)
	}
	return nil
}
