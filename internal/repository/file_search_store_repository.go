package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"brandreply/internal/model"
)

type FileSearchStoreRepository struct {
	db *gorm.DB
}

func NewFileSearchStoreRepository(db *gorm.DB) *FileSearchStoreRepository {
	return &FileSearchStoreRepository{db: db}
}

func (r *FileSearchStoreRepository) Create(store *model.FileSearchStore) error {
	if err := r.db.Create(store).Error; err != nil {
		return fmt.Errorf("create file search store failed: %w", err)
	}
	return nil
}

func (r *FileSearchStoreRepository) GetByUserID(userID uint) (*model.FileSearchStore, error) {
	var store model.FileSearchStore
	if err := r.db.Where("user_id = ?", userID).First(&store).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("query file search store failed: %w", err)
	}
	return &store, nil
}
