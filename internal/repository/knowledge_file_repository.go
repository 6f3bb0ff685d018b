package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"brandreply/internal/model"
)

type KnowledgeFileRepository struct {
	db *gorm.DB
}

func NewKnowledgeFileRepository(db *gorm.DB) *KnowledgeFileRepository {
	return &KnowledgeFileRepository{db: db}
}

func (r *KnowledgeFileRepository) Create(file *model.KnowledgeFile) error {
	if err := r.db.Create(file).Error; err != nil {
		return fmt.Errorf("create knowledge file failed: %w", err)
	}
	return nil
}

func (r *KnowledgeFileRepository) ListByUserID(userID uint) ([]model.KnowledgeFile, error) {
	var list []model.KnowledgeFile
	if err := r.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&list).Error; err != nil {
		return nil, fmt.Errorf("list knowledge files failed: %w", err)
	}
	return list, nil
}

func (r *KnowledgeFileRepository) GetByIDAndUserID(id, userID uint) (*model.KnowledgeFile, error) {
	var file model.KnowledgeFile
	if err := r.db.Where("id = ? AND user_id = ?", id, userID).First(&file).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get knowledge file failed: %w", err)
	}
	return &file, nil
}

func (r *KnowledgeFileRepository) DeleteByIDAndUserID(id, userID uint) error {
	if err := r.db.Where("id = ? AND user_id = ?", id, userID).Delete(&model.KnowledgeFile{}).Error; err != nil {
		return fmt.Errorf("delete knowledge file failed: %w", err)
	}
	return nil
}

// UpdateGeminiInfo records where the document landed in the file-search
// service once indexing completed.
func (r *KnowledgeFileRepository) UpdateGeminiInfo(id uint, storeName, documentName string) error {
	err := r.db.Model(&model.KnowledgeFile{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"gemini_store_name":    storeName,
			"gemini_document_name": documentName,
		}).Error
	if err != nil {
		return fmt.Errorf("update knowledge file gemini info failed: %w", err)
	}
	return nil
}
