package repository

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"brandreply/internal/model"
)

type InboundEmailRepository struct {
	db *gorm.DB
}

func NewInboundEmailRepository(db *gorm.DB) *InboundEmailRepository {
	return &InboundEmailRepository{db: db}
}

func (r *InboundEmailRepository) Create(email *model.InboundEmail) error {
	if err := r.db.Create(email).Error; err != nil {
		return fmt.Errorf("create inbound email failed: %w", err)
	}
	return nil
}

func (r *InboundEmailRepository) GetByID(id uint) (*model.InboundEmail, error) {
	var email model.InboundEmail
	if err := r.db.First(&email, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get inbound email failed: %w", err)
	}
	return &email, nil
}

func (r *InboundEmailRepository) ListByUserID(userID uint) ([]model.InboundEmail, error) {
	var list []model.InboundEmail
	if err := r.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&list).Error; err != nil {
		return nil, fmt.Errorf("list inbound emails failed: %w", err)
	}
	return list, nil
}

func (r *InboundEmailRepository) UpdateStatus(id uint, status string) error {
	err := r.db.Model(&model.InboundEmail{}).
		Where("id = ?", id).
		Update("processing_status", status).Error
	if err != nil {
		return fmt.Errorf("update inbound email status failed: %w", err)
	}
	return nil
}

// MarkCompleted stores the pipeline result and the completion timestamp.
func (r *InboundEmailRepository) MarkCompleted(id uint, questions []string, answers []model.QuestionAnswer) error {
	var email model.InboundEmail
	email.SetQuestions(questions)
	email.SetAnswers(answers)
	now := time.Now()

	err := r.db.Model(&model.InboundEmail{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"extracted_questions": email.ExtractedQuestions,
			"ai_answers":          email.AIAnswers,
			"processing_status":   model.EmailStatusCompleted,
			"processed_at":        &now,
		}).Error
	if err != nil {
		return fmt.Errorf("mark inbound email completed failed: %w", err)
	}
	return nil
}

func (r *InboundEmailRepository) MarkFailed(id uint, message string) error {
	if runes := []rune(message); len(runes) > 500 {
		message = string(runes[:500])
	}
	err := r.db.Model(&model.InboundEmail{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"processing_status": model.EmailStatusFailed,
			"error_message":     message,
		}).Error
	if err != nil {
		return fmt.Errorf("mark inbound email failed failed: %w", err)
	}
	return nil
}

func (r *InboundEmailRepository) MarkSlackNotified(id uint) error {
	now := time.Now()
	err := r.db.Model(&model.InboundEmail{}).
		Where("id = ?", id).
		Update("slack_notified_at", &now).Error
	if err != nil {
		return fmt.Errorf("mark inbound email slack notified failed: %w", err)
	}
	return nil
}
