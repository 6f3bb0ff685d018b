package app

import (
	"strings"

	"brandreply/internal/model"
)

// BrandToneService manages per-tenant answer personas. The instruction
// content becomes the system instruction of RAG answer calls.
type BrandToneService struct {
	tones BrandTones
}

type CreateBrandToneInput struct {
	UserID             uint
	Name               string
	Description        string
	InstructionContent string
	IsDefault          bool
}

func NewBrandToneService(tones BrandTones) *BrandToneService {
	return &BrandToneService{tones: tones}
}

func (s *BrandToneService) Create(input CreateBrandToneInput) (*model.BrandTone, error) {
	if input.UserID == 0 ||
		strings.TrimSpace(input.Name) == "" ||
		strings.TrimSpace(input.InstructionContent) == "" {
		return nil, ErrInvalidInput
	}

	tone := &model.BrandTone{
		UserID:             input.UserID,
		Name:               strings.TrimSpace(input.Name),
		Description:        strings.TrimSpace(input.Description),
		InstructionContent: input.InstructionContent,
		IsDefault:          input.IsDefault,
	}
	if err := s.tones.Create(tone); err != nil {
		return nil, err
	}
	return tone, nil
}

func (s *BrandToneService) ListByUserID(userID uint) ([]model.BrandTone, error) {
	if userID == 0 {
		return nil, ErrInvalidInput
	}
	return s.tones.ListByUserID(userID)
}

func (s *BrandToneService) GetByID(userID, toneID uint) (*model.BrandTone, error) {
	tone, err := s.tones.GetByIDAndUserID(toneID, userID)
	if err != nil {
		return nil, err
	}
	if tone == nil {
		return nil, ErrBrandToneNotFound
	}
	return tone, nil
}

func (s *BrandToneService) Delete(userID, toneID uint) error {
	tone, err := s.tones.GetByIDAndUserID(toneID, userID)
	if err != nil {
		return err
	}
	if tone == nil {
		return ErrBrandToneNotFound
	}
	return s.tones.DeleteByIDAndUserID(toneID, userID)
}
