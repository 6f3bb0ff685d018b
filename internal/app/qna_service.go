package app

import (
	"context"
	"errors"
	"strings"

	"brandreply/internal/ai"
)

var (
	ErrNoKnowledgeBase   = errors.New("no knowledge base registered for this user")
	ErrBrandToneNotFound = errors.New("brand tone not found")
)

// QnAService answers ad-hoc questions against the tenant's knowledge base.
// Unlike the email pipeline this runs synchronously inside the request.
type QnAService struct {
	stores    SearchStores
	tones     BrandTones
	generator ContentGenerator
	model     string
}

type AnswerInput struct {
	UserID      uint
	Query       string
	BrandToneID *uint
}

func NewQnAService(stores SearchStores, tones BrandTones, generator ContentGenerator, model string) *QnAService {
	return &QnAService{
		stores:    stores,
		tones:     tones,
		generator: generator,
		model:     model,
	}
}

// Answer generates a single RAG answer. Tone selection order: the explicitly
// requested tone (which must belong to the user), then the user's default
// tone, then the built-in persona.
func (s *QnAService) Answer(ctx context.Context, input AnswerInput) (string, error) {
	query := strings.TrimSpace(input.Query)
	if input.UserID == 0 || query == "" {
		return "", ErrInvalidInput
	}

	store, err := s.stores.GetByUserID(input.UserID)
	if err != nil {
		return "", err
	}
	if store == nil {
		return "", ErrNoKnowledgeBase
	}

	instruction := fallbackPersona
	if input.BrandToneID != nil {
		tone, err := s.tones.GetByIDAndUserID(*input.BrandToneID, input.UserID)
		if err != nil {
			return "", err
		}
		if tone == nil {
			return "", ErrBrandToneNotFound
		}
		instruction = tone.InstructionContent
	} else {
		tone, err := s.tones.GetDefaultByUserID(input.UserID)
		if err != nil {
			return "", err
		}
		if tone != nil {
			instruction = tone.InstructionContent
		}
	}

	text, err := s.generator.GenerateContent(ctx, ai.GenerateInput{
		Model:                s.model,
		SystemInstruction:    instruction,
		Contents:             query,
		Temperature:          answerTemperature,
		MaxOutputTokens:      answerMaxOutputTokens,
		FileSearchStoreNames: []string{store.StoreName},
	})
	if err != nil {
		return "", err
	}
	if text == "" {
		return answerEmptyResponse, nil
	}
	return text, nil
}
