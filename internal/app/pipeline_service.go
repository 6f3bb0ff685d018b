package app

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"brandreply/internal/ai"
	"brandreply/internal/model"
	"brandreply/internal/slack"
)

const (
	answerTemperature     = 0.7
	answerMaxOutputTokens = 2000

	// When question extraction fails outright, the first 500 characters of
	// the raw body stand in as a single pseudo-question so the inquiry is
	// not lost.
	fallbackQuestionRunes = 500
)

const extractionInstruction = `너는 이커머스 고객 문의 알림 이메일을 분석하는 역할이다.
아래 이메일 내용에서 실제 고객이 작성한 질문 문장만 추출하라.

조건:
- 인사말, 자동 안내 문구 제거
- 상품명, 주문번호 제거
- 질문이 여러 개면 모두 반환
- 원문 표현을 최대한 유지
- 질문이 없으면 빈 배열 반환

출력은 JSON 배열로 반환한다.
예시: ["질문1", "질문2"]`

const fallbackPersona = `당신은 브랜드의 고객 상담 전문가입니다.

답변 톤:
- 친절하고 전문적인 톤 유지
- 구체적이고 명확한 정보 제공
- 고객이 궁금해하는 핵심 정보를 명확하게 전달

답변 시 다음을 참고하세요:
1. 업로드된 브랜드 지식 문서를 기반으로 답변합니다.
2. 치수, 수량, 가격 등 구체적인 정보를 포함합니다.
3. 문서에 없는 정보는 추측하지 말고 명확하게 안내합니다.`

const (
	answerNoKnowledge    = "브랜드 지식이 등록되지 않아 답변을 생성할 수 없습니다."
	answerGenerateFailed = "답변 생성 중 오류가 발생했습니다."
	answerEmptyResponse  = "답변을 생성할 수 없습니다."
)

// PipelineModels selects which Gemini models the pipeline calls.
type PipelineModels struct {
	ExtractionModel string
	AnswerModel     string
}

// PipelineService runs the asynchronous inbound-email pipeline: extract the
// customer's questions, generate one RAG answer per question, store the
// result, and notify the tenant's Slack. The row's processing_status is the
// state machine: pending -> processing -> completed | failed, one-way.
type PipelineService struct {
	emails    InboundEmails
	configs   TenantConfigs
	stores    SearchStores
	tones     BrandTones
	generator ContentGenerator
	notifier  SlackNotifier
	models    PipelineModels
}

func NewPipelineService(
	emails InboundEmails,
	configs TenantConfigs,
	stores SearchStores,
	tones BrandTones,
	generator ContentGenerator,
	notifier SlackNotifier,
	models PipelineModels,
) *PipelineService {
	return &PipelineService{
		emails:    emails,
		configs:   configs,
		stores:    stores,
		tones:     tones,
		generator: generator,
		notifier:  notifier,
		models:    models,
	}
}

// Process runs the pipeline for one stored email. A failure anywhere past
// the initial fetch is recorded on the row as status failed and does not
// propagate; the returned error is non-nil only when the row could not be
// loaded or marked at all.
func (s *PipelineService) Process(ctx context.Context, emailID uint) error {
	email, err := s.emails.GetByID(emailID)
	if err != nil {
		return err
	}
	if email == nil {
		return fmt.Errorf("inbound email %d not found", emailID)
	}

	if err := s.emails.UpdateStatus(emailID, model.EmailStatusProcessing); err != nil {
		return err
	}

	if err := s.run(ctx, email); err != nil {
		log.Printf("email pipeline failed for email %d: %v", emailID, err)
		if markErr := s.emails.MarkFailed(emailID, err.Error()); markErr != nil {
			return fmt.Errorf("record pipeline failure: %w", markErr)
		}
	}
	return nil
}

func (s *PipelineService) run(ctx context.Context, email *model.InboundEmail) error {
	questions := s.extractQuestions(ctx, email.Body())

	answers, err := s.generateAnswers(ctx, email.UserID, questions)
	if err != nil {
		return err
	}

	if err := s.emails.MarkCompleted(email.ID, questions, answers); err != nil {
		return err
	}

	cfg, err := s.configs.GetByUserID(email.UserID)
	if err != nil {
		return err
	}
	if cfg == nil || cfg.SlackWebhookURL == nil || *cfg.SlackWebhookURL == "" {
		return nil
	}

	notification := slack.Notification{
		Subject:     email.Subject,
		Answers:     answers,
		GeneratedAt: time.Now(),
	}
	if err := s.notifier.Send(ctx, *cfg.SlackWebhookURL, notification); err != nil {
		return err
	}
	return s.emails.MarkSlackNotified(email.ID)
}

// extractQuestions asks the model for a JSON array of verbatim customer
// questions. An unusable response yields an empty list; a failed call
// degrades to a single pseudo-question cut from the raw body.
func (s *PipelineService) extractQuestions(ctx context.Context, body string) []string {
	trimmed := strings.TrimSpace(body)
	if trimmed == "" {
		return nil
	}

	prompt := extractionInstruction + "\n\n이메일 내용:\n" + body
	text, err := s.generator.GenerateContent(ctx, ai.GenerateInput{
		Model:    s.models.ExtractionModel,
		Contents: prompt,
	})
	if err != nil {
		log.Printf("question extraction failed, falling back to raw body: %v", err)
		return []string{truncateRunes(trimmed, fallbackQuestionRunes)}
	}
	return parseQuestionList(text)
}

func (s *PipelineService) generateAnswers(ctx context.Context, userID uint, questions []string) ([]model.QuestionAnswer, error) {
	if len(questions) == 0 {
		return []model.QuestionAnswer{}, nil
	}

	store, err := s.stores.GetByUserID(userID)
	if err != nil {
		return nil, err
	}
	if store == nil {
		answers := make([]model.QuestionAnswer, len(questions))
		for i, q := range questions {
			answers[i] = model.QuestionAnswer{Question: q, Answer: answerNoKnowledge}
		}
		return answers, nil
	}

	instruction := fallbackPersona
	tone, err := s.tones.GetDefaultByUserID(userID)
	if err != nil {
		log.Printf("default brand tone lookup failed for user %d: %v", userID, err)
	} else if tone != nil {
		instruction = tone.InstructionContent
	}

	// One RAG call per question, all in flight at once. A single failing
	// question gets the fixed fallback string; it must not sink the batch.
	answers := make([]model.QuestionAnswer, len(questions))
	var wg sync.WaitGroup
	for i, q := range questions {
		wg.Add(1)
		go func(i int, question string) {
			defer wg.Done()
			text, err := s.generator.GenerateContent(ctx, ai.GenerateInput{
				Model:                s.models.AnswerModel,
				SystemInstruction:    instruction,
				Contents:             question,
				Temperature:          answerTemperature,
				MaxOutputTokens:      answerMaxOutputTokens,
				FileSearchStoreNames: []string{store.StoreName},
			})
			if err != nil {
				log.Printf("answer generation failed for email question %d: %v", i, err)
				answers[i] = model.QuestionAnswer{Question: question, Answer: answerGenerateFailed}
				return
			}
			if text == "" {
				text = answerEmptyResponse
			}
			answers[i] = model.QuestionAnswer{Question: question, Answer: text}
		}(i, q)
	}
	wg.Wait()

	return answers, nil
}

// parseQuestionList parses the model's reply as a JSON string array,
// tolerating a Markdown code-fence wrapper. Anything that is not an array
// of strings yields an empty list.
func parseQuestionList(raw string) []string {
	text := strings.TrimSpace(raw)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)

	var questions []string
	if err := json.Unmarshal([]byte(text), &questions); err != nil {
		return nil
	}

	var out []string
	for _, q := range questions {
		if strings.TrimSpace(q) != "" {
			out = append(out, q)
		}
	}
	return out
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
