package app

import (
	"context"
	"errors"
	"strings"
	"testing"

	"brandreply/internal/ai"
	"brandreply/internal/model"
)

func newPipelineFixture() (*PipelineService, *fakeEmails, *fakeConfigs, *fakeStores, *fakeTones, *fakeGenerator, *fakeNotifier) {
	emails := newFakeEmails()
	configs := newFakeConfigs()
	stores := newFakeStores()
	tones := newFakeTones()
	generator := &fakeGenerator{}
	notifier := &fakeNotifier{}
	svc := NewPipelineService(emails, configs, stores, tones, generator, notifier, PipelineModels{
		ExtractionModel: "extract-model",
		AnswerModel:     "answer-model",
	})
	return svc, emails, configs, stores, tones, generator, notifier
}

func seedEmail(emails *fakeEmails, userID uint, body string) uint {
	email := &model.InboundEmail{
		UserID:           userID,
		FromEmail:        "customer@example.com",
		Subject:          "문의드립니다",
		RawText:          body,
		ProcessingStatus: model.EmailStatusPending,
	}
	_ = emails.Create(email)
	return email.ID
}

func TestPipelineProcessHappyPath(t *testing.T) {
	svc, emails, configs, stores, _, generator, notifier := newPipelineFixture()

	configs.add(&model.UserEmailSlackConfig{
		UserID:          1,
		SlackWebhookURL: strPtr("https://hooks.slack.com/services/T/B/x"),
	})
	stores.byUser[1] = &model.FileSearchStore{UserID: 1, StoreName: "fileSearchStores/abc"}
	generator.generate = func(in ai.GenerateInput) (string, error) {
		if in.Model == "extract-model" {
			return `["배송은 언제 되나요?", "교환 가능한가요?"]`, nil
		}
		return "답변: " + in.Contents, nil
	}

	id := seedEmail(emails, 1, "안녕하세요. 배송은 언제 되나요? 그리고 교환 가능한가요?")
	if err := svc.Process(context.Background(), id); err != nil {
		t.Fatalf("Process returned error: %v", err)
	}

	row, _ := emails.GetByID(id)
	if row.ProcessingStatus != model.EmailStatusCompleted {
		t.Fatalf("status = %q, want completed (error: %q)", row.ProcessingStatus, row.ErrorMessage)
	}
	answers := row.Answers()
	if len(answers) != 2 {
		t.Fatalf("expected 2 answers, got %d", len(answers))
	}
	if answers[0].Question != "배송은 언제 되나요?" {
		t.Errorf("answers out of order: %q", answers[0].Question)
	}
	if answers[1].Answer != "답변: 교환 가능한가요?" {
		t.Errorf("unexpected second answer: %q", answers[1].Answer)
	}
	if row.SlackNotifiedAt == nil {
		t.Error("slack_notified_at not set")
	}
	if len(notifier.sent) != 1 {
		t.Fatalf("expected 1 slack notification, got %d", len(notifier.sent))
	}
	if notifier.sent[0].Subject != "문의드립니다" {
		t.Errorf("notification subject = %q", notifier.sent[0].Subject)
	}

	// Answer calls must be grounded on the tenant's store.
	for _, call := range generator.calls {
		if call.Model == "answer-model" && len(call.FileSearchStoreNames) != 1 {
			t.Errorf("answer call missing file search store: %+v", call)
		}
	}
}

func TestPipelineProcessNoStoreUsesFixedAnswer(t *testing.T) {
	svc, emails, _, _, _, generator, _ := newPipelineFixture()
	generator.generate = func(in ai.GenerateInput) (string, error) {
		if in.Model == "extract-model" {
			return `["재고 있나요?"]`, nil
		}
		t.Errorf("answer model must not be called without a store, got %+v", in)
		return "", nil
	}

	id := seedEmail(emails, 1, "재고 있나요?")
	if err := svc.Process(context.Background(), id); err != nil {
		t.Fatalf("Process returned error: %v", err)
	}

	row, _ := emails.GetByID(id)
	answers := row.Answers()
	if len(answers) != 1 || answers[0].Answer != answerNoKnowledge {
		t.Fatalf("expected fixed no-knowledge answer, got %+v", answers)
	}
}

func TestPipelineProcessExtractionFailureFallsBackToBody(t *testing.T) {
	svc, emails, _, stores, _, generator, _ := newPipelineFixture()
	stores.byUser[1] = &model.FileSearchStore{UserID: 1, StoreName: "fileSearchStores/abc"}
	generator.generate = func(in ai.GenerateInput) (string, error) {
		if in.Model == "extract-model" {
			return "", errors.New("model unavailable")
		}
		return "생성된 답변", nil
	}

	body := strings.Repeat("가", 600)
	id := seedEmail(emails, 1, body)
	if err := svc.Process(context.Background(), id); err != nil {
		t.Fatalf("Process returned error: %v", err)
	}

	row, _ := emails.GetByID(id)
	questions := row.Questions()
	if len(questions) != 1 {
		t.Fatalf("expected 1 fallback question, got %d", len(questions))
	}
	if got := len([]rune(questions[0])); got != 500 {
		t.Errorf("fallback question length = %d runes, want 500", got)
	}
}

func TestPipelineProcessPartialAnswerFailure(t *testing.T) {
	svc, emails, _, stores, _, generator, _ := newPipelineFixture()
	stores.byUser[1] = &model.FileSearchStore{UserID: 1, StoreName: "fileSearchStores/abc"}
	generator.generate = func(in ai.GenerateInput) (string, error) {
		if in.Model == "extract-model" {
			return `["q1", "q2"]`, nil
		}
		if in.Contents == "q1" {
			return "", errors.New("boom")
		}
		return "a2", nil
	}

	id := seedEmail(emails, 1, "q1 q2")
	if err := svc.Process(context.Background(), id); err != nil {
		t.Fatalf("Process returned error: %v", err)
	}

	row, _ := emails.GetByID(id)
	if row.ProcessingStatus != model.EmailStatusCompleted {
		t.Fatalf("one failing question must not fail the run, status = %q", row.ProcessingStatus)
	}
	answers := row.Answers()
	if answers[0].Answer != answerGenerateFailed {
		t.Errorf("failed question answer = %q, want fallback", answers[0].Answer)
	}
	if answers[1].Answer != "a2" {
		t.Errorf("second answer = %q", answers[1].Answer)
	}
}

func TestPipelineProcessSlackFailureMarksFailed(t *testing.T) {
	svc, emails, configs, stores, _, generator, notifier := newPipelineFixture()
	configs.add(&model.UserEmailSlackConfig{
		UserID:          1,
		SlackWebhookURL: strPtr("https://hooks.slack.com/services/T/B/x"),
	})
	stores.byUser[1] = &model.FileSearchStore{UserID: 1, StoreName: "fileSearchStores/abc"}
	generator.generate = func(in ai.GenerateInput) (string, error) {
		if in.Model == "extract-model" {
			return `["q"]`, nil
		}
		return "a", nil
	}
	notifier.sendErr = errors.New("slack webhook status 404")

	id := seedEmail(emails, 1, "q")
	if err := svc.Process(context.Background(), id); err != nil {
		t.Fatalf("Process returned error: %v", err)
	}

	row, _ := emails.GetByID(id)
	if row.ProcessingStatus != model.EmailStatusFailed {
		t.Fatalf("status = %q, want failed on slack delivery error", row.ProcessingStatus)
	}
	if row.ErrorMessage == "" {
		t.Error("error_message not recorded")
	}
}

func TestPipelineProcessNoSlackConfigured(t *testing.T) {
	svc, emails, _, stores, _, generator, notifier := newPipelineFixture()
	stores.byUser[1] = &model.FileSearchStore{UserID: 1, StoreName: "fileSearchStores/abc"}
	generator.generate = func(in ai.GenerateInput) (string, error) {
		if in.Model == "extract-model" {
			return `["q"]`, nil
		}
		return "a", nil
	}

	id := seedEmail(emails, 1, "q")
	if err := svc.Process(context.Background(), id); err != nil {
		t.Fatalf("Process returned error: %v", err)
	}

	row, _ := emails.GetByID(id)
	if row.ProcessingStatus != model.EmailStatusCompleted {
		t.Fatalf("status = %q, want completed", row.ProcessingStatus)
	}
	if row.SlackNotifiedAt != nil {
		t.Error("slack_notified_at set without a webhook")
	}
	if len(notifier.sent) != 0 {
		t.Errorf("unexpected slack delivery: %d", len(notifier.sent))
	}
}

func TestPipelineProcessDefaultToneUsedAsInstruction(t *testing.T) {
	svc, emails, _, stores, tones, generator, _ := newPipelineFixture()
	stores.byUser[1] = &model.FileSearchStore{UserID: 1, StoreName: "fileSearchStores/abc"}
	_ = tones.Create(&model.BrandTone{UserID: 1, Name: "친근한 톤", InstructionContent: "반말로 친근하게", IsDefault: true})
	generator.generate = func(in ai.GenerateInput) (string, error) {
		if in.Model == "extract-model" {
			return `["q"]`, nil
		}
		if in.SystemInstruction != "반말로 친근하게" {
			t.Errorf("system instruction = %q, want default tone", in.SystemInstruction)
		}
		return "a", nil
	}

	id := seedEmail(emails, 1, "q")
	if err := svc.Process(context.Background(), id); err != nil {
		t.Fatalf("Process returned error: %v", err)
	}
}

func TestParseQuestionList(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want int
	}{
		{"plain array", `["a", "b"]`, 2},
		{"fenced json", "```json\n[\"a\"]\n```", 1},
		{"bare fence", "```\n[\"a\", \"b\", \"c\"]\n```", 3},
		{"empty array", `[]`, 0},
		{"garbage", "죄송합니다, 질문을 찾을 수 없습니다.", 0},
		{"blank entries dropped", `["a", "  ", ""]`, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := parseQuestionList(tt.raw); len(got) != tt.want {
				t.Errorf("parseQuestionList(%q) = %v, want %d entries", tt.raw, got, tt.want)
			}
		})
	}
}
