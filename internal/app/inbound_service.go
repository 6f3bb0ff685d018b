package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"brandreply/internal/model"
	"brandreply/internal/pkg/mailaddr"
	"brandreply/internal/platform/rabbitmq"
)

var ErrTenantNotFound = errors.New("recipient email address not configured for any user")

// InboundEmailService handles webhook deliveries from the mail provider:
// resolve the tenant by recipient address, persist the raw email as pending,
// and enqueue a processing job. The HTTP response never waits for the
// pipeline; providers enforce short webhook timeouts.
type InboundEmailService struct {
	resolver TenantResolver
	emails   InboundEmails
	queue    EmailJobQueue
}

type ReceiveEmailInput struct {
	From    string
	To      string
	Subject string
	Text    string
	HTML    string
}

func NewInboundEmailService(resolver TenantResolver, emails InboundEmails, queue EmailJobQueue) *InboundEmailService {
	return &InboundEmailService{
		resolver: resolver,
		emails:   emails,
		queue:    queue,
	}
}

func (s *InboundEmailService) Receive(ctx context.Context, input ReceiveEmailInput) (*model.InboundEmail, error) {
	if strings.TrimSpace(input.From) == "" || strings.TrimSpace(input.To) == "" {
		return nil, ErrInvalidInput
	}

	address := mailaddr.ExtractAddress(input.To)
	cfg, err := s.resolver.ResolveByInboundAddress(ctx, address)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		return nil, ErrTenantNotFound
	}

	subject := strings.TrimSpace(input.Subject)
	if subject == "" {
		subject = "(No subject)"
	}

	email := &model.InboundEmail{
		UserID:           cfg.UserID,
		FromEmail:        input.From,
		Subject:          subject,
		RawText:          input.Text,
		RawHTML:          input.HTML,
		ProcessingStatus: model.EmailStatusPending,
	}
	if err := s.emails.Create(email); err != nil {
		return nil, err
	}

	if err := s.queue.Publish(ctx, rabbitmq.EmailJob{EmailID: email.ID, UserID: cfg.UserID}); err != nil {
		// The row stays pending; without a job it will never be picked up,
		// so surface the failure to the provider.
		return nil, fmt.Errorf("enqueue email job failed: %w", err)
	}
	return email, nil
}

// ListByUserID returns the tenant's inbound emails for the dashboard.
func (s *InboundEmailService) ListByUserID(userID uint) ([]model.InboundEmail, error) {
	if userID == 0 {
		return nil, ErrInvalidInput
	}
	return s.emails.ListByUserID(userID)
}
