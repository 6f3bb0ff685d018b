package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

// EmailJob is one unit of inbound-email processing work. The job carries the
// persisted row id, so a consumer crash loses only the in-flight attempt,
// never the email itself.
type EmailJob struct {
	EmailID uint `json:"email_id"`
	UserID  uint `json:"user_id"`
}

type EmailJobPublisher struct {
	conn      *amqp.Connection
	queueName string
}

func NewEmailJobPublisher(conn *amqp.Connection, queueName string) *EmailJobPublisher {
	return &EmailJobPublisher{
		conn:      conn,
		queueName: queueName,
	}
}

func (p *EmailJobPublisher) Publish(ctx context.Context, job EmailJob) error {
	ch, err := p.conn.Channel()
	if err != nil {
		return fmt.Errorf("open rabbitmq channel failed: %w", err)
	}
	defer ch.Close()

	_, err = ch.QueueDeclare(
		p.queueName,
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("declare queue failed: %w", err)
	}

	payload, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal email job failed: %w", err)
	}

	if err := ch.PublishWithContext(
		ctx,
		"",
		p.queueName,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         payload,
			DeliveryMode: amqp.Persistent,
		},
	); err != nil {
		return fmt.Errorf("publish email job failed: %w", err)
	}
	return nil
}
