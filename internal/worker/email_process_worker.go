package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"

	"brandreply/internal/platform/rabbitmq"
)

// EmailPipeline is the processing entrypoint the worker drives for each job.
type EmailPipeline interface {
	Process(ctx context.Context, emailID uint) error
}

// EmailProcessWorker consumes inbound-email jobs and runs the answer
// pipeline. Pipeline failures are recorded on the email row by the pipeline
// itself, so a delivery is acked whenever the outcome was persisted; only
// undecodable payloads and persistence failures are nacked.
type EmailProcessWorker struct {
	conn      *amqp.Connection
	pipeline  EmailPipeline
	queueName string

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewEmailProcessWorker(conn *amqp.Connection, pipeline EmailPipeline, queueName string) *EmailProcessWorker {
	return &EmailProcessWorker{
		conn:      conn,
		pipeline:  pipeline,
		queueName: queueName,
	}
}

func (w *EmailProcessWorker) Start(ctx context.Context) error {
	if w.cancel != nil {
		return nil
	}

	workerCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	ch, err := w.conn.Channel()
	if err != nil {
		cancel()
		return fmt.Errorf("open worker channel failed: %w", err)
	}

	_, err = ch.QueueDeclare(
		w.queueName,
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		_ = ch.Close()
		cancel()
		return fmt.Errorf("declare worker queue failed: %w", err)
	}

	deliveries, err := ch.Consume(
		w.queueName,
		"",
		false,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		_ = ch.Close()
		cancel()
		return fmt.Errorf("consume queue failed: %w", err)
	}

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer ch.Close()

		for {
			select {
			case <-workerCtx.Done():
				return
			case d, ok := <-deliveries:
				if !ok {
					return
				}

				var job rabbitmq.EmailJob
				if err := json.Unmarshal(d.Body, &job); err != nil {
					log.Printf("worker decode email job failed: %v", err)
					_ = d.Nack(false, false)
					continue
				}

				if err := w.pipeline.Process(workerCtx, job.EmailID); err != nil {
					log.Printf("worker process email %d failed: %v", job.EmailID, err)
					_ = d.Nack(false, false)
					continue
				}

				_ = d.Ack(false)
			}
		}
	}()

	return nil
}

func (w *EmailProcessWorker) Close() {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
}
