package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/zentrya/ingest/internal/config"
	"github.com/zentrya/ingest/internal/metrics"
	"github.com/zentrya/ingest/pkg/models"
)

const (
	IngestQueueName = "ingest_jobs"
	ExchangeName    = "ingest"
)

// IngestRequest is the message the API publishes and the worker consumes.
type IngestRequest struct {
	JobID      string             `json:"job_id"`
	ContentID  int64              `json:"content_id"`
	Kind       models.ContentKind `json:"content_kind"`
	SourcePath string             `json:"source_path"`
}

// Queue provides message queue operations for ingest jobs
type Queue struct {
	conn    *amqp.Connection
	channel *amqp.Channel
}

// New creates a new queue client, declaring the ingest exchange and queue
func New(cfg config.QueueConfig) (*Queue, error) {
	url := fmt.Sprintf("amqp://%s:%s@%s:%d%s",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Vhost)

	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	err = channel.ExchangeDeclare(
		ExchangeName,
		"direct",
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	_, err = channel.QueueDeclare(
		IngestQueueName,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare queue: %w", err)
	}

	err = channel.QueueBind(
		IngestQueueName,
		IngestQueueName,
		ExchangeName,
		false,
		nil,
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to bind queue: %w", err)
	}

	return &Queue{
		conn:    conn,
		channel: channel,
	}, nil
}

// Close closes the queue connection
func (q *Queue) Close() error {
	if q.channel != nil {
		q.channel.Close()
	}
	if q.conn != nil {
		return q.conn.Close()
	}
	return nil
}

// Publish enqueues an ingest request
func (q *Queue) Publish(ctx context.Context, req *IngestRequest) error {
	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("failed to marshal ingest request: %w", err)
	}

	err = q.channel.PublishWithContext(ctx,
		ExchangeName,
		IngestQueueName,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			DeliveryMode: amqp.Persistent,
			ContentType:  "application/json",
			Body:         body,
			Timestamp:    time.Now(),
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish ingest request: %w", err)
	}

	if depth, err := q.Depth(); err == nil {
		metrics.QueueDepth.Set(float64(depth))
	}
	return nil
}

// Consume delivers ingest requests to the handler one at a time. Handler
// errors nack without requeue: an ingest that failed once fails again, and
// the job record already carries the error for pollers.
func (q *Queue) Consume(ctx context.Context, handler func(*IngestRequest) error) error {
	err := q.channel.Qos(
		1,     // prefetch count
		0,     // prefetch size
		false, // global
	)
	if err != nil {
		return fmt.Errorf("failed to set QoS: %w", err)
	}

	msgs, err := q.channel.Consume(
		IngestQueueName,
		"",    // consumer
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,   // args
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}

				var req IngestRequest
				if err := json.Unmarshal(msg.Body, &req); err != nil {
					msg.Nack(false, false)
					continue
				}

				if err := handler(&req); err != nil {
					msg.Nack(false, false)
				} else {
					msg.Ack(false)
				}

				if depth, err := q.Depth(); err == nil {
					metrics.QueueDepth.Set(float64(depth))
				}
			}
		}
	}()

	return nil
}

// Depth returns the number of messages waiting in the queue
func (q *Queue) Depth() (int, error) {
	info, err := q.channel.QueueInspect(IngestQueueName)
	if err != nil {
		return 0, fmt.Errorf("failed to inspect queue: %w", err)
	}
	return info.Messages, nil
}
