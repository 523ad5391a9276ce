package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/stylianoueleni/festival-engine/internal/domain"
	"github.com/stylianoueleni/festival-engine/pkg/kafka"
	"github.com/stylianoueleni/festival-engine/pkg/retry"
)

// AuditPublisher defines the interface for publishing resale audit events
// and participant notifications
type AuditPublisher interface {
	// PublishAuditEvent publishes one resale audit log entry
	PublishAuditEvent(ctx context.Context, event *domain.AuditEvent) error

	// PublishNotification publishes a buyer or seller notification
	PublishNotification(ctx context.Context, notification *domain.Notification) error

	// Close closes the publisher
	Close() error
}

// KafkaAuditPublisher implements AuditPublisher using Kafka
type KafkaAuditPublisher struct {
	producer          *kafka.Producer
	dlq               retry.DLQPublisher
	auditTopic        string
	notificationTopic string
	serviceName       string
}

// AuditPublisherConfig contains configuration for the audit publisher
type AuditPublisherConfig struct {
	Brokers           []string
	AuditTopic        string
	NotificationTopic string
	ServiceName       string
	ClientID          string
}

// NewKafkaAuditPublisher creates a new Kafka audit publisher
func NewKafkaAuditPublisher(ctx context.Context, cfg *AuditPublisherConfig) (*KafkaAuditPublisher, error) {
	if cfg == nil {
		return nil, fmt.Errorf("audit publisher config is required")
	}

	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("kafka brokers are required")
	}

	auditTopic := cfg.AuditTopic
	if auditTopic == "" {
		auditTopic = "resale-audit"
	}

	notificationTopic := cfg.NotificationTopic
	if notificationTopic == "" {
		notificationTopic = "resale-notifications"
	}

	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "festival-engine"
	}

	clientID := cfg.ClientID
	if clientID == "" {
		clientID = "festival-engine-producer"
	}

	producer, err := kafka.NewProducer(ctx, &kafka.ProducerConfig{
		Brokers:       cfg.Brokers,
		ClientID:      clientID,
		MaxRetries:    3,
		RetryInterval: 2 * time.Second,
		BatchSize:     100,
		LingerMs:      10,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}

	dlq := retry.NewKafkaDLQPublisher(
		&retry.KafkaProducerAdapter{Producer: producer},
		&retry.DLQConfig{TopicSuffix: ".dlq", Source: serviceName},
	)

	return &KafkaAuditPublisher{
		producer:          producer,
		dlq:               dlq,
		auditTopic:        auditTopic,
		notificationTopic: notificationTopic,
		serviceName:       serviceName,
	}, nil
}

// PublishAuditEvent publishes one resale audit log entry. Messages are keyed
// by ticket ID so a ticket's history stays ordered within a partition.
func (p *KafkaAuditPublisher) PublishAuditEvent(ctx context.Context, event *domain.AuditEvent) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal audit event: %w", err)
	}

	headers := map[string]string{
		"action":       string(event.Action),
		"event_id":     event.ID,
		"source":       p.serviceName,
		"content_type": "application/json",
	}

	msg := &kafka.Message{
		Topic:     p.auditTopic,
		Key:       []byte(event.TicketID),
		Value:     value,
		Headers:   headers,
		Timestamp: event.OccurredAt,
	}

	if err := p.producer.Produce(ctx, msg); err != nil {
		p.moveToDLQ(ctx, msg, event.ID, err)
		return fmt.Errorf("failed to publish %s event: %w", event.Action, err)
	}

	return nil
}

// PublishNotification publishes a buyer or seller notification
func (p *KafkaAuditPublisher) PublishNotification(ctx context.Context, notification *domain.Notification) error {
	value, err := json.Marshal(notification)
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	headers := map[string]string{
		"notification_id": notification.ID,
		"source":          p.serviceName,
		"content_type":    "application/json",
	}

	msg := &kafka.Message{
		Topic:     p.notificationTopic,
		Key:       []byte(notification.VisitorID),
		Value:     value,
		Headers:   headers,
		Timestamp: notification.OccurredAt,
	}

	if err := p.producer.Produce(ctx, msg); err != nil {
		p.moveToDLQ(ctx, msg, notification.ID, err)
		return fmt.Errorf("failed to publish notification: %w", err)
	}

	return nil
}

// moveToDLQ parks an undeliverable message on the topic's dead letter
// queue. Best effort: the caller still reports the original failure.
func (p *KafkaAuditPublisher) moveToDLQ(ctx context.Context, msg *kafka.Message, id string, cause error) {
	now := time.Now()
	_ = p.dlq.PublishToDLQ(ctx, &retry.DLQMessage{
		ID:             id,
		OriginalTopic:  msg.Topic,
		OriginalKey:    string(msg.Key),
		Payload:        msg.Value,
		Headers:        msg.Headers,
		Error:          cause.Error(),
		Attempts:       1,
		FirstAttemptAt: now,
		LastAttemptAt:  now,
		MovedToDLQAt:   now,
		Source:         p.serviceName,
	})
}

// Close closes the audit publisher
func (p *KafkaAuditPublisher) Close() error {
	if p.producer != nil {
		p.producer.Close()
	}
	return nil
}

// NoOpAuditPublisher is a no-op implementation of AuditPublisher for testing
type NoOpAuditPublisher struct{}

// NewNoOpAuditPublisher creates a new no-op audit publisher
func NewNoOpAuditPublisher() *NoOpAuditPublisher {
	return &NoOpAuditPublisher{}
}

// PublishAuditEvent is a no-op
func (p *NoOpAuditPublisher) PublishAuditEvent(ctx context.Context, event *domain.AuditEvent) error {
	return nil
}

// PublishNotification is a no-op
func (p *NoOpAuditPublisher) PublishNotification(ctx context.Context, notification *domain.Notification) error {
	return nil
}

// Close is a no-op
func (p *NoOpAuditPublisher) Close() error {
	return nil
}
