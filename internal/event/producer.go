package event

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/DaniAlencarrr/Athletix/internal/domain"
	pkgkafka "github.com/DaniAlencarrr/Athletix/pkg/kafka"
	"github.com/DaniAlencarrr/Athletix/pkg/logger"
)

// Kafka topic constants for account domain events.
const (
	TopicAccountRegistered   = "athletix.account.registered"
	TopicOnboardingCompleted = "athletix.onboarding.completed"
)

// AggregateTypeAccount is the aggregate every event refers to.
const AggregateTypeAccount = "account"

// SourceAthletix identifies events originating from this service.
const SourceAthletix = "athletix"

// AccountRegisteredData is the payload for an account.registered event.
type AccountRegisteredData struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// OnboardingCompletedData is the payload for an onboarding.completed event.
type OnboardingCompletedData struct {
	AccountID   string    `json:"account_id"`
	Role        string    `json:"role"`
	City        string    `json:"city"`
	Country     string    `json:"country"`
	CompletedAt time.Time `json:"completed_at"`
}

// Producer publishes account domain events to Kafka. A Producer built with a
// nil Kafka producer drops every event, which is how the service runs with
// KAFKA_ENABLED=false.
type Producer struct {
	kafka  *pkgkafka.Producer
	logger *slog.Logger
}

// NewProducer creates an event producer.
func NewProducer(kafka *pkgkafka.Producer, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

// Enabled reports whether events reach a broker.
func (p *Producer) Enabled() bool {
	return p != nil && p.kafka != nil
}

// PublishAccountRegistered publishes an account.registered event.
func (p *Producer) PublishAccountRegistered(ctx context.Context, a *domain.Account) error {
	data := AccountRegisteredData{ID: a.ID, Name: a.Name, Email: a.Email}
	return p.publish(ctx, TopicAccountRegistered, a.ID, data, nil)
}

// PublishOnboardingCompleted publishes an onboarding.completed event.
func (p *Producer) PublishOnboardingCompleted(ctx context.Context, a *domain.Account, sub domain.Submission) error {
	base := sub.Base()
	data := OnboardingCompletedData{
		AccountID:   a.ID,
		Role:        sub.Role().String(),
		City:        base.City,
		Country:     base.Country,
		CompletedAt: a.UpdatedAt,
	}
	return p.publish(ctx, TopicOnboardingCompleted, a.ID, data, map[string]string{"role": data.Role})
}

func (p *Producer) publish(ctx context.Context, topic, accountID string, data any, metadata map[string]string) error {
	if !p.Enabled() {
		if p != nil && p.logger != nil {
			p.logger.DebugContext(ctx, "kafka disabled, event dropped", slog.String("topic", topic))
		}
		return nil
	}

	evt, err := pkgkafka.NewEvent(topic,
		pkgkafka.Aggregate{ID: accountID, Type: AggregateTypeAccount},
		SourceAthletix, data,
		pkgkafka.WithCorrelationID(logger.CorrelationIDFromContext(ctx)),
		pkgkafka.WithMetadata(metadata),
	)
	if err != nil {
		return fmt.Errorf("create %s event: %w", topic, err)
	}

	if err := p.kafka.Publish(ctx, topic, evt); err != nil {
		return fmt.Errorf("publish %s event: %w", topic, err)
	}
	return nil
}
