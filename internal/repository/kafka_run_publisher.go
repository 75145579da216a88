package repository

import (
	"context"
	"time"

	"MonteSim/internal/domain/models"
	"MonteSim/internal/domain/repository"
	"MonteSim/pkg/logger"
)

// eventProducer is satisfied by *kafka.Producer.
type eventProducer interface {
	Publish(ctx context.Context, topic string, key []byte, value interface{}) error
	Close() error
}

// KafkaRunPublisher ships finished runs to a Kafka topic keyed by symbol. It
// doubles as a runner listener.
type KafkaRunPublisher struct {
	producer eventProducer
	topic    string
	timeout  time.Duration
	l        *logger.Logger
}

// NewKafkaRunPublisher creates Kafka publisher.
func NewKafkaRunPublisher(producer eventProducer, topic string, l *logger.Logger) *KafkaRunPublisher {
	if l == nil {
		l = logger.Nop()
	}
	return &KafkaRunPublisher{producer: producer, topic: topic, timeout: 5 * time.Second, l: l}
}

var _ repository.RunPublisher = (*KafkaRunPublisher)(nil)

func (p *KafkaRunPublisher) PublishRun(ctx context.Context, snap models.RunSnapshot) error {
	return p.producer.Publish(ctx, p.topic, []byte(snap.Symbol), models.NewRunEvent(snap))
}

// OnUpdate publishes snap. Failures are logged, never returned to the runner.
func (p *KafkaRunPublisher) OnUpdate(snap models.RunSnapshot) {
	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()
	if err := p.PublishRun(ctx, snap); err != nil {
		p.l.Warn("publish run event failed",
			logger.String("topic", p.topic),
			logger.String("symbol", snap.Symbol),
			logger.String("kind", string(snap.Kind)),
			logger.Error(err),
		)
	}
}

func (p *KafkaRunPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}
