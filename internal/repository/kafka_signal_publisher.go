package repository

import (
	"context"

	"github.com/frontboat/agent-gmx-sub000/internal/domain/models"
	domrepo "github.com/frontboat/agent-gmx-sub000/internal/domain/repository"
	pkgkafka "github.com/frontboat/agent-gmx-sub000/pkg/kafka"
)

// KafkaSignalPublisher fans emitted signals out to a Kafka topic, keyed by
// symbol so per-asset ordering is preserved under the hash balancer.
type KafkaSignalPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

var _ domrepo.SignalPublisher = (*KafkaSignalPublisher)(nil)

func NewKafkaSignalPublisher(producer *pkgkafka.Producer, topic string) *KafkaSignalPublisher {
	return &KafkaSignalPublisher{producer: producer, topic: topic}
}

func (p *KafkaSignalPublisher) Publish(ctx context.Context, sig models.Signal) error {
	return p.producer.Publish(ctx, p.topic, []byte(sig.Symbol), sig)
}

func (p *KafkaSignalPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}
