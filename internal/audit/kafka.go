package audit

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"

	"github.com/leadmate/leadmate/internal/store"
)

// KafkaMirror streams audit entries to a Kafka topic. Delivery is
// best-effort; the sqlite log remains the source of truth.
type KafkaMirror struct {
	writer *kafka.Writer
}

// NewKafkaMirror creates a mirror publishing to the given brokers and topic.
func NewKafkaMirror(brokers []string, topic string) *KafkaMirror {
	return &KafkaMirror{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Topic:                  topic,
			Balancer:               &kafka.LeastBytes{},
			AllowAutoTopicCreation: true,
		},
	}
}

// Publish sends one audit entry, keyed by workspace so a workspace's
// entries stay ordered within a partition.
func (m *KafkaMirror) Publish(ctx context.Context, e *store.AuditEntry) error {
	value, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal audit entry: %w", err)
	}
	return m.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(e.WorkspaceID),
		Value: value,
	})
}

// Close flushes and closes the underlying writer.
func (m *KafkaMirror) Close() error {
	return m.writer.Close()
}
