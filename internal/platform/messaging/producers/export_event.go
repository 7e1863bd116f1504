package producers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/segmentio/kafka-go"
	"github.com/sellerledger-sync/internal/config"
)

// ExportEventProducer publishes export-completed notification events so
// downstream consumers (notifications, dashboards) learn about committed
// batches. Publishing is best-effort: the export itself never depends on it.
type ExportEventProducer struct {
	logger *slog.Logger
	writer KafkaWriter // Interface for testability
	topic  string
}

// NewExportEventProducer creates the producer and ensures the topic exists
func NewExportEventProducer(ctx context.Context, logger *slog.Logger, cfg *config.KafkaConfig) (*ExportEventProducer, error) {
	if cfg.ExportEventsTopic == "" {
		return nil, fmt.Errorf("kafka export events topic is not configured")
	}

	conn, err := kafka.Dial("tcp", cfg.Brokers)
	if err != nil {
		return nil, fmt.Errorf("failed to dial kafka for export event producer: %w", err)
	}
	defer conn.Close()

	err = createKafkaTopicIfNotExists(conn, cfg.ExportEventsTopic, cfg.NumPartitions, cfg.ReplicationFactor, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to ensure export events topic %s exists: %w", cfg.ExportEventsTopic, err)
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers),
		Topic:        cfg.ExportEventsTopic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireOne,
		Async:        true, // Notifications tolerate async delivery
		WriteTimeout: cfg.MaxWait,
		Completion: func(messages []kafka.Message, err error) {
			if err != nil {
				logger.Error("Failed to write export events asynchronously", "topic", cfg.ExportEventsTopic, "error", err, "count", len(messages))
			} else {
				logger.Debug("Successfully wrote export events asynchronously", "topic", cfg.ExportEventsTopic, "count", len(messages))
			}
		},
	}

	return &ExportEventProducer{
		logger: logger,
		writer: writer,
		topic:  cfg.ExportEventsTopic,
	}, nil
}

// Publish writes one export event keyed by organization id
func (p *ExportEventProducer) Publish(ctx context.Context, key string, value interface{}) error {
	jsonValue, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal export event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(key),
		Value: jsonValue,
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error("Failed to publish export event",
			"topic", p.topic,
			"key", key,
			"error", err,
		)
		return fmt.Errorf("failed to publish export event to %s: %w", p.topic, err)
	}

	p.logger.Debug("Published export event",
		"topic", p.topic,
		"key", key,
	)
	return nil
}

// Close flushes and closes the underlying writer
func (p *ExportEventProducer) Close() error {
	p.logger.Info("Closing export event producer", "topic", p.topic)
	if err := p.writer.Close(); err != nil {
		return fmt.Errorf("failed to close export event writer for topic %s: %w", p.topic, err)
	}
	return nil
}
