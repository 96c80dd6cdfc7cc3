package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/metar-economizer/internal/config"
	"github.com/couchcryptid/metar-economizer/internal/domain"
)

// publishTimeout bounds a single evaluation write.
const publishTimeout = 10 * time.Second

// Writer publishes completed evaluations to a Kafka topic.
// It implements evaluator.Publisher.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured result topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:                   kafkago.TCP(cfg.KafkaBrokers...),
		Topic:                  cfg.KafkaTopic,
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireAll,
		BatchTimeout:           10 * time.Millisecond,
		WriteTimeout:           publishTimeout,
		AllowAutoTopicCreation: true,
	}
	return &Writer{writer: w, logger: logger}
}

// Publish writes one evaluation, keyed by station so a station's history
// stays on one partition.
func (w *Writer) Publish(ctx context.Context, ev domain.Evaluation) error {
	msg, err := serializeToMessage(ev)
	if err != nil {
		return err
	}
	if err := w.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish evaluation for %s: %w", ev.StationID, err)
	}
	w.logger.Debug("evaluation published", "station", ev.StationID, "topic", w.writer.Topic)
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals an Evaluation into a Kafka message.
func serializeToMessage(ev domain.Evaluation) (kafkago.Message, error) {
	data, err := json.Marshal(ev)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize evaluation: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(ev.StationID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "mode", Value: []byte(ev.Result.Mode)},
			{Key: "evaluated_at", Value: []byte(ev.EvaluatedAt.Format(time.RFC3339))},
		},
	}, nil
}
