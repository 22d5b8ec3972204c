package kafkalib

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/artie-labs/transfer/lib/jitter"
	"github.com/segmentio/kafka-go"

	"github.com/christian-posta/debezium/config"
	"github.com/christian-posta/debezium/lib"
)

const (
	maxRetries   = 10
	retryDelayMs = 300
)

type BatchWriter struct {
	*kafka.Writer

	ctx context.Context
	cfg config.Kafka
}

func NewBatchWriter(ctx context.Context, cfg config.Kafka) (*BatchWriter, error) {
	writer, err := NewWriter(ctx, cfg)
	if err != nil {
		return nil, err
	}

	return &BatchWriter{writer, ctx, cfg}, nil
}

func (w *BatchWriter) reload() error {
	if err := w.Writer.Close(); err != nil {
		return err
	}

	writer, err := NewWriter(w.ctx, w.cfg)
	if err != nil {
		return err
	}

	w.Writer = writer
	return nil
}

// Write delivers the records in publish-size chunks, in order. A chunk that
// cannot be delivered after retries fails the whole call; the caller must not
// commit offsets past it.
func (w *BatchWriter) Write(_ context.Context, records []lib.Record) error {
	msgs, err := buildKafkaMessages(records)
	if err != nil {
		return fmt.Errorf("failed to build kafka messages: %w", err)
	}

	b := NewBatch(msgs, w.cfg.GetPublishSize())
	if batchErr := b.IsValid(); batchErr != nil {
		if batchErr == ErrEmptyBatch {
			return nil
		}

		return fmt.Errorf("batch is not valid: %w", batchErr)
	}

	for b.HasNext() {
		var kafkaErr error
		chunk := b.NextChunk()
		for attempts := 0; attempts < maxRetries; attempts++ {
			kafkaErr = w.WriteMessages(w.ctx, chunk...)
			if kafkaErr == nil {
				break
			}

			if isExceedMaxMessageBytesErr(kafkaErr) {
				// Retrying cannot make the chunk fit under the server's limit.
				break
			}

			if isRetryableError(kafkaErr) {
				if reloadErr := w.reload(); reloadErr != nil {
					slog.Warn("Failed to reload kafka writer", slog.Any("err", reloadErr))
				}
			} else {
				sleepMs := jitter.Jitter(retryDelayMs, jitter.DefaultMaxMs, attempts)
				slog.Info("Failed to publish to kafka",
					slog.Any("err", kafkaErr),
					slog.Int("attempts", attempts),
					slog.Duration("sleep", sleepMs),
				)
				time.Sleep(sleepMs)
			}
		}

		if kafkaErr != nil {
			return fmt.Errorf("failed to write messages: %w", kafkaErr)
		}
	}
	return nil
}
