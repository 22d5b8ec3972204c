package kafkalib

import (
	"encoding/json"
	"fmt"

	transferDbz "github.com/artie-labs/transfer/lib/debezium"
	"github.com/segmentio/kafka-go"

	"github.com/christian-posta/debezium/lib"
)

// envelope is the schema-and-payload document the sink writes for keys and
// values, so consumers can decode records without a registry.
type envelope struct {
	Schema  *transferDbz.FieldsObject `json:"schema"`
	Payload map[string]any            `json:"payload"`
}

func newMessage(record lib.Record) (kafka.Message, error) {
	keyBytes, err := json.Marshal(envelope{Schema: record.KeySchema, Payload: record.Key})
	if err != nil {
		return kafka.Message{}, fmt.Errorf("failed to marshal key: %w", err)
	}

	// A tombstone has a null value rather than an envelope with a null payload.
	var valueBytes []byte
	if !record.Tombstone() {
		valueBytes, err = json.Marshal(envelope{Schema: record.ValueSchema, Payload: record.Value})
		if err != nil {
			return kafka.Message{}, fmt.Errorf("failed to marshal value: %w", err)
		}
	}

	return kafka.Message{
		Topic: record.Topic,
		Key:   keyBytes,
		Value: valueBytes,
	}, nil
}

func buildKafkaMessages(records []lib.Record) ([]kafka.Message, error) {
	result := make([]kafka.Message, len(records))
	for i, record := range records {
		msg, err := newMessage(record)
		if err != nil {
			return nil, err
		}
		result[i] = msg
	}
	return result, nil
}
