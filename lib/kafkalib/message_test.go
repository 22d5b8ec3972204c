package kafkalib

import (
	"encoding/json"
	"testing"

	transferDbz "github.com/artie-labs/transfer/lib/debezium"
	"github.com/stretchr/testify/assert"

	"github.com/christian-posta/debezium/lib"
)

func TestNewMessage(t *testing.T) {
	keySchema := &transferDbz.FieldsObject{
		FieldObjectType: string(transferDbz.Struct),
		Fields:          []transferDbz.Field{{FieldName: "id", Type: transferDbz.Int32}},
	}

	{
		record := lib.Record{
			Topic:       "prod.db.users",
			KeySchema:   keySchema,
			Key:         map[string]any{"id": 1},
			ValueSchema: keySchema,
			Value:       map[string]any{"id": 1},
		}

		msg, err := newMessage(record)
		assert.NoError(t, err)
		assert.Equal(t, "prod.db.users", msg.Topic)

		var key map[string]any
		assert.NoError(t, json.Unmarshal(msg.Key, &key))
		assert.Equal(t, map[string]any{"id": float64(1)}, key["payload"])
		assert.NotNil(t, key["schema"])

		var value map[string]any
		assert.NoError(t, json.Unmarshal(msg.Value, &value))
		assert.Equal(t, map[string]any{"id": float64(1)}, value["payload"])
	}
	{
		// A tombstone has a null kafka value, not an envelope
		record := lib.Record{
			Topic:     "prod.db.users",
			KeySchema: keySchema,
			Key:       map[string]any{"id": 1},
		}

		msg, err := newMessage(record)
		assert.NoError(t, err)
		assert.Nil(t, msg.Value)
	}
}

func TestBuildKafkaMessages(t *testing.T) {
	msgs, err := buildKafkaMessages([]lib.Record{
		{Topic: "a", Key: map[string]any{"id": 1}, Value: map[string]any{"id": 1}},
		{Topic: "b", Key: map[string]any{"id": 2}, Value: map[string]any{"id": 2}},
	})
	assert.NoError(t, err)
	assert.Len(t, msgs, 2)
	assert.Equal(t, "a", msgs[0].Topic)
	assert.Equal(t, "b", msgs[1].Topic)
}
