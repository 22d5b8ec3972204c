package converters

import (
	"fmt"
	"strconv"

	"github.com/artie-labs/transfer/lib/debezium"
)

type DecimalConverter struct {
	scale     int
	precision *int
}

func NewDecimalConverter(scale int, precision *int) DecimalConverter {
	return DecimalConverter{scale: scale, precision: precision}
}

func (d DecimalConverter) ToField(name string) debezium.Field {
	field := debezium.Field{
		FieldName:    name,
		Type:         debezium.Bytes,
		DebeziumType: debezium.KafkaDecimalType,
		Parameters: map[string]any{
			"scale": fmt.Sprint(d.scale),
		},
	}

	if d.precision != nil {
		field.Parameters[debezium.KafkaDecimalPrecisionKey] = fmt.Sprint(*d.precision)
	}

	return field
}

func (d DecimalConverter) Convert(value any) (any, error) {
	var stringValue string
	switch castValue := value.(type) {
	case string:
		stringValue = castValue
	case []byte:
		stringValue = string(castValue)
	case float32:
		stringValue = strconv.FormatFloat(float64(castValue), 'f', d.scale, 32)
	case float64:
		stringValue = strconv.FormatFloat(castValue, 'f', d.scale, 64)
	default:
		return nil, fmt.Errorf("expected string/[]byte/float got %T with value: %v", value, value)
	}

	return EncodeDecimalToBase64(stringValue, d.scale)
}
