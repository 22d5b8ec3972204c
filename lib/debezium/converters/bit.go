package converters

import (
	"encoding/binary"
	"fmt"

	"github.com/artie-labs/transfer/lib/debezium"
)

// BIT(n). BIT(1) surfaces as a boolean, anything wider as the little-endian
// byte layout the Kafka Connect Bits logical type expects.
type BitConverter struct {
	length int
}

func NewBitConverter(length int) BitConverter {
	return BitConverter{length: length}
}

func (b BitConverter) ToField(name string) debezium.Field {
	if b.length == 1 {
		return debezium.Field{FieldName: name, Type: debezium.Boolean}
	}

	return debezium.Field{
		FieldName:    name,
		Type:         debezium.Bytes,
		DebeziumType: debezium.Bits,
		Parameters:   map[string]any{"length": fmt.Sprint(b.length)},
	}
}

func (b BitConverter) Convert(value any) (any, error) {
	intValue, err := asInt64(value)
	if err != nil {
		return nil, err
	}

	if b.length == 1 {
		switch intValue {
		case 0:
			return false, nil
		case 1:
			return true, nil
		}
		return nil, fmt.Errorf("bit(1) value %d is not in [0, 1]", intValue)
	}

	byteCount := (b.length + 7) / 8
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint64(buf, uint64(intValue))
	return buf[:byteCount], nil
}
