package converters

import (
	"fmt"

	"github.com/artie-labs/transfer/lib/debezium"
	"github.com/artie-labs/transfer/lib/typing"
)

// bool, int8 -> bool
type BooleanConverter struct{}

func (BooleanConverter) ToField(name string) debezium.Field {
	return debezium.Field{
		FieldName: name,
		Type:      debezium.Boolean,
	}
}

func (BooleanConverter) Convert(value any) (any, error) {
	switch castValue := value.(type) {
	case bool:
		return castValue, nil
	case int8:
		return castValue != 0, nil
	case int64:
		return castValue != 0, nil
	}
	return nil, fmt.Errorf("expected bool/int8/int64 got %T with value: %v", value, value)
}

// int8 -> int8
type Int8Converter struct{}

func (Int8Converter) ToField(name string) debezium.Field {
	return debezium.Field{
		FieldName: name,
		Type:      "int8",
	}
}

func (Int8Converter) Convert(value any) (any, error) {
	return asInt8(value)
}

// int8, int16 -> int16
type Int16Converter struct{}

func (Int16Converter) ToField(name string) debezium.Field {
	return debezium.Field{
		FieldName: name,
		Type:      debezium.Int16,
	}
}

func (Int16Converter) Convert(value any) (any, error) {
	return asInt16(value)
}

// int8, int16, int32 -> int32
type Int32Converter struct{}

func (Int32Converter) ToField(name string) debezium.Field {
	return debezium.Field{
		FieldName: name,
		Type:      debezium.Int32,
	}
}

func (Int32Converter) Convert(value any) (any, error) {
	return asInt32(value)
}

// any signed integer -> int64
type Int64Converter struct{}

func (Int64Converter) ToField(name string) debezium.Field {
	return debezium.Field{
		FieldName: name,
		Type:      debezium.Int64,
	}
}

func (Int64Converter) Convert(value any) (any, error) {
	return asInt64(value)
}

// float32 -> float32
type FloatConverter struct{}

func (FloatConverter) ToField(name string) debezium.Field {
	return debezium.Field{
		FieldName: name,
		Type:      debezium.Float,
	}
}

func (FloatConverter) Convert(value any) (any, error) {
	switch castValue := value.(type) {
	case float32:
		return castValue, nil
	}
	return nil, fmt.Errorf("expected float32 got %T with value: %v", value, value)
}

// float32, float64 -> float64
type DoubleConverter struct{}

func (DoubleConverter) ToField(name string) debezium.Field {
	return debezium.Field{
		FieldName: name,
		Type:      debezium.Double,
	}
}

func (DoubleConverter) Convert(value any) (any, error) {
	switch castValue := value.(type) {
	case float32:
		return float64(castValue), nil
	case float64:
		return castValue, nil
	}
	return nil, fmt.Errorf("expected float32/float64 got %T with value: %v", value, value)
}

// string, []byte -> string
type StringConverter struct{}

func (StringConverter) ToField(name string) debezium.Field {
	return debezium.Field{
		FieldName: name,
		Type:      debezium.String,
	}
}

func (StringConverter) Convert(value any) (any, error) {
	switch castValue := value.(type) {
	case string:
		return castValue, nil
	case []byte:
		return string(castValue), nil
	}
	return nil, fmt.Errorf("expected string/[]byte got %T with value: %v", value, value)
}

// string, []byte -> []byte
type BytesConverter struct{}

func (BytesConverter) ToField(name string) debezium.Field {
	return debezium.Field{
		FieldName: name,
		Type:      debezium.Bytes,
	}
}

func (BytesConverter) Convert(value any) (any, error) {
	switch castValue := value.(type) {
	case []byte:
		return castValue, nil
	case string:
		return []byte(castValue), nil
	}
	return nil, fmt.Errorf("expected []byte/string got %T with value: %v", value, value)
}

// int -> int32 year
type YearConverter struct{}

func (YearConverter) ToField(name string) debezium.Field {
	return debezium.Field{
		FieldName:    name,
		Type:         "int32",
		DebeziumType: "io.debezium.time.Year",
	}
}

func (YearConverter) Convert(value any) (any, error) {
	return asInt32(value)
}

// enum and set values arrive as strings
type EnumConverter struct{}

func (EnumConverter) ToField(name string) debezium.Field {
	return debezium.Field{
		FieldName:    name,
		Type:         "string",
		DebeziumType: debezium.Enum,
	}
}

func (EnumConverter) Convert(value any) (any, error) {
	return typing.AssertType[string](value)
}

type EnumSetConverter struct{}

func (EnumSetConverter) ToField(name string) debezium.Field {
	return debezium.Field{
		FieldName:    name,
		Type:         "string",
		DebeziumType: debezium.EnumSet,
	}
}

func (EnumSetConverter) Convert(value any) (any, error) {
	return typing.AssertType[string](value)
}

type JSONConverter struct{}

func (JSONConverter) ToField(name string) debezium.Field {
	return debezium.Field{
		FieldName:    name,
		Type:         "string",
		DebeziumType: debezium.JSON,
	}
}

func (JSONConverter) Convert(value any) (any, error) {
	switch castValue := value.(type) {
	case string:
		return castValue, nil
	case []byte:
		return string(castValue), nil
	}
	return nil, fmt.Errorf("expected string/[]byte got %T with value: %v", value, value)
}
