package converters

import (
	"fmt"
	"strings"
	"time"

	"github.com/artie-labs/transfer/lib/debezium"
)

// DATE -> int32 days since the Unix epoch.
type DateConverter struct{}

func (DateConverter) ToField(name string) debezium.Field {
	return debezium.Field{
		FieldName:    name,
		Type:         "int32",
		DebeziumType: debezium.Date,
	}
}

func (DateConverter) Convert(value any) (any, error) {
	timeValue, err := asTime(value, "2006-01-02")
	if err != nil {
		return nil, err
	}

	epoch := time.UnixMilli(0).In(time.UTC) // 1970-01-01
	return int32(timeValue.Sub(epoch).Hours() / 24), nil
}

// TIME -> int64 microseconds past midnight.
type MicroTimeConverter struct{}

func (MicroTimeConverter) ToField(name string) debezium.Field {
	return debezium.Field{
		FieldName:    name,
		Type:         "int64",
		DebeziumType: debezium.TimeMicro,
	}
}

func (MicroTimeConverter) Convert(value any) (any, error) {
	stringValue, isOk := value.(string)
	if !isOk {
		return nil, fmt.Errorf("expected string got %T with value: %v", value, value)
	}

	var hours, minutes int
	var seconds float64
	if _, err := fmt.Sscanf(stringValue, "%d:%d:%f", &hours, &minutes, &seconds); err != nil {
		return nil, fmt.Errorf("failed to parse time value %q: %w", stringValue, err)
	}

	micros := int64(hours)*time.Hour.Microseconds() +
		int64(minutes)*time.Minute.Microseconds() +
		int64(seconds*float64(time.Second.Microseconds()))
	return micros, nil
}

// DATETIME and TIMESTAMP -> int64 microseconds since the Unix epoch.
type MicroTimestampConverter struct{}

func (MicroTimestampConverter) ToField(name string) debezium.Field {
	return debezium.Field{
		FieldName:    name,
		Type:         "int64",
		DebeziumType: "io.debezium.time.MicroTimestamp",
	}
}

func (MicroTimestampConverter) Convert(value any) (any, error) {
	timeValue, err := asTime(value, "2006-01-02 15:04:05.999999")
	if err != nil {
		return nil, err
	}

	return timeValue.UnixMicro(), nil
}

func asTime(value any, layout string) (time.Time, error) {
	switch castValue := value.(type) {
	case time.Time:
		return castValue, nil
	case fmt.Stringer:
		// The binlog client wraps fractional-second times in a Stringer.
		return parseTime(castValue.String(), layout)
	case string:
		return parseTime(castValue, layout)
	}
	return time.Time{}, fmt.Errorf("expected time.Time/string got %T with value: %v", value, value)
}

func parseTime(value string, layout string) (time.Time, error) {
	timeValue, err := time.Parse(layout, strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse %q: %w", value, err)
	}

	return timeValue.UTC(), nil
}
