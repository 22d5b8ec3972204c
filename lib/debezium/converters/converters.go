package converters

import "github.com/artie-labs/transfer/lib/debezium"

// ValueConverter describes one column's field in the emitted schema and
// coerces raw binlog values into the wire representation for that field.
type ValueConverter interface {
	ToField(name string) debezium.Field
	Convert(value any) (any, error)
}
