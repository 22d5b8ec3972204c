package lib

import (
	"github.com/artie-labs/transfer/lib/debezium"
)

// Record is a single change ready for the sink. Partition identifies the
// source database, Offset the position within its binlog sufficient to resume
// reading after this record has been delivered.
type Record struct {
	Partition map[string]string
	Offset    map[string]any

	Topic string
	// PartitionHint is an optional Kafka partition override. The Kafka sink does
	// not read it; its balancer picks the partition.
	PartitionHint *int32

	KeySchema *debezium.FieldsObject
	Key       map[string]any

	// ValueSchema and Value are both nil for a tombstone.
	ValueSchema *debezium.FieldsObject
	Value       map[string]any
}

// Tombstone returns true when the record signals a deleted row.
func (r Record) Tombstone() bool {
	return r.Value == nil && r.ValueSchema == nil
}
