package relational

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func usersTable() Table {
	return Table{
		ID: NewTableID("db", "users"),
		Columns: []Column{
			{Name: "id", Position: 1, Type: Int, TypeName: "INT", Length: -1, Scale: -1},
			{Name: "name", Position: 2, Type: Varchar, TypeName: "VARCHAR", Length: 32, Scale: -1, Optional: true},
			{Name: "age", Position: 3, Type: TinyInt, TypeName: "TINYINT", Length: -1, Scale: -1, Optional: true},
		},
		PrimaryKeys: []string{"id"},
	}
}

func TestBuildTableSchema(t *testing.T) {
	schema, err := BuildTableSchema(usersTable())
	assert.NoError(t, err)

	{
		// Key schema has one non-optional field per PK column
		keySchema := schema.KeySchema()
		assert.NotNil(t, keySchema)
		assert.Len(t, keySchema.Fields, 1)
		assert.Equal(t, "id", keySchema.Fields[0].FieldName)
		assert.False(t, keySchema.Fields[0].Optional)
	}
	{
		// Value schema has one field per column in position order
		valueSchema := schema.ValueSchema()
		assert.NotNil(t, valueSchema)
		assert.Len(t, valueSchema.Fields, 3)
		assert.Equal(t, "id", valueSchema.Fields[0].FieldName)
		assert.False(t, valueSchema.Fields[0].Optional)
		assert.Equal(t, "name", valueSchema.Fields[1].FieldName)
		assert.True(t, valueSchema.Fields[1].Optional)
		assert.Equal(t, "age", valueSchema.Fields[2].FieldName)
	}
}

func TestTableSchema_KeyAndValue(t *testing.T) {
	schema, err := BuildTableSchema(usersTable())
	assert.NoError(t, err)

	row := []any{int32(1), "alice", int8(30)}

	{
		key, err := schema.Key(row)
		assert.NoError(t, err)
		assert.Equal(t, map[string]any{"id": int32(1)}, key)
	}
	{
		value, err := schema.Value(row, nil)
		assert.NoError(t, err)
		assert.Equal(t, map[string]any{"id": int32(1), "name": "alice", "age": int8(30)}, value)
	}
	{
		// Columns excluded by the event bitmap are absent from the value
		value, err := schema.Value(row, []bool{true, false, true, false, false, false, false, false})
		assert.NoError(t, err)
		assert.Equal(t, map[string]any{"id": int32(1), "age": int8(30)}, value)
	}
	{
		// Null column values survive as nulls
		value, err := schema.Value([]any{int32(2), nil, nil}, nil)
		assert.NoError(t, err)
		assert.Equal(t, map[string]any{"id": int32(2), "name": nil, "age": nil}, value)
	}
	{
		// The key is a function of the PK values only
		key1, err := schema.Key([]any{int32(7), "a", int8(1)})
		assert.NoError(t, err)
		key2, err := schema.Key([]any{int32(7), "b", int8(2)})
		assert.NoError(t, err)
		assert.Equal(t, key1, key2)
	}
}

func TestTableSchema_NoPrimaryKey(t *testing.T) {
	table := usersTable()
	table.PrimaryKeys = nil

	schema, err := BuildTableSchema(table)
	assert.NoError(t, err)
	assert.Nil(t, schema.KeySchema())

	key, err := schema.Key([]any{int32(1), "alice", int8(30)})
	assert.NoError(t, err)
	assert.Nil(t, key)
}

func TestTableSchema_CompositeKeyOrder(t *testing.T) {
	table := Table{
		ID: NewTableID("db", "memberships"),
		Columns: []Column{
			{Name: "user_id", Position: 1, Type: BigInt, Length: -1, Scale: -1},
			{Name: "org_id", Position: 2, Type: BigInt, Length: -1, Scale: -1},
		},
		PrimaryKeys: []string{"org_id", "user_id"},
	}

	schema, err := BuildTableSchema(table)
	assert.NoError(t, err)

	keySchema := schema.KeySchema()
	assert.Equal(t, "org_id", keySchema.Fields[0].FieldName)
	assert.Equal(t, "user_id", keySchema.Fields[1].FieldName)

	key, err := schema.Key([]any{int64(7), int64(42)})
	assert.NoError(t, err)
	assert.Equal(t, map[string]any{"org_id": int64(42), "user_id": int64(7)}, key)
}

func TestTableSchema_ShortRow(t *testing.T) {
	schema, err := BuildTableSchema(usersTable())
	assert.NoError(t, err)

	_, err = schema.Value([]any{int32(1)}, nil)
	assert.ErrorContains(t, err, "row has 1 values")
}
