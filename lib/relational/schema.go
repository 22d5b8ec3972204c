package relational

import (
	"fmt"

	transferDbz "github.com/artie-labs/transfer/lib/debezium"
	"github.com/artie-labs/transfer/lib/typing"

	"github.com/christian-posta/debezium/lib/debezium/converters"
)

// TableSchema is the derived description used to translate row tuples from a
// single table into keyed records. It is a pure function of its Table: given
// the same definition, BuildTableSchema always produces the same schemas and
// extraction behavior.
type TableSchema struct {
	id TableID

	keySchema   *transferDbz.FieldsObject
	valueSchema *transferDbz.FieldsObject

	// 0-based tuple indexes of the PK columns, in PK order.
	keyIndexes  []int
	columnNames []string
	converters  []converters.ValueConverter
}

// BuildTableSchema derives the key and value schemas plus the field extraction
// functions for the given table.
func BuildTableSchema(table Table) (TableSchema, error) {
	schema := TableSchema{
		id:          table.ID,
		columnNames: table.ColumnNames(),
		converters:  make([]converters.ValueConverter, len(table.Columns)),
	}

	valueFields := make([]transferDbz.Field, len(table.Columns))
	for i, col := range table.Columns {
		converter, err := valueConverterForColumn(col)
		if err != nil {
			return TableSchema{}, fmt.Errorf("failed to build field for column %q: %w", col.Name, err)
		}

		field := converter.ToField(col.Name)
		field.Optional = col.Optional
		valueFields[i] = field
		schema.converters[i] = converter
	}

	schema.valueSchema = &transferDbz.FieldsObject{
		FieldObjectType: string(transferDbz.Struct),
		Fields:          valueFields,
	}

	if len(table.PrimaryKeys) > 0 {
		pkColumns, isOk := table.PrimaryKeyColumns()
		if !isOk {
			return TableSchema{}, fmt.Errorf("table %q has a primary key column that does not resolve", table.ID)
		}

		keyFields := make([]transferDbz.Field, len(pkColumns))
		schema.keyIndexes = make([]int, len(pkColumns))
		for i, col := range pkColumns {
			field := schema.converters[col.Position-1].ToField(col.Name)
			// A primary key field is never optional.
			field.Optional = false
			keyFields[i] = field
			schema.keyIndexes[i] = col.Position - 1
		}

		schema.keySchema = &transferDbz.FieldsObject{
			FieldObjectType: string(transferDbz.Struct),
			Fields:          keyFields,
		}
	}

	return schema, nil
}

func (t TableSchema) ID() TableID {
	return t.id
}

// KeySchema returns nil when the table has no primary key.
func (t TableSchema) KeySchema() *transferDbz.FieldsObject {
	return t.keySchema
}

func (t TableSchema) ValueSchema() *transferDbz.FieldsObject {
	return t.valueSchema
}

// Key projects the primary key columns out of a row tuple. It returns nil for
// tables without a primary key.
func (t TableSchema) Key(row []any) (map[string]any, error) {
	if t.keySchema == nil {
		return nil, nil
	}

	key := make(map[string]any, len(t.keyIndexes))
	for _, idx := range t.keyIndexes {
		if idx >= len(row) {
			return nil, fmt.Errorf("row has %d values, expected at least %d", len(row), idx+1)
		}

		value, err := t.convert(idx, row[idx])
		if err != nil {
			return nil, err
		}

		key[t.columnNames[idx]] = value
	}

	return key, nil
}

// Value translates a row tuple into a structured value matching the value
// schema. Columns not covered by the event's included-columns bitmap are
// omitted; a nil bitmap means every column is present.
func (t TableSchema) Value(row []any, included []bool) (map[string]any, error) {
	value := make(map[string]any, len(t.columnNames))
	for i, name := range t.columnNames {
		if included != nil && (i >= len(included) || !included[i]) {
			continue
		}

		if i >= len(row) {
			return nil, fmt.Errorf("row has %d values, expected %d", len(row), len(t.columnNames))
		}

		converted, err := t.convert(i, row[i])
		if err != nil {
			return nil, err
		}

		value[name] = converted
	}

	return value, nil
}

func (t TableSchema) convert(idx int, value any) (any, error) {
	if value == nil {
		return nil, nil
	}

	converted, err := t.converters[idx].Convert(value)
	if err != nil {
		return nil, fmt.Errorf("failed to convert value for column %q: %w", t.columnNames[idx], err)
	}

	return converted, nil
}

func valueConverterForColumn(col Column) (converters.ValueConverter, error) {
	switch col.Type {
	case TinyInt:
		return converters.Int8Converter{}, nil
	case SmallInt:
		return converters.Int16Converter{}, nil
	case MediumInt, Int:
		return converters.Int32Converter{}, nil
	case BigInt:
		return converters.Int64Converter{}, nil
	case Decimal:
		scale := 0
		if col.Scale != -1 {
			scale = col.Scale
		}

		var precision *int
		if col.Length != -1 {
			precision = typing.ToPtr(col.Length)
		}

		return converters.NewDecimalConverter(scale, precision), nil
	case Float:
		return converters.FloatConverter{}, nil
	case Double:
		return converters.DoubleConverter{}, nil
	case Bit:
		length := 1
		if col.Length != -1 {
			length = col.Length
		}

		return converters.NewBitConverter(length), nil
	case Boolean:
		return converters.BooleanConverter{}, nil
	case Date:
		return converters.DateConverter{}, nil
	case Time:
		return converters.MicroTimeConverter{}, nil
	case DateTime, Timestamp:
		return converters.MicroTimestampConverter{}, nil
	case Year:
		return converters.YearConverter{}, nil
	case Char, Varchar, Text, TinyText, MediumText, LongText:
		return converters.StringConverter{}, nil
	case Binary, Varbinary, Blob:
		return converters.BytesConverter{}, nil
	case Enum:
		return converters.EnumConverter{}, nil
	case Set:
		return converters.EnumSetConverter{}, nil
	case JSON:
		return converters.JSONConverter{}, nil
	}

	return nil, fmt.Errorf("no value converter for DataType(%d)", col.Type)
}
