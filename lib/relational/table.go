package relational

import (
	"slices"
	"strings"
)

// TableID qualifies a table name. Catalog and Schema may be empty; two ids are
// equal only when all present components match.
type TableID struct {
	Catalog string
	Schema  string
	Table   string
}

func NewTableID(schema, table string) TableID {
	return TableID{Schema: schema, Table: table}
}

func (t TableID) String() string {
	parts := make([]string, 0, 3)
	for _, part := range []string{t.Catalog, t.Schema, t.Table} {
		if part != "" {
			parts = append(parts, part)
		}
	}

	return strings.Join(parts, ".")
}

// Column describes one column of a table. Position is 1-based and dense within
// a table; Length and Scale are -1 when the type does not specify them.
type Column struct {
	Name            string
	Position        int
	Type            DataType
	TypeName        string
	Length          int
	Scale           int
	Optional        bool
	AutoIncremented bool
	Generated       bool
	DefaultValue    *string
}

// Table is an immutable snapshot of a table definition. Instances are replaced
// wholesale on DDL, never mutated in place.
type Table struct {
	ID          TableID
	Columns     []Column
	PrimaryKeys []string
	Charset     string
}

// Column returns the column with the given name. MySQL identifiers are
// case-insensitive, so the lookup is too.
func (t Table) Column(name string) (Column, bool) {
	idx := slices.IndexFunc(t.Columns, func(col Column) bool {
		return strings.EqualFold(col.Name, name)
	})
	if idx == -1 {
		return Column{}, false
	}

	return t.Columns[idx], true
}

func (t Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, col := range t.Columns {
		names[i] = col.Name
	}

	return names
}

// PrimaryKeyColumns resolves PrimaryKeys against Columns, in key order.
func (t Table) PrimaryKeyColumns() ([]Column, bool) {
	cols := make([]Column, 0, len(t.PrimaryKeys))
	for _, name := range t.PrimaryKeys {
		col, isOk := t.Column(name)
		if !isOk {
			return nil, false
		}

		cols = append(cols, col)
	}

	return cols, true
}
