package relational

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTableID_String(t *testing.T) {
	{
		// Schema and table
		assert.Equal(t, "db.users", NewTableID("db", "users").String())
	}
	{
		// Table only
		assert.Equal(t, "users", NewTableID("", "users").String())
	}
	{
		// Fully qualified
		assert.Equal(t, "cat.db.users", TableID{Catalog: "cat", Schema: "db", Table: "users"}.String())
	}
}

func TestTableID_Equality(t *testing.T) {
	// Ids are map keys; absent components only match absent components.
	assert.Equal(t, NewTableID("db", "users"), NewTableID("db", "users"))
	assert.NotEqual(t, NewTableID("db", "users"), NewTableID("", "users"))
	assert.NotEqual(t, NewTableID("db", "users"), NewTableID("db", "orders"))
}

func TestTable_Column(t *testing.T) {
	table := Table{
		ID: NewTableID("db", "users"),
		Columns: []Column{
			{Name: "id", Position: 1, Type: Int},
			{Name: "Name", Position: 2, Type: Varchar},
		},
	}

	{
		col, isOk := table.Column("id")
		assert.True(t, isOk)
		assert.Equal(t, 1, col.Position)
	}
	{
		// MySQL identifiers are case-insensitive
		col, isOk := table.Column("name")
		assert.True(t, isOk)
		assert.Equal(t, 2, col.Position)
	}
	{
		_, isOk := table.Column("missing")
		assert.False(t, isOk)
	}
}

func TestTable_PrimaryKeyColumns(t *testing.T) {
	table := Table{
		ID: NewTableID("db", "users"),
		Columns: []Column{
			{Name: "tenant", Position: 1, Type: Int},
			{Name: "id", Position: 2, Type: Int},
		},
		PrimaryKeys: []string{"id", "tenant"},
	}

	{
		// Key order follows PrimaryKeys, not column order
		cols, isOk := table.PrimaryKeyColumns()
		assert.True(t, isOk)
		assert.Equal(t, []string{"id", "tenant"}, []string{cols[0].Name, cols[1].Name})
	}
	{
		// A dangling key name fails resolution
		table.PrimaryKeys = []string{"missing"}
		_, isOk := table.PrimaryKeyColumns()
		assert.False(t, isOk)
	}
}
