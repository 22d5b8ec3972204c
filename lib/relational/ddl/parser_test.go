package ddl

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/christian-posta/debezium/lib/relational"
)

func buildParser(t *testing.T) (*Parser, *relational.Catalog) {
	parser, err := NewParser(false)
	assert.NoError(t, err)
	parser.SetCurrentSchema("db")
	return parser, relational.NewCatalog()
}

func TestParser_CreateTable(t *testing.T) {
	parser, catalog := buildParser(t)
	assert.NoError(t, parser.Parse(`
		CREATE TABLE users (
			id INT NOT NULL AUTO_INCREMENT PRIMARY KEY,
			name VARCHAR(32) COMMENT 'display name',
			balance DECIMAL(10, 2) DEFAULT '0.00',
			created_at DATETIME NOT NULL
		)`, catalog))

	table, isOk := catalog.Get(relational.NewTableID("db", "users"))
	assert.True(t, isOk)
	assert.Len(t, table.Columns, 4)
	assert.Equal(t, []string{"id"}, table.PrimaryKeys)

	id, _ := table.Column("id")
	assert.Equal(t, relational.Int, id.Type)
	assert.Equal(t, 1, id.Position)
	assert.False(t, id.Optional)
	assert.True(t, id.AutoIncremented)

	name, _ := table.Column("name")
	assert.Equal(t, relational.Varchar, name.Type)
	assert.Equal(t, 2, name.Position)
	assert.Equal(t, 32, name.Length)
	assert.True(t, name.Optional)

	balance, _ := table.Column("balance")
	assert.Equal(t, relational.Decimal, balance.Type)
	assert.Equal(t, 10, balance.Length)
	assert.Equal(t, 2, balance.Scale)
	assert.NotNil(t, balance.DefaultValue)
	assert.Equal(t, "0.00", *balance.DefaultValue)

	createdAt, _ := table.Column("created_at")
	assert.Equal(t, relational.DateTime, createdAt.Type)
	assert.False(t, createdAt.Optional)
}

func TestParser_CreateTable_ConstraintPrimaryKey(t *testing.T) {
	parser, catalog := buildParser(t)
	assert.NoError(t, parser.Parse("CREATE TABLE m (user_id BIGINT, org_id BIGINT, note TEXT, PRIMARY KEY (org_id, user_id))", catalog))

	table, isOk := catalog.Get(relational.NewTableID("db", "m"))
	assert.True(t, isOk)
	assert.Equal(t, []string{"org_id", "user_id"}, table.PrimaryKeys)

	// PK membership forces NOT NULL
	orgID, _ := table.Column("org_id")
	assert.False(t, orgID.Optional)
	note, _ := table.Column("note")
	assert.True(t, note.Optional)
}

func TestParser_CreateTable_Qualified(t *testing.T) {
	parser, catalog := buildParser(t)
	assert.NoError(t, parser.Parse("CREATE TABLE other.t (id INT PRIMARY KEY)", catalog))

	_, isOk := catalog.Get(relational.NewTableID("other", "t"))
	assert.True(t, isOk)
	_, isOk = catalog.Get(relational.NewTableID("db", "t"))
	assert.False(t, isOk)
}

func TestParser_CreateTableLike(t *testing.T) {
	parser, catalog := buildParser(t)
	assert.NoError(t, parser.Parse("CREATE TABLE users (id INT PRIMARY KEY, name VARCHAR(32))", catalog))
	assert.NoError(t, parser.Parse("CREATE TABLE users_copy LIKE users", catalog))

	table, isOk := catalog.Get(relational.NewTableID("db", "users_copy"))
	assert.True(t, isOk)
	assert.Len(t, table.Columns, 2)
	assert.Equal(t, []string{"id"}, table.PrimaryKeys)
}

func TestParser_AlterTable(t *testing.T) {
	parser, catalog := buildParser(t)
	assert.NoError(t, parser.Parse("CREATE TABLE t (id INT PRIMARY KEY, name VARCHAR(32), email VARCHAR(64))", catalog))
	id := relational.NewTableID("db", "t")

	{
		// ADD COLUMN appends and renumbers
		assert.NoError(t, parser.Parse("ALTER TABLE t ADD COLUMN age INT", catalog))
		table, _ := catalog.Get(id)
		assert.Len(t, table.Columns, 4)
		age, _ := table.Column("age")
		assert.Equal(t, 4, age.Position)
		assert.Equal(t, []relational.TableID{id}, catalog.DrainChanges())
	}
	{
		// ADD COLUMN ... AFTER repositions
		assert.NoError(t, parser.Parse("ALTER TABLE t ADD COLUMN nickname VARCHAR(16) AFTER id", catalog))
		table, _ := catalog.Get(id)
		nickname, _ := table.Column("nickname")
		assert.Equal(t, 2, nickname.Position)
		name, _ := table.Column("name")
		assert.Equal(t, 3, name.Position)
	}
	{
		// DROP COLUMN
		assert.NoError(t, parser.Parse("ALTER TABLE t DROP COLUMN nickname", catalog))
		table, _ := catalog.Get(id)
		assert.Len(t, table.Columns, 4)
		_, isOk := table.Column("nickname")
		assert.False(t, isOk)
		name, _ := table.Column("name")
		assert.Equal(t, 2, name.Position)
	}
	{
		// MODIFY COLUMN changes the type in place
		assert.NoError(t, parser.Parse("ALTER TABLE t MODIFY COLUMN age BIGINT NOT NULL", catalog))
		table, _ := catalog.Get(id)
		age, _ := table.Column("age")
		assert.Equal(t, relational.BigInt, age.Type)
		assert.False(t, age.Optional)
		assert.Equal(t, 4, age.Position)
	}
	{
		// CHANGE COLUMN renames and retypes
		assert.NoError(t, parser.Parse("ALTER TABLE t CHANGE COLUMN age years SMALLINT", catalog))
		table, _ := catalog.Get(id)
		_, isOk := table.Column("age")
		assert.False(t, isOk)
		years, _ := table.Column("years")
		assert.Equal(t, relational.SmallInt, years.Type)
	}
	{
		// RENAME COLUMN keeps the key list in sync
		assert.NoError(t, parser.Parse("ALTER TABLE t RENAME COLUMN id TO user_id", catalog))
		table, _ := catalog.Get(id)
		assert.Equal(t, []string{"user_id"}, table.PrimaryKeys)
	}
	{
		// DROP and ADD PRIMARY KEY
		assert.NoError(t, parser.Parse("ALTER TABLE t DROP PRIMARY KEY", catalog))
		table, _ := catalog.Get(id)
		assert.Empty(t, table.PrimaryKeys)

		assert.NoError(t, parser.Parse("ALTER TABLE t ADD PRIMARY KEY (email)", catalog))
		table, _ = catalog.Get(id)
		assert.Equal(t, []string{"email"}, table.PrimaryKeys)
		email, _ := table.Column("email")
		assert.False(t, email.Optional)
	}
	{
		// RENAME TO moves the catalog entry
		assert.NoError(t, parser.Parse("ALTER TABLE t RENAME TO t2", catalog))
		_, isOk := catalog.Get(id)
		assert.False(t, isOk)
		_, isOk = catalog.Get(relational.NewTableID("db", "t2"))
		assert.True(t, isOk)
	}
}

func TestParser_AlterTable_UnknownTable(t *testing.T) {
	parser, catalog := buildParser(t)
	// The statement is logged and skipped; the catalog is untouched.
	assert.NoError(t, parser.Parse("ALTER TABLE missing ADD COLUMN x INT", catalog))
	assert.Empty(t, catalog.IDs())
	assert.Empty(t, catalog.DrainChanges())
}

func TestParser_DropAndRenameTable(t *testing.T) {
	parser, catalog := buildParser(t)
	assert.NoError(t, parser.Parse("CREATE TABLE a (id INT PRIMARY KEY)", catalog))
	assert.NoError(t, parser.Parse("CREATE TABLE b (id INT PRIMARY KEY)", catalog))
	catalog.DrainChanges()

	{
		assert.NoError(t, parser.Parse("RENAME TABLE a TO a2", catalog))
		_, isOk := catalog.Get(relational.NewTableID("db", "a"))
		assert.False(t, isOk)
		table, isOk := catalog.Get(relational.NewTableID("db", "a2"))
		assert.True(t, isOk)
		assert.Equal(t, relational.NewTableID("db", "a2"), table.ID)
	}
	{
		assert.NoError(t, parser.Parse("DROP TABLE a2, b", catalog))
		assert.Empty(t, catalog.IDs())
	}
}

func TestParser_Truncate(t *testing.T) {
	parser, catalog := buildParser(t)
	assert.NoError(t, parser.Parse("CREATE TABLE t (id INT PRIMARY KEY)", catalog))
	catalog.DrainChanges()

	// Truncation has no schema effect
	assert.NoError(t, parser.Parse("TRUNCATE TABLE t", catalog))
	_, isOk := catalog.Get(relational.NewTableID("db", "t"))
	assert.True(t, isOk)
	assert.Empty(t, catalog.DrainChanges())
}

func TestParser_MultiStatement(t *testing.T) {
	parser, catalog := buildParser(t)
	assert.NoError(t, parser.Parse("CREATE TABLE a (id INT PRIMARY KEY); CREATE TABLE b (id INT PRIMARY KEY);", catalog))
	assert.Len(t, catalog.IDs(), 2)
}

func TestParser_ParseFailureSkipsStatement(t *testing.T) {
	parser, catalog := buildParser(t)
	// The failing statement is skipped, the rest still applies.
	assert.NoError(t, parser.Parse("CREATE GIBBERISH nonsense; CREATE TABLE t (id INT PRIMARY KEY)", catalog))
	_, isOk := catalog.Get(relational.NewTableID("db", "t"))
	assert.True(t, isOk)
	assert.Len(t, catalog.IDs(), 1)
}

func TestParser_Ignorable(t *testing.T) {
	parser, _ := buildParser(t)
	for _, statement := range []string{"BEGIN", "COMMIT", "ROLLBACK", "FLUSH PRIVILEGES", "begin", " COMMIT; "} {
		assert.True(t, parser.Ignorable(statement), statement)
	}

	assert.False(t, parser.Ignorable("CREATE TABLE t (id INT)"))
}

func TestParser_ViewsIgnored(t *testing.T) {
	parser, catalog := buildParser(t)
	assert.NoError(t, parser.Parse("CREATE TABLE t (id INT PRIMARY KEY)", catalog))
	assert.NoError(t, parser.Parse("CREATE VIEW v AS SELECT id FROM t", catalog))

	_, isOk := catalog.Get(relational.NewTableID("db", "v"))
	assert.False(t, isOk)
	assert.Len(t, catalog.IDs(), 1)
}

func TestParser_OperationalStatementsIgnored(t *testing.T) {
	parser, catalog := buildParser(t)
	for _, statement := range []string{
		"CREATE DATABASE newdb",
		"USE db",
		"SET NAMES utf8mb4",
		"FLUSH TABLES",
	} {
		assert.NoError(t, parser.Parse(statement, catalog), statement)
	}

	assert.Empty(t, catalog.IDs())
}
