// Package ddl applies MySQL data-definition statements, as they appear in the
// binlog, to a relational catalog.
package ddl

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"vitess.io/vitess/go/vt/sqlparser"

	"github.com/christian-posta/debezium/lib/relational"
)

// Statements the binlog interleaves with DDL that have no schema effect. They
// are recognized before parsing is attempted.
var ignorableStatements = map[string]struct{}{
	"BEGIN":            {},
	"END":              {},
	"COMMIT":           {},
	"ROLLBACK":         {},
	"FLUSH PRIVILEGES": {},
}

type Parser struct {
	parser        *sqlparser.Parser
	includeViews  bool
	currentSchema string
}

func NewParser(includeViews bool) (*Parser, error) {
	parser, err := sqlparser.New(sqlparser.Options{})
	if err != nil {
		return nil, fmt.Errorf("failed to build sql parser: %w", err)
	}

	return &Parser{parser: parser, includeViews: includeViews}, nil
}

// SetCurrentSchema sets the schema used to qualify unqualified table names in
// subsequent statements.
func (p *Parser) SetCurrentSchema(schema string) {
	p.currentSchema = schema
}

func (p *Parser) CurrentSchema() string {
	return p.currentSchema
}

// Ignorable returns true for statements that should be skipped without being
// parsed or recorded against the catalog.
func (p *Parser) Ignorable(sql string) bool {
	_, isOk := ignorableStatements[strings.ToUpper(strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(sql), ";")))]
	return isOk
}

// Parse applies every statement in sql to the catalog. A statement that fails
// to parse, or that the engine cannot model, is logged and skipped without
// touching the catalog; the remaining statements are still applied. The MySQL
// binlog carries operational DDL a change stream cannot usefully reject, so
// resilience beats strictness here.
func (p *Parser) Parse(sql string, catalog *relational.Catalog) error {
	pieces, err := p.parser.SplitStatementToPieces(sql)
	if err != nil {
		return fmt.Errorf("failed to split statements: %w", err)
	}

	for _, piece := range pieces {
		piece = strings.TrimSpace(piece)
		if piece == "" || p.Ignorable(piece) {
			continue
		}

		stmt, err := p.parser.Parse(piece)
		if err != nil {
			slog.Warn("Failed to parse DDL statement, skipping it",
				slog.String("statement", piece),
				slog.Any("err", err),
			)
			continue
		}

		if err = p.applyStatement(stmt, catalog); err != nil {
			slog.Warn("Failed to apply DDL statement, skipping it",
				slog.String("statement", piece),
				slog.Any("err", err),
			)
		}
	}

	return nil
}

func (p *Parser) applyStatement(stmt sqlparser.Statement, catalog *relational.Catalog) error {
	switch castStmt := stmt.(type) {
	case *sqlparser.CreateTable:
		return p.applyCreateTable(castStmt, catalog)
	case *sqlparser.AlterTable:
		return p.applyAlterTable(castStmt, catalog)
	case *sqlparser.DropTable:
		for _, tableName := range castStmt.FromTables {
			catalog.Remove(p.resolveTableID(tableName))
		}
		return nil
	case *sqlparser.RenameTable:
		for _, pair := range castStmt.TablePairs {
			if err := p.renameTable(catalog, p.resolveTableID(pair.FromTable), p.resolveTableID(pair.ToTable)); err != nil {
				return err
			}
		}
		return nil
	case *sqlparser.TruncateTable:
		// Truncation empties the table without changing its definition.
		return nil
	case *sqlparser.CreateView, *sqlparser.AlterView, *sqlparser.DropView:
		// View DDL has no effect on the row-event catalog.
		if !p.includeViews {
			slog.Debug("Skipping view statement", slog.String("statement", sqlparser.String(stmt)))
		}
		return nil
	case *sqlparser.CreateDatabase, *sqlparser.AlterDatabase, *sqlparser.DropDatabase,
		*sqlparser.Use, *sqlparser.Set, *sqlparser.Flush:
		return nil
	}

	slog.Debug("Skipping statement with no schema effect", slog.String("type", fmt.Sprintf("%T", stmt)))
	return nil
}

func (p *Parser) applyCreateTable(stmt *sqlparser.CreateTable, catalog *relational.Catalog) error {
	id := p.resolveTableID(stmt.Table)

	if stmt.OptLike != nil {
		sourceID := p.resolveTableID(stmt.OptLike.LikeTable)
		source, isOk := catalog.Get(sourceID)
		if !isOk {
			return fmt.Errorf("table %q not found for CREATE TABLE LIKE", sourceID)
		}

		source.ID = id
		catalog.Put(source)
		return nil
	}

	if stmt.TableSpec == nil {
		return fmt.Errorf("CREATE TABLE %q has no column definitions", id)
	}

	table := relational.Table{ID: id}
	var primaryKeys []string
	for _, colDef := range stmt.TableSpec.Columns {
		col, err := columnFromDefinition(colDef)
		if err != nil {
			return err
		}

		table.Columns = append(table.Columns, col)
		if colDef.Type.Options != nil && colDef.Type.Options.KeyOpt == sqlparser.ColKeyPrimary {
			primaryKeys = append(primaryKeys, col.Name)
		}
	}

	for _, index := range stmt.TableSpec.Indexes {
		if index.Info != nil && index.Info.Type == sqlparser.IndexTypePrimary {
			for _, indexCol := range index.Columns {
				name := indexCol.Column.String()
				if !slices.Contains(primaryKeys, name) {
					primaryKeys = append(primaryKeys, name)
				}
			}
		}
	}

	table.PrimaryKeys = primaryKeys
	for _, option := range stmt.TableSpec.Options {
		if strings.EqualFold(option.Name, "charset") {
			table.Charset = option.String
		}
	}

	markPrimaryKeysRequired(&table)
	renumber(&table)
	catalog.Put(table)
	return nil
}

func (p *Parser) applyAlterTable(stmt *sqlparser.AlterTable, catalog *relational.Catalog) error {
	id := p.resolveTableID(stmt.Table)
	table, isOk := catalog.Get(id)
	if !isOk {
		return fmt.Errorf("table not found: %q", id)
	}

	// Work on a copy so a failing option leaves the catalog untouched.
	table.Columns = slices.Clone(table.Columns)
	table.PrimaryKeys = slices.Clone(table.PrimaryKeys)
	renameTo := tableIDNone

	for _, option := range stmt.AlterOptions {
		switch castOption := option.(type) {
		case *sqlparser.AddColumns:
			for _, colDef := range castOption.Columns {
				col, err := columnFromDefinition(colDef)
				if err != nil {
					return err
				}

				if slices.ContainsFunc(table.Columns, func(x relational.Column) bool { return strings.EqualFold(x.Name, col.Name) }) {
					return fmt.Errorf("column already exists: %q", col.Name)
				}

				table.Columns = append(table.Columns, col)
				if colDef.Type.Options != nil && colDef.Type.Options.KeyOpt == sqlparser.ColKeyPrimary {
					table.PrimaryKeys = append(table.PrimaryKeys, col.Name)
				}

				if err = reposition(&table, col.Name, castOption.First, castOption.After); err != nil {
					return err
				}
			}
		case *sqlparser.DropColumn:
			name := castOption.Name.Name.String()
			columnIdx := indexOfColumn(table.Columns, name)
			if columnIdx == -1 {
				return fmt.Errorf("column not found: %q", name)
			}

			table.Columns = slices.Delete(table.Columns, columnIdx, columnIdx+1)
			table.PrimaryKeys = slices.DeleteFunc(table.PrimaryKeys, func(pk string) bool { return strings.EqualFold(pk, name) })
		case *sqlparser.ModifyColumn:
			col, err := columnFromDefinition(castOption.NewColDefinition)
			if err != nil {
				return err
			}

			columnIdx := indexOfColumn(table.Columns, col.Name)
			if columnIdx == -1 {
				return fmt.Errorf("column not found: %q", col.Name)
			}

			table.Columns[columnIdx] = col
			if err = reposition(&table, col.Name, castOption.First, castOption.After); err != nil {
				return err
			}
		case *sqlparser.ChangeColumn:
			oldName := castOption.OldColumn.Name.String()
			col, err := columnFromDefinition(castOption.NewColDefinition)
			if err != nil {
				return err
			}

			columnIdx := indexOfColumn(table.Columns, oldName)
			if columnIdx == -1 {
				return fmt.Errorf("column not found: %q", oldName)
			}

			table.Columns[columnIdx] = col
			for i, pk := range table.PrimaryKeys {
				if strings.EqualFold(pk, oldName) {
					table.PrimaryKeys[i] = col.Name
				}
			}

			if err = reposition(&table, col.Name, castOption.First, castOption.After); err != nil {
				return err
			}
		case *sqlparser.RenameColumn:
			oldName := castOption.OldName.Name.String()
			columnIdx := indexOfColumn(table.Columns, oldName)
			if columnIdx == -1 {
				return fmt.Errorf("column not found: %q", oldName)
			}

			table.Columns[columnIdx].Name = castOption.NewName.Name.String()
			for i, pk := range table.PrimaryKeys {
				if strings.EqualFold(pk, oldName) {
					table.PrimaryKeys[i] = castOption.NewName.Name.String()
				}
			}
		case *sqlparser.AddIndexDefinition:
			if castOption.IndexDefinition.Info != nil && castOption.IndexDefinition.Info.Type == sqlparser.IndexTypePrimary {
				table.PrimaryKeys = nil
				for _, indexCol := range castOption.IndexDefinition.Columns {
					name := indexCol.Column.String()
					if indexOfColumn(table.Columns, name) == -1 {
						return fmt.Errorf("column not found: %q", name)
					}

					table.PrimaryKeys = append(table.PrimaryKeys, name)
				}
			}
		case *sqlparser.DropKey:
			if castOption.Type == sqlparser.PrimaryKeyType {
				table.PrimaryKeys = nil
			}
		case *sqlparser.RenameTableName:
			renameTo = p.resolveTableID(castOption.Table)
		default:
			slog.Debug("Skipping alter option with no schema effect", slog.String("type", fmt.Sprintf("%T", option)))
		}
	}

	markPrimaryKeysRequired(&table)
	renumber(&table)

	if renameTo != tableIDNone {
		catalog.Remove(id)
		table.ID = renameTo
	}

	catalog.Put(table)
	return nil
}

// tableIDNone is the zero TableID, used as an absent-value sentinel.
var tableIDNone = relational.TableID{}

func (p *Parser) renameTable(catalog *relational.Catalog, from, to relational.TableID) error {
	table, isOk := catalog.Remove(from)
	if !isOk {
		return fmt.Errorf("table not found: %q", from)
	}

	table.ID = to
	catalog.Put(table)
	return nil
}

func (p *Parser) resolveTableID(name sqlparser.TableName) relational.TableID {
	schema := name.Qualifier.String()
	if schema == "" {
		schema = p.currentSchema
	}

	return relational.NewTableID(schema, name.Name.String())
}

func columnFromDefinition(def *sqlparser.ColumnDefinition) (relational.Column, error) {
	typeName := strings.ToUpper(def.Type.Type)
	dataType, isOk := relational.ParseDataType(def.Type.Type)
	if !isOk {
		return relational.Column{}, fmt.Errorf("unsupported column type %q for column %q", typeName, def.Name.String())
	}

	col := relational.Column{
		Name:     def.Name.String(),
		Type:     dataType,
		TypeName: typeName,
		Length:   -1,
		Scale:    -1,
		Optional: true,
	}

	if def.Type.Length != nil {
		col.Length = *def.Type.Length
	}

	if def.Type.Scale != nil {
		col.Scale = *def.Type.Scale
	}

	if options := def.Type.Options; options != nil {
		if options.Null != nil {
			col.Optional = *options.Null
		}

		if options.KeyOpt == sqlparser.ColKeyPrimary {
			col.Optional = false
		}

		col.AutoIncremented = options.Autoincrement
		col.Generated = options.As != nil
		if options.Default != nil {
			col.DefaultValue = defaultLiteral(options.Default)
		}
	}

	return col, nil
}

func defaultLiteral(expr sqlparser.Expr) *string {
	var value string
	if literal, isOk := expr.(*sqlparser.Literal); isOk {
		value = literal.Val
	} else {
		value = sqlparser.String(expr)
	}

	return &value
}

func indexOfColumn(columns []relational.Column, name string) int {
	return slices.IndexFunc(columns, func(col relational.Column) bool {
		return strings.EqualFold(col.Name, name)
	})
}

func reposition(table *relational.Table, name string, first bool, after *sqlparser.ColName) error {
	if !first && after == nil {
		return nil
	}

	columnIdx := indexOfColumn(table.Columns, name)
	if columnIdx == -1 {
		return fmt.Errorf("column not found: %q", name)
	}

	col := table.Columns[columnIdx]
	table.Columns = slices.Delete(table.Columns, columnIdx, columnIdx+1)

	if first {
		table.Columns = slices.Insert(table.Columns, 0, col)
		return nil
	}

	afterIdx := indexOfColumn(table.Columns, after.Name.String())
	if afterIdx == -1 {
		return fmt.Errorf("column not found: %q", after.Name.String())
	}

	table.Columns = slices.Insert(table.Columns, afterIdx+1, col)
	return nil
}

// Positions are 1-based and dense; every structural change renumbers.
func renumber(table *relational.Table) {
	for i := range table.Columns {
		table.Columns[i].Position = i + 1
	}
}

// Membership in the primary key forces NOT NULL, the way MySQL itself does.
func markPrimaryKeysRequired(table *relational.Table) {
	for _, pk := range table.PrimaryKeys {
		if idx := indexOfColumn(table.Columns, pk); idx != -1 {
			table.Columns[idx].Optional = false
		}
	}
}
