package streaming

import (
	"fmt"
	"log/slog"

	"github.com/go-mysql-org/go-mysql/replication"

	"github.com/christian-posta/debezium/lib"
	"github.com/christian-posta/debezium/lib/mtr"
	"github.com/christian-posta/debezium/lib/relational"
	"github.com/christian-posta/debezium/lib/relational/ddl"
	"github.com/christian-posta/debezium/lib/relational/history"
)

// Emit hands one record to the sink. The record is considered delivered once
// the call returns; an error is fatal to the stream.
type Emit func(lib.Record) error

// Converter binds the numeric table id used inside one binlog file to the
// table it refers to. All converters share the same translation algorithm;
// only the data differs.
type Converter struct {
	tableID relational.TableID
	topic   string
	// partition is an optional Kafka partition hint copied onto each record;
	// nothing sets it, and the Kafka sink does not read it.
	partition *int32
	schema    relational.TableSchema
}

// TableConverters correlates schema-altering DDL with subsequent row events.
// It owns the catalog, the per-table schema cache, and the numeric-id
// converter cache, and translates row events into records.
//
// Not safe for concurrent use; the event processor is its only caller.
type TableConverters struct {
	catalog *relational.Catalog
	parser  *ddl.Parser
	history history.Store
	topics  TopicSelector
	metrics mtr.Client

	emitSchemaChanges bool
	emitBeforeImage   bool
	tableFilter       func(relational.TableID) bool

	schemasByTableID        map[relational.TableID]relational.TableSchema
	convertersByTableNumber map[uint64]Converter
	tableNumbersByName      map[string]uint64
	unknownTableIDs         map[relational.TableID]struct{}
}

type TableConvertersArgs struct {
	Catalog *relational.Catalog
	Parser  *ddl.Parser
	History history.Store
	Metrics mtr.Client

	EmitSchemaChanges bool
	EmitBeforeImage   bool
	// TableFilter excludes tables from the emitted stream; nil includes all.
	TableFilter func(relational.TableID) bool
}

func NewTableConverters(args TableConvertersArgs) (*TableConverters, error) {
	if args.Catalog == nil {
		return nil, fmt.Errorf("a catalog is required")
	}

	if args.Parser == nil {
		return nil, fmt.Errorf("a ddl parser is required")
	}

	if args.History == nil {
		return nil, fmt.Errorf("a history store is required")
	}

	t := &TableConverters{
		catalog:                 args.Catalog,
		parser:                  args.Parser,
		history:                 args.History,
		metrics:                 args.Metrics,
		emitSchemaChanges:       args.EmitSchemaChanges,
		emitBeforeImage:         args.EmitBeforeImage,
		schemasByTableID:        make(map[relational.TableID]relational.TableSchema),
		convertersByTableNumber: make(map[uint64]Converter),
		tableNumbersByName:      make(map[string]uint64),
		unknownTableIDs:         make(map[relational.TableID]struct{}),
	}

	// A table is known if it has not been registered as unknown; a
	// user-supplied filter composes with that predicate.
	knownTables := func(id relational.TableID) bool {
		_, unknown := t.unknownTableIDs[id]
		return !unknown
	}
	if args.TableFilter != nil {
		t.tableFilter = func(id relational.TableID) bool {
			return args.TableFilter(id) && knownTables(id)
		}
	} else {
		t.tableFilter = knownTables
	}

	return t, nil
}

// LoadTables derives schemas for every table already in the catalog, typically
// right after the history has been replayed into it.
func (t *TableConverters) LoadTables() error {
	for _, id := range t.catalog.IDs() {
		table, isOk := t.catalog.Get(id)
		if !isOk {
			continue
		}

		schema, err := relational.BuildTableSchema(table)
		if err != nil {
			return fmt.Errorf("failed to build schema for table %q: %w", id, err)
		}

		t.schemasByTableID[id] = schema
	}

	return nil
}

// RotateLogs discards the numeric-id caches. Table numbers are only unique
// within one binlog file, so a rotation invalidates every binding; the catalog
// and the schema cache survive.
func (t *TableConverters) RotateLogs(evt *replication.RotateEvent) {
	slog.Debug("Rotating logs", slog.String("nextFile", string(evt.NextLogName)))
	clear(t.convertersByTableNumber)
	clear(t.tableNumbersByName)
}

// UpdateTableCommand parses a DDL statement against the catalog, records it in
// the history, and rebuilds the schemas of every table the statement touched.
// The statement is recorded even when parsing fails so the history stays
// faithful to the upstream log.
func (t *TableConverters) UpdateTableCommand(evt *replication.QueryEvent, source *SourceInfo, emit Emit) error {
	databaseName := string(evt.Schema)
	statement := string(evt.Query)
	if t.parser.Ignorable(statement) {
		return nil
	}

	t.parser.SetCurrentSchema(databaseName)
	if err := t.parser.Parse(statement, t.catalog); err != nil {
		t.count("ddl.parse_failures", 1, nil)
		slog.Error("Error parsing DDL statement and updating tables",
			slog.String("statement", statement),
			slog.Any("err", err),
		)
	}

	// The engine cannot advance without durable history.
	if err := t.history.Record(source.Partition(), source.Offset(), databaseName, t.catalog.Snapshot(), statement); err != nil {
		return fmt.Errorf("failed to record schema history: %w", err)
	}

	if t.emitSchemaChanges {
		record := lib.Record{
			Partition: source.Partition(),
			Offset:    source.Offset(),
			Topic:     t.topics.SchemaChangeTopic(source.ServerName()),
			Key:       map[string]any{"databaseName": databaseName},
			Value: map[string]any{
				"source":       source.Partition(),
				"position":     source.Offset(),
				"databaseName": databaseName,
				"ddl":          statement,
			},
		}
		if err := emit(record); err != nil {
			return fmt.Errorf("failed to emit schema change record: %w", err)
		}
	}

	// Figure out what changed and refresh the derived schemas.
	for _, id := range t.catalog.DrainChanges() {
		table, isOk := t.catalog.Get(id)
		if !isOk { // removed
			delete(t.schemasByTableID, id)
			continue
		}

		schema, err := relational.BuildTableSchema(table)
		if err != nil {
			return fmt.Errorf("failed to build schema for table %q: %w", id, err)
		}

		t.schemasByTableID[id] = schema
	}

	return nil
}

// UpdateTableMetadata binds a table number to its table. Every transaction
// carries one TABLE_MAP per affected table; the number can change when the
// table structure is altered or when the server rotates to a new binlog file.
func (t *TableConverters) UpdateTableMetadata(evt *replication.TableMapEvent, source *SourceInfo) {
	tableNumber := evt.TableID
	if _, isOk := t.convertersByTableNumber[tableNumber]; isOk {
		return
	}

	databaseName := string(evt.Schema)
	tableName := string(evt.Table)
	tableID := relational.NewTableID(databaseName, tableName)

	schema, haveSchema := t.schemasByTableID[tableID]
	if !haveSchema {
		// The table predates the point we started reading the binlog.
		if _, seen := t.unknownTableIDs[tableID]; !seen {
			t.unknownTableIDs[tableID] = struct{}{}
			slog.Warn("Transaction affects rows in a table with no known metadata; all its changes will be ignored",
				slog.String("table", tableID.String()),
			)
		}
	}

	slog.Debug("Registering metadata for table",
		slog.String("table", tableID.String()),
		slog.Uint64("tableNumber", tableNumber),
	)
	t.convertersByTableNumber[tableNumber] = Converter{
		tableID: tableID,
		topic:   t.topics.Topic(source.ServerName(), databaseName, tableName),
		schema:  schema,
	}

	// The server re-assigns table numbers within one file after a schema
	// change; evict the stale binding.
	if previousNumber, isOk := t.tableNumbersByName[tableName]; isOk && previousNumber != tableNumber {
		delete(t.convertersByTableNumber, previousNumber)
	}

	t.tableNumbersByName[tableName] = tableNumber
}

// HandleInsert emits one record per inserted row.
func (t *TableConverters) HandleInsert(evt *replication.RowsEvent, source *SourceInfo, emit Emit) error {
	converter, isOk := t.lookupConverter(evt)
	if !isOk {
		return nil
	}

	included := includedColumns(evt.ColumnBitmap1)
	for rowNumber, row := range evt.Rows {
		value, err := converter.schema.Value(row, included)
		if err != nil {
			return fmt.Errorf("failed to translate inserted row in %q: %w", converter.tableID, err)
		}

		if err = t.emitRow(converter, source, emit, rowNumber, row, value, true); err != nil {
			return err
		}
	}

	return nil
}

// HandleUpdate emits the after-image of each updated row. The before-image is
// additionally emitted, ahead of the after-image, when configured.
func (t *TableConverters) HandleUpdate(evt *replication.RowsEvent, source *SourceInfo, emit Emit) error {
	converter, isOk := t.lookupConverter(evt)
	if !isOk {
		return nil
	}

	includedBefore := includedColumns(evt.ColumnBitmap1)
	included := includedColumns(evt.ColumnBitmap2)

	// The rows alternate (before, after) pairs.
	if len(evt.Rows)%2 != 0 {
		return fmt.Errorf("update event for %q carries %d rows, expected before/after pairs", converter.tableID, len(evt.Rows))
	}

	for i := 0; i+1 < len(evt.Rows); i += 2 {
		rowNumber := i / 2
		before, after := evt.Rows[i], evt.Rows[i+1]

		if t.emitBeforeImage {
			beforeValue, err := converter.schema.Value(before, includedBefore)
			if err != nil {
				return fmt.Errorf("failed to translate before-image row in %q: %w", converter.tableID, err)
			}

			if err = t.emitRow(converter, source, emit, rowNumber, before, beforeValue, true); err != nil {
				return err
			}
		}

		value, err := converter.schema.Value(after, included)
		if err != nil {
			return fmt.Errorf("failed to translate updated row in %q: %w", converter.tableID, err)
		}

		if err = t.emitRow(converter, source, emit, rowNumber, after, value, true); err != nil {
			return err
		}
	}

	return nil
}

// HandleDelete emits a tombstone per deleted row: the key identifies the row,
// the value and value schema are both null.
func (t *TableConverters) HandleDelete(evt *replication.RowsEvent, source *SourceInfo, emit Emit) error {
	converter, isOk := t.lookupConverter(evt)
	if !isOk {
		return nil
	}

	for rowNumber, row := range evt.Rows {
		if err := t.emitRow(converter, source, emit, rowNumber, row, nil, false); err != nil {
			return err
		}
	}

	return nil
}

func (t *TableConverters) emitRow(converter Converter, source *SourceInfo, emit Emit, rowNumber int, row []any, value map[string]any, withValueSchema bool) error {
	key, err := converter.schema.Key(row)
	if err != nil {
		return fmt.Errorf("failed to build key for row in %q: %w", converter.tableID, err)
	}

	if key == nil && value == nil {
		return nil
	}

	record := lib.Record{
		Partition:     source.Partition(),
		Offset:        source.OffsetRow(rowNumber),
		Topic:         converter.topic,
		PartitionHint: converter.partition,
		KeySchema:     converter.schema.KeySchema(),
		Key:           key,
	}

	if withValueSchema {
		record.ValueSchema = converter.schema.ValueSchema()
		record.Value = value
	}

	if err = emit(record); err != nil {
		return fmt.Errorf("failed to emit record for %q: %w", converter.tableID, err)
	}

	t.count("records.emitted", 1, map[string]string{"table": converter.tableID.String()})
	return nil
}

func (t *TableConverters) lookupConverter(evt *replication.RowsEvent) (Converter, bool) {
	converter, isOk := t.convertersByTableNumber[evt.TableID]
	if !isOk {
		slog.Warn("Unable to find converter for table number, dropping its rows",
			slog.Uint64("tableNumber", evt.TableID),
		)
		t.count("rows.dropped", int64(len(evt.Rows)), map[string]string{"reason": "missing_converter"})
		return Converter{}, false
	}

	if !t.tableFilter(converter.tableID) {
		slog.Debug("Skipping row event for filtered table", slog.String("table", converter.tableID.String()))
		t.count("rows.dropped", int64(len(evt.Rows)), map[string]string{"reason": "filtered"})
		return Converter{}, false
	}

	return converter, true
}

func (t *TableConverters) count(name string, value int64, tags map[string]string) {
	if t.metrics != nil {
		t.metrics.Count(name, value, tags)
	}
}

// includedColumns expands the event's column bitmap. A nil bitmap means every
// column is present.
func includedColumns(bitmap []byte) []bool {
	if bitmap == nil {
		return nil
	}

	included := make([]bool, len(bitmap)*8)
	for i := range included {
		included[i] = bitmap[i/8]&(1<<(uint(i)%8)) != 0
	}

	return included
}
