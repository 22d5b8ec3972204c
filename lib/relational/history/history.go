// Package history persists every DDL statement the engine consumes so the
// catalog can be rebuilt on restart by replaying them in order.
package history

import (
	"fmt"

	"github.com/christian-posta/debezium/lib/relational"
	"github.com/christian-posta/debezium/lib/relational/ddl"
	"github.com/christian-posta/debezium/lib/storage/persistedlist"
)

// Record is one appended history entry. Source and Position carry the same
// partition and offset maps the emitted records do, so the history can be
// correlated with the record stream.
type Record struct {
	Source       map[string]string `json:"source"`
	Position     map[string]any    `json:"position"`
	DatabaseName string            `json:"databaseName"`
	DDL          string            `json:"ddl"`
}

// Store is an append-only DDL log. A successful Record survives process crash;
// Replay delivers records in the exact order they were appended.
//
// The snapshot argument lets an implementation checkpoint the full catalog and
// truncate older entries; implementations are free to ignore it.
type Store interface {
	Record(partition map[string]string, offset map[string]any, databaseName string, snapshot map[relational.TableID]relational.Table, statement string) error
	Replay(fn func(Record) error) error
}

// FileStore appends history records to a JSON-lines file. The catalog snapshot
// is ignored; the file retains the full statement history.
type FileStore struct {
	list *persistedlist.PersistedList[Record]
}

func NewFileStore(filePath string) *FileStore {
	return &FileStore{list: persistedlist.NewPersistedList[Record](filePath)}
}

func (f *FileStore) Record(partition map[string]string, offset map[string]any, databaseName string, _ map[relational.TableID]relational.Table, statement string) error {
	record := Record{
		Source:       partition,
		Position:     offset,
		DatabaseName: databaseName,
		DDL:          statement,
	}

	if err := f.list.Push(record); err != nil {
		return fmt.Errorf("failed to append history record: %w", err)
	}

	return nil
}

func (f *FileStore) Replay(fn func(Record) error) error {
	records, err := f.list.GetData()
	if err != nil {
		return fmt.Errorf("failed to read history: %w", err)
	}

	for _, record := range records {
		if err = fn(record); err != nil {
			return err
		}
	}

	return nil
}

// Recover replays the store's DDL through the parser against the catalog,
// reconstructing the state it had at the last durable record. Statements that
// failed to parse when they were first seen fail again here, which keeps the
// replayed state consistent with what the live run produced.
func Recover(store Store, catalog *relational.Catalog, parser *ddl.Parser) error {
	err := store.Replay(func(record Record) error {
		parser.SetCurrentSchema(record.DatabaseName)
		return parser.Parse(record.DDL, catalog)
	})
	if err != nil {
		return fmt.Errorf("failed to recover catalog from history: %w", err)
	}

	// Replay is part of startup; the processor rebuilds schemas from scratch.
	catalog.DrainChanges()
	return nil
}
