package streaming

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/artie-labs/transfer/lib/typing"
	"github.com/go-mysql-org/go-mysql/replication"

	"github.com/christian-posta/debezium/config"
	"github.com/christian-posta/debezium/lib"
	"github.com/christian-posta/debezium/lib/mtr"
	"github.com/christian-posta/debezium/lib/relational"
	"github.com/christian-posta/debezium/lib/relational/ddl"
	"github.com/christian-posta/debezium/lib/relational/history"
	"github.com/christian-posta/debezium/lib/storage/persistedmap"
)

const offsetKey = "offset"

// How long Next keeps draining once it already holds records to return.
const drainTimeout = 500 * time.Millisecond

type eventStreamer interface {
	GetEvent(ctx context.Context) (*replication.BinlogEvent, error)
}

// Iterator is the single-writer event processor: it pulls decoded binlog
// events from the streamer, maintains the source position and the table
// converters, and yields the records each batch of events produced.
type Iterator struct {
	ctx       context.Context
	batchSize int32

	source     *SourceInfo
	converters *TableConverters
	offsets    *persistedmap.PersistedMap[map[string]any]

	syncer   *replication.BinlogSyncer
	streamer eventStreamer
}

func BuildStreamingIterator(ctx context.Context, cfg config.MySQL, metrics mtr.Client) (*Iterator, error) {
	settings := cfg.StreamingSettings

	offsets, err := persistedmap.NewPersistedMap[map[string]any](settings.OffsetFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load offsets: %w", err)
	}

	source := NewSourceInfo(settings.ServerName)
	if offset, isOk := offsets.Get(offsetKey); isOk {
		// A corrupt persisted offset is fatal; resuming from a guess would
		// corrupt the emitted stream.
		if err = source.SetOffset(offset); err != nil {
			return nil, fmt.Errorf("failed to restore offset: %w", err)
		}

		slog.Info("Found previous offset",
			slog.String("file", source.BinlogFilename()),
			slog.Int64("pos", source.BinlogPosition()),
			slog.Int("row", source.EventRowNumber()),
		)
	}

	parser, err := ddl.NewParser(settings.IncludeViews)
	if err != nil {
		return nil, err
	}

	catalog := relational.NewCatalog()
	store := history.NewFileStore(settings.SchemaHistoryFile)
	if err = history.Recover(store, catalog, parser); err != nil {
		return nil, err
	}

	converters, err := NewTableConverters(TableConvertersArgs{
		Catalog:           catalog,
		Parser:            parser,
		History:           store,
		Metrics:           metrics,
		EmitSchemaChanges: settings.EmitSchemaChanges,
		EmitBeforeImage:   settings.EmitBeforeImage,
		TableFilter:       settings.BuildTableFilter(),
	})
	if err != nil {
		return nil, err
	}

	if err = converters.LoadTables(); err != nil {
		return nil, err
	}

	syncer := replication.NewBinlogSyncer(
		replication.BinlogSyncerConfig{
			ServerID: settings.ServerID,
			Flavor:   "mysql",
			Host:     cfg.Host,
			Port:     uint16(cfg.Port),
			User:     cfg.Username,
			Password: cfg.Password,
		},
	)

	streamer, err := syncer.StartSync(source.ToMySQLPosition())
	if err != nil {
		return nil, fmt.Errorf("failed to start sync: %w", err)
	}

	return &Iterator{
		ctx:        ctx,
		batchSize:  settings.GetBatchSize(),
		source:     source,
		converters: converters,
		offsets:    offsets,
		syncer:     syncer,
		streamer:   streamer,
	}, nil
}

func (i *Iterator) HasNext() bool {
	return true
}

// Next blocks until at least one event produced records, then keeps draining
// for a short window so multi-event transactions come back as one batch. The
// currently dispatched event is always processed to completion, so a batch
// never splits an event's rows.
func (i *Iterator) Next() ([]lib.Record, error) {
	var records []lib.Record
	for {
		ctx := i.ctx
		var cancel context.CancelFunc
		if len(records) > 0 {
			ctx, cancel = context.WithTimeout(i.ctx, drainTimeout)
		}

		event, err := i.streamer.GetEvent(ctx)
		if cancel != nil {
			cancel()
		}

		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) && len(records) > 0 {
				return records, nil
			}

			if errors.Is(err, context.Canceled) && len(records) > 0 {
				// Finish handing off what we have; the caller observes the
				// cancellation on its next call.
				return records, nil
			}

			return nil, fmt.Errorf("failed to get binlog event: %w", err)
		}

		batch, err := i.processEvent(event)
		if err != nil {
			return nil, err
		}

		records = append(records, batch...)
		if int32(len(records)) >= i.batchSize {
			return records, nil
		}
	}
}

// processEvent updates the source position and dispatches one event. It
// returns the records the event produced, in row order.
func (i *Iterator) processEvent(event *replication.BinlogEvent) ([]lib.Record, error) {
	if event.Header.LogPos > 0 {
		i.source.SetBinlogPosition(int64(event.Header.LogPos))
	}

	i.source.SetRowInEvent(0)

	var records []lib.Record
	emit := func(record lib.Record) error {
		records = append(records, record)
		return nil
	}

	switch event.Header.EventType {
	case replication.ROTATE_EVENT:
		rotate, err := typing.AssertType[*replication.RotateEvent](event.Event)
		if err != nil {
			return nil, err
		}

		i.source.SetBinlogFilename(string(rotate.NextLogName))
		position := int64(rotate.Position)
		if position == 0 {
			position = firstEventPosition
		}

		i.source.SetBinlogPosition(position)
		i.converters.RotateLogs(rotate)
	case replication.QUERY_EVENT:
		query, err := typing.AssertType[*replication.QueryEvent](event.Event)
		if err != nil {
			return nil, err
		}

		if query.ErrorCode == 0 {
			if err = i.converters.UpdateTableCommand(query, i.source, emit); err != nil {
				return nil, err
			}
		}
	case replication.TABLE_MAP_EVENT:
		tableMap, err := typing.AssertType[*replication.TableMapEvent](event.Event)
		if err != nil {
			return nil, err
		}

		i.converters.UpdateTableMetadata(tableMap, i.source)
	case replication.WRITE_ROWS_EVENTv0, replication.WRITE_ROWS_EVENTv1, replication.WRITE_ROWS_EVENTv2:
		rows, err := typing.AssertType[*replication.RowsEvent](event.Event)
		if err != nil {
			return nil, err
		}

		if err = i.converters.HandleInsert(rows, i.source, emit); err != nil {
			return nil, err
		}
	case replication.UPDATE_ROWS_EVENTv0, replication.UPDATE_ROWS_EVENTv1, replication.UPDATE_ROWS_EVENTv2:
		rows, err := typing.AssertType[*replication.RowsEvent](event.Event)
		if err != nil {
			return nil, err
		}

		if err = i.converters.HandleUpdate(rows, i.source, emit); err != nil {
			return nil, err
		}
	case replication.DELETE_ROWS_EVENTv0, replication.DELETE_ROWS_EVENTv1, replication.DELETE_ROWS_EVENTv2:
		rows, err := typing.AssertType[*replication.RowsEvent](event.Event)
		if err != nil {
			return nil, err
		}

		if err = i.converters.HandleDelete(rows, i.source, emit); err != nil {
			return nil, err
		}
	default:
		slog.Debug("Skipping event", slog.String("type", event.Header.EventType.String()))
	}

	return records, nil
}

// CommitOffset persists the current offset. A crash between an emitted record
// and the next commit replays rows from the last committed offset, which is
// the at-least-once contract.
func (i *Iterator) CommitOffset() error {
	return i.offsets.Set(offsetKey, i.source.Offset())
}

func (i *Iterator) Close() error {
	if i.syncer != nil {
		i.syncer.Close()
	}

	return nil
}
