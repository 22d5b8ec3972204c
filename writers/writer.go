package writers

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/christian-posta/debezium/lib"
	"github.com/christian-posta/debezium/lib/iterator"
)

// DestinationWriter delivers a batch of records. A record is considered
// delivered once Write returns without error.
type DestinationWriter interface {
	Write(ctx context.Context, records []lib.Record) error
}

type Writer struct {
	destinationWriter DestinationWriter
	logProgress       bool
}

func New(destinationWriter DestinationWriter, logProgress bool) Writer {
	return Writer{destinationWriter: destinationWriter, logProgress: logProgress}
}

// Write drains the iterator into the destination. For streaming iterators the
// offset is committed only after the destination accepted the batch, so a
// crash in between replays the batch rather than losing it.
func (w Writer) Write(ctx context.Context, iter iterator.Iterator[[]lib.Record]) (int, error) {
	start := time.Now()
	var count int
	for iter.HasNext() {
		iterStart := time.Now()
		records, err := iter.Next()
		if err != nil {
			return 0, fmt.Errorf("failed to iterate over records: %w", err)
		} else if len(records) > 0 {
			if err = w.destinationWriter.Write(ctx, records); err != nil {
				return 0, fmt.Errorf("failed to write records: %w", err)
			}

			if streamingIter, isOk := iter.(iterator.StreamingIterator[[]lib.Record]); isOk {
				if err = streamingIter.CommitOffset(); err != nil {
					return 0, fmt.Errorf("failed to commit offset: %w", err)
				}
			}

			count += len(records)
		}
		if w.logProgress {
			slog.Info("Write progress",
				slog.Int("totalSize", count),
				slog.Duration("totalDuration", time.Since(start)),
				slog.Int("batchSize", len(records)),
				slog.Duration("batchDuration", time.Since(iterStart)),
			)
		}
	}

	return count, nil
}
