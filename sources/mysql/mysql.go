package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/christian-posta/debezium/config"
	"github.com/christian-posta/debezium/lib/mtr"
	"github.com/christian-posta/debezium/sources"
	"github.com/christian-posta/debezium/sources/mysql/streaming"
	"github.com/christian-posta/debezium/writers"
)

// Load connects to the server, checks it is usable for change capture, and
// returns the streaming source.
func Load(ctx context.Context, cfg config.MySQL, metrics mtr.Client) (sources.Source, error) {
	db, err := sql.Open("mysql", cfg.ToDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MySQL: %w", err)
	}

	settings, err := retrieveSettings(ctx, db)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve MySQL settings: %w", err)
	}

	slog.Info("Loading MySQL connector",
		slog.String("version", settings.Version),
		slog.Any("sqlMode", settings.SQLMode),
	)

	if err = validateServer(ctx, db); err != nil {
		return nil, err
	}

	return &Streaming{cfg: cfg, db: db, metrics: metrics}, nil
}

type Streaming struct {
	cfg     config.MySQL
	db      *sql.DB
	metrics mtr.Client
	iter    *streaming.Iterator
}

func (s *Streaming) Close() error {
	if s.iter != nil {
		if err := s.iter.Close(); err != nil {
			return err
		}
	}

	return s.db.Close()
}

func (s *Streaming) Run(ctx context.Context, writer writers.Writer) error {
	iter, err := streaming.BuildStreamingIterator(ctx, s.cfg, s.metrics)
	if err != nil {
		return fmt.Errorf("failed to build streaming iterator: %w", err)
	}

	s.iter = iter
	if _, err = writer.Write(ctx, iter); err != nil {
		// A cancelled context is the runner asking us to stop; the iterator
		// finished its in-flight event before returning.
		if ctx.Err() != nil {
			slog.Info("Stopping the binlog stream", slog.Any("cause", ctx.Err()))
			return nil
		}

		return fmt.Errorf("failed to stream changes: %w", err)
	}

	return nil
}
