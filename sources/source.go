package sources

import (
	"context"

	"github.com/christian-posta/debezium/writers"
)

type Source interface {
	Close() error
	Run(ctx context.Context, writer writers.Writer) error
}
