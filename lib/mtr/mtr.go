package mtr

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/DataDog/datadog-go/v5/statsd"
)

const (
	DefaultNamespace = "cdc."
	// DefaultAddr is the default address for where the DD agent would be running on a single host machine
	DefaultAddr = "127.0.0.1:8125"
)

type Client interface {
	Timing(name string, value time.Duration, tags map[string]string)
	Incr(name string, tags map[string]string)
	Gauge(name string, value float64, tags map[string]string)
	Count(name string, value int64, tags map[string]string)
	Flush()
}

func New(namespace string, tags []string, samplingRate float64) (Client, error) {
	host := os.Getenv("TELEMETRY_HOST")
	port := os.Getenv("TELEMETRY_PORT")
	address := DefaultAddr
	if host != "" && port != "" {
		address = fmt.Sprintf("%s:%s", host, port)
		slog.Info("Overriding telemetry address with env vars", slog.String("address", address))
	}

	if namespace == "" {
		namespace = DefaultNamespace
	}

	datadogClient, err := statsd.New(address,
		statsd.WithNamespace(namespace),
		statsd.WithTags(tags),
	)
	if err != nil {
		return nil, err
	}

	return &statsClient{
		client: datadogClient,
		rate:   samplingRate,
	}, nil
}
