package main

import (
	"context"
	"flag"
	"log/slog"
	"time"

	"github.com/getsentry/sentry-go"
	_ "github.com/go-sql-driver/mysql"

	"github.com/christian-posta/debezium/config"
	"github.com/christian-posta/debezium/lib/kafkalib"
	"github.com/christian-posta/debezium/lib/logger"
	"github.com/christian-posta/debezium/lib/mtr"
	"github.com/christian-posta/debezium/sources/mysql"
	"github.com/christian-posta/debezium/writers"
)

func setUpMetrics(cfg *config.Metrics) (mtr.Client, error) {
	if cfg == nil {
		return nil, nil
	}

	slog.Info("Creating metrics client")
	return mtr.New(cfg.Namespace, cfg.Tags, 0.5)
}

func main() {
	var configFilePath string
	flag.StringVar(&configFilePath, "config", "", "path to config file")
	flag.Parse()

	cfg, err := config.ReadConfig(configFilePath)
	if err != nil {
		logger.Fatal("Failed to read config file", slog.Any("err", err))
	}

	_logger, usingSentry := logger.NewLogger(cfg)
	slog.SetDefault(_logger)
	if usingSentry {
		defer sentry.Flush(2 * time.Second)
		slog.Info("Sentry logger enabled")
	}

	ctx := context.Background()

	statsD, err := setUpMetrics(cfg.Metrics)
	if err != nil {
		logger.Fatal("Failed to set up metrics", slog.Any("err", err))
	}

	destination, err := kafkalib.NewBatchWriter(ctx, *cfg.Kafka)
	if err != nil {
		logger.Fatal("Failed to set up kafka", slog.Any("err", err))
	}

	source, err := mysql.Load(ctx, *cfg.MySQL, statsD)
	if err != nil {
		logger.Fatal("Failed to load the MySQL source", slog.Any("err", err))
	}

	defer func() {
		if err = source.Close(); err != nil {
			slog.Warn("Failed to close the source", slog.Any("err", err))
		}
	}()

	writer := writers.New(destination, true)
	if err = source.Run(ctx, writer); err != nil {
		logger.Fatal("Failed to run the MySQL binlog stream", slog.Any("err", err))
	}
}
