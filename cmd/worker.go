package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/tradeyard/eventgate/internal/config"
	"github.com/tradeyard/eventgate/internal/db"
	"github.com/tradeyard/eventgate/internal/dispatch"
	"github.com/tradeyard/eventgate/internal/kafka"
	"github.com/tradeyard/eventgate/internal/logger"
	"github.com/tradeyard/eventgate/internal/metrics"
	"github.com/tradeyard/eventgate/internal/repository"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Run webhook delivery worker (kafka queue backend)",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		zlog, err := logger.New(cfg.Log.Level)
		if err != nil {
			return fmt.Errorf("init logger: %w", err)
		}
		defer func() { _ = zlog.Sync() }()

		metrics.MustRegister(prometheus.DefaultRegisterer)

		if cfg.Dispatch.QueueBackend != "kafka" {
			return fmt.Errorf("worker requires dispatch.queue_backend=kafka, got %q", cfg.Dispatch.QueueBackend)
		}

		var reports repository.DeliveryLog
		if cfg.ClickHouse.DSN != "" {
			chDB, err := db.NewClickHouseConnection(db.ClickHouseOpts{
				DSN:             cfg.ClickHouse.DSN,
				MaxOpenConns:    cfg.ClickHouse.MaxOpenConns,
				MaxIdleConns:    cfg.ClickHouse.MaxIdleConns,
				ConnMaxLifetime: cfg.ClickHouse.ConnMaxLifetime,
				ConnMaxIdleTime: cfg.ClickHouse.ConnMaxIdleTime,
				PingTimeout:     cfg.ClickHouse.PingTimeout,
			})
			if err != nil {
				return fmt.Errorf("clickhouse connect: %w", err)
			}
			defer func() { _ = chDB.Close() }()
			reports = repository.NewCHDeliveryLog(chDB)
		}

		groupID := cfg.Kafka.GroupID
		if groupID == "" {
			groupID = "eventgate-delivery"
		}
		consumer := kafka.NewConsumerFromConfig(kafka.Config{
			Brokers:        cfg.Kafka.Brokers,
			Topic:          cfg.Kafka.Topic,
			GroupID:        groupID,
			MinBytes:       cfg.Kafka.MinBytes,
			MaxBytes:       cfg.Kafka.MaxBytes,
			CommitInterval: time.Duration(cfg.Kafka.CommitInterval) * time.Millisecond,
		})
		defer consumer.Close()

		source := dispatch.NewKafkaSource(consumer, zlog)
		sender := dispatch.NewSender(cfg.Dispatch.MaxAttempts, cfg.Dispatch.BaseDelay, cfg.Dispatch.HTTPTimeout, zlog)
		pool := dispatch.NewPool(source, sender, reports, cfg.Dispatch.Workers, zlog)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		log.Printf(">> delivery worker started topic=%s group=%s workers=%d",
			cfg.Kafka.Topic, groupID, cfg.Dispatch.Workers)

		return pool.Run(ctx)
	},
}
