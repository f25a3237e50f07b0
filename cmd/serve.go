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
	"github.com/tradeyard/eventgate/internal/event"
	httpSrv "github.com/tradeyard/eventgate/internal/http"
	"github.com/tradeyard/eventgate/internal/kafka"
	"github.com/tradeyard/eventgate/internal/logger"
	"github.com/tradeyard/eventgate/internal/metrics"
	"github.com/tradeyard/eventgate/internal/realtime"
	"github.com/tradeyard/eventgate/internal/repository"
	"github.com/tradeyard/eventgate/internal/storage"
	"github.com/tradeyard/eventgate/internal/webhook"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run HTTP server",
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

		redisClient, err := db.NewRedisClient(db.RedisOpts{
			Addr:        cfg.Redis.Addr,
			Password:    cfg.Redis.Password,
			DB:          cfg.Redis.DB,
			DialTimeout: cfg.Redis.DialTimeout,
		})
		if err != nil {
			return fmt.Errorf("redis connect: %w", err)
		}
		defer func() { _ = redisClient.Close() }()

		storeOpts := storage.Options{
			Engine:   cfg.Storage.Engine,
			Redis:    redisClient,
			RedisTTL: 0, // primary records do not expire
		}
		if cfg.Storage.Engine == storage.EngineMySQL {
			mysqlDB, err := db.NewMySQLConnection(cfg.MySQL.DSN, db.MySQLOpts{
				MaxOpenConns:    cfg.MySQL.MaxOpenConns,
				MaxIdleConns:    cfg.MySQL.MaxIdleConns,
				ConnMaxLifetime: cfg.MySQL.ConnMaxLifetime,
				ConnMaxIdleTime: cfg.MySQL.ConnMaxIdleTime,
				PingTimeout:     cfg.MySQL.PingTimeout,
			})
			if err != nil {
				return fmt.Errorf("mysql connect: %w", err)
			}
			defer mysqlDB.Close()
			storeOpts.MySQL = mysqlDB
		}

		primary, err := storage.New(storeOpts)
		if err != nil {
			return fmt.Errorf("storage init: %w", err)
		}

		store := primary
		if cfg.Storage.Cache.Enabled {
			cache := storage.NewRedisCache(redisClient, cfg.Storage.Cache.TTL)
			store = storage.NewCacheAside(cache, primary, zlog)
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

		subs := webhook.NewService(store, zlog)

		workerCtx, stopWorkers := context.WithCancel(context.Background())
		defer stopWorkers()

		var queue dispatch.Queue
		switch cfg.Dispatch.QueueBackend {
		case "kafka":
			producer := kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic)
			defer func() { _ = producer.Close() }()
			queue = dispatch.NewKafkaQueue(producer)
			zlog.Info("dispatch queue: kafka; deliveries run in the worker process",
				zap.String("topic", cfg.Kafka.Topic))
		default:
			memQ := dispatch.NewMemoryQueue(cfg.Dispatch.QueueSize)
			defer memQ.Close()
			queue = memQ

			sender := dispatch.NewSender(cfg.Dispatch.MaxAttempts, cfg.Dispatch.BaseDelay, cfg.Dispatch.HTTPTimeout, zlog)
			pool := dispatch.NewPool(memQ, sender, reports, cfg.Dispatch.Workers, zlog)
			go func() {
				if err := pool.Run(workerCtx); err != nil {
					zlog.Error("dispatch pool stopped", zap.Error(err))
				}
			}()
		}

		broadcaster := realtime.NewRedisBroadcaster(redisClient)
		publisher := event.NewPublisher(subs, queue, broadcaster, cfg.Realtime.Channel, zlog)
		stream := realtime.NewSubscriber(redisClient, cfg.Realtime.Channel, zlog)

		server := httpSrv.NewServer(cfg, httpSrv.Deps{
			Store:      store,
			Subs:       subs,
			Publisher:  publisher,
			Deliveries: reports,
			Stream:     stream,
			Redis:      redisClient,
		})

		errCh := make(chan error, 1)
		go func() {
			log.Printf("starting http on %s", cfg.HTTP.Addr)
			errCh <- server.Start(cfg.HTTP.Addr)
		}()

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

		select {
		case sig := <-sigCh:
			log.Printf("signal received: %s, shutting down...", sig)
		case err := <-errCh:
			if err != nil {
				log.Printf("http server exited: %v", err)
			}
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(ctx)
		stopWorkers()

		return nil
	},
}
