// Package sweeper содержит приложение фонового пересчёта статусов абонементов.
package sweeper

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/streadway/amqp"

	"github.com/SRSacc/srsapp-api/internal/config"
	"github.com/SRSacc/srsapp-api/internal/lib/clock"
	"github.com/SRSacc/srsapp-api/internal/lib/rabbitmq"
	"github.com/SRSacc/srsapp-api/internal/lib/sl"
	"github.com/SRSacc/srsapp-api/internal/metrics"
	lifecycleservice "github.com/SRSacc/srsapp-api/internal/services/lifecycle"
	"github.com/SRSacc/srsapp-api/internal/storage"
)

// App представляет приложение обходчика статусов.
type App struct {
	lifecycleService *lifecycleservice.LifecycleService
	interval         time.Duration
	db               *storage.Storage
	conn             *amqp.Connection
	ch               *amqp.Channel
	logger           *slog.Logger
}

func waitForDB(db *storage.Storage) error {
	for range 10 {
		err := storage.CheckDatabaseReady(db)
		if err == nil {
			return nil
		}
		time.Sleep(3 * time.Second)
	}
	return fmt.Errorf("database not ready after retries")
}

// New создает новый экземпляр приложения обходчика.
func New(_ context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := storage.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to connect storage: %w", err)
	}

	if err := waitForDB(db); err != nil {
		return nil, err
	}

	opts, err := cfg.Engine.Options()
	if err != nil {
		return nil, err
	}

	var conn *amqp.Connection
	var ch *amqp.Channel
	var publisher lifecycleservice.EventPublisher
	if cfg.RabbitMQURL != "" {
		conn, err = rabbitmq.Connect(cfg.RabbitMQURL, cfg.RabbitMQMaxRetries, cfg.RabbitMQRetryDelay)
		if err != nil {
			return nil, fmt.Errorf("failed to connect RabbitMQ: %w", err)
		}
		ch, err = rabbitmq.SetupChannel(conn)
		if err != nil {
			closeResources(nil, conn, logger)
			return nil, fmt.Errorf("failed to setup RabbitMQ channel: %w", err)
		}
		publisher = rabbitmq.NewPublisher(ch)
	} else {
		logger.Warn("rabbitmq url is empty, lifecycle events will not be published")
	}

	metrics.InitMetrics()

	lifecycleService := lifecycleservice.NewLifecycleService(db, publisher, clock.System{}, opts, logger)

	return &App{
		lifecycleService: lifecycleService,
		interval:         cfg.SweepInterval,
		db:               db,
		conn:             conn,
		ch:               ch,
		logger:           logger,
	}, nil
}

func closeResources(ch *amqp.Channel, conn *amqp.Connection, logger *slog.Logger) {
	if ch != nil {
		if err := ch.Close(); err != nil {
			logger.Error("failed to close channel", sl.Err(err))
		}
	}
	if conn != nil {
		if err := conn.Close(); err != nil {
			logger.Error("failed to close connection", sl.Err(err))
		}
	}
}

// Run запускает периодический пересчёт статусов и блокируется
// до отмены контекста. Первый проход выполняется сразу.
func (a *App) Run(ctx context.Context) error {
	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()

	a.sweep(ctx)

	for {
		select {
		case <-ticker.C:
			a.sweep(ctx)
		case <-ctx.Done():
			a.logger.Info("shutting down sweeper")
			closeResources(a.ch, a.conn, a.logger)
			if err := a.db.DB.Close(); err != nil {
				a.logger.Error("failed to close database", sl.Err(err))
			}
			return nil
		}
	}
}

func (a *App) sweep(ctx context.Context) {
	changed, err := a.lifecycleService.ReevaluateAll(ctx)
	if err != nil {
		a.logger.Error("sweep failed", sl.Err(err))
		return
	}
	a.logger.Info("sweep finished", slog.Int("changed", changed))
}
