// Package srsapp собирает все зависимости HTTP-приложения: хранилище,
// миграции, кеш, брокер событий, сервисы и роутер.
package srsapp

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/streadway/amqp"

	"github.com/SRSacc/srsapp-api/internal/cache"
	"github.com/SRSacc/srsapp-api/internal/config"
	"github.com/SRSacc/srsapp-api/internal/lib/clock"
	"github.com/SRSacc/srsapp-api/internal/lib/jwt"
	"github.com/SRSacc/srsapp-api/internal/lib/rabbitmq"
	"github.com/SRSacc/srsapp-api/internal/lib/sl"
	"github.com/SRSacc/srsapp-api/internal/metrics"
	"github.com/SRSacc/srsapp-api/internal/migrations"
	authservice "github.com/SRSacc/srsapp-api/internal/services/auth"
	lifecycleservice "github.com/SRSacc/srsapp-api/internal/services/lifecycle"
	subscriberservice "github.com/SRSacc/srsapp-api/internal/services/subscriber"
	"github.com/SRSacc/srsapp-api/internal/storage"
)

// App инкапсулирует HTTP-сервер и внешние подключения.
type App struct {
	server *http.Server
	logger *slog.Logger
	db     *storage.Storage
	conn   *amqp.Connection
	ch     *amqp.Channel
}

// New собирает приложение из конфигурации: подключает базу, прогоняет
// миграции, инициализирует кеш и брокер, создает сервисы и маршруты.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := storage.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, "./migrations"); err != nil {
		return nil, err
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		return nil, err
	}

	opts, err := cfg.Engine.Options()
	if err != nil {
		return nil, err
	}

	// Брокер опционален: без него события смены статуса не публикуются.
	var conn *amqp.Connection
	var ch *amqp.Channel
	var publisher lifecycleservice.EventPublisher
	if cfg.RabbitMQURL != "" {
		conn, err = rabbitmq.Connect(cfg.RabbitMQURL, cfg.RabbitMQMaxRetries, cfg.RabbitMQRetryDelay)
		if err != nil {
			return nil, err
		}
		ch, err = rabbitmq.SetupChannel(conn)
		if err != nil {
			return nil, err
		}
		publisher = rabbitmq.NewPublisher(ch)
	} else {
		logger.Warn("rabbitmq url is empty, lifecycle events will not be published")
	}

	metrics.InitMetrics()

	clk := clock.System{}
	lifecycleService := lifecycleservice.NewLifecycleService(db, publisher, clk, opts, logger)
	subscriberService := subscriberservice.NewSubscriberService(db, lifecycleService, cacheRedis, clk, opts, logger)
	jwtMaker := jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL)
	authService := authservice.NewAuthService(db, jwtMaker)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, subscriberService, lifecycleService, authService)

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server: srv,
		logger: logger,
		db:     db,
		conn:   conn,
		ch:     ch,
	}, nil
}

// Run запускает HTTP-сервер и блокируется до отмены контекста
// или ошибки сервера.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		a.close()
		return err
	}
}

func (a *App) close() {
	if a.ch != nil {
		if err := a.ch.Close(); err != nil {
			a.logger.Error("failed to close channel", sl.Err(err))
		}
	}
	if a.conn != nil {
		if err := a.conn.Close(); err != nil {
			a.logger.Error("failed to close connection", sl.Err(err))
		}
	}
	if err := a.db.DB.Close(); err != nil {
		a.logger.Error("failed to close database", sl.Err(err))
	}
}
