// Package srsapp предоставляет маршруты для основного приложения.
package srsapp

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/SRSacc/srsapp-api/internal/http/handlers/auth/changepassword"
	"github.com/SRSacc/srsapp-api/internal/http/handlers/auth/login"
	"github.com/SRSacc/srsapp-api/internal/http/handlers/auth/me"
	"github.com/SRSacc/srsapp-api/internal/http/handlers/auth/receptionists"
	"github.com/SRSacc/srsapp-api/internal/http/handlers/auth/register"
	"github.com/SRSacc/srsapp-api/internal/http/handlers/subscriber/create"
	"github.com/SRSacc/srsapp-api/internal/http/handlers/subscriber/health"
	"github.com/SRSacc/srsapp-api/internal/http/handlers/subscriber/history"
	"github.com/SRSacc/srsapp-api/internal/http/handlers/subscriber/list"
	"github.com/SRSacc/srsapp-api/internal/http/handlers/subscriber/read"
	"github.com/SRSacc/srsapp-api/internal/http/handlers/subscriber/reevaluate"
	"github.com/SRSacc/srsapp-api/internal/http/handlers/subscriber/remove"
	"github.com/SRSacc/srsapp-api/internal/http/handlers/subscriber/resubscribe"
	"github.com/SRSacc/srsapp-api/internal/http/handlers/subscriber/update"
	"github.com/SRSacc/srsapp-api/internal/http/middlewarectx"
	authservice "github.com/SRSacc/srsapp-api/internal/services/auth"
	lifecycleservice "github.com/SRSacc/srsapp-api/internal/services/lifecycle"
	subscriberservice "github.com/SRSacc/srsapp-api/internal/services/subscriber"
)

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger,
	subscriberService *subscriberservice.SubscriberService,
	lifecycleService *lifecycleservice.LifecycleService,
	authService *authservice.AuthService) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	r.Route("/api/v1", func(r chi.Router) {
		// Открытые конечные точки
		r.Post("/login", login.New(logger, authService).ServeHTTP)
		r.Get("/health", health.New(logger).ServeHTTP)

		// Группа с JWT аутентификацией: обе роли
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(authService, logger))
			r.Use(middlewarectx.RateLimitMiddleware(logger))
			r.Post("/subscribers", create.New(logger, subscriberService).ServeHTTP)
			r.Get("/subscribers", list.New(logger, subscriberService).ServeHTTP)
			r.Get("/subscribers/{uid}", read.New(logger, subscriberService).ServeHTTP)
			r.Put("/subscribers/{uid}", update.New(logger, subscriberService).ServeHTTP)
			r.Delete("/subscribers/{uid}", remove.New(logger, subscriberService).ServeHTTP)
			r.Post("/subscribers/{uid}/resubscribe", resubscribe.New(logger, subscriberService).ServeHTTP)
			r.Get("/subscribers/{uid}/history", history.New(logger, subscriberService).ServeHTTP)
			r.Post("/change-password", changepassword.New(logger, authService).ServeHTTP)
			r.Get("/me", me.New(logger, authService).ServeHTTP)
		})

		// Группа только для менеджера
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(authService, logger))
			r.Use(middlewarectx.RequireRoleMiddleware(logger, "manager"))
			r.Post("/register", register.New(logger, authService).ServeHTTP)
			r.Get("/receptionists", receptionists.New(logger, authService).ServeHTTP)
			r.Post("/subscribers/reevaluate", reevaluate.New(logger, lifecycleService).ServeHTTP)
		})
	})

	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
