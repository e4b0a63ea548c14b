// Package reevaluate реализует HTTP-обработчик ручного запуска пересчёта
// статусов всех абонентов. Маршрут доступен только менеджеру и дублирует
// работу фонового обходчика для внеплановой сверки.
package reevaluate

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/SRSacc/srsapp-api/internal/http/response"
	"github.com/SRSacc/srsapp-api/internal/lib/sl"
)

// Handler обрабатывает запросы на ручной пересчёт статусов.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс пересчёта статусов всех абонентов.
type Service interface {
	ReevaluateAll(ctx context.Context) (int, error)
}

// New создает новый Handler с переданным логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Пересчитать статусы всех абонентов
// @Description Запускает полный обход абонентов с пересчётом и сохранением изменившихся статусов. Доступно только менеджеру.
// @Tags Subscribers
// @Produce  json
// @Success 200 {object} map[string]any "Число изменённых статусов"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Security BearerAuth
// @Router /subscribers/reevaluate [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscriber.reevaluate"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	changed, err := h.service.ReevaluateAll(r.Context())
	if err != nil {
		log.Error("failed to reevaluate subscribers", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not reevaluate subscribers"))
		return
	}

	log.Info("success to reevaluate subscribers", slog.Int("changed", changed))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"changed": changed,
	}))
}
