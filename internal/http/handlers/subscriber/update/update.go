// Package update реализует HTTP-обработчик для редактирования абонента.
//
// Смена тарифа или даты начала влечёт полный пересчёт окна доступа,
// даты истечения и статуса на стороне сервиса.
package update

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/SRSacc/srsapp-api/internal/http/response"
	"github.com/SRSacc/srsapp-api/internal/lib/sl"
	"github.com/SRSacc/srsapp-api/internal/models"
	"github.com/SRSacc/srsapp-api/internal/storage"
	"github.com/SRSacc/srsapp-api/internal/subscription"
)

// Handler обрабатывает запросы на редактирование абонента.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс бизнес-логики редактирования абонента.
type Service interface {
	Update(ctx context.Context, uid string, req models.DummySubscriberUpdate) (*models.Subscriber, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Редактировать абонента
// @Description Обновляет данные абонента. Смена тарифа или даты начала пересчитывает период доступа.
// @Tags Subscribers
// @Accept  json
// @Produce  json
// @Param uid path string true "UID абонента"
// @Param request body models.DummySubscriberUpdate true "Изменяемые поля"
// @Success 200 {object} map[string]any "Обновленный абонент"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 404 {object} response.ErrorResponse "Абонент не найден"
// @Failure 409 {object} response.ErrorResponse "Конфликт версий"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Security BearerAuth
// @Router /subscribers/{uid} [put]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscriber.update"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	uid := chi.URLParam(r, "uid")
	if uid == "" {
		log.Error("missing uid in url")
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("missing uid in url"))
		return
	}

	var req models.DummySubscriberUpdate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	sub, err := h.service.Update(r.Context(), uid, req)
	if err != nil {
		log.Error("failed to update subscriber", sl.Err(err))
		switch {
		case errors.Is(err, storage.ErrSubscriberNotFound):
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("subscriber not found"))
		case errors.Is(err, storage.ErrVersionConflict):
			w.WriteHeader(http.StatusConflict)
			render.JSON(w, r, response.Error("subscriber was modified concurrently, retry"))
		case errors.Is(err, subscription.ErrInvalidWindow), errors.Is(err, subscription.ErrUnknownPlanCode):
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(err.Error()))
		default:
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not update subscriber"))
		}
		return
	}

	log.Info("success to update subscriber", slog.String("uid", uid))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"subscriber": sub,
	}))
}
