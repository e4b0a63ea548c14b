// Package resubscribe реализует HTTP-обработчик оформления нового периода
// абонемента. Текущий период абонента архивируется до перезаписи; ошибка
// архивирования прерывает операцию целиком.
package resubscribe

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

// Handler обрабатывает запросы на переподписку абонента.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс бизнес-логики переподписки.
type Service interface {
	Resubscribe(ctx context.Context, uid string, req models.DummyResubscribe) (*models.Subscriber, error)
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
// @Summary Переподписать абонента
// @Description Оформляет новый период абонемента. Вытесняемый период сохраняется в архиве до перезаписи.
// @Tags Subscribers
// @Accept  json
// @Produce  json
// @Param uid path string true "UID абонента"
// @Param request body models.DummyResubscribe true "Данные нового периода"
// @Success 200 {object} map[string]any "Абонент с новым периодом"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 404 {object} response.ErrorResponse "Абонент не найден"
// @Failure 409 {object} response.ErrorResponse "Конфликт версий"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера или архивирования"
// @Security BearerAuth
// @Router /subscribers/{uid}/resubscribe [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscriber.resubscribe"

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

	var req models.DummyResubscribe
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}
	log.Info("request body decoded", slog.Any("request", req))

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	sub, err := h.service.Resubscribe(r.Context(), uid, req)
	if err != nil {
		log.Error("failed to resubscribe", sl.Err(err))
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
			render.JSON(w, r, response.Error("could not resubscribe"))
		}
		return
	}

	log.Info("success to resubscribe",
		slog.String("uid", uid),
		slog.String("plan_code", req.PlanCode))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"subscriber": sub,
	}))
}
