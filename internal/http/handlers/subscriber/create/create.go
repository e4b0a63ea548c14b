// Package create реализует HTTP-обработчик для регистрации новых абонентов.
//
// Handler принимает JSON-запрос с данными абонента и тарифом, валидирует их,
// вызывает бизнес-логику создания через сервис и возвращает UID созданной
// записи в JSON-формате.
//
// В случае ошибок формируются соответствующие HTTP-ответы с описанием проблемы.
package create

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/SRSacc/srsapp-api/internal/http/response"
	"github.com/SRSacc/srsapp-api/internal/lib/sl"
	"github.com/SRSacc/srsapp-api/internal/models"
	"github.com/SRSacc/srsapp-api/internal/subscription"
)

// Handler управляет HTTP-запросами на регистрацию абонентов.
type Handler struct {
	log      *slog.Logger        // Логгер для записи информации и ошибок
	service  Service             // Сервис бизнес-логики для создания абонентов
	validate *validator.Validate // Валидатор структуры входящих данных
}

// Service описывает интерфейс бизнес-логики создания абонента.
type Service interface {
	Create(ctx context.Context, req models.DummySubscriber) (string, error)
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
// @Summary Зарегистрировать нового абонента
// @Description Создает абонента с выбранным тарифом. Дата начала опциональна, по умолчанию текущее время. Возвращает UID созданной записи.
// @Tags Subscribers
// @Accept  json
// @Produce  json
// @Param request body models.DummySubscriber true "Данные нового абонента"
// @Success 200 {object} map[string]any "Успешное создание абонента"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON или дата начала"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера при создании абонента"
// @Security BearerAuth
// @Router /subscribers [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscriber.create"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.DummySubscriber
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

	uid, err := h.service.Create(r.Context(), req)
	if err != nil {
		log.Error("failed to create subscriber", sl.Err(err))
		if errors.Is(err, subscription.ErrInvalidWindow) || errors.Is(err, subscription.ErrUnknownPlanCode) {
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(err.Error()))
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not create subscriber"))
		return
	}

	log.Info("success to create subscriber", slog.String("uid", uid))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"uid": uid,
	}))
}
