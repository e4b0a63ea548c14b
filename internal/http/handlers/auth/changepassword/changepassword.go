// Package changepassword реализует HTTP-обработчик смены пароля сотрудника.
//
// Имя сотрудника берётся из контекста запроса, куда его помещает
// JWT-middleware: пароль можно сменить только себе.
package changepassword

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/SRSacc/srsapp-api/internal/http/middlewarectx"
	"github.com/SRSacc/srsapp-api/internal/http/response"
	"github.com/SRSacc/srsapp-api/internal/lib/sl"
	"github.com/SRSacc/srsapp-api/internal/models"
)

// Handler обрабатывает запросы на смену пароля.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс бизнес-логики смены пароля.
type Service interface {
	ChangePassword(ctx context.Context, username, currentPassword, newPassword string) error
}

// New создает новый Handler с переданным логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Сменить пароль
// @Description Меняет пароль текущего сотрудника после проверки действующего пароля.
// @Tags Auth
// @Accept  json
// @Produce  json
// @Param request body models.DummyChangePassword true "Текущий и новый пароли"
// @Success 200 {object} response.Response "Пароль изменён"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Неверный текущий пароль"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Security BearerAuth
// @Router /change-password [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.changepassword"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	username, ok := r.Context().Value(middlewarectx.User).(string)
	if !ok || username == "" {
		log.Error("missing username in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	var req models.DummyChangePassword
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
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

	if err := h.service.ChangePassword(r.Context(), username, req.CurrentPassword, req.NewPassword); err != nil {
		log.Error("failed to change password", sl.Err(err))
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("invalid credentials"))
		return
	}

	log.Info("password changed", slog.String("username", username))
	render.JSON(w, r, response.OK())
}
