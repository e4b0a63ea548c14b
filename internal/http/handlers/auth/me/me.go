// Package me реализует HTTP-обработчик для получения данных текущего сотрудника.
package me

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/SRSacc/srsapp-api/internal/http/middlewarectx"
	"github.com/SRSacc/srsapp-api/internal/http/response"
	"github.com/SRSacc/srsapp-api/internal/lib/sl"
	"github.com/SRSacc/srsapp-api/internal/models"
)

// Handler обрабатывает запросы на получение профиля текущего сотрудника.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики чтения сотрудника.
type Service interface {
	GetUser(ctx context.Context, username string) (*models.User, error)
}

// New создает новый Handler с переданным логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Текущий сотрудник
// @Description Возвращает имя, роль и дату регистрации текущего сотрудника.
// @Tags Auth
// @Produce  json
// @Success 200 {object} map[string]any "Данные сотрудника"
// @Failure 401 {object} response.ErrorResponse "Не авторизован"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Security BearerAuth
// @Router /me [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.me"

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

	user, err := h.service.GetUser(r.Context(), username)
	if err != nil {
		log.Error("failed to get user", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not get user"))
		return
	}

	log.Info("success to get user", slog.String("username", username))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"username":   user.Username,
		"role":       user.Role,
		"created_at": user.CreatedAt,
	}))
}
