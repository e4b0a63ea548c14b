// Package receptionists реализует HTTP-обработчик для получения списка
// администраторов стойки. Доступен только менеджеру.
package receptionists

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/SRSacc/srsapp-api/internal/http/response"
	"github.com/SRSacc/srsapp-api/internal/lib/sl"
	"github.com/SRSacc/srsapp-api/internal/models"
)

// Handler обрабатывает запросы на получение списка администраторов стойки.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики списка сотрудников.
type Service interface {
	ListReceptionists(ctx context.Context) ([]*models.User, error)
}

// New создает новый Handler с переданным логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Список администраторов стойки
// @Description Возвращает всех сотрудников с ролью receptionist. Только для менеджера.
// @Tags Auth
// @Produce  json
// @Success 200 {object} map[string]any "Список сотрудников"
// @Failure 403 {object} response.ErrorResponse "Доступ запрещён"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Security BearerAuth
// @Router /receptionists [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.receptionists"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	users, err := h.service.ListReceptionists(r.Context())
	if err != nil {
		log.Error("failed to list receptionists", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not list receptionists"))
		return
	}

	items := make([]map[string]any, 0, len(users))
	for _, u := range users {
		items = append(items, map[string]any{
			"username":   u.Username,
			"role":       u.Role,
			"created_at": u.CreatedAt,
		})
	}

	log.Info("success to list receptionists", slog.Int("count", len(items)))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"receptionists": items,
		"count":         len(items),
	}))
}
