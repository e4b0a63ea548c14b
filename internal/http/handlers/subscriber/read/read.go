// Package read реализует HTTP-обработчик для получения абонента по UID.
//
// Handler извлекает UID из URL-параметров, вызывает бизнес-логику чтения
// с пересчётом статуса по текущим часам и возвращает данные абонента
// в JSON-формате.
package read

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/SRSacc/srsapp-api/internal/http/response"
	"github.com/SRSacc/srsapp-api/internal/lib/sl"
	"github.com/SRSacc/srsapp-api/internal/models"
	"github.com/SRSacc/srsapp-api/internal/storage"
)

// Handler обрабатывает запросы на получение абонента по уникальному идентификатору.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики чтения абонента.
type Service interface {
	Read(ctx context.Context, uid string) (*models.Subscriber, error)
}

// New создает новый Handler с переданным логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Получить абонента
// @Description Возвращает абонента по UID. Статус абонемента пересчитывается на момент запроса.
// @Tags Subscribers
// @Produce  json
// @Param uid path string true "UID абонента"
// @Success 200 {object} map[string]any "Данные абонента"
// @Failure 404 {object} response.ErrorResponse "Абонент не найден"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Security BearerAuth
// @Router /subscribers/{uid} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscriber.read"

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

	sub, err := h.service.Read(r.Context(), uid)
	if err != nil {
		log.Error("failed to read subscriber", sl.Err(err))
		if errors.Is(err, storage.ErrSubscriberNotFound) {
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("subscriber not found"))
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not read subscriber"))
		return
	}

	log.Info("success to read subscriber", slog.String("uid", uid))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"subscriber": sub,
	}))
}
