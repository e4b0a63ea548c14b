// Package remove реализует HTTP-обработчик для удаления абонента.
package remove

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
	"github.com/SRSacc/srsapp-api/internal/storage"
)

// Handler обрабатывает запросы на удаление абонента.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики удаления абонента.
type Service interface {
	Delete(ctx context.Context, uid string) error
}

// New создает новый Handler с переданным логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Удалить абонента
// @Description Удаляет абонента вместе с архивом его периодов.
// @Tags Subscribers
// @Produce  json
// @Param uid path string true "UID абонента"
// @Success 200 {object} response.Response "Абонент удалён"
// @Failure 404 {object} response.ErrorResponse "Абонент не найден"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Security BearerAuth
// @Router /subscribers/{uid} [delete]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscriber.remove"

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

	if err := h.service.Delete(r.Context(), uid); err != nil {
		log.Error("failed to delete subscriber", sl.Err(err))
		if errors.Is(err, storage.ErrSubscriberNotFound) {
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("subscriber not found"))
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not delete subscriber"))
		return
	}

	log.Info("success to delete subscriber", slog.String("uid", uid))
	render.JSON(w, r, response.OK())
}
