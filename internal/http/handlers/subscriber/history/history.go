// Package history реализует HTTP-обработчик для получения архива периодов абонента.
package history

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

// Handler обрабатывает запросы на получение архива периодов.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики чтения архива.
type Service interface {
	History(ctx context.Context, uid string) ([]*models.SubscriptionHistoryRecord, error)
}

// New создает новый Handler с переданным логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Архив периодов абонента
// @Description Возвращает вытесненные периоды абонемента, новые первыми.
// @Tags Subscribers
// @Produce  json
// @Param uid path string true "UID абонента"
// @Success 200 {object} map[string]any "Архив периодов"
// @Failure 404 {object} response.ErrorResponse "Абонент не найден"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Security BearerAuth
// @Router /subscribers/{uid}/history [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscriber.history"

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

	records, err := h.service.History(r.Context(), uid)
	if err != nil {
		log.Error("failed to read history", sl.Err(err))
		if errors.Is(err, storage.ErrSubscriberNotFound) {
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("subscriber not found"))
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not read history"))
		return
	}

	log.Info("success to read history", slog.String("uid", uid), slog.Int("count", len(records)))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"history": records,
		"count":   len(records),
	}))
}
