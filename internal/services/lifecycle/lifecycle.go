// Package services содержит переоценку статусов жизненного цикла:
// одиночную при чтении записи и пакетную для фонового прохода.
package services

import (
	"context"
	"log/slog"

	"github.com/SRSacc/srsapp-api/internal/lib/clock"
	"github.com/SRSacc/srsapp-api/internal/lib/sl"
	"github.com/SRSacc/srsapp-api/internal/metrics"
	"github.com/SRSacc/srsapp-api/internal/models"
	"github.com/SRSacc/srsapp-api/internal/subscription"
)

// SubscriberRepository определяет методы хранилища, нужные переоценке.
type SubscriberRepository interface {
	// ListAllSubscribers возвращает всех абонентов для пакетного прохода.
	ListAllSubscribers(ctx context.Context) ([]*models.Subscriber, error)
	// UpdateSubscriberStatus сохраняет только поле статуса.
	UpdateSubscriberStatus(ctx context.Context, uid string, status subscription.Status) error
}

// EventPublisher публикует события смены статуса в брокер.
type EventPublisher interface {
	PublishStatusChanged(event models.LifecycleEvent) error
}

// LifecycleService пересчитывает статусы абонементов по текущим часам.
type LifecycleService struct {
	repo      SubscriberRepository
	publisher EventPublisher
	clk       clock.Clock
	opts      subscription.Options
	log       *slog.Logger
}

// NewLifecycleService создает новый экземпляр LifecycleService.
// publisher может быть nil — тогда события не публикуются.
func NewLifecycleService(repo SubscriberRepository, publisher EventPublisher,
	clk clock.Clock, opts subscription.Options, log *slog.Logger) *LifecycleService {
	return &LifecycleService{
		repo:      repo,
		publisher: publisher,
		clk:       clk,
		opts:      opts,
		log:       log,
	}
}

// Reevaluate пересчитывает статус одного абонента. Если выведенный статус
// отличается от сохранённого, новое значение записывается в хранилище,
// публикуется событие и возвращается признак изменения. Повторный вызов
// без сдвига часов возвращает тот же статус без записи.
func (s *LifecycleService) Reevaluate(ctx context.Context, sub *models.Subscriber) (subscription.Status, bool, error) {
	res := subscription.Resolve(s.clk.Now(), sub.Period.StartDateTime, sub.Period.ExpirationDate, s.opts)
	if res.Status == sub.Period.Status {
		return res.Status, false, nil
	}

	if err := s.repo.UpdateSubscriberStatus(ctx, sub.UID, res.Status); err != nil {
		return sub.Period.Status, false, err
	}

	from := sub.Period.Status
	sub.Period.Status = res.Status
	metrics.StatusTransitionsTotal.WithLabelValues(string(from), string(res.Status)).Inc()
	s.log.Info("subscriber status changed",
		slog.String("uid", sub.UID),
		slog.String("from", string(from)),
		slog.String("to", string(res.Status)))

	s.publish(models.LifecycleEvent{
		SubscriberUID:  sub.UID,
		FullName:       sub.FullName,
		PlanCode:       sub.Period.PlanCode,
		From:           from,
		To:             res.Status,
		ExpirationDate: sub.Period.ExpirationDate,
		OccurredAt:     s.clk.Now(),
	})

	return res.Status, true, nil
}

// ReevaluateAll пересчитывает статусы всех абонентов и возвращает
// количество изменённых. Проход не атомарен: ошибка сохранения одного
// абонента логируется и не прерывает остальных.
func (s *LifecycleService) ReevaluateAll(ctx context.Context) (int, error) {
	metrics.SweepRunsTotal.Inc()

	subs, err := s.repo.ListAllSubscribers(ctx)
	if err != nil {
		return 0, err
	}

	changed := 0
	for _, sub := range subs {
		_, didChange, err := s.Reevaluate(ctx, sub)
		if err != nil {
			metrics.SweepFailuresTotal.Inc()
			s.log.Error("failed to reevaluate subscriber",
				slog.String("uid", sub.UID), sl.Err(err))
			continue
		}
		if didChange {
			changed++
		}
	}
	s.log.Info("lifecycle sweep finished",
		slog.Int("total", len(subs)),
		slog.Int("changed", changed))
	return changed, nil
}

func (s *LifecycleService) publish(event models.LifecycleEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishStatusChanged(event); err != nil {
		s.log.Error("failed to publish lifecycle event",
			slog.String("uid", event.SubscriberUID), sl.Err(err))
	}
}
