// Package services содержит бизнес-логику для управления абонентами:
// создание, чтение, редактирование и переподписку с архивированием
// вытесненного периода.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/SRSacc/srsapp-api/internal/lib/clock"
	"github.com/SRSacc/srsapp-api/internal/lib/sl"
	"github.com/SRSacc/srsapp-api/internal/models"
	"github.com/SRSacc/srsapp-api/internal/subscription"
)

// Принимаемые форматы момента начала периода.
var startLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

// SubscriberRepository определяет методы для работы с абонентами в хранилище.
type SubscriberRepository interface {
	// CreateSubscriber добавляет нового абонента и возвращает его UID.
	CreateSubscriber(ctx context.Context, sub models.Subscriber) (string, error)
	// FindSubscriberByID возвращает абонента по UID.
	FindSubscriberByID(ctx context.Context, uid string) (*models.Subscriber, error)
	// ListSubscribers возвращает страницу абонентов.
	ListSubscribers(ctx context.Context, limit, offset int) ([]*models.Subscriber, error)
	// SaveSubscriber сохраняет абонента с проверкой версии.
	SaveSubscriber(ctx context.Context, sub *models.Subscriber) error
	// DeleteSubscriber удаляет абонента вместе с архивом периодов.
	DeleteSubscriber(ctx context.Context, uid string) error
	// CreateHistoryRecord добавляет снимок периода в архив.
	CreateHistoryRecord(ctx context.Context, record models.SubscriptionHistoryRecord) error
	// ListHistoryBySubscriber возвращает архив периодов абонента.
	ListHistoryBySubscriber(ctx context.Context, uid string) ([]*models.SubscriptionHistoryRecord, error)
}

// Reevaluator пересчитывает статус абонента по текущим часам
// и сохраняет его при изменении.
type Reevaluator interface {
	Reevaluate(ctx context.Context, sub *models.Subscriber) (subscription.Status, bool, error)
}

// Cache описывает методы для кэширования данных.
type Cache interface {
	// Get пытается получить значение из кеша по ключу.
	Get(key string, result any) (bool, error)
	// Set сохраняет значение в кеш с временем жизни.
	Set(key string, value any, expiration time.Duration) error
	// Invalidate удаляет значение из кеша по ключу.
	Invalidate(key string) error
}

// SubscriberService реализует бизнес-логику работы с абонентами.
type SubscriberService struct {
	repo      SubscriberRepository
	lifecycle Reevaluator
	cache     Cache
	clk       clock.Clock
	opts      subscription.Options
	log       *slog.Logger
}

// NewSubscriberService создает новый экземпляр SubscriberService.
func NewSubscriberService(repo SubscriberRepository, lifecycle Reevaluator, cache Cache,
	clk clock.Clock, opts subscription.Options, log *slog.Logger) *SubscriberService {
	return &SubscriberService{
		repo:      repo,
		lifecycle: lifecycle,
		cache:     cache,
		clk:       clk,
		opts:      opts,
		log:       log,
	}
}

// Create создает нового абонента: рассчитывает окно доступа и дату
// истечения по тарифу, определяет начальный статус и сохраняет запись.
// Момент начала опционален, по умолчанию — текущее время.
func (s *SubscriberService) Create(ctx context.Context, req models.DummySubscriber) (string, error) {
	start, err := s.parseStart(req.StartDateTime)
	if err != nil {
		return "", err
	}

	period, err := s.buildPeriod(subscription.PlanCode(req.PlanCode), models.PaymentMode(req.PaymentMode), start)
	if err != nil {
		return "", err
	}

	sub := models.Subscriber{
		FullName:       req.FullName,
		PhoneNumber:    req.PhoneNumber,
		Referral:       req.Referral,
		SubscriberType: models.SubscriberType(req.SubscriberType),
		Image:          req.Image,
		Period:         period,
	}

	uid, err := s.repo.CreateSubscriber(ctx, sub)
	if err != nil {
		return "", err
	}
	sub.UID = uid
	s.log.Info("created new subscriber",
		slog.String("uid", uid),
		slog.String("plan_code", req.PlanCode),
		slog.String("status", string(period.Status)))

	s.cacheSet(uid, &sub)
	return uid, nil
}

// Read возвращает абонента по UID, пересчитывая его статус по текущим
// часам. Изменившийся статус сохраняется в хранилище.
func (s *SubscriberService) Read(ctx context.Context, uid string) (*models.Subscriber, error) {
	var sub *models.Subscriber
	cacheKey := cacheKey(uid)
	found, err := s.cache.Get(cacheKey, &sub)
	if err != nil {
		s.log.Warn("failed to read from cache", slog.String("key", cacheKey), sl.Err(err))
		found = false
	}
	if !found {
		sub, err = s.repo.FindSubscriberByID(ctx, uid)
		if err != nil {
			return nil, err
		}
	}

	if _, changed, err := s.lifecycle.Reevaluate(ctx, sub); err != nil {
		return nil, err
	} else if changed || !found {
		s.cacheSet(uid, sub)
	}
	return sub, nil
}

// List возвращает страницу абонентов. Статусы пересчитываются по текущим
// часам в памяти, без записи в хранилище: сохранение отложено до фонового
// пересчёта или чтения отдельной записи.
func (s *SubscriberService) List(ctx context.Context, limit, offset int) ([]*models.Subscriber, error) {
	subs, err := s.repo.ListSubscribers(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	now := s.clk.Now()
	for _, sub := range subs {
		res := subscription.Resolve(now, sub.Period.StartDateTime, sub.Period.ExpirationDate, s.opts)
		sub.Period.Status = res.Status
	}
	return subs, nil
}

// Update редактирует данные абонента. Смена тарифа, способа оплаты или
// момента начала влечёт полный пересчёт окна доступа, даты истечения
// и статуса.
func (s *SubscriberService) Update(ctx context.Context, uid string, req models.DummySubscriberUpdate) (*models.Subscriber, error) {
	sub, err := s.repo.FindSubscriberByID(ctx, uid)
	if err != nil {
		return nil, err
	}

	if req.FullName != "" {
		sub.FullName = req.FullName
	}
	if req.PhoneNumber != "" {
		sub.PhoneNumber = req.PhoneNumber
	}
	if req.Referral != "" {
		sub.Referral = req.Referral
	}
	if req.Image != "" {
		sub.Image = req.Image
	}
	if req.PaymentMode != "" {
		sub.Period.PaymentMode = models.PaymentMode(req.PaymentMode)
	}

	if req.PlanCode != "" || req.StartDateTime != "" {
		planCode := sub.Period.PlanCode
		if req.PlanCode != "" {
			planCode = subscription.PlanCode(req.PlanCode)
		}
		start := sub.Period.StartDateTime
		if req.StartDateTime != "" {
			start, err = parseStartStrict(req.StartDateTime)
			if err != nil {
				return nil, err
			}
		}
		sub.Period, err = s.buildPeriod(planCode, sub.Period.PaymentMode, start)
		if err != nil {
			return nil, err
		}
	}

	if err := s.repo.SaveSubscriber(ctx, sub); err != nil {
		return nil, err
	}
	s.log.Info("updated subscriber", slog.String("uid", uid))

	s.cacheSet(uid, sub)
	return sub, nil
}

// Resubscribe оформляет новый период абонемента. Новые данные сначала
// разбираются и проверяются, затем текущий период архивируется и только
// после успешной записи в архив поля абонента перезаписываются.
// Некорректный запрос не оставляет в архиве осиротевший снимок,
// ошибка архивирования прерывает операцию без частичной перезаписи.
func (s *SubscriberService) Resubscribe(ctx context.Context, uid string, req models.DummyResubscribe) (*models.Subscriber, error) {
	sub, err := s.repo.FindSubscriberByID(ctx, uid)
	if err != nil {
		return nil, err
	}

	start, err := s.parseStart(req.StartDateTime)
	if err != nil {
		return nil, err
	}
	paymentMode := sub.Period.PaymentMode
	if req.PaymentMode != "" {
		paymentMode = models.PaymentMode(req.PaymentMode)
	}
	newPeriod, err := s.buildPeriod(subscription.PlanCode(req.PlanCode), paymentMode, start)
	if err != nil {
		return nil, err
	}

	record := models.SubscriptionHistoryRecord{
		SubscriberUID:  sub.UID,
		PlanCode:       sub.Period.PlanCode,
		PaymentMode:    sub.Period.PaymentMode,
		StartDateTime:  sub.Period.StartDateTime,
		EndDateTime:    sub.Period.EndDateTime,
		ExpirationDate: sub.Period.ExpirationDate,
		Status:         sub.Period.Status,
	}
	if err := s.repo.CreateHistoryRecord(ctx, record); err != nil {
		return nil, fmt.Errorf("archive current period: %w", err)
	}

	sub.Period = newPeriod
	if err := s.repo.SaveSubscriber(ctx, sub); err != nil {
		return nil, err
	}
	s.log.Info("resubscribed",
		slog.String("uid", uid),
		slog.String("plan_code", req.PlanCode),
		slog.String("status", string(sub.Period.Status)))

	s.cacheSet(uid, sub)
	return sub, nil
}

// Delete удаляет абонента вместе с архивом его периодов
// и убирает запись из кеша.
func (s *SubscriberService) Delete(ctx context.Context, uid string) error {
	if err := s.repo.DeleteSubscriber(ctx, uid); err != nil {
		return err
	}
	if err := s.cache.Invalidate(cacheKey(uid)); err != nil {
		s.log.Warn("failed to invalidate subscriber cache",
			slog.String("uid", uid), sl.Err(err))
	}
	s.log.Info("deleted subscriber", slog.String("uid", uid))
	return nil
}

// History возвращает архив периодов абонента.
func (s *SubscriberService) History(ctx context.Context, uid string) ([]*models.SubscriptionHistoryRecord, error) {
	if _, err := s.repo.FindSubscriberByID(ctx, uid); err != nil {
		return nil, err
	}
	return s.repo.ListHistoryBySubscriber(ctx, uid)
}

// buildPeriod рассчитывает период по тарифу и моменту начала,
// проверяет окно и определяет начальный статус.
func (s *SubscriberService) buildPeriod(code subscription.PlanCode, paymentMode models.PaymentMode,
	start time.Time) (models.SubscriptionPeriod, error) {
	if _, err := subscription.Lookup(code); err != nil {
		return models.SubscriptionPeriod{}, err
	}
	window := subscription.Compute(code, start, s.opts)
	if err := subscription.ValidateWindow(start, window.Expiration); err != nil {
		return models.SubscriptionPeriod{}, err
	}
	res := subscription.Resolve(s.clk.Now(), start, window.Expiration, s.opts)
	return models.SubscriptionPeriod{
		PlanCode:       code,
		PaymentMode:    paymentMode,
		StartDateTime:  start,
		EndDateTime:    window.End,
		ExpirationDate: window.Expiration,
		Status:         res.Status,
	}, nil
}

// parseStart разбирает опциональный момент начала.
// Пустая строка означает текущее время.
func (s *SubscriberService) parseStart(raw string) (time.Time, error) {
	if raw == "" {
		return s.clk.Now(), nil
	}
	return parseStartStrict(raw)
}

func parseStartStrict(raw string) (time.Time, error) {
	for _, layout := range startLayouts {
		if t, err := time.ParseInLocation(layout, raw, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid start datetime: %q", raw)
}

func cacheKey(uid string) string {
	return fmt.Sprintf("subscriber:%s", uid)
}

func (s *SubscriberService) cacheSet(uid string, sub *models.Subscriber) {
	key := cacheKey(uid)
	if err := s.cache.Set(key, sub, time.Hour); err != nil {
		s.log.Warn("failed to cache subscriber", slog.String("key", key), sl.Err(err))
	}
}
