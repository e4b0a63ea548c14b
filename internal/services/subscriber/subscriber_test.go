package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/SRSacc/srsapp-api/internal/lib/clock"
	"github.com/SRSacc/srsapp-api/internal/models"
	"github.com/SRSacc/srsapp-api/internal/storage"
	"github.com/SRSacc/srsapp-api/internal/subscription"
)

type RepoMock struct{ mock.Mock }

func (m *RepoMock) CreateSubscriber(ctx context.Context, sub models.Subscriber) (string, error) {
	args := m.Called(ctx, sub)
	return args.String(0), args.Error(1)
}

func (m *RepoMock) FindSubscriberByID(ctx context.Context, uid string) (*models.Subscriber, error) {
	args := m.Called(ctx, uid)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Subscriber), args.Error(1)
}

func (m *RepoMock) ListSubscribers(ctx context.Context, limit, offset int) ([]*models.Subscriber, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Subscriber), args.Error(1)
}

func (m *RepoMock) SaveSubscriber(ctx context.Context, sub *models.Subscriber) error {
	args := m.Called(ctx, sub)
	return args.Error(0)
}

func (m *RepoMock) DeleteSubscriber(ctx context.Context, uid string) error {
	args := m.Called(ctx, uid)
	return args.Error(0)
}

func (m *RepoMock) CreateHistoryRecord(ctx context.Context, record models.SubscriptionHistoryRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *RepoMock) ListHistoryBySubscriber(ctx context.Context, uid string) ([]*models.SubscriptionHistoryRecord, error) {
	args := m.Called(ctx, uid)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.SubscriptionHistoryRecord), args.Error(1)
}

type ReevaluatorMock struct{ mock.Mock }

func (m *ReevaluatorMock) Reevaluate(ctx context.Context, sub *models.Subscriber) (subscription.Status, bool, error) {
	args := m.Called(ctx, sub)
	return args.Get(0).(subscription.Status), args.Bool(1), args.Error(2)
}

type CacheMock struct{ mock.Mock }

func (m *CacheMock) Get(key string, result any) (bool, error) {
	args := m.Called(key, result)
	return args.Bool(0), args.Error(1)
}

func (m *CacheMock) Set(key string, value any, expiration time.Duration) error {
	return m.Called(key, value, expiration).Error(0)
}

func (m *CacheMock) Invalidate(key string) error {
	return m.Called(key).Error(0)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

var testNow = time.Date(2024, time.March, 20, 10, 0, 0, 0, time.Local)

func newService(repo *RepoMock, lifecycle *ReevaluatorMock, cache *CacheMock) *SubscriberService {
	return NewSubscriberService(repo, lifecycle, cache, clock.Fixed{Time: testNow},
		subscription.DefaultOptions(), newNoopLogger())
}

func activeSubscriber(uid string) *models.Subscriber {
	start := testNow.Add(-time.Hour)
	window := subscription.Compute(subscription.PlanWeeklyFull, start, subscription.DefaultOptions())
	return &models.Subscriber{
		UID:            uid,
		FullName:       "Test Subscriber",
		SubscriberType: models.SubscriberRegular,
		Period: models.SubscriptionPeriod{
			PlanCode:       subscription.PlanWeeklyFull,
			PaymentMode:    models.PaymentSelf,
			StartDateTime:  start,
			EndDateTime:    window.End,
			ExpirationDate: window.Expiration,
			Status:         subscription.StatusActive,
		},
	}
}

func TestCreate(t *testing.T) {
	repo := new(RepoMock)
	cache := new(CacheMock)
	svc := newService(repo, new(ReevaluatorMock), cache)

	req := models.DummySubscriber{
		FullName:       "Jane Doe",
		SubscriberType: "regular",
		PaymentMode:    "self",
		PlanCode:       "half-day-morning",
		StartDateTime:  "2024-03-20T09:00",
	}

	start := time.Date(2024, time.March, 20, 9, 0, 0, 0, time.Local)
	cutoff := time.Date(2024, time.March, 20, 18, 0, 0, 0, time.Local)
	repo.On("CreateSubscriber", mock.Anything, mock.MatchedBy(func(sub models.Subscriber) bool {
		return sub.FullName == "Jane Doe" &&
			sub.Period.PlanCode == subscription.PlanHalfDayMorning &&
			sub.Period.StartDateTime.Equal(start) &&
			sub.Period.EndDateTime.Equal(cutoff) &&
			sub.Period.ExpirationDate.Equal(cutoff) &&
			sub.Period.Status == subscription.StatusActive
	})).Return("uid-42", nil).Once()
	cache.On("Set", "subscriber:uid-42", mock.Anything, time.Hour).Return(nil).Once()

	uid, err := svc.Create(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "uid-42", uid)

	repo.AssertExpectations(t)
	cache.AssertExpectations(t)
}

func TestCreate_DefaultsStartToNow(t *testing.T) {
	repo := new(RepoMock)
	cache := new(CacheMock)
	svc := newService(repo, new(ReevaluatorMock), cache)

	req := models.DummySubscriber{
		FullName:       "Jane Doe",
		SubscriberType: "regular",
		PaymentMode:    "company",
		PlanCode:       "weekly-full",
	}

	repo.On("CreateSubscriber", mock.Anything, mock.MatchedBy(func(sub models.Subscriber) bool {
		return sub.Period.StartDateTime.Equal(testNow) &&
			sub.Period.PaymentMode == models.PaymentCompany
	})).Return("uid-7", nil).Once()
	cache.On("Set", "subscriber:uid-7", mock.Anything, time.Hour).Return(nil).Once()

	_, err := svc.Create(context.Background(), req)
	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestCreate_InvalidStart(t *testing.T) {
	svc := newService(new(RepoMock), new(ReevaluatorMock), new(CacheMock))

	req := models.DummySubscriber{
		FullName:       "Jane Doe",
		SubscriberType: "regular",
		PaymentMode:    "self",
		PlanCode:       "weekly-full",
		StartDateTime:  "not a date",
	}

	_, err := svc.Create(context.Background(), req)
	assert.Error(t, err)
}

func TestCreate_UnknownPlanCode(t *testing.T) {
	repo := new(RepoMock)
	svc := newService(repo, new(ReevaluatorMock), new(CacheMock))

	req := models.DummySubscriber{
		FullName: "Jane Doe",
		PlanCode: "yearly-gold",
	}
	_, err := svc.Create(context.Background(), req)
	require.ErrorIs(t, err, subscription.ErrUnknownPlanCode)
	repo.AssertNotCalled(t, "CreateSubscriber", mock.Anything, mock.Anything)
}

func TestRead_CacheMissReevaluates(t *testing.T) {
	repo := new(RepoMock)
	lifecycle := new(ReevaluatorMock)
	cache := new(CacheMock)
	svc := newService(repo, lifecycle, cache)

	sub := activeSubscriber("uid-1")
	cache.On("Get", "subscriber:uid-1", mock.Anything).Return(false, nil).Once()
	repo.On("FindSubscriberByID", mock.Anything, "uid-1").Return(sub, nil).Once()
	lifecycle.On("Reevaluate", mock.Anything, sub).Return(subscription.StatusActive, false, nil).Once()
	cache.On("Set", "subscriber:uid-1", sub, time.Hour).Return(nil).Once()

	got, err := svc.Read(context.Background(), "uid-1")
	require.NoError(t, err)
	assert.Equal(t, sub, got)

	repo.AssertExpectations(t)
	lifecycle.AssertExpectations(t)
	cache.AssertExpectations(t)
}

func TestRead_NotFound(t *testing.T) {
	repo := new(RepoMock)
	cache := new(CacheMock)
	svc := newService(repo, new(ReevaluatorMock), cache)

	cache.On("Get", "subscriber:uid-x", mock.Anything).Return(false, nil).Once()
	repo.On("FindSubscriberByID", mock.Anything, "uid-x").
		Return(nil, fmt.Errorf("storage.FindSubscriberByID: %w", storage.ErrSubscriberNotFound)).Once()

	_, err := svc.Read(context.Background(), "uid-x")
	assert.ErrorIs(t, err, storage.ErrSubscriberNotFound)
}

func TestList_RecomputesStatusesInMemory(t *testing.T) {
	repo := new(RepoMock)
	svc := newService(repo, new(ReevaluatorMock), new(CacheMock))

	expired := activeSubscriber("uid-old")
	expired.Period.StartDateTime = testNow.Add(-72 * time.Hour)
	expired.Period.ExpirationDate = testNow.Add(-time.Hour)

	active := activeSubscriber("uid-new")

	repo.On("ListSubscribers", mock.Anything, 10, 0).
		Return([]*models.Subscriber{expired, active}, nil).Once()

	subs, err := svc.List(context.Background(), 10, 0)
	require.NoError(t, err)
	require.Len(t, subs, 2)
	assert.Equal(t, subscription.StatusExpired, subs[0].Period.Status)
	assert.Equal(t, subscription.StatusActive, subs[1].Period.Status)
}

func TestUpdate_PlanChangeRecomputesPeriod(t *testing.T) {
	repo := new(RepoMock)
	cache := new(CacheMock)
	svc := newService(repo, new(ReevaluatorMock), cache)

	sub := activeSubscriber("uid-1")
	oldStart := sub.Period.StartDateTime

	repo.On("FindSubscriberByID", mock.Anything, "uid-1").Return(sub, nil).Once()
	repo.On("SaveSubscriber", mock.Anything, mock.MatchedBy(func(s *models.Subscriber) bool {
		window := subscription.Compute(subscription.PlanMonthlyDay, oldStart, subscription.DefaultOptions())
		return s.Period.PlanCode == subscription.PlanMonthlyDay &&
			s.Period.StartDateTime.Equal(oldStart) &&
			s.Period.ExpirationDate.Equal(window.Expiration)
	})).Return(nil).Once()
	cache.On("Set", "subscriber:uid-1", mock.Anything, time.Hour).Return(nil).Once()

	got, err := svc.Update(context.Background(), "uid-1", models.DummySubscriberUpdate{PlanCode: "monthly-day"})
	require.NoError(t, err)
	assert.Equal(t, subscription.PlanMonthlyDay, got.Period.PlanCode)

	repo.AssertExpectations(t)
}

func TestResubscribe_ArchivesBeforeOverwrite(t *testing.T) {
	repo := new(RepoMock)
	cache := new(CacheMock)
	svc := newService(repo, new(ReevaluatorMock), cache)

	sub := activeSubscriber("uid-1")
	oldPeriod := sub.Period

	archived := false
	repo.On("FindSubscriberByID", mock.Anything, "uid-1").Return(sub, nil).Once()
	repo.On("CreateHistoryRecord", mock.Anything, mock.MatchedBy(func(rec models.SubscriptionHistoryRecord) bool {
		return rec.SubscriberUID == "uid-1" &&
			rec.PlanCode == oldPeriod.PlanCode &&
			rec.StartDateTime.Equal(oldPeriod.StartDateTime) &&
			rec.ExpirationDate.Equal(oldPeriod.ExpirationDate) &&
			rec.Status == oldPeriod.Status
	})).Run(func(_ mock.Arguments) { archived = true }).Return(nil).Once()
	repo.On("SaveSubscriber", mock.Anything, mock.MatchedBy(func(s *models.Subscriber) bool {
		// Перезапись допускается только после записи в архив.
		window := subscription.Compute(subscription.PlanMonthlyFull, testNow, subscription.DefaultOptions())
		return archived &&
			s.Period.PlanCode == subscription.PlanMonthlyFull &&
			s.Period.StartDateTime.Equal(testNow) &&
			s.Period.ExpirationDate.Equal(window.Expiration)
	})).Return(nil).Once()
	cache.On("Set", "subscriber:uid-1", mock.Anything, time.Hour).Return(nil).Once()

	got, err := svc.Resubscribe(context.Background(), "uid-1", models.DummyResubscribe{PlanCode: "monthly-full"})
	require.NoError(t, err)
	assert.Equal(t, subscription.PlanMonthlyFull, got.Period.PlanCode)
	assert.Equal(t, oldPeriod.PaymentMode, got.Period.PaymentMode)

	repo.AssertExpectations(t)
}

// Ошибка архивирования прерывает переподписку: текущий период не трогается.
func TestResubscribe_ArchiveFailureAborts(t *testing.T) {
	repo := new(RepoMock)
	svc := newService(repo, new(ReevaluatorMock), new(CacheMock))

	sub := activeSubscriber("uid-1")
	oldPeriod := sub.Period

	repo.On("FindSubscriberByID", mock.Anything, "uid-1").Return(sub, nil).Once()
	repo.On("CreateHistoryRecord", mock.Anything, mock.Anything).
		Return(errors.New("history insert failed")).Once()

	_, err := svc.Resubscribe(context.Background(), "uid-1", models.DummyResubscribe{PlanCode: "monthly-full"})
	require.Error(t, err)
	assert.Equal(t, oldPeriod, sub.Period)
	repo.AssertNotCalled(t, "SaveSubscriber", mock.Anything, mock.Anything)
}

func TestResubscribe_InvalidStartLeavesNoArchiveRecord(t *testing.T) {
	repo := new(RepoMock)
	svc := newService(repo, new(ReevaluatorMock), new(CacheMock))

	sub := activeSubscriber("uid-1")
	oldPeriod := sub.Period

	repo.On("FindSubscriberByID", mock.Anything, "uid-1").Return(sub, nil).Once()

	_, err := svc.Resubscribe(context.Background(), "uid-1", models.DummyResubscribe{
		PlanCode:      "monthly-full",
		StartDateTime: "not-a-date",
	})
	require.Error(t, err)
	assert.Equal(t, oldPeriod, sub.Period)
	repo.AssertNotCalled(t, "CreateHistoryRecord", mock.Anything, mock.Anything)
	repo.AssertNotCalled(t, "SaveSubscriber", mock.Anything, mock.Anything)
}

func TestResubscribe_InvalidWindowLeavesNoArchiveRecord(t *testing.T) {
	repo := new(RepoMock)
	svc := newService(repo, new(ReevaluatorMock), new(CacheMock))

	sub := activeSubscriber("uid-1")

	repo.On("FindSubscriberByID", mock.Anything, "uid-1").Return(sub, nil).Once()

	// Утренний полдневный тариф с началом после 18:00 даёт окно,
	// заканчивающееся раньше своего начала.
	_, err := svc.Resubscribe(context.Background(), "uid-1", models.DummyResubscribe{
		PlanCode:      "half-day-morning",
		StartDateTime: "2024-03-20T19:00",
	})
	require.ErrorIs(t, err, subscription.ErrInvalidWindow)
	repo.AssertNotCalled(t, "CreateHistoryRecord", mock.Anything, mock.Anything)
	repo.AssertNotCalled(t, "SaveSubscriber", mock.Anything, mock.Anything)
}

func TestResubscribe_SubscriberNotFound(t *testing.T) {
	repo := new(RepoMock)
	svc := newService(repo, new(ReevaluatorMock), new(CacheMock))

	repo.On("FindSubscriberByID", mock.Anything, "uid-x").
		Return(nil, fmt.Errorf("storage.FindSubscriberByID: %w", storage.ErrSubscriberNotFound)).Once()

	_, err := svc.Resubscribe(context.Background(), "uid-x", models.DummyResubscribe{PlanCode: "weekly-day"})
	assert.ErrorIs(t, err, storage.ErrSubscriberNotFound)
	repo.AssertNotCalled(t, "CreateHistoryRecord", mock.Anything, mock.Anything)
}

func TestDelete_InvalidatesCache(t *testing.T) {
	repo := new(RepoMock)
	cache := new(CacheMock)
	svc := newService(repo, new(ReevaluatorMock), cache)

	repo.On("DeleteSubscriber", mock.Anything, "uid-1").Return(nil).Once()
	cache.On("Invalidate", "subscriber:uid-1").Return(nil).Once()

	err := svc.Delete(context.Background(), "uid-1")
	require.NoError(t, err)
	repo.AssertExpectations(t)
	cache.AssertExpectations(t)
}

func TestDelete_NotFound(t *testing.T) {
	repo := new(RepoMock)
	cache := new(CacheMock)
	svc := newService(repo, new(ReevaluatorMock), cache)

	repo.On("DeleteSubscriber", mock.Anything, "missing").
		Return(fmt.Errorf("storage.DeleteSubscriber: %w", storage.ErrSubscriberNotFound)).Once()

	err := svc.Delete(context.Background(), "missing")
	require.ErrorIs(t, err, storage.ErrSubscriberNotFound)
	cache.AssertNotCalled(t, "Invalidate", mock.Anything)
}

func TestHistory(t *testing.T) {
	repo := new(RepoMock)
	svc := newService(repo, new(ReevaluatorMock), new(CacheMock))

	sub := activeSubscriber("uid-1")
	records := []*models.SubscriptionHistoryRecord{
		{ID: 2, SubscriberUID: "uid-1", PlanCode: subscription.PlanWeeklyDay},
		{ID: 1, SubscriberUID: "uid-1", PlanCode: subscription.PlanFullDay},
	}

	repo.On("FindSubscriberByID", mock.Anything, "uid-1").Return(sub, nil).Once()
	repo.On("ListHistoryBySubscriber", mock.Anything, "uid-1").Return(records, nil).Once()

	got, err := svc.History(context.Background(), "uid-1")
	require.NoError(t, err)
	assert.Equal(t, records, got)
}
