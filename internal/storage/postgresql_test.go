package storage

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SRSacc/srsapp-api/internal/models"
	"github.com/SRSacc/srsapp-api/internal/subscription"
)

func testSubscriber() models.Subscriber {
	start := time.Date(2024, 3, 20, 9, 0, 0, 0, time.UTC)
	return models.Subscriber{
		FullName:       "Jane Doe",
		PhoneNumber:    "+100000000",
		SubscriberType: models.SubscriberRegular,
		Period: models.SubscriptionPeriod{
			PlanCode:       subscription.PlanWeeklyFull,
			PaymentMode:    models.PaymentSelf,
			StartDateTime:  start,
			EndDateTime:    start.Add(9 * time.Hour),
			ExpirationDate: start.AddDate(0, 0, 7),
			Status:         subscription.StatusActive,
		},
	}
}

func TestStorage_CreateAndFindSubscriber(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	uid, err := storage.CreateSubscriber(context.Background(), testSubscriber())
	require.NoError(t, err)
	require.NotEmpty(t, uid)

	got, err := storage.FindSubscriberByID(context.Background(), uid)
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", got.FullName)
	assert.Equal(t, subscription.PlanWeeklyFull, got.Period.PlanCode)
	assert.Equal(t, subscription.StatusActive, got.Period.Status)
	assert.Equal(t, int64(0), got.Version)
}

func TestStorage_FindSubscriberByID_NotFound(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	_, err := storage.FindSubscriberByID(context.Background(), uuid.New().String())
	assert.ErrorIs(t, err, ErrSubscriberNotFound)
}

func TestStorage_SaveSubscriber(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	factory := NewTestDataFactory(storage)
	uid := factory.CreateSubscriber(t, testSubscriber())

	sub, err := storage.FindSubscriberByID(context.Background(), uid)
	require.NoError(t, err)

	sub.FullName = "Jane Smith"
	sub.Period.Status = subscription.StatusExpiring
	require.NoError(t, storage.SaveSubscriber(context.Background(), sub))
	assert.Equal(t, int64(1), sub.Version)

	got, err := storage.FindSubscriberByID(context.Background(), uid)
	require.NoError(t, err)
	assert.Equal(t, "Jane Smith", got.FullName)
	assert.Equal(t, int64(1), got.Version)
}

func TestStorage_SaveSubscriber_VersionConflict(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	factory := NewTestDataFactory(storage)
	uid := factory.CreateSubscriber(t, testSubscriber())

	first, err := storage.FindSubscriberByID(context.Background(), uid)
	require.NoError(t, err)
	second, err := storage.FindSubscriberByID(context.Background(), uid)
	require.NoError(t, err)

	first.FullName = "First Writer"
	require.NoError(t, storage.SaveSubscriber(context.Background(), first))

	// Вторая запись несёт устаревшую версию
	second.FullName = "Second Writer"
	err = storage.SaveSubscriber(context.Background(), second)
	assert.ErrorIs(t, err, ErrVersionConflict)

	got, err := storage.FindSubscriberByID(context.Background(), uid)
	require.NoError(t, err)
	assert.Equal(t, "First Writer", got.FullName)
}

func TestStorage_SaveSubscriber_NotFound(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	sub := testSubscriber()
	sub.UID = uuid.New().String()
	err := storage.SaveSubscriber(context.Background(), &sub)
	assert.ErrorIs(t, err, ErrSubscriberNotFound)
}

func TestStorage_UpdateSubscriberStatus(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	factory := NewTestDataFactory(storage)
	uid := factory.CreateSubscriber(t, testSubscriber())

	require.NoError(t, storage.UpdateSubscriberStatus(context.Background(), uid, subscription.StatusExpired))

	got, err := storage.FindSubscriberByID(context.Background(), uid)
	require.NoError(t, err)
	assert.Equal(t, subscription.StatusExpired, got.Period.Status)
	// Статус — кэш, версия записи не меняется
	assert.Equal(t, int64(0), got.Version)
}

func TestStorage_History(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	factory := NewTestDataFactory(storage)
	uid := factory.CreateSubscriber(t, testSubscriber())

	sub, err := storage.FindSubscriberByID(context.Background(), uid)
	require.NoError(t, err)

	first := models.SubscriptionHistoryRecord{
		SubscriberUID:  uid,
		PlanCode:       sub.Period.PlanCode,
		PaymentMode:    sub.Period.PaymentMode,
		StartDateTime:  sub.Period.StartDateTime,
		EndDateTime:    sub.Period.EndDateTime,
		ExpirationDate: sub.Period.ExpirationDate,
		Status:         subscription.StatusExpired,
	}
	require.NoError(t, storage.CreateHistoryRecord(context.Background(), first))

	time.Sleep(50 * time.Millisecond)

	second := first
	second.PlanCode = subscription.PlanMonthlyDay
	require.NoError(t, storage.CreateHistoryRecord(context.Background(), second))

	records, err := storage.ListHistoryBySubscriber(context.Background(), uid)
	require.NoError(t, err)
	require.Len(t, records, 2)
	// Новые записи первыми
	assert.Equal(t, subscription.PlanMonthlyDay, records[0].PlanCode)
	assert.Equal(t, subscription.PlanWeeklyFull, records[1].PlanCode)
}

func TestStorage_DeleteSubscriber(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	factory := NewTestDataFactory(storage)
	uid := factory.CreateSubscriber(t, testSubscriber())

	sub, err := storage.FindSubscriberByID(context.Background(), uid)
	require.NoError(t, err)

	record := models.SubscriptionHistoryRecord{
		SubscriberUID:  uid,
		PlanCode:       sub.Period.PlanCode,
		PaymentMode:    sub.Period.PaymentMode,
		StartDateTime:  sub.Period.StartDateTime,
		EndDateTime:    sub.Period.EndDateTime,
		ExpirationDate: sub.Period.ExpirationDate,
		Status:         subscription.StatusExpired,
	}
	require.NoError(t, storage.CreateHistoryRecord(context.Background(), record))

	require.NoError(t, storage.DeleteSubscriber(context.Background(), uid))

	_, err = storage.FindSubscriberByID(context.Background(), uid)
	assert.ErrorIs(t, err, ErrSubscriberNotFound)

	records, err := storage.ListHistoryBySubscriber(context.Background(), uid)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestStorage_DeleteSubscriber_NotFound(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	err := storage.DeleteSubscriber(context.Background(), uuid.New().String())
	assert.ErrorIs(t, err, ErrSubscriberNotFound)
}

func TestStorage_Users(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	factory := NewTestDataFactory(storage)
	uid := factory.CreateUser(t, "manager1", "hashedpassword", "manager")
	require.NotEmpty(t, uid)

	got, err := storage.GetUserByUsername(context.Background(), "manager1")
	require.NoError(t, err)
	assert.Equal(t, uid, got.UID)
	assert.Equal(t, "manager", got.Role)

	_, err = storage.GetUserByUsername(context.Background(), "ghost")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestStorage_UpdateUserPassword(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	factory := NewTestDataFactory(storage)
	factory.CreateUser(t, "manager1", "oldhash", "manager")

	require.NoError(t, storage.UpdateUserPassword(context.Background(), "manager1", "newhash"))

	got, err := storage.GetUserByUsername(context.Background(), "manager1")
	require.NoError(t, err)
	assert.Equal(t, "newhash", got.PasswordHash)

	err = storage.UpdateUserPassword(context.Background(), "ghost", "newhash")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestStorage_ListUsersByRole(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	factory := NewTestDataFactory(storage)
	factory.CreateUser(t, "manager1", "hash", "manager")
	factory.CreateUser(t, "front1", "hash", "receptionist")
	factory.CreateUser(t, "front2", "hash", "receptionist")

	got, err := storage.ListUsersByRole(context.Background(), "receptionist")
	require.NoError(t, err)
	require.Len(t, got, 2)
	for _, u := range got {
		assert.Equal(t, "receptionist", u.Role)
	}
}
