package storage

import (
	"context"
	"fmt"

	"github.com/SRSacc/srsapp-api/internal/models"
)

// CreateHistoryRecord добавляет снимок вытесненного периода в архив.
// Архив пополняется только вставками, записи никогда не изменяются.
func (s *Storage) CreateHistoryRecord(ctx context.Context, record models.SubscriptionHistoryRecord) error {
	const op = "storage.CreateHistoryRecord"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO subscription_history (subscriber_uid, plan_code, payment_mode,
			      start_datetime, end_datetime, expiration_date, status)
			  VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := s.DB.ExecContext(ctx, query,
		record.SubscriberUID, record.PlanCode, record.PaymentMode,
		record.StartDateTime, record.EndDateTime, record.ExpirationDate, record.Status)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ListHistoryBySubscriber возвращает архив периодов абонента,
// от новых к старым.
func (s *Storage) ListHistoryBySubscriber(ctx context.Context, subscriberUID string) ([]*models.SubscriptionHistoryRecord, error) {
	const op = "storage.ListHistoryBySubscriber"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, subscriber_uid, plan_code, payment_mode, start_datetime,
			      end_datetime, expiration_date, status, archived_at
			  FROM subscription_history
			  WHERE subscriber_uid = $1
			  ORDER BY archived_at DESC`
	rows, err := s.DB.QueryContext(ctx, query, subscriberUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = rows.Close() }()

	var result []*models.SubscriptionHistoryRecord
	for rows.Next() {
		var item models.SubscriptionHistoryRecord
		err := rows.Scan(&item.ID, &item.SubscriberUID, &item.PlanCode, &item.PaymentMode,
			&item.StartDateTime, &item.EndDateTime, &item.ExpirationDate, &item.Status,
			&item.ArchivedAt)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
