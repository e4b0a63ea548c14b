package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/SRSacc/srsapp-api/internal/models"
	"github.com/SRSacc/srsapp-api/internal/subscription"
)

const subscriberColumns = `uid, full_name, phone_number, referral, subscriber_type,
			      payment_mode, image, plan_code, start_datetime, end_datetime,
			      expiration_date, status, version, created_at, updated_at`

// CreateSubscriber вставляет нового абонента и возвращает его UID.
func (s *Storage) CreateSubscriber(ctx context.Context, sub models.Subscriber) (string, error) {
	const op = "storage.CreateSubscriber"
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO subscribers (full_name, phone_number, referral, subscriber_type,
			      payment_mode, image, plan_code, start_datetime, end_datetime,
			      expiration_date, status)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
			  RETURNING uid`
	var newUID string
	err := s.DB.QueryRowContext(ctx, query,
		sub.FullName, sub.PhoneNumber, sub.Referral, sub.SubscriberType,
		sub.Period.PaymentMode, sub.Image, sub.Period.PlanCode, sub.Period.StartDateTime,
		sub.Period.EndDateTime, sub.Period.ExpirationDate, sub.Period.Status).Scan(&newUID)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return newUID, nil
}

// FindSubscriberByID возвращает абонента по UID или ErrSubscriberNotFound.
func (s *Storage) FindSubscriberByID(ctx context.Context, uid string) (*models.Subscriber, error) {
	const op = "storage.FindSubscriberByID"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + subscriberColumns + `
			  FROM subscribers
			  WHERE uid = $1`
	row := s.DB.QueryRowContext(ctx, query, uid)

	sub, err := scanSubscriber(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, ErrSubscriberNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return sub, nil
}

// ListSubscribers возвращает страницу абонентов, отсортированных по дате создания.
func (s *Storage) ListSubscribers(ctx context.Context, limit, offset int) ([]*models.Subscriber, error) {
	const op = "storage.ListSubscribers"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + subscriberColumns + `
			  FROM subscribers
			  ORDER BY created_at DESC
			  LIMIT $1 OFFSET $2`
	rows, err := s.DB.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = rows.Close() }()

	var result []*models.Subscriber
	for rows.Next() {
		sub, err := scanSubscriber(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// ListAllSubscribers возвращает всех абонентов. Используется пакетной
// переоценкой статусов.
func (s *Storage) ListAllSubscribers(ctx context.Context) ([]*models.Subscriber, error) {
	const op = "storage.ListAllSubscribers"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + subscriberColumns + `
			  FROM subscribers
			  ORDER BY created_at`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = rows.Close() }()

	var result []*models.Subscriber
	for rows.Next() {
		sub, err := scanSubscriber(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// SaveSubscriber сохраняет абонента с проверкой версии. Запись обновляется
// только если версия в базе совпадает с версией абонента; иначе возвращается
// ErrVersionConflict (либо ErrSubscriberNotFound, если записи нет вовсе).
// При успехе версия в переданной структуре увеличивается.
func (s *Storage) SaveSubscriber(ctx context.Context, sub *models.Subscriber) error {
	const op = "storage.SaveSubscriber"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE subscribers
			  SET full_name = $1, phone_number = $2, referral = $3, subscriber_type = $4,
			      payment_mode = $5, image = $6, plan_code = $7, start_datetime = $8,
			      end_datetime = $9, expiration_date = $10, status = $11,
			      version = version + 1, updated_at = NOW()
			  WHERE uid = $12 AND version = $13`
	result, err := s.DB.ExecContext(ctx, query,
		sub.FullName, sub.PhoneNumber, sub.Referral, sub.SubscriberType,
		sub.Period.PaymentMode, sub.Image, sub.Period.PlanCode, sub.Period.StartDateTime,
		sub.Period.EndDateTime, sub.Period.ExpirationDate, sub.Period.Status,
		sub.UID, sub.Version)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if rowsAffected == 0 {
		var exists bool
		if err := s.DB.QueryRowContext(ctx,
			`SELECT EXISTS(SELECT 1 FROM subscribers WHERE uid = $1)`, sub.UID).Scan(&exists); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		if !exists {
			return fmt.Errorf("%s: %w", op, ErrSubscriberNotFound)
		}
		return fmt.Errorf("%s: %w", op, ErrVersionConflict)
	}
	sub.Version++
	return nil
}

// DeleteSubscriber удаляет абонента и его архив периодов в одной транзакции.
func (s *Storage) DeleteSubscriber(ctx context.Context, uid string) error {
	const op = "storage.DeleteSubscriber"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM subscription_history WHERE subscriber_uid = $1`, uid); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	result, err := tx.ExecContext(ctx, `DELETE FROM subscribers WHERE uid = $1`, uid)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%s: %w", op, ErrSubscriberNotFound)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// UpdateSubscriberStatus обновляет только поле статуса. Статус — кэш,
// выводимый из дат периода, поэтому версия записи не меняется.
func (s *Storage) UpdateSubscriberStatus(ctx context.Context, uid string, status subscription.Status) error {
	const op = "storage.UpdateSubscriberStatus"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE subscribers SET status = $1, updated_at = NOW() WHERE uid = $2`
	result, err := s.DB.ExecContext(ctx, query, status, uid)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%s: %w", op, ErrSubscriberNotFound)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSubscriber(row rowScanner) (*models.Subscriber, error) {
	sub := &models.Subscriber{}
	var phoneNumber, referral, image sql.NullString
	err := row.Scan(&sub.UID, &sub.FullName, &phoneNumber, &referral, &sub.SubscriberType,
		&sub.Period.PaymentMode, &image, &sub.Period.PlanCode, &sub.Period.StartDateTime,
		&sub.Period.EndDateTime, &sub.Period.ExpirationDate, &sub.Period.Status,
		&sub.Version, &sub.CreatedAt, &sub.UpdatedAt)
	if err != nil {
		return nil, err
	}
	sub.PhoneNumber = phoneNumber.String
	sub.Referral = referral.String
	sub.Image = image.String
	return sub, nil
}
