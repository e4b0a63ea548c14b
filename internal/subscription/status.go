package subscription

import (
	"fmt"
	"time"
)

// Status — статус жизненного цикла абонемента.
// Статус всегда выводится из (now, start, expiration) и хранится
// в записи абонента только как кэш для чтения.
type Status string

// Статусы жизненного цикла: pending -> active -> expiring -> expired.
// Переходы только вперёд, expired — терминальный.
const (
	StatusPending  Status = "pending"
	StatusActive   Status = "active"
	StatusExpiring Status = "expiring"
	StatusExpired  Status = "expired"
)

// Resolution — результат определения статуса: сам статус,
// человекочитаемое сообщение и признак срочности.
// Urgent выставляется только внутри статуса expiring.
type Resolution struct {
	Status  Status
	Message string
	Urgent  bool
}

// Resolve определяет статус абонемента на момент now.
// Функция тотальная: для любых входов возвращает результат.
//
// Проверки выполняются строго в порядке pending -> expired -> expiring ->
// active, первое совпадение выигрывает. Истечение инклюзивно: в сам момент
// expiration абонемент уже expired, поэтому окно нулевой длины сразу expired,
// а не expiring.
func Resolve(now, start, expiration time.Time, opts Options) Resolution {
	if now.Before(start) {
		return Resolution{
			Status:  StatusPending,
			Message: "subscription has not started yet",
		}
	}
	if !now.Before(expiration) {
		return Resolution{
			Status:  StatusExpired,
			Message: "subscription has expired",
		}
	}
	if remaining := expiration.Sub(now); remaining <= opts.NotificationWindow {
		return Resolution{
			Status:  StatusExpiring,
			Message: fmt.Sprintf("subscription expires in %s", remaining.Round(time.Minute)),
			Urgent:  remaining <= opts.UrgentWindow,
		}
	}
	return Resolution{
		Status:  StatusActive,
		Message: "subscription is active",
	}
}
