package subscription

import (
	"fmt"
	"time"
)

// ClockTime — время суток без даты, например время закрытия зала.
type ClockTime struct {
	Hour   int
	Minute int
}

// ParseClockTime разбирает строку вида "18:00" в ClockTime.
func ParseClockTime(s string) (ClockTime, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return ClockTime{}, fmt.Errorf("invalid clock time %q: %w", s, err)
	}
	return ClockTime{Hour: t.Hour(), Minute: t.Minute()}, nil
}

// Options задаёт настраиваемые параметры движка:
// времена закрытия для полудневных тарифов и окна уведомлений.
type Options struct {
	DayCutoff          ClockTime     // закрытие дневного доступа (half-day-morning)
	NightCutoff        ClockTime     // закрытие ночного доступа (half-day-night, full-day)
	NotificationWindow time.Duration // остаток, при котором статус становится expiring
	UrgentWindow       time.Duration // остаток, при котором expiring помечается urgent
}

// DefaultOptions возвращает параметры движка по умолчанию:
// дневное закрытие 18:00, ночное 06:30, окно уведомления 60 минут,
// срочное окно 15 минут.
func DefaultOptions() Options {
	return Options{
		DayCutoff:          ClockTime{Hour: 18},
		NightCutoff:        ClockTime{Hour: 6, Minute: 30},
		NotificationWindow: 60 * time.Minute,
		UrgentWindow:       15 * time.Minute,
	}
}
