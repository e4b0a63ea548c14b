// Package month содержит календарную арифметику для расчёта окон подписки.
//
// time.AddDate нормализует переполнение дат (31 января + 1 месяц = 2 марта),
// поэтому сложение месяцев реализовано с прижатием к последнему дню месяца.
package month

import (
	"time"
)

// AddClamped прибавляет months календарных месяцев к t.
// Если в целевом месяце нет такого числа, результат прижимается
// к последнему дню месяца: 31 января + 1 месяц = 29 февраля (високосный год)
// или 28 февраля. Время суток сохраняется.
func AddClamped(t time.Time, months int) time.Time {
	year, m, day := t.Date()

	first := time.Date(year, time.Month(int(m)+months), 1, 0, 0, 0, 0, t.Location())
	if last := DaysIn(first.Year(), first.Month()); day > last {
		day = last
	}
	return time.Date(first.Year(), first.Month(), day,
		t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

// DaysIn возвращает количество дней в месяце.
func DaysIn(year int, m time.Month) int {
	return time.Date(year, m+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// EndOfDay возвращает момент 23:59:59 того же календарного дня.
func EndOfDay(t time.Time) time.Time {
	year, m, day := t.Date()
	return time.Date(year, m, day, 23, 59, 59, 0, t.Location())
}

// At возвращает тот же календарный день с заданным временем суток.
func At(t time.Time, hour, minute int) time.Time {
	year, m, day := t.Date()
	return time.Date(year, m, day, hour, minute, 0, 0, t.Location())
}
