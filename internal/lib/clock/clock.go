// Package clock предоставляет абстракцию текущего времени.
//
// Бизнес-логика получает время только через интерфейс Clock,
// что позволяет подменять часы в тестах на фиксированные.
package clock

import "time"

// Clock возвращает текущее время.
type Clock interface {
	Now() time.Time
}

// System реализует Clock через системные часы.
type System struct{}

// Now возвращает текущее локальное время.
func (System) Now() time.Time {
	return time.Now()
}

// Fixed реализует Clock с заранее заданным моментом времени.
// Используется в тестах для детерминированных проверок статусов.
type Fixed struct {
	Time time.Time
}

// Now возвращает зафиксированный момент времени.
func (f Fixed) Now() time.Time {
	return f.Time
}
