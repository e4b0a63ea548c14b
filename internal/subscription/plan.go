// Package subscription реализует движок жизненного цикла абонементов:
// справочник тарифов, расчёт окна доступа и даты истечения,
// а также определение текущего статуса абонемента.
//
// Все функции пакета чистые: текущее время передаётся снаружи,
// запись в хранилище остаётся за вызывающим слоем.
package subscription

import "errors"

// ErrUnknownPlanCode возвращается справочником для кода тарифа,
// не входящего в перечень из девяти поддерживаемых.
var ErrUnknownPlanCode = errors.New("unknown plan code")

// ErrInvalidWindow возвращается, когда начало периода позже его истечения.
// Такое окно считается ошибкой входных данных и не должно попадать в хранилище.
var ErrInvalidWindow = errors.New("start date is after expiration date")

// PlanCode идентифицирует тариф абонемента.
type PlanCode string

// Поддерживаемые коды тарифов.
const (
	PlanHalfDayMorning PlanCode = "half-day-morning"
	PlanHalfDayNight   PlanCode = "half-day-night"
	PlanFullDay        PlanCode = "full-day"
	PlanWeeklyDay      PlanCode = "weekly-day"
	PlanWeeklyFull     PlanCode = "weekly-full"
	PlanBiweeklyDay    PlanCode = "biweekly-day"
	PlanBiweeklyFull   PlanCode = "biweekly-full"
	PlanMonthlyDay     PlanCode = "monthly-day"
	PlanMonthlyFull    PlanCode = "monthly-full"
)

// AccessKind определяет режим доступа тарифа: только дневной или полный.
type AccessKind string

// Режимы доступа. Ночные и full-тарифы дают полный доступ.
const (
	AccessDayOnly AccessKind = "day-only"
	AccessFull    AccessKind = "full-access"
)

// windowKind — правило расчёта окна доступа тарифа.
type windowKind int

const (
	windowSameDayCutoff windowKind = iota // тот же день, дневное время закрытия
	windowNextDayCutoff                   // следующий день, ночное время закрытия
	windowCalendarDays                    // start + N суток, истечение в конце дня
	windowCalendarMonth                   // start + 1 месяц - 1 день, истечение в конце дня
)

// Plan описывает один тариф справочника: код, режим доступа и правило длительности.
type Plan struct {
	Code   PlanCode
	Access AccessKind

	kind windowKind
	days int
}

// catalog — единственный источник правды по тарифам.
// Вся ветвящаяся логика калькулятора опирается на эти записи.
var catalog = map[PlanCode]Plan{
	PlanHalfDayMorning: {Code: PlanHalfDayMorning, Access: AccessDayOnly, kind: windowSameDayCutoff},
	PlanHalfDayNight:   {Code: PlanHalfDayNight, Access: AccessFull, kind: windowNextDayCutoff},
	PlanFullDay:        {Code: PlanFullDay, Access: AccessFull, kind: windowNextDayCutoff},
	PlanWeeklyDay:      {Code: PlanWeeklyDay, Access: AccessDayOnly, kind: windowCalendarDays, days: 7},
	PlanWeeklyFull:     {Code: PlanWeeklyFull, Access: AccessFull, kind: windowCalendarDays, days: 7},
	PlanBiweeklyDay:    {Code: PlanBiweeklyDay, Access: AccessDayOnly, kind: windowCalendarDays, days: 14},
	PlanBiweeklyFull:   {Code: PlanBiweeklyFull, Access: AccessFull, kind: windowCalendarDays, days: 14},
	PlanMonthlyDay:     {Code: PlanMonthlyDay, Access: AccessDayOnly, kind: windowCalendarMonth},
	PlanMonthlyFull:    {Code: PlanMonthlyFull, Access: AccessFull, kind: windowCalendarMonth},
}

// Lookup возвращает тариф по коду или ErrUnknownPlanCode.
func Lookup(code PlanCode) (Plan, error) {
	plan, ok := catalog[code]
	if !ok {
		return Plan{}, ErrUnknownPlanCode
	}
	return plan, nil
}

// Codes возвращает все поддерживаемые коды тарифов.
// Порядок фиксирован для валидации и документации.
func Codes() []PlanCode {
	return []PlanCode{
		PlanHalfDayMorning,
		PlanHalfDayNight,
		PlanFullDay,
		PlanWeeklyDay,
		PlanWeeklyFull,
		PlanBiweeklyDay,
		PlanBiweeklyFull,
		PlanMonthlyDay,
		PlanMonthlyFull,
	}
}
