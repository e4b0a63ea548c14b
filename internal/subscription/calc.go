package subscription

import (
	"time"

	"github.com/SRSacc/srsapp-api/internal/lib/month"
)

// Window — результат расчёта периода абонемента.
// End — время окончания доступа в первый день действия,
// Expiration — момент, после которого абонемент недействителен.
// Для полудневных и однодневных тарифов End и Expiration совпадают.
type Window struct {
	End        time.Time
	Expiration time.Time
}

// Compute рассчитывает окно доступа и дату истечения по коду тарифа
// и моменту начала. Функция детерминированная и без побочных эффектов.
//
// Неизвестный код тарифа не считается ошибкой: такие записи получают
// окно до конца календарного дня начала. Новые данные до калькулятора
// не доходят без валидации кода, а исторические записи с выведенным
// из оборота кодом продолжают рассчитываться.
func Compute(code PlanCode, start time.Time, opts Options) Window {
	plan, err := Lookup(code)
	if err != nil {
		end := month.EndOfDay(start)
		return Window{End: end, Expiration: end}
	}

	switch plan.kind {
	case windowSameDayCutoff:
		end := month.At(start, opts.DayCutoff.Hour, opts.DayCutoff.Minute)
		return Window{End: end, Expiration: end}
	case windowNextDayCutoff:
		end := month.At(start.AddDate(0, 0, 1), opts.NightCutoff.Hour, opts.NightCutoff.Minute)
		return Window{End: end, Expiration: end}
	case windowCalendarDays:
		end := start.AddDate(0, 0, plan.days)
		return Window{End: end, Expiration: month.EndOfDay(end)}
	case windowCalendarMonth:
		// Один календарный месяц с прижатием к концу месяца, минус один день:
		// 31 января 2024 -> 29 февраля -> 28 февраля, конец дня.
		end := month.AddClamped(start, 1).AddDate(0, 0, -1)
		return Window{End: end, Expiration: month.EndOfDay(end)}
	default:
		end := month.EndOfDay(start)
		return Window{End: end, Expiration: end}
	}
}

// ValidateWindow проверяет, что начало периода не позже его истечения.
// Вызывается сервисным слоем перед сохранением периода.
func ValidateWindow(start, expiration time.Time) error {
	if start.After(expiration) {
		return ErrInvalidWindow
	}
	return nil
}
