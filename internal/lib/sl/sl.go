// Package sl содержит небольшие помощники для структурированного
// логирования через slog: единообразные атрибуты для типовых полей.
package sl

import "log/slog"

// Err оборачивает ошибку в slog.Attr с ключом "error",
// чтобы все обработчики писали ошибки в одном и том же поле:
//
//	log.Error("failed to save subscriber", sl.Err(err))
func Err(err error) slog.Attr {
	return slog.Attr{
		Key:   "error",
		Value: slog.StringValue(err.Error()),
	}
}
