// Package storage реализует хранилище данных на основе PostgreSQL
// для управления абонентами, архивом абонементов и сотрудниками.
// Движок жизненного цикла использует его как единственную границу
// долговечности; согласованность конкурентных записей обеспечивается
// оптимистической версией записи абонента.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	// Регистрация драйвера pgx для использования с database/sql.
	_ "github.com/jackc/pgx/v5/stdlib"
)

// ErrSubscriberNotFound возвращается, когда абонент с указанным UID не найден.
var ErrSubscriberNotFound = errors.New("subscriber not found")

// ErrVersionConflict возвращается при сохранении абонента с устаревшей
// версией: запись была изменена конкурентно. Хранилище не повторяет
// попытку, решение остаётся за вызывающим слоем.
var ErrVersionConflict = errors.New("subscriber version conflict")

// ErrUserNotFound возвращается, когда сотрудник с указанным именем не найден.
var ErrUserNotFound = errors.New("user not found")

// Storage инкапсулирует соединение с базой данных PostgreSQL
// и реализует методы работы с абонентами и сотрудниками.
type Storage struct {
	DB *sql.DB
}

// New создаёт подключение к PostgreSQL и проверяет его доступность.
func New(storageConnectionString string) (*Storage, error) {
	const op = "storage.New"

	db, err := sql.Open("pgx", storageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = db.PingContext(context.Background()); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Storage{
		DB: db,
	}, nil
}

// CheckDatabaseReady проверяет готовность базы данных.
func CheckDatabaseReady(storage *Storage) error {
	var exists bool
	err := storage.DB.QueryRow(`SELECT EXISTS (
        SELECT FROM information_schema.tables
        WHERE table_name = 'subscribers'
    )`).Scan(&exists)
	if err != nil || !exists {
		return fmt.Errorf("required table subscribers missing or query error: %w", err)
	}
	return nil
}
