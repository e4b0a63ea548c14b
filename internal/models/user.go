package models

import "time"

// User — сотрудник, работающий с системой: менеджер или администратор стойки.
type User struct {
	UID          string
	Username     string
	PasswordHash string
	Role         string // manager | receptionist
	CreatedAt    time.Time
}

// DummyRegister используется для приёма данных запроса на регистрацию сотрудника.
type DummyRegister struct {
	Username string `json:"username" validate:"required,alphanum"`
	Password string `json:"password" validate:"required,min=8"`
	Role     string `json:"role" validate:"required,oneof=manager receptionist"`
}

// DummyLogin используется для приёма данных запроса на вход.
type DummyLogin struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// DummyChangePassword используется для приёма данных запроса на смену пароля.
type DummyChangePassword struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8"`
}
