// Package services содержит логику бизнес-уровня для работы с сотрудниками и аутентификацией.
package services

import (
	"context"
	"errors"

	"github.com/SRSacc/srsapp-api/internal/lib/jwt"
	"github.com/SRSacc/srsapp-api/internal/lib/password"
	"github.com/SRSacc/srsapp-api/internal/models"
)

// UserRepository описывает контракт для работы с сотрудниками в базе данных.
type UserRepository interface {
	// RegisterUser сохраняет нового сотрудника и возвращает его UID.
	RegisterUser(ctx context.Context, user models.User) (string, error)

	// GetUserByUsername возвращает сотрудника по имени или ошибку, если не найден.
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)

	// UpdateUserPassword заменяет хеш пароля сотрудника.
	UpdateUserPassword(ctx context.Context, username, passwordHash string) error

	// ListUsersByRole возвращает сотрудников с заданной ролью.
	ListUsersByRole(ctx context.Context, role string) ([]*models.User, error)
}

// AuthService отвечает за регистрацию, авторизацию и валидацию JWT.
type AuthService struct {
	users    UserRepository
	jwtMaker jwt.Maker
}

// NewAuthService создает новый экземпляр AuthService.
func NewAuthService(users UserRepository, jwtMaker jwt.Maker) *AuthService {
	return &AuthService{
		users:    users,
		jwtMaker: jwtMaker,
	}
}

// Register создает нового сотрудника с хэшированием пароля и заданной ролью.
func (s *AuthService) Register(ctx context.Context, username, rawPassword, role string) (string, error) {
	hashed, err := password.GetHash(rawPassword)
	if err != nil {
		return "", err
	}
	user := models.User{
		Username:     username,
		PasswordHash: hashed,
		Role:         role,
	}
	return s.users.RegisterUser(ctx, user)
}

// Login проверяет пароль сотрудника и генерирует JWT.
func (s *AuthService) Login(ctx context.Context, username, rawPassword string) (token, role string, err error) {
	user, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		return "", "", err
	}
	if err := password.CompareHash(user.PasswordHash, rawPassword); err != nil {
		return "", "", errors.New("invalid credentials")
	}
	token, err = s.jwtMaker.GenerateToken(user.Username, user.Role)
	if err != nil {
		return "", "", err
	}
	return token, user.Role, nil
}

// ChangePassword проверяет текущий пароль сотрудника и сохраняет хеш нового.
func (s *AuthService) ChangePassword(ctx context.Context, username, currentPassword, newPassword string) error {
	user, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		return err
	}
	if err := password.CompareHash(user.PasswordHash, currentPassword); err != nil {
		return errors.New("invalid credentials")
	}
	hashed, err := password.GetHash(newPassword)
	if err != nil {
		return err
	}
	return s.users.UpdateUserPassword(ctx, username, hashed)
}

// GetUser возвращает сотрудника по имени.
func (s *AuthService) GetUser(ctx context.Context, username string) (*models.User, error) {
	return s.users.GetUserByUsername(ctx, username)
}

// ListReceptionists возвращает всех сотрудников с ролью receptionist.
func (s *AuthService) ListReceptionists(ctx context.Context) ([]*models.User, error) {
	return s.users.ListUsersByRole(ctx, "receptionist")
}

// ValidateToken проверяет JWT и возвращает имя сотрудника, роль и признак валидности.
func (s *AuthService) ValidateToken(_ context.Context, token string) (username, role string, valid bool, err error) {
	claims, err := s.jwtMaker.ParseToken(token)
	if err != nil {
		return "", "", false, err
	}
	return claims.Username, claims.Role, true, nil
}
