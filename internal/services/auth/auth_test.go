package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/SRSacc/srsapp-api/internal/lib/jwt"
	"github.com/SRSacc/srsapp-api/internal/lib/password"
	"github.com/SRSacc/srsapp-api/internal/models"
	"github.com/SRSacc/srsapp-api/internal/storage"
)

type UsersMock struct{ mock.Mock }

func (m *UsersMock) RegisterUser(ctx context.Context, user models.User) (string, error) {
	args := m.Called(ctx, user)
	return args.String(0), args.Error(1)
}

func (m *UsersMock) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *UsersMock) UpdateUserPassword(ctx context.Context, username, passwordHash string) error {
	args := m.Called(ctx, username, passwordHash)
	return args.Error(0)
}

func (m *UsersMock) ListUsersByRole(ctx context.Context, role string) ([]*models.User, error) {
	args := m.Called(ctx, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.User), args.Error(1)
}

func newMaker() jwt.Maker {
	return jwt.NewJWTMaker("test-secret", time.Hour)
}

func TestRegister(t *testing.T) {
	users := new(UsersMock)
	svc := NewAuthService(users, newMaker())

	users.On("RegisterUser", mock.Anything, mock.MatchedBy(func(user models.User) bool {
		return user.Username == "manager1" &&
			user.Role == "manager" &&
			password.CompareHash(user.PasswordHash, "secret123") == nil
	})).Return("uid-1", nil).Once()

	uid, err := svc.Register(context.Background(), "manager1", "secret123", "manager")
	require.NoError(t, err)
	assert.Equal(t, "uid-1", uid)
	users.AssertExpectations(t)
}

func TestLogin(t *testing.T) {
	users := new(UsersMock)
	svc := NewAuthService(users, newMaker())

	hash, err := password.GetHash("secret123")
	require.NoError(t, err)
	users.On("GetUserByUsername", mock.Anything, "manager1").
		Return(&models.User{Username: "manager1", PasswordHash: hash, Role: "manager"}, nil).Once()

	token, role, err := svc.Login(context.Background(), "manager1", "secret123")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, "manager", role)

	username, gotRole, valid, err := svc.ValidateToken(context.Background(), token)
	require.NoError(t, err)
	assert.True(t, valid)
	assert.Equal(t, "manager1", username)
	assert.Equal(t, "manager", gotRole)
}

func TestLogin_WrongPassword(t *testing.T) {
	users := new(UsersMock)
	svc := NewAuthService(users, newMaker())

	hash, err := password.GetHash("secret123")
	require.NoError(t, err)
	users.On("GetUserByUsername", mock.Anything, "manager1").
		Return(&models.User{Username: "manager1", PasswordHash: hash, Role: "manager"}, nil).Once()

	_, _, err = svc.Login(context.Background(), "manager1", "wrong")
	assert.EqualError(t, err, "invalid credentials")
}

func TestLogin_UserNotFound(t *testing.T) {
	users := new(UsersMock)
	svc := NewAuthService(users, newMaker())

	users.On("GetUserByUsername", mock.Anything, "ghost").
		Return(nil, fmt.Errorf("storage.GetUserByUsername: %w", storage.ErrUserNotFound)).Once()

	_, _, err := svc.Login(context.Background(), "ghost", "secret123")
	assert.ErrorIs(t, err, storage.ErrUserNotFound)
}

func TestChangePassword(t *testing.T) {
	users := new(UsersMock)
	svc := NewAuthService(users, newMaker())

	hash, err := password.GetHash("secret123")
	require.NoError(t, err)
	users.On("GetUserByUsername", mock.Anything, "manager1").
		Return(&models.User{Username: "manager1", PasswordHash: hash, Role: "manager"}, nil).Once()
	users.On("UpdateUserPassword", mock.Anything, "manager1", mock.MatchedBy(func(newHash string) bool {
		return password.CompareHash(newHash, "newsecret456") == nil
	})).Return(nil).Once()

	err = svc.ChangePassword(context.Background(), "manager1", "secret123", "newsecret456")
	require.NoError(t, err)
	users.AssertExpectations(t)
}

func TestChangePassword_WrongCurrent(t *testing.T) {
	users := new(UsersMock)
	svc := NewAuthService(users, newMaker())

	hash, err := password.GetHash("secret123")
	require.NoError(t, err)
	users.On("GetUserByUsername", mock.Anything, "manager1").
		Return(&models.User{Username: "manager1", PasswordHash: hash, Role: "manager"}, nil).Once()

	err = svc.ChangePassword(context.Background(), "manager1", "wrong", "newsecret456")
	assert.EqualError(t, err, "invalid credentials")
	users.AssertNotCalled(t, "UpdateUserPassword", mock.Anything, mock.Anything, mock.Anything)
}

func TestListReceptionists(t *testing.T) {
	users := new(UsersMock)
	svc := NewAuthService(users, newMaker())

	users.On("ListUsersByRole", mock.Anything, "receptionist").
		Return([]*models.User{
			{Username: "front1", Role: "receptionist"},
			{Username: "front2", Role: "receptionist"},
		}, nil).Once()

	got, err := svc.ListReceptionists(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "front1", got[0].Username)
}

func TestValidateToken_Garbage(t *testing.T) {
	svc := NewAuthService(new(UsersMock), newMaker())

	_, _, valid, err := svc.ValidateToken(context.Background(), "not-a-token")
	assert.Error(t, err)
	assert.False(t, valid)
}
