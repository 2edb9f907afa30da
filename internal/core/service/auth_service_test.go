package service

import (
	"context"
	"testing"

	"github.com/guillermoBallester/flaskr/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// --- mock UserStore ---

type mockUsers struct {
	byID   map[int64]*domain.User
	nextID int64
}

func newMockUsers() *mockUsers {
	return &mockUsers{byID: map[int64]*domain.User{}, nextID: 1}
}

func (m *mockUsers) CreateUser(_ context.Context, username, hash string) (int64, error) {
	for _, u := range m.byID {
		if u.Username == username {
			return 0, domain.ErrUserExists
		}
	}
	id := m.nextID
	m.nextID++
	m.byID[id] = &domain.User{ID: id, Username: username, PasswordHash: hash}
	return id, nil
}

func (m *mockUsers) UserByUsername(_ context.Context, username string) (*domain.User, error) {
	for _, u := range m.byID {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockUsers) UserByID(_ context.Context, id int64) (*domain.User, error) {
	if u, ok := m.byID[id]; ok {
		return u, nil
	}
	return nil, domain.ErrNotFound
}

func newAuthService(users *mockUsers) *AuthService {
	svc := NewAuthService(users, testLogger())
	svc.cost = bcrypt.MinCost
	return svc
}

// --- tests ---

func TestAuthService_RegisterAndLogin(t *testing.T) {
	users := newMockUsers()
	svc := newAuthService(users)
	ctx := context.Background()

	id, err := svc.Register(ctx, "a", "a")
	require.NoError(t, err)
	assert.NotEqual(t, "a", users.byID[id].PasswordHash, "password must be hashed")

	user, err := svc.Login(ctx, "a", "a")
	require.NoError(t, err)
	assert.Equal(t, id, user.ID)
}

func TestAuthService_RegisterValidation(t *testing.T) {
	svc := newAuthService(newMockUsers())
	ctx := context.Background()

	tests := []struct {
		name     string
		username string
		password string
		want     error
	}{
		{name: "missing username", username: "", password: "", want: domain.ErrUsernameRequired},
		{name: "missing password", username: "a", password: "", want: domain.ErrPasswordRequired},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(ctx, tt.username, tt.password)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestAuthService_RegisterDuplicate(t *testing.T) {
	svc := newAuthService(newMockUsers())
	ctx := context.Background()

	_, err := svc.Register(ctx, "test", "test")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "test", "other")
	assert.ErrorIs(t, err, domain.ErrUserExists)
}

func TestAuthService_LoginErrors(t *testing.T) {
	svc := newAuthService(newMockUsers())
	ctx := context.Background()
	_, err := svc.Register(ctx, "test", "test")
	require.NoError(t, err)

	_, err = svc.Login(ctx, "a", "test")
	assert.ErrorIs(t, err, domain.ErrIncorrectUser)

	_, err = svc.Login(ctx, "test", "a")
	assert.ErrorIs(t, err, domain.ErrIncorrectPass)
}

func TestAuthService_LoadUser(t *testing.T) {
	users := newMockUsers()
	svc := newAuthService(users)
	ctx := context.Background()

	id, err := svc.Register(ctx, "test", "test")
	require.NoError(t, err)

	user, err := svc.LoadUser(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "test", user.Username)

	user, err = svc.LoadUser(ctx, 99)
	require.NoError(t, err)
	assert.Nil(t, user)
}
