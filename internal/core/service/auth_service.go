package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/guillermoBallester/flaskr/internal/core/domain"
	"github.com/guillermoBallester/flaskr/internal/core/port"
	"golang.org/x/crypto/bcrypt"
)

// AuthService registers users and checks their credentials.
type AuthService struct {
	users  port.UserStore
	logger *slog.Logger
	cost   int
}

func NewAuthService(users port.UserStore, logger *slog.Logger) *AuthService {
	return &AuthService{users: users, logger: logger, cost: bcrypt.DefaultCost}
}

// Register creates a user with a hashed password.
func (s *AuthService) Register(ctx context.Context, username, password string) (int64, error) {
	if err := domain.ValidateCredentials(username, password); err != nil {
		return 0, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return 0, fmt.Errorf("hashing password: %w", err)
	}

	id, err := s.users.CreateUser(ctx, username, string(hash))
	if err != nil {
		if errors.Is(err, domain.ErrUserExists) {
			return 0, err
		}
		return 0, fmt.Errorf("creating user: %w", err)
	}

	s.logger.InfoContext(ctx, "user registered", slog.Int64("user.id", id))
	return id, nil
}

// Login returns the user whose credentials match.
func (s *AuthService) Login(ctx context.Context, username, password string) (*domain.User, error) {
	user, err := s.users.UserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrIncorrectUser
		}
		return nil, fmt.Errorf("looking up user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, domain.ErrIncorrectPass
	}
	return user, nil
}

// LoadUser returns the user with the given id, or nil if it no longer exists.
func (s *AuthService) LoadUser(ctx context.Context, id int64) (*domain.User, error) {
	user, err := s.users.UserByID(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading user %d: %w", id, err)
	}
	return user, nil
}
