package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"gympro-backend/models"
	"gympro-backend/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

const minPasswordLength = 8

// PasswordHasher is the password collaborator used by login.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, hash string) bool
}

// AuthService checks staff credentials. Attempts are throttled across all
// usernames.
type AuthService struct {
	users   repository.UserRepository
	hasher  PasswordHasher
	limiter *rate.Limiter
	logger  *logrus.Logger
	Clock   Clock
}

// NewAuthService allows perMinute login attempts per minute, bursting to the
// same amount. perMinute <= 0 disables throttling.
func NewAuthService(users repository.UserRepository, hasher PasswordHasher, perMinute int, logger *logrus.Logger) *AuthService {
	limiter := rate.NewLimiter(rate.Inf, 0)
	if perMinute > 0 {
		limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), perMinute)
	}
	return &AuthService{
		users:   users,
		hasher:  hasher,
		limiter: limiter,
		logger:  logger,
		Clock:   SystemClock,
	}
}

// Login returns the acting identity for valid credentials of an active user.
func (s *AuthService) Login(ctx context.Context, username, password string) (*models.User, Actor, error) {
	if !s.limiter.Allow() {
		return nil, Actor{}, ErrRateLimited
	}

	username = strings.TrimSpace(username)
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, Actor{}, err
	}
	if user == nil || !user.IsActive || !s.hasher.Verify(password, user.PasswordHash) {
		s.logger.WithField("username", username).Warn("Failed login attempt")
		return nil, Actor{}, ErrInvalidCredentials
	}

	now := s.Clock()
	if err := s.users.TouchLastLogin(ctx, user.ID, now); err != nil {
		return nil, Actor{}, err
	}
	user.LastLogin = &now
	return user, ActorFromUser(user), nil
}

// Me returns nil for unknown ids.
func (s *AuthService) Me(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	return s.users.GetByID(ctx, userID)
}

// CreateUser stores a login with a hashed password.
func (s *AuthService) CreateUser(ctx context.Context, username, password, role string, staffID *uuid.UUID) (*models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, invalid("username", "required", "username is required")
	}
	if len(password) < minPasswordLength {
		return nil, invalid("password", "min", "password must be at least %d characters", minPasswordLength)
	}
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		ID:           uuid.New(),
		StaffID:      staffID,
		Username:     username,
		PasswordHash: hash,
		Role:         role,
		IsActive:     true,
		CreatedAt:    s.Clock(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, invalid("username", "unique", "username %s is taken", username)
		}
		return nil, err
	}
	return user, nil
}

// EnsureAdmin creates the first login when no users exist yet.
func (s *AuthService) EnsureAdmin(ctx context.Context, username, password string) error {
	if username == "" || password == "" {
		return nil
	}
	count, err := s.users.Count(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	if _, err := s.CreateUser(ctx, username, password, string(models.RoleAdmin), nil); err != nil {
		return err
	}
	s.logger.WithField("username", username).Info("Created initial admin login")
	return nil
}
