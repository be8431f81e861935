package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"courier_api/internal/database"
	"courier_api/internal/models"
	"courier_api/internal/redis"
	"courier_api/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// SessionStore keeps login sessions keyed by opaque token.
type SessionStore interface {
	SetSession(ctx context.Context, token string, data *redis.SessionData, ttl time.Duration) error
	GetSession(ctx context.Context, token string) (*redis.SessionData, error)
	DeleteSession(ctx context.Context, token string) error
}

type LoginResult struct {
	Token     string
	User      *models.User
	ExpiresIn time.Duration
}

type AuthService interface {
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	Logout(ctx context.Context, token string) error
	Authenticate(ctx context.Context, token string) (*models.User, error)
	// SeedAdmin creates the admin account unless a user with that email exists.
	SeedAdmin(ctx context.Context, email, username, password string) (bool, error)
}

type authService struct {
	userRepo   repository.UserRepository
	sessions   SessionStore
	sessionTTL time.Duration
	logger     *zap.Logger
}

func NewAuthService(userRepo repository.UserRepository, sessions SessionStore, sessionTTL time.Duration, logger *zap.Logger) AuthService {
	return &authService{
		userRepo:   userRepo,
		sessions:   sessions,
		sessionTTL: sessionTTL,
		logger:     logger,
	}
}

func (s *authService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, newError(KindValidation, "Please provide email and password")
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if database.IsNotFound(err) {
			return nil, newError(KindInvalidCredential, "No user with that email")
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, newError(KindInvalidCredential, "Incorrect email or password")
	}

	token := uuid.NewString()
	session := &redis.SessionData{
		UserID:    user.ID,
		Email:     user.Email,
		CreatedAt: time.Now(),
	}
	if err := s.sessions.SetSession(ctx, token, session, s.sessionTTL); err != nil {
		return nil, fmt.Errorf("failed to store session: %w", err)
	}

	s.logger.Info("user logged in", zap.String("user_id", user.ID))
	return &LoginResult{Token: token, User: user, ExpiresIn: s.sessionTTL}, nil
}

func (s *authService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := s.sessions.DeleteSession(ctx, token); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

func (s *authService) Authenticate(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, newError(KindUnauthenticated, "Not authenticated")
	}

	session, err := s.sessions.GetSession(ctx, token)
	if err != nil {
		if errors.Is(err, redis.ErrSessionNotFound) {
			return nil, newError(KindUnauthenticated, "Invalid token")
		}
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	user, err := s.userRepo.GetByID(ctx, session.UserID)
	if err != nil {
		if database.IsNotFound(err) {
			return nil, newError(KindNotFound, "No user with that ID found")
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

func (s *authService) SeedAdmin(ctx context.Context, email, username, password string) (bool, error) {
	if email == "" || password == "" {
		return false, nil
	}

	_, err := s.userRepo.GetByEmail(ctx, email)
	if err == nil {
		return false, nil
	}
	if !database.IsNotFound(err) {
		return false, fmt.Errorf("failed to look up admin: %w", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return false, fmt.Errorf("failed to hash password: %w", err)
	}

	admin := &models.User{
		Email:    email,
		Username: username,
		Password: string(hashedPassword),
	}
	if err := s.userRepo.Create(ctx, admin); err != nil {
		if database.IsDuplicate(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to create admin: %w", err)
	}

	s.logger.Info("admin user seeded", zap.String("email", email))
	return true, nil
}
