package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/propdesk/propdesk/internal/domain"
)

// userRepository is the subset of store.UserStore that AuthService requires.
type userRepository interface {
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
}

// sessionRepository is the subset of store.SessionStore that AuthService requires.
type sessionRepository interface {
	Create(ctx context.Context, sess *domain.Session) error
	GetByToken(ctx context.Context, token string) (*domain.Session, error)
	DeleteByToken(ctx context.Context, token string) error
}

type AuthService struct {
	users      userRepository
	sessions   sessionRepository
	sessionTTL time.Duration
	logger     *slog.Logger
}

func NewAuthService(users userRepository, sessions sessionRepository, sessionTTL time.Duration, logger *slog.Logger) *AuthService {
	return &AuthService{users: users, sessions: sessions, sessionTTL: sessionTTL, logger: logger}
}

// dummyHash is compared against when the username does not exist, so the
// unknown-user path costs a bcrypt verification like the known-user path.
var dummyHash = []byte("$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy")

// Login verifies the credentials and opens a session. Unknown usernames and
// wrong passwords both report ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, error) {
	u, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
			return "", domain.ErrInvalidCredentials
		}
		return "", fmt.Errorf("failed to look up user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return "", domain.ErrInvalidCredentials
	}

	token, err := newSessionToken()
	if err != nil {
		return "", fmt.Errorf("failed to generate session token: %w", err)
	}

	now := time.Now().UTC()
	sess := &domain.Session{
		Token:     token,
		UserID:    u.ID,
		ExpiresAt: now.Add(s.sessionTTL),
		CreatedAt: now,
	}
	if err := s.sessions.Create(ctx, sess); err != nil {
		return "", fmt.Errorf("failed to create session: %w", err)
	}

	s.logger.Info("user logged in", "username", username)
	return token, nil
}

// Logout invalidates the session token. Unknown tokens are not an error.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	return s.sessions.DeleteByToken(ctx, token)
}

// ValidateToken resolves a session token to its user. Missing, unknown, and
// expired tokens all report ErrAuthRequired; expired sessions are removed.
func (s *AuthService) ValidateToken(ctx context.Context, token string) (*domain.User, error) {
	if token == "" {
		return nil, domain.ErrAuthRequired
	}

	sess, err := s.sessions.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrAuthRequired
		}
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	if time.Now().UTC().After(sess.ExpiresAt) {
		if err := s.sessions.DeleteByToken(ctx, token); err != nil {
			s.logger.Warn("failed to delete expired session", "error", err)
		}
		return nil, domain.ErrAuthRequired
	}

	u, err := s.users.GetByID(ctx, sess.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrAuthRequired
		}
		return nil, fmt.Errorf("failed to load session user: %w", err)
	}

	return u, nil
}

func newSessionToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
