package identity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"

	"github.com/driveline-dms/driveline/internal/platform/httpx"
)

// Service authenticates credentials and manages opaque bearer tokens in
// Redis. Tokens carry no structure; the subject they resolve to is what the
// RBAC core keys on.
type Service struct {
	repo   Repository
	tokens *redis.Client
	ttl    time.Duration
}

// NewService constructs a Service.
func NewService(repo Repository, tokens *redis.Client, ttl time.Duration) *Service {
	return &Service{repo: repo, tokens: tokens, ttl: ttl}
}

// Login verifies credentials and issues a bearer token.
func (s *Service) Login(ctx context.Context, email, password string) (string, *User, error) {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, httpx.ErrNotFound) {
			return "", nil, fmt.Errorf("%w: invalid credentials", httpx.ErrUnauthenticated)
		}
		return "", nil, err
	}
	if !user.IsActive {
		return "", nil, fmt.Errorf("%w: account disabled", httpx.ErrUnauthenticated)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, fmt.Errorf("%w: invalid credentials", httpx.ErrUnauthenticated)
	}

	token := uuid.NewString()
	if err := s.tokens.Set(ctx, tokenKey(token), user.Subject(), s.ttl).Err(); err != nil {
		return "", nil, fmt.Errorf("identity: store token: %w", err)
	}
	return token, user, nil
}

// Resolve maps a bearer token back to its subject. Expired or unknown tokens
// resolve to the empty string without error; the caller decides whether the
// request may continue anonymously.
func (s *Service) Resolve(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", nil
	}
	subject, err := s.tokens.Get(ctx, tokenKey(token)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil
		}
		return "", fmt.Errorf("identity: resolve token: %w", err)
	}
	return subject, nil
}

// Logout revokes a bearer token.
func (s *Service) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := s.tokens.Del(ctx, tokenKey(token)).Err(); err != nil {
		return fmt.Errorf("identity: revoke token: %w", err)
	}
	return nil
}

// IdentityExists implements rbac.IdentityChecker.
func (s *Service) IdentityExists(ctx context.Context, subject string) (bool, error) {
	_, err := s.repo.FindBySubject(ctx, subject)
	if err != nil {
		if errors.Is(err, httpx.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func tokenKey(token string) string {
	return "token:" + token
}
