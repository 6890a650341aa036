package sessions

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"time"
)

// Service mints, resolves, and revokes session tokens over an injected
// repository (memory by default, Redis when externalized).
type Service struct {
	repo Repository
}

func NewService(r Repository) *Service { return &Service{repo: r} }

// Create mints an unguessable token for username and stores the session.
func (s *Service) Create(ctx context.Context, username string) (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	token := hex.EncodeToString(b)
	sess := &Session{
		Token:     token,
		Username:  username,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, sess); err != nil {
		return "", err
	}
	return token, nil
}

// Resolve returns the session for token, or nil when the token is unknown.
func (s *Service) Resolve(ctx context.Context, token string) (*Session, error) {
	if token == "" {
		return nil, nil
	}
	return s.repo.Get(ctx, token)
}

// Destroy removes the session for token. Destroying an unknown token is a no-op.
func (s *Service) Destroy(ctx context.Context, token string) error {
	return s.repo.Delete(ctx, token)
}
