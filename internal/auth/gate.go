package auth

import (
	"context"
	"errors"

	"github.com/teamconnect/go-services/internal/sessions"
	"github.com/teamconnect/go-services/internal/users"
)

var (
	// ErrUnauthenticated means no valid session backs the request.
	ErrUnauthenticated = errors.New("not authenticated")
	// ErrForbidden means the caller is authenticated but lacks ownership or
	// admin rights for the operation.
	ErrForbidden = errors.New("permission denied")
)

// Gate derives the current user from a session token and enforces
// ownership/admin rules. Admin checks read the user record fresh on every
// call so a revoked admin flag takes effect immediately.
type Gate struct {
	sessions *sessions.Service
	users    *users.Repository
}

func NewGate(s *sessions.Service, u *users.Repository) *Gate {
	return &Gate{sessions: s, users: u}
}

// Identify resolves the session token to a username, or "" when the token is
// unknown or empty.
func (g *Gate) Identify(ctx context.Context, token string) (string, error) {
	sess, err := g.sessions.Resolve(ctx, token)
	if err != nil {
		return "", err
	}
	if sess == nil {
		return "", nil
	}
	return sess.Username, nil
}

// RequireAuthenticated resolves the token and fails with ErrUnauthenticated
// when no valid session exists.
func (g *Gate) RequireAuthenticated(ctx context.Context, token string) (string, error) {
	username, err := g.Identify(ctx, token)
	if err != nil {
		return "", err
	}
	if username == "" {
		return "", ErrUnauthenticated
	}
	return username, nil
}

// IsAdmin reads the admin flag for username from the users collection.
func (g *Gate) IsAdmin(username string) bool {
	return g.users.IsAdmin(username)
}

// RequireOwnerOrAdmin fails with ErrForbidden unless current owns the
// resource or carries the admin flag.
func (g *Gate) RequireOwnerOrAdmin(owner, current string) error {
	if owner == current {
		return nil
	}
	if g.users.IsAdmin(current) {
		return nil
	}
	return ErrForbidden
}

// RequireAdmin fails with ErrForbidden unless current carries the admin flag.
func (g *Gate) RequireAdmin(current string) error {
	if !g.users.IsAdmin(current) {
		return ErrForbidden
	}
	return nil
}
