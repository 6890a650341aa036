package users

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/teamconnect/go-services/internal/models"
	"github.com/teamconnect/go-services/internal/store"
	"github.com/teamconnect/go-services/pkg/logger"
)

var (
	// ErrDuplicate is returned when creating a username that already exists.
	ErrDuplicate = errors.New("user already exists")
	// ErrNotFound is returned when a username is absent from the collection.
	ErrNotFound = errors.New("user not found")
)

// DefaultAdmin is the account seeded into an empty users collection. The
// well-known credential is an inherited operational hazard; operators are
// expected to change it after first login.
const (
	DefaultAdmin         = "admin"
	defaultAdminPassword = "admin"
)

// Repository persists user accounts in the shared document store, keyed by
// username.
type Repository struct {
	store *store.Store
}

func NewRepository(s *store.Store) *Repository {
	return &Repository{store: s}
}

// HashPassword returns the stored form of a credential.
func HashPassword(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}

// Seed creates the default admin account when the users collection is empty,
// so at least one admin exists after initialization.
func (r *Repository) Seed() error {
	users := map[string]models.User{}
	return r.store.Update(store.Users, &users, func() error {
		if len(users) > 0 {
			return nil
		}
		users[DefaultAdmin] = models.User{
			PasswordHash: HashPassword(defaultAdminPassword),
			IsAdmin:      true,
			CreatedAt:    time.Now().UTC(),
		}
		logger.Warnf("users: seeded default %s account with the default credential", DefaultAdmin)
		return nil
	})
}

// Get returns the user for username, or ErrNotFound.
func (r *Repository) Get(username string) (*models.User, error) {
	users := map[string]models.User{}
	r.store.Load(store.Users, &users)
	u, ok := users[username]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

// All returns every account keyed by username.
func (r *Repository) All() (map[string]models.User, error) {
	users := map[string]models.User{}
	r.store.Load(store.Users, &users)
	return users, nil
}

// Create adds a new account. Usernames are unique and case-sensitive; a
// second create for the same name reports ErrDuplicate and changes nothing.
func (r *Repository) Create(username, password string, isAdmin bool) error {
	users := map[string]models.User{}
	return r.store.Update(store.Users, &users, func() error {
		if _, ok := users[username]; ok {
			return ErrDuplicate
		}
		users[username] = models.User{
			PasswordHash: HashPassword(password),
			IsAdmin:      isAdmin,
			CreatedAt:    time.Now().UTC(),
		}
		return nil
	})
}

// Verify reports whether the credential matches the stored hash for username.
func (r *Repository) Verify(username, password string) bool {
	users := map[string]models.User{}
	r.store.Load(store.Users, &users)
	u, ok := users[username]
	if !ok {
		return false
	}
	return u.PasswordHash == HashPassword(password)
}

// SetLastLogin stamps the account's last-login time.
func (r *Repository) SetLastLogin(username string, at time.Time) error {
	users := map[string]models.User{}
	return r.store.Update(store.Users, &users, func() error {
		u, ok := users[username]
		if !ok {
			return ErrNotFound
		}
		u.LastLogin = &at
		users[username] = u
		return nil
	})
}

// IsAdmin reads the admin flag fresh from the collection. Callers must not
// cache the result across requests; flag changes take effect immediately.
func (r *Repository) IsAdmin(username string) bool {
	users := map[string]models.User{}
	r.store.Load(store.Users, &users)
	return users[username].IsAdmin
}
