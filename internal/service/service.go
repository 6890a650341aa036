package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/teamconnect/go-services/internal/activity"
	"github.com/teamconnect/go-services/internal/auth"
	"github.com/teamconnect/go-services/internal/blob"
	"github.com/teamconnect/go-services/internal/files"
	"github.com/teamconnect/go-services/internal/messages"
	"github.com/teamconnect/go-services/internal/models"
	"github.com/teamconnect/go-services/internal/sessions"
	"github.com/teamconnect/go-services/internal/snippets"
	"github.com/teamconnect/go-services/internal/users"
	"github.com/teamconnect/go-services/pkg/logger"
	"github.com/teamconnect/go-services/pkg/metrics"
)

// Service orchestrates every state-changing operation: resolve identity,
// authorize, mutate the record collection, keep physical blobs consistent
// with metadata, then append to the activity log. The log entry is written
// only after the domain mutation commits; failed operations leave no trace.
type Service struct {
	users    *users.Repository
	files    *files.Repository
	snippets *snippets.Repository
	messages *messages.Repository
	activity *activity.Log
	sessions *sessions.Service
	gate     *auth.Gate
	blobs    blob.Store
}

func New(
	u *users.Repository,
	f *files.Repository,
	sn *snippets.Repository,
	m *messages.Repository,
	a *activity.Log,
	s *sessions.Service,
	g *auth.Gate,
	b blob.Store,
) *Service {
	return &Service{users: u, files: f, snippets: sn, messages: m, activity: a, sessions: s, gate: g, blobs: b}
}

// Authenticate reports whether the credentials match a stored account.
func (s *Service) Authenticate(username, password string) bool {
	return s.users.Verify(username, password)
}

// Login verifies credentials, stamps last-login, creates a session, and logs
// the action. Bad credentials leave no session and no log entry.
func (s *Service) Login(ctx context.Context, username, password string) (token string, err error) {
	defer func() { metrics.ObserveMutation("login", err) }()
	if !s.users.Verify(username, password) {
		return "", ErrUnauthenticated
	}
	if err := s.users.SetLastLogin(username, time.Now().UTC()); err != nil {
		return "", fmt.Errorf("stamp last login: %w", err)
	}
	token, err = s.sessions.Create(ctx, username)
	if err != nil {
		return "", fmt.Errorf("create session: %w", err)
	}
	if err := s.activity.Append(username, "login", "system", "authentication"); err != nil {
		logger.Errorf("activity append failed after login by %s: %v", username, err)
	}
	return token, nil
}

// Logout destroys the session and logs the action. An unknown token is a
// silent no-op.
func (s *Service) Logout(ctx context.Context, token string) (err error) {
	defer func() { metrics.ObserveMutation("logout", err) }()
	username, err := s.gate.Identify(ctx, token)
	if err != nil {
		return err
	}
	if username == "" {
		return nil
	}
	if err = s.sessions.Destroy(ctx, token); err != nil {
		return err
	}
	if err := s.activity.Append(username, "logout", "system", "authentication"); err != nil {
		logger.Errorf("activity append failed after logout by %s: %v", username, err)
	}
	return nil
}

// CurrentUser resolves the session and returns the username with a fresh
// admin flag.
func (s *Service) CurrentUser(ctx context.Context, token string) (string, bool, error) {
	username, err := s.gate.RequireAuthenticated(ctx, token)
	if err != nil {
		return "", false, err
	}
	return username, s.gate.IsAdmin(username), nil
}

// storedName mints an on-disk-unique, unguessable blob name preserving the
// original extension.
func storedName(originalName string) (string, error) {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return time.Now().UTC().Format("20060102_150405") + "_" + hex.EncodeToString(b) + filepath.Ext(originalName), nil
}

// Upload writes the blob, records its metadata, and logs the action. The
// blob is written before the metadata so a record never points at missing
// bytes.
func (s *Service) Upload(ctx context.Context, token, originalName, contentType string, r io.Reader, size int64) (id string, rec *models.File, err error) {
	defer func() { metrics.ObserveMutation("upload", err) }()
	username, err := s.gate.RequireAuthenticated(ctx, token)
	if err != nil {
		return "", nil, err
	}
	name, err := storedName(originalName)
	if err != nil {
		return "", nil, err
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	written, err := s.blobs.Save(ctx, name, r, size, contentType)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrPhysicalIO, err)
	}
	f := models.File{
		OriginalName: originalName,
		StoredName:   name,
		UploadedBy:   username,
		UploadDate:   time.Now().UTC(),
		FileSize:     written,
		ContentType:  contentType,
	}
	id, err = s.files.Put(f)
	if err != nil {
		return "", nil, err
	}
	if err := s.activity.Append(username, "upload", originalName, "file"); err != nil {
		logger.Errorf("activity append failed after upload by %s: %v", username, err)
	}
	return id, &f, nil
}

// OpenFile returns the blob and metadata for a stored file.
func (s *Service) OpenFile(ctx context.Context, token, id string) (io.ReadCloser, *models.File, error) {
	if _, err := s.gate.RequireAuthenticated(ctx, token); err != nil {
		return nil, nil, err
	}
	rec, err := s.files.Get(id)
	if err != nil {
		return nil, nil, ErrNotFound
	}
	rc, err := s.blobs.Open(ctx, rec.StoredName)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrPhysicalIO, err)
	}
	return rc, rec, nil
}

// DeleteFile removes a file the caller owns (or any file, for admins). The
// physical blob is deleted first; if that fails the metadata stays and the
// failure is surfaced, so records and blobs never diverge silently.
func (s *Service) DeleteFile(ctx context.Context, token, id string) (err error) {
	defer func() { metrics.ObserveMutation("delete_file", err) }()
	username, err := s.gate.RequireAuthenticated(ctx, token)
	if err != nil {
		return err
	}
	rec, err := s.files.Get(id)
	if err != nil {
		return ErrNotFound
	}
	if err = s.gate.RequireOwnerOrAdmin(rec.UploadedBy, username); err != nil {
		return err
	}
	if err = s.blobs.Delete(ctx, rec.StoredName); err != nil {
		logger.Errorf("blob delete failed for %q (record %s kept): %v", rec.StoredName, id, err)
		return fmt.Errorf("%w: %v", ErrPhysicalIO, err)
	}
	if err = s.files.Delete(id); err != nil {
		if errors.Is(err, files.ErrNotFound) {
			// lost a race with a concurrent delete; the blob is gone either way
			return ErrNotFound
		}
		return err
	}
	if err := s.activity.Append(username, "delete", rec.OriginalName, "file"); err != nil {
		logger.Errorf("activity append failed after file delete by %s: %v", username, err)
	}
	return nil
}

// ListFiles returns all file records, keyed by ID.
func (s *Service) ListFiles(ctx context.Context, token string) (map[string]models.File, error) {
	if _, err := s.gate.RequireAuthenticated(ctx, token); err != nil {
		return nil, err
	}
	return s.files.All()
}

// CreateSnippet stores a snippet and logs the action. Language defaults to
// "text".
func (s *Service) CreateSnippet(ctx context.Context, token, title, code, language string) (id string, err error) {
	defer func() { metrics.ObserveMutation("create_snippet", err) }()
	username, err := s.gate.RequireAuthenticated(ctx, token)
	if err != nil {
		return "", err
	}
	if language == "" {
		language = "text"
	}
	now := time.Now().UTC()
	id, err = s.snippets.Put(models.Snippet{
		Title:      title,
		Code:       code,
		Language:   language,
		PostedBy:   username,
		CreatedAt:  now,
		ModifiedAt: now,
	})
	if err != nil {
		return "", err
	}
	if err := s.activity.Append(username, "create", title, "code_snippet"); err != nil {
		logger.Errorf("activity append failed after snippet create by %s: %v", username, err)
	}
	return id, nil
}

// DeleteSnippet removes a snippet the caller owns (or any, for admins).
func (s *Service) DeleteSnippet(ctx context.Context, token, id string) (err error) {
	defer func() { metrics.ObserveMutation("delete_snippet", err) }()
	username, err := s.gate.RequireAuthenticated(ctx, token)
	if err != nil {
		return err
	}
	rec, err := s.snippets.Get(id)
	if err != nil {
		return ErrNotFound
	}
	if err = s.gate.RequireOwnerOrAdmin(rec.PostedBy, username); err != nil {
		return err
	}
	if err = s.snippets.Delete(id); err != nil {
		if errors.Is(err, snippets.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	if err := s.activity.Append(username, "delete", rec.Title, "code_snippet"); err != nil {
		logger.Errorf("activity append failed after snippet delete by %s: %v", username, err)
	}
	return nil
}

// ListSnippets returns all snippets, keyed by ID.
func (s *Service) ListSnippets(ctx context.Context, token string) (map[string]models.Snippet, error) {
	if _, err := s.gate.RequireAuthenticated(ctx, token); err != nil {
		return nil, err
	}
	return s.snippets.All()
}

// PostMessage stores a message and logs the action with a truncated preview.
func (s *Service) PostMessage(ctx context.Context, token, content string) (id string, err error) {
	defer func() { metrics.ObserveMutation("post_message", err) }()
	username, err := s.gate.RequireAuthenticated(ctx, token)
	if err != nil {
		return "", err
	}
	id, err = s.messages.Put(models.Message{
		Content:   content,
		PostedBy:  username,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		return "", err
	}
	if err := s.activity.Append(username, "create", "Message: "+truncate(content, 50)+"...", "message"); err != nil {
		logger.Errorf("activity append failed after message post by %s: %v", username, err)
	}
	return id, nil
}

// ListMessages returns all messages, keyed by ID.
func (s *Service) ListMessages(ctx context.Context, token string) (map[string]models.Message, error) {
	if _, err := s.gate.RequireAuthenticated(ctx, token); err != nil {
		return nil, err
	}
	return s.messages.All()
}

// CreateUser adds an account (admin only). Duplicate usernames report
// ErrDuplicate and change nothing.
func (s *Service) CreateUser(ctx context.Context, token, username, password string, isAdmin bool) (err error) {
	defer func() { metrics.ObserveMutation("create_user", err) }()
	actor, err := s.gate.RequireAuthenticated(ctx, token)
	if err != nil {
		return err
	}
	if err = s.gate.RequireAdmin(actor); err != nil {
		return err
	}
	if err = s.users.Create(username, password, isAdmin); err != nil {
		if errors.Is(err, users.ErrDuplicate) {
			return ErrDuplicate
		}
		return err
	}
	if err := s.activity.Append(actor, "create", username, "user"); err != nil {
		logger.Errorf("activity append failed after user create by %s: %v", actor, err)
	}
	return nil
}

// ListUsers returns every account, keyed by username (admin only).
func (s *Service) ListUsers(ctx context.Context, token string) (map[string]models.User, error) {
	actor, err := s.gate.RequireAuthenticated(ctx, token)
	if err != nil {
		return nil, err
	}
	if err := s.gate.RequireAdmin(actor); err != nil {
		return nil, err
	}
	return s.users.All()
}

// RecentActivity returns up to limit log entries, newest first.
func (s *Service) RecentActivity(ctx context.Context, token string, limit int) ([]models.ActivityEntry, error) {
	if _, err := s.gate.RequireAuthenticated(ctx, token); err != nil {
		return nil, err
	}
	return s.activity.Recent(limit)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
