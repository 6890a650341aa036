package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/teamconnect/go-services/internal/activity"
	"github.com/teamconnect/go-services/internal/auth"
	"github.com/teamconnect/go-services/internal/blob"
	"github.com/teamconnect/go-services/internal/files"
	"github.com/teamconnect/go-services/internal/messages"
	"github.com/teamconnect/go-services/internal/models"
	"github.com/teamconnect/go-services/internal/sessions"
	"github.com/teamconnect/go-services/internal/snippets"
	"github.com/teamconnect/go-services/internal/store"
	"github.com/teamconnect/go-services/internal/users"
)

type fixture struct {
	svc      *Service
	blobs    *blob.DiskStore
	users    *users.Repository
	files    *files.Repository
	snippets *snippets.Repository
	log      *activity.Log
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	st, err := store.New(t.TempDir())
	require.NoError(t, err)
	disk, err := blob.NewDiskStore(t.TempDir())
	require.NoError(t, err)

	urepo := users.NewRepository(st)
	require.NoError(t, urepo.Seed())
	frepo := files.NewRepository(st)
	snrepo := snippets.NewRepository(st)
	mrepo := messages.NewRepository(st)
	log := activity.NewLog(st)
	sesSvc := sessions.NewService(sessions.NewMemoryRepository())
	gate := auth.NewGate(sesSvc, urepo)

	return &fixture{
		svc:      New(urepo, frepo, snrepo, mrepo, log, sesSvc, gate, disk),
		blobs:    disk,
		users:    urepo,
		files:    frepo,
		snippets: snrepo,
		log:      log,
	}
}

// login as the seeded admin
func (f *fixture) adminToken(t *testing.T) string {
	t.Helper()
	token, err := f.svc.Login(context.Background(), "admin", "admin")
	require.NoError(t, err)
	return token
}

// create and log in a regular user
func (f *fixture) userToken(t *testing.T, name string) string {
	t.Helper()
	require.NoError(t, f.users.Create(name, "pw", false))
	token, err := f.svc.Login(context.Background(), name, "pw")
	require.NoError(t, err)
	return token
}

func (f *fixture) entries(t *testing.T) []models.ActivityEntry {
	t.Helper()
	entries, err := f.log.All()
	require.NoError(t, err)
	return entries
}

func TestLoginDefaultAdmin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	start := time.Now().UTC()

	token, err := f.svc.Login(ctx, "admin", "admin")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	username, isAdmin, err := f.svc.CurrentUser(ctx, token)
	require.NoError(t, err)
	require.Equal(t, "admin", username)
	require.True(t, isAdmin)

	u, err := f.users.Get("admin")
	require.NoError(t, err)
	require.NotNil(t, u.LastLogin, "login must stamp lastLogin")

	entries := f.entries(t)
	require.Len(t, entries, 1)
	require.Equal(t, "login", entries[0].Operation)
	require.Equal(t, "authentication", entries[0].ResourceType)
	require.False(t, entries[0].Timestamp.Before(start))
}

func TestLoginBadCredentials(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Login(ctx, "admin", "wrong")
	require.ErrorIs(t, err, ErrUnauthenticated)
	_, err = f.svc.Login(ctx, "ghost", "admin")
	require.ErrorIs(t, err, ErrUnauthenticated)

	require.Empty(t, f.entries(t), "failed logins must leave no trace")
}

func TestLogoutLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	token := f.adminToken(t)

	require.NoError(t, f.svc.Logout(ctx, token))
	_, _, err := f.svc.CurrentUser(ctx, token)
	require.ErrorIs(t, err, ErrUnauthenticated)

	// logging out an already-dead token is a silent no-op
	require.NoError(t, f.svc.Logout(ctx, token))

	entries := f.entries(t)
	require.Len(t, entries, 2) // one login, one logout
	require.Equal(t, "logout", entries[1].Operation)
}

func TestUploadAndOwnerDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	token := f.userToken(t, "alice")

	id, rec, err := f.svc.Upload(ctx, token, "notes.txt", "text/plain", strings.NewReader("contents"), 8)
	require.NoError(t, err)
	require.NotEmpty(t, id)
	require.Equal(t, "notes.txt", rec.OriginalName)
	require.Equal(t, "alice", rec.UploadedBy)
	require.Equal(t, int64(8), rec.FileSize)
	require.Equal(t, "text/plain", rec.ContentType)
	require.True(t, strings.HasSuffix(rec.StoredName, ".txt"))
	require.NotEqual(t, rec.OriginalName, rec.StoredName)
	require.True(t, f.blobs.Exists(rec.StoredName))

	listed, err := f.svc.ListFiles(ctx, token)
	require.NoError(t, err)
	require.Contains(t, listed, id)

	require.NoError(t, f.svc.DeleteFile(ctx, token, id))
	require.False(t, f.blobs.Exists(rec.StoredName), "no orphan blob may remain")
	_, err = f.files.Get(id)
	require.ErrorIs(t, err, files.ErrNotFound)

	// login, upload, delete
	entries := f.entries(t)
	require.Len(t, entries, 3)
	require.Equal(t, "upload", entries[1].Operation)
	require.Equal(t, "notes.txt", entries[1].ResourceName)
	require.Equal(t, "delete", entries[2].Operation)
	require.Equal(t, "notes.txt", entries[2].ResourceName)
}

func TestUploadDefaultsContentType(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	token := f.userToken(t, "alice")

	_, rec, err := f.svc.Upload(ctx, token, "blob", "", strings.NewReader("x"), 1)
	require.NoError(t, err)
	require.Equal(t, "application/octet-stream", rec.ContentType)
}

func TestDeleteFileForbiddenForNonOwner(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	aliceToken := f.userToken(t, "alice")
	bobToken := f.userToken(t, "bob")

	id, rec, err := f.svc.Upload(ctx, aliceToken, "secret.pdf", "application/pdf", strings.NewReader("data"), 4)
	require.NoError(t, err)

	before := len(f.entries(t))
	err = f.svc.DeleteFile(ctx, bobToken, id)
	require.ErrorIs(t, err, ErrForbidden)

	// the file and its blob are untouched, and nothing was logged
	got, err := f.files.Get(id)
	require.NoError(t, err)
	require.Equal(t, "secret.pdf", got.OriginalName)
	require.True(t, f.blobs.Exists(rec.StoredName))
	require.Len(t, f.entries(t), before)
}

func TestDeleteFileAdminOverride(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	aliceToken := f.userToken(t, "alice")
	adminToken := f.adminToken(t)

	id, rec, err := f.svc.Upload(ctx, aliceToken, "doc.txt", "text/plain", strings.NewReader("data"), 4)
	require.NoError(t, err)

	require.NoError(t, f.svc.DeleteFile(ctx, adminToken, id))
	require.False(t, f.blobs.Exists(rec.StoredName))
}

func TestDeleteUnknownFile(t *testing.T) {
	f := newFixture(t)
	token := f.userToken(t, "alice")
	require.ErrorIs(t, f.svc.DeleteFile(context.Background(), token, "no-such-id"), ErrNotFound)
}

// a blob store whose deletes always fail
type brokenDeleteBlobs struct {
	blob.Store
}

func (b brokenDeleteBlobs) Delete(ctx context.Context, name string) error {
	return fmt.Errorf("disk on fire")
}

func TestDeleteFileSurfacesPhysicalFailure(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	token := f.userToken(t, "alice")

	id, _, err := f.svc.Upload(ctx, token, "a.txt", "text/plain", strings.NewReader("x"), 1)
	require.NoError(t, err)

	f.svc.blobs = brokenDeleteBlobs{Store: f.svc.blobs}
	err = f.svc.DeleteFile(ctx, token, id)
	require.ErrorIs(t, err, ErrPhysicalIO)

	// metadata must survive a failed physical delete
	_, err = f.files.Get(id)
	require.NoError(t, err)
}

func TestSnippetLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	token := f.userToken(t, "alice")

	id, err := f.svc.CreateSnippet(ctx, token, "fib", "def fib(n): ...", "")
	require.NoError(t, err)

	sn, err := f.snippets.Get(id)
	require.NoError(t, err)
	require.Equal(t, "text", sn.Language, "language must default to text")
	require.Equal(t, sn.CreatedAt, sn.ModifiedAt)
	require.Equal(t, "alice", sn.PostedBy)

	bobToken := f.userToken(t, "bob")
	require.ErrorIs(t, f.svc.DeleteSnippet(ctx, bobToken, id), ErrForbidden)
	_, err = f.snippets.Get(id)
	require.NoError(t, err, "forbidden delete must leave the snippet")

	require.NoError(t, f.svc.DeleteSnippet(ctx, token, id))
	require.ErrorIs(t, f.svc.DeleteSnippet(ctx, token, id), ErrNotFound)

	entries := f.entries(t)
	last := entries[len(entries)-1]
	require.Equal(t, "delete", last.Operation)
	require.Equal(t, "fib", last.ResourceName)
	require.Equal(t, "code_snippet", last.ResourceType)
}

func TestConcurrentSnippetCreation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	token := f.userToken(t, "alice")

	var mu sync.Mutex
	ids := map[string]bool{}
	var wg sync.WaitGroup
	for _, title := range []string{"one", "two"} {
		wg.Add(1)
		go func(title string) {
			defer wg.Done()
			id, err := f.svc.CreateSnippet(ctx, token, title, "code", "go")
			if err != nil {
				t.Errorf("create %s: %v", title, err)
				return
			}
			mu.Lock()
			ids[id] = true
			mu.Unlock()
		}(title)
	}
	wg.Wait()

	require.Len(t, ids, 2)
	all, err := f.svc.ListSnippets(ctx, token)
	require.NoError(t, err)
	require.Len(t, all, 2)
}

func TestPostMessageTruncatesLogPreview(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	token := f.userToken(t, "alice")

	long := strings.Repeat("0123456789", 10)
	id, err := f.svc.PostMessage(ctx, token, long)
	require.NoError(t, err)
	require.NotEmpty(t, id)

	msgs, err := f.svc.ListMessages(ctx, token)
	require.NoError(t, err)
	require.Equal(t, long, msgs[id].Content, "stored content is never truncated")

	entries := f.entries(t)
	last := entries[len(entries)-1]
	require.Equal(t, "Message: "+long[:50]+"...", last.ResourceName)
	require.Equal(t, "message", last.ResourceType)
}

func TestCreateUserAdminOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	aliceToken := f.userToken(t, "alice")
	adminToken := f.adminToken(t)

	require.ErrorIs(t, f.svc.CreateUser(ctx, aliceToken, "eve", "pw", false), ErrForbidden)
	_, err := f.users.Get("eve")
	require.ErrorIs(t, err, users.ErrNotFound)

	require.NoError(t, f.svc.CreateUser(ctx, adminToken, "eve", "pw", false))
	require.ErrorIs(t, f.svc.CreateUser(ctx, adminToken, "eve", "pw2", true), ErrDuplicate)

	entries := f.entries(t)
	created := 0
	for _, e := range entries {
		if e.Operation == "create" && e.ResourceType == "user" {
			created++
			require.Equal(t, "admin", e.Username)
			require.Equal(t, "eve", e.ResourceName)
		}
	}
	require.Equal(t, 1, created, "only the successful creation may be logged")
}

func TestListUsersAdminOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	aliceToken := f.userToken(t, "alice")
	adminToken := f.adminToken(t)

	_, err := f.svc.ListUsers(ctx, aliceToken)
	require.ErrorIs(t, err, ErrForbidden)

	all, err := f.svc.ListUsers(ctx, adminToken)
	require.NoError(t, err)
	require.Contains(t, all, "admin")
	require.Contains(t, all, "alice")
}

func TestReadsRequireAuthentication(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.ListFiles(ctx, "")
	require.ErrorIs(t, err, ErrUnauthenticated)
	_, err = f.svc.ListSnippets(ctx, "bogus")
	require.ErrorIs(t, err, ErrUnauthenticated)
	_, err = f.svc.ListMessages(ctx, "bogus")
	require.ErrorIs(t, err, ErrUnauthenticated)
	_, err = f.svc.RecentActivity(ctx, "bogus", 10)
	require.ErrorIs(t, err, ErrUnauthenticated)
}

func TestLogCompleteness(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	start := time.Now().UTC()
	token := f.adminToken(t)

	_, _, err := f.svc.Upload(ctx, token, "a.txt", "text/plain", strings.NewReader("x"), 1)
	require.NoError(t, err)
	_, err = f.svc.CreateSnippet(ctx, token, "s", "c", "go")
	require.NoError(t, err)
	_, err = f.svc.PostMessage(ctx, token, "hi")
	require.NoError(t, err)
	require.NoError(t, f.svc.CreateUser(ctx, token, "eve", "pw", false))

	entries := f.entries(t)
	require.Len(t, entries, 5, "exactly one entry per successful mutation")
	for _, e := range entries {
		require.False(t, e.Timestamp.Before(start), "entry timestamps start at or after the mutation")
		require.Equal(t, "admin", e.Username)
	}
}

func TestOpenFile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	token := f.userToken(t, "alice")

	id, _, err := f.svc.Upload(ctx, token, "r.txt", "text/plain", strings.NewReader("read me"), 7)
	require.NoError(t, err)

	rc, rec, err := f.svc.OpenFile(ctx, token, id)
	require.NoError(t, err)
	defer rc.Close()
	require.Equal(t, "r.txt", rec.OriginalName)

	_, _, err = f.svc.OpenFile(ctx, token, "missing")
	require.ErrorIs(t, err, ErrNotFound)
	_, _, err = f.svc.OpenFile(ctx, "bogus", id)
	require.ErrorIs(t, err, ErrUnauthenticated)
}
