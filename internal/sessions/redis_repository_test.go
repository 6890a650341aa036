package sessions

import (
	"context"
	"testing"
	"time"

	mr "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func TestRedisRepository_CreateGetDelete(t *testing.T) {
	m, err := mr.Run()
	require.NoError(t, err)
	defer m.Close()

	client := redis.NewClient(&redis.Options{Addr: m.Addr()})
	repo := NewRedisRepository(client, "test:session:", 0)

	ctx := context.Background()
	s := &Session{
		Token:     "t1",
		Username:  "alice",
		CreatedAt: time.Now().UTC(),
	}

	require.NoError(t, repo.Create(ctx, s))

	got, err := repo.Get(ctx, "t1")
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, "alice", got.Username)

	require.NoError(t, repo.Delete(ctx, "t1"))
	got2, err := repo.Get(ctx, "t1")
	require.NoError(t, err)
	require.Nil(t, got2)
}

func TestRedisRepository_TTL(t *testing.T) {
	m, err := mr.Run()
	require.NoError(t, err)
	defer m.Close()

	client := redis.NewClient(&redis.Options{Addr: m.Addr()})
	repo := NewRedisRepository(client, "test:session:", time.Second)

	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, &Session{Token: "t2", Username: "bob", CreatedAt: time.Now().UTC()}))

	got, err := repo.Get(ctx, "t2")
	require.NoError(t, err)
	require.NotNil(t, got)

	// advance miniredis clock past the configured TTL
	m.FastForward(2 * time.Second)

	got2, err := repo.Get(ctx, "t2")
	require.NoError(t, err)
	require.Nil(t, got2)
}

func TestRedisRepository_ServiceRoundTrip(t *testing.T) {
	m, err := mr.Run()
	require.NoError(t, err)
	defer m.Close()

	client := redis.NewClient(&redis.Options{Addr: m.Addr()})
	svc := NewService(NewRedisRepository(client, "", 0))

	ctx := context.Background()
	token, err := svc.Create(ctx, "dave")
	require.NoError(t, err)

	sess, err := svc.Resolve(ctx, token)
	require.NoError(t, err)
	require.NotNil(t, sess)
	require.Equal(t, "dave", sess.Username)

	require.NoError(t, svc.Destroy(ctx, token))
	sess, err = svc.Resolve(ctx, token)
	require.NoError(t, err)
	require.Nil(t, sess)
}
