package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"bridge-be/internal/user"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ user.SessionStore = (*SessionStore)(nil)

// fakeRedis answers commands from a map, or fails every call with err.
type fakeRedis struct {
	data map[string][]byte
	ttls map[string]time.Duration
	err  error
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{data: map[string][]byte{}, ttls: map[string]time.Duration{}}
}

func (f *fakeRedis) Get(_ context.Context, key string) *redis.StringCmd {
	if f.err != nil {
		return redis.NewStringResult("", f.err)
	}
	v, ok := f.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(string(v), nil)
}

func (f *fakeRedis) Set(_ context.Context, key string, value interface{}, ttl time.Duration) *redis.StatusCmd {
	if f.err != nil {
		return redis.NewStatusResult("", f.err)
	}
	f.data[key] = value.([]byte)
	f.ttls[key] = ttl
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeRedis) Del(_ context.Context, keys ...string) *redis.IntCmd {
	if f.err != nil {
		return redis.NewIntResult(0, f.err)
	}
	var n int64
	for _, k := range keys {
		if _, ok := f.data[k]; ok {
			delete(f.data, k)
			n++
		}
	}
	return redis.NewIntResult(n, nil)
}

func TestSessionStore(t *testing.T) {
	ctx := context.Background()
	fake := newFakeRedis()
	store := &SessionStore{rdb: fake}
	key := user.StorageKey + ":sid-1"

	_, ok, err := store.Load(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Save(ctx, key, []byte(`{"isAuthenticated":true}`), time.Hour))
	assert.Equal(t, time.Hour, fake.ttls[key])

	data, ok, err := store.Load(ctx, key)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.JSONEq(t, `{"isAuthenticated":true}`, string(data))

	require.NoError(t, store.Delete(ctx, key))
	_, ok, err = store.Load(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSessionStore_Errors(t *testing.T) {
	ctx := context.Background()
	fake := newFakeRedis()
	fake.err = errors.New("connection refused")
	store := &SessionStore{rdb: fake}

	_, _, err := store.Load(ctx, "k")
	assert.ErrorContains(t, err, "load session")

	err = store.Save(ctx, "k", []byte("v"), 0)
	assert.ErrorContains(t, err, "save session")

	err = store.Delete(ctx, "k")
	assert.ErrorContains(t, err, "delete session")
}

func TestSessionStore_BacksSessionManager(t *testing.T) {
	ctx := context.Background()
	seed, err := user.SeedUsers(time.Now())
	require.NoError(t, err)

	store := &SessionStore{rdb: newFakeRedis()}
	m := user.NewSessionManager(user.NewService(user.NewMemoryRepository(seed...)), store, time.Hour)

	s := m.New()
	_, err = s.Login(ctx, "admin@bridge.com", user.DefaultPassword)
	require.NoError(t, err)

	restored, err := m.Open(ctx, s.ID())
	require.NoError(t, err)
	u, err := restored.User()
	require.NoError(t, err)
	assert.Equal(t, "1", u.ID)
}
