package store

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// exerciseStorage общий сценарий для всех реализаций Storage
func exerciseStorage(t *testing.T, s Storage) {
	t.Helper()
	ctx := context.Background()

	_, ok, err := s.Get(ctx, KeyAccessToken)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Set(ctx, KeyAccessToken, "access"))
	require.NoError(t, s.Set(ctx, KeyRefreshToken, "refresh"))
	require.NoError(t, s.Set(ctx, KeyUser, `{"id":"u1"}`))

	value, ok, err := s.Get(ctx, KeyAccessToken)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "access", value)

	require.NoError(t, s.Set(ctx, KeyAccessToken, "access-2"))
	value, _, _ = s.Get(ctx, KeyAccessToken)
	assert.Equal(t, "access-2", value)

	require.NoError(t, s.Delete(ctx, KeyRefreshToken))
	_, ok, _ = s.Get(ctx, KeyRefreshToken)
	assert.False(t, ok)

	require.NoError(t, s.Delete(ctx, SessionKeys...))
	for _, key := range SessionKeys {
		_, ok, err := s.Get(ctx, key)
		require.NoError(t, err)
		assert.False(t, ok, key)
	}
}

func TestMemoryStorage(t *testing.T) {
	exerciseStorage(t, NewMemoryStorage())
}

func TestFileStorage(t *testing.T) {
	dir := t.TempDir()
	fs, err := NewFileStorage(dir)
	require.NoError(t, err)

	exerciseStorage(t, fs)

	_, err = os.Stat(fs.Path())
	assert.True(t, os.IsNotExist(err), "empty session removes the file")
}

func TestFileStorage_PermissionsAndReload(t *testing.T) {
	dir := t.TempDir()
	fs, err := NewFileStorage(dir)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, fs.Set(ctx, KeyAccessToken, "access"))

	info, err := os.Stat(fs.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	reopened, err := NewFileStorage(dir)
	require.NoError(t, err)
	value, ok, err := reopened.Get(ctx, KeyAccessToken)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "access", value)
}

func TestFileStorage_CorruptedFile(t *testing.T) {
	dir := t.TempDir()
	fs, err := NewFileStorage(dir)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(fs.Path(), []byte("{not json"), 0600))

	_, _, err = fs.Get(context.Background(), KeyAccessToken)
	assert.Error(t, err)
}

func TestRedisStorage(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "localhost:6379", DB: 15})
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("Redis недоступен: %v", err)
	}
	defer client.Close()

	prefix := "admin-panel:test:" + time.Now().Format("150405.000000") + ":"
	exerciseStorage(t, NewRedisStorage(client, prefix))
}
