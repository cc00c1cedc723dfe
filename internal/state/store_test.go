package state

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
	t.Cleanup(func() { client.Close() })
	return mr, client
}

func stores(t *testing.T) map[string]Store {
	t.Helper()
	fileStore, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	_, client := setupTestRedis(t)

	return map[string]Store{
		"file":  fileStore,
		"redis": NewRedisStore(client, ""),
	}
}

type sample struct {
	ActiveTab string `json:"activeTab"`
	Count     int    `json:"count"`
}

func TestStores_RoundTrip(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			_, err := s.Load(ctx, SectionSession)
			assert.ErrorIs(t, err, ErrNotFound)

			require.NoError(t, s.Save(ctx, SectionSession, []byte(`{"activeTab":"interviewer"}`)))
			data, err := s.Load(ctx, SectionSession)
			require.NoError(t, err)
			assert.JSONEq(t, `{"activeTab":"interviewer"}`, string(data))

			require.NoError(t, s.Save(ctx, SectionSession, []byte(`{"activeTab":"interviewee"}`)))
			data, err = s.Load(ctx, SectionSession)
			require.NoError(t, err)
			assert.JSONEq(t, `{"activeTab":"interviewee"}`, string(data), "last write wins")

			require.NoError(t, s.Delete(ctx, SectionSession))
			_, err = s.Load(ctx, SectionSession)
			assert.ErrorIs(t, err, ErrNotFound)
			assert.NoError(t, s.Delete(ctx, SectionSession), "deleting twice is fine")
		})
	}
}

func TestStores_SectionsAreIndependent(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, SaveJSON(ctx, s, SectionCandidate, sample{Count: 1}))
			require.NoError(t, SaveJSON(ctx, s, Key(SectionCandidate, "abc"), sample{Count: 2}))

			var got sample
			found, err := LoadJSON(ctx, s, SectionCandidate, &got)
			require.NoError(t, err)
			assert.True(t, found)
			assert.Equal(t, 1, got.Count)

			found, err = LoadJSON(ctx, s, Key(SectionCandidate, "abc"), &got)
			require.NoError(t, err)
			assert.True(t, found)
			assert.Equal(t, 2, got.Count)

			found, err = LoadJSON(ctx, s, SectionRoster, &got)
			require.NoError(t, err)
			assert.False(t, found)
		})
	}
}

func TestLoadJSON_CorruptSection(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()
	require.NoError(t, s.Save(ctx, SectionRoster, []byte("{not json")))

	var got []sample
	_, err = LoadJSON(ctx, s, SectionRoster, &got)
	assert.Error(t, err)
}

func TestFileStore_SanitizesKeys(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStore(dir)
	require.NoError(t, err)

	require.NoError(t, s.Save(context.Background(), "../escape/attempt", []byte("{}")))

	_, err = os.Stat(filepath.Join(dir, "___escape_attempt.json"))
	assert.NoError(t, err)
}

func TestRedisStore_Prefix(t *testing.T) {
	mr, client := setupTestRedis(t)
	s := NewRedisStore(client, "test:")

	require.NoError(t, s.Save(context.Background(), SectionRoster, []byte("[]")))

	got, err := mr.Get("test:roster")
	require.NoError(t, err)
	assert.Equal(t, "[]", got)
}

func TestDialRedis(t *testing.T) {
	mr, _ := setupTestRedis(t)

	client, err := DialRedis(context.Background(), "redis://"+mr.Addr())
	require.NoError(t, err)
	defer client.Close()

	_, err = DialRedis(context.Background(), "not a url")
	assert.Error(t, err)
}

func TestKey(t *testing.T) {
	assert.Equal(t, "roster", Key(SectionRoster, ""))
	assert.Equal(t, "candidate-42", Key(SectionCandidate, "42"))
}
