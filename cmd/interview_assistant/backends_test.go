package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jonathan/interview-assistant/internal/config"
	"github.com/jonathan/interview-assistant/internal/roster"
	"github.com/jonathan/interview-assistant/internal/state"
	"github.com/jonathan/interview-assistant/internal/types"
)

func TestOpenBackends_FileStore(t *testing.T) {
	cfg := config.Defaults()
	cfg.StateDir = t.TempDir()
	ctx := context.Background()

	b, err := openBackends(ctx, &cfg, zap.NewNop())
	require.NoError(t, err)
	_, err = b.roster.Upsert(ctx, types.RosterEntry{ID: "c1", Name: "Jane Doe", Email: "jane@example.com"})
	require.NoError(t, err)
	b.Close()

	reopened, err := openBackends(ctx, &cfg, zap.NewNop())
	require.NoError(t, err)
	defer reopened.Close()

	entry, err := reopened.roster.Get(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", entry.Name)
}

func TestOpenBackends_Redis(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := config.Defaults()
	cfg.RedisURL = "redis://" + mr.Addr()
	ctx := context.Background()

	b, err := openBackends(ctx, &cfg, zap.NewNop())
	require.NoError(t, err)
	defer b.Close()

	assert.IsType(t, &state.RedisStore{}, b.state)
	_, err = b.roster.Upsert(ctx, types.RosterEntry{ID: "c1", Name: "Jane Doe"})
	require.NoError(t, err)
	assert.True(t, mr.Exists(state.DefaultRedisPrefix+state.SectionRoster))
}

func TestOpenBackends_BadRedisURL(t *testing.T) {
	cfg := config.Defaults()
	cfg.RedisURL = "not-a-url://"

	_, err := openBackends(context.Background(), &cfg, zap.NewNop())
	assert.Error(t, err)
}

func TestNewLLMClient_WithoutKey(t *testing.T) {
	cfg := config.Defaults()
	client, err := newLLMClient(context.Background(), &cfg, zap.NewNop())
	require.NoError(t, err)
	assert.Nil(t, client)
}

func TestListRoster(t *testing.T) {
	ctx := context.Background()
	store := roster.NewMemoryStore()
	score := 31
	_, err := store.Upsert(ctx, types.RosterEntry{ID: "a", Name: "Ann Lee", Email: "ann@example.com", FinalScore: &score})
	require.NoError(t, err)
	_, err = store.Upsert(ctx, types.RosterEntry{ID: "b", Name: "Bob Roy", Email: "bob@example.com"})
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, listRoster(ctx, store, roster.Filter{Search: "ann"}, &out))
	assert.Contains(t, out.String(), "Ann Lee")
	assert.Contains(t, out.String(), "31")
	assert.NotContains(t, out.String(), "Bob Roy")
}

func TestHashPassword(t *testing.T) {
	cfg := config.Defaults()
	cfg.BcryptCost = config.MinBcryptCost

	hash, err := hashPassword(&cfg, "letmein")
	require.NoError(t, err)
	pw, err := cfg.Password()
	require.NoError(t, err)
	assert.True(t, pw.VerifyPassword("letmein", hash))

	_, err = hashPassword(&cfg, "")
	assert.Error(t, err)
}

func TestReadPassword(t *testing.T) {
	pw, err := readPassword(bytes.NewBufferString("s3cret\r\n"))
	require.NoError(t, err)
	assert.Equal(t, "s3cret", pw)

	pw, err = readPassword(bytes.NewBufferString("no-newline"))
	require.NoError(t, err)
	assert.Equal(t, "no-newline", pw)
}
