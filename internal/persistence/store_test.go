package persistence

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/cachewarden/cachewarden/internal/answer"
	"github.com/cachewarden/cachewarden/internal/dns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "cachewarden-test.sqlite")
	s, err := Open(dsn)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpenRunsMigrations(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.Health())
}

func TestSaveBatchAndLoadAll(t *testing.T) {
	s := openTestStore(t)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	a1, err := answer.New("example.com", answer.TypeA, dns.ClassIN, 300, now)
	require.NoError(t, err)
	a2, err := answer.New("example.org", answer.TypeMX, dns.ClassIN, 120, now)
	require.NoError(t, err)

	require.NoError(t, s.SaveBatch(context.Background(), []answer.Answer{a1, a2}))

	loaded, err := s.LoadAll(context.Background())
	require.NoError(t, err)
	require.Len(t, loaded, 2)

	byName := map[string]answer.Answer{}
	for _, a := range loaded {
		byName[a.DomainName] = a
	}
	assert.Equal(t, a1.TTL, byName["example.com."].TTL)
	assert.Equal(t, answer.TypeMX, byName["example.org."].RecordType)
}

func TestSaveBatchUpsertKeepsNewerExpiry(t *testing.T) {
	s := openTestStore(t)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	older, err := answer.New("example.com", answer.TypeA, dns.ClassIN, 60, base)
	require.NoError(t, err)
	newer, err := answer.New("example.com", answer.TypeA, dns.ClassIN, 600, base)
	require.NoError(t, err)

	require.NoError(t, s.SaveBatch(context.Background(), []answer.Answer{newer}))
	require.NoError(t, s.SaveBatch(context.Background(), []answer.Answer{older}))

	loaded, err := s.LoadAll(context.Background())
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, newer.ExpiresAt, loaded[0].ExpiresAt)
}

func TestSaveBatchEmptyIsNoop(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.SaveBatch(context.Background(), nil))
	loaded, err := s.LoadAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, loaded)
}
