package kv

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	defer s.Close()

	_, err = s.Get(ctx, "agora_lineup_tvs")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Set(ctx, "agora_lineup_tvs", []byte(`[]`)))
	raw, err := s.Get(ctx, "agora_lineup_tvs")
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(raw))

	require.NoError(t, Mutate(ctx, s, "agora_lineup_tvs", []string(nil), func(v []string) ([]string, error) {
		return append(v, "tv-1"), nil
	}))
	assert.Equal(t, []string{"tv-1"}, Load(ctx, s, "agora_lineup_tvs", []string(nil)))

	require.NoError(t, s.Delete(ctx, "agora_lineup_tvs"))
	require.NoError(t, s.Delete(ctx, "agora_lineup_tvs"))
}

func TestFileStore_NotifiesAcrossInstances(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	reader, err := NewFileStore(dir)
	require.NoError(t, err)
	defer reader.Close()

	writer, err := NewFileStore(dir)
	require.NoError(t, err)
	defer writer.Close()

	var hits atomic.Int32
	cancel, err := reader.Subscribe(ctx, func(key string) {
		if key == "agora_lineup_events" {
			hits.Add(1)
		}
	}, "agora_lineup_events")
	require.NoError(t, err)
	defer cancel()

	require.NoError(t, writer.Set(ctx, "agora_lineup_events", []byte(`[]`)))

	assert.Eventually(t, func() bool { return hits.Load() > 0 }, 2*time.Second, 10*time.Millisecond)
}
