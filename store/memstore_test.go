package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMemStoreRoundTrip(t *testing.T) {
	s := NewMemStore()
	ctx := context.Background()

	_, found, err := s.Get(ctx, "missing")
	require.NoError(t, err)
	require.False(t, found)

	require.NoError(t, s.Set(ctx, "k", []byte("v1")))
	raw, found, err := s.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, []byte("v1"), raw)

	require.NoError(t, s.Set(ctx, "k", []byte("v2")))
	raw, _, _ = s.Get(ctx, "k")
	require.Equal(t, []byte("v2"), raw)

	require.NoError(t, s.Delete(ctx, "k"))
	_, found, err = s.Get(ctx, "k")
	require.NoError(t, err)
	require.False(t, found)
}

func TestMemStoreGetReturnsIndependentCopy(t *testing.T) {
	s := NewMemStore()
	ctx := context.Background()
	require.NoError(t, s.Set(ctx, "k", []byte("v1")))

	raw, _, _ := s.Get(ctx, "k")
	raw[0] = 'X'

	raw2, _, _ := s.Get(ctx, "k")
	require.Equal(t, []byte("v1"), raw2, "mutating a returned slice must not affect the store")
}
