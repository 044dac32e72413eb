package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryIdemSetIfNotExists(t *testing.T) {
	idem := NewMemoryIdem()
	ctx := context.Background()

	ok, err := idem.SetIfNotExists(ctx, "settle:game-1", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = idem.SetIfNotExists(ctx, "settle:game-1", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	// Distinct keys do not interfere.
	ok, err = idem.SetIfNotExists(ctx, "settle:game-2", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestMemoryIdemExpiry(t *testing.T) {
	idem := NewMemoryIdem()
	ctx := context.Background()

	ok, err := idem.SetIfNotExists(ctx, "settle:game-1", 10*time.Millisecond)
	require.NoError(t, err)
	require.True(t, ok)

	// An expired key can be claimed again even before the reaper runs.
	assert.Eventually(t, func() bool {
		ok, err := idem.SetIfNotExists(ctx, "settle:game-1", time.Minute)
		return err == nil && ok
	}, time.Second, 5*time.Millisecond)
}
