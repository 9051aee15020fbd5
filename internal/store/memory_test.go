package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_GetMissing(t *testing.T) {
	kv := NewMemory()

	v, ok, err := kv.Get(context.Background(), "wt_logs")

	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, v)
}

func TestMemory_SetOverwrites(t *testing.T) {
	ctx := context.Background()
	kv := NewMemory()

	require.NoError(t, kv.Set(ctx, "wt_user", `{"username":"alice"}`))
	require.NoError(t, kv.Set(ctx, "wt_user", `{"username":"bob"}`))

	v, ok, err := kv.Get(ctx, "wt_user")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `{"username":"bob"}`, v)
	assert.NoError(t, kv.Ping(ctx))
}
