package persistence

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/stall-admin/internal/config"
)

func TestInviteCooldown_DisabledAlwaysAllows(t *testing.T) {
	ctx := context.Background()

	for _, c := range []*InviteCooldown{
		nil,
		NewInviteCooldown(nil, time.Minute),
		NewInviteCooldown(&Redis{}, time.Minute),
	} {
		ok, err := c.Acquire(ctx, "a@stall.ph")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.NoError(t, c.Release(ctx, "a@stall.ph"))
	}
}

func TestInviteCooldown_Redis(t *testing.T) {
	addr := os.Getenv("REDIS_TEST_ADDR")
	if addr == "" {
		t.Skip("REDIS_TEST_ADDR not set")
	}
	r := NewRedis(config.RedisConfig{Addr: addr}, zap.NewNop())
	t.Cleanup(r.Close)

	ctx := context.Background()
	email := uuid.NewString() + "@stall.ph"
	c := NewInviteCooldown(r, time.Minute)

	ok, err := c.Acquire(ctx, email)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = c.Acquire(ctx, " "+email)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Release(ctx, email))
	ok, err = c.Acquire(ctx, email)
	require.NoError(t, err)
	assert.True(t, ok)
	require.NoError(t, c.Release(ctx, email))
}

func TestMigrationsEmbedded(t *testing.T) {
	entries, err := migrationFiles.ReadDir("migrations")
	require.NoError(t, err)

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.Contains(t, names, "000001_profiles.up.sql")
	assert.Contains(t, names, "000002_audit_logs.up.sql")
	assert.Contains(t, names, "000003_sales_expenses.up.sql")
	assert.Len(t, names, 6)
}
