package persistence

import (
	"context"
	"strings"
	"time"
)

const inviteCooldownPrefix = "stall-admin:invite-cooldown:"

// InviteCooldown remembers recent confirmation sends per address.
type InviteCooldown struct {
	redis  *Redis
	window time.Duration
}

// NewInviteCooldown returns a cooldown over r. A disabled client or a
// non-positive window makes every Acquire succeed.
func NewInviteCooldown(r *Redis, window time.Duration) *InviteCooldown {
	return &InviteCooldown{redis: r, window: window}
}

// Acquire reports whether a send to email may proceed now. It claims the
// window for the caller when it does.
func (c *InviteCooldown) Acquire(ctx context.Context, email string) (bool, error) {
	if c == nil || !c.redis.Enabled() || c.window <= 0 {
		return true, nil
	}
	key := inviteCooldownPrefix + strings.ToLower(strings.TrimSpace(email))
	return c.redis.Client.SetNX(ctx, key, time.Now().UTC().Format(time.RFC3339), c.window).Result()
}

// Release drops the claim so a failed send can be retried immediately.
func (c *InviteCooldown) Release(ctx context.Context, email string) error {
	if c == nil || !c.redis.Enabled() || c.window <= 0 {
		return nil
	}
	key := inviteCooldownPrefix + strings.ToLower(strings.TrimSpace(email))
	return c.redis.Client.Del(ctx, key).Err()
}
