package repository

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"airdrop-service/internal/usecase"
)

// releaseScript deletes the lease key only when it still holds our token, so
// a lease that expired and was re-acquired by another claim is left alone.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type RedisClaimLease struct {
	client *redis.Client
}

func NewRedisClaimLease(client *redis.Client) *RedisClaimLease {
	return &RedisClaimLease{client: client}
}

func (l *RedisClaimLease) Acquire(ctx context.Context, identity string, ttl time.Duration) (func(), error) {
	key := "airdrop:claimlease:" + identity
	token := uuid.New().String()

	ok, err := l.client.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, usecase.ErrLeaseHeld
	}

	release := func() {
		if err := releaseScript.Run(context.WithoutCancel(ctx), l.client, []string{key}, token).Err(); err != nil {
			slog.Warn("failed to release claim lease",
				slog.String("identity", identity),
				slog.String("error", err.Error()),
			)
		}
	}
	return release, nil
}
