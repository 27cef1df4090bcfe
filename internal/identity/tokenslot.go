package identity

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

// RedisTokenSlot keeps the credential token in a durable Redis key, so it
// survives process restarts and can be invalidated out of band.
type RedisTokenSlot struct {
	client *redis.Client
	key    string
}

// NewRedisTokenSlot constructs a slot bound to a single key.
func NewRedisTokenSlot(client *redis.Client, key string) *RedisTokenSlot {
	return &RedisTokenSlot{client: client, key: key}
}

// Get returns the stored token or "" when absent.
func (s *RedisTokenSlot) Get(ctx context.Context) (string, error) {
	token, err := s.client.Get(ctx, s.key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil
		}
		return "", err
	}
	return token, nil
}

// Put stores the token. No TTL: token lifetime is owned by the issuer.
func (s *RedisTokenSlot) Put(ctx context.Context, token string) error {
	return s.client.Set(ctx, s.key, token, 0).Err()
}

// Clear removes the token. Clearing an empty slot is not an error.
func (s *RedisTokenSlot) Clear(ctx context.Context) error {
	err := s.client.Del(ctx, s.key).Err()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	return err
}

var _ TokenSlot = (*RedisTokenSlot)(nil)
