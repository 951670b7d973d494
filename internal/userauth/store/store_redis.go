package store

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"hipservice/pkg/platform/sentinel"
)

const (
	transactionKeyPrefix = "userauth:txn:"
	accessTokenKeyPrefix = "userauth:token:"
)

// RedisStore shares handshake state across instances. Expiry is delegated to
// Redis key TTLs.
type RedisStore struct {
	client redis.UniversalClient
}

func NewRedis(client redis.UniversalClient) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) SaveTransaction(ctx context.Context, healthID, transactionID string, ttl time.Duration) error {
	return s.client.Set(ctx, transactionKeyPrefix+healthID, transactionID, ttl).Err()
}

// TakeTransaction uses GETDEL so two confirms cannot both claim the transaction.
func (s *RedisStore) TakeTransaction(ctx context.Context, healthID string) (string, error) {
	v, err := s.client.GetDel(ctx, transactionKeyPrefix+healthID).Result()
	if errors.Is(err, redis.Nil) {
		return "", sentinel.ErrNotFound
	}
	return v, err
}

func (s *RedisStore) SaveAccessToken(ctx context.Context, healthID, token string, ttl time.Duration) error {
	return s.client.Set(ctx, accessTokenKeyPrefix+healthID, token, ttl).Err()
}

func (s *RedisStore) AccessToken(ctx context.Context, healthID string) (string, error) {
	v, err := s.client.Get(ctx, accessTokenKeyPrefix+healthID).Result()
	if errors.Is(err, redis.Nil) {
		return "", sentinel.ErrNotFound
	}
	return v, err
}
