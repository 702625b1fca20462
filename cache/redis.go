package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const tagSetPrefix = "tagset:"

// RedisStore keeps values as plain keys and every tag as a set of the keys it covers
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(url string) (*RedisStore, error) {
	options, err := redis.ParseURL(url)

	if err != nil {
		return nil, err
	}

	return NewRedisStoreFromClient(redis.NewClient(options)), nil
}

func NewRedisStoreFromClient(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	value, err := s.client.Get(ctx, key).Bytes()

	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}

	if err != nil {
		return nil, false, err
	}

	return value, true, nil
}

func (s *RedisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration, tags ...string) error {
	pipe := s.client.TxPipeline()
	pipe.Set(ctx, key, value, ttl)

	for _, tag := range tags {
		setKey := tagSetPrefix + tag
		pipe.SAdd(ctx, setKey, key)
		// no entry outlives DefaultTTL, neither does its index
		pipe.Expire(ctx, setKey, maxDuration(ttl, DefaultTTL))
	}

	_, err := pipe.Exec(ctx)

	return err
}

// Delete leaves the key in its tag sets, invalidating a tag skips keys that are gone
func (s *RedisStore) Delete(ctx context.Context, key string) error {
	return s.client.Del(ctx, key).Err()
}

func (s *RedisStore) InvalidateTag(ctx context.Context, tag string) (int, error) {
	setKey := tagSetPrefix + tag

	keys, err := s.client.SMembers(ctx, setKey).Result()

	if err != nil {
		return 0, err
	}

	if len(keys) == 0 {
		return 0, nil
	}

	removed, err := s.client.Del(ctx, keys...).Result()

	if err != nil {
		return 0, err
	}

	if err := s.client.Del(ctx, setKey).Err(); err != nil {
		return int(removed), err
	}

	return int(removed), nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

func maxDuration(a time.Duration, b time.Duration) time.Duration {
	if a > b {
		return a
	}

	return b
}
