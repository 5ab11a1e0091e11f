package session

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "todobot:menu:"

type rds struct {
	client *redis.Client
}

// NewRedisStore returns a Store relying on Redis key expiration.
func NewRedisStore(client *redis.Client) Store {
	return &rds{client: client}
}

// RedisClient parses the given URL and checks the server is reachable.
func RedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, errors.Wrap(err, "invalid redis url")
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, errors.Wrap(err, "could not reach redis")
	}
	return client, nil
}

func (s *rds) Put(ctx context.Context, token string, g Grant, ttl time.Duration) error {
	payload, err := json.Marshal(g)
	if err != nil {
		return errors.Wrap(err, "could not encode grant")
	}

	err = s.client.Set(ctx, redisKeyPrefix+token, payload, ttl).Err()
	return errors.Wrap(err, "could not save grant")
}

func (s *rds) Get(ctx context.Context, token string) (*Grant, error) {
	payload, err := s.client.Get(ctx, redisKeyPrefix+token).Bytes()
	if err == redis.Nil {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "could not get grant")
	}

	var g Grant
	if err := json.Unmarshal(payload, &g); err != nil {
		return nil, errors.Wrap(err, "could not decode grant")
	}
	return &g, nil
}

func (s *rds) Delete(ctx context.Context, token string) error {
	err := s.client.Del(ctx, redisKeyPrefix+token).Err()
	return errors.Wrap(err, "could not delete grant")
}
