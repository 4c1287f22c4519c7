package token

import (
	"context"
	"encoding/json"

	goredis "github.com/go-redis/redis/v8"
	"lead-bridge/internal/common/errors"
	"lead-bridge/internal/common/logging"
)

const redisTokenKey = "crm:token:current"

// RedisStore persists the token pair as a single JSON value in Redis.
// Suitable when multiple bridge instances need to share one token pair.
type RedisStore struct {
	client *goredis.Client
	key    string
}

// NewRedisStore creates a Redis-backed token store using the given client
func NewRedisStore(client *goredis.Client) *RedisStore {
	return &RedisStore{
		client: client,
		key:    redisTokenKey,
	}
}

// Read loads the current token record from Redis
func (s *RedisStore) Read(ctx context.Context) (*Token, error) {
	data, err := s.client.Get(ctx, s.key).Result()
	if err != nil {
		if err == goredis.Nil {
			return nil, nil
		}
		return nil, errors.PersistenceError("failed to read token from redis", err)
	}

	var tok Token
	if err := json.Unmarshal([]byte(data), &tok); err != nil {
		logging.Warn("Stored token is corrupted, treating as empty",
			logging.Field{Key: "key", Value: s.key},
			logging.Field{Key: "error", Value: err.Error()})
		return nil, nil
	}

	return &tok, nil
}

// Write persists the full token record, replacing the previous one.
// No TTL is set: the record stays until the next refresh overwrites it.
func (s *RedisStore) Write(ctx context.Context, tok *Token) error {
	data, err := json.Marshal(tok)
	if err != nil {
		return errors.PersistenceError("failed to serialize token", err)
	}

	if err := s.client.Set(ctx, s.key, string(data), 0).Err(); err != nil {
		return errors.PersistenceError("failed to write token to redis", err)
	}

	return nil
}
