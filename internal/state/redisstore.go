package state

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/creatorhub/ticket-bot/internal/domain"
)

// RedisStore keeps the persisted document under a single Redis key,
// for deployments that prefer shared storage over a local file.
type RedisStore struct {
	client *redis.Client
	key    string
	logger *zap.Logger
}

// NewRedisStore builds a store using the given client and key.
func NewRedisStore(client *redis.Client, key string, logger *zap.Logger) *RedisStore {
	return &RedisStore{client: client, key: key, logger: logger}
}

// Load fetches and decodes the state document, returning the empty
// state when the key is absent or the payload does not decode.
func (rs *RedisStore) Load(ctx context.Context) domain.PersistedState {
	data, err := rs.client.Get(ctx, rs.key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			rs.logger.Warn("state key unreadable, starting empty",
				zap.String("key", rs.key), zap.Error(err))
		}
		return domain.EmptyState()
	}

	var s domain.PersistedState
	if err := json.Unmarshal(data, &s); err != nil {
		rs.logger.Warn("state key corrupt, starting empty",
			zap.String("key", rs.key), zap.Error(err))
		return domain.EmptyState()
	}
	s.Normalize()
	return s
}

// Save serializes and overwrites the state document.
func (rs *RedisStore) Save(ctx context.Context, s domain.PersistedState) error {
	data, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return rs.client.Set(ctx, rs.key, data, 0).Err()
}
