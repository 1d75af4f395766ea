package confirm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "pastoral:confirm:" // pastoral:confirm:{actor_id}

// RedisStore keeps pending actions in Redis so every instance behind a load
// balancer sees the same slot. Keys expire with the action.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// getter is satisfied by both *redis.Client and *redis.Tx.
type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func (s *RedisStore) key(actorID string) string { return keyPrefix + actorID }

func (s *RedisStore) Put(ctx context.Context, a Action, ttl time.Duration) error {
	data, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("marshal action: %w", err)
	}
	if err := s.client.Set(ctx, s.key(a.ActorID), data, ttl).Err(); err != nil {
		return fmt.Errorf("store action: %w", err)
	}
	return nil
}

func (s *RedisStore) Peek(ctx context.Context, actorID string) (Action, error) {
	return s.get(ctx, s.client, actorID)
}

// Take compares the token inside a WATCH transaction so a stale token never
// removes a newer pending action.
func (s *RedisStore) Take(ctx context.Context, actorID, token string) (Action, error) {
	key := s.key(actorID)
	var taken Action
	err := s.client.Watch(ctx, func(tx *redis.Tx) error {
		a, err := s.get(ctx, tx, actorID)
		if err != nil {
			return err
		}
		if a.Token != token {
			return ErrTokenMismatch
		}
		if _, err := tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Del(ctx, key)
			return nil
		}); err != nil {
			return err
		}
		taken = a
		return nil
	}, key)
	if errors.Is(err, redis.TxFailedErr) {
		// Replaced between read and delete; the caller's token is stale.
		return Action{}, ErrTokenMismatch
	}
	if err != nil {
		return Action{}, err
	}
	return taken, nil
}

func (s *RedisStore) Cancel(ctx context.Context, actorID string) error {
	if err := s.client.Del(ctx, s.key(actorID)).Err(); err != nil {
		return fmt.Errorf("cancel action: %w", err)
	}
	return nil
}

func (s *RedisStore) get(ctx context.Context, c getter, actorID string) (Action, error) {
	data, err := c.Get(ctx, s.key(actorID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Action{}, ErrNoPending
	}
	if err != nil {
		return Action{}, fmt.Errorf("load action: %w", err)
	}
	var a Action
	if err := json.Unmarshal(data, &a); err != nil {
		return Action{}, fmt.Errorf("unmarshal action: %w", err)
	}
	return a, nil
}
