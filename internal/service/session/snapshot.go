package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/postty/showcase-agent/internal/model/chat"
)

// Snapshotter persists session state across process restarts. The in-memory
// registry stays authoritative; snapshots are best-effort.
type Snapshotter interface {
	Save(ctx context.Context, sess *chat.Session, ttl time.Duration) error
	Load(ctx context.Context, id string) (*chat.Session, error)
	Delete(ctx context.Context, id string) error
}

const snapshotKeyPrefix = "showcase:session:"

// RedisSnapshotter stores JSON session snapshots in Redis with the idle TTL
// as expiry, so abandoned sessions age out of Redis on their own.
type RedisSnapshotter struct {
	client *redis.Client
}

// NewRedisSnapshotter connects to addr and verifies the connection.
func NewRedisSnapshotter(ctx context.Context, addr, password string, db int) (*RedisSnapshotter, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &RedisSnapshotter{client: client}, nil
}

func (r *RedisSnapshotter) Save(ctx context.Context, sess *chat.Session, ttl time.Duration) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("marshal session %s: %w", sess.ID, err)
	}
	return r.client.Set(ctx, snapshotKeyPrefix+sess.ID, data, ttl).Err()
}

func (r *RedisSnapshotter) Load(ctx context.Context, id string) (*chat.Session, error) {
	data, err := r.client.Get(ctx, snapshotKeyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var sess chat.Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("unmarshal session %s: %w", id, err)
	}
	return &sess, nil
}

func (r *RedisSnapshotter) Delete(ctx context.Context, id string) error {
	return r.client.Del(ctx, snapshotKeyPrefix+id).Err()
}

// Close releases the Redis connection.
func (r *RedisSnapshotter) Close() error {
	return r.client.Close()
}
