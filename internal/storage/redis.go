package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/leapstack-labs/ledgerdesk/pkg/core"
)

// DefaultRedisTTL bounds how long an idle client's items are kept.
const DefaultRedisTTL = 30 * 24 * time.Hour

// Redis is a Backend keeping items under "<prefix>:<namespace>:<key>".
type Redis struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// RedisConfig configures the redis backend.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
	TTL      time.Duration
}

// OpenRedis connects to redis and checks the connection.
func OpenRedis(ctx context.Context, cfg RedisConfig) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Addr, err)
	}

	prefix := cfg.Prefix
	if prefix == "" {
		prefix = "ledgerdesk"
	}
	ttl := cfg.TTL
	if ttl == 0 {
		ttl = DefaultRedisTTL
	}
	return &Redis{client: client, prefix: prefix, ttl: ttl}, nil
}

// Namespace returns the storage for name.
func (r *Redis) Namespace(name string) core.Storage {
	return &redisNamespace{backend: r, name: name}
}

// Close closes the client.
func (r *Redis) Close() error {
	return r.client.Close()
}

type redisNamespace struct {
	backend *Redis
	name    string
}

func (n *redisNamespace) key(k string) string {
	return n.backend.prefix + ":" + n.name + ":" + k
}

func (n *redisNamespace) GetItem(ctx context.Context, key string) (string, bool, error) {
	v, err := n.backend.client.Get(ctx, n.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get %s: %w", key, err)
	}
	return v, true, nil
}

func (n *redisNamespace) SetItem(ctx context.Context, key, value string) error {
	if err := n.backend.client.Set(ctx, n.key(key), value, n.backend.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}
	return nil
}

func (n *redisNamespace) RemoveItem(ctx context.Context, key string) error {
	if err := n.backend.client.Del(ctx, n.key(key)).Err(); err != nil {
		return fmt.Errorf("failed to remove %s: %w", key, err)
	}
	return nil
}
