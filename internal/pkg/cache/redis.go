package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Config holds redis connection settings
type Config struct {
	Addr     string
	Password string
	DB       int
	PoolSize int
}

// RedisClient wraps redis.Client with the few operations the API needs
type RedisClient struct {
	client *redis.Client
	logger zerolog.Logger
}

// NewRedisClient connects to redis and verifies the connection with a ping
func NewRedisClient(ctx context.Context, cfg Config, logger zerolog.Logger) (*RedisClient, error) {
	if cfg.Addr == "" {
		cfg.Addr = "localhost:6379"
	}
	if cfg.PoolSize <= 0 {
		cfg.PoolSize = 10
	}

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		MaxRetries:   3,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: 2,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		DialTimeout:  5 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Addr, err)
	}

	logger.Info().Str("addr", cfg.Addr).Msg("Redis client connected")
	return &RedisClient{client: client, logger: logger}, nil
}

// Close closes the connection pool
func (rc *RedisClient) Close() error {
	if rc == nil || rc.client == nil {
		return nil
	}
	return rc.client.Close()
}

// Ping checks connectivity
func (rc *RedisClient) Ping(ctx context.Context) error {
	return rc.client.Ping(ctx).Err()
}

// IncrWindow increments a fixed-window counter and sets its expiry on the first hit
func (rc *RedisClient) IncrWindow(ctx context.Context, key string, window time.Duration) (int64, error) {
	n, err := rc.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	if n == 1 {
		if err := rc.client.Expire(ctx, key, window).Err(); err != nil {
			rc.logger.Warn().Err(err).Str("key", key).Msg("Failed to set counter expiry")
		}
	}
	return n, nil
}

func presenceKey(userID int64) string {
	return "presence:user:" + strconv.FormatInt(userID, 10)
}

// SetOnline marks a user as connected. The key expires so a crashed node does not leave users online forever.
func (rc *RedisClient) SetOnline(ctx context.Context, userID int64, ttl time.Duration) error {
	return rc.client.Set(ctx, presenceKey(userID), time.Now().UTC().Unix(), ttl).Err()
}

// SetOffline clears the presence key
func (rc *RedisClient) SetOffline(ctx context.Context, userID int64) error {
	return rc.client.Del(ctx, presenceKey(userID)).Err()
}

// IsOnline reports whether a presence key exists for the user
func (rc *RedisClient) IsOnline(ctx context.Context, userID int64) (bool, error) {
	_, err := rc.client.Get(ctx, presenceKey(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
