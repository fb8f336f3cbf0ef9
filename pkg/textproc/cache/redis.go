/*
Copyright 2025 The llm-d Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "textcorpus:"

// RedisConfig holds the configuration for the Redis backend.
type RedisConfig struct {
	Address string `json:"address,omitempty"` // Redis server address
	// TTL expires cached results; zero keeps them until Redis evicts them.
	TTL time.Duration `json:"ttl,omitempty"`
}

// DefaultRedisConfig returns a default configuration for the Redis backend.
func DefaultRedisConfig() *RedisConfig {
	return &RedisConfig{
		Address: "redis://127.0.0.1:6379",
	}
}

// Redis is a backend shared between processes through a Redis server.
type Redis struct {
	RedisClient *redis.Client
	ttl         time.Duration
}

var _ Backend = &Redis{}

// NewRedis creates a new Redis backend and checks the server is reachable.
func NewRedis(ctx context.Context, cfg *RedisConfig) (*Redis, error) {
	if cfg == nil {
		cfg = DefaultRedisConfig()
	}

	address := cfg.Address
	if !strings.HasPrefix(address, "redis://") &&
		!strings.HasPrefix(address, "rediss://") &&
		!strings.HasPrefix(address, "unix://") {
		address = "redis://" + address
	}

	redisOpt, err := redis.ParseURL(address)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redisURL: %w", err)
	}

	redisClient := redis.NewClient(redisOpt)
	if err := redisClient.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Redis{
		RedisClient: redisClient,
		ttl:         cfg.TTL,
	}, nil
}

// Get returns the value stored under key.
func (r *Redis) Get(ctx context.Context, key Key) (string, bool, error) {
	value, err := r.RedisClient.Get(ctx, redisKeyPrefix+key.String()).Result()
	switch {
	case errors.Is(err, redis.Nil):
		return "", false, nil
	case err != nil:
		return "", false, fmt.Errorf("failed to get %s from Redis: %w", key.String(), err)
	}

	return value, true, nil
}

// Set stores value under key with the configured TTL.
func (r *Redis) Set(ctx context.Context, key Key, value string) error {
	if err := r.RedisClient.Set(ctx, redisKeyPrefix+key.String(), value, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set %s in Redis: %w", key.String(), err)
	}
	return nil
}

// Close closes the client.
func (r *Redis) Close() error {
	return r.RedisClient.Close()
}
