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

// Package cache memoizes line transforms. Results are keyed by a namespace
// naming the transform and a hash of the direction and the input line, and
// stored in one of several backends.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/llm-d/llm-d-text-corpus/pkg/metrics"
)

// Config holds the configuration for the transform cache.
// It may configure several backends such as listed within the struct.
// If multiple backends are configured, only the first one will be used.
type Config struct {
	// InMemoryConfig holds the configuration for the in-memory backend.
	InMemoryConfig *InMemoryConfig `json:"inMemoryConfig"`
	// CostAwareConfig holds the configuration for the cost-aware memory backend.
	CostAwareConfig *CostAwareConfig `json:"costAwareConfig"`
	// RedisConfig holds the configuration for the Redis backend.
	RedisConfig *RedisConfig `json:"redisConfig"`
	// EnableMetrics toggles whether requests/hits/admissions are recorded.
	EnableMetrics bool `json:"enableMetrics"`
	// MetricsLoggingInterval defines the interval at which metrics are logged.
	// If zero, metrics logging is disabled.
	// Requires `EnableMetrics` to be true.
	MetricsLoggingInterval time.Duration `json:"metricsLoggingInterval"`
}

// DefaultConfig returns a default configuration for the transform cache.
func DefaultConfig() *Config {
	return &Config{
		InMemoryConfig: DefaultInMemoryConfig(),
		EnableMetrics:  false,
	}
}

// NewBackend creates the backend selected by cfg.
func NewBackend(ctx context.Context, cfg *Config) (Backend, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	var backend Backend
	var err error

	switch {
	case cfg.InMemoryConfig != nil:
		backend, err = NewInMemory(cfg.InMemoryConfig)
		if err != nil {
			return nil, fmt.Errorf("failed to create in-memory cache: %w", err)
		}
	case cfg.CostAwareConfig != nil:
		backend, err = NewCostAware(ctx, cfg.CostAwareConfig)
		if err != nil {
			return nil, fmt.Errorf("failed to create cost-aware cache: %w", err)
		}
	case cfg.RedisConfig != nil:
		backend, err = NewRedis(ctx, cfg.RedisConfig)
		if err != nil {
			return nil, fmt.Errorf("failed to create Redis cache: %w", err)
		}
	default:
		return nil, fmt.Errorf("no valid cache configuration provided")
	}

	// wrap in metrics only if enabled
	if cfg.EnableMetrics {
		backend = NewInstrumented(backend)
		metrics.Register()
		if cfg.MetricsLoggingInterval > 0 {
			// this is non-blocking
			metrics.StartMetricsLogging(ctx, cfg.MetricsLoggingInterval)
		}
	}

	return backend, nil
}

// Backend stores transform results.
//
// Backend operations are thread-safe and can be performed concurrently.
type Backend interface {
	// Get returns the value stored under key, if any.
	Get(ctx context.Context, key Key) (string, bool, error)
	// Set stores value under key.
	Set(ctx context.Context, key Key, value string) error
}

// Direction is the transform direction a cached value was produced by.
type Direction string

const (
	// DirectionPre marks results of LineTransform.Pre.
	DirectionPre Direction = "pre"
	// DirectionPost marks results of LineTransform.Post.
	DirectionPost Direction = "post"
)

// Key identifies a cached transform result.
type Key struct {
	Namespace string
	Hash      uint64
}

// NewKey hashes direction and line under namespace.
func NewKey(namespace string, direction Direction, line string) Key {
	d := xxhash.New()
	_, _ = d.WriteString(string(direction))
	_, _ = d.Write([]byte{0})
	_, _ = d.WriteString(line)

	return Key{Namespace: namespace, Hash: d.Sum64()}
}

// String returns a string representation of the Key.
func (k Key) String() string {
	return fmt.Sprintf("%s@%d", k.Namespace, k.Hash)
}
