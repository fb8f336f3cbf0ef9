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
	"fmt"

	"github.com/dgraph-io/ristretto/v2"
	"github.com/dustin/go-humanize"
	"k8s.io/klog/v2"

	"github.com/llm-d/llm-d-text-corpus/pkg/utils/logging"
)

const (
	defaultNumCounters = 1e6 // 1M keys
	defaultBufferItems = 64  // default buffer size for ristretto
	// entryOverhead approximates the bytes held per entry besides the value:
	// the key struct, the string header and ristretto bookkeeping.
	entryOverhead = 64
)

// CostAwareConfig holds the configuration for the CostAware backend.
type CostAwareConfig struct {
	// Size is the maximum memory size that can be used by the cache.
	// Supports human-readable formats like "2GiB", "500MiB", "1GB", etc.
	Size string `json:"size,omitempty"`
	// NumCounters is the number of keys whose frequency is tracked for
	// admission.
	NumCounters int64 `json:"numCounters,omitempty"`
}

// DefaultCostAwareConfig returns a default configuration for the CostAware backend.
func DefaultCostAwareConfig() *CostAwareConfig {
	return &CostAwareConfig{
		Size:        "256MiB",
		NumCounters: defaultNumCounters,
	}
}

// CostAware is a ristretto backend bounded by the estimated memory of its
// entries.
type CostAware struct {
	data *ristretto.Cache[string, string]
}

var _ Backend = &CostAware{}

// NewCostAware creates a new CostAware backend.
func NewCostAware(ctx context.Context, cfg *CostAwareConfig) (*CostAware, error) {
	if cfg == nil {
		cfg = DefaultCostAwareConfig()
	}

	// Parse the size string to get byte value using go-humanize
	sizeBytes, err := humanize.ParseBytes(cfg.Size)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cost-aware cache: %w", err)
	}
	numCounters := cfg.NumCounters
	if numCounters <= 0 {
		numCounters = defaultNumCounters
	}

	data, err := ristretto.NewCache(&ristretto.Config[string, string]{
		NumCounters: numCounters,        // number of keys to track.
		MaxCost:     int64(sizeBytes),   // #nosec G115 , maximum cost of cache
		BufferItems: defaultBufferItems, // number of keys per Get buffer.
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cost-aware cache: %w", err)
	}

	klog.FromContext(ctx).V(logging.DEBUG).WithName("cache.CostAware").Info("created cost-aware cache",
		"max-cost", humanize.IBytes(sizeBytes), "counters", numCounters)

	return &CostAware{data: data}, nil
}

// Get returns the value stored under key.
func (m *CostAware) Get(_ context.Context, key Key) (string, bool, error) {
	value, ok := m.data.Get(key.String())
	return value, ok, nil
}

// Set stores value under key. Admission is decided by ristretto: a rejected
// value is simply not cached.
func (m *CostAware) Set(ctx context.Context, key Key, value string) error {
	keyStr := key.String()
	cost := int64(len(keyStr) + len(value) + entryOverhead)
	if !m.data.Set(keyStr, value, cost) {
		klog.FromContext(ctx).V(logging.TRACE).WithName("cache.CostAware.Set").Info("value dropped",
			"key", keyStr, "cost", humanize.IBytes(uint64(cost))) // #nosec G115
	}
	m.data.Wait()

	return nil
}

// MaxCost returns the memory budget in bytes.
func (m *CostAware) MaxCost() int64 {
	return m.data.MaxCost()
}

// Close stops the cache's goroutines.
func (m *CostAware) Close() {
	m.data.Close()
}
