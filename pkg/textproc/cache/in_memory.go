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

	lru "github.com/hashicorp/golang-lru/v2"
)

const defaultInMemorySize = 1 << 20

// InMemoryConfig holds the configuration for the InMemory backend.
type InMemoryConfig struct {
	// Size is the maximum number of results that can be stored.
	Size int `json:"size"`
}

// DefaultInMemoryConfig returns a default configuration for the InMemory backend.
func DefaultInMemoryConfig() *InMemoryConfig {
	return &InMemoryConfig{
		Size: defaultInMemorySize,
	}
}

// InMemory is an LRU backend bounded by entry count.
type InMemory struct {
	data *lru.Cache[Key, string]
}

var _ Backend = &InMemory{}

// NewInMemory creates a new InMemory backend.
func NewInMemory(cfg *InMemoryConfig) (*InMemory, error) {
	if cfg == nil {
		cfg = DefaultInMemoryConfig()
	}

	data, err := lru.New[Key, string](cfg.Size)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize in-memory cache: %w", err)
	}

	return &InMemory{data: data}, nil
}

// Get returns the value stored under key.
func (m *InMemory) Get(_ context.Context, key Key) (string, bool, error) {
	value, ok := m.data.Get(key)
	return value, ok, nil
}

// Set stores value under key, evicting the least recently used entry when
// full.
func (m *InMemory) Set(_ context.Context, key Key, value string) error {
	m.data.Add(key, value)
	return nil
}

// Len returns the number of stored results.
func (m *InMemory) Len() int {
	return m.data.Len()
}
