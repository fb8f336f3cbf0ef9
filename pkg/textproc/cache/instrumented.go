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

	"github.com/prometheus/client_golang/prometheus"

	"github.com/llm-d/llm-d-text-corpus/pkg/metrics"
)

type instrumented struct {
	next Backend
}

// NewInstrumented wraps a Backend and emits metrics for Get and Set.
func NewInstrumented(next Backend) Backend {
	return &instrumented{next: next}
}

func (m *instrumented) Get(ctx context.Context, key Key) (string, bool, error) {
	timer := prometheus.NewTimer(metrics.CacheLatency)
	defer timer.ObserveDuration()

	metrics.CacheRequests.Inc()

	value, ok, err := m.next.Get(ctx, key)
	if ok {
		metrics.CacheHits.Inc()
	}
	return value, ok, err
}

func (m *instrumented) Set(ctx context.Context, key Key, value string) error {
	err := m.next.Set(ctx, key, value)
	if err == nil {
		metrics.CacheAdmissions.Inc()
	}
	return err
}
