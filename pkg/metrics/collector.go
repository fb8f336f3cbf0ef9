// Copyright 2025 The llm-d Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package metrics

import (
	"context"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"k8s.io/klog/v2"
	"sigs.k8s.io/controller-runtime/pkg/metrics"
)

var (
	// LinesBuilt counts lines appended to token stores.
	LinesBuilt = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "textcorpus", Subsystem: "store", Name: "lines_built_total",
		Help: "Total number of lines written to token stores",
	})
	// TokensBuilt counts token ids appended to token stores.
	TokensBuilt = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "textcorpus", Subsystem: "store", Name: "tokens_built_total",
		Help: "Total number of token ids written to token stores",
	})
	// StoreLoads counts stores opened from existing sidecar artifacts.
	StoreLoads = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "textcorpus", Subsystem: "store", Name: "loads_total",
		Help: "Total number of token stores loaded from disk",
	})
	// StoreLoadLatency logs latency of loading a store.
	StoreLoadLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "textcorpus", Subsystem: "store", Name: "load_latency_seconds",
		Help:    "Latency of token store loads in seconds",
		Buckets: prometheus.DefBuckets,
	})

	// CacheRequests counts how many transform cache lookups have been made.
	CacheRequests = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "textcorpus", Subsystem: "transform_cache", Name: "requests_total",
		Help: "Total number of transform cache lookups",
	})
	// CacheHits counts how many transform cache lookups were served.
	CacheHits = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "textcorpus", Subsystem: "transform_cache", Name: "hits_total",
		Help: "Number of transform cache lookups served from the cache",
	})
	// CacheAdmissions counts transform results written to the cache.
	CacheAdmissions = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "textcorpus", Subsystem: "transform_cache", Name: "admissions_total",
		Help: "Total number of transform results admitted to the cache",
	})
	// CacheLatency logs latency of cache lookups.
	CacheLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "textcorpus", Subsystem: "transform_cache", Name: "lookup_latency_seconds",
		Help:    "Latency of transform cache lookups in seconds",
		Buckets: prometheus.DefBuckets,
	})
)

// Collectors returns a slice of all registered Prometheus collectors.
func Collectors() []prometheus.Collector {
	return []prometheus.Collector{
		LinesBuilt, TokensBuilt, StoreLoads, StoreLoadLatency,
		CacheRequests, CacheHits, CacheAdmissions, CacheLatency,
	}
}

var registerMetricsOnce = sync.Once{}

// Register registers all metrics with K8s registry.
func Register() {
	registerMetricsOnce.Do(func() {
		metrics.Registry.MustRegister(Collectors()...)
	})
}

// StartMetricsLogging spawns a goroutine that logs current metric values every
// interval until ctx is done.
func StartMetricsLogging(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				logMetrics(ctx)
			}
		}
	}()
}

func counterValue(c prometheus.Counter) (float64, bool) {
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		return 0, false
	}
	return m.GetCounter().GetValue(), true
}

func logMetrics(ctx context.Context) {
	lines, ok := counterValue(LinesBuilt)
	if !ok {
		return
	}
	tokens, ok := counterValue(TokensBuilt)
	if !ok {
		return
	}
	loads, ok := counterValue(StoreLoads)
	if !ok {
		return
	}
	requests, ok := counterValue(CacheRequests)
	if !ok {
		return
	}
	hits, ok := counterValue(CacheHits)
	if !ok {
		return
	}

	var latencyMetric dto.Metric
	if err := CacheLatency.Write(&latencyMetric); err != nil {
		return
	}
	latencyCount := latencyMetric.GetHistogram().GetSampleCount()
	latencySum := latencyMetric.GetHistogram().GetSampleSum()
	latencyAvg := 0.0
	if latencyCount > 0 {
		latencyAvg = latencySum / float64(latencyCount)
	}

	klog.FromContext(ctx).WithName("metrics").Info("metrics beat",
		"lines_built", lines,
		"tokens_built", tokens,
		"store_loads", loads,
		"cache_requests", requests,
		"cache_hits", hits,
		"cache_latency_count", latencyCount,
		"cache_latency_avg", latencyAvg,
	)
}
