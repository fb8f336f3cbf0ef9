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

	"k8s.io/klog/v2"

	"github.com/llm-d/llm-d-text-corpus/pkg/textproc"
	"github.com/llm-d/llm-d-text-corpus/pkg/utils/logging"
)

// CachedTransform memoizes the results of a LineTransform in a Backend.
// The backend is an optimization: its failures are logged and the wrapped
// transform is used instead.
type CachedTransform struct {
	next      textproc.LineTransform
	backend   Backend
	namespace string
}

var _ textproc.LineTransform = &CachedTransform{}

// NewCachedTransform wraps next. namespace must identify the transform and
// its configuration, since backends may be shared.
func NewCachedTransform(next textproc.LineTransform, backend Backend, namespace string) *CachedTransform {
	return &CachedTransform{
		next:      next,
		backend:   backend,
		namespace: namespace,
	}
}

// Pre returns the cached or computed result of next.Pre.
func (c *CachedTransform) Pre(ctx context.Context, line string) (string, error) {
	return c.apply(ctx, DirectionPre, line, c.next.Pre)
}

// Post returns the cached or computed result of next.Post.
func (c *CachedTransform) Post(ctx context.Context, line string) (string, error) {
	return c.apply(ctx, DirectionPost, line, c.next.Post)
}

func (c *CachedTransform) apply(ctx context.Context, direction Direction, line string,
	fn func(context.Context, string) (string, error),
) (string, error) {
	logger := klog.FromContext(ctx).WithName("cache.CachedTransform")
	key := NewKey(c.namespace, direction, line)

	value, found, err := c.backend.Get(ctx, key)
	switch {
	case err != nil:
		logger.Error(err, "cache lookup failed, computing", "key", key.String())
	case found:
		logger.V(logging.TRACE).Info("cache hit", "key", key.String(), "direction", direction)
		return value, nil
	}

	value, err = fn(ctx, line)
	if err != nil {
		return "", err
	}

	if err := c.backend.Set(ctx, key, value); err != nil {
		logger.Error(err, "failed to cache transform result", "key", key.String())
	}
	return value, nil
}
