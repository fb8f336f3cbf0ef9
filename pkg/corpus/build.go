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

package corpus

import (
	"context"
	"fmt"
	"iter"

	"k8s.io/klog/v2"

	"github.com/llm-d/llm-d-text-corpus/pkg/utils/logging"
	"github.com/llm-d/llm-d-text-corpus/pkg/vocab"
)

// cancelCheckInterval is the number of lines between context checks.
const cancelCheckInterval = 1024

// Build consumes lines once and writes them to a new store under
// cfg.OutputPath.
func Build(ctx context.Context, lines iter.Seq2[[]string, error], v vocab.Vocabulary, cfg *Config) (*Store, error) {
	b, err := NewBuilder(ctx, cfg, v)
	if err != nil {
		return nil, err
	}

	n := 0
	for tokens, err := range lines {
		if err != nil {
			b.Abort()
			return nil, fmt.Errorf("failed to read line %d: %w", n, err)
		}
		if n%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				b.Abort()
				return nil, err
			}
		}
		if err := b.Append(tokens); err != nil {
			b.Abort()
			return nil, err
		}
		n++
	}

	return b.Finish()
}

// BuildOrReuse loads the store under cfg.OutputPath when cfg.Reuse is set
// and both its files exist, without pulling lines; otherwise it builds it.
func BuildOrReuse(ctx context.Context, lines iter.Seq2[[]string, error], v vocab.Vocabulary,
	cfg *Config,
) (*Store, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	if cfg.Reuse && Exists(cfg.OutputPath) {
		klog.FromContext(ctx).V(logging.DEBUG).WithName("corpus.BuildOrReuse").Info(
			"reusing token store", "path", cfg.OutputPath)
		return Load(ctx, cfg.OutputPath, v)
	}

	return Build(ctx, lines, v, cfg)
}
