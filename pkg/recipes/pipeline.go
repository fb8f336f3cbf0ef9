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

package recipes

import (
	"context"
	"fmt"

	"k8s.io/klog/v2"

	"github.com/llm-d/llm-d-text-corpus/pkg/textproc"
	"github.com/llm-d/llm-d-text-corpus/pkg/textproc/cache"
	"github.com/llm-d/llm-d-text-corpus/pkg/textproc/hftokenizer"
	"github.com/llm-d/llm-d-text-corpus/pkg/utils/logging"
)

// NewPipeline assembles the line pipeline selected by cfg. When a cache is
// configured, the segmentation step is wrapped with it.
func NewPipeline(ctx context.Context, cfg *Config) (*textproc.Pipeline, error) {
	cfg = cfg.withDefaults()
	pre := cfg.PreprocessConfig
	if err := pre.Validate(); err != nil {
		return nil, err
	}

	var steps []textproc.LineTransform
	if pre.NormalizeBlanks {
		steps = append(steps, textproc.BlankNormalizer{})
	}
	if pre.Tokenize {
		steps = append(steps, textproc.NewTokenizer(pre.Lang))
	}
	if pre.Recase {
		steps = append(steps, textproc.Recaser{})
	}
	if pre.Lowercase {
		lowercaser, err := textproc.NewLowercaser(pre.Lang)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrConfiguration, err)
		}
		steps = append(steps, lowercaser)
	}
	if pre.TruecaseModel != "" {
		truecaser, err := textproc.NewTruecaser(pre.TruecaseModel)
		if err != nil {
			return nil, fmt.Errorf("failed to load truecaser: %w", err)
		}
		steps = append(steps, truecaser)
	}

	segmenter, namespace, err := newSegmenter(pre, cfg.HFTokenizerConfig)
	if err != nil {
		return nil, err
	}
	if segmenter != nil {
		if cfg.CacheConfig != nil && namespace != "" {
			backend, err := cache.NewBackend(ctx, cfg.CacheConfig)
			if err != nil {
				return nil, fmt.Errorf("failed to create transform cache: %w", err)
			}
			segmenter = cache.NewCachedTransform(segmenter, backend, namespace)
		}
		steps = append(steps, segmenter)
	}

	klog.FromContext(ctx).V(logging.DEBUG).WithName("recipes.NewPipeline").Info("assembled pipeline",
		"lang", pre.Lang, "steps", len(steps), "cached", cfg.CacheConfig != nil && namespace != "")
	return textproc.NewPipeline(steps...), nil
}

// newSegmenter returns the segmentation step and the cache namespace of its
// configuration. The char-level step is too cheap to cache and has no
// namespace.
func newSegmenter(pre *PreprocessConfig, hfConfig *hftokenizer.Config) (textproc.LineTransform, string, error) {
	switch {
	case pre.CharLevel:
		return textproc.NewCharLevelSegmenter(pre.Separator), "", nil
	case pre.BPECodes != "":
		bpe, err := textproc.NewBPESegmenter(pre.BPECodes, pre.Separator)
		if err != nil {
			return nil, "", fmt.Errorf("failed to load BPE codes: %w", err)
		}
		return bpe, fmt.Sprintf("bpe:%s:%s", pre.BPECodes, pre.Separator), nil
	case pre.HFModel != "":
		if hfConfig == nil {
			hfConfig = hftokenizer.DefaultConfig()
		}
		tokenizer, err := hftokenizer.NewCachedTokenizer(hfConfig)
		if err != nil {
			return nil, "", fmt.Errorf("failed to create HuggingFace tokenizer: %w", err)
		}
		return hftokenizer.NewTransform(tokenizer, pre.HFModel), "hf:" + pre.HFModel, nil
	default:
		return nil, "", nil
	}
}
