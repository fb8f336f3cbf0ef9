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

// Package hftokenizer exposes HuggingFace tokenizers as line transforms.
// It links the tokenizers Rust library through CGO.
package hftokenizer

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/daulet/tokenizers"
	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"
)

// tokenizersCacheSize is the size of the LRU cache for tokenizers.
// 1 tokenizer per model.
const tokenizersCacheSize = 20

// Config holds the configuration for the HuggingFace tokenizer.
type Config struct {
	HuggingFaceToken   string `json:"huggingFaceToken"`
	TokenizersCacheDir string `json:"tokenizersCacheDir"` // Directory for caching tokenizers
}

// DefaultConfig returns a default configuration for the HuggingFace
// tokenizer.
func DefaultConfig() *Config {
	return &Config{
		HuggingFaceToken:   os.Getenv("HF_TOKEN"),
		TokenizersCacheDir: defaultCacheDir(),
	}
}

// CachedTokenizer splits text into subword tokens using bindings to
// HuggingFace's rust tokenizer. Loaded per-model tokenizers are held in an
// LRU cache; concurrent loads of one model are collapsed.
type CachedTokenizer struct {
	opts  []tokenizers.TokenizerConfigOption
	cache *lru.Cache[string, *tokenizers.Tokenizer]
	group singleflight.Group
}

// NewCachedTokenizer creates a new CachedTokenizer with the provided
// configuration.
func NewCachedTokenizer(config *Config) (*CachedTokenizer, error) {
	if config == nil {
		config = DefaultConfig()
	}

	var opts []tokenizers.TokenizerConfigOption
	if config.TokenizersCacheDir != "" {
		opts = append(opts, tokenizers.WithCacheDir(config.TokenizersCacheDir))
	}
	if config.HuggingFaceToken != "" {
		opts = append(opts, tokenizers.WithAuthToken(config.HuggingFaceToken))
	}

	tokenizersCache, err := lru.New[string, *tokenizers.Tokenizer](tokenizersCacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize tokenizer cache: %w", err)
	}

	return &CachedTokenizer{
		opts:  opts,
		cache: tokenizersCache,
	}, nil
}

func (t *CachedTokenizer) getTokenizer(modelName string) (*tokenizers.Tokenizer, error) {
	tokenizer, ok := t.cache.Get(modelName)
	if !ok {
		result, err, shared := t.group.Do(modelName, func() (any, error) {
			return tokenizers.FromPretrained(modelName, t.opts...)
		})
		if err != nil {
			return nil, err
		}

		tokenizer, ok = result.(*tokenizers.Tokenizer)
		if !ok {
			return nil, fmt.Errorf("unexpected tokenizer type from singleflight result")
		}

		if !shared {
			// Only add to cache if this goroutine actually loaded the tokenizer
			t.cache.Add(modelName, tokenizer)
		}
	}
	return tokenizer, nil
}

// Tokenize splits input into the subword tokens of modelName, without
// special tokens.
func (t *CachedTokenizer) Tokenize(input, modelName string) ([]string, error) {
	tokenizer, err := t.getTokenizer(modelName)
	if err != nil {
		return nil, fmt.Errorf("failed to get tokenizer for model %q: %w", modelName, err)
	}

	resp := tokenizer.EncodeWithOptions(input, false, tokenizers.WithReturnTokens())
	return resp.Tokens, nil
}

// defaultCacheDir returns the tokenizers directory of the user cache.
func defaultCacheDir() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "textcorpus", "tokenizers")
}
