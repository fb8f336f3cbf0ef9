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

package vocab

import (
	"context"
	"fmt"
	"iter"
	"sort"
	"strings"

	"k8s.io/klog/v2"

	"github.com/llm-d/llm-d-text-corpus/pkg/utils/logging"
)

// BuildOptions controls vocabulary construction from raw lines.
type BuildOptions struct {
	// MinCount drops tokens seen fewer times than this.
	MinCount int64 `json:"minCount"`
	// MaxSize bounds the number of non-reserved entries. Zero or negative means
	// no bound.
	MaxSize int `json:"maxSize"`
}

// DefaultBuildOptions returns options keeping every token seen at least once.
func DefaultBuildOptions() *BuildOptions {
	return &BuildOptions{
		MinCount: 1,
		MaxSize:  0,
	}
}

// Counter accumulates token frequencies.
type Counter struct {
	counts map[string]int64
}

// NewCounter creates an empty Counter.
func NewCounter() *Counter {
	return &Counter{counts: make(map[string]int64)}
}

// AddLine counts the whitespace-delimited tokens of line.
func (c *Counter) AddLine(line string) {
	for _, tok := range strings.Fields(line) {
		c.counts[tok]++
	}
}

// Vocabulary freezes the counts into a WordVocabulary ordered by decreasing
// frequency, ties broken lexicographically.
func (c *Counter) Vocabulary(opts *BuildOptions) (*WordVocabulary, error) {
	if opts == nil {
		opts = DefaultBuildOptions()
	}

	tokens := make([]string, 0, len(c.counts))
	for tok, n := range c.counts {
		if n >= opts.MinCount && !IsSpecial(tok) {
			tokens = append(tokens, tok)
		}
	}
	sort.Slice(tokens, func(i, j int) bool {
		ci, cj := c.counts[tokens[i]], c.counts[tokens[j]]
		if ci != cj {
			return ci > cj
		}
		return tokens[i] < tokens[j]
	})
	if opts.MaxSize > 0 && len(tokens) > opts.MaxSize {
		tokens = tokens[:opts.MaxSize]
	}

	counts := make([]int64, len(tokens))
	for i, tok := range tokens {
		counts[i] = c.counts[tok]
	}

	return NewWordVocabulary(tokens, counts)
}

// FromLines builds a WordVocabulary from a stream of lines.
// The stream is consumed once; its first error aborts the build.
func FromLines(ctx context.Context, lines iter.Seq2[string, error], opts *BuildOptions) (*WordVocabulary, error) {
	debugLogger := klog.FromContext(ctx).V(logging.DEBUG).WithName("vocab.FromLines")

	counter := NewCounter()
	nbLines := 0
	for line, err := range lines {
		if err != nil {
			return nil, fmt.Errorf("failed to read vocabulary input: %w", err)
		}
		counter.AddLine(line)
		nbLines++
	}

	v, err := counter.Vocabulary(opts)
	if err != nil {
		return nil, err
	}
	debugLogger.Info("built vocabulary", "lines", nbLines, "types", len(counter.counts), "size", v.Size())

	return v, nil
}
