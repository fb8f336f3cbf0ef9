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
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/go-logr/logr"
	"k8s.io/klog/v2"

	"github.com/llm-d/llm-d-text-corpus/pkg/metrics"
	"github.com/llm-d/llm-d-text-corpus/pkg/utils/logging"
	"github.com/llm-d/llm-d-text-corpus/pkg/vocab"
)

// progressInterval is the number of lines between progress log entries.
const progressInterval = 100_000

// Builder writes a store line by line. The ids go to a temporary file that
// replaces the id file on Finish, after which the lengths file is written.
// A Builder must end with Finish or Abort.
type Builder struct {
	cfg     Config
	vocab   vocab.Vocabulary
	logger  logr.Logger
	tmp     *os.File
	w       *bufio.Writer
	buf     []byte
	lengths []int64
	tokens  int64
	done    bool
}

// NewBuilder starts a store under cfg.OutputPath, invalidating any store
// already there.
func NewBuilder(ctx context.Context, cfg *Config, v vocab.Vocabulary) (*Builder, error) {
	if cfg == nil {
		return nil, fmt.Errorf("%w: nil config", ErrConfiguration)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if v == nil {
		return nil, fmt.Errorf("%w: nil vocabulary", ErrConfiguration)
	}

	prefix := cfg.OutputPath
	dir := filepath.Dir(prefix)
	if err := os.MkdirAll(dir, 0o755); err != nil { //nolint:gosec // corpus output directory
		return nil, fmt.Errorf("failed to create %s: %w", dir, err)
	}
	// without its lengths file an old store is no longer complete
	if err := os.Remove(LengthsPath(prefix)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to invalidate %s: %w", LengthsPath(prefix), err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(IDsPath(prefix))+".tmp-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temporary id file: %w", err)
	}

	logger := klog.FromContext(ctx).WithName("corpus.Builder").WithValues("path", prefix)
	logger.V(logging.DEBUG).Info("building token store", "width", cfg.IDWidth)

	return &Builder{
		cfg:    *cfg,
		vocab:  v,
		logger: logger,
		tmp:    tmp,
		w:      bufio.NewWriter(tmp),
		buf:    make([]byte, cfg.IDWidth),
	}, nil
}

// Append adds one line. Its length is recorded before the tokens are mapped
// to ids through the vocabulary.
func (b *Builder) Append(tokens []string) error {
	if b.done {
		return fmt.Errorf("append to finished builder of %s", b.cfg.OutputPath)
	}

	if err := checkWidth(int64(len(tokens)), b.cfg.IDWidth); err != nil {
		return fmt.Errorf("line %d length: %w", len(b.lengths), err)
	}

	b.lengths = append(b.lengths, int64(len(tokens)))
	for _, token := range tokens {
		if err := putID(b.buf, b.vocab.ID(token), b.cfg.IDWidth); err != nil {
			return fmt.Errorf("line %d, token %q: %w", len(b.lengths)-1, token, err)
		}
		if _, err := b.w.Write(b.buf); err != nil {
			return fmt.Errorf("failed to write ids: %w", err)
		}
	}
	b.tokens += int64(len(tokens))

	metrics.LinesBuilt.Inc()
	metrics.TokensBuilt.Add(float64(len(tokens)))
	if len(b.lengths)%progressInterval == 0 {
		b.logger.V(logging.DEBUG).Info("build progress", "lines", len(b.lengths), "tokens", b.tokens)
	}
	return nil
}

// Len returns the number of lines appended so far.
func (b *Builder) Len() int {
	return len(b.lengths)
}

// Finish commits the store files and opens the store.
func (b *Builder) Finish() (*Store, error) {
	if b.done {
		return nil, fmt.Errorf("builder of %s already finished", b.cfg.OutputPath)
	}
	b.done = true

	prefix := b.cfg.OutputPath
	if err := commitTemp(b.tmp, b.w, IDsPath(prefix)); err != nil {
		return nil, err
	}
	if err := writeLengths(LengthsPath(prefix), b.cfg.IDWidth, b.lengths); err != nil {
		return nil, err
	}

	s, err := openStore(prefix, b.vocab, b.cfg.IDWidth, b.lengths)
	if err != nil {
		return nil, err
	}

	b.logger.V(logging.DEBUG).Info("built token store", "lines", s.Len(), "tokens", s.NumTokens(),
		"size", humanize.IBytes(uint64(s.NumTokens())*uint64(b.cfg.IDWidth))) // #nosec G115
	return s, nil
}

// Abort discards the ids written so far. The store is left incomplete.
func (b *Builder) Abort() {
	if b.done {
		return
	}
	b.done = true

	_ = b.tmp.Close()
	_ = os.Remove(b.tmp.Name())
	b.logger.V(logging.DEBUG).Info("aborted token store build", "lines", len(b.lengths))
}
