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
	"errors"
	"fmt"
	"iter"
	"strconv"

	"k8s.io/klog/v2"

	"github.com/llm-d/llm-d-text-corpus/pkg/stream"
	"github.com/llm-d/llm-d-text-corpus/pkg/utils/logging"
	"github.com/llm-d/llm-d-text-corpus/pkg/vocab"
)

// ParallelStore holds N aligned stores: line i of every stream is the i-th
// member of the same tuple.
type ParallelStore struct {
	stores []*Store
}

// StreamPrefix returns the path prefix of stream k of the parallel store
// under prefix.
func StreamPrefix(prefix string, k int) string {
	return prefix + strconv.Itoa(k)
}

// BuildParallel builds or reuses one store per vocabulary from a stream of
// tuples, stream k under prefix cfg.OutputPath followed by k. Each stream is
// reused on its own when cfg.Reuse is set and its files exist. The streams
// to build read the tuples through one broadcaster and are built in
// lockstep, so the tuple stream is consumed once.
//
// A tuple with a number of members other than len(vocabs) fails with
// ErrConfiguration; streams of different lengths fail with ErrIntegrity.
func BuildParallel(ctx context.Context, tuples iter.Seq2[[][]string, error], vocabs []vocab.Vocabulary,
	cfg *Config,
) (*ParallelStore, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	n := len(vocabs)
	if n == 0 {
		return nil, fmt.Errorf("%w: no streams", ErrConfiguration)
	}

	logger := klog.FromContext(ctx).WithName("corpus.BuildParallel").WithValues("path", cfg.OutputPath)
	p := &ParallelStore{stores: make([]*Store, n)}

	var pending []int
	for k := range n {
		prefix := StreamPrefix(cfg.OutputPath, k)
		if !cfg.Reuse || !Exists(prefix) {
			pending = append(pending, k)
			continue
		}

		logger.V(logging.DEBUG).Info("reusing stream", "stream", k)
		s, err := Load(ctx, prefix, vocabs[k])
		if err != nil {
			_ = p.Close()
			return nil, fmt.Errorf("failed to load stream %d: %w", k, err)
		}
		p.stores[k] = s
	}

	if len(pending) > 0 {
		if err := p.build(ctx, checkArity(tuples, n), vocabs, cfg, pending); err != nil {
			_ = p.Close()
			return nil, err
		}
	}

	for k, s := range p.stores[1:] {
		if s.Len() != p.stores[0].Len() {
			err := fmt.Errorf("%w: stream %d has %d lines, stream 0 has %d",
				ErrIntegrity, k+1, s.Len(), p.stores[0].Len())
			_ = p.Close()
			return nil, err
		}
	}

	return p, nil
}

// build fills the pending streams from per-stream views of a broadcast of
// tuples, one line per stream at a time.
func (p *ParallelStore) build(ctx context.Context, tuples iter.Seq2[[][]string, error],
	vocabs []vocab.Vocabulary, cfg *Config, pending []int,
) error {
	fanout := stream.NewFanout(tuples, len(pending))
	defer fanout.Close()

	builders := make([]*Builder, len(pending))
	nexts := make([]func() ([]string, error, bool), len(pending))
	abort := func() {
		for _, b := range builders {
			if b != nil {
				b.Abort()
			}
		}
	}

	for j, k := range pending {
		streamCfg := *cfg
		streamCfg.OutputPath = StreamPrefix(cfg.OutputPath, k)
		b, err := NewBuilder(ctx, &streamCfg, vocabs[k])
		if err != nil {
			abort()
			return fmt.Errorf("failed to start stream %d: %w", k, err)
		}
		builders[j] = b

		next, stop := iter.Pull2(stream.View(fanout.Cursor(j).Seq(), k))
		defer stop()
		nexts[j] = next
	}

	for line := 0; ; line++ {
		if line%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				abort()
				return err
			}
		}

		ended := 0
		for j, next := range nexts {
			tokens, err, ok := next()
			if !ok {
				ended++
				continue
			}
			if err != nil {
				abort()
				return fmt.Errorf("failed to read tuple %d: %w", line, err)
			}
			if err := builders[j].Append(tokens); err != nil {
				abort()
				return fmt.Errorf("stream %d: %w", pending[j], err)
			}
		}

		if ended == len(nexts) {
			break
		}
		if ended > 0 {
			abort()
			return fmt.Errorf("%w: streams ended at different tuples", ErrIntegrity)
		}
	}

	for j, b := range builders {
		s, err := b.Finish()
		if err != nil {
			abort()
			return fmt.Errorf("failed to finish stream %d: %w", pending[j], err)
		}
		p.stores[pending[j]] = s
	}
	return nil
}

// checkArity fails tuples that do not have n members.
func checkArity(tuples iter.Seq2[[][]string, error], n int) iter.Seq2[[][]string, error] {
	return func(yield func([][]string, error) bool) {
		i := 0
		for tuple, err := range tuples {
			if err != nil {
				yield(nil, err)
				return
			}
			if len(tuple) != n {
				yield(nil, fmt.Errorf("%w: tuple %d has %d members for %d streams",
					ErrConfiguration, i, len(tuple), n))
				return
			}
			if !yield(tuple, nil) {
				return
			}
			i++
		}
	}
}

// Len returns the number of aligned lines.
func (p *ParallelStore) Len() int {
	return p.stores[0].Len()
}

// NumStreams returns the number of streams.
func (p *ParallelStore) NumStreams() int {
	return len(p.stores)
}

// Store returns the store of stream k.
func (p *ParallelStore) Store(k int) *Store {
	return p.stores[k]
}

// IDs returns the ids of line i of every stream.
func (p *ParallelStore) IDs(i int) ([][]int64, error) {
	out := make([][]int64, len(p.stores))
	for k, s := range p.stores {
		ids, err := s.IDs(i)
		if err != nil {
			return nil, err
		}
		out[k] = ids
	}
	return out, nil
}

// Lines returns line i of every stream, decoded.
func (p *ParallelStore) Lines(i int) ([]string, error) {
	out := make([]string, len(p.stores))
	for k, s := range p.stores {
		line, err := s.Line(i)
		if err != nil {
			return nil, err
		}
		out[k] = line
	}
	return out, nil
}

// Close releases every stream.
func (p *ParallelStore) Close() error {
	var errs []error
	for _, s := range p.stores {
		if s != nil {
			errs = append(errs, s.Close())
		}
	}
	return errors.Join(errs...)
}
