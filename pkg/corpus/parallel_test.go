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

package corpus_test

import (
	"iter"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llm-d/llm-d-text-corpus/pkg/corpus"
	"github.com/llm-d/llm-d-text-corpus/pkg/stream"
	"github.com/llm-d/llm-d-text-corpus/pkg/vocab"
)

func parallelVocabs(t *testing.T) []vocab.Vocabulary {
	t.Helper()
	src, err := vocab.NewWordVocabulary([]string{"the", "cat", "sat"}, nil)
	require.NoError(t, err)
	tgt, err := vocab.NewWordVocabulary([]string{"die", "katze", "sass"}, nil)
	require.NoError(t, err)
	return []vocab.Vocabulary{src, tgt}
}

func sampleTuples() iter.Seq2[[][]string, error] {
	return stream.TokenizeParallel([]stream.Lines{
		stream.FromSlice([]string{"the cat", "sat", "the cat sat"}),
		stream.FromSlice([]string{"die katze", "sass", "die katze sass"}),
	}, 0)
}

func mustNotPullTuples(t *testing.T) iter.Seq2[[][]string, error] {
	t.Helper()
	return func(func([][]string, error) bool) {
		t.Error("tuple stream was pulled")
	}
}

func TestBuildParallel(t *testing.T) {
	cfg := newConfig(t)
	p, err := corpus.BuildParallel(t.Context(), sampleTuples(), parallelVocabs(t), cfg)
	require.NoError(t, err)
	defer p.Close()

	assert.Equal(t, 3, p.Len())
	assert.Equal(t, 2, p.NumStreams())
	for k := range p.NumStreams() {
		assert.True(t, corpus.Exists(corpus.StreamPrefix(cfg.OutputPath, k)))
		assert.Equal(t, p.Len(), p.Store(k).Len())
	}

	lines, err := p.Lines(2)
	require.NoError(t, err)
	assert.Equal(t, []string{"the cat sat", "die katze sass"}, lines)

	ids, err := p.IDs(1)
	require.NoError(t, err)
	assert.Len(t, ids, 2)
	assert.Len(t, ids[0], 1)

	_, err = p.Lines(3)
	require.ErrorIs(t, err, corpus.ErrOutOfRange)
}

func TestBuildParallelReuse(t *testing.T) {
	cfg := newConfig(t)
	built, err := corpus.BuildParallel(t.Context(), sampleTuples(), parallelVocabs(t), cfg)
	require.NoError(t, err)
	require.NoError(t, built.Close())

	reused, err := corpus.BuildParallel(t.Context(), mustNotPullTuples(t), parallelVocabs(t), cfg)
	require.NoError(t, err)
	defer reused.Close()

	lines, err := reused.Lines(0)
	require.NoError(t, err)
	assert.Equal(t, []string{"the cat", "die katze"}, lines)
}

func TestBuildParallelRebuildsMissingStream(t *testing.T) {
	cfg := newConfig(t)
	built, err := corpus.BuildParallel(t.Context(), sampleTuples(), parallelVocabs(t), cfg)
	require.NoError(t, err)
	require.NoError(t, built.Close())

	require.NoError(t, os.Remove(corpus.LengthsPath(corpus.StreamPrefix(cfg.OutputPath, 1))))

	rebuilt, err := corpus.BuildParallel(t.Context(), sampleTuples(), parallelVocabs(t), cfg)
	require.NoError(t, err)
	defer rebuilt.Close()

	assert.Equal(t, 3, rebuilt.Len())
	lines, err := rebuilt.Lines(1)
	require.NoError(t, err)
	assert.Equal(t, []string{"sat", "sass"}, lines)
}

func TestBuildParallelStaleStream(t *testing.T) {
	cfg := newConfig(t)
	built, err := corpus.BuildParallel(t.Context(), sampleTuples(), parallelVocabs(t), cfg)
	require.NoError(t, err)
	require.NoError(t, built.Close())

	// replace stream 1 with a shorter store
	streamCfg := *cfg
	streamCfg.OutputPath = corpus.StreamPrefix(cfg.OutputPath, 1)
	short, err := corpus.Build(t.Context(), tokenLines([]string{"sass"}), parallelVocabs(t)[1], &streamCfg)
	require.NoError(t, err)
	require.NoError(t, short.Close())

	_, err = corpus.BuildParallel(t.Context(), mustNotPullTuples(t), parallelVocabs(t), cfg)
	require.ErrorIs(t, err, corpus.ErrIntegrity)
}

func TestBuildParallelArityMismatch(t *testing.T) {
	tuples := func(yield func([][]string, error) bool) {
		if !yield([][]string{{"the"}, {"die"}}, nil) {
			return
		}
		yield([][]string{{"the"}, {"die"}, {"le"}}, nil)
	}

	_, err := corpus.BuildParallel(t.Context(), tuples, parallelVocabs(t), newConfig(t))
	require.ErrorIs(t, err, corpus.ErrConfiguration)
}

func TestBuildParallelUnaligned(t *testing.T) {
	cfg := newConfig(t)
	tuples := stream.TokenizeParallel([]stream.Lines{
		stream.FromSlice([]string{"the cat", "sat"}),
		stream.FromSlice([]string{"die katze"}),
	}, 0)

	_, err := corpus.BuildParallel(t.Context(), tuples, parallelVocabs(t), cfg)
	require.ErrorIs(t, err, stream.ErrUnaligned)

	for k := range 2 {
		assert.False(t, corpus.Exists(corpus.StreamPrefix(cfg.OutputPath, k)))
	}
	entries, err := os.ReadDir(filepath.Dir(cfg.OutputPath))
	require.NoError(t, err)
	assert.Empty(t, entries, "aborted builds leave no temporary files")
}

func TestBuildParallelNoStreams(t *testing.T) {
	_, err := corpus.BuildParallel(t.Context(), sampleTuples(), nil, newConfig(t))
	require.ErrorIs(t, err, corpus.ErrConfiguration)
}
