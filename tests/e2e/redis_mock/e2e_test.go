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

//nolint:testpackage // allow tests to run in the same package
package e2e

import (
	"os"

	"github.com/llm-d/llm-d-text-corpus/pkg/recipes"
	"github.com/llm-d/llm-d-text-corpus/pkg/stream"
)

// TestMonolingualRoundTrip builds a BPE corpus and restores its lines.
func (s *CorpusSuite) TestMonolingualRoundTrip() {
	input := s.writeLines("train.en", "the lower tower", "a newer lower")

	m, err := recipes.NewMonolingualWordLevel(s.ctx, s.config)
	s.Require().NoError(err)

	v, err := m.MakeVocabulary(s.ctx, []string{input})
	s.Require().NoError(err)
	s.NotEqual(v.UnknownID(), v.ID("low@@"))

	store, err := m.MakeCorpus(s.ctx, []string{input}, v)
	s.Require().NoError(err)
	defer store.Close()
	s.Require().Equal(2, store.Len())

	stored := make([]string, store.Len())
	for i := range stored {
		stored[i], err = store.Line(i)
		s.Require().NoError(err)
	}
	s.Equal("t@@ h@@ e low@@ er t@@ o@@ w@@ er", stored[0])

	restored, err := stream.Collect(m.Post(s.ctx, stream.FromSlice(stored)))
	s.Require().NoError(err)
	s.Equal([]string{"the lower tower", "a newer lower"}, restored)

	s.NotEmpty(s.cachedKeys(), "segmentations are cached in Redis")
}

// TestCacheSharedBetweenRecipes checks that a second recipe reads the
// results the first one stored.
func (s *CorpusSuite) TestCacheSharedBetweenRecipes() {
	first, err := recipes.NewMonolingualWordLevel(s.ctx, s.config)
	s.Require().NoError(err)

	pre, err := first.Pipeline().Pre(s.ctx, "lower")
	s.Require().NoError(err)
	s.Equal("low@@ er", pre)

	keys := s.cachedKeys()
	s.Require().Len(keys, 1)
	s.Require().NoError(s.server.Set(keys[0], "from redis"))

	second, err := recipes.NewMonolingualWordLevel(s.ctx, s.config)
	s.Require().NoError(err)

	pre, err = second.Pipeline().Pre(s.ctx, "lower")
	s.Require().NoError(err)
	s.Equal("from redis", pre)
}

// TestCacheOutageFallsBack checks that a lost Redis server does not fail
// the pipeline.
func (s *CorpusSuite) TestCacheOutageFallsBack() {
	m, err := recipes.NewMonolingualWordLevel(s.ctx, s.config)
	s.Require().NoError(err)

	s.server.Close()

	pre, err := m.Pipeline().Pre(s.ctx, "newer")
	s.Require().NoError(err)
	s.Equal("newer", pre)
}

// TestProcessorRestoresSplitLines runs lines through segmentation and a
// split bound and back.
func (s *CorpusSuite) TestProcessorRestoresSplitLines() {
	s.config.BoundConfig = &stream.BoundConfig{MaxLength: 2, Split: true}
	p, err := recipes.NewProcessor(s.ctx, s.config)
	s.Require().NoError(err)

	input := []string{"the lower tower", "new", "a newer lower"}
	processed, ledger := p.Process(s.ctx, stream.FromSlice(input))

	restored, err := stream.Collect(p.Restore(s.ctx, processed, ledger))
	s.Require().NoError(err)
	s.Equal(input, restored)
	s.Zero(ledger.Pending())
}

// TestBilingualReuse builds a parallel corpus, then reuses it without its
// input files.
func (s *CorpusSuite) TestBilingualReuse() {
	srcFile := s.writeLines("train.en", "the lower tower", "a newer lower")
	tgtFile := s.writeLines("train.de", "der untere turm", "ein neuerer unterer")

	tgtConfig := recipes.DefaultConfig()
	tgtConfig.PreprocessConfig.Lang = "de"

	b, err := recipes.NewBilingualWordLevel(s.ctx, s.config, tgtConfig)
	s.Require().NoError(err)

	srcVocab, err := b.Source().MakeVocabulary(s.ctx, []string{srcFile})
	s.Require().NoError(err)
	tgtVocab, err := b.Target().MakeVocabulary(s.ctx, []string{tgtFile})
	s.Require().NoError(err)

	built, err := b.MakeCorpus(s.ctx, []string{srcFile}, []string{tgtFile}, srcVocab, tgtVocab)
	s.Require().NoError(err)
	s.Require().NoError(built.Close())

	s.Require().NoError(os.Remove(srcFile))
	s.Require().NoError(os.Remove(tgtFile))

	reused, err := b.MakeCorpus(s.ctx, []string{srcFile}, []string{tgtFile}, srcVocab, tgtVocab)
	s.Require().NoError(err)
	defer reused.Close()

	s.Equal(2, reused.Len())
	lines, err := reused.Lines(1)
	s.Require().NoError(err)
	s.Equal([]string{"a newer low@@ er", "ein neuerer unterer"}, lines)
}
