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

package recipes_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llm-d/llm-d-text-corpus/pkg/corpus"
	"github.com/llm-d/llm-d-text-corpus/pkg/recipes"
	"github.com/llm-d/llm-d-text-corpus/pkg/stream"
	"github.com/llm-d/llm-d-text-corpus/pkg/textproc"
	"github.com/llm-d/llm-d-text-corpus/pkg/textproc/cache"
)

func writeFile(t *testing.T, name string, lines ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o600))
	return path
}

func newConfig(t *testing.T) *recipes.Config {
	t.Helper()
	cfg := recipes.DefaultConfig()
	cfg.CorpusConfig.OutputPath = filepath.Join(t.TempDir(), "train")
	return cfg
}

func TestLoadConfig(t *testing.T) {
	path := writeFile(t, "recipe.yaml", `
preprocessConfig:
  lang: de
  lowercase: true
corpusConfig:
  outputPath: /data/train
  idWidth: 4
maxLength: 50
boundConfig:
  maxLength: 10
  split: true
resegmentConfig:
  readN: 2
  lang: de
cacheConfig:
  inMemoryConfig:
    size: 100
`)

	cfg, err := recipes.LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "de", cfg.PreprocessConfig.Lang)
	assert.True(t, cfg.PreprocessConfig.Lowercase)
	assert.True(t, cfg.PreprocessConfig.NormalizeBlanks, "unset fields keep their default")
	assert.Equal(t, "@@", cfg.PreprocessConfig.Separator)
	assert.Equal(t, &corpus.Config{OutputPath: "/data/train", Reuse: true, IDWidth: 4}, cfg.CorpusConfig)
	assert.Equal(t, 50, cfg.MaxLength)
	assert.Equal(t, &stream.BoundConfig{MaxLength: 10, Split: true}, cfg.BoundConfig)
	assert.Equal(t, &stream.ResegmentConfig{ReadN: 2, Lang: "de"}, cfg.ResegmentConfig)
	require.NotNil(t, cfg.CacheConfig)
	assert.Equal(t, 100, cfg.CacheConfig.InMemoryConfig.Size)

	_, err = recipes.LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestPreprocessConfigValidate(t *testing.T) {
	pre := recipes.DefaultPreprocessConfig()
	require.NoError(t, pre.Validate())

	pre.CharLevel = true
	pre.BPECodes = "codes"
	require.ErrorIs(t, pre.Validate(), recipes.ErrConfiguration)

	pre = recipes.DefaultPreprocessConfig()
	pre.Lang = ""
	require.ErrorIs(t, pre.Validate(), recipes.ErrConfiguration)

	pre = recipes.DefaultPreprocessConfig()
	pre.CharLevel = true
	pre.Separator = ""
	require.ErrorIs(t, pre.Validate(), recipes.ErrConfiguration)
}

func TestNewPipelineOrder(t *testing.T) {
	cfg := recipes.DefaultConfig()
	cfg.PreprocessConfig.Tokenize = true
	cfg.PreprocessConfig.Lowercase = true
	cfg.PreprocessConfig.Recase = true

	p, err := recipes.NewPipeline(t.Context(), cfg)
	require.NoError(t, err)
	require.Len(t, p.Steps(), 4)

	pre, err := p.Pre(t.Context(), "Hello,  World!")
	require.NoError(t, err)
	assert.Equal(t, "hello , world !", pre)

	post, err := p.Post(t.Context(), pre)
	require.NoError(t, err)
	assert.Equal(t, "Hello, world!", post)
}

func TestNewPipelineErrors(t *testing.T) {
	cfg := recipes.DefaultConfig()
	cfg.PreprocessConfig.Lowercase = true
	cfg.PreprocessConfig.Lang = "!!"
	_, err := recipes.NewPipeline(t.Context(), cfg)
	require.ErrorIs(t, err, recipes.ErrConfiguration)

	cfg = recipes.DefaultConfig()
	cfg.PreprocessConfig.TruecaseModel = filepath.Join(t.TempDir(), "missing")
	_, err = recipes.NewPipeline(t.Context(), cfg)
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestNewPipelineCachesSegmentation(t *testing.T) {
	codes := writeFile(t, "bpe_codes.en", "#version: 0.2", "l o", "lo w", "e r</w>")
	cfg := recipes.DefaultConfig()
	cfg.PreprocessConfig.BPECodes = codes
	cfg.CacheConfig = cache.DefaultConfig()

	p, err := recipes.NewPipeline(t.Context(), cfg)
	require.NoError(t, err)

	steps := p.Steps()
	require.Len(t, steps, 2)
	assert.IsType(t, textproc.BlankNormalizer{}, steps[0])
	assert.IsType(t, &cache.CachedTransform{}, steps[1])

	for range 2 {
		pre, err := p.Pre(t.Context(), "lower")
		require.NoError(t, err)
		assert.Equal(t, "low@@ er", pre)
	}

	post, err := p.Post(t.Context(), "low@@ er")
	require.NoError(t, err)
	assert.Equal(t, "lower", post)
}

func TestMonolingualWordLevel(t *testing.T) {
	cfg := newConfig(t)
	cfg.PreprocessConfig.Lowercase = true
	cfg.PreprocessConfig.CharLevel = true

	m, err := recipes.NewMonolingualWordLevel(t.Context(), cfg)
	require.NoError(t, err)
	assert.Len(t, m.Pipeline().Steps(), 2, "word level ignores char-level segmentation")

	input := writeFile(t, "train.en", "The  cat", "the dog")
	v, err := m.MakeVocabulary(t.Context(), []string{input})
	require.NoError(t, err)
	assert.Equal(t, int64(2), v.Count("the"))
	assert.Less(t, v.ID("the"), v.ID("cat"))
	assert.Less(t, v.ID("cat"), v.ID("dog"))

	s, err := m.MakeCorpus(t.Context(), []string{input}, v)
	require.NoError(t, err)
	assert.Equal(t, 2, s.Len())
	line, err := s.Line(0)
	require.NoError(t, err)
	assert.Equal(t, "the cat", line)
	require.NoError(t, s.Close())

	// a reused corpus does not read its input
	require.NoError(t, os.Remove(input))
	reused, err := m.MakeCorpus(t.Context(), []string{input}, v)
	require.NoError(t, err)
	defer reused.Close()
	assert.Equal(t, 2, reused.Len())
}

func TestMonolingualMaxLength(t *testing.T) {
	cfg := newConfig(t)
	cfg.MaxLength = 2

	m, err := recipes.NewMonolingualWordLevel(t.Context(), cfg)
	require.NoError(t, err)

	input := writeFile(t, "train.en", "a b", "a b c", "c")
	v, err := m.MakeVocabulary(t.Context(), []string{input})
	require.NoError(t, err)

	s, err := m.MakeCorpus(t.Context(), []string{input}, v)
	require.NoError(t, err)
	defer s.Close()

	assert.Equal(t, 2, s.Len())
	line, err := s.Line(1)
	require.NoError(t, err)
	assert.Equal(t, "c", line)
}

func TestMonolingualCharLevel(t *testing.T) {
	m, err := recipes.NewMonolingualCharLevel(t.Context(), newConfig(t))
	require.NoError(t, err)

	input := writeFile(t, "train.en", "ab cd")
	v, err := m.MakeVocabulary(t.Context(), []string{input})
	require.NoError(t, err)
	for _, tok := range []string{"a", "b", "@@", "c", "d"} {
		assert.NotEqual(t, v.UnknownID(), v.ID(tok), tok)
	}

	s, err := m.MakeCorpus(t.Context(), []string{input}, v)
	require.NoError(t, err)
	defer s.Close()

	line, err := s.Line(0)
	require.NoError(t, err)
	assert.Equal(t, "a b @@ c d", line)

	restored, err := stream.Collect(m.Post(t.Context(), stream.FromSlice([]string{line})))
	require.NoError(t, err)
	assert.Equal(t, []string{"ab cd"}, restored)
}

func TestBilingualWordLevel(t *testing.T) {
	srcCfg := newConfig(t)
	srcCfg.PreprocessConfig.Lowercase = true
	srcCfg.MaxLength = 1
	tgtCfg := recipes.DefaultConfig()
	tgtCfg.PreprocessConfig.Lang = "de"
	tgtCfg.PreprocessConfig.Lowercase = true

	b, err := recipes.NewBilingualWordLevel(t.Context(), srcCfg, tgtCfg)
	require.NoError(t, err)

	srcFile := writeFile(t, "train.en", "Hi", "Good morning", "Bye")
	tgtFile := writeFile(t, "train.de", "Hallo", "Guten Morgen", "Tschüss")

	srcVocab, err := b.Source().MakeVocabulary(t.Context(), []string{srcFile})
	require.NoError(t, err)
	tgtVocab, err := b.Target().MakeVocabulary(t.Context(), []string{tgtFile})
	require.NoError(t, err)

	p, err := b.MakeCorpus(t.Context(), []string{srcFile}, []string{tgtFile}, srcVocab, tgtVocab)
	require.NoError(t, err)
	defer p.Close()

	require.Equal(t, 2, p.Len())
	lines, err := p.Lines(1)
	require.NoError(t, err)
	assert.Equal(t, []string{"bye", "tschüss"}, lines)
}

func TestBilingualUnaligned(t *testing.T) {
	b, err := recipes.NewBilingualWordLevel(t.Context(), newConfig(t), recipes.DefaultConfig())
	require.NoError(t, err)

	srcFile := writeFile(t, "train.en", "a", "b")
	tgtFile := writeFile(t, "train.de", "a")
	v, err := b.Source().MakeVocabulary(t.Context(), []string{srcFile})
	require.NoError(t, err)

	_, err = b.MakeCorpus(t.Context(), []string{srcFile}, []string{tgtFile}, v, v)
	require.ErrorIs(t, err, stream.ErrUnaligned)
}
