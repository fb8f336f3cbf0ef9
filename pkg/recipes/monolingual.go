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

	"github.com/llm-d/llm-d-text-corpus/pkg/corpus"
	"github.com/llm-d/llm-d-text-corpus/pkg/stream"
	"github.com/llm-d/llm-d-text-corpus/pkg/textproc"
	"github.com/llm-d/llm-d-text-corpus/pkg/utils/logging"
	"github.com/llm-d/llm-d-text-corpus/pkg/vocab"
)

// Monolingual builds vocabularies and token stores of one language from
// text files run through a line pipeline.
type Monolingual struct {
	config   *Config
	pipeline *textproc.Pipeline
}

// NewMonolingualWordLevel creates a word-level recipe: the pipeline holds
// the configured normalization steps and no char-level segmentation.
func NewMonolingualWordLevel(ctx context.Context, config *Config) (*Monolingual, error) {
	config = config.withDefaults()
	pre := *config.PreprocessConfig
	pre.CharLevel = false
	config.PreprocessConfig = &pre

	return newMonolingual(ctx, config)
}

// NewMonolingualCharLevel creates a character-level recipe: the configured
// normalization steps followed by char-level segmentation.
func NewMonolingualCharLevel(ctx context.Context, config *Config) (*Monolingual, error) {
	config = config.withDefaults()
	pre := *config.PreprocessConfig
	pre.CharLevel = true
	config.PreprocessConfig = &pre

	return newMonolingual(ctx, config)
}

func newMonolingual(ctx context.Context, config *Config) (*Monolingual, error) {
	pipeline, err := NewPipeline(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create pipeline: %w", err)
	}

	return &Monolingual{
		config:   config,
		pipeline: pipeline,
	}, nil
}

// Pipeline returns the line pipeline of the recipe.
func (m *Monolingual) Pipeline() *textproc.Pipeline {
	return m.pipeline
}

// Pre returns lines preprocessed by the pipeline.
func (m *Monolingual) Pre(ctx context.Context, lines stream.Lines) stream.Lines {
	return stream.Preprocess(ctx, m.pipeline, lines)
}

// Post returns lines postprocessed by the pipeline.
func (m *Monolingual) Post(ctx context.Context, lines stream.Lines) stream.Lines {
	return stream.Postprocess(ctx, m.pipeline, lines)
}

// MakeVocabulary builds a vocabulary from the preprocessed lines of files.
func (m *Monolingual) MakeVocabulary(ctx context.Context, files []string) (*vocab.WordVocabulary, error) {
	klog.FromContext(ctx).V(logging.DEBUG).WithName("recipes.MakeVocabulary").Info(
		"building vocabulary", "files", files)

	return vocab.FromLines(ctx, m.Pre(ctx, stream.ReadLines(files...)), m.config.VocabOptions)
}

// MakeCorpus builds or reuses the token store of the preprocessed lines of
// files. The files are not read when the store is reused.
func (m *Monolingual) MakeCorpus(ctx context.Context, files []string, v vocab.Vocabulary) (*corpus.Store, error) {
	klog.FromContext(ctx).V(logging.DEBUG).WithName("recipes.MakeCorpus").Info(
		"making corpus", "files", files, "path", m.config.CorpusConfig.OutputPath)

	lines := stream.Tokenize(m.Pre(ctx, stream.ReadLines(files...)), m.config.MaxLength)
	return corpus.BuildOrReuse(ctx, lines, v, m.config.CorpusConfig)
}
