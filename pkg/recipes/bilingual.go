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

	"github.com/llm-d/llm-d-text-corpus/pkg/corpus"
	"github.com/llm-d/llm-d-text-corpus/pkg/stream"
	"github.com/llm-d/llm-d-text-corpus/pkg/vocab"
)

// Bilingual builds aligned source and target corpora from pairs of files.
type Bilingual struct {
	source *Monolingual
	target *Monolingual
}

// NewBilingualWordLevel creates a bilingual recipe from the word-level
// configurations of each side. The corpus settings of source apply to the
// parallel store.
func NewBilingualWordLevel(ctx context.Context, source, target *Config) (*Bilingual, error) {
	src, err := NewMonolingualWordLevel(ctx, source)
	if err != nil {
		return nil, fmt.Errorf("source: %w", err)
	}
	tgt, err := NewMonolingualWordLevel(ctx, target)
	if err != nil {
		return nil, fmt.Errorf("target: %w", err)
	}

	return &Bilingual{
		source: src,
		target: tgt,
	}, nil
}

// Source returns the recipe of the source side.
func (b *Bilingual) Source() *Monolingual {
	return b.source
}

// Target returns the recipe of the target side.
func (b *Bilingual) Target() *Monolingual {
	return b.target
}

// MakeCorpus builds or reuses the parallel store of the preprocessed line
// pairs of srcFiles and tgtFiles. A pair is left out when either side is
// longer than MaxLength.
func (b *Bilingual) MakeCorpus(ctx context.Context, srcFiles, tgtFiles []string,
	srcVocab, tgtVocab vocab.Vocabulary,
) (*corpus.ParallelStore, error) {
	tuples := stream.TokenizeParallel([]stream.Lines{
		b.source.Pre(ctx, stream.ReadLines(srcFiles...)),
		b.target.Pre(ctx, stream.ReadLines(tgtFiles...)),
	}, b.source.config.MaxLength)

	return corpus.BuildParallel(ctx, tuples, []vocab.Vocabulary{srcVocab, tgtVocab}, b.source.config.CorpusConfig)
}
