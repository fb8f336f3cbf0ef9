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

	"github.com/llm-d/llm-d-text-corpus/pkg/stream"
	"github.com/llm-d/llm-d-text-corpus/pkg/textproc"
)

// Processor prepares raw text for a model and restores model output:
// Process resegments, preprocesses and bounds lines, and Restore rejoins
// and postprocesses them.
type Processor struct {
	resegmenter *stream.SentenceResegmenter
	pipeline    *textproc.Pipeline
	bounder     *stream.LengthBounder
}

// NewProcessor creates a Processor. Resegmentation runs only when
// ResegmentConfig is set.
func NewProcessor(ctx context.Context, config *Config) (*Processor, error) {
	config = config.withDefaults()

	pipeline, err := NewPipeline(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create pipeline: %w", err)
	}

	bounder, err := stream.NewLengthBounderFromConfig(config.BoundConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create length bounder: %w", err)
	}

	p := &Processor{
		pipeline: pipeline,
		bounder:  bounder,
	}

	if rc := config.ResegmentConfig; rc != nil {
		p.resegmenter, err = stream.NewSentenceResegmenter(textproc.NewRuleSplitter(rc.Lang), rc.ReadN)
		if err != nil {
			return nil, fmt.Errorf("failed to create sentence resegmenter: %w", err)
		}
	}

	return p, nil
}

// Pipeline returns the line pipeline of the processor.
func (p *Processor) Pipeline() *textproc.Pipeline {
	return p.pipeline
}

// Process returns the processed stream and the ledger Restore needs to
// rejoin split lines.
func (p *Processor) Process(ctx context.Context, lines stream.Lines) (stream.Lines, *stream.Ledger) {
	if p.resegmenter != nil {
		lines = p.resegmenter.Apply(ctx, lines)
	}
	return p.bounder.Pre(stream.Preprocess(ctx, p.pipeline, lines))
}

// Restore rejoins lines split by Process and postprocesses them. lines must
// be downstream of the stream Process returned with ledger.
func (p *Processor) Restore(ctx context.Context, lines stream.Lines, ledger *stream.Ledger) stream.Lines {
	return stream.Postprocess(ctx, p.pipeline, p.bounder.Join(lines, ledger))
}
