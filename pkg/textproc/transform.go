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

// Package textproc defines the line transform capability and the sentence
// splitting capability consumed by the streaming pipeline, the Pipeline that
// composes transforms, and reference implementations of common transforms.
package textproc

import "context"

// LineTransform is a reversible string-to-string step. Post is expected to
// undo Pre for ordinary input; steps without an inverse use the identity as
// Post.
type LineTransform interface {
	// Pre applies the preprocessing direction of the step.
	Pre(ctx context.Context, line string) (string, error)
	// Post applies the postprocessing direction of the step.
	Post(ctx context.Context, line string) (string, error)
}

// SentenceSplitter re-splits a batch of lines into sentence-level lines.
// The number of output lines need not match the batch size. Implementations
// may reject empty input.
type SentenceSplitter interface {
	Split(ctx context.Context, lines []string) ([]string, error)
}

// Funcs adapts a pair of functions to a LineTransform. A nil function is the
// identity.
type Funcs struct {
	PreFn  func(line string) (string, error)
	PostFn func(line string) (string, error)
}

var _ LineTransform = Funcs{}

// Pre applies PreFn.
func (f Funcs) Pre(_ context.Context, line string) (string, error) {
	if f.PreFn == nil {
		return line, nil
	}
	return f.PreFn(line)
}

// Post applies PostFn.
func (f Funcs) Post(_ context.Context, line string) (string, error) {
	if f.PostFn == nil {
		return line, nil
	}
	return f.PostFn(line)
}

// Identity is the no-op transform.
var Identity LineTransform = Funcs{}
