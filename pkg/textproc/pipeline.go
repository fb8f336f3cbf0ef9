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

package textproc

import "context"

// Pipeline applies an ordered list of transforms: Pre folds them left to
// right, Post folds their inverses right to left. When each step's Post
// inverts its Pre, Post(Pre(line)) == line.
//
// A failing step aborts the line; its error is returned as is.
type Pipeline struct {
	steps []LineTransform
}

var _ LineTransform = &Pipeline{}

// NewPipeline creates a Pipeline over steps.
func NewPipeline(steps ...LineTransform) *Pipeline {
	return &Pipeline{steps: steps}
}

// Steps returns the steps in Pre order.
func (p *Pipeline) Steps() []LineTransform {
	return p.steps
}

// Pre applies step.Pre in list order.
func (p *Pipeline) Pre(ctx context.Context, line string) (string, error) {
	var err error
	for _, step := range p.steps {
		if line, err = step.Pre(ctx, line); err != nil {
			return "", err
		}
	}
	return line, nil
}

// Post applies step.Post in reverse list order.
func (p *Pipeline) Post(ctx context.Context, line string) (string, error) {
	var err error
	for i := len(p.steps) - 1; i >= 0; i-- {
		if line, err = p.steps[i].Post(ctx, line); err != nil {
			return "", err
		}
	}
	return line, nil
}
