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

package stream

import (
	"context"

	"github.com/llm-d/llm-d-text-corpus/pkg/textproc"
)

// Preprocess applies t.Pre to every line. The line count is preserved.
func Preprocess(ctx context.Context, t textproc.LineTransform, lines Lines) Lines {
	return mapLines(lines, func(line string) (string, error) {
		return t.Pre(ctx, line)
	})
}

// Postprocess applies t.Post to every line. The line count is preserved.
func Postprocess(ctx context.Context, t textproc.LineTransform, lines Lines) Lines {
	return mapLines(lines, func(line string) (string, error) {
		return t.Post(ctx, line)
	})
}

// mapLines stops at the first failing line; nothing is yielded for it.
func mapLines(lines Lines, fn func(string) (string, error)) Lines {
	return func(yield func(string, error) bool) {
		for line, err := range lines {
			if err != nil {
				yield("", err)
				return
			}

			out, err := fn(line)
			if err != nil {
				yield("", err)
				return
			}
			if !yield(out, nil) {
				return
			}
		}
	}
}
