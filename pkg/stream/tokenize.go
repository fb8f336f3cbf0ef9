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
	"fmt"
	"iter"
	"strings"
)

// Tokenize splits each line on whitespace. When maxLength is positive, lines
// with more tokens than maxLength are skipped.
func Tokenize(lines Lines, maxLength int) iter.Seq2[[]string, error] {
	return func(yield func([]string, error) bool) {
		for line, err := range lines {
			if err != nil {
				yield(nil, err)
				return
			}

			tokens := strings.Fields(line)
			if 0 < maxLength && maxLength < len(tokens) {
				continue
			}
			if !yield(tokens, nil) {
				return
			}
		}
	}
}

// TokenizeParallel zips N line streams into tuples of tokenized lines, one
// member per stream. When maxLength is positive, a tuple is discarded if any
// of its members has more tokens than maxLength, which keeps the streams
// aligned. Streams that end at different positions fail with ErrUnaligned.
func TokenizeParallel(streams []Lines, maxLength int) iter.Seq2[[][]string, error] {
	return func(yield func([][]string, error) bool) {
		nexts := make([]func() (string, error, bool), len(streams))
		for k, s := range streams {
			next, stop := iter.Pull2(s)
			defer stop()
			nexts[k] = next
		}

		for lineNo := 0; ; lineNo++ {
			tuple := make([][]string, len(streams))
			ended := 0
			for k, next := range nexts {
				line, err, ok := next()
				if !ok {
					ended++
					continue
				}
				if err != nil {
					yield(nil, err)
					return
				}
				tuple[k] = strings.Fields(line)
			}

			switch {
			case ended == len(streams):
				return
			case ended > 0:
				yield(nil, fmt.Errorf("%w: %d of %d streams ended at line %d",
					ErrUnaligned, ended, len(streams), lineNo))
				return
			}

			if maxLength > 0 && longest(tuple) > maxLength {
				continue
			}
			if !yield(tuple, nil) {
				return
			}
		}
	}
}

func longest(tuple [][]string) int {
	n := 0
	for _, tokens := range tuple {
		n = max(n, len(tokens))
	}
	return n
}

// View returns the stream of position k of every tuple.
func View[T any](tuples iter.Seq2[[]T, error], k int) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		var zero T
		for tuple, err := range tuples {
			if err != nil {
				yield(zero, err)
				return
			}
			if k >= len(tuple) {
				yield(zero, fmt.Errorf("%w: tuple of %d streams has no stream %d",
					ErrUnaligned, len(tuple), k))
				return
			}
			if !yield(tuple[k], nil) {
				return
			}
		}
	}
}
