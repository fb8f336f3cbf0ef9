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

package stream_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llm-d/llm-d-text-corpus/pkg/stream"
)

func TestTokenize(t *testing.T) {
	lines := stream.FromSlice([]string{"a  b\tc", "", "d e f g", "h"})

	got, err := stream.Collect(stream.Tokenize(lines, -1))
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"a", "b", "c"}, {}, {"d", "e", "f", "g"}, {"h"}}, normalize(got))

	lines = stream.FromSlice([]string{"a b c", "d e f g", "h"})
	got, err = stream.Collect(stream.Tokenize(lines, 3))
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"a", "b", "c"}, {"h"}}, got)
}

func TestTokenizeParallel(t *testing.T) {
	src := stream.FromSlice([]string{"a b", "c d e f", "g"})
	tgt := stream.FromSlice([]string{"x", "y", "z w v u t"})

	tuples, err := stream.Collect(stream.TokenizeParallel([]stream.Lines{src, tgt}, -1))
	require.NoError(t, err)
	require.Len(t, tuples, 3)
	assert.Equal(t, []string{"c", "d", "e", "f"}, tuples[1][0])
	assert.Equal(t, []string{"y"}, tuples[1][1])
}

func TestTokenizeParallelFiltersTuples(t *testing.T) {
	src := stream.FromSlice([]string{"a b", "c d e f", "g"})
	tgt := stream.FromSlice([]string{"x", "y", "z w v u t"})

	tuples, err := stream.Collect(stream.TokenizeParallel([]stream.Lines{src, tgt}, 3))
	require.NoError(t, err)
	require.Len(t, tuples, 1, "a tuple is dropped when any member is too long")
	assert.Equal(t, [][]string{{"a", "b"}, {"x"}}, tuples[0])
}

func TestTokenizeParallelUnaligned(t *testing.T) {
	src := stream.FromSlice([]string{"a", "b", "c"})
	tgt := stream.FromSlice([]string{"x", "y"})

	tuples, err := stream.Collect(stream.TokenizeParallel([]stream.Lines{src, tgt}, -1))
	require.ErrorIs(t, err, stream.ErrUnaligned)
	assert.Len(t, tuples, 2)
}

func TestView(t *testing.T) {
	src := stream.FromSlice([]string{"a b", "c"})
	tgt := stream.FromSlice([]string{"x", "y z"})
	tuples := stream.TokenizeParallel([]stream.Lines{src, tgt}, -1)

	tgtView, err := stream.Collect(stream.View(tuples, 1))
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"x"}, {"y", "z"}}, tgtView)

	_, err = stream.Collect(stream.View(tuples, 2))
	require.ErrorIs(t, err, stream.ErrUnaligned)
}

// normalize maps empty token lists to non-nil slices for comparison.
func normalize(tokens [][]string) [][]string {
	for i, t := range tokens {
		if t == nil {
			tokens[i] = []string{}
		}
	}
	return tokens
}
