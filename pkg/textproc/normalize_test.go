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

package textproc_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llm-d/llm-d-text-corpus/pkg/textproc"
)

func TestBlankNormalizer(t *testing.T) {
	ctx := context.Background()
	got, err := textproc.BlankNormalizer{}.Pre(ctx, "a \t b\u00a0\u00a0c\n")
	require.NoError(t, err)
	assert.Equal(t, "a b c ", got)

	post, err := textproc.BlankNormalizer{}.Post(ctx, "a  b")
	require.NoError(t, err)
	assert.Equal(t, "a  b", post)
}

func TestBlankNormalizerUnicodeBlanks(t *testing.T) {
	cases := []struct {
		line string
		want string
	}{
		{line: "a\u00a0\u00a0b", want: "a b"},
		{line: "a\u2009b\u3000c", want: "a b c"},
		{line: "\u00a0a\u0085b\u2028", want: " a b "},
		{line: "a \u00a0\tb", want: "a b"},
	}
	for _, c := range cases {
		got, err := textproc.BlankNormalizer{}.Pre(context.Background(), c.line)
		require.NoError(t, err)
		assert.Equal(t, c.want, got, "%q", c.line)
	}
}

func TestLowercaser(t *testing.T) {
	ctx := context.Background()

	en, err := textproc.NewLowercaser("en")
	require.NoError(t, err)
	got, err := en.Pre(ctx, "HeLLo World")
	require.NoError(t, err)
	assert.Equal(t, "hello world", got)

	tr, err := textproc.NewLowercaser("tr")
	require.NoError(t, err)
	got, err = tr.Pre(ctx, "İSTANBUL")
	require.NoError(t, err)
	assert.Equal(t, "istanbul", got)

	_, err = textproc.NewLowercaser("!!")
	require.Error(t, err)
}

func TestCharLevelSegmenter(t *testing.T) {
	ctx := context.Background()
	cases := []struct {
		separator string
		line      string
		segmented string
	}{
		{separator: "@@", line: "this is a string", segmented: "t h i s @@ i s @@ a @@ s t r i n g"},
		{separator: " ## ", line: "ab cd", segmented: "a b ## c d"},
		{separator: "", line: "é ü", segmented: "é @@ ü"},
		{separator: "@@", line: "", segmented: ""},
	}

	for _, c := range cases {
		t.Run(c.line, func(t *testing.T) {
			s := textproc.NewCharLevelSegmenter(c.separator)

			got, err := s.Pre(ctx, c.line)
			require.NoError(t, err)
			assert.Equal(t, c.segmented, got)

			back, err := s.Post(ctx, got)
			require.NoError(t, err)
			assert.Equal(t, c.line, back)
		})
	}
}
