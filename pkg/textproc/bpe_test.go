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
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llm-d/llm-d-text-corpus/pkg/textproc"
)

const bpeCodesV2 = `#version: 0.2
l o
lo w
e r</w>
n e
ne w
new er</w>
`

func TestBPESegmenter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bpe_codes.en")
	require.NoError(t, os.WriteFile(path, []byte(bpeCodesV2), 0o600))

	s, err := textproc.NewBPESegmenter(path, "@@")
	require.NoError(t, err)

	assert.Equal(t, "low@@ er newer", s.Segment("lower newer"))
	assert.Equal(t, "lo@@ w", s.Segment("low"), "lo w</w> is not a merge")
	assert.Equal(t, "x@@ y@@ z", s.Segment("xyz"))
	assert.Equal(t, "", s.Segment("   "))
	// memoized words give the same answer
	assert.Equal(t, "low@@ er newer", s.Segment("lower  newer"))
}

func TestBPESegmenterVersion01(t *testing.T) {
	s, err := textproc.ReadBPESegmenter(strings.NewReader("l o\nlo w\n"), "")
	require.NoError(t, err)

	assert.Equal(t, "low", s.Segment("low"))
	assert.Equal(t, "low@@ l@@ y", s.Segment("lowly"))
}

func TestBPERoundTrip(t *testing.T) {
	s, err := textproc.ReadBPESegmenter(strings.NewReader(bpeCodesV2), "@@")
	require.NoError(t, err)
	ctx := context.Background()

	for _, line := range []string{"lower newer", "a lowly newt", "x", ""} {
		pre, err := s.Pre(ctx, line)
		require.NoError(t, err)
		post, err := s.Post(ctx, pre)
		require.NoError(t, err)
		assert.Equal(t, line, post)
	}
}

func TestBPEDesegmenter(t *testing.T) {
	ctx := context.Background()
	d := textproc.NewBPEDesegmenter("@@")

	cases := map[string]string{
		"low@@ er new@@ er": "lower newer",
		"trailing@@":        "trailing",
		"@@ leading":        "leading",
		"plain words":       "plain words",
	}
	for in, want := range cases {
		got, err := d.Post(ctx, in)
		require.NoError(t, err)
		assert.Equal(t, want, got, in)
	}

	pre, err := d.Pre(ctx, "low@@ er")
	require.NoError(t, err)
	assert.Equal(t, "low@@ er", pre)
}

func TestBPEMalformedCodes(t *testing.T) {
	_, err := textproc.ReadBPESegmenter(strings.NewReader("a b c\n"), "@@")
	require.ErrorIs(t, err, textproc.ErrBPECodes)

	_, err = textproc.ReadBPESegmenter(strings.NewReader("#version: x\n"), "@@")
	require.ErrorIs(t, err, textproc.ErrBPECodes)
}
