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

func TestTokenizer(t *testing.T) {
	cases := []struct {
		name      string
		lang      string
		line      string
		tokenized string
	}{
		{name: "punctuation", lang: "en", line: "Hello, world!", tokenized: "Hello , world !"},
		{name: "contraction", lang: "en", line: "I don't know.", tokenized: "I don 't know ."},
		{
			name: "prefix and brackets", lang: "en",
			line:      "Mr. Smith paid $5 (cash).",
			tokenized: "Mr. Smith paid $ 5 ( cash ) .",
		},
		{name: "acronym", lang: "en", line: "The U.S. economy", tokenized: "The U.S. economy"},
		{name: "numbers keep commas", lang: "en", line: "It cost 1,000 dollars.", tokenized: "It cost 1,000 dollars ."},
		{name: "quotes", lang: "en", line: `He said "yes".`, tokenized: `He said " yes " .`},
		{name: "ellipsis", lang: "en", line: "Wait... what", tokenized: "Wait ... what"},
		{name: "elision", lang: "fr", line: "l'homme est là.", tokenized: "l' homme est là ."},
		{name: "blanks", lang: "en", line: "  a \t b  ", tokenized: "a b"},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			tok := textproc.NewTokenizer(c.lang)
			assert.Equal(t, c.tokenized, tok.Tokenize(c.line))
		})
	}
}

func TestTokenizerRoundTrip(t *testing.T) {
	ctx := context.Background()
	cases := []struct {
		lang string
		line string
	}{
		{lang: "en", line: "Hello, world!"},
		{lang: "en", line: "I don't know."},
		{lang: "en", line: "Mr. Smith paid $5 (cash)."},
		{lang: "en", line: `He said "yes".`},
		{lang: "en-US", line: "It's 5 p.m. now; isn't it?"},
		{lang: "fr", line: "l'homme est là."},
	}

	for _, c := range cases {
		t.Run(c.line, func(t *testing.T) {
			tok := textproc.NewTokenizer(c.lang)

			pre, err := tok.Pre(ctx, c.line)
			require.NoError(t, err)
			post, err := tok.Post(ctx, pre)
			require.NoError(t, err)
			assert.Equal(t, c.line, post)
		})
	}
}
