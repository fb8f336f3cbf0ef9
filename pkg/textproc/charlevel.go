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

import (
	"context"
	"strings"
)

// CharLevelSegmenter turns words into space-separated characters with a
// separator token between words: "ab cd" becomes "a b @@ c d". Post
// reverses it.
type CharLevelSegmenter struct {
	separator string
}

var _ LineTransform = &CharLevelSegmenter{}

// NewCharLevelSegmenter creates a segmenter; an empty separator means "@@".
func NewCharLevelSegmenter(separator string) *CharLevelSegmenter {
	separator = strings.TrimSpace(separator)
	if separator == "" {
		separator = defaultSeparator
	}
	return &CharLevelSegmenter{separator: separator}
}

// Pre segments line into characters.
func (c *CharLevelSegmenter) Pre(_ context.Context, line string) (string, error) {
	words := strings.Fields(line)
	for i, word := range words {
		words[i] = strings.Join(strings.Split(word, ""), " ")
	}
	return strings.Join(words, " "+c.separator+" "), nil
}

// Post glues characters back into words.
func (c *CharLevelSegmenter) Post(_ context.Context, line string) (string, error) {
	var b strings.Builder
	for _, char := range strings.Fields(line) {
		if char == c.separator {
			b.WriteByte(' ')
			continue
		}
		b.WriteString(char)
	}
	return b.String(), nil
}
