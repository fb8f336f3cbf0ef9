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
	"fmt"
	"regexp"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// blankRun matches runs of ASCII and Unicode blanks, NBSP and NEL included.
var blankRun = regexp.MustCompile(`[\s\p{Z}\x{0085}]+`)

// BlankNormalizer collapses every run of whitespace into a single space.
// Its Post is the identity.
type BlankNormalizer struct{}

var _ LineTransform = BlankNormalizer{}

// Pre normalizes blanks.
func (BlankNormalizer) Pre(_ context.Context, line string) (string, error) {
	return blankRun.ReplaceAllString(line, " "), nil
}

// Post returns line unchanged.
func (BlankNormalizer) Post(_ context.Context, line string) (string, error) {
	return line, nil
}

// Lowercaser lowercases lines following the casing rules of a language.
// Its Post is the identity: use a Recaser to restore sentence-initial case.
type Lowercaser struct {
	tag language.Tag
}

var _ LineTransform = &Lowercaser{}

// NewLowercaser creates a Lowercaser for the BCP 47 language code lang.
func NewLowercaser(lang string) (*Lowercaser, error) {
	tag, err := language.Parse(lang)
	if err != nil {
		return nil, fmt.Errorf("invalid language %q: %w", lang, err)
	}
	return &Lowercaser{tag: tag}, nil
}

// Pre lowercases line.
func (l *Lowercaser) Pre(_ context.Context, line string) (string, error) {
	// a Caser holds state, one per call keeps the transform reentrant
	return cases.Lower(l.tag).String(line), nil
}

// Post returns line unchanged.
func (l *Lowercaser) Post(_ context.Context, line string) (string, error) {
	return line, nil
}
