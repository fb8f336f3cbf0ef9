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
	"errors"
	"strings"
	"unicode"

	"k8s.io/apimachinery/pkg/util/sets"
)

// ErrEmptyInput reports a sentence splitting request without text.
var ErrEmptyInput = errors.New("empty input")

var (
	sentenceFinal = ".?!"
	closingMarks  = `"')]»”’`
	openingMarks  = sets.New('"', '\'', '(', '[', '«', '¿', '¡', '“', '‘')
)

// RuleSplitter is a rule-based SentenceSplitter. The lines of a batch form
// one paragraph; it is split after sentence-final punctuation followed by a
// word starting in upper case, a digit or an opening mark, unless the
// period ends a non-breaking prefix, an initial or an acronym.
type RuleSplitter struct {
	prefixes sets.Set[string]
}

var _ SentenceSplitter = &RuleSplitter{}

// NewRuleSplitter creates a splitter with the non-breaking prefixes of lang.
func NewRuleSplitter(lang string) *RuleSplitter {
	return &RuleSplitter{prefixes: NonBreakingPrefixes(lang)}
}

// Split returns the sentences of lines, one per element.
func (s *RuleSplitter) Split(_ context.Context, lines []string) ([]string, error) {
	words := strings.Fields(strings.Join(lines, " "))
	if len(words) == 0 {
		return nil, ErrEmptyInput
	}

	var sentences []string
	start := 0
	for i, word := range words {
		if i+1 == len(words) || s.breaksAfter(word, words[i+1]) {
			sentences = append(sentences, strings.Join(words[start:i+1], " "))
			start = i + 1
		}
	}

	return sentences, nil
}

func (s *RuleSplitter) breaksAfter(word, next string) bool {
	core := strings.TrimRight(word, closingMarks)
	if core == "" || !strings.ContainsRune(sentenceFinal, rune(core[len(core)-1])) {
		return false
	}
	if !startsWith(next, func(r rune) bool {
		return unicode.IsUpper(r) || unicode.IsDigit(r) || openingMarks.Has(r)
	}) {
		return false
	}
	if !strings.HasSuffix(core, ".") || strings.HasSuffix(core, "..") {
		return true
	}

	prefix := strings.TrimSuffix(core, ".")
	if i := strings.LastIndexAny(prefix, `"'([«¿¡“‘`); i >= 0 {
		prefix = prefix[i+1:]
	}
	switch {
	case s.prefixes.Has(prefix), isInitial(prefix):
		return false
	case isAcronym(prefix):
		return false
	}
	return true
}

// isAcronym matches dotted upper-case abbreviations such as "U.S".
func isAcronym(word string) bool {
	if !strings.Contains(word, ".") {
		return false
	}
	for _, r := range word {
		if r != '.' && r != '-' && !unicode.IsUpper(r) {
			return false
		}
	}
	return true
}
