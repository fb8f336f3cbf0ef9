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
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"k8s.io/apimachinery/pkg/util/sets"
)

var (
	tokSpecialChars = regexp.MustCompile(`([^\p{L}\p{N}\s\.'\-,])`)
	tokMultiDots    = regexp.MustCompile(`\.{2,}`)
	tokCommaBefore  = regexp.MustCompile(`([^\p{N}]),`)
	tokCommaAfter   = regexp.MustCompile(`,([^\p{N}])`)

	// English: "don't" -> "don 't", "1990's" -> "1990 's".
	tokApostropheEN = []rewrite{
		{regexp.MustCompile(`([^\p{L}])'([^\p{L}])`), "${1} ' ${2}"},
		{regexp.MustCompile(`([^\p{L}\p{N}])'([\p{L}])`), "${1} ' ${2}"},
		{regexp.MustCompile(`([\p{L}])'([^\p{L}])`), "${1} ' ${2}"},
		{regexp.MustCompile(`([\p{L}])'([\p{L}])`), "${1} '${2}"},
		{regexp.MustCompile(`([\p{N}])'(s)`), "${1} '${2}"},
	}
	// French and Italian: "l'homme" -> "l' homme".
	tokApostropheFR = []rewrite{
		{regexp.MustCompile(`([^\p{L}])'([^\p{L}])`), "${1} ' ${2}"},
		{regexp.MustCompile(`([^\p{L}])'([\p{L}])`), "${1} ' ${2}"},
		{regexp.MustCompile(`([\p{L}])'([^\p{L}])`), "${1} ' ${2}"},
		{regexp.MustCompile(`([\p{L}])'([\p{L}])`), "${1}' ${2}"},
	}
	tokApostropheOther = []rewrite{
		{regexp.MustCompile(`'`), " ' "},
	}

	// punctuation glued to the preceding token on detokenization
	detokAttachLeft = sets.New(",", ".", "?", "!", ":", ";", "%", ")", "]", "}", "...", "…", "»")
	// punctuation glued to the following token on detokenization
	detokAttachRight = sets.New("(", "[", "{", "¿", "¡", "$", "£", "€", "«")
)

type rewrite struct {
	pattern *regexp.Regexp
	repl    string
}

// Tokenizer separates punctuation from words in the manner of the Moses
// tokenizer, so that tokens are delimited by single spaces. Post
// detokenizes: "Hello , world !" becomes "Hello, world!".
type Tokenizer struct {
	lang       string
	apostrophe []rewrite
	prefixes   sets.Set[string]
}

var _ LineTransform = &Tokenizer{}

// NewTokenizer creates a Tokenizer with the apostrophe and abbreviation
// rules of lang.
func NewTokenizer(lang string) *Tokenizer {
	lang = baseLanguage(lang)

	apostrophe := tokApostropheOther
	switch lang {
	case "en":
		apostrophe = tokApostropheEN
	case "fr", "it":
		apostrophe = tokApostropheFR
	}

	return &Tokenizer{
		lang:       lang,
		apostrophe: apostrophe,
		prefixes:   NonBreakingPrefixes(lang),
	}
}

// Pre tokenizes line.
func (t *Tokenizer) Pre(_ context.Context, line string) (string, error) {
	return t.Tokenize(line), nil
}

// Post detokenizes line.
func (t *Tokenizer) Post(_ context.Context, line string) (string, error) {
	return t.Detokenize(line), nil
}

// Tokenize separates punctuation from words.
func (t *Tokenizer) Tokenize(line string) string {
	line = " " + blankRun.ReplaceAllString(line, " ") + " "

	line = tokSpecialChars.ReplaceAllString(line, " ${1} ")
	line = tokMultiDots.ReplaceAllString(line, " ${0} ")
	line = tokCommaBefore.ReplaceAllString(line, "${1} , ")
	line = tokCommaAfter.ReplaceAllString(line, " , ${1}")
	for _, rw := range t.apostrophe {
		line = rw.pattern.ReplaceAllString(line, rw.repl)
	}

	tokens := strings.Fields(line)
	out := make([]string, 0, len(tokens)+1)
	for i, tok := range tokens {
		if word, ok := t.splitFinalPeriod(tokens, i); ok {
			out = append(out, word, ".")
			continue
		}
		out = append(out, tok)
	}

	return strings.Join(out, " ")
}

// splitFinalPeriod reports whether the period ending tokens[i] is a
// sentence-final period rather than part of an abbreviation.
func (t *Tokenizer) splitFinalPeriod(tokens []string, i int) (string, bool) {
	tok := tokens[i]
	word, found := strings.CutSuffix(tok, ".")
	if !found || word == "" || strings.Trim(tok, ".") == "" {
		return "", false
	}

	switch {
	case strings.Contains(word, ".") && strings.IndexFunc(word, unicode.IsLetter) >= 0:
		// U.S. or e.g.
		return "", false
	case t.prefixes.Has(word), isInitial(word):
		return "", false
	case i+1 < len(tokens) && startsWith(tokens[i+1], unicode.IsLower):
		return "", false
	}

	return word, true
}

// Detokenize joins tokens back into text, gluing punctuation to its
// neighbours.
func (t *Tokenizer) Detokenize(line string) string {
	tokens := strings.Fields(line)

	var b strings.Builder
	sep := ""
	quotes := map[string]int{}
	for i, tok := range tokens {
		switch {
		case detokAttachRight.Has(tok):
			b.WriteString(sep + tok)
			sep = ""
		case detokAttachLeft.Has(tok):
			b.WriteString(tok)
			sep = " "
		case t.lang == "en" && i > 0 && isClitic(tok):
			b.WriteString(tok)
			sep = " "
		case (t.lang == "fr" || t.lang == "it") && isElision(tok):
			b.WriteString(sep + tok)
			sep = ""
		case tok == `"` || tok == "'":
			if quotes[tok]%2 == 0 {
				b.WriteString(sep + tok)
				sep = ""
			} else {
				b.WriteString(tok)
				sep = " "
			}
			quotes[tok]++
		default:
			b.WriteString(sep + tok)
			sep = " "
		}
	}

	return b.String()
}

// isClitic matches English contractions split off by Tokenize, as in 's or 't.
func isClitic(tok string) bool {
	rest, found := strings.CutPrefix(tok, "'")
	return found && startsWith(rest, unicode.IsLetter)
}

// isElision matches French and Italian elided articles such as l' or qu'.
func isElision(tok string) bool {
	head, found := strings.CutSuffix(tok, "'")
	return found && head != "" && strings.IndexFunc(head, func(r rune) bool { return !unicode.IsLetter(r) }) < 0
}

func isInitial(word string) bool {
	r, size := utf8.DecodeRuneInString(word)
	return size == len(word) && unicode.IsUpper(r)
}

func startsWith(s string, pred func(rune) bool) bool {
	r, size := utf8.DecodeRuneInString(s)
	return size > 0 && pred(r)
}
