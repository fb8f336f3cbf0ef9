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
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode"
	"unicode/utf8"

	"k8s.io/apimachinery/pkg/util/sets"
)

// ErrTruecaseModel reports a malformed truecase model file.
var ErrTruecaseModel = errors.New("malformed truecase model")

var (
	// tokens ending a sentence: the next word is sentence-initial
	sentenceEnd = sets.New(".", ":", "?", "!")
	// tokens that do not consume the sentence-initial position
	delayedSentenceStart = sets.New(`"`, "'", "(", "[", "«", "¿", "¡", "-", "--")
)

// Truecaser maps words to their most frequent casing, as learned by a Moses
// truecase model. Sentence-initial words always take their most frequent
// casing; other words keep their casing when it has been seen. Post recases
// sentence-initial words.
type Truecaser struct {
	best  map[string]string
	known sets.Set[string]
}

var _ LineTransform = &Truecaser{}

// NewTruecaser loads a Moses truecase model from modelPath.
func NewTruecaser(modelPath string) (*Truecaser, error) {
	f, err := os.Open(modelPath) //nolint:gosec // model path from configuration
	if err != nil {
		return nil, fmt.Errorf("failed to open truecase model: %w", err)
	}
	defer f.Close()

	return ReadTruecaser(f)
}

// ReadTruecaser parses a Moses truecase model. Each line lists the casings
// of one word, most frequent first, each followed by its count in
// parentheses, as in "Hello (3/5) hello (2)".
func ReadTruecaser(r io.Reader) (*Truecaser, error) {
	t := &Truecaser{
		best:  map[string]string{},
		known: sets.New[string](),
	}

	scanner := bufio.NewScanner(r)
	for lineNo := 1; scanner.Scan(); lineNo++ {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		if len(fields)%2 != 0 {
			return nil, fmt.Errorf("%w: line %d: unpaired word or count", ErrTruecaseModel, lineNo)
		}

		for i := 0; i < len(fields); i += 2 {
			count := fields[i+1]
			if !strings.HasPrefix(count, "(") || !strings.HasSuffix(count, ")") {
				return nil, fmt.Errorf("%w: line %d: bad count %q", ErrTruecaseModel, lineNo, count)
			}
			t.known.Insert(fields[i])
		}
		t.best[strings.ToLower(fields[0])] = fields[0]
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read truecase model: %w", err)
	}

	return t, nil
}

// Pre truecases line.
func (t *Truecaser) Pre(_ context.Context, line string) (string, error) {
	return t.Truecase(line), nil
}

// Post recases line.
func (t *Truecaser) Post(_ context.Context, line string) (string, error) {
	return Recase(line), nil
}

// Truecase rewrites the words of a tokenized line to their learned casing.
func (t *Truecaser) Truecase(line string) string {
	tokens := strings.Fields(line)
	initial := true
	for i, tok := range tokens {
		best, hasBest := t.best[strings.ToLower(tok)]
		switch {
		case initial && hasBest:
			tokens[i] = best
		case t.known.Has(tok):
		case hasBest:
			tokens[i] = best
		}

		switch {
		case sentenceEnd.Has(tok):
			initial = true
		case !delayedSentenceStart.Has(tok):
			initial = false
		}
	}

	return strings.Join(tokens, " ")
}

// Recaser capitalizes sentence-initial words. Its Pre is the identity.
type Recaser struct{}

var _ LineTransform = Recaser{}

// Pre returns line unchanged.
func (Recaser) Pre(_ context.Context, line string) (string, error) {
	return line, nil
}

// Post recases line.
func (Recaser) Post(_ context.Context, line string) (string, error) {
	return Recase(line), nil
}

// Recase uppercases the first letter of every sentence-initial word of a
// tokenized line.
func Recase(line string) string {
	tokens := strings.Fields(line)
	initial := true
	for i, tok := range tokens {
		if initial && !delayedSentenceStart.Has(tok) {
			tokens[i] = capitalize(tok)
		}

		switch {
		case sentenceEnd.Has(tok):
			initial = true
		case !delayedSentenceStart.Has(tok):
			initial = false
		}
	}

	return strings.Join(tokens, " ")
}

func capitalize(word string) string {
	r, size := utf8.DecodeRuneInString(word)
	if size == 0 || unicode.IsUpper(r) {
		return word
	}
	return string(unicode.ToUpper(r)) + word[size:]
}
