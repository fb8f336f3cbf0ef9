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

package vocab

import (
	"fmt"

	"k8s.io/apimachinery/pkg/util/sets"
)

// Reserved tokens. Their ids are fixed by their position in specialTokens.
const (
	PadToken = "<pad>"
	UnkToken = "<unk>"
	SosToken = "<s>"
	EosToken = "</s>"
)

var (
	specialTokens = []string{PadToken, UnkToken, SosToken, EosToken}
	reserved      = sets.New(specialTokens...)
)

// Vocabulary maps tokens to stable integer ids and back.
// Implementations must be safe for concurrent reads.
type Vocabulary interface {
	// ID returns the id of token, or UnknownID() for out-of-vocabulary tokens.
	ID(token string) int64
	// Token returns the token for id. Unknown ids map to the unknown token.
	Token(id int64) string
	// UnknownID returns the reserved id for out-of-vocabulary tokens.
	UnknownID() int64
	// Size returns the number of entries, reserved tokens included.
	Size() int
}

// WordVocabulary is a Vocabulary over whitespace-delimited words with the
// reserved tokens at ids 0..3.
type WordVocabulary struct {
	tokens []string
	counts []int64
	index  map[string]int64
}

var _ Vocabulary = &WordVocabulary{}

// NewWordVocabulary creates a vocabulary from tokens in id order. Reserved
// tokens are prepended and duplicates are rejected.
func NewWordVocabulary(tokens []string, counts []int64) (*WordVocabulary, error) {
	if counts != nil && len(counts) != len(tokens) {
		return nil, fmt.Errorf("got %d counts for %d tokens", len(counts), len(tokens))
	}

	v := &WordVocabulary{
		tokens: make([]string, 0, len(specialTokens)+len(tokens)),
		counts: make([]int64, 0, len(specialTokens)+len(tokens)),
		index:  make(map[string]int64, len(specialTokens)+len(tokens)),
	}
	for _, tok := range specialTokens {
		v.add(tok, 0)
	}

	for i, tok := range tokens {
		if reserved.Has(tok) {
			continue
		}
		if _, dup := v.index[tok]; dup {
			return nil, fmt.Errorf("duplicate token %q", tok)
		}
		var count int64
		if counts != nil {
			count = counts[i]
		}
		v.add(tok, count)
	}

	return v, nil
}

func (v *WordVocabulary) add(tok string, count int64) {
	v.index[tok] = int64(len(v.tokens))
	v.tokens = append(v.tokens, tok)
	v.counts = append(v.counts, count)
}

// ID returns the id of token.
func (v *WordVocabulary) ID(token string) int64 {
	if id, ok := v.index[token]; ok {
		return id
	}
	return v.UnknownID()
}

// Token returns the token for id.
func (v *WordVocabulary) Token(id int64) string {
	if id < 0 || id >= int64(len(v.tokens)) {
		return UnkToken
	}
	return v.tokens[id]
}

// UnknownID returns the id of UnkToken.
func (v *WordVocabulary) UnknownID() int64 {
	return v.index[UnkToken]
}

// Size returns the number of entries.
func (v *WordVocabulary) Size() int {
	return len(v.tokens)
}

// Count returns the training frequency recorded for token.
func (v *WordVocabulary) Count(token string) int64 {
	id, ok := v.index[token]
	if !ok {
		return 0
	}
	return v.counts[id]
}

// IsSpecial reports whether token is one of the reserved tokens.
func IsSpecial(token string) bool {
	return reserved.Has(token)
}
