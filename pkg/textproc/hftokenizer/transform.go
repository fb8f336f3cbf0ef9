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

package hftokenizer

import (
	"context"
	"fmt"
	"strings"

	"k8s.io/klog/v2"

	"github.com/llm-d/llm-d-text-corpus/pkg/textproc"
	"github.com/llm-d/llm-d-text-corpus/pkg/utils/logging"
)

const (
	// wordPieceContinuation prefixes tokens continuing a word (BERT).
	wordPieceContinuation = "##"
	// byteLevelSpace starts tokens beginning a word (GPT-2 byte-level BPE).
	byteLevelSpace = "Ġ"
	// sentencePieceSpace starts tokens beginning a word (SentencePiece).
	sentencePieceSpace = "▁"
)

// Transform tokenizes lines with a HuggingFace model. Pre joins the subword
// tokens with single spaces; Post glues them back into words using the
// model's word boundary markers.
type Transform struct {
	tokenizer *CachedTokenizer
	model     string
}

var _ textproc.LineTransform = &Transform{}

// NewTransform creates a Transform for model.
func NewTransform(tokenizer *CachedTokenizer, model string) *Transform {
	return &Transform{
		tokenizer: tokenizer,
		model:     model,
	}
}

// Pre tokenizes line.
func (t *Transform) Pre(ctx context.Context, line string) (string, error) {
	tokens, err := t.tokenizer.Tokenize(line, t.model)
	if err != nil {
		return "", fmt.Errorf("failed to tokenize line: %w", err)
	}
	klog.FromContext(ctx).V(logging.TRACE).WithName("hftokenizer.Transform.Pre").Info("tokenized",
		"model", t.model, "tokens", len(tokens))

	return strings.Join(tokens, " "), nil
}

// Post desegments line.
func (t *Transform) Post(_ context.Context, line string) (string, error) {
	return Desegment(line), nil
}

// Desegment joins space-separated subword tokens into words. Lines holding
// byte-level or SentencePiece word-start markers are split at those
// markers; otherwise WordPiece continuation markers are glued to the
// preceding token.
func Desegment(line string) string {
	tokens := strings.Fields(line)
	if len(tokens) == 0 {
		return ""
	}

	var b strings.Builder
	if marker, ok := wordStartMarker(tokens); ok {
		for _, tok := range tokens {
			if word, found := strings.CutPrefix(tok, marker); found {
				b.WriteByte(' ')
				tok = word
			}
			b.WriteString(tok)
		}
		return strings.TrimPrefix(b.String(), " ")
	}

	for i, tok := range tokens {
		if word, found := strings.CutPrefix(tok, wordPieceContinuation); found && i > 0 {
			b.WriteString(word)
			continue
		}
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(tok)
	}
	return b.String()
}

func wordStartMarker(tokens []string) (string, bool) {
	for _, tok := range tokens {
		switch {
		case strings.HasPrefix(tok, byteLevelSpace):
			return byteLevelSpace, true
		case strings.HasPrefix(tok, sentencePieceSpace):
			return sentencePieceSpace, true
		}
	}
	return "", false
}
