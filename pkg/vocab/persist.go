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
	"os"

	"github.com/fxamacker/cbor/v2"
)

// fileFormat is the on-disk form of a WordVocabulary, reserved tokens
// excluded.
type fileFormat struct {
	_      struct{} `cbor:",toarray"`
	Tokens []string
	Counts []int64
}

// Save writes the vocabulary to path using canonical CBOR, so equal
// vocabularies produce identical files.
func (v *WordVocabulary) Save(path string) error {
	encMode, err := cbor.CanonicalEncOptions().EncMode() // deterministic
	if err != nil {
		return fmt.Errorf("failed to create CBOR encoder: %w", err)
	}

	nbSpecial := len(specialTokens)
	b, err := encMode.Marshal(fileFormat{
		Tokens: v.tokens[nbSpecial:],
		Counts: v.counts[nbSpecial:],
	})
	if err != nil {
		return fmt.Errorf("failed to marshal vocabulary: %w", err)
	}

	if err := os.WriteFile(path, b, 0o644); err != nil { //nolint:gosec // vocabulary files are not secret
		return fmt.Errorf("failed to write vocabulary %s: %w", path, err)
	}
	return nil
}

// Load reads a vocabulary written by Save.
func Load(path string) (*WordVocabulary, error) {
	b, err := os.ReadFile(path) //nolint:gosec // caller-provided path
	if err != nil {
		return nil, fmt.Errorf("failed to read vocabulary %s: %w", path, err)
	}

	var ff fileFormat
	if err := cbor.Unmarshal(b, &ff); err != nil {
		return nil, fmt.Errorf("failed to decode vocabulary %s: %w", path, err)
	}

	return NewWordVocabulary(ff.Tokens, ff.Counts)
}
