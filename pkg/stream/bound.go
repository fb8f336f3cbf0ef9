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

package stream

import (
	"fmt"
	"strings"

	"github.com/llm-d/llm-d-text-corpus/pkg/utils"
)

// ledgerCompactThreshold is the number of consumed entries after which the
// ledger reclaims their space.
const ledgerCompactThreshold = 4096

// BoundConfig holds the configuration for the LengthBounder.
type BoundConfig struct {
	// MaxLength is the maximum number of whitespace-delimited tokens per line.
	// -1 disables the bound.
	MaxLength int `json:"maxLength"`
	// Split chops over-long lines into parts instead of dropping them.
	Split bool `json:"split"`
}

// DefaultBoundConfig returns a disabled bound.
func DefaultBoundConfig() *BoundConfig {
	return &BoundConfig{
		MaxLength: -1,
		Split:     false,
	}
}

// BoundMode is the behaviour of a LengthBounder.
type BoundMode int

const (
	// BoundDisabled passes lines through untouched.
	BoundDisabled BoundMode = iota
	// BoundDrop discards over-long lines.
	BoundDrop
	// BoundSplit chops over-long lines into parts.
	BoundSplit
)

// String returns the name of the mode.
func (m BoundMode) String() string {
	switch m {
	case BoundDisabled:
		return "disabled"
	case BoundDrop:
		return "drop"
	case BoundSplit:
		return "split"
	default:
		return fmt.Sprintf("BoundMode(%d)", int(m))
	}
}

// Ledger records, for every original line emitted by LengthBounder.Pre, the
// number of parts it was emitted as. It is a FIFO: Pre appends an entry
// before yielding the first part of a line, Join consumes entries in the
// same order. A Ledger is only obtainable from Pre and must be used by a
// single Join over that Pre's output.
type Ledger struct {
	counts []int
	head   int
}

func (l *Ledger) push(n int) {
	l.counts = append(l.counts, n)
}

func (l *Ledger) pop() (int, bool) {
	if l == nil || l.head >= len(l.counts) {
		return 0, false
	}

	n := l.counts[l.head]
	l.head++
	if l.head >= ledgerCompactThreshold && 2*l.head >= len(l.counts) {
		l.counts = append(l.counts[:0], l.counts[l.head:]...)
		l.head = 0
	}
	return n, true
}

// Pending returns the number of entries not yet consumed by Join.
func (l *Ledger) Pending() int {
	if l == nil {
		return 0
	}
	return len(l.counts) - l.head
}

// LengthBounder enforces a maximum token count per line, either dropping or
// splitting over-long lines, and can rejoin split lines.
type LengthBounder struct {
	maxLength int
	split     bool
}

// NewLengthBounder creates a LengthBounder. A negative maxLength disables it;
// zero is rejected.
func NewLengthBounder(maxLength int, split bool) (*LengthBounder, error) {
	if maxLength == 0 {
		return nil, fmt.Errorf("%w: max length must be positive or -1 for no bound", ErrConfiguration)
	}

	return &LengthBounder{
		maxLength: maxLength,
		split:     split,
	}, nil
}

// NewLengthBounderFromConfig creates a LengthBounder from cfg; nil means the
// default configuration.
func NewLengthBounderFromConfig(cfg *BoundConfig) (*LengthBounder, error) {
	if cfg == nil {
		cfg = DefaultBoundConfig()
	}
	return NewLengthBounder(cfg.MaxLength, cfg.Split)
}

// Mode returns the behaviour selected at construction.
func (b *LengthBounder) Mode() BoundMode {
	switch {
	case b.maxLength < 0:
		return BoundDisabled
	case b.split:
		return BoundSplit
	default:
		return BoundDrop
	}
}

// Pre returns the bounded stream and the ledger it fills. In disabled mode
// the stream is returned untouched and the ledger stays empty. Otherwise each
// line is trimmed and measured in whitespace-delimited tokens: short lines
// pass with a ledger entry of 1, long lines are dropped without an entry or
// split into parts of MaxLength tokens, the last one taking the remainder.
//
// The returned stream can be iterated once.
func (b *LengthBounder) Pre(lines Lines) (Lines, *Ledger) {
	ledger := &Ledger{}
	if b.Mode() == BoundDisabled {
		return lines, ledger
	}

	consumed := false
	return func(yield func(string, error) bool) {
		if consumed {
			yield("", ErrConsumed)
			return
		}
		consumed = true

		for line, err := range lines {
			if err != nil {
				yield("", err)
				return
			}

			line = strings.TrimSpace(line)
			tokens := strings.Fields(line)
			if len(tokens) <= b.maxLength {
				ledger.push(1)
				if !yield(line, nil) {
					return
				}
				continue
			}
			if !b.split {
				continue
			}

			parts := utils.SliceChunk(tokens, b.maxLength)
			ledger.push(len(parts))
			for _, part := range parts {
				if !yield(strings.Join(part, " "), nil) {
					return
				}
			}
		}
	}, ledger
}

// Join reconstructs original lines from the parts produced by Pre, consuming
// ledger entries in order. lines must be downstream of the Pre that produced
// ledger, so that each entry is recorded before its first part arrives.
// In disabled and drop modes Join is the identity.
func (b *LengthBounder) Join(lines Lines, ledger *Ledger) Lines {
	if b.Mode() != BoundSplit {
		return lines
	}

	return func(yield func(string, error) bool) {
		var parts []string
		want := 0
		for line, err := range lines {
			if err != nil {
				yield("", err)
				return
			}

			if len(parts) == 0 {
				n, ok := ledger.pop()
				if !ok {
					yield("", fmt.Errorf("%w: no entry for part %q", ErrLedgerUnderrun, line))
					return
				}
				want = n
			}

			parts = append(parts, line)
			if len(parts) == want {
				if !yield(strings.Join(parts, " "), nil) {
					return
				}
				parts = parts[:0]
			}
		}

		if len(parts) > 0 {
			yield("", fmt.Errorf("%w: got %d of %d parts", ErrIncompleteLine, len(parts), want))
		}
	}
}
