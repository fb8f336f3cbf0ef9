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
	"regexp"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
)

const (
	endOfWord        = "</w>"
	defaultSeparator = "@@"
	// bpeWordCacheSize bounds the number of memoized word segmentations.
	bpeWordCacheSize = 1 << 16
)

// ErrBPECodes reports a malformed BPE codes file.
var ErrBPECodes = errors.New("malformed BPE codes")

type bpePair [2]string

// BPESegmenter splits words into subword units with a list of merge
// operations learned by subword-nmt. Every unit but the last of a word
// carries the separator, as in "unfold@@ ing". Post removes the separators.
type BPESegmenter struct {
	ranks     map[bpePair]int
	version   [2]int
	separator string
	words     *lru.Cache[string, []string]
	desegment *BPEDesegmenter
}

var _ LineTransform = &BPESegmenter{}

// NewBPESegmenter loads merge operations from codesPath. An empty separator
// means "@@".
func NewBPESegmenter(codesPath, separator string) (*BPESegmenter, error) {
	f, err := os.Open(codesPath) //nolint:gosec // codes path from configuration
	if err != nil {
		return nil, fmt.Errorf("failed to open BPE codes: %w", err)
	}
	defer f.Close()

	return ReadBPESegmenter(f, separator)
}

// ReadBPESegmenter parses merge operations, one pair per line in rank order,
// optionally preceded by a "#version: X.Y" header. Files without a header
// follow version 0.1, where the end-of-word marker is a unit of its own.
func ReadBPESegmenter(r io.Reader, separator string) (*BPESegmenter, error) {
	separator = strings.TrimSpace(separator)
	if separator == "" {
		separator = defaultSeparator
	}

	words, err := lru.New[string, []string](bpeWordCacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create BPE word cache: %w", err)
	}

	s := &BPESegmenter{
		ranks:     map[bpePair]int{},
		version:   [2]int{0, 1},
		separator: separator,
		words:     words,
		desegment: NewBPEDesegmenter(separator),
	}

	scanner := bufio.NewScanner(r)
	for lineNo := 1; scanner.Scan(); lineNo++ {
		line := scanner.Text()
		if lineNo == 1 && strings.HasPrefix(line, "#version:") {
			if _, err := fmt.Sscanf(strings.TrimPrefix(line, "#version:"), "%d.%d",
				&s.version[0], &s.version[1]); err != nil {
				return nil, fmt.Errorf("%w: bad version header %q", ErrBPECodes, line)
			}
			continue
		}

		fields := strings.Fields(line)
		switch len(fields) {
		case 0:
			continue
		case 2:
		default:
			return nil, fmt.Errorf("%w: line %d: expected a pair, got %q", ErrBPECodes, lineNo, line)
		}

		pair := bpePair{fields[0], fields[1]}
		if _, ok := s.ranks[pair]; !ok {
			s.ranks[pair] = len(s.ranks)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read BPE codes: %w", err)
	}

	return s, nil
}

// Pre segments the words of line.
func (s *BPESegmenter) Pre(_ context.Context, line string) (string, error) {
	return s.Segment(line), nil
}

// Post removes the separators.
func (s *BPESegmenter) Post(ctx context.Context, line string) (string, error) {
	return s.desegment.Post(ctx, line)
}

// Segment splits every word of line into subword units.
func (s *BPESegmenter) Segment(line string) string {
	var out []string
	for _, word := range strings.Fields(line) {
		units := s.encode(word)
		for _, unit := range units[:len(units)-1] {
			out = append(out, unit+s.separator)
		}
		out = append(out, units[len(units)-1])
	}
	return strings.Join(out, " ")
}

// encode applies merges to word, lowest rank first, until no adjacent pair
// of units is a known merge.
func (s *BPESegmenter) encode(word string) []string {
	if units, ok := s.words.Get(word); ok {
		return units
	}

	chars := strings.Split(word, "")
	var units []string
	if s.version == [2]int{0, 1} {
		units = append(chars, endOfWord)
	} else {
		units = append(chars[:len(chars)-1], chars[len(chars)-1]+endOfWord)
	}

	for len(units) > 1 {
		best, bestRank := bpePair{}, -1
		for i := range len(units) - 1 {
			pair := bpePair{units[i], units[i+1]}
			if rank, ok := s.ranks[pair]; ok && (bestRank < 0 || rank < bestRank) {
				best, bestRank = pair, rank
			}
		}
		if bestRank < 0 {
			break
		}
		units = merge(units, best)
	}

	last := len(units) - 1
	switch {
	case units[last] == endOfWord:
		units = units[:last]
	case strings.HasSuffix(units[last], endOfWord):
		units[last] = strings.TrimSuffix(units[last], endOfWord)
	}

	s.words.Add(word, units)
	return units
}

// merge replaces every non-overlapping occurrence of pair, left to right.
func merge(units []string, pair bpePair) []string {
	merged := make([]string, 0, len(units))
	for i := 0; i < len(units); i++ {
		if i+1 < len(units) && units[i] == pair[0] && units[i+1] == pair[1] {
			merged = append(merged, pair[0]+pair[1])
			i++
			continue
		}
		merged = append(merged, units[i])
	}
	return merged
}

// BPEDesegmenter joins subword units marked with a separator back into
// words. Its Pre is the identity.
type BPEDesegmenter struct {
	pattern *regexp.Regexp
}

var _ LineTransform = &BPEDesegmenter{}

// NewBPEDesegmenter creates a desegmenter for separator; empty means "@@".
func NewBPEDesegmenter(separator string) *BPEDesegmenter {
	separator = strings.TrimSpace(separator)
	if separator == "" {
		separator = defaultSeparator
	}
	sep := regexp.QuoteMeta(separator)

	return &BPEDesegmenter{
		pattern: regexp.MustCompile(fmt.Sprintf(`(%s )|(%s ?$)|( %s)|(^ ?%s)`, sep, sep, sep, sep)),
	}
}

// Pre returns line unchanged.
func (d *BPEDesegmenter) Pre(_ context.Context, line string) (string, error) {
	return line, nil
}

// Post removes the separators.
func (d *BPEDesegmenter) Post(_ context.Context, line string) (string, error) {
	return d.pattern.ReplaceAllString(line, ""), nil
}
