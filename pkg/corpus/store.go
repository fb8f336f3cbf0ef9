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

package corpus

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/exp/mmap"
	"k8s.io/klog/v2"

	"github.com/llm-d/llm-d-text-corpus/pkg/metrics"
	"github.com/llm-d/llm-d-text-corpus/pkg/utils"
	"github.com/llm-d/llm-d-text-corpus/pkg/utils/logging"
	"github.com/llm-d/llm-d-text-corpus/pkg/vocab"
)

// Store gives random access to the lines of a tokenized corpus. It is
// immutable and safe for concurrent readers; Close releases the mapping.
type Store struct {
	path    string
	vocab   vocab.Vocabulary
	width   int
	lengths []int64
	offsets []int64
	ids     *mmap.ReaderAt
}

// Load opens the store under prefix. Both store files must exist; the id
// file size must match the lengths, or ErrIntegrity is returned.
func Load(ctx context.Context, prefix string, v vocab.Vocabulary) (*Store, error) {
	start := time.Now()
	logger := klog.FromContext(ctx).WithName("corpus.Load")

	if !fileExists(IDsPath(prefix)) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, IDsPath(prefix))
	}
	width, lengths, err := readLengths(LengthsPath(prefix))
	if err != nil {
		return nil, err
	}

	s, err := openStore(prefix, v, width, lengths)
	if err != nil {
		return nil, err
	}

	metrics.StoreLoads.Inc()
	metrics.StoreLoadLatency.Observe(time.Since(start).Seconds())
	logger.V(logging.DEBUG).Info("loaded token store", "path", prefix,
		"lines", s.Len(), "tokens", s.NumTokens(), "width", width,
		"size", humanize.IBytes(uint64(s.NumTokens())*uint64(width))) // #nosec G115

	return s, nil
}

// openStore maps the id file and checks it against lengths.
func openStore(prefix string, v vocab.Vocabulary, width int, lengths []int64) (*Store, error) {
	offsets := make([]int64, len(lengths)+1)
	for i, n := range lengths {
		offsets[i+1] = offsets[i] + n
	}

	path := IDsPath(prefix)
	ids, err := mmap.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to map %s: %w", path, err)
	}

	expected := offsets[len(lengths)] * int64(width)
	if observed := int64(ids.Len()); observed != expected {
		_ = ids.Close()
		return nil, fmt.Errorf("%w: %s holds %d bytes, lengths call for %d",
			ErrIntegrity, path, observed, expected)
	}

	return &Store{
		path:    prefix,
		vocab:   v,
		width:   width,
		lengths: lengths,
		offsets: offsets,
		ids:     ids,
	}, nil
}

// Len returns the number of lines.
func (s *Store) Len() int {
	return len(s.lengths)
}

// NumTokens returns the total number of stored ids.
func (s *Store) NumTokens() int64 {
	return s.offsets[len(s.lengths)]
}

// IDWidth returns the size in bytes of a stored id.
func (s *Store) IDWidth() int {
	return s.width
}

// Path returns the path prefix of the store files.
func (s *Store) Path() string {
	return s.path
}

// Vocabulary returns the vocabulary lines are decoded with.
func (s *Store) Vocabulary() vocab.Vocabulary {
	return s.vocab
}

func (s *Store) checkIndex(i int) error {
	if s.ids == nil {
		return fmt.Errorf("%w: %s", ErrClosed, s.path)
	}
	if i < 0 || i >= len(s.lengths) {
		return fmt.Errorf("%w: line %d of %d", ErrOutOfRange, i, len(s.lengths))
	}
	return nil
}

// Offset returns the position of the first id of line i in the id file.
func (s *Store) Offset(i int) (int64, error) {
	if err := s.checkIndex(i); err != nil {
		return 0, err
	}
	return s.offsets[i], nil
}

// Length returns the number of ids of line i.
func (s *Store) Length(i int) (int64, error) {
	if err := s.checkIndex(i); err != nil {
		return 0, err
	}
	return s.lengths[i], nil
}

// IDs returns the token ids of line i.
func (s *Store) IDs(i int) ([]int64, error) {
	if err := s.checkIndex(i); err != nil {
		return nil, err
	}

	n := s.lengths[i]
	buf := make([]byte, n*int64(s.width))
	if _, err := s.ids.ReadAt(buf, s.offsets[i]*int64(s.width)); err != nil {
		return nil, fmt.Errorf("failed to read line %d of %s: %w", i, s.path, err)
	}

	ids := make([]int64, n)
	for j := range ids {
		ids[j] = getID(buf[j*s.width:], s.width)
	}
	return ids, nil
}

// Line returns line i decoded through the vocabulary, tokens joined by
// single spaces.
func (s *Store) Line(i int) (string, error) {
	ids, err := s.IDs(i)
	if err != nil {
		return "", err
	}

	return strings.Join(utils.SliceMap(ids, s.vocab.Token), " "), nil
}

// Close releases the mapping. Later accesses fail with ErrClosed.
func (s *Store) Close() error {
	if s.ids == nil {
		return nil
	}
	err := s.ids.Close()
	s.ids = nil
	return err
}
