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
	"bufio"
	"fmt"
	"io"
	"iter"
	"os"
	"strings"

	"github.com/ulikunitz/xz"
)

const (
	initialLineBuffer = 1 << 20  // 1 MiB
	maxLineBuffer     = 64 << 20 // 64 MiB
)

// Lines is a lazy stream of untokenized lines.
type Lines = iter.Seq2[string, error]

// FromSlice returns a stream over lines.
func FromSlice(lines []string) Lines {
	return func(yield func(string, error) bool) {
		for _, line := range lines {
			if !yield(line, nil) {
				return
			}
		}
	}
}

// Collect drains a stream into a slice. It is meant for tests and small
// inputs; it defeats the point of streaming on a corpus.
func Collect[T any](seq iter.Seq2[T, error]) ([]T, error) {
	var out []T
	for item, err := range seq {
		if err != nil {
			return out, err
		}
		out = append(out, item)
	}
	return out, nil
}

// ReadLines streams the lines of the given files in order, without their
// line terminators. Files ending in ".xz" are decompressed on the fly.
// Each file is opened when the stream reaches it and closed when done.
func ReadLines(paths ...string) Lines {
	return func(yield func(string, error) bool) {
		for _, path := range paths {
			if !readFile(path, yield) {
				return
			}
		}
	}
}

// readFile yields the lines of one file and reports whether iteration should
// continue.
func readFile(path string, yield func(string, error) bool) bool {
	f, err := os.Open(path) //nolint:gosec // caller-provided corpus path
	if err != nil {
		yield("", fmt.Errorf("failed to open %s: %w", path, err))
		return false
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, ".xz") {
		xr, err := xz.NewReader(bufio.NewReader(f))
		if err != nil {
			yield("", fmt.Errorf("failed to open xz stream %s: %w", path, err))
			return false
		}
		r = xr
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, initialLineBuffer), maxLineBuffer)
	for scanner.Scan() {
		if !yield(scanner.Text(), nil) {
			return false
		}
	}
	if err := scanner.Err(); err != nil {
		yield("", fmt.Errorf("failed to read %s: %w", path, err))
		return false
	}

	return true
}
