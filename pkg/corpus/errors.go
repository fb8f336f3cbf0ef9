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

// Package corpus stores tokenized corpora on disk for random access.
//
// A store under prefix P is a pair of files: P.memmap holds the token ids of
// every line back to back, fixed width, in machine byte order; and
// P.lengths.msgpack holds the id width and the number of ids of each line.
// The id file is memory-mapped on load and never copied into memory; line
// offsets are derived from the lengths.
//
// A store is complete only when both files exist: a build removes the old
// lengths file first and writes the new one last, so an interrupted build
// leaves no complete pair and is redone on the next run.
package corpus

import "errors"

var (
	// ErrNotFound reports a store whose files are missing or incomplete.
	ErrNotFound = errors.New("token store not found")
	// ErrIntegrity reports store files that disagree with each other.
	ErrIntegrity = errors.New("token store integrity check failed")
	// ErrOutOfRange reports an access to a line that does not exist.
	ErrOutOfRange = errors.New("line index out of range")
	// ErrConfiguration reports a meaningless store configuration.
	ErrConfiguration = errors.New("invalid configuration")
	// ErrIDOverflow reports a token id that does not fit the id width.
	ErrIDOverflow = errors.New("token id overflows id width")
	// ErrClosed reports an access to a closed store.
	ErrClosed = errors.New("token store closed")
)
