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

// Package stream holds the lazy, pull-based line plumbing: readers,
// tokenization, fan-out of interleaved streams, line transforms, sentence
// resegmentation and length bounding.
//
// Every stage is an iter.Seq2 whose error element terminates the stream.
// Stages do not buffer beyond what they need: the resegmenter holds one
// batch, the length bounder holds its ledger and the parts of one line.
package stream

import "errors"

var (
	// ErrConfiguration reports a meaningless stage configuration, rejected at
	// construction.
	ErrConfiguration = errors.New("invalid configuration")
	// ErrLedgerUnderrun reports a join that received a part for which no
	// ledger entry has been produced.
	ErrLedgerUnderrun = errors.New("ledger underrun")
	// ErrIncompleteLine reports a join whose input ended in the middle of a
	// split line.
	ErrIncompleteLine = errors.New("incomplete line")
	// ErrUnaligned reports parallel streams of different lengths.
	ErrUnaligned = errors.New("unaligned streams")
	// ErrConsumed reports a second iteration over a single-use stream.
	ErrConsumed = errors.New("stream already consumed")
)
