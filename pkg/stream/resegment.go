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
	"context"
	"fmt"
	"strings"

	"k8s.io/klog/v2"

	"github.com/llm-d/llm-d-text-corpus/pkg/textproc"
	"github.com/llm-d/llm-d-text-corpus/pkg/utils/logging"
)

// maxPreallocatedBatch caps the batch capacity reserved up front.
const maxPreallocatedBatch = 1024

// ResegmentConfig holds the configuration for the SentenceResegmenter.
type ResegmentConfig struct {
	// ReadN is the number of input lines sent to the splitter per call.
	// -1 sends the whole input at once, which loads it into memory.
	ReadN int `json:"readN"`
	// Lang selects the rules of the reference sentence splitter.
	Lang string `json:"lang"`
}

// DefaultResegmentConfig returns per-line resegmentation for English.
func DefaultResegmentConfig() *ResegmentConfig {
	return &ResegmentConfig{
		ReadN: 1,
		Lang:  "en",
	}
}

// SentenceResegmenter batches a line stream and re-splits each batch into
// sentences. The output line count differs from the input line count.
type SentenceResegmenter struct {
	splitter textproc.SentenceSplitter
	readN    int
}

// NewSentenceResegmenter creates a resegmenter sending readN lines per call
// to splitter. A negative readN sends the whole input in one call.
func NewSentenceResegmenter(splitter textproc.SentenceSplitter, readN int) (*SentenceResegmenter, error) {
	if splitter == nil {
		return nil, fmt.Errorf("%w: nil sentence splitter", ErrConfiguration)
	}
	if readN == 0 {
		return nil, fmt.Errorf("%w: read size must be positive or -1 for the whole input", ErrConfiguration)
	}

	return &SentenceResegmenter{
		splitter: splitter,
		readN:    readN,
	}, nil
}

// Apply returns the resegmented stream. Blank lines are dropped before
// reaching the splitter, and batches left empty are not sent at all.
func (r *SentenceResegmenter) Apply(ctx context.Context, lines Lines) Lines {
	logger := klog.FromContext(ctx).WithName("stream.SentenceResegmenter")
	if r.readN < 0 {
		logger.Info("sentence splitting reads the whole input into memory", "readN", r.readN)
	}
	traceLogger := logger.V(logging.TRACE)

	return func(yield func(string, error) bool) {
		batch := make([]string, 0, r.batchCapacity())

		flush := func() bool {
			kept := make([]string, 0, len(batch))
			for _, line := range batch {
				if strings.TrimSpace(line) != "" {
					kept = append(kept, line)
				}
			}
			batch = batch[:0]
			if len(kept) == 0 {
				return true
			}

			sentences, err := r.splitter.Split(ctx, kept)
			if err != nil {
				yield("", err)
				return false
			}
			traceLogger.Info("resegmented batch", "lines", len(kept), "sentences", len(sentences))

			for _, sentence := range sentences {
				if !yield(sentence, nil) {
					return false
				}
			}
			return true
		}

		for line, err := range lines {
			if err != nil {
				yield("", err)
				return
			}

			batch = append(batch, line)
			if r.readN > 0 && len(batch) >= r.readN {
				if !flush() {
					return
				}
			}
		}
		flush()
	}
}

func (r *SentenceResegmenter) batchCapacity() int {
	if r.readN < 0 {
		return maxPreallocatedBatch
	}
	return min(r.readN, maxPreallocatedBatch)
}
