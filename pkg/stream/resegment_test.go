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

package stream_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/llm-d/llm-d-text-corpus/pkg/stream"
)

// MockSplitter is a mock implementation of the SentenceSplitter interface.
type MockSplitter struct {
	mock.Mock
}

func (m *MockSplitter) Split(ctx context.Context, lines []string) ([]string, error) {
	args := m.Called(ctx, lines)
	sentences, _ := args.Get(0).([]string)
	return sentences, args.Error(1)
}

// splitOnPeriods breaks every line after each ". ".
func splitOnPeriods(lines []string) []string {
	var out []string
	for _, line := range lines {
		for _, s := range strings.SplitAfter(line, ". ") {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}

func TestResegmenterConfiguration(t *testing.T) {
	_, err := stream.NewSentenceResegmenter(&MockSplitter{}, 0)
	require.ErrorIs(t, err, stream.ErrConfiguration)

	_, err = stream.NewSentenceResegmenter(nil, 1)
	require.ErrorIs(t, err, stream.ErrConfiguration)

	cfg := stream.DefaultResegmentConfig()
	assert.Equal(t, 1, cfg.ReadN)
	assert.Equal(t, "en", cfg.Lang)
}

func TestResegmenterBatches(t *testing.T) {
	splitter := &MockSplitter{}
	splitter.On("Split", mock.Anything, []string{"A. B.", "C."}).
		Return([]string{"A.", "B.", "C."}, nil).Once()
	splitter.On("Split", mock.Anything, []string{"D. E."}).
		Return([]string{"D.", "E."}, nil).Once()

	r, err := stream.NewSentenceResegmenter(splitter, 2)
	require.NoError(t, err)

	got, err := stream.Collect(r.Apply(t.Context(), stream.FromSlice([]string{"A. B.", "C.", "D. E."})))
	require.NoError(t, err)
	assert.Equal(t, []string{"A.", "B.", "C.", "D.", "E."}, got)
	splitter.AssertExpectations(t)
}

func TestResegmenterSkipsBlankLines(t *testing.T) {
	splitter := &MockSplitter{}
	splitter.On("Split", mock.Anything, []string{"One. Two."}).
		Return([]string{"One.", "Two."}, nil).Once()

	r, err := stream.NewSentenceResegmenter(splitter, 2)
	require.NoError(t, err)

	in := stream.FromSlice([]string{"", "  ", "One. Two.", "\t"})
	got, err := stream.Collect(r.Apply(t.Context(), in))
	require.NoError(t, err)
	assert.Equal(t, []string{"One.", "Two."}, got)

	// the all-blank batch never reaches the splitter
	splitter.AssertNumberOfCalls(t, "Split", 1)
}

func TestResegmenterWholeInput(t *testing.T) {
	splitter := &splitOnPeriodsSplitter{}
	r, err := stream.NewSentenceResegmenter(splitter, -1)
	require.NoError(t, err)

	in := make([]string, 3000)
	for i := range in {
		in[i] = "x. y."
	}
	got, err := stream.Collect(r.Apply(t.Context(), stream.FromSlice(in)))
	require.NoError(t, err)
	assert.Len(t, got, 6000)
	assert.Equal(t, 1, splitter.calls)
}

func TestResegmenterEmptyInput(t *testing.T) {
	splitter := &MockSplitter{}
	r, err := stream.NewSentenceResegmenter(splitter, -1)
	require.NoError(t, err)

	got, err := stream.Collect(r.Apply(t.Context(), stream.FromSlice(nil)))
	require.NoError(t, err)
	assert.Empty(t, got)
	splitter.AssertNotCalled(t, "Split", mock.Anything, mock.Anything)
}

func TestResegmenterPropagatesSplitterError(t *testing.T) {
	boom := errors.New("splitter failed")
	splitter := &MockSplitter{}
	splitter.On("Split", mock.Anything, []string{"a"}).Return([]string{"a"}, nil).Once()
	splitter.On("Split", mock.Anything, []string{"b"}).Return(nil, boom).Once()

	r, err := stream.NewSentenceResegmenter(splitter, 1)
	require.NoError(t, err)

	got, err := stream.Collect(r.Apply(t.Context(), stream.FromSlice([]string{"a", "b", "c"})))
	require.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"a"}, got)
	splitter.AssertExpectations(t)
}

type splitOnPeriodsSplitter struct {
	calls int
}

func (s *splitOnPeriodsSplitter) Split(_ context.Context, lines []string) ([]string, error) {
	s.calls++
	return splitOnPeriods(lines), nil
}
