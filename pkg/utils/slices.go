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

package utils

// SliceMap applies a function to each element of a slice and returns a new
// slice with the results.
func SliceMap[Domain, Range any](slice []Domain, fn func(Domain) Range) []Range {
	if slice == nil {
		return nil
	}

	ans := make([]Range, len(slice))
	for idx, elt := range slice {
		ans[idx] = fn(elt)
	}

	return ans
}

// SliceMapE is like SliceMap but stops at the first error returned by fn.
func SliceMapE[Domain, Range any](slice []Domain, fn func(Domain) (Range, error)) ([]Range, error) {
	if slice == nil {
		return nil, nil
	}

	ans := make([]Range, len(slice))
	for idx, elt := range slice {
		res, err := fn(elt)
		if err != nil {
			return nil, err
		}
		ans[idx] = res
	}

	return ans, nil
}

// SliceChunk partitions a slice into consecutive chunks of at most size
// elements. The last chunk holds the remainder. A negative size returns the
// whole slice as a single chunk; a zero size is invalid and returns nil.
// Chunks share the backing array of the input.
func SliceChunk[T any](slice []T, size int) [][]T {
	switch {
	case size < 0:
		return [][]T{slice}
	case size == 0:
		return nil
	}

	chunks := make([][]T, 0, len(slice)/size+1)
	for len(slice) > size {
		chunks = append(chunks, slice[:size:size])
		slice = slice[size:]
	}

	return append(chunks, slice)
}
