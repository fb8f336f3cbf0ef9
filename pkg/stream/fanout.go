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

import "iter"

// Fanout broadcasts one stream to n independent cursors. The source is
// pulled once; each item is queued for every open cursor that has not read
// it yet, so a cursor buffers only its unread tail. Cursors driven in
// lockstep keep every buffer at one item at most.
//
// A Fanout is not safe for concurrent use.
type Fanout[T any] struct {
	next   func() (T, error, bool)
	stop   func()
	queues [][]T
	closed []bool
	done   bool
	err    error
}

// NewFanout creates a broadcaster of seq to n cursors. Close must be called
// to release the source if the cursors are not drained.
func NewFanout[T any](seq iter.Seq2[T, error], n int) *Fanout[T] {
	next, stop := iter.Pull2(seq)
	return &Fanout[T]{
		next:   next,
		stop:   stop,
		queues: make([][]T, n),
		closed: make([]bool, n),
	}
}

// Cursor returns the k-th reader of the broadcast.
func (f *Fanout[T]) Cursor(k int) *Cursor[T] {
	return &Cursor[T]{fanout: f, k: k}
}

// Buffered returns the number of items queued for cursor k.
func (f *Fanout[T]) Buffered(k int) int {
	return len(f.queues[k])
}

// Close stops the source.
func (f *Fanout[T]) Close() {
	f.done = true
	f.stop()
}

func (f *Fanout[T]) pull(k int) (T, bool, error) {
	var zero T
	if q := f.queues[k]; len(q) > 0 {
		item := q[0]
		q[0] = zero
		f.queues[k] = q[1:]
		return item, true, nil
	}
	if f.done {
		return zero, false, f.err
	}

	item, err, ok := f.next()
	switch {
	case !ok:
		f.done = true
		f.stop()
		return zero, false, nil
	case err != nil:
		f.done = true
		f.err = err
		f.stop()
		return zero, false, err
	}

	for j := range f.queues {
		if j != k && !f.closed[j] {
			f.queues[j] = append(f.queues[j], item)
		}
	}
	return item, true, nil
}

// Cursor is one reader of a Fanout.
type Cursor[T any] struct {
	fanout *Fanout[T]
	k      int
}

// Next returns the next item for this cursor. ok is false once the source is
// exhausted or failed; a source error is reported to every cursor.
func (c *Cursor[T]) Next() (item T, ok bool, err error) {
	return c.fanout.pull(c.k)
}

// Close detaches the cursor: its queue is dropped and no more items are
// buffered for it.
func (c *Cursor[T]) Close() {
	c.fanout.closed[c.k] = true
	c.fanout.queues[c.k] = nil
}

// Seq returns the cursor as a stream.
func (c *Cursor[T]) Seq() iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		for {
			item, ok, err := c.Next()
			if err != nil {
				yield(item, err)
				return
			}
			if !ok || !yield(item, nil) {
				return
			}
		}
	}
}
