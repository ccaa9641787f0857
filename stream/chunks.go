package stream

import (
	"context"
	"errors"
	"io"
)

// Chunker groups the items of an upstream stream into bounded chunks.
//
// A chunk is emitted when it reaches the configured capacity, or, for the
// final chunk, when upstream is exhausted. Emitted chunks are never empty
// and preserve arrival order. An upstream error is propagated immediately;
// items buffered at that point are discarded, not emitted.
type Chunker[T any] struct {
	upstream Stream[T]
	buf      []T
	capacity int
}

// Chunks wraps upstream in a Chunker with the given capacity. Capacity
// values below 1 are treated as 1.
func Chunks[T any](upstream Stream[T], capacity int) *Chunker[T] {
	if capacity < 1 {
		capacity = 1
	}
	return &Chunker[T]{
		upstream: upstream,
		buf:      make([]T, 0, capacity),
		capacity: capacity,
	}
}

// Next returns the next chunk.
func (c *Chunker[T]) Next(ctx context.Context) ([]T, error) {
	for {
		item, err := c.upstream.Next(ctx)
		if errors.Is(err, io.EOF) {
			if len(c.buf) > 0 {
				return c.take(), nil
			}
			return nil, io.EOF
		}
		if err != nil {
			c.buf = c.buf[:0]
			return nil, err
		}

		c.buf = append(c.buf, item)
		if len(c.buf) == c.capacity {
			return c.take(), nil
		}
	}
}

func (c *Chunker[T]) take() []T {
	chunk := c.buf
	c.buf = make([]T, 0, c.capacity)
	return chunk
}
