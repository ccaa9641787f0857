// Package stream provides a pull-driven, context-aware stream abstraction
// used to compose the annotation pipeline.
//
// A Stream yields one item per call to Next. Exhaustion is signaled with
// io.EOF; any other error is terminal for the stream. Streams are not safe
// for concurrent use: each pipeline instance owns its streams exclusively
// and pulls them from a single goroutine.
package stream

import (
	"context"
	"errors"
	"io"
)

// ErrRead indicates that reading from the underlying input failed.
var ErrRead = errors.New("stream: read failed")

// Stream yields items of type T one at a time.
//
// Next returns io.EOF when the stream is exhausted. After a non-nil error,
// the stream must not be pulled again.
type Stream[T any] interface {
	Next(ctx context.Context) (T, error)
}

// Func adapts a function to the Stream interface.
type Func[T any] func(ctx context.Context) (T, error)

// Next calls f.
func (f Func[T]) Next(ctx context.Context) (T, error) { return f(ctx) }

// Of returns a stream over the given items.
func Of[T any](items ...T) Stream[T] {
	i := 0
	return Func[T](func(ctx context.Context) (T, error) {
		var zero T
		if err := ctx.Err(); err != nil {
			return zero, err
		}
		if i >= len(items) {
			return zero, io.EOF
		}
		item := items[i]
		i++
		return item, nil
	})
}

// Collect drains a stream into a slice.
func Collect[T any](ctx context.Context, s Stream[T]) ([]T, error) {
	var items []T
	for {
		item, err := s.Next(ctx)
		if errors.Is(err, io.EOF) {
			return items, nil
		}
		if err != nil {
			return items, err
		}
		items = append(items, item)
	}
}
