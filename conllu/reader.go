package conllu

import (
	"bytes"
	"context"
	"errors"
	"io"

	"github.com/jamesainslie/go-seqtag/sentence"
	"github.com/jamesainslie/go-seqtag/stream"
)

// StreamReader adapts a stream of sentence chunks into an io.Reader of
// CoNLL-U text, pulling one chunk at a time so responses stream without
// whole-request buffering. Blocks are separated by a blank line, with none
// before the first block.
//
// A StreamReader belongs to one request; it is not safe for concurrent
// use. The context given at construction bounds every upstream pull,
// because io.Reader carries none.
type StreamReader struct {
	ctx    context.Context
	chunks stream.Stream[[]*sentence.Sentence]
	buf    bytes.Buffer
	first  bool
	done   bool
	err    error
}

// NewStreamReader creates a StreamReader over chunks.
func NewStreamReader(ctx context.Context, chunks stream.Stream[[]*sentence.Sentence]) *StreamReader {
	return &StreamReader{ctx: ctx, chunks: chunks, first: true}
}

// Read implements io.Reader. Errors from upstream stages surface here; any
// bytes already returned stay delivered, so a mid-stream failure yields
// legitimately truncated output. The first failure is latched: partially
// serialized bytes of the failing chunk are discarded, every later Read
// returns the same error, and the upstream stream is never pulled again.
func (r *StreamReader) Read(p []byte) (int, error) {
	for r.buf.Len() == 0 {
		if r.err != nil {
			return 0, r.err
		}
		if r.done {
			return 0, io.EOF
		}
		if err := r.fill(); err != nil {
			if errors.Is(err, io.EOF) {
				r.done = true
				continue
			}
			r.buf.Reset()
			r.err = err
			return 0, err
		}
	}
	return r.buf.Read(p)
}

// fill serializes the next chunk into the buffer.
func (r *StreamReader) fill() error {
	chunk, err := r.chunks.Next(r.ctx)
	if err != nil {
		return err
	}

	w := NewWriter(&r.buf)
	for _, sent := range chunk {
		if !r.first {
			r.buf.WriteByte('\n')
		}
		r.first = false
		if err := w.WriteSentence(sent); err != nil {
			return err
		}
	}
	return nil
}
