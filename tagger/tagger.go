// Package tagger annotates encoded sentences with a sequence-tagging
// model.
//
// The pipeline treats taggers as opaque: a batch of encoded sentences goes
// in, the same sentences come back mutated with label attributes. Model
// parameters are immutable after load, so one tagger handle is shared
// read-only by every concurrent request.
package tagger

import (
	"context"

	"github.com/jamesainslie/go-seqtag/tokenizer"
)

// Tagger annotates a batch of encoded sentences in place.
//
// Tag must be safe for concurrent invocation: batches from many requests
// run in parallel on the worker pool.
type Tagger interface {
	Tag(ctx context.Context, batch []*tokenizer.Encoded) error
}
