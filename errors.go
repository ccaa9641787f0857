package seqtag

import (
	"context"
	"errors"
	"fmt"
)

// Sentinel errors for conditions callers may need to handle differently.
// All errors are request-scoped: a failing pipeline instance never affects
// concurrently running instances, and nothing is retried.
var (
	// ErrSegment indicates the segmenter rejected a line of input.
	ErrSegment = errors.New("seqtag: cannot segment input")

	// ErrInference indicates the tagger failed on a batch.
	ErrInference = errors.New("seqtag: inference failed")
)

// wrapStage tags err with a stage sentinel. Cancellation passes through
// unchanged: a client disconnect is not a segmentation or inference
// failure.
func wrapStage(sentinel, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return fmt.Errorf("%w: %w", sentinel, err)
}
