package seqtag

import (
	"context"
	"log/slog"
	"sort"

	"github.com/jamesainslie/go-seqtag/sentence"
	"github.com/jamesainslie/go-seqtag/stream"
	"github.com/jamesainslie/go-seqtag/tagger"
	"github.com/jamesainslie/go-seqtag/tokenizer"
	"github.com/jamesainslie/go-seqtag/worker"
)

// annotateStream runs chunks of sentences through the tagger.
//
// Each chunk is encoded, length-filtered, and tagged in sub-batches sorted
// by ascending piece count to minimize padding. The sort operates on
// handles into the chunk's own storage: the tagger mutates sentences in
// place, so collecting results in the pre-sort order restores the original
// arrival order without an unsort step.
type annotateStream struct {
	chunks    stream.Stream[[]*sentence.Sentence]
	encoder   tokenizer.Encoder
	tagger    tagger.Tagger
	pool      *worker.Pool
	batchSize int
	maxLen    int
	logger    *slog.Logger
}

// Next returns the next annotated chunk.
func (a *annotateStream) Next(ctx context.Context) ([]*sentence.Sentence, error) {
	for {
		chunk, err := a.chunks.Next(ctx)
		if err != nil {
			return nil, err
		}
		if len(chunk) == 0 {
			panic("annotate: received empty chunk")
		}

		encoded := make([]*tokenizer.Encoded, 0, len(chunk))
		for _, sent := range chunk {
			enc := a.encoder.Encode(sent)
			if a.maxLen > 0 && enc.PieceCount() > a.maxLen {
				a.logger.Debug("dropping over-length sentence",
					"pieces", enc.PieceCount(), "max_len", a.maxLen)
				continue
			}
			encoded = append(encoded, enc)
		}
		if len(encoded) == 0 {
			// Every sentence was over-length; never emit an empty chunk.
			continue
		}

		if err := a.tagChunk(ctx, encoded); err != nil {
			return nil, err
		}

		annotated := make([]*sentence.Sentence, len(encoded))
		for i, enc := range encoded {
			annotated[i] = enc.Sentence
		}
		return annotated, nil
	}
}

// tagChunk dispatches the chunk to the tagger in length-sorted runs of at
// most batchSize, strictly one run in flight at a time. A failing run
// aborts the rest of the chunk; earlier runs' in-place mutations are not
// rolled back, but the chunk is never emitted.
func (a *annotateStream) tagChunk(ctx context.Context, encoded []*tokenizer.Encoded) error {
	sorted := make([]*tokenizer.Encoded, len(encoded))
	copy(sorted, encoded)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].PieceCount() < sorted[j].PieceCount()
	})

	for start := 0; start < len(sorted); start += a.batchSize {
		end := start + a.batchSize
		if end > len(sorted) {
			end = len(sorted)
		}
		run := sorted[start:end]

		_, err := worker.Do(ctx, a.pool, func() (struct{}, error) {
			return struct{}{}, a.tagger.Tag(ctx, run)
		})
		if err != nil {
			return wrapStage(ErrInference, err)
		}
	}
	return nil
}
