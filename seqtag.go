package seqtag

import (
	"log/slog"

	"golang.org/x/text/unicode/norm"

	"github.com/jamesainslie/go-seqtag/segment"
	"github.com/jamesainslie/go-seqtag/sentence"
	"github.com/jamesainslie/go-seqtag/stream"
	"github.com/jamesainslie/go-seqtag/tagger"
	"github.com/jamesainslie/go-seqtag/tokenizer"
	"github.com/jamesainslie/go-seqtag/worker"
)

// tokensChunkSize is the fixed chunk capacity of the tokenize-only path.
const tokensChunkSize = 16

// Pipeline is a named, immutable composition of segmentation,
// normalization, batching, tagging, and stamping stages.
//
// A Pipeline holds only shared read-only handles (tokenizer, tagger,
// segmenter, worker pool) and scalar settings, so it is cheap to share
// across requests. Each call to Sentences, Tokens, or Annotations builds a
// fresh stage chain whose mutable state (segmenter queue, chunk buffers)
// is exclusively owned by that request.
type Pipeline struct {
	name        string
	description string

	encoder   tokenizer.Encoder
	tagger    tagger.Tagger
	segmenter segment.Segmenter
	pool      *worker.Pool

	batchSize int
	readAhead int
	maxLen    int
	form      norm.Form
	logger    *slog.Logger
}

// NewPipeline creates a pipeline over shared collaborator handles. The
// handles must be safe for concurrent read-only use; the pipeline never
// mutates them.
func NewPipeline(name string, encoder tokenizer.Encoder, tag tagger.Tagger, seg segment.Segmenter, pool *worker.Pool, opts ...Option) *Pipeline {
	p := &Pipeline{
		name:      name,
		encoder:   encoder,
		tagger:    tag,
		segmenter: seg,
		pool:      pool,
		batchSize: 32,
		readAhead: 4,
		form:      norm.NFC,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Name returns the pipeline's configured name.
func (p *Pipeline) Name() string { return p.name }

// Description returns the pipeline's human-readable description.
func (p *Pipeline) Description() string { return p.description }

// Sentences returns the segment pipeline: lines segmented into sentences
// with normalized token forms. No tagging is performed.
func (p *Pipeline) Sentences(lines stream.Stream[string]) stream.Stream[*sentence.Sentence] {
	return &normalizeStream{
		sentences: &sentenceStream{
			lines:     lines,
			segmenter: p.segmenter,
			pool:      p.pool,
		},
		form: p.form,
	}
}

// Tokens returns the tokenize-only pipeline: segmented, normalized
// sentences grouped into small fixed-size chunks for serialization.
func (p *Pipeline) Tokens(lines stream.Stream[string]) stream.Stream[[]*sentence.Sentence] {
	return stream.Chunks(p.Sentences(lines), tokensChunkSize)
}

// Annotations returns the annotate pipeline: the segment pipeline chunked
// at batch size times read-ahead, tagged in length-sorted sub-batches, and
// stamped with the pipeline name. The i-th sentence consumed upstream is
// the i-th sentence emitted, minus any dropped by the max_len filter.
func (p *Pipeline) Annotations(lines stream.Stream[string]) stream.Stream[[]*sentence.Sentence] {
	return &metadataStream{
		chunks: &annotateStream{
			chunks:    stream.Chunks(p.Sentences(lines), p.batchSize*p.readAhead),
			encoder:   p.encoder,
			tagger:    p.tagger,
			pool:      p.pool,
			batchSize: p.batchSize,
			maxLen:    p.maxLen,
			logger:    p.logger,
		},
		name: p.name,
	}
}
