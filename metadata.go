package seqtag

import (
	"context"

	"github.com/jamesainslie/go-seqtag/sentence"
	"github.com/jamesainslie/go-seqtag/stream"
)

// commentAttr is the comment key recording which pipeline produced a
// sentence.
const commentAttr = "pipeline"

// metadataStream stamps every sentence of a chunk with the owning
// pipeline's name. Pure and synchronous.
type metadataStream struct {
	chunks stream.Stream[[]*sentence.Sentence]
	name   string
}

// Next returns the next stamped chunk.
func (m *metadataStream) Next(ctx context.Context) ([]*sentence.Sentence, error) {
	chunk, err := m.chunks.Next(ctx)
	if err != nil {
		return nil, err
	}
	for _, sent := range chunk {
		sent.AddComment(commentAttr, m.name)
	}
	return chunk, nil
}
