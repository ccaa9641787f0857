package tagger

import (
	"context"
	"fmt"

	"github.com/jamesainslie/go-seqtag/inference"
	"github.com/jamesainslie/go-seqtag/tokenizer"
)

// ONNX is a Tagger backed by an ONNX sequence-labeling model. The model
// produces one logit vector per piece; each token takes the argmax label
// of its first piece.
type ONNX struct {
	pool   *inference.Pool
	labels *Labels
}

// LoadONNX creates an ONNX tagger from a model file and a YAML label
// vocabulary, with poolSize concurrent sessions.
func LoadONNX(modelPath, labelsPath string, poolSize int) (*ONNX, error) {
	labels, err := LoadLabels(labelsPath)
	if err != nil {
		return nil, err
	}

	pool, err := inference.NewPool(modelPath, poolSize)
	if err != nil {
		return nil, fmt.Errorf("loading tagger model: %w", err)
	}

	return &ONNX{pool: pool, labels: labels}, nil
}

// padBatch pads every encoding to the batch's longest piece sequence.
// Padding positions keep piece id 0; the attention mask zeroes them, so the
// model never attends to the pad id.
func padBatch(batch []*tokenizer.Encoded) (inputIDs, attentionMask [][]int64) {
	maxLen := 0
	for _, enc := range batch {
		if enc.PieceCount() > maxLen {
			maxLen = enc.PieceCount()
		}
	}

	inputIDs = make([][]int64, len(batch))
	attentionMask = make([][]int64, len(batch))
	for i, enc := range batch {
		ids := make([]int64, maxLen)
		mask := make([]int64, maxLen)
		copy(ids, enc.IDs)
		for j := 0; j < len(enc.IDs); j++ {
			mask[j] = 1
		}
		inputIDs[i] = ids
		attentionMask[i] = mask
	}
	return inputIDs, attentionMask
}

// Tag implements Tagger.
func (t *ONNX) Tag(ctx context.Context, batch []*tokenizer.Encoded) error {
	if len(batch) == 0 {
		return nil
	}

	inputIDs, attentionMask := padBatch(batch)

	logits, err := t.pool.Run(ctx, inputIDs, attentionMask)
	if err != nil {
		return err
	}
	if logits.Classes != t.labels.Len() {
		return fmt.Errorf("model emits %d classes, label file defines %d", logits.Classes, t.labels.Len())
	}

	for i, enc := range batch {
		for tok, piece := range enc.TokenPieces {
			row := logits.Row(i, piece)
			best := 0
			for c := 1; c < len(row); c++ {
				if row[c] > row[best] {
					best = c
				}
			}
			enc.Sentence.Tokens[tok].SetAttr(t.labels.Attribute, t.labels.Labels[best])
		}
	}

	return nil
}

// Close releases the tagger's inference sessions.
func (t *ONNX) Close() error {
	return t.pool.Close()
}
