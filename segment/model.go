package segment

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/jamesainslie/go-seqtag/inference"
	"github.com/jamesainslie/go-seqtag/tokenizer"
)

const (
	// maxSeqLen caps the piece count of one model invocation. Longer
	// lines are processed in overlapping windows.
	maxSeqLen = 512

	// windowOverlap is the number of overlapping words between windows,
	// so boundary detection stays stable near window edges.
	windowOverlap = 16

	// defaultThreshold is the boundary probability above which a word
	// ends a sentence.
	defaultThreshold = 0.025
)

// Model is a segmenter backed by a sentence-boundary ONNX model. Words are
// encoded to pieces; the logit of each word's final piece gives the
// probability that a sentence ends after that word.
type Model struct {
	tok       *tokenizer.Tokenizer
	pool      *inference.Pool
	threshold float32
}

// ModelOption configures a Model segmenter.
type ModelOption func(*Model)

// WithThreshold sets the boundary probability threshold.
func WithThreshold(t float32) ModelOption {
	return func(m *Model) {
		if t > 0 {
			m.threshold = t
		}
	}
}

// NewModel creates a boundary-model segmenter. The tokenizer and session
// pool are shared handles owned by the caller.
func NewModel(tok *tokenizer.Tokenizer, pool *inference.Pool, opts ...ModelOption) *Model {
	m := &Model{tok: tok, pool: pool, threshold: defaultThreshold}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// word is one whitespace-delimited word with its piece encoding.
type word struct {
	text   string
	pieces []int64
}

// Segment implements Segmenter.
func (m *Model) Segment(ctx context.Context, line string) ([][]string, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil, nil
	}

	words := make([]word, len(fields))
	for i, f := range fields {
		words[i] = word{text: f, pieces: m.tok.EncodeWord(f)}
	}

	probs, err := m.boundaryProbs(ctx, words)
	if err != nil {
		return nil, err
	}

	var groups [][]string
	start := 0
	for i := range words {
		if probs[i] > m.threshold && i < len(words)-1 {
			groups = append(groups, fields[start:i+1])
			start = i + 1
		}
	}
	groups = append(groups, fields[start:])

	return groups, nil
}

// boundaryProbs returns the per-word probability that a sentence boundary
// follows the word. Long inputs are windowed with overlap; overlapping
// logits are averaged.
func (m *Model) boundaryProbs(ctx context.Context, words []word) ([]float32, error) {
	logits := make([]float32, len(words))
	counts := make([]int, len(words))

	start := 0
	for start < len(words) {
		end, err := m.window(ctx, words, start, logits, counts)
		if err != nil {
			return nil, err
		}
		if end >= len(words) {
			break
		}
		next := end - windowOverlap
		if next <= start {
			next = start + 1
		}
		start = next
	}

	probs := make([]float32, len(words))
	for i := range logits {
		if counts[i] > 1 {
			logits[i] /= float32(counts[i])
		}
		probs[i] = sigmoid(logits[i])
	}
	return probs, nil
}

// window runs one model invocation over words[start:...] up to maxSeqLen
// pieces and accumulates each word's final-piece logit. It returns the
// index one past the last word it covered.
func (m *Model) window(ctx context.Context, words []word, start int, logits []float32, counts []int) (int, error) {
	if len(words[start].pieces) > maxSeqLen {
		return 0, fmt.Errorf("word %q exceeds maximum sequence length", words[start].text)
	}

	ids := make([]int64, 0, maxSeqLen)
	lastPiece := make([]int, 0, len(words)-start)

	end := start
	for end < len(words) {
		pieces := words[end].pieces
		if len(ids)+len(pieces) > maxSeqLen {
			break
		}
		ids = append(ids, pieces...)
		lastPiece = append(lastPiece, len(ids)-1)
		end++
	}

	mask := make([]int64, len(ids))
	for i := range mask {
		mask[i] = 1
	}

	out, err := m.pool.Run(ctx, [][]int64{ids}, [][]int64{mask})
	if err != nil {
		return 0, err
	}

	for i, pos := range lastPiece {
		logits[start+i] += out.Row(0, pos)[0]
		counts[start+i]++
	}
	return end, nil
}

func sigmoid(x float32) float32 {
	return float32(1.0 / (1.0 + math.Exp(float64(-x))))
}
