// Package tokenizer implements SentencePiece Unigram encoding of sentences
// into the piece sequences consumed by sequence-tagging models.
package tokenizer

import (
	"fmt"

	"github.com/jamesainslie/go-seqtag/sentence"
)

// Encoded is a sentence together with its model-specific piece encoding.
//
// IDs holds the full piece sequence, framed by BOS and EOS. TokenPieces[i]
// is the index into IDs of the first piece of token i, so taggers can map
// per-piece model output back onto tokens. Encoded aliases the sentence it
// was built from; mutating the sentence through either reference is
// observed by both.
type Encoded struct {
	Sentence    *sentence.Sentence
	IDs         []int64
	TokenPieces []int
}

// PieceCount returns the number of pieces, including BOS and EOS. It is
// the sort key for length-ordered batching and the quantity bounded by a
// pipeline's max_len.
func (e *Encoded) PieceCount() int { return len(e.IDs) }

// Encoder converts sentences into their piece encodings.
//
// Encode is pure with respect to the sentence: it reads token forms and
// never mutates. Implementations must be safe for concurrent use.
type Encoder interface {
	Encode(s *sentence.Sentence) *Encoded
}

// Tokenizer is a SentencePiece Unigram encoder.
//
// Each token form is encoded independently with the Viterbi algorithm over
// the piece vocabulary, prefixed with the SentencePiece word marker, so
// token-to-piece alignment is exact by construction.
type Tokenizer struct {
	scores      map[string]float32
	ids         map[string]int64
	maxPieceLen int // in runes

	bosID int64
	eosID int64
	unkID int64

	unkScore float32
}

// Special piece strings looked up in the vocabulary.
const (
	bosPiece = "<s>"
	eosPiece = "</s>"
	unkPiece = "<unk>"
)

// New loads a tokenizer from a SentencePiece .model file.
func New(modelPath string) (*Tokenizer, error) {
	model, err := LoadModel(modelPath)
	if err != nil {
		return nil, fmt.Errorf("loading model: %w", err)
	}
	return FromModel(model)
}

// FromModel builds a tokenizer from an already-parsed model.
func FromModel(model *Model) (*Tokenizer, error) {
	t := &Tokenizer{
		scores: make(map[string]float32, len(model.Pieces)),
		ids:    make(map[string]int64, len(model.Pieces)),
		bosID:  -1,
		eosID:  -1,
		unkID:  -1,
	}

	for i, piece := range model.Pieces {
		t.ids[piece.Piece] = int64(i)

		switch piece.Type {
		case PieceUnknown:
			t.unkID = int64(i)
			t.unkScore = piece.Score
		case PieceControl:
			switch piece.Piece {
			case bosPiece:
				t.bosID = int64(i)
			case eosPiece:
				t.eosID = int64(i)
			}
		default:
			t.scores[piece.Piece] = piece.Score
			if n := len([]rune(piece.Piece)); n > t.maxPieceLen {
				t.maxPieceLen = n
			}
		}
	}

	if t.unkID < 0 {
		if id, ok := t.ids[unkPiece]; ok {
			t.unkID = id
		} else {
			return nil, fmt.Errorf("vocabulary has no unknown piece")
		}
	}
	if t.bosID < 0 {
		t.bosID = t.unkID
	}
	if t.eosID < 0 {
		t.eosID = t.unkID
	}

	return t, nil
}

// VocabSize returns the number of vocabulary pieces.
func (t *Tokenizer) VocabSize() int { return len(t.ids) }

// Encode converts a sentence into its piece encoding.
func (t *Tokenizer) Encode(s *sentence.Sentence) *Encoded {
	enc := &Encoded{
		Sentence:    s,
		IDs:         make([]int64, 0, len(s.Tokens)+2),
		TokenPieces: make([]int, len(s.Tokens)),
	}

	enc.IDs = append(enc.IDs, t.bosID)
	for i, token := range s.Tokens {
		enc.TokenPieces[i] = len(enc.IDs)
		enc.IDs = append(enc.IDs, t.encodeWord(token.Form())...)
	}
	enc.IDs = append(enc.IDs, t.eosID)

	return enc
}

// EncodeWord returns the piece ids of a single word, without BOS/EOS
// framing. The boundary-model segmenter uses it to encode words before a
// sentence exists.
func (t *Tokenizer) EncodeWord(form string) []int64 {
	return t.encodeWord(form)
}

// encodeWord runs Viterbi segmentation of a single token form over the
// piece vocabulary and returns its piece ids.
func (t *Tokenizer) encodeWord(form string) []int64 {
	runes := []rune(normalizeWord(form))
	n := len(runes)
	if n == 0 {
		return []int64{t.unkID}
	}

	const negInf = -1e9

	// best[i] is the best log probability of segmenting runes[0:i];
	// parent[i] the start of the piece ending at i.
	best := make([]float64, n+1)
	parent := make([]int, n+1)
	pieceAt := make([]string, n+1)
	for i := 1; i <= n; i++ {
		best[i] = negInf
		parent[i] = -1
	}

	for i := 1; i <= n; i++ {
		maxLen := t.maxPieceLen
		if maxLen > i {
			maxLen = i
		}

		for length := 1; length <= maxLen; length++ {
			j := i - length
			substr := string(runes[j:i])

			score, ok := t.scores[substr]
			if !ok {
				continue
			}

			candidate := best[j] + float64(score)
			if candidate > best[i] {
				best[i] = candidate
				parent[i] = j
				pieceAt[i] = substr
			}
		}

		// No piece covers this position: fall back to <unk> for one rune.
		if parent[i] == -1 {
			best[i] = best[i-1] + float64(t.unkScore)
			parent[i] = i - 1
			pieceAt[i] = ""
		}
	}

	var ids []int64
	for pos := n; pos > 0; pos = parent[pos] {
		id := t.unkID
		if piece := pieceAt[pos]; piece != "" {
			id = t.ids[piece]
		}
		ids = append(ids, id)
	}

	for i, j := 0, len(ids)-1; i < j; i, j = i+1, j-1 {
		ids[i], ids[j] = ids[j], ids[i]
	}
	return ids
}
