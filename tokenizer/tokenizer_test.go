package tokenizer

import (
	"testing"

	"github.com/jamesainslie/go-seqtag/sentence"
)

// testModel builds a small in-memory vocabulary. Index layout:
// 0 <unk>, 1 <s>, 2 </s>, then the normal pieces in order.
func testModel(pieces ...string) *Model {
	m := &Model{
		Pieces: []Piece{
			{Piece: "<unk>", Score: -10, Type: PieceUnknown},
			{Piece: "<s>", Type: PieceControl},
			{Piece: "</s>", Type: PieceControl},
		},
	}
	for i, p := range pieces {
		m.Pieces = append(m.Pieces, Piece{Piece: p, Score: float32(-1 - i), Type: PieceNormal})
	}
	return m
}

func TestFromModel(t *testing.T) {
	tok, err := FromModel(testModel("▁hello", "▁world"))
	if err != nil {
		t.Fatalf("FromModel failed: %v", err)
	}

	if tok.VocabSize() != 5 {
		t.Errorf("expected vocab size 5, got %d", tok.VocabSize())
	}
	if tok.bosID != 1 || tok.eosID != 2 || tok.unkID != 0 {
		t.Errorf("unexpected special ids: bos=%d eos=%d unk=%d", tok.bosID, tok.eosID, tok.unkID)
	}
}

func TestFromModel_NoUnknownPiece(t *testing.T) {
	m := &Model{Pieces: []Piece{{Piece: "▁a", Score: -1, Type: PieceNormal}}}
	if _, err := FromModel(m); err == nil {
		t.Error("expected error for vocabulary without unknown piece")
	}
}

func TestEncode_Alignment(t *testing.T) {
	// "▁hel" + "lo" forces a two-piece word.
	tok, err := FromModel(testModel("▁hello", "▁hel", "lo", "▁world"))
	if err != nil {
		t.Fatalf("FromModel failed: %v", err)
	}

	s := sentence.New("hello", "world")
	enc := tok.Encode(s)

	if enc.Sentence != s {
		t.Error("expected encoding to alias the sentence")
	}
	if len(enc.TokenPieces) != 2 {
		t.Fatalf("expected 2 token offsets, got %d", len(enc.TokenPieces))
	}

	// BOS, ▁hello, ▁world, EOS.
	if enc.PieceCount() != 4 {
		t.Fatalf("expected 4 pieces, got %d: %v", enc.PieceCount(), enc.IDs)
	}
	if enc.IDs[0] != tok.bosID || enc.IDs[len(enc.IDs)-1] != tok.eosID {
		t.Errorf("expected BOS/EOS framing, got %v", enc.IDs)
	}
	if enc.TokenPieces[0] != 1 || enc.TokenPieces[1] != 2 {
		t.Errorf("unexpected alignment: %v", enc.TokenPieces)
	}
}

func TestEncode_ViterbiPrefersBestScore(t *testing.T) {
	// Single piece "▁ab" scores -1; "▁a"+"b" would cost -2 + -3.
	tok, err := FromModel(testModel("▁ab", "▁a", "b"))
	if err != nil {
		t.Fatalf("FromModel failed: %v", err)
	}

	ids := tok.EncodeWord("ab")
	if len(ids) != 1 {
		t.Fatalf("expected single best piece, got %v", ids)
	}
	if ids[0] != tok.ids["▁ab"] {
		t.Errorf("expected piece ▁ab, got id %d", ids[0])
	}
}

func TestEncode_UnknownCharacters(t *testing.T) {
	tok, err := FromModel(testModel("▁a"))
	if err != nil {
		t.Fatalf("FromModel failed: %v", err)
	}

	ids := tok.EncodeWord("aXY")
	// ▁a then two unknown runes.
	if len(ids) != 3 {
		t.Fatalf("expected 3 pieces, got %v", ids)
	}
	if ids[1] != tok.unkID || ids[2] != tok.unkID {
		t.Errorf("expected unknown pieces, got %v", ids)
	}
}

func TestNormalizeWord(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"hello", "▁hello"},
		{"two words", "▁two▁words"},
		{"  padded  ", "▁padded"},
	}
	for _, tt := range tests {
		if got := normalizeWord(tt.in); got != tt.want {
			t.Errorf("normalizeWord(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
