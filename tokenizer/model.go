package tokenizer

import (
	"fmt"
	"math"
	"os"

	"google.golang.org/protobuf/encoding/protowire"
)

// PieceType mirrors the SentencePiece piece type enum.
type PieceType int32

// Piece types used by this package. Values follow the SentencePiece
// ModelProto.SentencePiece.Type enum.
const (
	PieceNormal  PieceType = 1
	PieceUnknown PieceType = 2
	PieceControl PieceType = 3
)

// Piece is one vocabulary entry of a SentencePiece model.
type Piece struct {
	Piece string
	Score float32
	Type  PieceType
}

// Model is the subset of a SentencePiece .model file this package needs:
// the piece vocabulary with scores and types.
type Model struct {
	Pieces []Piece
}

// Field numbers from sentencepiece_model.proto. The vocabulary is the only
// part of the model consumed here, so the file is walked directly with
// protowire instead of carrying generated bindings.
const (
	fieldPieces     = 1 // ModelProto.pieces, repeated SentencePiece
	fieldPieceText  = 1 // SentencePiece.piece, string
	fieldPieceScore = 2 // SentencePiece.score, float
	fieldPieceType  = 3 // SentencePiece.type, enum
)

// LoadModel loads a SentencePiece model from a .model file.
func LoadModel(path string) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading model file: %w", err)
	}
	return ParseModel(data)
}

// ParseModel parses serialized SentencePiece ModelProto bytes.
func ParseModel(data []byte) (*Model, error) {
	model := &Model{}

	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return nil, fmt.Errorf("parsing model: %w", protowire.ParseError(n))
		}
		data = data[n:]

		if num == fieldPieces && typ == protowire.BytesType {
			raw, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return nil, fmt.Errorf("parsing piece: %w", protowire.ParseError(n))
			}
			data = data[n:]

			piece, err := parsePiece(raw)
			if err != nil {
				return nil, err
			}
			model.Pieces = append(model.Pieces, piece)
			continue
		}

		n = protowire.ConsumeFieldValue(num, typ, data)
		if n < 0 {
			return nil, fmt.Errorf("skipping field %d: %w", num, protowire.ParseError(n))
		}
		data = data[n:]
	}

	if len(model.Pieces) == 0 {
		return nil, fmt.Errorf("model contains no vocabulary pieces")
	}
	return model, nil
}

func parsePiece(data []byte) (Piece, error) {
	piece := Piece{Type: PieceNormal}

	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return piece, fmt.Errorf("parsing piece tag: %w", protowire.ParseError(n))
		}
		data = data[n:]

		switch {
		case num == fieldPieceText && typ == protowire.BytesType:
			text, n := protowire.ConsumeString(data)
			if n < 0 {
				return piece, fmt.Errorf("parsing piece text: %w", protowire.ParseError(n))
			}
			piece.Piece = text
			data = data[n:]
		case num == fieldPieceScore && typ == protowire.Fixed32Type:
			bits, n := protowire.ConsumeFixed32(data)
			if n < 0 {
				return piece, fmt.Errorf("parsing piece score: %w", protowire.ParseError(n))
			}
			piece.Score = math.Float32frombits(bits)
			data = data[n:]
		case num == fieldPieceType && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return piece, fmt.Errorf("parsing piece type: %w", protowire.ParseError(n))
			}
			piece.Type = PieceType(v)
			data = data[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, data)
			if n < 0 {
				return piece, fmt.Errorf("skipping piece field %d: %w", num, protowire.ParseError(n))
			}
			data = data[n:]
		}
	}

	return piece, nil
}
