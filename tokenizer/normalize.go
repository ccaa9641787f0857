package tokenizer

import (
	"strings"
	"unicode"
)

const sentencePieceSpace = '▁' // U+2581 LOWER ONE EIGHTH BLOCK

// normalizeWord prepares one token form for piece encoding: the
// SentencePiece word marker is prefixed and any interior whitespace is
// collapsed to single markers.
func normalizeWord(form string) string {
	if form == "" {
		return ""
	}

	var builder strings.Builder
	builder.Grow(len(form) + 3)

	needMarker := true
	for _, r := range form {
		if unicode.IsSpace(r) {
			if builder.Len() > 0 {
				needMarker = true
			}
			continue
		}
		if needMarker {
			builder.WriteRune(sentencePieceSpace)
			needMarker = false
		}
		builder.WriteRune(r)
	}

	return builder.String()
}
