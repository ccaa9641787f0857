// Package conllu serializes annotated sentences as CoNLL-U.
package conllu

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/jamesainslie/go-seqtag/sentence"
)

// ErrSerialize indicates that encoding a sentence failed.
var ErrSerialize = errors.New("conllu: cannot serialize sentence")

const emptyField = "_"

// Writer writes sentences in CoNLL-U format: comment lines, one 10-column
// line per token, one terminating newline per sentence. Blank-line
// separation between sentences is the caller's concern.
type Writer struct {
	w io.Writer
}

// NewWriter creates a Writer over w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// WriteSentence serializes one sentence.
func (w *Writer) WriteSentence(s *sentence.Sentence) error {
	var b strings.Builder

	for _, c := range s.Comments {
		fmt.Fprintf(&b, "# %s = %s\n", c.Attr, c.Val)
	}

	for i, token := range s.Tokens {
		form := token.Form()
		if form == "" {
			return fmt.Errorf("%w: empty form at token %d", ErrSerialize, i+1)
		}
		if strings.ContainsAny(form, "\t\n") {
			return fmt.Errorf("%w: form at token %d contains field separators", ErrSerialize, i+1)
		}

		upos := emptyField
		if v, ok := token.Attr(sentence.AttrUPOS); ok {
			upos = v
		}

		fmt.Fprintf(&b, "%d\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			i+1, form, emptyField, upos, emptyField, emptyField,
			emptyField, emptyField, emptyField, miscColumn(token))
	}

	if _, err := io.WriteString(w.w, b.String()); err != nil {
		return fmt.Errorf("writing sentence: %w", err)
	}
	return nil
}

// miscColumn renders the token's auxiliary attributes, except the UPOS
// attribute which has its own column, as key=value pairs.
func miscColumn(t *sentence.Token) string {
	attrs := t.Attrs()
	if len(attrs) == 0 {
		return emptyField
	}

	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		if k == sentence.AttrUPOS {
			continue
		}
		keys = append(keys, k)
	}
	if len(keys) == 0 {
		return emptyField
	}
	sort.Strings(keys)

	pairs := make([]string, len(keys))
	for i, k := range keys {
		pairs[i] = k + "=" + attrs[k]
	}
	return strings.Join(pairs, "|")
}
