package seqtag

import (
	"context"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/jamesainslie/go-seqtag/sentence"
	"github.com/jamesainslie/go-seqtag/stream"
)

// typographicReplacer maps typographic punctuation onto the ASCII forms
// the tagger models were trained on.
var typographicReplacer = strings.NewReplacer(
	"“", `"`, // left double quotation mark
	"”", `"`, // right double quotation mark
	"„", `"`, // double low-9 quotation mark
	"«", `"`, // left guillemet
	"»", `"`, // right guillemet
	"‘", "'", // left single quotation mark
	"’", "'", // right single quotation mark
	"‚", "'", // single low-9 quotation mark
	"–", "-", // en dash
	"—", "-", // em dash
	"−", "-", // minus sign
	"…", "...", // horizontal ellipsis
)

// simplifyForm canonicalizes a token's surface form: Unicode
// normalization to the configured form, then typographic punctuation
// simplification.
func simplifyForm(form string, f norm.Form) string {
	return typographicReplacer.Replace(f.String(form))
}

// normalizeSentence rewrites every token whose canonical form differs from
// its surface form, stashing the original under sentence.AttrOrth. It is
// idempotent.
func normalizeSentence(s *sentence.Sentence, f norm.Form) {
	for _, token := range s.Tokens {
		form := token.Form()
		clean := simplifyForm(form, f)
		if clean != form {
			token.SetAttr(sentence.AttrOrth, form)
			token.SetForm(clean)
		}
	}
}

// normalizeStream applies Unicode normalization to each sentence. It is
// synchronous and total: the wrapper exists only for composability and
// never suspends beyond its upstream.
type normalizeStream struct {
	sentences stream.Stream[*sentence.Sentence]
	form      norm.Form
}

// Next returns the next normalized sentence.
func (n *normalizeStream) Next(ctx context.Context) (*sentence.Sentence, error) {
	sent, err := n.sentences.Next(ctx)
	if err != nil {
		return nil, err
	}
	normalizeSentence(sent, n.form)
	return sent, nil
}
