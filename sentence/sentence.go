// Package sentence defines the token and sentence model shared by all
// pipeline stages.
//
// A Token carries a surface form plus a mutable attribute table. Stages
// mutate tokens in place: the normalizer rewrites forms (stashing the
// original under AttrOrth), taggers attach their output labels, and the
// serializer reads everything back out.
package sentence

// Reserved attribute keys.
const (
	// AttrOrth holds the pre-normalization surface form of a token whose
	// form was rewritten by Unicode normalization.
	AttrOrth = "orth"

	// AttrUPOS holds the universal part-of-speech label assigned by a
	// tagger.
	AttrUPOS = "upos"
)

// Token is a single token of a sentence.
type Token struct {
	form  string
	attrs map[string]string
}

// NewToken creates a token with the given surface form.
func NewToken(form string) *Token {
	return &Token{form: form}
}

// Form returns the token's surface form.
func (t *Token) Form() string { return t.form }

// SetForm replaces the token's surface form.
func (t *Token) SetForm(form string) { t.form = form }

// Attr returns the attribute stored under key.
func (t *Token) Attr(key string) (string, bool) {
	v, ok := t.attrs[key]
	return v, ok
}

// SetAttr stores an attribute under key, allocating the table lazily.
func (t *Token) SetAttr(key, value string) {
	if t.attrs == nil {
		t.attrs = make(map[string]string, 2)
	}
	t.attrs[key] = value
}

// Attrs returns the attribute table. It may be nil; callers must not
// modify it.
func (t *Token) Attrs() map[string]string { return t.attrs }

// Comment is a sentence-level attribute/value annotation, serialized as a
// comment line before the sentence.
type Comment struct {
	Attr string
	Val  string
}

// Sentence is an ordered sequence of tokens with optional comments.
type Sentence struct {
	Tokens   []*Token
	Comments []Comment
}

// New creates a sentence from surface forms.
func New(forms ...string) *Sentence {
	tokens := make([]*Token, len(forms))
	for i, f := range forms {
		tokens[i] = NewToken(f)
	}
	return &Sentence{Tokens: tokens}
}

// Len returns the number of tokens.
func (s *Sentence) Len() int { return len(s.Tokens) }

// AddComment appends an attribute/value comment.
func (s *Sentence) AddComment(attr, val string) {
	s.Comments = append(s.Comments, Comment{Attr: attr, Val: val})
}

// Forms returns the surface forms of all tokens.
func (s *Sentence) Forms() []string {
	forms := make([]string, len(s.Tokens))
	for i, t := range s.Tokens {
		forms[i] = t.Form()
	}
	return forms
}
