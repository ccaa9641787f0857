package seqtag

import (
	"log/slog"

	"golang.org/x/text/unicode/norm"
)

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithDescription sets the human-readable pipeline description.
func WithDescription(d string) Option {
	return func(p *Pipeline) {
		p.description = d
	}
}

// WithBatchSize sets the number of sentences per inference call
// (default: 32).
func WithBatchSize(n int) Option {
	return func(p *Pipeline) {
		if n > 0 {
			p.batchSize = n
		}
	}
}

// WithReadAhead sets how many batches are accumulated per chunk
// (default: 4). Per-request memory is bounded by batch size times
// read-ahead buffered sentences.
func WithReadAhead(n int) Option {
	return func(p *Pipeline) {
		if n > 0 {
			p.readAhead = n
		}
	}
}

// WithMaxLen drops sentences longer than n pieces before they reach the
// tagger. Sentences of exactly n pieces are kept. Zero disables the
// filter (default).
func WithMaxLen(n int) Option {
	return func(p *Pipeline) {
		if n >= 0 {
			p.maxLen = n
		}
	}
}

// WithNormalization sets the Unicode normalization form applied to token
// forms (default: norm.NFC).
func WithNormalization(form norm.Form) Option {
	return func(p *Pipeline) {
		p.form = form
	}
}

// WithLogger sets the logger (default: slog.Default()).
func WithLogger(l *slog.Logger) Option {
	return func(p *Pipeline) {
		if l != nil {
			p.logger = l
		}
	}
}
