// Package segment turns raw text lines into sentences.
//
// A Segmenter produces token groups: one group per sentence, one string
// per token. Strategies are swappable; the pipeline treats them as opaque
// collaborators and offloads their work to the shared worker pool.
package segment

import (
	"context"
	"strings"
)

// Segmenter splits one line of text into zero or more token groups.
//
// Implementations must be safe for concurrent use; one segmenter instance
// is shared by all requests of a pipeline.
type Segmenter interface {
	Segment(ctx context.Context, line string) ([][]string, error)
}

// Whitespace is a trivial segmenter: newlines separate sentences and ASCII
// whitespace separates tokens. It never fails.
type Whitespace struct{}

// Segment implements Segmenter.
func (Whitespace) Segment(_ context.Context, line string) ([][]string, error) {
	var groups [][]string
	for _, sent := range strings.Split(strings.ReplaceAll(line, "\r\n", "\n"), "\n") {
		fields := strings.Fields(sent)
		if len(fields) == 0 {
			continue
		}
		groups = append(groups, fields)
	}
	return groups, nil
}
