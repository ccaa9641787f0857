package seqtag

import (
	"context"
	"strings"

	"github.com/jamesainslie/go-seqtag/segment"
	"github.com/jamesainslie/go-seqtag/sentence"
	"github.com/jamesainslie/go-seqtag/stream"
	"github.com/jamesainslie/go-seqtag/worker"
)

// sentenceStream segments input lines into sentences.
//
// Blank lines are skipped without producing anything. Non-blank lines are
// segmented on the worker pool; the caller is suspended until the result
// is ready. A line may yield several sentences; they are queued and
// drained one per pull before the next line is requested.
type sentenceStream struct {
	lines     stream.Stream[string]
	segmenter segment.Segmenter
	pool      *worker.Pool
	queue     []*sentence.Sentence
}

// Next returns the next segmented sentence.
func (s *sentenceStream) Next(ctx context.Context) (*sentence.Sentence, error) {
	for {
		if len(s.queue) > 0 {
			sent := s.queue[0]
			s.queue = s.queue[1:]
			return sent, nil
		}

		line, err := s.lines.Next(ctx)
		if err != nil {
			return nil, err
		}
		if strings.TrimSpace(line) == "" {
			continue
		}

		groups, err := worker.Do(ctx, s.pool, func() ([][]string, error) {
			return s.segmenter.Segment(ctx, line)
		})
		if err != nil {
			return nil, wrapStage(ErrSegment, err)
		}

		for _, group := range groups {
			if len(group) == 0 {
				continue
			}
			s.queue = append(s.queue, sentence.New(group...))
		}
	}
}
