package config

import (
	"fmt"
	"log/slog"

	seqtag "github.com/jamesainslie/go-seqtag"
	"github.com/jamesainslie/go-seqtag/inference"
	"github.com/jamesainslie/go-seqtag/segment"
	"github.com/jamesainslie/go-seqtag/tagger"
	"github.com/jamesainslie/go-seqtag/tokenizer"
	"github.com/jamesainslie/go-seqtag/worker"
)

// Build loads every model referenced by the definition file and constructs
// the named pipelines. Expensive handles (SentencePiece vocabularies, ONNX
// session pools, segmenters) are loaded once and shared by every pipeline
// that references the same file.
func (f *File) Build(pool *worker.Pool, sessions int, logger *slog.Logger) (map[string]*seqtag.Pipeline, error) {
	tokenizers := make(map[string]*tokenizer.Tokenizer)
	loadTokenizer := func(path string) (*tokenizer.Tokenizer, error) {
		if tok, ok := tokenizers[path]; ok {
			return tok, nil
		}
		tok, err := tokenizer.New(path)
		if err != nil {
			return nil, fmt.Errorf("loading pieces %s: %w", path, err)
		}
		tokenizers[path] = tok
		return tok, nil
	}

	segmenters := make(map[string]segment.Segmenter)
	for name, sc := range f.Segmenters {
		switch sc.Algorithm {
		case SegmenterWhitespace:
			segmenters[name] = segment.Whitespace{}
		case SegmenterModel:
			tok, err := loadTokenizer(sc.Pieces)
			if err != nil {
				return nil, fmt.Errorf("segmenter %q: %w", name, err)
			}
			sessPool, err := inference.NewPool(sc.Model, sessions)
			if err != nil {
				return nil, fmt.Errorf("segmenter %q: %w", name, err)
			}
			var opts []segment.ModelOption
			if sc.Threshold > 0 {
				opts = append(opts, segment.WithThreshold(sc.Threshold))
			}
			segmenters[name] = segment.NewModel(tok, sessPool, opts...)
		}
	}

	pipelines := make(map[string]*seqtag.Pipeline, len(f.Pipelines))
	for name, pc := range f.Pipelines {
		tok, err := loadTokenizer(pc.Pieces)
		if err != nil {
			return nil, fmt.Errorf("pipeline %q: %w", name, err)
		}

		tag, err := tagger.LoadONNX(pc.Model, pc.Labels, sessions)
		if err != nil {
			return nil, fmt.Errorf("pipeline %q: %w", name, err)
		}

		pipelines[name] = seqtag.NewPipeline(name, tok, tag, segmenters[pc.Segmenter], pool,
			seqtag.WithDescription(pc.Description),
			seqtag.WithBatchSize(pc.BatchSize),
			seqtag.WithReadAhead(pc.ReadAhead),
			seqtag.WithMaxLen(pc.MaxLen),
			seqtag.WithLogger(logger),
		)

		logger.Info("loaded pipeline",
			"name", name,
			"segmenter", pc.Segmenter,
			"batch_size", pc.BatchSize,
			"read_ahead", pc.ReadAhead,
			"max_len", pc.MaxLen)
	}

	return pipelines, nil
}
