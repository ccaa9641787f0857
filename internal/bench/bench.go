// Package bench measures pipeline throughput over a text corpus.
package bench

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	seqtag "github.com/jamesainslie/go-seqtag"
	"github.com/jamesainslie/go-seqtag/stream"
)

// Result aggregates one benchmark run.
type Result struct {
	Documents int
	Sentences int
	Tokens    int
	Duration  time.Duration
}

// SentencesPerSecond returns the sentence throughput.
func (r Result) SentencesPerSecond() float64 {
	if r.Duration <= 0 {
		return 0
	}
	return float64(r.Sentences) / r.Duration.Seconds()
}

// TokensPerSecond returns the token throughput.
func (r Result) TokensPerSecond() float64 {
	if r.Duration <= 0 {
		return 0
	}
	return float64(r.Tokens) / r.Duration.Seconds()
}

// LoadCorpus returns the paths of all .txt files under dir.
func LoadCorpus(dir string) ([]string, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.txt"))
	if err != nil {
		return nil, fmt.Errorf("globbing corpus: %w", err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no .txt files in %s", dir)
	}
	return paths, nil
}

// Run streams every corpus document through the pipeline's annotate path
// and counts what comes out.
func Run(ctx context.Context, p *seqtag.Pipeline, paths []string) (Result, error) {
	var result Result
	start := time.Now()

	for _, path := range paths {
		if err := runDocument(ctx, p, path, &result); err != nil {
			return result, fmt.Errorf("annotating %s: %w", path, err)
		}
		result.Documents++
	}

	result.Duration = time.Since(start)
	return result, nil
}

func runDocument(ctx context.Context, p *seqtag.Pipeline, path string, result *Result) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	chunks := p.Annotations(stream.Lines(f, 0))
	for {
		chunk, err := chunks.Next(ctx)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		result.Sentences += len(chunk)
		for _, sent := range chunk {
			result.Tokens += sent.Len()
		}
	}
}
