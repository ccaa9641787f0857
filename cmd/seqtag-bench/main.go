package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	seqtag "github.com/jamesainslie/go-seqtag"
	"github.com/jamesainslie/go-seqtag/internal/bench"
	"github.com/jamesainslie/go-seqtag/segment"
	"github.com/jamesainslie/go-seqtag/tagger"
	"github.com/jamesainslie/go-seqtag/tokenizer"
	"github.com/jamesainslie/go-seqtag/worker"
)

func main() {
	var (
		modelPath  = flag.String("model", "", "Path to tagger ONNX model file (required)")
		labelsPath = flag.String("labels", "", "Path to YAML label vocabulary (required)")
		piecesPath = flag.String("pieces", "", "Path to SentencePiece model file (required)")
		corpusDir  = flag.String("corpus", "testdata/corpus", "Directory containing .txt documents")
		batchSize  = flag.Int("batch-size", 32, "Sentences per inference call")
		readAhead  = flag.Int("read-ahead", 4, "Batches accumulated per chunk")
		sessions   = flag.Int("sessions", 1, "ONNX sessions for the tagger")
		workers    = flag.Int("workers", 0, "Worker pool size (0 = NumCPU)")
	)
	flag.Parse()

	if *modelPath == "" || *labelsPath == "" || *piecesPath == "" {
		fmt.Fprintln(os.Stderr, "error: -model, -labels, and -pieces are required")
		flag.Usage()
		os.Exit(1)
	}

	paths, err := bench.LoadCorpus(*corpusDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error loading corpus: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Loaded %d documents from %s\n\n", len(paths), *corpusDir)

	tok, err := tokenizer.New(*piecesPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error loading pieces: %v\n", err)
		os.Exit(1)
	}

	tag, err := tagger.LoadONNX(*modelPath, *labelsPath, *sessions)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error loading tagger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = tag.Close() }()

	pool := worker.New(*workers)
	defer pool.Close()

	pipe := seqtag.NewPipeline("bench", tok, tag, segment.Whitespace{}, pool,
		seqtag.WithBatchSize(*batchSize),
		seqtag.WithReadAhead(*readAhead),
	)

	result, err := bench.Run(context.Background(), pipe, paths)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Documents:  %d\n", result.Documents)
	fmt.Printf("Sentences:  %d (%.1f/s)\n", result.Sentences, result.SentencesPerSecond())
	fmt.Printf("Tokens:     %d (%.1f/s)\n", result.Tokens, result.TokensPerSecond())
	fmt.Printf("Duration:   %s\n", result.Duration)
}
