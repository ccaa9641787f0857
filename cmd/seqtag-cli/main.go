package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	seqtag "github.com/jamesainslie/go-seqtag"
	"github.com/jamesainslie/go-seqtag/conllu"
	"github.com/jamesainslie/go-seqtag/segment"
	"github.com/jamesainslie/go-seqtag/stream"
	"github.com/jamesainslie/go-seqtag/tagger"
	"github.com/jamesainslie/go-seqtag/tokenizer"
	"github.com/jamesainslie/go-seqtag/worker"
)

func main() {
	modelPath := flag.String("model", "", "Path to tagger ONNX model file")
	labelsPath := flag.String("labels", "", "Path to YAML label vocabulary")
	piecesPath := flag.String("pieces", "", "Path to SentencePiece model file")
	batchSize := flag.Int("batch-size", 32, "Sentences per inference call")
	readAhead := flag.Int("read-ahead", 4, "Batches accumulated per chunk")
	maxLen := flag.Int("max-len", 0, "Drop sentences longer than this many pieces (0 = keep all)")
	mode := flag.String("mode", "annotate", "Mode: annotate or tokens")
	workers := flag.Int("workers", 0, "Worker pool size (0 = NumCPU)")

	flag.Parse()

	if *modelPath == "" || *labelsPath == "" || *piecesPath == "" {
		fmt.Fprintln(os.Stderr, "Usage: seqtag-cli -model MODEL -labels LABELS -pieces PIECES [OPTIONS] < input.txt")
		flag.PrintDefaults()
		os.Exit(1)
	}

	tok, err := tokenizer.New(*piecesPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading pieces: %v\n", err)
		os.Exit(1)
	}

	tag, err := tagger.LoadONNX(*modelPath, *labelsPath, 1)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading tagger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = tag.Close() }()

	pool := worker.New(*workers)
	defer pool.Close()

	pipe := seqtag.NewPipeline("cli", tok, tag, segment.Whitespace{}, pool,
		seqtag.WithBatchSize(*batchSize),
		seqtag.WithReadAhead(*readAhead),
		seqtag.WithMaxLen(*maxLen),
	)

	ctx := context.Background()
	lines := stream.Lines(os.Stdin, 0)

	var body io.Reader
	switch *mode {
	case "annotate":
		body = conllu.NewStreamReader(ctx, pipe.Annotations(lines))
	case "tokens":
		body = conllu.NewStreamReader(ctx, pipe.Tokens(lines))
	default:
		fmt.Fprintf(os.Stderr, "Unknown mode: %s\n", *mode)
		os.Exit(1)
	}

	if _, err := io.Copy(os.Stdout, body); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
