// Package seqtag streams text through a sentence segmentation and
// sequence-tagging pipeline without buffering whole requests in memory.
//
// A Pipeline composes five stages: a segmenter turning lines into
// sentences, a Unicode normalizer, a bounded chunk accumulator, a batch
// annotator feeding a tagging model in length-sorted sub-batches, and a
// provenance stamper. Streams are pull-driven: the consumer repeatedly
// asks the outermost stage for the next item, and stages suspend only to
// wait for upstream input or for a worker-pool task.
//
//	pool := worker.New(runtime.NumCPU())
//	pipe := seqtag.NewPipeline("en-ewt", tok, tagger, segmenter, pool,
//	    seqtag.WithBatchSize(32), seqtag.WithReadAhead(4))
//
//	chunks := pipe.Annotations(stream.Lines(r, 0))
//	body := conllu.NewStreamReader(ctx, chunks)
//	_, err := io.Copy(w, body)
//
// # Ordering
//
// The i-th sentence consumed from the input is the i-th sentence emitted,
// for any batch size and read-ahead. Sub-batches are sorted by piece count
// to minimize padding, but sorting operates on handles into shared
// storage and is invisible downstream.
//
// # Concurrency
//
// One goroutine drives each request. CPU-bound work (segmentation,
// inference) runs on a shared bounded worker.Pool with exactly one task in
// flight per request, bounding per-request memory to batch size times
// read-ahead sentences. Tokenizer and tagger handles are immutable after
// load and shared read-only by all concurrent requests.
package seqtag
