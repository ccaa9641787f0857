package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	seqtag "github.com/jamesainslie/go-seqtag"
	"github.com/jamesainslie/go-seqtag/segment"
	"github.com/jamesainslie/go-seqtag/sentence"
	"github.com/jamesainslie/go-seqtag/tokenizer"
	"github.com/jamesainslie/go-seqtag/worker"
)

type stubEncoder struct{}

func (stubEncoder) Encode(s *sentence.Sentence) *tokenizer.Encoded {
	offsets := make([]int, s.Len())
	for i := range offsets {
		offsets[i] = i + 1
	}
	return &tokenizer.Encoded{
		Sentence:    s,
		IDs:         make([]int64, s.Len()+2),
		TokenPieces: offsets,
	}
}

type stubTagger struct {
	err error
}

func (st stubTagger) Tag(_ context.Context, batch []*tokenizer.Encoded) error {
	if st.err != nil {
		return st.err
	}
	for _, enc := range batch {
		for _, token := range enc.Sentence.Tokens {
			token.SetAttr(sentence.AttrUPOS, "NOUN")
		}
	}
	return nil
}

func newTestServer(t *testing.T, tag stubTagger) *Server {
	t.Helper()
	pool := worker.New(2)
	t.Cleanup(pool.Close)

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	// Tiny batches exercise multi-chunk behavior even for short inputs.
	p := seqtag.NewPipeline("en-pos", stubEncoder{}, tag, segment.Whitespace{}, pool,
		seqtag.WithDescription("English part-of-speech tagging"),
		seqtag.WithBatchSize(2),
		seqtag.WithReadAhead(1),
		seqtag.WithLogger(log))
	return New(map[string]*seqtag.Pipeline{"en-pos": p}, log, 0)
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t, stubTagger{})
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"ok"`) {
		t.Errorf("unexpected body %q", rec.Body.String())
	}
}

func TestPipelines(t *testing.T) {
	srv := newTestServer(t, stubTagger{})
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/pipelines", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var infos []struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &infos); err != nil {
		t.Fatalf("decoding listing: %v", err)
	}
	if len(infos) != 1 || infos[0].Name != "en-pos" {
		t.Fatalf("unexpected listing: %+v", infos)
	}
	if infos[0].Description != "English part-of-speech tagging" {
		t.Errorf("unexpected description %q", infos[0].Description)
	}
}

func TestAnnotations(t *testing.T) {
	srv := newTestServer(t, stubTagger{})
	body := strings.NewReader("Hello world\nAnother sentence here\n")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/annotations/en-pos", body))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	out := rec.Body.String()
	blocks := strings.Split(strings.TrimRight(out, "\n"), "\n\n")
	if len(blocks) != 2 {
		t.Fatalf("expected 2 sentence blocks, got %d:\n%s", len(blocks), out)
	}
	if !strings.Contains(blocks[0], "# pipeline = en-pos") {
		t.Errorf("missing provenance comment:\n%s", blocks[0])
	}
	if !strings.Contains(blocks[0], "1\tHello\t_\tNOUN") {
		t.Errorf("missing annotated token:\n%s", blocks[0])
	}
	if !strings.Contains(blocks[1], "3\there\t_\tNOUN") {
		t.Errorf("missing third token of second sentence:\n%s", blocks[1])
	}
}

func TestTokens(t *testing.T) {
	srv := newTestServer(t, stubTagger{err: errors.New("must not be called")})
	body := strings.NewReader("Hello world\n")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/tokens/en-pos", body))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	out := rec.Body.String()
	if !strings.Contains(out, "1\tHello\t_\t_") {
		t.Errorf("expected untagged token line:\n%s", out)
	}
	if strings.Contains(out, "NOUN") {
		t.Errorf("tokenize-only response carries labels:\n%s", out)
	}
}

func TestUnknownPipeline(t *testing.T) {
	srv := newTestServer(t, stubTagger{})
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/annotations/nope",
		strings.NewReader("text")))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "unknown pipeline") {
		t.Errorf("unexpected body %q", rec.Body.String())
	}
}

func TestAnnotations_InferenceError(t *testing.T) {
	// The tagger fails on the first chunk, before any output is written,
	// so the failure surfaces as a status code.
	srv := newTestServer(t, stubTagger{err: errors.New("session gone")})
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/annotations/en-pos",
		strings.NewReader("Hello world\n")))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestAnnotations_EmptyBody(t *testing.T) {
	srv := newTestServer(t, stubTagger{})
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/annotations/en-pos", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec.Body.Len() != 0 {
		t.Errorf("expected empty response, got %q", rec.Body.String())
	}
}
