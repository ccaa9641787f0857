// Package server exposes named pipelines over HTTP.
//
// Request bodies stream through a pipeline and out as CoNLL-U without
// whole-request buffering: output is flushed as each chunk is annotated.
package server

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"sort"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	seqtag "github.com/jamesainslie/go-seqtag"
	"github.com/jamesainslie/go-seqtag/conllu"
	"github.com/jamesainslie/go-seqtag/stream"
)

// Server routes annotation requests to named pipelines.
type Server struct {
	router    chi.Router
	pipelines map[string]*seqtag.Pipeline
	log       *slog.Logger
	maxLine   int
}

// New creates a server over the given pipelines. maxLine caps input line
// length in bytes; zero selects the reader default.
func New(pipelines map[string]*seqtag.Pipeline, log *slog.Logger, maxLine int) *Server {
	s := &Server{
		pipelines: pipelines,
		log:       log,
		maxLine:   maxLine,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)

	r.Get("/health", s.handleHealth)
	r.Get("/pipelines", s.handlePipelines)
	r.Post("/annotations/{pipeline}", s.handleAnnotations)
	r.Post("/tokens/{pipeline}", s.handleTokens)

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

// pipelineInfo is one entry of the pipeline listing.
type pipelineInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (s *Server) handlePipelines(w http.ResponseWriter, _ *http.Request) {
	infos := make([]pipelineInfo, 0, len(s.pipelines))
	for name, p := range s.pipelines {
		infos = append(infos, pipelineInfo{Name: name, Description: p.Description()})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(infos); err != nil {
		s.log.Error("encoding pipeline listing", "error", err)
	}
}

func (s *Server) handleAnnotations(w http.ResponseWriter, r *http.Request) {
	p, ok := s.pipeline(w, r)
	if !ok {
		return
	}
	lines := stream.Lines(r.Body, s.maxLine)
	s.respond(w, r, conllu.NewStreamReader(r.Context(), p.Annotations(lines)))
}

func (s *Server) handleTokens(w http.ResponseWriter, r *http.Request) {
	p, ok := s.pipeline(w, r)
	if !ok {
		return
	}
	lines := stream.Lines(r.Body, s.maxLine)
	s.respond(w, r, conllu.NewStreamReader(r.Context(), p.Tokens(lines)))
}

// pipeline resolves the pipeline named in the URL, answering 404 when it
// does not exist.
func (s *Server) pipeline(w http.ResponseWriter, r *http.Request) (*seqtag.Pipeline, bool) {
	name := chi.URLParam(r, "pipeline")
	p, ok := s.pipelines[name]
	if !ok {
		http.Error(w, "unknown pipeline: "+name, http.StatusNotFound)
		return nil, false
	}
	return p, true
}

// respond streams body to the client, flushing after every read so
// annotated chunks reach the consumer as they complete. Once a byte has
// been written the status is committed; a later pipeline error can only
// truncate the response, which is the documented contract.
func (s *Server) respond(w http.ResponseWriter, r *http.Request, body io.Reader) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")

	flusher, _ := w.(http.Flusher)
	buf := make([]byte, 32*1024)
	wrote := false

	for {
		n, err := body.Read(buf)
		if n > 0 {
			if _, werr := w.Write(buf[:n]); werr != nil {
				return
			}
			wrote = true
			if flusher != nil {
				flusher.Flush()
			}
		}
		if errors.Is(err, io.EOF) {
			return
		}
		if err != nil {
			s.streamError(w, r, err, wrote)
			return
		}
	}
}

// streamError reports a pipeline failure. Before the first byte the status
// line is still ours to choose; afterwards the response is aborted
// mid-stream.
func (s *Server) streamError(w http.ResponseWriter, r *http.Request, err error, wrote bool) {
	s.log.Error("pipeline failed",
		"path", r.URL.Path,
		"request_id", middleware.GetReqID(r.Context()),
		"error", err)

	if wrote {
		panic(http.ErrAbortHandler)
	}

	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, seqtag.ErrSegment), errors.Is(err, stream.ErrRead):
		status = http.StatusBadRequest
	case errors.Is(err, seqtag.ErrInference), errors.Is(err, conllu.ErrSerialize):
		status = http.StatusInternalServerError
	}
	http.Error(w, err.Error(), status)
}
