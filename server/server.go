// Package server exposes the blog pipeline over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"blog_pipeline/document"
	"blog_pipeline/generator"
	"blog_pipeline/pipeline"
)

// Runner is the part of the pipeline the server needs.
type Runner interface {
	Run(ctx context.Context, req generator.BlogRequest, format document.Format) (*pipeline.Result, error)
}

type Server struct {
	runner  Runner
	catalog generator.Catalog
	logger  *log.Logger
	verbose bool
}

func New(runner Runner, catalog generator.Catalog, verbose bool, logger *log.Logger) (*Server, error) {
	if runner == nil {
		return nil, errors.New("pipeline runner required")
	}
	if len(catalog) == 0 {
		catalog = generator.DefaultCatalog()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Server{runner: runner, catalog: catalog, logger: logger, verbose: verbose}, nil
}

func (s *Server) infof(format string, args ...interface{}) {
	if !s.verbose {
		return
	}
	s.logger.Printf("[INFO] "+format, args...)
}

func (s *Server) Routes() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/blogs/pipeline/", s.handlePipeline).Methods(http.MethodPost)
	r.HandleFunc("/blogs/pipeline", s.handlePipeline).Methods(http.MethodPost)
	r.HandleFunc("/categories", s.handleCategories).Methods(http.MethodGet)
	r.HandleFunc("/healthz", handleHealth).Methods(http.MethodGet)
	return s.logMiddleware(r)
}

// --- Handlers ---

// pipelineReq keeps the field names existing clients already send.
type pipelineReq struct {
	TypeOf         string   `json:"TypeOf"`
	TargetAudience string   `json:"target_audience"`
	Tone           string   `json:"tone"`
	PointOfView    string   `json:"point_of_view"`
	TargetCountry  string   `json:"target_country"`
	Keywords       []string `json:"keywords"`
	Format         string   `json:"format,omitempty"`
}

func (p pipelineReq) blogRequest() generator.BlogRequest {
	return generator.BlogRequest{
		ContentType:    p.TypeOf,
		TargetAudience: p.TargetAudience,
		Tone:           p.Tone,
		PointOfView:    p.PointOfView,
		TargetCountry:  p.TargetCountry,
		Keywords:       p.Keywords,
	}
}

type errorResp struct {
	Error string `json:"error"`
	Stage string `json:"stage,omitempty"`
}

func (s *Server) handlePipeline(w http.ResponseWriter, r *http.Request) {
	var body pipelineReq
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, errorResp{Error: "invalid request body: " + err.Error()})
		return
	}
	var format document.Format
	if body.Format != "" {
		f, err := document.ParseFormat(body.Format)
		if err != nil {
			writeError(w, http.StatusBadRequest, errorResp{Error: err.Error()})
			return
		}
		format = f
	}

	s.infof("[server] pipeline request keywords=%q country=%q format=%q", body.Keywords, body.TargetCountry, body.Format)
	res, err := s.runner.Run(r.Context(), body.blogRequest(), format)
	if err != nil {
		status, resp := classify(err)
		s.logger.Printf("[server] pipeline failed status=%d: %v", status, err)
		writeError(w, status, resp)
		return
	}
	defer func() {
		if err := res.Close(); err != nil {
			s.logger.Printf("[server] removing workspace: %v", err)
		}
	}()

	f, err := res.Open()
	if err != nil {
		s.logger.Printf("[server] opening %s: %v", res.Path, err)
		writeError(w, http.StatusInternalServerError, errorResp{Error: "document unavailable"})
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", res.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+res.Filename+`"`)
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, f); err != nil {
		s.logger.Printf("[server] streaming %s: %v", res.Filename, err)
	}
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.catalog)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}

// classify maps a run error to the HTTP status and body sent back.
func classify(err error) (int, errorResp) {
	if errors.Is(err, generator.ErrInvalidRequest) {
		return http.StatusBadRequest, errorResp{Error: err.Error()}
	}
	stage, ok := pipeline.StageOf(err)
	if !ok {
		return http.StatusInternalServerError, errorResp{Error: err.Error()}
	}
	resp := errorResp{Error: err.Error(), Stage: string(stage)}
	if stage == pipeline.StageSearch {
		return http.StatusBadGateway, resp
	}
	return http.StatusInternalServerError, resp
}

// --- Helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, resp errorResp) {
	writeJSON(w, status, resp)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) logMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		path := r.URL.Path
		if path == "" {
			path = "/"
		}
		s.logger.Printf("[server] %s %s %d %s", r.Method, path, rec.status, time.Since(start).Round(time.Millisecond))
	})
}
