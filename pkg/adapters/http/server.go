package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"runtime"
	"strings"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"github.com/aretw0/clevrprog"
	"github.com/aretw0/clevrprog/internal/logging"
	"github.com/aretw0/clevrprog/internal/metrics"
	"github.com/aretw0/clevrprog/pkg/catalog"
	"github.com/aretw0/clevrprog/pkg/ports"
	"github.com/aretw0/clevrprog/pkg/rewrite"
	"github.com/aretw0/clevrprog/pkg/sexpr"
)

const codeBadRequest = "bad_request"

// DefaultMaxBatch bounds the number of lines accepted by POST /batch.
const DefaultMaxBatch = 1000

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 4 << 20

// Server implements ServerInterface over a converter.
type Server struct {
	Converter ports.Converter
	Logger    *slog.Logger
	MaxBatch  int
	Info      map[string]string
}

var _ ServerInterface = (*Server)(nil)

// Option configures the handler built by NewHandler.
type Option func(*handlerConfig)

type handlerConfig struct {
	logger   *slog.Logger
	metrics  http.Handler
	maxBatch int
	info     map[string]string
}

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *handlerConfig) {
		c.logger = logger
	}
}

// WithMetricsHandler serves h at /metrics.
func WithMetricsHandler(h http.Handler) Option {
	return func(c *handlerConfig) {
		c.metrics = h
	}
}

// WithMaxBatch changes the batch size limit.
func WithMaxBatch(n int) Option {
	return func(c *handlerConfig) {
		c.maxBatch = n
	}
}

// WithInfo adds entries to the GET /info response.
func WithInfo(key, value string) Option {
	return func(c *handlerConfig) {
		c.info[key] = value
	}
}

// NewHandler creates the HTTP handler for conv.
func NewHandler(conv ports.Converter, opts ...Option) http.Handler {
	cfg := &handlerConfig{
		logger:   logging.NewNop(),
		maxBatch: DefaultMaxBatch,
		info:     map[string]string{},
	}
	for _, opt := range opts {
		opt(cfg)
	}

	server := &Server{
		Converter: conv,
		Logger:    cfg.logger,
		MaxBatch:  cfg.maxBatch,
		Info:      cfg.info,
	}
	r := chi.NewRouter()
	r.Use(limitBody)

	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/yaml")
		_, _ = w.Write(rawSpec())
	})
	if cfg.metrics != nil {
		r.Method(http.MethodGet, "/metrics", cfg.metrics)
	}

	return HandlerFromMux(server, r)
}

func limitBody(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		next.ServeHTTP(w, r)
	})
}

// ConvertQuery handles GET /convert.
func (s *Server) ConvertQuery(w http.ResponseWriter, r *http.Request, params ConvertParams) {
	tree := params.Tree != nil && *params.Tree
	s.convert(w, r, params.Expr, tree)
}

// Convert handles POST /convert.
func (s *Server) Convert(w http.ResponseWriter, r *http.Request) {
	var body ConvertRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "invalid request body")
		s.Logger.Warn("Convert: Invalid request body", "err", err)
		return
	}
	s.convert(w, r, body.Expr, body.Tree)
}

func (s *Server) convert(w http.ResponseWriter, r *http.Request, expr string, withTree bool) {
	if strings.TrimSpace(expr) == "" {
		writeError(w, http.StatusBadRequest, codeBadRequest, "expr is required")
		return
	}

	out, err := s.Converter.ProcessContext(r.Context(), expr)
	if err != nil {
		status, body := errorBody(err)
		s.Logger.Debug("Convert rejected", "expr", expr, "err", err)
		writeJSON(w, status, body)
		return
	}

	resp := ConvertResponse{Output: out}
	if withTree {
		tree, err := sexpr.ParseTyped(out)
		if err != nil {
			s.Logger.Error("Convert: Output does not parse", "output", out, "err", err)
			writeError(w, http.StatusInternalServerError, metrics.OutcomeError, err.Error())
			return
		}
		resp.Tree = tree
	}
	writeJSON(w, http.StatusOK, resp)
}

// ConvertBatch handles POST /batch. Lines are converted concurrently and
// reported in request order; a failing line does not fail the batch.
func (s *Server) ConvertBatch(w http.ResponseWriter, r *http.Request) {
	var body BatchRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "invalid request body")
		s.Logger.Warn("ConvertBatch: Invalid request body", "err", err)
		return
	}
	if s.MaxBatch > 0 && len(body.Lines) > s.MaxBatch {
		writeError(w, http.StatusBadRequest, codeBadRequest, "too many lines")
		return
	}

	results := make([]BatchResult, len(body.Lines))
	g, ctx := errgroup.WithContext(r.Context())
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, line := range body.Lines {
		g.Go(func() error {
			out, err := s.Converter.ProcessContext(ctx, line)
			if err != nil {
				_, e := errorBody(err)
				results[i].Error = &e
				return nil
			}
			results[i].Output = out
			return nil
		})
	}
	_ = g.Wait()

	writeJSON(w, http.StatusOK, BatchResponse{Results: results})
}

// GetHealth handles GET /health.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles GET /info.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	apiVersion := "unknown"
	if swagger, err := GetSwagger(); err == nil && swagger.Info != nil {
		apiVersion = swagger.Info.Version
	}

	resp := map[string]string{
		"app":         "clevrprog-http",
		"version":     strings.TrimSpace(clevrprog.Version),
		"api_version": apiVersion,
	}
	for k, v := range s.Info {
		resp[k] = v
	}
	writeJSON(w, http.StatusOK, resp)
}

// errorBody maps a conversion error to a status code and body.
// Malformed input is a client error; well-formed input the catalog or
// the rewrite rules reject is unprocessable.
func errorBody(err error) (int, Error) {
	code := metrics.Outcome(err)
	var arity *rewrite.ArityError
	switch {
	case errors.Is(err, sexpr.ErrParse):
		return http.StatusBadRequest, Error{Code: code, Message: err.Error()}
	case errors.Is(err, catalog.ErrUnknownSymbol), errors.As(err, &arity):
		return http.StatusUnprocessableEntity, Error{Code: code, Message: err.Error()}
	}
	return http.StatusInternalServerError, Error{Code: code, Message: err.Error()}
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, Error{Code: code, Message: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}
