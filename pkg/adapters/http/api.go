package http

import (
	_ "embed"
	"fmt"
	"net/http"
	"sync"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"

	"github.com/aretw0/clevrprog/pkg/sexpr"
)

//go:embed openapi.yaml
var openapiSpec []byte

// ConvertRequest is the body of POST /convert.
type ConvertRequest struct {
	Expr string `json:"expr"`
	Tree bool   `json:"tree,omitempty"`
}

// ConvertParams are the query parameters of GET /convert.
type ConvertParams struct {
	Expr string `form:"expr" json:"expr"`
	Tree *bool  `form:"tree,omitempty" json:"tree,omitempty"`
}

// ConvertResponse carries the converted line and, on request, its tree.
type ConvertResponse struct {
	Output string      `json:"output"`
	Tree   *sexpr.Node `json:"tree,omitempty"`
}

// BatchRequest is the body of POST /batch.
type BatchRequest struct {
	Lines []string `json:"lines"`
}

// BatchResult is the outcome of one batch line.
type BatchResult struct {
	Output string `json:"output,omitempty"`
	Error  *Error `json:"error,omitempty"`
}

// BatchResponse lists results in request order.
type BatchResponse struct {
	Results []BatchResult `json:"results"`
}

// Error is the body of every rejected request.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ServerInterface lists the operations of openapi.yaml.
type ServerInterface interface {
	// (GET /convert)
	ConvertQuery(w http.ResponseWriter, r *http.Request, params ConvertParams)
	// (POST /convert)
	Convert(w http.ResponseWriter, r *http.Request)
	// (POST /batch)
	ConvertBatch(w http.ResponseWriter, r *http.Request)
	// (GET /health)
	GetHealth(w http.ResponseWriter, r *http.Request)
	// (GET /info)
	GetInfo(w http.ResponseWriter, r *http.Request)
}

// HandlerFromMux mounts si's operations on r.
func HandlerFromMux(si ServerInterface, r chi.Router) http.Handler {
	r.Get("/convert", func(w http.ResponseWriter, req *http.Request) {
		var params ConvertParams
		query := req.URL.Query()
		if err := runtime.BindQueryParameter("form", true, true, "expr", query, &params.Expr); err != nil {
			writeError(w, http.StatusBadRequest, codeBadRequest, fmt.Sprintf("invalid format for parameter expr: %s", err))
			return
		}
		if err := runtime.BindQueryParameter("form", true, false, "tree", query, &params.Tree); err != nil {
			writeError(w, http.StatusBadRequest, codeBadRequest, fmt.Sprintf("invalid format for parameter tree: %s", err))
			return
		}
		si.ConvertQuery(w, req, params)
	})
	r.Post("/convert", si.Convert)
	r.Post("/batch", si.ConvertBatch)
	r.Get("/health", si.GetHealth)
	r.Get("/info", si.GetInfo)
	return r
}

var loadSwagger = sync.OnceValues(func() (*openapi3.T, error) {
	doc, err := openapi3.NewLoader().LoadFromData(openapiSpec)
	if err != nil {
		return nil, fmt.Errorf("error loading openapi spec: %w", err)
	}
	return doc, nil
})

// GetSwagger returns the parsed OpenAPI document served at /openapi.yaml.
func GetSwagger() (*openapi3.T, error) {
	return loadSwagger()
}

// rawSpec returns the OpenAPI document as embedded.
func rawSpec() []byte {
	return openapiSpec
}
