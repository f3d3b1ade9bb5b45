package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/clevrprog"
	"github.com/aretw0/clevrprog/internal/metrics"
	"github.com/aretw0/clevrprog/pkg/catalog"
)

func newTestHandler(t *testing.T, opts ...Option) http.Handler {
	t.Helper()
	p, err := clevrprog.New(catalog.Default())
	require.NoError(t, err)
	return NewHandler(p, opts...)
}

func do(t *testing.T, h http.Handler, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestConvert(t *testing.T) {
	h := newTestHandler(t)

	tests := []struct {
		name     string
		body     any
		status   int
		wantOut  string
		wantCode string
	}{
		{
			name:    "Reverses And Types",
			body:    ConvertRequest{Expr: "(filter_shape (filter_color scene red) cube)"},
			status:  http.StatusOK,
			wantOut: "(filter_color:<e,<c,e>> (filter_shape:<e,<s,e>> scene:e cube:s) red:c)",
		},
		{
			name:     "Malformed",
			body:     ConvertRequest{Expr: "(count scene"},
			status:   http.StatusBadRequest,
			wantCode: metrics.OutcomeParseError,
		},
		{
			name:     "Unknown Symbol",
			body:     ConvertRequest{Expr: "(foo scene)"},
			status:   http.StatusUnprocessableEntity,
			wantCode: metrics.OutcomeUnknownSymbol,
		},
		{
			name:     "Bad Filter Arity",
			body:     ConvertRequest{Expr: "(count (filter_color scene))"},
			status:   http.StatusUnprocessableEntity,
			wantCode: metrics.OutcomeArityError,
		},
		{
			name:     "Empty",
			body:     ConvertRequest{},
			status:   http.StatusBadRequest,
			wantCode: codeBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, http.MethodPost, "/convert", tt.body)
			require.Equal(t, tt.status, rec.Code, rec.Body.String())
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

			if tt.wantCode != "" {
				var e Error
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &e))
				assert.Equal(t, tt.wantCode, e.Code)
				assert.NotEmpty(t, e.Message)
				return
			}
			var resp ConvertResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tt.wantOut, resp.Output)
			assert.Nil(t, resp.Tree)
		})
	}
}

func TestConvert_InvalidBody(t *testing.T) {
	h := newTestHandler(t)
	req := httptest.NewRequest(http.MethodPost, "/convert", bytes.NewBufferString("{"))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestConvertQuery(t *testing.T) {
	h := newTestHandler(t)

	q := url.Values{"expr": {"(exist_ (filter_color scene red))"}, "tree": {"true"}}
	rec := do(t, h, http.MethodGet, "/convert?"+q.Encode(), nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp ConvertResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "(exists:<e,t> (filter_color:<e,<c,e>> scene:e red:c))", resp.Output)
	require.NotNil(t, resp.Tree)
	assert.Equal(t, "exists", resp.Tree.Name)
	assert.Equal(t, "<e,t>", resp.Tree.Type)
	require.Len(t, resp.Tree.Children, 1)
	assert.Equal(t, "filter_color", resp.Tree.Children[0].Name)

	// expr is required.
	rec = do(t, h, http.MethodGet, "/convert", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// tree must be a boolean.
	q = url.Values{"expr": {"(count scene)"}, "tree": {"maybe"}}
	rec = do(t, h, http.MethodGet, "/convert?"+q.Encode(), nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestConvertBatch(t *testing.T) {
	h := newTestHandler(t)

	rec := do(t, h, http.MethodPost, "/batch", BatchRequest{Lines: []string{
		"(count scene)",
		"(nope scene)",
		"(count (filter_shape scene cube))",
	}})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp BatchResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Results, 3)
	assert.Equal(t, "(count:<e,i> scene:e)", resp.Results[0].Output)
	require.NotNil(t, resp.Results[1].Error)
	assert.Equal(t, metrics.OutcomeUnknownSymbol, resp.Results[1].Error.Code)
	assert.Equal(t, "(count:<e,i> (filter_shape:<e,<s,e>> scene:e cube:s))", resp.Results[2].Output)
}

func TestConvertBatch_TooLarge(t *testing.T) {
	h := newTestHandler(t, WithMaxBatch(1))
	rec := do(t, h, http.MethodPost, "/batch", BatchRequest{Lines: []string{"(count scene)", "(count scene)"}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHealthAndInfo(t *testing.T) {
	h := newTestHandler(t, WithInfo("catalog", "builtin"))

	rec := do(t, h, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	rec = do(t, h, http.MethodGet, "/info", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var info map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &info))
	assert.Equal(t, "clevrprog-http", info["app"])
	assert.Equal(t, clevrprog.Version, info["version"])
	assert.Equal(t, "1.0.0", info["api_version"])
	assert.Equal(t, "builtin", info["catalog"])
}

func TestOpenAPISpec(t *testing.T) {
	doc, err := GetSwagger()
	require.NoError(t, err)
	require.NoError(t, doc.Validate(context.Background()))
	assert.NotNil(t, doc.Paths.Find("/convert"))
	assert.NotNil(t, doc.Paths.Find("/batch"))

	h := newTestHandler(t)
	rec := do(t, h, http.MethodGet, "/openapi.yaml", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/yaml", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "operationId: convertBatch")
}

func TestMetricsEndpoint(t *testing.T) {
	collector := metrics.New()
	p, err := clevrprog.New(catalog.Default(), clevrprog.WithObserver(collector))
	require.NoError(t, err)
	h := NewHandler(p, WithMetricsHandler(collector.Handler()))

	do(t, h, http.MethodPost, "/convert", ConvertRequest{Expr: "(count scene)"})
	do(t, h, http.MethodPost, "/convert", ConvertRequest{Expr: "(count scene"})

	rec := do(t, h, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `clevrprog_lines_total{outcome="ok"} 1`)
	assert.Contains(t, rec.Body.String(), `clevrprog_lines_total{outcome="parse_error"} 1`)

	// Without the option the route does not exist.
	rec = do(t, newTestHandler(t), http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
