package metrics

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/clevrprog/pkg/catalog"
	"github.com/aretw0/clevrprog/pkg/rewrite"
	"github.com/aretw0/clevrprog/pkg/sexpr"
)

func TestOutcome(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, OutcomeOK},
		{&sexpr.ParseError{Offset: 3, Reason: "unbalanced"}, OutcomeParseError},
		{fmt.Errorf("wrapped: %w", &catalog.LookupError{Symbol: "foo"}), OutcomeUnknownSymbol},
		{&rewrite.ArityError{Name: "filter_color", Arity: 1}, OutcomeArityError},
		{errors.New("boom"), OutcomeError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Outcome(tt.err))
	}
}

func TestCollector(t *testing.T) {
	c := New()
	c.ObserveLine(time.Millisecond, nil)
	c.ObserveLine(time.Millisecond, nil)
	c.ObserveLine(time.Millisecond, &catalog.LookupError{Symbol: "foo"})

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `clevrprog_lines_total{outcome="ok"} 2`)
	assert.Contains(t, rec.Body.String(), `clevrprog_lines_total{outcome="unknown_symbol"} 1`)
	assert.Contains(t, rec.Body.String(), "clevrprog_line_duration_seconds_count 3")
}
