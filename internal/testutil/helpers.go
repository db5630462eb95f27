package testutil

import (
	"context"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// MakeID generates a unique ID for testing.
func MakeID() string {
	return uuid.New().String()
}

// MakeSymbol generates a unique fund symbol for testing.
//
// Example usage:
//
//	symbol := testutil.MakeSymbol("INF")
//	// Returns: "INF1A2B3C4D"
func MakeSymbol(base string) string {
	if base == "" {
		base = "TEST"
	}
	return base + strings.ToUpper(strings.ReplaceAll(MakeID(), "-", "")[:8])
}

// MakeFundName generates a unique fund name for testing.
//
// Example usage:
//
//	name := testutil.MakeFundName("Tech Fund")
//	// Returns: "Tech Fund XYZ789"
func MakeFundName(base string) string {
	if base == "" {
		base = "Fund"
	}
	return base + " " + randomAlphanumeric(6)
}

// randomAlphanumeric generates a random alphanumeric string of specified length.
func randomAlphanumeric(length int) string {
	const charset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	result := make([]byte, length)
	for i := range result {
		//nolint:gosec // G404: Using math/rand for test data generation is acceptable
		result[i] = charset[rand.Intn(len(charset))]
	}
	return string(result)
}

// NewGetRequest builds a GET request for path with query attached. Repeated
// values are kept in order, the way a client sends several filter values.
//
// Example usage:
//
//	req := testutil.NewGetRequest("/api/fund", url.Values{"amc": {"PPFAS_MF", "DSP_MF"}})
func NewGetRequest(path string, query url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if len(query) > 0 {
		req.URL.RawQuery = query.Encode()
	}
	return req
}

// NewFundRequest builds GET /api/fund/{slug} with the chi route parameter set,
// so FundHandler.Fund can be called without a router.
func NewFundRequest(slug string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/api/fund/"+url.PathEscape(slug), nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("slug", slug)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}
