package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopsense-ai/catalog-assistant/internal/catalog"
	"github.com/shopsense-ai/catalog-assistant/internal/observability"
)

type fixedChatService struct{}

func (fixedChatService) Generate(ctx context.Context, query string, history []string) (string, []string, error) {
	return "ok", append(history, "User: "+query, "Assistant: ok"), nil
}

type fixedProductService struct{}

func (fixedProductService) ListProducts(ctx context.Context) ([]catalog.ProductView, error) {
	return []catalog.ProductView{}, nil
}

func newTestRouter() http.Handler {
	return NewRouter(observability.Nop(), 5*time.Second, fixedChatService{}, fixedProductService{})
}

func TestRouter_Health(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestRouter().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"healthy"`)
}

func TestRouter_Routes(t *testing.T) {
	router := newTestRouter()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(`{"query":"hi"}`)))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/products", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	// Method mismatch on a known path.
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/chat", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestRouter_AssignsTraceID(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestRouter().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.NotEmpty(t, rec.Header().Get("X-Trace-ID"))
}

func TestRouter_CORSPreflight(t *testing.T) {
	req := httptest.NewRequest(http.MethodOptions, "/chat", nil)
	req.Header.Set("Origin", "http://localhost:3000")

	rec := httptest.NewRecorder()
	newTestRouter().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
}
