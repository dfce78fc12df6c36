package api_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sercanai/screenaso/internal/api"
	"github.com/sercanai/screenaso/internal/domain"
	"github.com/sercanai/screenaso/internal/enricher"
	"github.com/sercanai/screenaso/internal/processor"
	"github.com/sercanai/screenaso/internal/testhelpers"
)

func strPtr(s string) *string { return &s }

func newTestRouter(t *testing.T, opts ...enricher.Option) (*gin.Engine, *testhelpers.MockReviewStore) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	base := []enricher.Option{
		enricher.WithLanguageDetector(&testhelpers.StaticDetector{
			Lang: domain.Language{Code: "en", Confidence: 0.9},
		}),
	}
	e := enricher.New(enricher.Config{}, nil, append(base, opts...)...)
	batch := processor.NewBatchProcessor(e, 2, nil, nil)
	store := testhelpers.NewMockReviewStore()

	handler := api.NewHandler(e, batch, nil, store, nil, "enrichment", "1.0.0")
	router := gin.New()
	api.SetupRoutes(router, handler, nil)
	return router, store
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHealthCheck(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doJSON(t, router, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp["status"])
	assert.Equal(t, "enrichment", resp["service"])
}

func TestEnrichEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/v1/enrich", api.EnrichRequest{
		Review: &domain.RawReview{
			ID:     "r-1",
			Store:  domain.StoreAppStore,
			AppID:  "com.example.app",
			Rating: 5,
			Body:   strPtr("Love it! Contact me: jane@example.com"),
		},
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp api.EnrichResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Result)
	assert.Equal(t, domain.StatusEnriched, resp.Status)
	assert.Equal(t, domain.SentimentPositive, resp.Result.Sentiment.Label)
	assert.NotContains(t, *resp.Result.Body, "@")
	assert.True(t, resp.Result.Redaction.Applied)
}

func TestEnrichEndpointRejectsBadPayload(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/v1/enrich", map[string]string{"nope": "x"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestEnrichEndpointWithholdsOnRedactionFailure(t *testing.T) {
	router, _ := newTestRouter(t, enricher.WithRedactor(testhelpers.FailingRedactor{}))

	w := doJSON(t, router, http.MethodPost, "/api/v1/enrich", api.EnrichRequest{
		Review: &domain.RawReview{ID: "r-1", AppID: "a", Rating: 1, Body: strPtr("text")},
	})
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var resp api.EnrichResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, domain.StatusWithheld, resp.Status)
	assert.Nil(t, resp.Result)
}

func TestEnrichBatchEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/v1/enrich/batch", api.BatchEnrichRequest{
		Reviews: []domain.RawReview{
			{ID: "r-1", AppID: "a", Rating: 5, Body: strPtr("Great app, thank you!")},
			{ID: "r-2", AppID: "a", Rating: 1, Body: strPtr("It crashes on startup")},
		},
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp api.BatchEnrichResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Total)
	assert.Equal(t, 2, resp.Success)
	assert.Zero(t, resp.Failed)
}

func TestIngestAndStats(t *testing.T) {
	router, store := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/v1/reviews", domain.RawReview{
		ID:     "r-1",
		Store:  domain.StorePlayStore,
		AppID:  "com.example.app",
		Rating: 3,
		Body:   strPtr("average"),
	})
	require.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, domain.StatusPending, store.StatusOf("r-1"))

	w = doJSON(t, router, http.MethodGet, "/api/v1/stats", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var stats map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	reviews, ok := stats["reviews"].(map[string]any)
	require.True(t, ok)
	assert.EqualValues(t, 1, reviews[domain.StatusPending])
}

func TestIngestRequiresIDAndApp(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/v1/reviews", domain.RawReview{Rating: 3})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
