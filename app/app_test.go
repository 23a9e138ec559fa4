package app

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"policygen/config"
	"policygen/database"
	"policygen/entities"
	"policygen/pkg/kb/repositoryImp"
	"policygen/pkg/logger"
	"policygen/pkg/policy/service"
)

const homePolicy = `Home insurance covers damage caused by fire and lightning. Flood damage is excluded unless a flood rider is purchased.
Theft of personal property is covered up to $10,000. Claims must be reported within 30 days.
The deductible is $500 per claim. Water damage from burst pipes is covered. Mold remediation is excluded.
Liability coverage protects against injuries on the property. Additional living expenses are paid during repairs.
Earthquake damage requires a separate endorsement. Policies renew annually. Premiums may change at renewal.`

func testConfig(t *testing.T) config.AppConfig {
	t.Helper()
	cfg := config.Default()
	cfg.StorePath = filepath.Join(t.TempDir(), "store")
	cfg.DataDir = t.TempDir()
	return cfg
}

func do(e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestIndexThenServeWithoutGenerator(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)
	require.NoError(t, os.WriteFile(filepath.Join(cfg.DataDir, "home.txt"), []byte(homePolicy), 0o644))

	rep, err := RunIndexing(ctx, cfg, logger.Discard())
	require.NoError(t, err)
	// 12 sentences -> windows starting at 0 and 8
	assert.Equal(t, 2, rep.Chunks)

	db, err := database.OpenStore(cfg.StorePath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })
	e := NewServer(ctx, cfg, db, nil, logger.Discard())

	rec := do(e, http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"Welcome to the Insurance Policy Generation Chatbot API"}`, rec.Body.String())

	rec = do(e, http.MethodPost, "/generate_policy", `{"query":"Is flood damage covered?"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var out struct {
		Policy             string           `json:"policy"`
		RetrievedDocuments []map[string]any `json:"retrieved_documents"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, service.FallbackPolicy, out.Policy)
	require.Len(t, out.RetrievedDocuments, 2)
	for _, d := range out.RetrievedDocuments {
		assert.Contains(t, d, "id")
		assert.Contains(t, d, "content")
		assert.Contains(t, d, "score")
		assert.Contains(t, d, "meta")
		assert.NotContains(t, d, "embedding")
		meta := d["meta"].(map[string]any)
		assert.Equal(t, filepath.Join(cfg.DataDir, "home.txt"), meta["file_path"])
	}

	rec = do(e, http.MethodPost, "/generate_policy", `{"query":""}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	rec = do(e, http.MethodPost, "/generate_policy", `{"query":"   "}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = do(e, http.MethodGet, "/kb/search?q=deductible&k=1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "deductible")

	rec = do(e, http.MethodGet, "/kb/stats", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"embedder":"hashing-384"`)

	rec = do(e, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var health map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &health))
	assert.Equal(t, false, health["generation_enabled"])
	assert.EqualValues(t, 2, health["documents"])
}

func TestIndexingWithoutFilesLeavesStoreEmpty(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)

	rep, err := RunIndexing(ctx, cfg, logger.Discard())
	require.NoError(t, err)
	assert.True(t, rep.Skipped)

	db, err := database.OpenStore(cfg.StorePath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })
	n, err := repositoryImp.New(db).Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	e := NewServer(ctx, cfg, db, nil, logger.Discard())
	rec := do(e, http.MethodPost, "/generate_policy", `{"query":"anything"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"policy":"`+service.FallbackPolicy+`","retrieved_documents":[]}`, rec.Body.String())
}

func TestServerWithFailedPipeline(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)

	db, err := database.OpenStore(cfg.StorePath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })
	require.NoError(t, repositoryImp.New(db).ReplaceAll(ctx, nil, entities.StoreInfo{Embedder: "openai:other", Dimension: 768}))

	e := NewServer(ctx, cfg, db, nil, logger.Discard())

	rec := do(e, http.MethodGet, "/", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(e, http.MethodPost, "/generate_policy", `{"query":"flood"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"detail":"RAG pipeline is not initialized."}`, rec.Body.String())

	rec = do(e, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestServerWithoutStore(t *testing.T) {
	cfg := testConfig(t)
	e := NewServer(context.Background(), cfg, nil, errors.New("disk full"), logger.Discard())

	rec := do(e, http.MethodPost, "/generate_policy", `{"query":"flood"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	rec = do(e, http.MethodGet, "/kb/stats", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
