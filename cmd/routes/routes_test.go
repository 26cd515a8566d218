package routes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zjoart/kenshicollection/internal/catalog"
	"github.com/zjoart/kenshicollection/internal/collection"
	"github.com/zjoart/kenshicollection/internal/config"
	"github.com/zjoart/kenshicollection/internal/ownership"
	"github.com/zjoart/kenshicollection/internal/render"
	"github.com/zjoart/kenshicollection/internal/storage"
)

func handler(t *testing.T, env string) http.Handler {
	t.Helper()
	store := catalog.NewStore([]catalog.Item{{ID: "A1", Category: "Figures", NameKo: "베이"}})
	ledger := ownership.New(storage.NewMemoryKV(), catalog.VariantClass{Prefix: "MF", Separator: "_"})
	require.NoError(t, ledger.Load(context.Background()))
	svc := collection.NewService(store, ledger, render.NewRenderer(render.NewHTTPLoader(0, 1), nil), nil)
	return SetUpRoutes(svc, &config.Config{AppEnv: env})
}

func TestHealth(t *testing.T) {
	rec := httptest.NewRecorder()
	handler(t, "development").ServeHTTP(rec, httptest.NewRequest("GET", "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Service is up and running", rec.Body.String())
}

func TestSwaggerOnlyOutsideProduction(t *testing.T) {
	rec := httptest.NewRecorder()
	handler(t, "development").ServeHTTP(rec, httptest.NewRequest("GET", "/swagger", nil))
	assert.Equal(t, http.StatusMovedPermanently, rec.Code)

	rec = httptest.NewRecorder()
	handler(t, "production").ServeHTTP(rec, httptest.NewRequest("GET", "/swagger", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCorsHeaders(t *testing.T) {
	req := httptest.NewRequest("GET", "/categories", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	rec := httptest.NewRecorder()
	handler(t, "production").ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
