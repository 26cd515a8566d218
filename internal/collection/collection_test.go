package collection

import (
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zjoart/kenshicollection/internal/catalog"
	"github.com/zjoart/kenshicollection/internal/ownership"
	"github.com/zjoart/kenshicollection/internal/render"
	"github.com/zjoart/kenshicollection/internal/storage"
)

type stubLoader struct{}

func (stubLoader) Load(_ context.Context, ref string) (image.Image, error) {
	if ref == "" {
		return nil, errors.New("no image")
	}
	return imaging.New(20, 20, color.NRGBA{B: 255, A: 255}), nil
}

func str(s string) *string { return &s }

func testItems() []catalog.Item {
	return []catalog.Item{
		{ID: "A1", Category: "Figures", SubCategory: str("Series 1"), NameKo: "베이", Image: str("a1.png")},
		{ID: "A2", Category: "Figures", SubCategory: str("Series 2"), NameKo: "세이스"},
		{ID: "B1", Category: "Goods", NameKo: "키링", Price: str("800")},
		{ID: "MF01", Category: "Metal", NameKo: "메탈"},
	}
}

func newService(t *testing.T) (*Service, *catalog.Store) {
	t.Helper()
	store := catalog.NewStore(testItems())
	class := catalog.VariantClass{Prefix: "MF", Separator: "_", Variants: catalog.DefaultVariants()}
	ledger := ownership.New(storage.NewMemoryKV(), class)
	require.NoError(t, ledger.Load(context.Background()))
	return NewService(store, ledger, render.NewRenderer(stubLoader{}, render.DefaultFonts()), nil), store
}

func newRouter(svc *Service) *mux.Router {
	r := mux.NewRouter()
	RegisterRoutes(r, svc)
	return r
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

func TestCategories(t *testing.T) {
	svc, _ := newService(t)
	rec := do(t, newRouter(svc), "GET", "/categories", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var nodes []catalog.CategoryNode
	decode(t, rec, &nodes)
	require.Len(t, nodes, 3)
	assert.Equal(t, "Figures", nodes[0].Name)
	assert.Equal(t, []string{"Series 1", "Series 2"}, nodes[0].SubCategories)
}

func TestCatalogUnavailable(t *testing.T) {
	svc, store := newService(t)
	store.Fail(errors.New("sheet down"))
	r := newRouter(svc)

	for _, target := range []string{"/categories", "/items", "/progress", "/progress/chart"} {
		rec := do(t, r, "GET", target, "")
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code, target)
	}
	rec := do(t, r, "POST", "/owned/A1/toggle", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestToggleAndItems(t *testing.T) {
	svc, _ := newService(t)
	r := newRouter(svc)

	rec := do(t, r, "POST", "/owned/A1/toggle", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Key   string `json:"key"`
		Owned bool   `json:"owned"`
	}
	decode(t, rec, &body)
	assert.True(t, body.Owned)

	rec = do(t, r, "POST", "/owned/MF01_red/toggle", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, r, "GET", "/items?category=Figures", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var groups []GroupView
	decode(t, rec, &groups)
	require.Len(t, groups, 2)
	assert.Equal(t, "Series 1", groups[0].Key)
	assert.Equal(t, 1, groups[0].Count.Owned)
	assert.True(t, groups[0].Items[0].Owned)
	assert.False(t, groups[1].Items[0].Owned)

	rec = do(t, r, "GET", "/items?category=Metal", "")
	decode(t, rec, &groups)
	require.Len(t, groups, 1)
	assert.True(t, groups[0].Items[0].VariantClass)
	assert.Equal(t, []string{"red"}, groups[0].Items[0].OwnedVariants)
	assert.True(t, groups[0].Items[0].Owned)
}

func TestToggleRejectsUnknownKeys(t *testing.T) {
	svc, _ := newService(t)
	r := newRouter(svc)

	for _, key := range []string{"ZZ9", "MF01", "MF01_purple", "A1_red"} {
		rec := do(t, r, "POST", "/owned/"+key+"/toggle", "")
		assert.Equal(t, http.StatusNotFound, rec.Code, key)
	}
	assert.Empty(t, svc.OwnedKeys())
}

func TestClearRequiresConfirm(t *testing.T) {
	svc, _ := newService(t)
	r := newRouter(svc)
	_, err := svc.Toggle(context.Background(), "B1")
	require.NoError(t, err)

	rec := do(t, r, "DELETE", "/owned", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, []string{"B1"}, svc.OwnedKeys())

	rec = do(t, r, "DELETE", "/owned?confirm=true", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, svc.OwnedKeys())

	rec = do(t, r, "GET", "/owned", "")
	assert.JSONEq(t, `{"keys":[]}`, rec.Body.String())
}

func TestProgress(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	for _, k := range []string{"A1", "MF01_gold", "MF01_black"} {
		_, err := svc.Toggle(ctx, k)
		require.NoError(t, err)
	}

	rec := do(t, newRouter(svc), "GET", "/progress", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var p ProgressView
	decode(t, rec, &p)

	assert.Equal(t, 2, p.Overall.Owned)
	assert.Equal(t, 4, p.Overall.Total)
	assert.Equal(t, 50, p.Overall.Percent)
	require.Len(t, p.Categories, 3)
	assert.Equal(t, "1/2 (50%)", p.Categories[0].Text())
	assert.Equal(t, "0/1 (0%)", p.Categories[1].Text())
	assert.Equal(t, "1/1 (100%)", p.Categories[2].Text())
}

func TestProgressChart(t *testing.T) {
	svc, _ := newService(t)
	rec := do(t, newRouter(svc), "GET", "/progress/chart", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), "Figures")
}

func TestRenderWithoutOwnedItems(t *testing.T) {
	svc, _ := newService(t)
	r := newRouter(svc)

	rec := do(t, r, "POST", "/render", "")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = do(t, r, "GET", "/render/collection", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRenderAndDownload(t *testing.T) {
	svc, _ := newService(t)
	r := newRouter(svc)
	ctx := context.Background()
	for _, k := range []string{"A1", "A2", "MF01_red"} {
		_, err := svc.Toggle(ctx, k)
		require.NoError(t, err)
	}

	rec := do(t, r, "POST", "/render", `{"options":{"show_title":true,"title":"Mine","names":"secondary","show_price":true},"theme":1}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var res RenderResult
	decode(t, rec, &res)
	assert.True(t, res.Published)
	assert.Equal(t, uint64(1), res.Generation)
	assert.Equal(t, []string{"A2", "MF01"}, res.Missing)
	assert.Equal(t, 3, res.Layout.Items)
	assert.Equal(t, "kenshi_collection_list.jpg", res.Collection.FileName)

	rec = do(t, r, "GET", "/render/collection?download=1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/jpeg", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="kenshi_collection_list.jpg"`, rec.Header().Get("Content-Disposition"))
	img, err := imaging.Decode(rec.Body)
	require.NoError(t, err)
	assert.Equal(t, res.Layout.Width, img.Bounds().Dx())

	rec = do(t, r, "GET", "/render/stats", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.Empty(t, rec.Header().Get("Content-Disposition"))

	rec = do(t, r, "GET", "/render/stats/preview", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var preview map[string]interface{}
	decode(t, rec, &preview)
	assert.True(t, strings.HasPrefix(preview["data_url"].(string), "data:image/png;base64,"))

	rec = do(t, r, "GET", "/render/poster", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRenderRejectsBadInput(t *testing.T) {
	svc, _ := newService(t)
	r := newRouter(svc)
	_, err := svc.Toggle(context.Background(), "A1")
	require.NoError(t, err)

	rec := do(t, r, "POST", "/render", `{"theme":9}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, r, "POST", "/render", `{"options":{"names":"both"}}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, r, "POST", "/render", `not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStaleRenderIsNotPublished(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	_, err := svc.Toggle(ctx, "B1")
	require.NoError(t, err)

	first, err := svc.Generate(ctx, RenderRequest{})
	require.NoError(t, err)
	require.True(t, first.Published)

	// A newer generation has already been published.
	svc.mu.Lock()
	svc.published = 100
	svc.mu.Unlock()

	second, err := svc.Generate(ctx, RenderRequest{})
	require.NoError(t, err)
	assert.False(t, second.Published)

	latest, err := svc.Latest("collection")
	require.NoError(t, err)
	assert.Equal(t, first.Collection.ID, latest.ID)
}
