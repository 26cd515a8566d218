package catalog

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCSV = `id,category,sub_category,nameKo,nameJp,price,image
A1,Figures,Series 1,베이,ベイ,"1,500",http://img/a1.png
A2,Figures,Series 2,세이스,,,
A3,Figures,Series 1,"이름, 쉼표",,,
B1,Goods,,키링,キーリング,800,
,Goods,,no id,,,
B2,Goods
A1,Figures,,dup,,,
MF01,Metal,,메탈,,,
`

func parseSample(t *testing.T) []Item {
	t.Helper()
	items, err := Parse(strings.NewReader(sampleCSV))
	require.NoError(t, err)
	return items
}

func ids(items []Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out
}

func TestParseSkipsInvalidRows(t *testing.T) {
	items := parseSample(t)

	assert.Equal(t, []string{"A1", "A2", "A3", "B1", "MF01"}, ids(items))
	assert.Equal(t, "1,500", *items[0].Price)
	assert.Equal(t, "이름, 쉼표", items[2].NameKo)
	assert.Nil(t, items[1].NameJp)
	assert.Nil(t, items[1].Price)
	assert.Nil(t, items[3].SubCategory)
	assert.Equal(t, "", items[3].ImageRef())
}

func TestParseKeepsRowsWithoutCategory(t *testing.T) {
	csv := "id,category,sub_category,nameKo,nameJp,price,image\nA1,Figures,,a,,,\nX9,,,orphan,,,\n"
	items, err := Parse(strings.NewReader(csv))
	require.NoError(t, err)

	require.Equal(t, []string{"A1", "X9"}, ids(items))
	assert.Equal(t, "", items[1].Category)
	assert.Equal(t, "", GroupKey(items[1]))

	s := NewStore(items)
	nodes := s.Categories()
	require.Len(t, nodes, 2)
	assert.Equal(t, "", nodes[1].Name)
	assert.Len(t, s.All(), 2)
}

func TestValidateRequiresOnlyID(t *testing.T) {
	assert.NoError(t, (&Item{ID: "X9"}).Validate())

	err := (&Item{ID: " ", Category: "Figures"}).Validate()
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, map[string]string{"id": "is required"}, verr.Errors)
}

func TestParseNormalisesToNFC(t *testing.T) {
	// U+1100 U+1161 is the decomposed form of 가.
	csv := "id,category,sub_category,nameKo,nameJp,price,image\nX,C,,\u1100\u1161,,,\n"
	items, err := Parse(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "\uac00", items[0].NameKo)
}

func TestParseRequiresIDColumn(t *testing.T) {
	_, err := Parse(strings.NewReader("name,category\nx,y\n"))
	require.Error(t, err)
}

func TestSelect(t *testing.T) {
	s := NewStore(parseSample(t))

	assert.Len(t, s.Select(Selection{}), 5)
	assert.Equal(t, []string{"A1", "A2", "A3"}, ids(s.Select(Selection{Category: "Figures"})))
	assert.Equal(t, []string{"A1", "A3"}, ids(s.Select(Selection{Category: "Figures", SubCategory: "Series 1"})))
	assert.Empty(t, s.Select(Selection{Category: "Nope"}))
	// A subcategory without a category is not a filter.
	assert.Len(t, s.Select(Selection{SubCategory: "Series 1"}), 5)
}

func TestGroupItemsKeepsFirstSeenOrder(t *testing.T) {
	groups := GroupItems(parseSample(t))

	require.Len(t, groups, 4)
	assert.Equal(t, "Series 1", groups[0].Key)
	assert.Equal(t, []string{"A1", "A3"}, ids(groups[0].Items))
	assert.Equal(t, "Series 2", groups[1].Key)
	assert.Equal(t, "Goods", groups[2].Key)
	assert.Equal(t, "Metal", groups[3].Key)
}

func TestCategories(t *testing.T) {
	nodes := NewStore(parseSample(t)).Categories()

	require.Len(t, nodes, 3)
	assert.Equal(t, CategoryNode{Name: "Figures", SubCategories: []string{"Series 1", "Series 2"}}, nodes[0])
	assert.Equal(t, CategoryNode{Name: "Goods", SubCategories: []string{}}, nodes[1])
}

func TestStoreFailIsReported(t *testing.T) {
	s := NewStore(parseSample(t))
	s.Fail(errors.New("dns"))

	assert.ErrorIs(t, s.Err(), ErrUnavailable)
	assert.Zero(t, s.Len())

	s.Replace(parseSample(t))
	assert.NoError(t, s.Err())
}

func TestFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(sampleCSV))
	}))
	defer srv.Close()

	items, err := Fetch(context.Background(), srv.Client(), srv.URL+"/sheet.csv")
	require.NoError(t, err)
	assert.Len(t, items, 5)

	_, err = Fetch(context.Background(), srv.Client(), srv.URL+"/missing")
	var ext ExternalError
	require.ErrorAs(t, err, &ext)
	assert.Equal(t, srv.URL+"/missing", ext.Source)
}

func TestVariantClass(t *testing.T) {
	vc := VariantClass{Prefix: "MF", Separator: "_", Variants: DefaultVariants()}

	assert.True(t, vc.Matches(Item{ID: "MF01"}))
	assert.False(t, vc.Matches(Item{ID: "A1"}))
	assert.Equal(t, "MF01_red", vc.Key("MF01", "red"))

	c, ok := vc.Color("gold")
	assert.True(t, ok)
	assert.Equal(t, "#d4af37", c)
}

func TestWatchReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.csv")
	require.NoError(t, os.WriteFile(path, []byte(sampleCSV), 0o600))

	items, err := LoadFile(path)
	require.NoError(t, err)
	store := NewStore(items)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Watch(ctx, path, store) }()

	// Give the watcher time to register before writing.
	time.Sleep(200 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte("id,category\nZ1,New\n"), 0o600))

	assert.Eventually(t, func() bool { return store.Len() == 1 }, 5*time.Second, 50*time.Millisecond)
	cancel()
	assert.NoError(t, <-done)
}
