package ownership

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zjoart/kenshicollection/internal/catalog"
	"github.com/zjoart/kenshicollection/internal/storage"
)

var metal = catalog.VariantClass{Prefix: "MF", Separator: "_", Variants: catalog.DefaultVariants()}

func newLedger(t *testing.T) (*Ledger, *storage.MemoryKV) {
	t.Helper()
	kv := storage.NewMemoryKV()
	l := New(kv, metal)
	require.NoError(t, l.Load(context.Background()))
	return l, kv
}

func TestToggleTwiceRestoresLedger(t *testing.T) {
	ctx := context.Background()
	l, kv := newLedger(t)
	_, err := l.Toggle(ctx, "B1")
	require.NoError(t, err)
	before := l.Keys()

	for _, k := range []string{"A1", "B1", "MF01_red"} {
		owned, err := l.Toggle(ctx, k)
		require.NoError(t, err)
		again, err := l.Toggle(ctx, k)
		require.NoError(t, err)
		assert.NotEqual(t, owned, again, k)
		assert.Equal(t, before, l.Keys(), k)
	}

	raw, err := kv.Get(ctx, SlotKey)
	require.NoError(t, err)
	assert.JSONEq(t, `["B1"]`, raw)
}

func TestVariantOwnership(t *testing.T) {
	ctx := context.Background()
	l, _ := newLedger(t)
	item := catalog.Item{ID: "MF01", Category: "Metal"}

	assert.False(t, l.IsOwned(item))

	_, err := l.Toggle(ctx, "MF01")
	require.NoError(t, err)
	assert.False(t, l.IsOwned(item), "bare key does not own a variant-class item")

	_, _ = l.Toggle(ctx, "MF01_red")
	_, _ = l.Toggle(ctx, "MF01_blue")
	assert.True(t, l.IsOwned(item))
	assert.Equal(t, []string{"red", "blue"}, l.OwnedVariants("MF01"))

	_, _ = l.Toggle(ctx, "MF01_red")
	assert.True(t, l.IsOwned(item))
	_, _ = l.Toggle(ctx, "MF01_blue")
	assert.False(t, l.IsOwned(item))
	assert.Empty(t, l.OwnedVariants("MF01"))
}

func TestPlainItemOwnership(t *testing.T) {
	l, _ := newLedger(t)
	item := catalog.Item{ID: "A1", Category: "Figures"}

	_, _ = l.Toggle(context.Background(), "A1_red")
	assert.False(t, l.IsOwned(item))
	_, _ = l.Toggle(context.Background(), "A1")
	assert.True(t, l.IsOwned(item))
}

func TestLoadMalformedStartsEmpty(t *testing.T) {
	ctx := context.Background()
	for _, raw := range []string{"{not json", `{"a":1}`, `[1,2]`} {
		kv := storage.NewMemoryKV()
		require.NoError(t, kv.Set(ctx, SlotKey, raw))
		l := New(kv, metal)
		require.NoError(t, l.Load(ctx), raw)
		assert.Zero(t, l.Len(), raw)
	}
}

func TestLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	l, kv := newLedger(t)
	_, _ = l.Toggle(ctx, "A1")
	_, _ = l.Toggle(ctx, "MF01_gold")

	reloaded := New(kv, metal)
	require.NoError(t, reloaded.Load(ctx))
	assert.Equal(t, []string{"A1", "MF01_gold"}, reloaded.Keys())
}

func TestClearRemovesSlot(t *testing.T) {
	ctx := context.Background()
	l, kv := newLedger(t)
	_, _ = l.Toggle(ctx, "A1")

	require.NoError(t, l.Clear(ctx))
	assert.Zero(t, l.Len())
	_, err := kv.Get(ctx, SlotKey)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

type failingKV struct{ *storage.MemoryKV }

func (failingKV) Set(context.Context, string, string) error { return errors.New("disk full") }

func TestToggleRollsBackOnSaveFailure(t *testing.T) {
	l := New(failingKV{storage.NewMemoryKV()}, metal)

	_, err := l.Toggle(context.Background(), "A1")
	require.Error(t, err)
	assert.False(t, l.Has("A1"))
}

func TestOwnedItemsKeepsOrder(t *testing.T) {
	ctx := context.Background()
	l, _ := newLedger(t)
	items := []catalog.Item{{ID: "A1"}, {ID: "A2"}, {ID: "MF01"}, {ID: "A3"}}
	_, _ = l.Toggle(ctx, "A3")
	_, _ = l.Toggle(ctx, "MF01_black")
	_, _ = l.Toggle(ctx, "A1")

	owned := l.OwnedItems(items)
	require.Len(t, owned, 3)
	assert.Equal(t, "A1", owned[0].ID)
	assert.Equal(t, "MF01", owned[1].ID)
	assert.Equal(t, "A3", owned[2].ID)
}
