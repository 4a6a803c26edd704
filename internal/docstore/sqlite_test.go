package docstore

import (
	"context"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	store := NewSQLiteStore()
	require.NoError(t, store.Open(":memory:"))
	require.NoError(t, store.Migrate())
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSQLiteStore_SaveLoadRoundtrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	doc := map[string]any{"name": "wb1", "title": "Revenue"}
	require.NoError(t, store.Save(ctx, DoctypeWorkbook, "wb1", doc))

	raw, err := store.Load(ctx, DoctypeWorkbook, "wb1")
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, "Revenue", got["title"])
}

func TestSQLiteStore_SaveUpserts(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, DoctypeWorkbook, "wb1", map[string]any{"title": "v1"}))
	require.NoError(t, store.Save(ctx, DoctypeWorkbook, "wb1", map[string]any{"title": "v2"}))

	raw, err := store.Load(ctx, DoctypeWorkbook, "wb1")
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, "v2", got["title"])
}

func TestSQLiteStore_LoadMissing(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Load(context.Background(), DoctypeWorkbook, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLiteStore_Delete(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, DoctypeQuery, "q1", map[string]any{"name": "q1"}))
	require.NoError(t, store.Delete(ctx, DoctypeQuery, "q1"))

	_, err := store.Load(ctx, DoctypeQuery, "q1")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, store.Delete(ctx, DoctypeQuery, "q1"), ErrNotFound)
}

func TestSQLiteStore_DoctypesAreSeparateNamespaces(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, DoctypeQuery, "shared-name", map[string]any{"kind": "query"}))
	require.NoError(t, store.Save(ctx, DoctypeChart, "shared-name", map[string]any{"kind": "chart"}))

	require.NoError(t, store.Delete(ctx, DoctypeQuery, "shared-name"))

	_, err := store.Load(ctx, DoctypeChart, "shared-name")
	assert.NoError(t, err, "deleting a query must not delete the chart of the same name")
}

func TestSQLiteStore_ShareRoundtrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.Call(ctx, DoctypeWorkbook, "wb1", MethodUpdateShares, map[string]any{
		"permissions": []SharePermission{
			{User: "bob", Read: true, Write: false},
			{User: "carol", Read: true, Write: true},
		},
	})
	require.NoError(t, err)

	raw, err := store.Call(ctx, DoctypeWorkbook, "wb1", MethodGetShares, nil)
	require.NoError(t, err)

	var perms []SharePermission
	require.NoError(t, json.Unmarshal(raw, &perms))
	assert.Equal(t, []SharePermission{
		{User: "bob", Read: true, Write: false},
		{User: "carol", Read: true, Write: true},
	}, perms)
}

func TestSQLiteStore_UpdateSharesReplaces(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.Call(ctx, DoctypeWorkbook, "wb1", MethodUpdateShares, map[string]any{
		"permissions": []SharePermission{{User: "bob", Read: true, Write: true}},
	})
	require.NoError(t, err)

	_, err = store.Call(ctx, DoctypeWorkbook, "wb1", MethodUpdateShares, map[string]any{
		"permissions": []SharePermission{{User: "dave", Read: true, Write: false}},
	})
	require.NoError(t, err)

	raw, err := store.Call(ctx, DoctypeWorkbook, "wb1", MethodGetShares, nil)
	require.NoError(t, err)

	var perms []SharePermission
	require.NoError(t, json.Unmarshal(raw, &perms))
	require.Len(t, perms, 1)
	assert.Equal(t, "dave", perms[0].User)
}

func TestSQLiteStore_DeleteRemovesShares(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, DoctypeWorkbook, "wb1", map[string]any{"name": "wb1"}))
	_, err := store.Call(ctx, DoctypeWorkbook, "wb1", MethodUpdateShares, map[string]any{
		"permissions": []SharePermission{{User: "bob", Read: true, Write: true}},
	})
	require.NoError(t, err)

	require.NoError(t, store.Delete(ctx, DoctypeWorkbook, "wb1"))

	raw, err := store.Call(ctx, DoctypeWorkbook, "wb1", MethodGetShares, nil)
	require.NoError(t, err)

	var perms []SharePermission
	require.NoError(t, json.Unmarshal(raw, &perms))
	assert.Empty(t, perms)
}

func TestSQLiteStore_UnsupportedMethod(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Call(context.Background(), DoctypeWorkbook, "wb1", "run_report", nil)
	assert.Error(t, err)
}
