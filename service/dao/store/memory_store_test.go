package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/viant/toolgate/service/dao"
)

type record struct {
	ID     string
	Status string
}

func TestMemoryStore_CreateIsExclusive(t *testing.T) {
	ctx := context.Background()
	aStore := NewMemoryStore[string, record](func(r *record) string { return r.ID })

	assert.NoError(t, aStore.Create(ctx, &record{ID: "r1"}))
	err := aStore.Create(ctx, &record{ID: "r1"})
	assert.ErrorIs(t, err, dao.ErrAlreadyExists)

	loaded, err := aStore.Load(ctx, "r1")
	assert.NoError(t, err)
	assert.NotNil(t, loaded)

	missing, err := aStore.Load(ctx, "absent")
	assert.NoError(t, err)
	assert.Nil(t, missing)
}

func TestMemoryStore_ListByStatus(t *testing.T) {
	ctx := context.Background()
	aStore := NewMemoryStoreWithStatus[string, record](
		func(r *record) string { return r.ID },
		func(r *record) string { return r.Status })

	_ = aStore.Save(ctx, &record{ID: "r1", Status: "queued"})
	_ = aStore.Save(ctx, &record{ID: "r2", Status: "running"})
	_ = aStore.Save(ctx, &record{ID: "r3", Status: "queued"})

	queued, err := aStore.List(ctx, dao.NewParameter("Status", "queued"))
	assert.NoError(t, err)
	assert.Len(t, queued, 2)

	all, err := aStore.List(ctx)
	assert.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestMemoryStore_HandsOutCopies(t *testing.T) {
	ctx := context.Background()
	aStore := NewMemoryStore[string, record](func(r *record) string { return r.ID })

	saved := &record{ID: "r1", Status: "queued"}
	assert.NoError(t, aStore.Save(ctx, saved))
	saved.Status = "mutated-after-save"

	first, err := aStore.Load(ctx, "r1")
	assert.NoError(t, err)
	assert.Equal(t, "queued", first.Status)

	first.Status = "mutated-after-load"
	second, err := aStore.Load(ctx, "r1")
	assert.NoError(t, err)
	assert.Equal(t, "queued", second.Status)
	assert.NotSame(t, first, second)

	listed, err := aStore.List(ctx)
	assert.NoError(t, err)
	if assert.Len(t, listed, 1) {
		assert.Equal(t, "queued", listed[0].Status)
	}
}

type boxed struct {
	ID    string
	Notes map[string]string
}

func TestMemoryStore_WithCloner(t *testing.T) {
	ctx := context.Background()
	aStore := NewMemoryStore[string, boxed](func(b *boxed) string { return b.ID }).
		WithCloner(func(b *boxed) *boxed {
			clone := *b
			clone.Notes = make(map[string]string, len(b.Notes))
			for k, v := range b.Notes {
				clone.Notes[k] = v
			}
			return &clone
		})

	assert.NoError(t, aStore.Save(ctx, &boxed{ID: "b1", Notes: map[string]string{"k": "v"}}))
	loaded, _ := aStore.Load(ctx, "b1")
	loaded.Notes["k"] = "changed"

	reloaded, _ := aStore.Load(ctx, "b1")
	assert.Equal(t, "v", reloaded.Notes["k"])
}

func TestFsStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	aStore, err := NewFsStore[record](t.TempDir(), func(r *record) string { return r.ID })
	assert.NoError(t, err)

	assert.NoError(t, aStore.Create(ctx, &record{ID: "r1", Status: "queued"}))
	assert.ErrorIs(t, aStore.Create(ctx, &record{ID: "r1"}), dao.ErrAlreadyExists)

	loaded, err := aStore.Load(ctx, "r1")
	assert.NoError(t, err)
	if assert.NotNil(t, loaded) {
		assert.Equal(t, "queued", loaded.Status)
	}

	missing, err := aStore.Load(ctx, "absent")
	assert.NoError(t, err)
	assert.Nil(t, missing)

	assert.NoError(t, aStore.Delete(ctx, "r1"))
	assert.ErrorIs(t, aStore.Delete(ctx, "r1"), dao.ErrNotFound)
}

func TestFsStore_NestedKeys(t *testing.T) {
	ctx := context.Background()
	aStore, err := NewFsStore[record](t.TempDir(), func(r *record) string { return r.ID })
	assert.NoError(t, err)

	assert.NoError(t, aStore.Save(ctx, &record{ID: "task-1/call-1", Status: "requested"}))
	loaded, err := aStore.Load(ctx, "task-1/call-1")
	assert.NoError(t, err)
	assert.NotNil(t, loaded)

	records, err := aStore.List(ctx)
	assert.NoError(t, err)
	assert.Len(t, records, 1)
}
