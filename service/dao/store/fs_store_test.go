package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/viant/toolgate/service/dao"
)

type fsRecord struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Note   string `json:"note,omitempty"`
}

func TestFsStore(t *testing.T) {
	ctx := context.Background()
	store, err := NewFsStore[fsRecord](t.TempDir(), func(r *fsRecord) string { return r.ID })
	assert.Nil(t, err)
	store.WithStatusSelector(func(r *fsRecord) string { return r.Status })

	assert.Nil(t, store.Create(ctx, &fsRecord{ID: "r1", Status: "queued"}))
	assert.ErrorIs(t, store.Create(ctx, &fsRecord{ID: "r1", Status: "queued"}), dao.ErrAlreadyExists)

	loaded, err := store.Load(ctx, "r1")
	assert.Nil(t, err)
	if assert.NotNil(t, loaded) {
		assert.Equal(t, "queued", loaded.Status)
	}

	// absent key is (nil, nil), matching the memory store contract
	absent, err := store.Load(ctx, "missing")
	assert.Nil(t, err)
	assert.Nil(t, absent)

	loaded.Status = "running"
	assert.Nil(t, store.Save(ctx, loaded))
	assert.Nil(t, store.Save(ctx, &fsRecord{ID: "r2", Status: "queued"}))

	queued, err := store.List(ctx, dao.NewParameter("Status", "queued"))
	assert.Nil(t, err)
	assert.Equal(t, 1, len(queued))

	all, err := store.List(ctx)
	assert.Nil(t, err)
	assert.Equal(t, 2, len(all))

	assert.Nil(t, store.Delete(ctx, "r2"))
	assert.ErrorIs(t, store.Delete(ctx, "r2"), dao.ErrNotFound)
}

func TestFsStore_nestedKeys(t *testing.T) {
	ctx := context.Background()
	store, err := NewFsStore[fsRecord](t.TempDir(), func(r *fsRecord) string { return r.ID })
	assert.Nil(t, err)

	assert.Nil(t, store.Save(ctx, &fsRecord{ID: "task-1/call-1", Status: "requested"}))
	loaded, err := store.Load(ctx, "task-1/call-1")
	assert.Nil(t, err)
	assert.NotNil(t, loaded)
}
