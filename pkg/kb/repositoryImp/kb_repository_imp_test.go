package repositoryImp

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"policygen/database"
	"policygen/entities"
	"policygen/pkg/kb/repository"
)

func newRepo(t *testing.T) repository.KBRepository {
	t.Helper()
	db, err := database.OpenStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })
	return New(db)
}

func doc(id, content string, vec ...float32) entities.Document {
	return entities.Document{
		ID:        id,
		Content:   content,
		Meta:      map[string]any{"file_path": "data/" + id + ".txt", "split_id": 0},
		Embedding: vec,
		Dimension: len(vec),
	}
}

func TestReplaceAllAndQuery(t *testing.T) {
	ctx := context.Background()
	r := newRepo(t)

	info, err := r.Info(ctx)
	require.NoError(t, err)
	assert.Nil(t, info)

	docs := []entities.Document{
		doc("a", "flood cover", 1, 0, 0),
		doc("b", "fire cover", 0, 1, 0),
		doc("c", "flood and fire", 0.7, 0.7, 0),
	}
	require.NoError(t, r.ReplaceAll(ctx, docs, entities.StoreInfo{Embedder: "test", Dimension: 3}))

	n, err := r.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)

	got, err := r.Query(ctx, entities.Vector{1, 0, 0}, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].ID)
	assert.Equal(t, "c", got[1].ID)
	require.NotNil(t, got[0].Score)
	assert.InDelta(t, 1.0, *got[0].Score, 1e-6)
	assert.GreaterOrEqual(t, *got[0].Score, *got[1].Score)
	assert.Equal(t, "data/a.txt", got[0].Meta["file_path"])
	assert.Equal(t, entities.Vector{1, 0, 0}, got[0].Embedding)

	info, err = r.Info(ctx)
	require.NoError(t, err)
	require.NotNil(t, info)
	assert.Equal(t, "test", info.Embedder)
	assert.Equal(t, 3, info.Dimension)
	assert.Equal(t, 3, info.DocumentCount)
}

func TestReplaceAllOverwrites(t *testing.T) {
	ctx := context.Background()
	r := newRepo(t)

	require.NoError(t, r.ReplaceAll(ctx, []entities.Document{doc("a", "old", 1, 0)}, entities.StoreInfo{Embedder: "x", Dimension: 2}))
	require.NoError(t, r.ReplaceAll(ctx, []entities.Document{doc("b", "new", 0, 1)}, entities.StoreInfo{Embedder: "y", Dimension: 2}))

	n, err := r.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	_, err = r.Get(ctx, "a")
	require.Error(t, err)
	d, err := r.Get(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, "new", d.Content)

	info, err := r.Info(ctx)
	require.NoError(t, err)
	assert.Equal(t, "y", info.Embedder)
}

func TestQueryEdgeCases(t *testing.T) {
	ctx := context.Background()
	r := newRepo(t)

	got, err := r.Query(ctx, entities.Vector{1, 0}, 5)
	require.NoError(t, err)
	assert.Empty(t, got)

	require.NoError(t, r.ReplaceAll(ctx, []entities.Document{doc("a", "x", 1, 0)}, entities.StoreInfo{Embedder: "x", Dimension: 2}))

	got, err = r.Query(ctx, entities.Vector{1, 0}, 0)
	require.NoError(t, err)
	assert.Empty(t, got)

	// a vector of another dimension never matches
	got, err = r.Query(ctx, entities.Vector{1, 0, 0}, 5)
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = r.Query(ctx, entities.Vector{1, 0}, 5)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestReplaceAllLargeBatch(t *testing.T) {
	ctx := context.Background()
	r := newRepo(t)

	docs := make([]entities.Document, 450)
	for i := range docs {
		docs[i] = doc(fmt.Sprintf("d%03d", i), "chunk", float32(i+1), 1)
	}
	require.NoError(t, r.ReplaceAll(ctx, docs, entities.StoreInfo{Embedder: "x", Dimension: 2}))

	n, err := r.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 450, n)
	require.NoError(t, r.Ping(ctx))
}
