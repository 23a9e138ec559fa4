package serviceImp

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"policygen/database"
	"policygen/pkg/kb/converter"
	"policygen/pkg/kb/embedder"
	"policygen/pkg/kb/repository"
	"policygen/pkg/kb/repositoryImp"
	"policygen/pkg/kb/splitter"
	"policygen/pkg/logger"
)

func newSvc(t *testing.T, emb embedder.Embedder) (*Svc, repository.KBRepository) {
	t.Helper()
	db, err := database.OpenStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })

	repo := repositoryImp.New(db)
	sp, err := splitter.New(10, 2)
	require.NoError(t, err)
	return New(repo, emb, converter.NewRegistry(), sp, Options{Logger: logger.Discard()}), repo
}

func sentences(topic string, n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = fmt.Sprintf("The %s clause number %d applies.", topic, i)
	}
	return strings.Join(parts, " ")
}

func TestIndexEmptyDirLeavesStoreUntouched(t *testing.T) {
	ctx := context.Background()
	s, repo := newSvc(t, embedder.NewHashing(32))

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.pdf.bak"), []byte("x"), 0o644))

	rep, err := s.Index(ctx, dir)
	require.NoError(t, err)
	assert.True(t, rep.Skipped)

	rep, err = s.Index(ctx, filepath.Join(dir, "missing"))
	require.NoError(t, err)
	assert.True(t, rep.Skipped)

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
	info, err := repo.Info(ctx)
	require.NoError(t, err)
	assert.Nil(t, info)
}

func TestIndexChunkCountsAndSearch(t *testing.T) {
	ctx := context.Background()
	s, repo := newSvc(t, embedder.NewHashing(embedder.HashingDimension))

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "auto.txt"), []byte(sentences("vehicle collision", 12)), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "life.txt"), []byte(sentences("beneficiary payout", 5)), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "skip.md"), []byte("Ignored."), 0o644))

	rep, err := s.Index(ctx, dir)
	require.NoError(t, err)
	assert.False(t, rep.Skipped)
	assert.Len(t, rep.Files, 2)
	// 12 sentences -> 2 windows, 5 sentences -> 1 window
	assert.Equal(t, 3, rep.Chunks)
	assert.Equal(t, "hashing-384", rep.Embedder)
	assert.Equal(t, 384, rep.Dimension)

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)

	docs, err := s.Search(ctx, "beneficiary payout", 0)
	require.NoError(t, err)
	require.Len(t, docs, 3)
	assert.Equal(t, filepath.Join(dir, "life.txt"), docs[0].Meta[splitter.MetaFilePath])
	for i := 1; i < len(docs); i++ {
		assert.GreaterOrEqual(t, *docs[i-1].Score, *docs[i].Score)
	}

	docs, err = s.Search(ctx, "vehicle", 1)
	require.NoError(t, err)
	assert.Len(t, docs, 1)

	docs, err = s.Search(ctx, "   ", 3)
	require.NoError(t, err)
	assert.Empty(t, docs)

	st, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 3, st.Documents)
	require.NotNil(t, st.Info)
	assert.Equal(t, 3, st.Info.DocumentCount)
}

func TestIndexReplacesPreviousRun(t *testing.T) {
	ctx := context.Background()
	s, repo := newSvc(t, embedder.NewHashing(16))

	dir := t.TempDir()
	p := filepath.Join(dir, "a.txt")
	require.NoError(t, os.WriteFile(p, []byte(sentences("fire", 30)), 0o644))
	_, err := s.Index(ctx, dir)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(p, []byte(sentences("fire", 3)), 0o644))
	_, err = s.Index(ctx, dir)
	require.NoError(t, err)

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

type failingEmbedder struct{ embedder.Embedder }

func (failingEmbedder) EmbedDocuments(context.Context, []string) ([][]float32, error) {
	return nil, errors.New("model unavailable")
}

func TestIndexPropagatesEmbedderError(t *testing.T) {
	ctx := context.Background()
	s, repo := newSvc(t, failingEmbedder{embedder.NewHashing(8)})

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("One. Two."), 0o644))

	_, err := s.Index(ctx, dir)
	require.ErrorContains(t, err, "model unavailable")

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}
