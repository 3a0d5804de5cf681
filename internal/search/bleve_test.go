package search

import (
	"context"
	"testing"
	"time"

	"github.com/amiyamandal-dev/inkwell/internal/domain"
	"github.com/amiyamandal-dev/inkwell/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestIndex(t *testing.T) *BleveIndex {
	t.Helper()
	idx, err := OpenInMemory(logger.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = idx.Close() })
	return idx
}

func sampleArticles() []*domain.Article {
	now := time.Now()
	return []*domain.Article{
		{ID: "a1", Title: "Writing servers in Go", Content: "goroutines and channels everywhere",
			Category: "Tech", Tags: []string{"Go", "Concurrency"}, Author: "u1", IsPublished: true, CreatedAt: now.Add(-2 * time.Hour)},
		{ID: "a2", Title: "Sourdough notes", Content: "flour water salt and patience",
			Category: "Life", Tags: []string{"Baking"}, Author: "u2", IsPublished: true, CreatedAt: now.Add(-time.Hour)},
		{ID: "a3", Title: "Draft about Go generics", Content: "type parameters in practice",
			Category: "Tech", Tags: []string{"Go"}, Author: "u1", IsPublished: false, CreatedAt: now},
	}
}

func TestBleveIndex_Search(t *testing.T) {
	idx := newTestIndex(t)
	ctx := context.Background()
	for _, a := range sampleArticles() {
		require.NoError(t, idx.IndexArticle(ctx, a))
	}

	count, err := idx.Count()
	require.NoError(t, err)
	assert.EqualValues(t, 3, count)

	res, err := idx.Search(ctx, &Query{Keyword: "goroutines"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a1"}, res.IDs)

	res, err = idx.Search(ctx, &Query{Keyword: "go", PublishedOnly: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"a1"}, res.IDs)

	res, err = idx.Search(ctx, &Query{Tag: "go"})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a1", "a3"}, res.IDs)

	res, err = idx.Search(ctx, &Query{Category: "life"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a2"}, res.IDs)

	res, err = idx.Search(ctx, &Query{Author: "u1", PublishedOnly: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"a1"}, res.IDs)
}

func TestBleveIndex_DeleteAndRebuild(t *testing.T) {
	idx := newTestIndex(t)
	ctx := context.Background()
	articles := sampleArticles()
	for _, a := range articles {
		require.NoError(t, idx.IndexArticle(ctx, a))
	}

	require.NoError(t, idx.DeleteArticle(ctx, "a2"))
	res, err := idx.Search(ctx, &Query{Keyword: "sourdough"})
	require.NoError(t, err)
	assert.Empty(t, res.IDs)

	articles[0].Title = "Writing services in Go"
	require.NoError(t, idx.Rebuild(ctx, articles[:1]))

	count, err := idx.Count()
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)

	res, err = idx.Search(ctx, &Query{Keyword: "services"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a1"}, res.IDs)
}
