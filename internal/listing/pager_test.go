package listing

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fileconsole/internal/model"
)

// fakeLister answers with a 25-row collection served 10 rows a page, and
// records every request it receives.
type fakeLister struct {
	total    int
	err      error
	requests []model.FileListParams
}

func (f *fakeLister) List(ctx context.Context, params model.FileListParams) ([]model.StoredFile, int, error) {
	f.requests = append(f.requests, params)
	if f.err != nil {
		return nil, 0, f.err
	}

	start := (params.PageNumber - 1) * params.PageSize
	count := params.PageSize
	if start+count > f.total {
		count = f.total - start
	}
	if count < 0 {
		count = 0
	}

	rows := make([]model.StoredFile, count)
	for i := range rows {
		rows[i] = model.StoredFile{ID: fmt.Sprintf("f%d", start+i+1)}
	}
	return rows, f.total, nil
}

func TestPagerLoad(t *testing.T) {
	lister := &fakeLister{total: 25}
	pager := NewPager(lister, 10)

	require.NoError(t, pager.Load(context.Background()))

	assert.Equal(t, 1, pager.CurrentPage())
	assert.Equal(t, 25, pager.Total())
	assert.Equal(t, 3, pager.TotalPages())
	require.Len(t, pager.Rows(), 10)
	assert.Equal(t, "f1", pager.Rows()[0].ID)
}

func TestPagerNavigation(t *testing.T) {
	t.Run("next and previous move within range", func(t *testing.T) {
		lister := &fakeLister{total: 25}
		pager := NewPager(lister, 10)
		require.NoError(t, pager.Load(context.Background()))

		require.NoError(t, pager.NextPage(context.Background()))
		assert.Equal(t, 2, pager.CurrentPage())
		assert.Equal(t, "f11", pager.Rows()[0].ID)

		require.NoError(t, pager.PreviousPage(context.Background()))
		assert.Equal(t, 1, pager.CurrentPage())
		assert.Equal(t, "f1", pager.Rows()[0].ID)
	})

	t.Run("last page is short", func(t *testing.T) {
		lister := &fakeLister{total: 25}
		pager := NewPager(lister, 10)
		require.NoError(t, pager.Load(context.Background()))

		require.NoError(t, pager.GoToPage(context.Background(), 3))
		assert.Len(t, pager.Rows(), 5)
	})

	t.Run("out-of-range pages fetch nothing", func(t *testing.T) {
		lister := &fakeLister{total: 25}
		pager := NewPager(lister, 10)
		require.NoError(t, pager.Load(context.Background()))
		fetched := len(lister.requests)

		require.NoError(t, pager.GoToPage(context.Background(), 0))
		require.NoError(t, pager.GoToPage(context.Background(), 4))
		require.NoError(t, pager.PreviousPage(context.Background()))

		assert.Equal(t, 1, pager.CurrentPage())
		assert.Equal(t, fetched, len(lister.requests))
	})

	t.Run("failed page change restores the previous page", func(t *testing.T) {
		lister := &fakeLister{total: 25}
		pager := NewPager(lister, 10)
		require.NoError(t, pager.Load(context.Background()))

		lister.err = errors.New("boom")
		require.Error(t, pager.NextPage(context.Background()))
		assert.Equal(t, 1, pager.CurrentPage())
	})
}

func TestPagerFilters(t *testing.T) {
	t.Run("filter change resets to page one and sends criteria", func(t *testing.T) {
		lister := &fakeLister{total: 25}
		pager := NewPager(lister, 10)
		require.NoError(t, pager.Load(context.Background()))
		require.NoError(t, pager.GoToPage(context.Background(), 2))

		require.NoError(t, pager.SetFilters(context.Background(), Filters{
			Name: "report",
			Tag:  "archive",
		}))

		assert.Equal(t, 1, pager.CurrentPage())
		last := lister.requests[len(lister.requests)-1]
		assert.Equal(t, "report", last.Name)
		assert.Equal(t, "archive", last.Tag)
		assert.Equal(t, 1, last.PageNumber)
		assert.Equal(t, 10, last.PageSize)
	})

	t.Run("clear filters drops criteria and reloads", func(t *testing.T) {
		lister := &fakeLister{total: 25}
		pager := NewPager(lister, 10)
		require.NoError(t, pager.SetFilters(context.Background(), Filters{Name: "report"}))

		require.NoError(t, pager.ClearFilters(context.Background()))

		assert.Equal(t, Filters{}, pager.Filters())
		last := lister.requests[len(lister.requests)-1]
		assert.Empty(t, last.Name)
	})
}

func TestPagerLoadFailure(t *testing.T) {
	lister := &fakeLister{total: 25}
	pager := NewPager(lister, 10)
	require.NoError(t, pager.Load(context.Background()))
	require.NotEmpty(t, pager.Rows())

	lister.err = errors.New("boom")
	require.Error(t, pager.Load(context.Background()))

	assert.Empty(t, pager.Rows())
	assert.Zero(t, pager.Total())
	assert.Equal(t, 1, pager.TotalPages())
}

func TestPagerEmptyCollection(t *testing.T) {
	lister := &fakeLister{total: 0}
	pager := NewPager(lister, 10)
	require.NoError(t, pager.Load(context.Background()))

	assert.Empty(t, pager.Rows())
	assert.Equal(t, 1, pager.TotalPages())
	assert.Equal(t, 1, pager.CurrentPage())

	require.NoError(t, pager.NextPage(context.Background()))
	assert.Equal(t, 1, pager.CurrentPage())
}

func TestNewPagerDefaultsPageSize(t *testing.T) {
	pager := NewPager(&fakeLister{}, 0)
	assert.Equal(t, DefaultPageSize, pager.PageSize())
}
