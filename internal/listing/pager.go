package listing

import (
	"context"

	"fileconsole/internal/model"
)

// Lister is the slice of the files API the pager needs.
type Lister interface {
	List(ctx context.Context, params model.FileListParams) ([]model.StoredFile, int, error)
}

// Filters are the conjunctive criteria sent with every page request. All
// fields are optional substrings except the two date bounds, which are
// ISO dates interpreted server-side (start inclusive from midnight, end
// inclusive through end of day).
type Filters struct {
	Name        string
	Tag         string
	ContentType string
	StartDate   string
	EndDate     string
}

// Pager drives the server-side paged listing: every filter or page change
// issues a fresh request carrying the filters plus pageNumber/pageSize,
// and the server's total count determines the page range.
type Pager struct {
	lister   Lister
	filters  Filters
	page     int
	pageSize int
	total    int
	rows     []model.StoredFile
}

const DefaultPageSize = 10

func NewPager(lister Lister, pageSize int) *Pager {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Pager{
		lister:   lister,
		page:     1,
		pageSize: pageSize,
		rows:     []model.StoredFile{},
	}
}

// Load fetches the current page. On failure the current rows are cleared
// and the error is returned for the caller to present; the pager itself
// never retries.
func (p *Pager) Load(ctx context.Context) error {
	rows, total, err := p.lister.List(ctx, model.FileListParams{
		Name:        p.filters.Name,
		Tag:         p.filters.Tag,
		ContentType: p.filters.ContentType,
		StartDate:   p.filters.StartDate,
		EndDate:     p.filters.EndDate,
		PageNumber:  p.page,
		PageSize:    p.pageSize,
	})
	if err != nil {
		p.rows = []model.StoredFile{}
		p.total = 0
		return err
	}

	p.rows = rows
	p.total = total
	return nil
}

// SetFilters replaces the criteria, resets to the first page, and
// refetches. Any filter change resets pagination.
func (p *Pager) SetFilters(ctx context.Context, f Filters) error {
	p.filters = f
	p.page = 1
	return p.Load(ctx)
}

// ClearFilters drops every criterion and reloads from page one.
func (p *Pager) ClearFilters(ctx context.Context) error {
	return p.SetFilters(ctx, Filters{})
}

// GoToPage moves to page n and refetches. Requests outside [1, TotalPages]
// leave the pager untouched and fetch nothing.
func (p *Pager) GoToPage(ctx context.Context, n int) error {
	if n < 1 || n > p.TotalPages() || n == p.page {
		return nil
	}
	previous := p.page
	p.page = n
	if err := p.Load(ctx); err != nil {
		p.page = previous
		return err
	}
	return nil
}

func (p *Pager) NextPage(ctx context.Context) error {
	return p.GoToPage(ctx, p.page+1)
}

func (p *Pager) PreviousPage(ctx context.Context) error {
	return p.GoToPage(ctx, p.page-1)
}

// Rows is the current page as returned by the server.
func (p *Pager) Rows() []model.StoredFile {
	return p.rows
}

func (p *Pager) Filters() Filters {
	return p.filters
}

func (p *Pager) CurrentPage() int {
	return p.page
}

func (p *Pager) PageSize() int {
	return p.pageSize
}

// Total is the server-reported row count across all pages.
func (p *Pager) Total() int {
	return p.total
}

// TotalPages derives the page count from the total row count. An empty
// collection still has one (empty) page so the current page stays valid.
func (p *Pager) TotalPages() int {
	pages := (p.total + p.pageSize - 1) / p.pageSize
	if pages < 1 {
		return 1
	}
	return pages
}
