// Package pagination implements page-number pagination over GORM queries
// and in-memory slices. Responses carry count, next, previous and results.
package pagination

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"gorm.io/gorm"

	apperrors "github.com/kbukum/backend-template/errors"
)

const (
	DefaultPageSize = 6
	MaxPageSize     = 100

	PageParam     = "page"
	PageSizeParam = "page_size"
	lastPage      = "last"
)

// Params holds the requested page. Last resolves to the final page once
// the total is known.
type Params struct {
	Page     int
	PageSize int
	Last     bool
}

// Page is one page of results.
type Page[T any] struct {
	Count    int64   `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}

// ParseParams reads page and page_size from q. An unparsable or
// non-positive page is rejected; page_size falls back to defaultSize and
// is capped at MaxPageSize.
func ParseParams(q url.Values, defaultSize int) (Params, error) {
	if defaultSize <= 0 {
		defaultSize = DefaultPageSize
	}
	p := Params{Page: 1, PageSize: defaultSize}

	switch raw := q.Get(PageParam); raw {
	case "":
	case lastPage:
		p.Last = true
	default:
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return p, apperrors.InvalidPage(n)
		}
		p.Page = n
	}

	if raw := q.Get(PageSizeParam); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			p.PageSize = min(n, MaxPageSize)
		}
	}
	return p, nil
}

// NumPages returns the page count for total rows. An empty set still has
// one (empty) page.
func NumPages(total int64, size int) int {
	if size <= 0 || total <= 0 {
		return 1
	}
	return int((total + int64(size) - 1) / int64(size))
}

// resolve fixes the page number against total and rejects pages past the end.
func (p Params) resolve(total int64) (Params, error) {
	pages := NumPages(total, p.PageSize)
	if p.Last {
		p.Page = pages
		p.Last = false
	}
	if p.Page < 1 || p.Page > pages {
		return p, apperrors.InvalidPage(p.Page)
	}
	return p, nil
}

// Paginate counts and loads one page of db. db should already carry its
// Model, filters and ordering.
func Paginate[T any](ctx context.Context, db *gorm.DB, p Params, base *url.URL) (*Page[T], error) {
	db = db.WithContext(ctx)

	var total int64
	if err := db.Session(&gorm.Session{}).Model(new(T)).Count(&total).Error; err != nil {
		return nil, fmt.Errorf("count: %w", err)
	}

	p, err := p.resolve(total)
	if err != nil {
		return nil, err
	}

	results := make([]T, 0, p.PageSize)
	offset := (p.Page - 1) * p.PageSize
	if err := db.Session(&gorm.Session{}).Offset(offset).Limit(p.PageSize).Find(&results).Error; err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	return build(results, total, p, base), nil
}

// Slice paginates an already loaded, ordered list.
func Slice[T any](items []T, p Params, base *url.URL) (*Page[T], error) {
	total := int64(len(items))
	p, err := p.resolve(total)
	if err != nil {
		return nil, err
	}

	start := min((p.Page-1)*p.PageSize, len(items))
	end := min(start+p.PageSize, len(items))
	results := make([]T, 0, end-start)
	results = append(results, items[start:end]...)
	return build(results, total, p, base), nil
}

func build[T any](results []T, total int64, p Params, base *url.URL) *Page[T] {
	page := &Page[T]{Count: total, Results: results}
	if base == nil {
		return page
	}
	if p.Page < NumPages(total, p.PageSize) {
		page.Next = link(base, p.Page+1)
	}
	if p.Page > 1 {
		page.Previous = link(base, p.Page-1)
	}
	return page
}

// link rewrites the page parameter of base. Page 1 drops the parameter.
func link(base *url.URL, page int) *string {
	u := *base
	q := u.Query()
	if page == 1 {
		q.Del(PageParam)
	} else {
		q.Set(PageParam, strconv.Itoa(page))
	}
	u.RawQuery = q.Encode()
	s := u.String()
	return &s
}
