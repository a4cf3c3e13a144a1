package pagination_test

import (
	"context"
	"fmt"
	"net/url"
	"testing"

	"github.com/kbukum/backend-template/database"
	"github.com/kbukum/backend-template/database/pagination"
	"github.com/kbukum/backend-template/database/testutil"
	apperrors "github.com/kbukum/backend-template/errors"
)

type item struct {
	database.BaseModel
	Position int `json:"position"`
}

func mustURL(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatal(err)
	}
	return u
}

func TestParseParams(t *testing.T) {
	tests := []struct {
		query    string
		wantPage int
		wantSize int
		wantLast bool
		wantErr  bool
	}{
		{"", 1, 6, false, false},
		{"page=3", 3, 6, false, false},
		{"page=last", 1, 6, true, false},
		{"page=0", 0, 0, false, true},
		{"page=abc", 0, 0, false, true},
		{"page_size=10", 1, 10, false, false},
		{"page_size=1000", 1, pagination.MaxPageSize, false, false},
		{"page_size=-2", 1, 6, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			q, _ := url.ParseQuery(tt.query)
			p, err := pagination.ParseParams(q, pagination.DefaultPageSize)
			if tt.wantErr {
				appErr, ok := apperrors.AsAppError(err)
				if !ok || appErr.Code != apperrors.ErrCodeInvalidPage {
					t.Fatalf("expected INVALID_PAGE, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if p.Page != tt.wantPage || p.PageSize != tt.wantSize || p.Last != tt.wantLast {
				t.Errorf("got %+v", p)
			}
		})
	}
}

func TestSlice_Links(t *testing.T) {
	items := make([]int, 14)
	for i := range items {
		items[i] = i
	}
	base := mustURL(t, "http://testserver/api/storage/objects/?prefix=images%2F&page=2")

	page, err := pagination.Slice(items, pagination.Params{Page: 2, PageSize: 6}, base)
	if err != nil {
		t.Fatal(err)
	}
	if page.Count != 14 || len(page.Results) != 6 || page.Results[0] != 6 {
		t.Fatalf("unexpected page %+v", page)
	}
	if page.Next == nil || *page.Next != "http://testserver/api/storage/objects/?page=3&prefix=images%2F" {
		t.Errorf("next = %v", page.Next)
	}
	if page.Previous == nil || *page.Previous != "http://testserver/api/storage/objects/?prefix=images%2F" {
		t.Errorf("previous = %v", page.Previous)
	}

	last, err := pagination.Slice(items, pagination.Params{Last: true, PageSize: 6}, base)
	if err != nil {
		t.Fatal(err)
	}
	if len(last.Results) != 2 || last.Next != nil {
		t.Errorf("unexpected last page %+v", last)
	}
}

func TestSlice_OutOfRange(t *testing.T) {
	empty, err := pagination.Slice([]string{}, pagination.Params{Page: 1, PageSize: 6}, nil)
	if err != nil {
		t.Fatalf("first page of an empty set must be valid: %v", err)
	}
	if empty.Results == nil || len(empty.Results) != 0 || empty.Count != 0 {
		t.Errorf("expected empty results, got %+v", empty)
	}

	_, err = pagination.Slice([]string{"a"}, pagination.Params{Page: 2, PageSize: 6}, nil)
	if appErr, ok := apperrors.AsAppError(err); !ok || appErr.Code != apperrors.ErrCodeInvalidPage {
		t.Errorf("expected INVALID_PAGE, got %v", err)
	}
}

func TestPaginate(t *testing.T) {
	db := testutil.Open(t, &item{})
	ctx := context.Background()
	for i := 0; i < 8; i++ {
		if err := db.WithContext(ctx).Create(&item{Position: i}).Error; err != nil {
			t.Fatal(err)
		}
	}

	base := mustURL(t, "/api/items/")
	q := db.GormDB.Model(&item{}).Order("position")
	page, err := pagination.Paginate[item](ctx, q, pagination.Params{Page: 2, PageSize: 6}, base)
	if err != nil {
		t.Fatalf("Paginate: %v", err)
	}
	if page.Count != 8 || len(page.Results) != 2 {
		t.Fatalf("unexpected page: count=%d results=%d", page.Count, len(page.Results))
	}
	if page.Results[0].Position != 6 {
		t.Errorf("expected ordered results, got position %d", page.Results[0].Position)
	}
	if page.Next != nil {
		t.Errorf("expected no next link, got %s", *page.Next)
	}
	if page.Previous == nil || *page.Previous != "/api/items/" {
		t.Errorf("previous = %v", page.Previous)
	}

	_, err = pagination.Paginate[item](ctx, q, pagination.Params{Page: 3, PageSize: 6}, base)
	if appErr, ok := apperrors.AsAppError(err); !ok || appErr.Code != apperrors.ErrCodeInvalidPage {
		t.Errorf("expected INVALID_PAGE, got %v", err)
	}
}

func TestNumPages(t *testing.T) {
	for _, tt := range []struct {
		total int64
		size  int
		want  int
	}{{0, 6, 1}, {6, 6, 1}, {7, 6, 2}, {13, 6, 3}} {
		t.Run(fmt.Sprintf("%d/%d", tt.total, tt.size), func(t *testing.T) {
			if got := pagination.NumPages(tt.total, tt.size); got != tt.want {
				t.Errorf("NumPages = %d, want %d", got, tt.want)
			}
		})
	}
}
