// internal/app/system/paging/paging.go
package paging

import (
	"net/http"
	"strconv"

	"github.com/dalemusser/waffle/pantry/query"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// PageSize is the default number of rows in a list response.
const PageSize = 50

// MaxPageSize caps client-requested limits.
const MaxPageSize = 200

// Page is an offset window over a sorted list.
type Page struct {
	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

// Parse reads "offset" and "limit" query params, falling back to 0 and
// PageSize and clamping limit to MaxPageSize.
func Parse(r *http.Request) Page {
	p := Page{Offset: 0, Limit: PageSize}
	if n, err := strconv.Atoi(query.Get(r, "offset")); err == nil && n > 0 {
		p.Offset = n
	}
	if n, err := strconv.Atoi(query.Get(r, "limit")); err == nil && n > 0 {
		p.Limit = n
	}
	if p.Limit > MaxPageSize {
		p.Limit = MaxPageSize
	}
	return p
}

// FindOptions returns options fetching one extra row beyond the page so
// Trim can report HasMore.
func (p Page) FindOptions(sort bson.D) *options.FindOptions {
	return options.Find().
		SetSort(sort).
		SetSkip(int64(p.Offset)).
		SetLimit(int64(p.Limit + 1))
}

// Result is returned alongside a page of rows.
type Result struct {
	Page
	HasMore bool `json:"hasMore"`
}

// Trim drops the look-ahead row, if present.
func Trim[T any](rows []T, p Page) ([]T, Result) {
	res := Result{Page: p}
	if len(rows) > p.Limit {
		rows = rows[:p.Limit]
		res.HasMore = true
	}
	return rows, res
}
