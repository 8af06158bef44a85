// Package views builds the page models the templates render. Nothing here
// does I/O; handlers pass in data they already fetched.
package views

import (
	"slices"
	"strings"
	"time"

	"golang.org/x/text/cases"
)

// StatusAll disables the status predicate.
const StatusAll = "all"

var fold = cases.Fold()

// Filter keeps the items whose text fields contain search (Unicode case
// folded) and whose status equals status. Both predicates must hold; an
// empty search and StatusAll keep everything.
func Filter[T any](items []T, search, status string, text func(T) []string, statusOf func(T) string) []T {
	needle := fold.String(strings.TrimSpace(search))
	status = strings.TrimSpace(status)
	checkStatus := status != "" && !strings.EqualFold(status, StatusAll) && statusOf != nil

	out := make([]T, 0, len(items))
	for _, it := range items {
		if checkStatus && !strings.EqualFold(statusOf(it), status) {
			continue
		}
		if needle != "" && !containsFolded(text(it), needle) {
			continue
		}
		out = append(out, it)
	}
	return out
}

func containsFolded(fields []string, needle string) bool {
	for _, f := range fields {
		if strings.Contains(fold.String(f), needle) {
			return true
		}
	}
	return false
}

// SortByTime returns a copy ordered newest first, or oldest first when
// oldest is set. Items with equal times keep their order.
func SortByTime[T any](items []T, at func(T) time.Time, oldest bool) []T {
	out := slices.Clone(items)
	slices.SortStableFunc(out, func(a, b T) int {
		c := at(a).Compare(at(b))
		if oldest {
			return c
		}
		return -c
	})
	return out
}

type Page struct {
	Number int
	Size   int
	Total  int
	Pages  int
	From   int // 1-based index of the first row shown; 0 when empty
	To     int
}

func (p Page) HasPrev() bool { return p.Number > 1 }
func (p Page) HasNext() bool { return p.Number < p.Pages }
func (p Page) Prev() int     { return p.Number - 1 }
func (p Page) Next() int     { return p.Number + 1 }

// Paginate clamps page into [1, max(1, ceil(total/size))].
func Paginate(total, page, size int) Page {
	if size < 1 {
		size = 10
	}
	if total < 0 {
		total = 0
	}
	pages := (total + size - 1) / size
	if pages < 1 {
		pages = 1
	}
	if page < 1 {
		page = 1
	}
	if page > pages {
		page = pages
	}
	p := Page{Number: page, Size: size, Total: total, Pages: pages}
	if total > 0 {
		p.From = (page-1)*size + 1
		p.To = min(page*size, total)
	}
	return p
}

// Slice returns the rows of items on p.
func Slice[T any](items []T, p Page) []T {
	if p.From == 0 {
		return nil
	}
	return items[p.From-1 : p.To]
}

// ListQuery is the listing state carried in the URL.
type ListQuery struct {
	Search string
	Status string
	Page   int
	Oldest bool
}

// Active reports whether any filter narrows the listing.
func (q ListQuery) Active() bool {
	return strings.TrimSpace(q.Search) != "" || (q.Status != "" && !strings.EqualFold(q.Status, StatusAll))
}

// ListSpec says how to read the fields a listing filters and sorts on.
type ListSpec[T any] struct {
	PageSize int
	Text     func(T) []string
	Status   func(T) string
	Time     func(T) time.Time
}

type Listing[T any] struct {
	Rows       []T
	Page       Page
	Query      ListQuery
	Unfiltered int
	// Empty is true when there is nothing to show. NoMatches narrows that
	// to "filters hid everything" so the page can offer a reset link.
	Empty     bool
	NoMatches bool
}

func BuildListing[T any](items []T, q ListQuery, spec ListSpec[T]) Listing[T] {
	if q.Status == "" {
		q.Status = StatusAll
	}
	rows := Filter(items, q.Search, q.Status, spec.Text, spec.Status)
	if spec.Time != nil {
		rows = SortByTime(rows, spec.Time, q.Oldest)
	}
	page := Paginate(len(rows), q.Page, spec.PageSize)
	q.Page = page.Number
	return Listing[T]{
		Rows:       Slice(rows, page),
		Page:       page,
		Query:      q,
		Empty:      len(rows) == 0,
		NoMatches:  len(rows) == 0 && len(items) > 0 && q.Active(),
		Unfiltered: len(items),
	}
}
