package handlers

import (
	"context"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	applog "mbaayadmin/internal/log"
	"mbaayadmin/internal/services"
	"mbaayadmin/internal/validate"
	"mbaayadmin/internal/views"
)

// reader bounds how long a page render waits on the query cache. A read that
// runs out of time leaves the shared fetch running for the next request.
type reader struct {
	Queries *services.QueryService
	Wait    time.Duration
}

func (r reader) ctx(c *fiber.Ctx) (context.Context, context.CancelFunc) {
	wait := r.Wait
	if wait <= 0 {
		wait = 10 * time.Second
	}
	return context.WithTimeout(c.UserContext(), wait)
}

func caller(c *fiber.Ctx) services.Caller {
	cl := services.Caller{SID: sidOf(c)}
	if p := principalOf(c); p != nil {
		cl.Principal = *p
	}
	return cl
}

func listQuery(c *fiber.Ctx) views.ListQuery {
	return views.ListQuery{
		Search: validate.Search(c.Query("q")),
		Status: strings.TrimSpace(c.Query("status")),
		Page:   validate.Page(c.Query("page")),
		Oldest: c.Query("sort") == "oldest",
	}
}

// Links builds the URLs a listing page needs, keeping the other parameters
// of the current query.
type Links struct {
	path  string
	q     views.ListQuery
	extra url.Values
}

func newLinks(path string, q views.ListQuery, extra url.Values) Links {
	return Links{path: path, q: q, extra: extra}
}

func (l Links) build(q views.ListQuery) string {
	v := url.Values{}
	for k, vals := range l.extra {
		for _, x := range vals {
			v.Add(k, x)
		}
	}
	if q.Search != "" {
		v.Set("q", q.Search)
	}
	if q.Status != "" && !strings.EqualFold(q.Status, views.StatusAll) {
		v.Set("status", q.Status)
	}
	if q.Page > 1 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if q.Oldest {
		v.Set("sort", "oldest")
	}
	if len(v) == 0 {
		return l.path
	}
	return l.path + "?" + v.Encode()
}

func (l Links) Page(n int) string {
	q := l.q
	q.Page = n
	return l.build(q)
}

func (l Links) Status(s string) string {
	q := l.q
	q.Status, q.Page = s, 1
	return l.build(q)
}

func (l Links) SortToggle() string {
	q := l.q
	q.Oldest, q.Page = !q.Oldest, 1
	return l.build(q)
}

// Reset drops search, status and page but keeps tab-like parameters.
func (l Links) Reset() string {
	return l.build(views.ListQuery{Oldest: l.q.Oldest})
}

// with adds one extra parameter to the current URL.
func (l Links) with(key, value string) string {
	extra := url.Values{}
	for k, v := range l.extra {
		extra[k] = v
	}
	extra.Set(key, value)
	return Links{path: l.path, q: l.q, extra: extra}.build(l.q)
}

// Query is the listing state the links were built from.
func (l Links) Query() views.ListQuery { return l.q }

// Current is the URL of the page being rendered, used as the "next" target
// of forms on it.
func (l Links) Current() string { return l.build(l.q) }

// SearchBox is the model of the search and status filter form.
type SearchBox struct {
	Action      string
	Hidden      map[string]string
	Query       views.ListQuery
	Placeholder string
	Options     []views.StatusOption
}

func (l Links) Box(placeholder string, options []views.StatusOption) SearchBox {
	hidden := map[string]string{}
	for k := range l.extra {
		hidden[k] = l.extra.Get(k)
	}
	return SearchBox{Action: l.path, Hidden: hidden, Query: l.q, Placeholder: placeholder, Options: options}
}

func loadError(c *fiber.Ctx, action string, err error) string {
	st, msg := views.StateOf(err)
	if st != views.StateLoading {
		applog.Error(c, action, err, nil)
	}
	return msg
}
