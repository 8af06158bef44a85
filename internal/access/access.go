// Package access decides what a request may see: the view a path maps to,
// a redirect to the login page, or not found.
package access

import (
	"strings"
	"time"

	"mbaayadmin/internal/domain"
)

const LoginPath = "/login-admin"

type View string

const (
	ViewDashboard View = "dashboard"
	ViewOrders    View = "orders"
	ViewCustomers View = "customers"
	ViewReviews   View = "reviews"
	ViewKyc       View = "kyc"
	ViewKycDetail View = "kyc_detail"
	ViewUsers     View = "users"
	ViewSubject   View = "subject"
	ViewPosts     View = "posts"
	ViewCommunity View = "community"
	ViewInbox     View = "inbox"
)

// Route is one registered dashboard page.
type Route struct {
	Pattern string
	View    View
}

var routes = []Route{
	{"/", ViewDashboard},
	{"/orders", ViewOrders},
	{"/customers", ViewCustomers},
	{"/reviews", ViewReviews},
	{"/kyc", ViewKyc},
	{"/kyc/:id", ViewKycDetail},
	{"/user-management", ViewUsers},
	{"/user-management/:type/:id", ViewSubject},
	{"/all-post", ViewPosts},
	{"/mbaay-community", ViewCommunity},
	{"/inbox", ViewInbox},
}

// Routes lists the registered pages in registration order.
func Routes() []Route {
	out := make([]Route, len(routes))
	copy(out, routes)
	return out
}

type Decision struct {
	View     View
	Redirect string
	NotFound bool
}

func (d Decision) Allowed() bool { return d.View != "" }

// Resolve applies the gate. The principal is checked first, so an
// unauthenticated visitor is sent to login even for unknown paths. Customer
// care is served the inbox under every registered path.
func Resolve(path string, p *domain.Principal, now time.Time) Decision {
	if !p.Active(now) {
		return Decision{Redirect: LoginPath}
	}
	view, ok := Match(path)
	if !ok {
		return Decision{NotFound: true}
	}
	if p.Role == domain.RoleCustomerCare {
		return Decision{View: ViewInbox}
	}
	return Decision{View: view}
}

// Match finds the view registered for path. ":name" segments match any
// non-empty segment.
func Match(path string) (View, bool) {
	segs := split(path)
	for _, r := range routes {
		if matches(split(r.Pattern), segs) {
			return r.View, true
		}
	}
	return "", false
}

func split(p string) []string {
	p = strings.Trim(p, "/")
	if p == "" {
		return nil
	}
	return strings.Split(p, "/")
}

func matches(pattern, segs []string) bool {
	if len(pattern) != len(segs) {
		return false
	}
	for i, s := range pattern {
		if strings.HasPrefix(s, ":") {
			if segs[i] == "" {
				return false
			}
			continue
		}
		if s != segs[i] {
			return false
		}
	}
	return true
}
