package handlers

import (
	"context"
	"net/url"

	"github.com/gofiber/fiber/v2"

	"mbaayadmin/internal/domain"
	"mbaayadmin/internal/services"
	"mbaayadmin/internal/views"
)

// AdminHandler renders user management: the users, vendors and admins tabs
// and the detail page of one account.
type AdminHandler struct {
	reader
	Actions *services.ActionService
}

type tab struct {
	Type   domain.SubjectType
	Title  string
	Href   string
	Active bool
}

func (h *AdminHandler) collection(ctx context.Context, cl services.Caller, t domain.SubjectType) ([]views.Display, error) {
	var out []views.Display
	switch t {
	case domain.SubjectVendor:
		vs, err := h.Queries.Vendors(ctx, cl)
		if err != nil {
			return nil, err
		}
		for _, v := range vs {
			out = append(out, views.NormalizeVendor(v))
		}
	case domain.SubjectAdmin:
		as, err := h.Queries.Admins(ctx, cl)
		if err != nil {
			return nil, err
		}
		for _, a := range as {
			out = append(out, views.NormalizeAdmin(a))
		}
	default:
		us, err := h.Queries.Users(ctx, cl)
		if err != nil {
			return nil, err
		}
		for _, u := range us {
			out = append(out, views.NormalizeUser(u))
		}
	}
	return out, nil
}

// GET /user-management?tab=user|vendor|admin
func (h *AdminHandler) Users(c *fiber.Ctx) error {
	t, ok := domain.ParseSubjectType(c.Query("tab"))
	if !ok {
		t = domain.SubjectUser
	}
	capab := views.Capabilities(t)
	q := listQuery(c)
	extra := url.Values{"tab": {string(t)}}

	tabs := make([]tab, 0, 3)
	for _, st := range views.SubjectTypes() {
		tabs = append(tabs, tab{
			Type:   st,
			Title:  views.Capabilities(st).Title,
			Href:   "/user-management?tab=" + string(st),
			Active: st == t,
		})
	}

	ctx, cancel := h.ctx(c)
	defer cancel()
	items, err := h.collection(ctx, caller(c), t)
	if err != nil {
		st, _ := views.StateOf(err)
		return render(c, "users", fiber.Map{
			"State": st, "Message": loadError(c, "users.load.fail", err),
			"Tabs": tabs, "Cap": capab, "Links": newLinks("/user-management", q, extra),
			"Search": newLinks("/user-management", q, extra).Box("Search name or email", capab.StatusOptions),
		})
	}
	l := views.BuildListing(items, q, views.ListSpec[views.Display]{
		PageSize: 10,
		Text:     views.DisplayText,
		Status:   views.DisplayStatus,
		Time:     views.DisplayTime,
	})
	return render(c, "users", fiber.Map{
		"State":   views.StateReady,
		"Tabs":    tabs,
		"Cap":     capab,
		"Listing": l,
		"Links":   newLinks("/user-management", l.Query, extra),
		"Search":  newLinks("/user-management", l.Query, extra).Box("Search name or email", capab.StatusOptions),
	})
}

type actionButton struct {
	Action  domain.SubjectAction
	Label   string
	Danger  bool
	Pending bool
}

// GET /user-management/:type/:id
func (h *AdminHandler) Subject(c *fiber.Ctx) error {
	t, ok := domain.ParseSubjectType(c.Params("type"))
	if !ok {
		return notFound(c, "Page not found")
	}
	id := c.Params("id")
	cl := caller(c)
	ctx, cancel := h.ctx(c)
	defer cancel()

	var (
		d   *views.Display
		err error
	)
	switch t {
	case domain.SubjectVendor:
		var v *domain.Vendor
		if v, err = h.Queries.Vendor(ctx, cl, id); v != nil {
			n := views.NormalizeVendor(*v)
			d = &n
		}
	case domain.SubjectAdmin:
		var a *domain.Admin
		if a, err = h.Queries.Admin(ctx, cl, id); a != nil {
			n := views.NormalizeAdmin(*a)
			d = &n
		}
	default:
		var u *domain.User
		if u, err = h.Queries.User(ctx, cl, id); u != nil {
			n := views.NormalizeUser(*u)
			d = &n
		}
	}
	detail := views.DetailOf(d, err)
	if detail.State == views.StateError {
		loadError(c, "subject.load.fail", err)
	}
	capab := views.Capabilities(t)
	data := fiber.Map{
		"Detail": detail,
		"Cap":    capab,
		"Back":   "/user-management?tab=" + string(t),
		"Self":   c.OriginalURL(),
	}
	if detail.State == views.StateReady {
		var buttons []actionButton
		for _, a := range capab.Actions {
			if !capab.Can(a, detail.Item) {
				continue
			}
			buttons = append(buttons, actionButton{
				Action:  a,
				Label:   actionLabel(a),
				Danger:  a == domain.ActionDelete,
				Pending: h.Actions.Pending(cl.SID, "subject."+string(a), string(t)+":"+detail.Item.ID),
			})
		}
		data["Buttons"] = buttons
		data["MessagePending"] = h.Actions.Pending(cl.SID, "message.private", string(t)+":"+detail.Item.ID)
	}
	if detail.State == views.StateNotFound {
		c.Status(fiber.StatusNotFound)
	}
	return render(c, "subject", data)
}

func actionLabel(a domain.SubjectAction) string {
	switch a {
	case domain.ActionBlock:
		return "Block"
	case domain.ActionUnblock:
		return "Unblock"
	case domain.ActionDelete:
		return "Delete"
	}
	return string(a)
}
