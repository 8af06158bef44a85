package handlers

import (
	"github.com/gofiber/fiber/v2"

	"mbaayadmin/internal/domain"
	"mbaayadmin/internal/services"
	"mbaayadmin/internal/views"
)

type InboxHandler struct {
	reader
	Actions *services.ActionService
}

type Recipient struct {
	ID    string
	Type  domain.SubjectType
	Label string
}

var broadcastTargets = []views.StatusOption{
	{Value: "all", Label: "Everyone"},
	{Value: "users", Label: "Users"},
	{Value: "vendors", Label: "Vendors"},
	{Value: "admins", Label: "Admins"},
}

// GET /inbox
//
// The recipient list comes from whatever the session can read. Customer care
// tokens may be refused the user listings, in which case the form falls back
// to a typed recipient id.
func (h *InboxHandler) Inbox(c *fiber.Ctx) error {
	ctx, cancel := h.ctx(c)
	defer cancel()
	cl := caller(c)

	var recipients []Recipient
	if us, err := h.Queries.Users(ctx, cl); err == nil {
		for _, u := range us {
			recipients = append(recipients, Recipient{ID: u.Key(), Type: domain.SubjectUser, Label: firstOf(u.Name, u.Email, u.Key())})
		}
	}
	if vs, err := h.Queries.Vendors(ctx, cl); err == nil {
		for _, v := range vs {
			recipients = append(recipients, Recipient{ID: v.Key(), Type: domain.SubjectVendor, Label: firstOf(v.StoreName, v.Name, v.Key())})
		}
	}

	to := c.Query("to")
	typ, ok := domain.ParseSubjectType(c.Query("type"))
	if !ok {
		typ = domain.SubjectUser
	}
	return render(c, "inbox", fiber.Map{
		"Recipients": recipients,
		"To":         to,
		"ToType":     typ,
		"Types":      views.SubjectTypes(),
		"Targets":    broadcastTargets,
		"Self":       "/inbox",

		"MessagePending":   h.Actions.PendingAny(cl.SID, "message.private"),
		"BroadcastPending": h.Actions.PendingAny(cl.SID, "message.broadcast"),
	})
}
