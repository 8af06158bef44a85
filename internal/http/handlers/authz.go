package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"mbaayadmin/internal/access"
	"mbaayadmin/internal/domain"
	applog "mbaayadmin/internal/log"
	"mbaayadmin/internal/services"
)

// AttachPrincipal puts the session's principal, if any, into Locals for
// templates and logging. It never blocks a request. An expired session is
// forgotten here; this request still sees it so the gate can log the denial.
func AttachPrincipal(sessions *services.SessionService, now func() time.Time) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sid := c.Cookies("sid")
		if sid == "" {
			return c.Next()
		}
		c.Locals("sid", sid)
		if p, ok := sessions.Principal(sid); ok {
			c.Locals("principal", &p)
			c.Locals("principal_id", p.ID)
			if p.Expired(now()) {
				sessions.Expire(sid, now())
			}
		}
		return c.Next()
	}
}

// Gate resolves the request path for the current principal. On success the
// resolved view is stored in Locals("view") for Views.Serve.
func Gate(now func() time.Time) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p := principalOf(c)
		d := access.Resolve(c.Path(), p, now())
		switch {
		case d.Redirect != "":
			if p != nil {
				applog.Security(c, "access.denied.session", map[string]any{"role": string(p.Role), "expired": p.Expired(now())})
			}
			return c.Redirect(d.Redirect)
		case d.NotFound:
			return notFound(c, "Page not found")
		}
		c.Locals("view", d.View)
		return c.Next()
	}
}

// RequireRole guards form posts, which are not dashboard routes. An
// inactive session is sent to login; an active one without the role gets 403.
func RequireRole(now func() time.Time, roles ...domain.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p := principalOf(c)
		if !p.Active(now()) {
			return c.Redirect(access.LoginPath)
		}
		for _, r := range roles {
			if p.Role == r {
				return c.Next()
			}
		}
		applog.Security(c, "access.denied.role", map[string]any{"role": string(p.Role)})
		return c.Status(fiber.StatusForbidden).Render("notfound", fiber.Map{"Message": "Access denied"})
	}
}

// Views maps each resolved view to the handler that renders it.
type Views map[access.View]fiber.Handler

func (v Views) Serve(c *fiber.Ctx) error {
	view, _ := c.Locals("view").(access.View)
	h, ok := v[view]
	if !ok {
		return notFound(c, "Page not found")
	}
	return h(c)
}
