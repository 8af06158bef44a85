package handlers

import (
	"github.com/gofiber/fiber/v2"

	"mbaayadmin/internal/access"
	"mbaayadmin/internal/domain"
)

func render(c *fiber.Ctx, tmpl string, data fiber.Map) error {
	if data == nil {
		data = fiber.Map{}
	}
	if p := principalOf(c); p != nil {
		data["Principal"] = p
		data["Nav"] = access.Navigation(p.Role)
	}
	data["Path"] = c.Path()
	if n, ok := takeFlash(c); ok {
		data["Flash"] = n
	}
	// Pick up the token the CSRF middleware put into Locals
	tok, _ := c.Locals("CSRFToken").(string)
	if tok == "" {
		tok = c.Cookies("csrf_")
	}
	if tok != "" {
		data["CSRFToken"] = tok
	}
	return c.Render(tmpl, data)
}

func principalOf(c *fiber.Ctx) *domain.Principal {
	p, _ := c.Locals("principal").(*domain.Principal)
	return p
}

func sidOf(c *fiber.Ctx) string {
	sid, _ := c.Locals("sid").(string)
	if sid == "" {
		sid = c.Cookies("sid")
	}
	return sid
}

func notFound(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusNotFound).Render("notfound", fiber.Map{"Message": msg})
}
