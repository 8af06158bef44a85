package handlers

import (
	"net/url"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"mbaayadmin/internal/services"
)

const flashCookie = "flash"

// setFlash stores n for the next page render only.
func setFlash(c *fiber.Ctx, n services.Notification) {
	c.Cookie(&fiber.Cookie{
		Name:     flashCookie,
		Value:    url.QueryEscape(string(n.Kind) + "|" + n.Message),
		Path:     "/",
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Expires:  time.Now().Add(time.Minute),
	})
}

func takeFlash(c *fiber.Ctx) (services.Notification, bool) {
	raw := c.Cookies(flashCookie)
	if raw == "" {
		return services.Notification{}, false
	}
	c.Cookie(&fiber.Cookie{Name: flashCookie, Value: "", Path: "/", Expires: time.Now().Add(-time.Hour)})
	v, err := url.QueryUnescape(raw)
	if err != nil {
		return services.Notification{}, false
	}
	kind, msg, ok := strings.Cut(v, "|")
	if !ok || msg == "" {
		return services.Notification{}, false
	}
	k := services.NoticeKind(kind)
	if k != services.NoticeSuccess && k != services.NoticeError {
		k = services.NoticeError
	}
	return services.Notification{Kind: k, Message: msg}, true
}

// backTo returns the local path a form asked to return to, or fallback.
func backTo(c *fiber.Ctx, fallback string) string {
	next := c.FormValue("next")
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.Contains(next, "\\") {
		return fallback
	}
	return next
}
