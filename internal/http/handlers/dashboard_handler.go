package handlers

import (
	"github.com/gofiber/fiber/v2"

	"mbaayadmin/internal/views"
)

type DashboardHandler struct {
	reader
}

// GET /
func (h *DashboardHandler) Dashboard(c *fiber.Ctx) error {
	ctx, cancel := h.ctx(c)
	defer cancel()
	cl := caller(c)

	ov, err := h.Queries.Overview(ctx, cl)
	if err != nil {
		st, _ := views.StateOf(err)
		return render(c, "dashboard", fiber.Map{"State": st, "Message": loadError(c, "dashboard.load.fail", err)})
	}
	// Overview already warmed the orders entry.
	orders, _ := h.Queries.Orders(ctx, cl)
	recent := views.SortByTime(orders, orderTime, false)
	if len(recent) > 5 {
		recent = recent[:5]
	}
	return render(c, "dashboard", fiber.Map{
		"State":    views.StateReady,
		"Overview": ov,
		"Recent":   toOrderRows(recent),
	})
}
