package handlers

import (
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"mbaayadmin/internal/domain"
	"mbaayadmin/internal/views"
)

// OrderHandler renders the orders, customers and reviews screens.
type OrderHandler struct {
	reader
}

type OrderRow struct {
	ID        string
	Customer  string
	Email     string
	Items     int
	Amount    string
	Status    string
	PayStatus string
	Address   string
	Date      string
}

func orderTime(o domain.Order) time.Time { return o.CreatedAt.Time }

func orderText(o domain.Order) []string {
	cu := o.Customer()
	return []string{o.Key(), o.OrderID, cu.Name, cu.Email}
}

func toOrderRows(orders []domain.Order) []OrderRow {
	rows := make([]OrderRow, 0, len(orders))
	for _, o := range orders {
		cu := o.Customer()
		rows = append(rows, OrderRow{
			ID:        firstOf(o.OrderID, o.Key()),
			Customer:  firstOf(cu.Name, "-"),
			Email:     cu.Email,
			Items:     len(o.Items),
			Amount:    views.Money(o.ItemsTotal()),
			Status:    firstOf(o.Status, "-"),
			PayStatus: firstOf(string(o.PayStatus), "-"),
			Address:   o.ShippingAddress.Address,
			Date:      o.CreatedAt.Display(),
		})
	}
	return rows
}

func firstOf(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

var orderTabs = []views.StatusOption{
	{Value: "all", Label: "All"},
	{Value: "On Delivery", Label: "On Delivery"},
	{Value: "Delivered", Label: "Delivered"},
	{Value: "Cancelled", Label: "Cancelled"},
}

// GET /orders
func (h *OrderHandler) Orders(c *fiber.Ctx) error {
	ctx, cancel := h.ctx(c)
	defer cancel()
	q := listQuery(c)
	links := newLinks("/orders", q, nil)

	orders, err := h.Queries.Orders(ctx, caller(c))
	if err != nil {
		st, _ := views.StateOf(err)
		return render(c, "orders", fiber.Map{"State": st, "Message": loadError(c, "orders.load.fail", err), "Tabs": orderTabs, "Links": links, "Search": links.Box("Search order id or customer", nil)})
	}
	l := views.BuildListing(orders, q, views.ListSpec[domain.Order]{
		PageSize: 5,
		Text:     orderText,
		Status:   func(o domain.Order) string { return o.Status },
		Time:     orderTime,
	})
	return render(c, "orders", fiber.Map{
		"State":   views.StateReady,
		"Tabs":    orderTabs,
		"Listing": l,
		"Rows":    toOrderRows(l.Rows),
		"Links":   newLinks("/orders", l.Query, nil),
		"Search":  links.Box("Search order id or customer", nil),
	})
}

var payOptions = []views.StatusOption{
	{Value: "all", Label: "All"},
	{Value: string(domain.PaySuccessful), Label: "Successful"},
	{Value: string(domain.PayPending), Label: "Pending"},
	{Value: string(domain.PayFailed), Label: "Failed"},
}

// GET /customers
func (h *OrderHandler) Customers(c *fiber.Ctx) error {
	ctx, cancel := h.ctx(c)
	defer cancel()
	q := listQuery(c)

	cp, err := h.Queries.CustomerPayments(ctx, caller(c))
	if err != nil {
		st, _ := views.StateOf(err)
		return render(c, "customers", fiber.Map{"State": st, "Message": loadError(c, "customers.load.fail", err), "Options": payOptions, "Links": newLinks("/customers", q, nil), "Search": newLinks("/customers", q, nil).Box("Search customer", payOptions)})
	}
	l := views.BuildListing(cp.Customers, q, views.ListSpec[domain.Order]{
		PageSize: 10,
		Text:     orderText,
		Status:   func(o domain.Order) string { return string(o.PayStatus) },
		Time:     orderTime,
	})
	return render(c, "customers", fiber.Map{
		"State":   views.StateReady,
		"Options": payOptions,
		"Summary": cp.PaymentSummary,
		"Listing": l,
		"Rows":    toOrderRows(l.Rows),
		"Links":   newLinks("/customers", l.Query, nil),
		"Search":  newLinks("/customers", l.Query, nil).Box("Search customer", payOptions),
	})
}

type ReviewRow struct {
	ID       string
	Product  string
	Image    string
	By       string
	Type     string
	Rating   float64
	Title    string
	Comment  string
	Verified bool
	Helpful  int
	Reply    string
	Date     string
}

type Bar struct {
	Stars   int
	Count   int
	Percent int
}

func distribution(s domain.ReviewStats) []Bar {
	total := 0
	for _, n := range s.RatingDistribution {
		total += n
	}
	bars := make([]Bar, 0, 5)
	for stars := 5; stars >= 1; stars-- {
		n := s.RatingDistribution[strconv.Itoa(stars)]
		b := Bar{Stars: stars, Count: n}
		if total > 0 {
			b.Percent = n * 100 / total
		}
		bars = append(bars, b)
	}
	return bars
}

var ratingOptions = []views.StatusOption{
	{Value: "all", Label: "All ratings"},
	{Value: "5", Label: "5 stars"},
	{Value: "4", Label: "4 stars"},
	{Value: "3", Label: "3 stars"},
	{Value: "2", Label: "2 stars"},
	{Value: "1", Label: "1 star"},
}

// GET /reviews
func (h *OrderHandler) Reviews(c *fiber.Ctx) error {
	ctx, cancel := h.ctx(c)
	defer cancel()
	q := listQuery(c)

	rl, err := h.Queries.Reviews(ctx, caller(c))
	if err != nil {
		st, _ := views.StateOf(err)
		return render(c, "reviews", fiber.Map{"State": st, "Message": loadError(c, "reviews.load.fail", err), "Options": ratingOptions, "Links": newLinks("/reviews", q, nil), "Search": newLinks("/reviews", q, nil).Box("Search product or reviewer", ratingOptions)})
	}
	l := views.BuildListing(rl.Reviews, q, views.ListSpec[domain.Review]{
		PageSize: 10,
		Text:     func(r domain.Review) []string { return []string{r.Product.Name, r.By(), r.Title, r.Comment} },
		Status:   func(r domain.Review) string { return strconv.Itoa(int(r.Rating + 0.5)) },
		Time:     func(r domain.Review) time.Time { return r.CreatedAt.Time },
	})
	rows := make([]ReviewRow, 0, len(l.Rows))
	for _, r := range l.Rows {
		row := ReviewRow{
			ID:       r.ID,
			Product:  firstOf(r.Product.Name, "-"),
			By:       r.By(),
			Type:     r.ReviewerType,
			Rating:   r.Rating,
			Title:    r.Title,
			Comment:  r.Comment,
			Verified: r.Verified,
			Helpful:  r.Helpful,
			Date:     r.CreatedAt.Display(),
		}
		if len(r.Product.Images) > 0 {
			row.Image = r.Product.Images[0]
		}
		if r.VendorReply != nil && r.VendorReply.IsPublic {
			row.Reply = r.VendorReply.Message
		}
		rows = append(rows, row)
	}
	stats := rl.Stats
	if stats.TotalReviews == 0 {
		stats.TotalReviews = len(rl.Reviews)
	}
	return render(c, "reviews", fiber.Map{
		"State":        views.StateReady,
		"Options":      ratingOptions,
		"Stats":        stats,
		"Distribution": distribution(stats),
		"Listing":      l,
		"Rows":         rows,
		"Links":        newLinks("/reviews", l.Query, nil),
		"Search":       newLinks("/reviews", l.Query, nil).Box("Search product or reviewer", ratingOptions),
	})
}
