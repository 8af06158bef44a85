package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"mbaayadmin/internal/domain"
	"mbaayadmin/internal/services"
	"mbaayadmin/internal/views"
)

type KycHandler struct {
	reader
	Actions *services.ActionService
}

type KycRow struct {
	ID        string
	Store     string
	Owner     string
	Email     string
	Logo      string
	Status    domain.KycStatus
	Document  string
	Submitted string
}

func toKycRow(k domain.KycRequest) KycRow {
	return KycRow{
		ID:        k.Key(),
		Store:     firstOf(k.StoreName, k.Name, "-"),
		Owner:     firstOf(k.Name, "-"),
		Email:     k.Email,
		Logo:      firstOf(k.BusinessLogo, k.Avatar),
		Status:    k.Status(),
		Document:  firstOf(k.Documents().DocumentType, "-"),
		Submitted: k.SubmittedAt().Display(),
	}
}

var kycOptions = []views.StatusOption{
	{Value: "all", Label: "All"},
	{Value: string(domain.KycPending), Label: "Pending"},
	{Value: string(domain.KycProcessing), Label: "Processing"},
	{Value: string(domain.KycApproved), Label: "Approved"},
	{Value: string(domain.KycRejected), Label: "Rejected"},
}

// GET /kyc
func (h *KycHandler) List(c *fiber.Ctx) error {
	ctx, cancel := h.ctx(c)
	defer cancel()
	q := listQuery(c)

	reqs, err := h.Queries.KycRequests(ctx, caller(c))
	if err != nil {
		st, _ := views.StateOf(err)
		return render(c, "kyc", fiber.Map{"State": st, "Message": loadError(c, "kyc.load.fail", err), "Options": kycOptions, "Links": newLinks("/kyc", q, nil), "Search": newLinks("/kyc", q, nil).Box("Search store or email", kycOptions)})
	}
	counts := map[string]int{}
	for _, r := range reqs {
		counts[string(r.Status())]++
	}
	l := views.BuildListing(reqs, q, views.ListSpec[domain.KycRequest]{
		PageSize: 10,
		Text:     func(k domain.KycRequest) []string { return []string{k.StoreName, k.Name, k.Email} },
		Status:   func(k domain.KycRequest) string { return string(k.Status()) },
		Time:     func(k domain.KycRequest) time.Time { return k.SubmittedAt().Time },
	})
	rows := make([]KycRow, 0, len(l.Rows))
	for _, r := range l.Rows {
		rows = append(rows, toKycRow(r))
	}
	return render(c, "kyc", fiber.Map{
		"State":   views.StateReady,
		"Options": kycOptions,
		"Counts":  counts,
		"Total":   len(reqs),
		"Listing": l,
		"Rows":    rows,
		"Links":   newLinks("/kyc", l.Query, nil),
		"Search":  newLinks("/kyc", l.Query, nil).Box("Search store or email", kycOptions),
	})
}

// GET /kyc/:id
func (h *KycHandler) Detail(c *fiber.Ctx) error {
	ctx, cancel := h.ctx(c)
	defer cancel()
	cl := caller(c)
	id := c.Params("id")

	req, err := h.Queries.KycRequest(ctx, cl, id)
	detail := views.DetailOf(req, err)
	if detail.State == views.StateError {
		loadError(c, "kyc.detail.load.fail", err)
	}
	data := fiber.Map{"Detail": detail, "Self": c.OriginalURL()}
	switch detail.State {
	case views.StateReady:
		k := detail.Item
		data["Row"] = toKycRow(k)
		data["Docs"] = k.Documents()
		data["Vendor"] = views.NormalizeVendor(k.Vendor)
		data["Decided"] = k.Status().Terminal()
		data["Pending"] = h.Actions.Pending(cl.SID, "kyc.review", k.Key())
	case views.StateNotFound:
		c.Status(fiber.StatusNotFound)
	}
	return render(c, "kyc_detail", data)
}
