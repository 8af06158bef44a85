package views

import (
	"strings"
	"time"

	"mbaayadmin/internal/domain"
	"mbaayadmin/internal/querycache"
	"mbaayadmin/internal/services"
)

// Display is the common shape every subject type is normalized to before it
// reaches a template.
type Display struct {
	ID        string
	Type      domain.SubjectType
	Name      string
	AvatarURL string
	Contact   string
	Phone     string
	Status    string // filter value, e.g. "verified", "pending", "active"
	Badge     string // human label for Status
	Blocked   bool
	Joined    domain.Timestamp
	Facts     []Fact

	alt []string // extra searchable text
}

type Fact struct {
	Label string
	Value string
}

func (d Display) Initial() string {
	n := strings.TrimSpace(d.Name)
	if n == "" {
		return "?"
	}
	return strings.ToUpper(string([]rune(n)[:1]))
}

type StatusOption struct {
	Value string
	Label string
}

// Capability describes what the dashboard can show and do for one subject
// type.
type Capability struct {
	Type          domain.SubjectType
	Title         string
	CollectionKey querycache.Key
	StatusOptions []StatusOption
	Actions       []domain.SubjectAction
}

// DetailKey is the cache key of one subject of this type.
func (c Capability) DetailKey(id string) querycache.Key { return services.SubjectKey(c.Type, id) }

// Can reports whether a is offered for subject d.
func (c Capability) Can(a domain.SubjectAction, d Display) bool {
	for _, x := range c.Actions {
		if x != a {
			continue
		}
		switch a {
		case domain.ActionBlock:
			return !d.Blocked
		case domain.ActionUnblock:
			return d.Blocked
		}
		return true
	}
	return false
}

var capabilities = map[domain.SubjectType]Capability{
	domain.SubjectUser: {
		Type:          domain.SubjectUser,
		Title:         "Users",
		CollectionKey: services.KeyUsers,
		StatusOptions: []StatusOption{{"all", "All"}, {"verified", "Verified"}, {"not-verified", "Not verified"}},
		Actions:       []domain.SubjectAction{domain.ActionBlock, domain.ActionUnblock, domain.ActionDelete},
	},
	domain.SubjectVendor: {
		Type:          domain.SubjectVendor,
		Title:         "Vendors",
		CollectionKey: services.KeyVendors,
		StatusOptions: []StatusOption{{"all", "All Status"}, {"approved", "Approved"}, {"pending", "Pending"}, {"rejected", "Rejected"}},
		Actions:       []domain.SubjectAction{domain.ActionBlock, domain.ActionUnblock, domain.ActionDelete},
	},
	domain.SubjectAdmin: {
		Type:          domain.SubjectAdmin,
		Title:         "Admins",
		CollectionKey: services.KeyAdmins,
		StatusOptions: []StatusOption{{"all", "All Status"}, {"active", "Active"}, {"inactive", "Inactive"}},
		Actions:       []domain.SubjectAction{domain.ActionBlock, domain.ActionUnblock},
	},
}

// Capabilities returns the table row for t; unknown types get the user row.
func Capabilities(t domain.SubjectType) Capability {
	if c, ok := capabilities[t]; ok {
		return c
	}
	return capabilities[domain.SubjectUser]
}

// SubjectTypes lists the tabs of the user management screen in order.
func SubjectTypes() []domain.SubjectType {
	return []domain.SubjectType{domain.SubjectUser, domain.SubjectVendor, domain.SubjectAdmin}
}

func NormalizeUser(u domain.User) Display {
	d := Display{
		ID:        u.Key(),
		Type:      domain.SubjectUser,
		Name:      orDash(u.Name),
		AvatarURL: u.Avatar,
		Contact:   u.Email,
		Phone:     u.PhoneNumber,
		Status:    "not-verified",
		Badge:     "Not verified",
		Blocked:   u.IsBlocked,
		Joined:    firstTime(u.JoinDate, u.CreatedAt),
	}
	if u.IsVerified {
		d.Status, d.Badge = "verified", "Verified"
	}
	d.Facts = []Fact{
		{"Orders", Count(len(u.Orders))},
		{"Payments", Count(len(u.Payments))},
	}
	return d
}

func NormalizeVendor(v domain.Vendor) Display {
	st := domain.ParseKycStatus(firstNonEmpty(v.KycStatus, v.VerificationStatus))
	d := Display{
		ID:        v.Key(),
		Type:      domain.SubjectVendor,
		Name:      orDash(firstNonEmpty(v.StoreName, v.Name)),
		AvatarURL: firstNonEmpty(v.BusinessLogo, v.Avatar),
		Contact:   v.Email,
		Phone:     firstNonEmpty(v.StorePhone, v.Phone),
		Status:    strings.ToLower(string(st)),
		Badge:     string(st),
		Blocked:   v.IsBlocked,
		Joined:    v.CreatedAt,
		alt:       []string{v.Name},
	}
	d.Facts = []Fact{
		{"Owner", orDash(v.Name)},
		{"Store type", orDash(v.StoreType)},
		{"Products", Count(len(v.Products))},
		{"Orders", Count(len(v.Orders))},
	}
	if len(v.CraftCategories) > 0 {
		d.Facts = append(d.Facts, Fact{"Categories", strings.Join(v.CraftCategories, ", ")})
	}
	if b := v.BankAccount; b != nil && b.BankName != "" {
		d.Facts = append(d.Facts, Fact{"Bank", b.BankName + " " + maskAccount(b.AccountNumber)})
	}
	return d
}

func NormalizeAdmin(a domain.Admin) Display {
	d := Display{
		ID:      a.Key(),
		Type:    domain.SubjectAdmin,
		Name:    orDash(a.Name),
		Contact: a.Email,
		Phone:   a.PhoneNumber,
		Status:  "active",
		Badge:   "Active",
		Blocked: a.IsBlocked,
		Joined:  a.CreatedAt,
		Facts:   []Fact{{"Role", orDash(a.Role)}},
	}
	if a.IsBlocked {
		d.Status, d.Badge = "inactive", "Inactive"
	}
	return d
}

func maskAccount(n string) string {
	if len(n) <= 4 {
		return n
	}
	return strings.Repeat("•", len(n)-4) + n[len(n)-4:]
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func firstTime(ts ...domain.Timestamp) domain.Timestamp {
	for _, t := range ts {
		if !t.IsZero() {
			return t
		}
	}
	return domain.Timestamp{}
}

// DisplayText and DisplayStatus feed Filter for normalized subjects.
func DisplayText(d Display) []string  { return append([]string{d.Name, d.Contact}, d.alt...) }
func DisplayStatus(d Display) string  { return d.Status }
func DisplayTime(d Display) time.Time { return d.Joined.Time }
