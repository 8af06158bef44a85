package access

import "mbaayadmin/internal/domain"

type NavItem struct {
	Label    string
	Href     string
	Children []NavItem
}

// Navigation is the sidebar for role.
func Navigation(role domain.Role) []NavItem {
	switch role {
	case domain.RoleCustomerCare:
		return []NavItem{{Label: "Inbox", Href: "/inbox"}}
	case domain.RoleSuperAdmin:
		return []NavItem{
			{Label: "Dashboard", Href: "/"},
			{Label: "User Management", Href: "/user-management"},
			{Label: "KYC Requests", Href: "/kyc"},
			{Label: "Orders", Href: "/orders"},
			{Label: "Customers", Href: "/customers"},
			{Label: "Reviews", Href: "/reviews"},
			{Label: "Community", Children: []NavItem{
				{Label: "All Posts", Href: "/all-post"},
				{Label: "Mbaay Community", Href: "/mbaay-community"},
			}},
			{Label: "Inbox", Href: "/inbox"},
		}
	case domain.RoleAdmin:
		return []NavItem{
			{Label: "Dashboard", Href: "/"},
			{Label: "User Management", Href: "/user-management"},
			{Label: "Verification", Children: []NavItem{
				{Label: "Requests", Href: "/kyc"},
				{Label: "KYC", Href: "/kyc?status=Pending"},
			}},
			{Label: "Orders", Href: "/orders"},
			{Label: "Customers", Href: "/customers"},
			{Label: "Reviews", Href: "/reviews"},
			{Label: "Community", Children: []NavItem{
				{Label: "All Posts", Href: "/all-post"},
				{Label: "Mbaay Community", Href: "/mbaay-community"},
			}},
			{Label: "Inbox", Href: "/inbox"},
		}
	}
	return nil
}
