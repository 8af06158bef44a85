package services

import (
	"mbaayadmin/internal/domain"
	"mbaayadmin/internal/querycache"
)

// Cache keys. Mutations invalidate these by prefix.
var (
	KeyUsers            = querycache.Key{"users"}
	KeyVendors          = querycache.Key{"vendors"}
	KeyAdmins           = querycache.Key{"admins"}
	KeyKycRequests      = querycache.Key{"kycRequests"}
	KeyOrders           = querycache.Key{"all-orders"}
	KeyCustomerPayments = querycache.Key{"customersPayments"}
	KeyReviews          = querycache.Key{"allReviews"}
	KeyCommunityPosts   = querycache.Key{"communityPosts"}
	KeyMbaayCommunity   = querycache.Key{"mbaay_community"}
	KeyCommunities      = querycache.Key{"communities"}
)

// SubjectKey is the detail key of one user, vendor or admin.
func SubjectKey(t domain.SubjectType, id string) querycache.Key {
	return querycache.Key{string(t), id}
}

// CollectionKey is the listing key a subject belongs to.
func CollectionKey(t domain.SubjectType) querycache.Key {
	switch t {
	case domain.SubjectVendor:
		return KeyVendors
	case domain.SubjectAdmin:
		return KeyAdmins
	}
	return KeyUsers
}
