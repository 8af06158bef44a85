package services

import (
	"context"

	"golang.org/x/sync/errgroup"

	"mbaayadmin/internal/apiclient"
	"mbaayadmin/internal/domain"
	"mbaayadmin/internal/querycache"
)

// Caller is the session a read or write is made for.
type Caller struct {
	SID       string
	Principal domain.Principal
}

func (c Caller) token() string { return c.Principal.Token }

// QueryService binds cache keys to backend reads. Every read goes through
// the caller's session cache.
type QueryService struct {
	API    *apiclient.Client
	Caches *querycache.Registry
}

func (q *QueryService) cache(c Caller) *querycache.Cache { return q.Caches.For(c.SID) }

// Peek reports the cache state of k without fetching.
func (q *QueryService) Peek(c Caller, k querycache.Key) querycache.Entry {
	e, _ := q.cache(c).Peek(k)
	return e
}

func (q *QueryService) Users(ctx context.Context, c Caller) ([]domain.User, error) {
	return querycache.Query(ctx, q.cache(c), KeyUsers, func(ctx context.Context) ([]domain.User, error) {
		return q.API.ListUsers(ctx, c.token())
	})
}

func (q *QueryService) Vendors(ctx context.Context, c Caller) ([]domain.Vendor, error) {
	return querycache.Query(ctx, q.cache(c), KeyVendors, func(ctx context.Context) ([]domain.Vendor, error) {
		return q.API.ListVendors(ctx, c.token())
	})
}

func (q *QueryService) Admins(ctx context.Context, c Caller) ([]domain.Admin, error) {
	return querycache.Query(ctx, q.cache(c), KeyAdmins, func(ctx context.Context) ([]domain.Admin, error) {
		return q.API.ListAdmins(ctx, c.token())
	})
}

// User returns nil when the backend has no such user.
func (q *QueryService) User(ctx context.Context, c Caller, id string) (*domain.User, error) {
	return querycache.Query(ctx, q.cache(c), SubjectKey(domain.SubjectUser, id), func(ctx context.Context) (*domain.User, error) {
		u, err := q.API.GetUser(ctx, c.token(), id)
		if apiclient.IsNotFound(err) {
			return nil, nil
		}
		return u, err
	})
}

func (q *QueryService) Vendor(ctx context.Context, c Caller, id string) (*domain.Vendor, error) {
	return querycache.Query(ctx, q.cache(c), SubjectKey(domain.SubjectVendor, id), func(ctx context.Context) (*domain.Vendor, error) {
		v, err := q.API.GetVendor(ctx, c.token(), id)
		if apiclient.IsNotFound(err) {
			return nil, nil
		}
		return v, err
	})
}

func (q *QueryService) Admin(ctx context.Context, c Caller, id string) (*domain.Admin, error) {
	return querycache.Query(ctx, q.cache(c), SubjectKey(domain.SubjectAdmin, id), func(ctx context.Context) (*domain.Admin, error) {
		a, err := q.API.GetAdmin(ctx, c.token(), id)
		if apiclient.IsNotFound(err) {
			return nil, nil
		}
		return a, err
	})
}

func (q *QueryService) KycRequests(ctx context.Context, c Caller) ([]domain.KycRequest, error) {
	return querycache.Query(ctx, q.cache(c), KeyKycRequests, func(ctx context.Context) ([]domain.KycRequest, error) {
		return q.API.ListKycRequests(ctx, c.token())
	})
}

// KycRequest finds one request in the cached listing; nil when absent.
func (q *QueryService) KycRequest(ctx context.Context, c Caller, id string) (*domain.KycRequest, error) {
	all, err := q.KycRequests(ctx, c)
	if err != nil {
		return nil, err
	}
	for i := range all {
		if all[i].Key() == id {
			r := all[i]
			return &r, nil
		}
	}
	return nil, nil
}

func (q *QueryService) Orders(ctx context.Context, c Caller) ([]domain.Order, error) {
	return querycache.Query(ctx, q.cache(c), KeyOrders, func(ctx context.Context) ([]domain.Order, error) {
		return q.API.ListOrders(ctx, c.token())
	})
}

func (q *QueryService) CustomerPayments(ctx context.Context, c Caller) (*domain.CustomerPayments, error) {
	return querycache.Query(ctx, q.cache(c), KeyCustomerPayments, func(ctx context.Context) (*domain.CustomerPayments, error) {
		p, err := q.API.CustomerPayments(ctx, c.token())
		if err == nil && p == nil {
			p = &domain.CustomerPayments{}
		}
		return p, err
	})
}

func (q *QueryService) Reviews(ctx context.Context, c Caller) (*domain.ReviewList, error) {
	return querycache.Query(ctx, q.cache(c), KeyReviews, func(ctx context.Context) (*domain.ReviewList, error) {
		r, err := q.API.ListReviews(ctx, c.token())
		if err == nil && r == nil {
			r = &domain.ReviewList{}
		}
		return r, err
	})
}

func (q *QueryService) CommunityPosts(ctx context.Context, c Caller) ([]domain.CommunityPost, error) {
	return querycache.Query(ctx, q.cache(c), KeyCommunityPosts, func(ctx context.Context) ([]domain.CommunityPost, error) {
		return q.API.ListCommunityPosts(ctx, c.token())
	})
}

// MbaayCommunity returns nil when the community has not been set up.
func (q *QueryService) MbaayCommunity(ctx context.Context, c Caller) (*domain.Community, error) {
	return querycache.Query(ctx, q.cache(c), KeyMbaayCommunity, func(ctx context.Context) (*domain.Community, error) {
		return q.API.MbaayCommunity(ctx, c.token())
	})
}

func (q *QueryService) Communities(ctx context.Context, c Caller) ([]domain.Community, error) {
	return querycache.Query(ctx, q.cache(c), KeyCommunities, func(ctx context.Context) ([]domain.Community, error) {
		return q.API.AllCommunities(ctx)
	})
}

// Overview holds the dashboard counters.
type Overview struct {
	Users       int
	Vendors     int
	Admins      int
	PendingKyc  int
	Orders      int
	Revenue     float64
	PaidOrders  int
	PendingPays int
}

// Overview fetches the collections behind the dashboard in parallel; each
// still goes through the cache, so a listing opened afterwards is a hit.
func (q *QueryService) Overview(ctx context.Context, c Caller) (Overview, error) {
	var (
		ov      Overview
		users   []domain.User
		vendors []domain.Vendor
		admins  []domain.Admin
		kyc     []domain.KycRequest
		orders  []domain.Order
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) { users, err = q.Users(gctx, c); return })
	g.Go(func() (err error) { vendors, err = q.Vendors(gctx, c); return })
	g.Go(func() (err error) { admins, err = q.Admins(gctx, c); return })
	g.Go(func() (err error) { kyc, err = q.KycRequests(gctx, c); return })
	g.Go(func() (err error) { orders, err = q.Orders(gctx, c); return })
	if err := g.Wait(); err != nil {
		return Overview{}, err
	}

	ov.Users, ov.Vendors, ov.Admins, ov.Orders = len(users), len(vendors), len(admins), len(orders)
	for _, k := range kyc {
		if !k.Status().Terminal() {
			ov.PendingKyc++
		}
	}
	for _, o := range orders {
		switch o.PayStatus {
		case domain.PaySuccessful:
			ov.PaidOrders++
			ov.Revenue += o.ItemsTotal()
		case domain.PayPending:
			ov.PendingPays++
		}
	}
	return ov, nil
}
