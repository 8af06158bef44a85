package handlers

import (
	"fmt"
	"log"
	"time"

	"github.com/jmoiron/sqlx"

	"mbaayadmin/internal/access"
	"mbaayadmin/internal/apiclient"
	"mbaayadmin/internal/config"
	"mbaayadmin/internal/querycache"
	"mbaayadmin/internal/repos"
	"mbaayadmin/internal/services"
)

type Deps struct {
	Sessions *services.SessionService
	Actions  *services.ActionService

	AuthHandler      *AuthHandler
	DashboardHandler *DashboardHandler
	AdminHandler     *AdminHandler
	KycHandler       *KycHandler
	OrderHandler     *OrderHandler
	CommunityHandler *CommunityHandler
	InboxHandler     *InboxHandler
	ActionHandler    *ActionHandler
}

// NewDeps wires the handlers. A nil db keeps sessions in memory only.
func NewDeps(db *sqlx.DB, cfg config.Config, now func() time.Time) (*Deps, error) {
	if now == nil {
		now = time.Now
	}
	api := apiclient.New(apiclient.Options{
		BaseURL:          cfg.APIBaseURL,
		CommunityBaseURL: cfg.CommunityBaseURL,
		Timeout:          cfg.APITimeout,
	})
	caches := querycache.NewRegistry(querycache.Options{StaleTime: cfg.QueryStaleTime, Now: now})

	var sessRepo *repos.SessionRepo
	if db != nil {
		sessRepo = repos.NewSessionRepo(db)
	}
	sessions, err := services.NewSessionService(sessRepo, caches, cfg.SessionSecret)
	if err != nil {
		return nil, fmt.Errorf("sessions: %w", err)
	}
	n, err := sessions.Restore(now())
	if err != nil {
		log.Printf("[session] restore failed: %v", err)
	} else if n > 0 {
		log.Printf("[session] restored %d session(s)", n)
	}

	authSvc := &services.AuthService{API: api, Sessions: sessions, Now: now}
	queries := &services.QueryService{API: api, Caches: caches}
	actions := services.NewActionService(api, caches)
	rd := reader{Queries: queries, Wait: cfg.RenderWait}

	return &Deps{
		Sessions:         sessions,
		Actions:          actions,
		AuthHandler:      &AuthHandler{Auth: authSvc, CookieSecure: cfg.CookieSecure},
		DashboardHandler: &DashboardHandler{reader: rd},
		AdminHandler:     &AdminHandler{reader: rd, Actions: actions},
		KycHandler:       &KycHandler{reader: rd, Actions: actions},
		OrderHandler:     &OrderHandler{reader: rd},
		CommunityHandler: &CommunityHandler{reader: rd, Actions: actions},
		InboxHandler:     &InboxHandler{reader: rd, Actions: actions},
		ActionHandler:    &ActionHandler{Actions: actions},
	}, nil
}

// Views returns the renderer of every dashboard view.
func (d *Deps) Views() Views {
	return Views{
		access.ViewDashboard: d.DashboardHandler.Dashboard,
		access.ViewOrders:    d.OrderHandler.Orders,
		access.ViewCustomers: d.OrderHandler.Customers,
		access.ViewReviews:   d.OrderHandler.Reviews,
		access.ViewKyc:       d.KycHandler.List,
		access.ViewKycDetail: d.KycHandler.Detail,
		access.ViewUsers:     d.AdminHandler.Users,
		access.ViewSubject:   d.AdminHandler.Subject,
		access.ViewPosts:     d.CommunityHandler.Posts,
		access.ViewCommunity: d.CommunityHandler.Community,
		access.ViewInbox:     d.InboxHandler.Inbox,
	}
}
