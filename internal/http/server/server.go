// Package server assembles the dashboard's fiber app: middleware, the
// role-gated views, the action endpoints and the ops routes.
package server

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/csrf"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"mbaayadmin/internal/access"
	"mbaayadmin/internal/config"
	"mbaayadmin/internal/domain"
	"mbaayadmin/internal/http/handlers"
	applog "mbaayadmin/internal/log"
)

// Uploads: a post carries up to four images of 5 MiB each.
const maxBodyBytes = 24 << 20

func New(db *sqlx.DB, cfg config.Config) (*fiber.App, error) {
	return NewWithClock(db, cfg, time.Now)
}

// NewWithClock is New with the clock used for session expiry and caching.
func NewWithClock(db *sqlx.DB, cfg config.Config, now func() time.Time) (*fiber.App, error) {
	deps, err := handlers.NewDeps(db, cfg, now)
	if err != nil {
		return nil, err
	}

	engine := handlers.NewEngine(cfg.TemplatesDir)
	engine.Reload(true)

	app := fiber.New(fiber.Config{
		Views:     engine,
		BodyLimit: maxBodyBytes,
		// sid, ids and query values outlive the request as session and cache keys
		Immutable: true,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if fe, ok := err.(*fiber.Error); ok {
				code = fe.Code
			}
			if code == fiber.StatusRequestEntityTooLarge {
				applog.Security(c, "request.too_large", nil)
				return c.Status(code).SendString("Request too large")
			}
			applog.Error(c, "server.error", err, map[string]any{"code": code})
			// Avoid leaking internals; best-effort render
			if rerr := c.Status(code).Render("notfound", fiber.Map{
				"Message": "Something went wrong. Please try again.",
			}); rerr != nil {
				return c.Status(code).SendString("Something went wrong. Please try again.")
			}
			return nil
		},
	})

	// ---------- Middlewares ----------
	app.Use(requestid.New())
	app.Use(logger.New())
	app.Use(helmet.New())
	app.Use(handlers.AttachPrincipal(deps.Sessions, now))
	app.Use(limiter.New(limiter.Config{
		Max:        cfg.RateLimit,
		Expiration: time.Minute,
		Next: func(c *fiber.Ctx) bool {
			p := string(c.Request().URI().Path())
			return strings.HasPrefix(p, "/static/") || p == "/healthz" || p == "/metrics"
		},
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.global.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).SendString("Too many requests")
		},
	}))
	app.Use(csrf.New(csrf.Config{
		KeyLookup:      "form:csrf",
		CookieName:     "csrf_",
		CookieSameSite: "Lax",
		CookieSecure:   cfg.CookieSecure,
		ContextKey:     "csrf",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			applog.Security(c, "csrf.fail", map[string]any{"form_token": c.FormValue("csrf") != ""})
			return c.Status(fiber.StatusForbidden).Render("notfound", fiber.Map{"Message": "Security check failed. Please refresh and try again."})
		},
	}))
	app.Use(func(c *fiber.Ctx) error {
		if tok, ok := c.Locals("csrf").(string); ok {
			c.Locals("CSRFToken", tok)
		}
		return c.Next()
	})

	// ---------- Static assets ----------
	log.Printf("[static] /static -> %s", cfg.StaticDir)
	app.Static("/static", cfg.StaticDir)

	// ---------- Auth ----------
	authH := deps.AuthHandler
	loginLimiter := limiter.New(limiter.Config{
		Max:        cfg.LoginLimit,
		Expiration: 10 * time.Minute,
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.login.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).Render("login", fiber.Map{"Err": "Too many attempts. Please try again later."})
		},
	})
	app.Get(access.LoginPath, authH.LoginForm)
	app.Post(access.LoginPath, loginLimiter, authH.Login)
	app.Get("/signup-admin", authH.SignupForm)
	app.Post("/signup-admin", loginLimiter, authH.Signup)
	app.Post("/logout", authH.Logout)

	// ---------- Dashboard views ----------
	gate := handlers.Gate(now)
	views := deps.Views()
	for _, r := range access.Routes() {
		app.Get(r.Pattern, gate, views.Serve)
	}

	// ---------- Actions ----------
	admins := handlers.RequireRole(now, domain.RoleAdmin, domain.RoleSuperAdmin)
	anyone := handlers.RequireRole(now, domain.RoleAdmin, domain.RoleSuperAdmin, domain.RoleCustomerCare)
	act := deps.ActionHandler
	actions := app.Group("/actions")
	actions.Post("/subject", admins, act.Subject)
	actions.Post("/kyc/:id/:decision", admins, act.Kyc)
	actions.Post("/post", admins, act.Post)
	actions.Post("/community", admins, act.Community)
	actions.Post("/message", anyone, act.Message)
	actions.Post("/broadcast", anyone, act.Broadcast)

	// ---------- Ops & 404 ----------
	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"ok": true, "sessions": deps.Sessions.Len()})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
	// Unknown paths: visitors without a session go to login, others get 404.
	app.Use(gate, func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).Render("notfound", fiber.Map{"Message": "Page not found"})
	})

	if cfg.SessionSweep > 0 {
		ctx, stop := context.WithCancel(context.Background())
		go deps.Sessions.RunSweeper(ctx, cfg.SessionSweep, now)
		app.Hooks().OnShutdown(func() error {
			stop()
			return nil
		})
	}

	return app, nil
}
