package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"mbaayadmin/internal/access"
	"mbaayadmin/internal/apiclient"
	"mbaayadmin/internal/domain"
	applog "mbaayadmin/internal/log"
	"mbaayadmin/internal/services"
	"mbaayadmin/internal/validate"
)

type AuthHandler struct {
	Auth         *services.AuthService
	CookieSecure bool
}

func (h *AuthHandler) ensureSID(c *fiber.Ctx) string {
	sid := c.Cookies("sid")
	if sid == "" {
		sid = uuid.NewString()
		c.Cookie(&fiber.Cookie{
			Name:     "sid",
			Value:    sid,
			Path:     "/",
			HTTPOnly: true,
			SameSite: fiber.CookieSameSiteLaxMode,
			Secure:   h.CookieSecure,
		})
	}
	return sid
}

// GET /login-admin
func (h *AuthHandler) LoginForm(c *fiber.Ctx) error {
	return render(c, "login", fiber.Map{"Err": ""})
}

// POST /login-admin
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	sid := h.ensureSID(c)
	form := validate.LoginForm{EmailOrPhone: c.FormValue("email"), Password: c.FormValue("password")}

	p, err := h.Auth.Login(c.UserContext(), sid, form)
	if err != nil && p.Token == "" {
		status, msg := loginFailure(err)
		applog.Security(c, "auth.login.fail", map[string]any{"email": form.EmailOrPhone, "status": status})
		return c.Status(status).Render("login", fiber.Map{"Err": msg, "Email": form.EmailOrPhone, "CSRFToken": c.Cookies("csrf_")})
	}
	if err != nil {
		applog.Error(c, "auth.session.persist.fail", err, nil)
	}
	applog.Audit(c, "auth.login.success", map[string]any{"email": form.EmailOrPhone, "role": string(p.Role)})
	if p.Role == domain.RoleCustomerCare {
		return c.Redirect("/inbox")
	}
	return c.Redirect("/")
}

func loginFailure(err error) (int, string) {
	var ve *validate.ValidationError
	var re *apiclient.RemoteError
	switch {
	case errors.As(err, &ve):
		return fiber.StatusBadRequest, ve.Message
	case errors.Is(err, services.ErrBadToken):
		return fiber.StatusUnauthorized, "This account cannot use the admin dashboard."
	case errors.As(err, &re):
		if re.Status >= 500 {
			return fiber.StatusBadGateway, apiclient.Message(err, "Login failed")
		}
		return fiber.StatusUnauthorized, apiclient.Message(err, "Invalid email or password")
	}
	return fiber.StatusBadGateway, apiclient.Message(err, "Login failed. Please try again.")
}

// POST /logout
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	sid := c.Cookies("sid")
	if sid != "" {
		if err := h.Auth.Logout(sid); err != nil {
			applog.Error(c, "auth.logout.fail", err, nil)
		}
	}
	c.Cookie(&fiber.Cookie{
		Name:     "sid",
		Value:    "",
		Path:     "/",
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Secure:   h.CookieSecure,
		Expires:  time.Now().Add(-1 * time.Hour),
	})
	applog.Audit(c, "auth.logout", nil)
	return c.Redirect(access.LoginPath)
}

// GET /signup-admin
func (h *AuthHandler) SignupForm(c *fiber.Ctx) error {
	return render(c, "signup", fiber.Map{"Err": "", "Roles": signupRoles})
}

var signupRoles = []string{"Admin", "Customer care", "Super Admin"}

// POST /signup-admin
func (h *AuthHandler) Signup(c *fiber.Ctx) error {
	form := validate.SignupForm{
		Name:     c.FormValue("name"),
		Email:    c.FormValue("email"),
		Password: c.FormValue("password"),
		Role:     c.FormValue("role"),
	}
	a, err := h.Auth.Signup(c.UserContext(), form)
	if err != nil {
		status := fiber.StatusBadGateway
		msg := apiclient.Message(err, "Could not create the account. Please try again.")
		var ve *validate.ValidationError
		var re *apiclient.RemoteError
		if errors.As(err, &ve) {
			status, msg = fiber.StatusBadRequest, ve.Message
		} else if errors.As(err, &re) && re.Status < 500 {
			status = fiber.StatusBadRequest
		}
		applog.Security(c, "auth.signup.fail", map[string]any{"email": form.Email, "role": form.Role, "status": status})
		return c.Status(status).Render("signup", fiber.Map{
			"Err": msg, "Name": form.Name, "Email": form.Email, "Role": form.Role,
			"Roles": signupRoles, "CSRFToken": c.Cookies("csrf_"),
		})
	}
	applog.Audit(c, "auth.signup.success", map[string]any{"email": form.Email, "role": a.Role})
	setFlash(c, services.Notification{Kind: services.NoticeSuccess, Message: a.Role + " created successfully"})
	return c.Redirect(access.LoginPath)
}
