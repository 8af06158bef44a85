package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"mbaayadmin/internal/apiclient"
	"mbaayadmin/internal/domain"
	"mbaayadmin/internal/validate"
)

type AuthService struct {
	API      *apiclient.Client
	Sessions *SessionService
	Now      func() time.Time
}

func (s *AuthService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Login signs sid in. The token's signature is the backend's business; the
// dashboard only reads role and exp from it, like the browser client did.
func (s *AuthService) Login(ctx context.Context, sid string, f validate.LoginForm) (domain.Principal, error) {
	f.EmailOrPhone = strings.TrimSpace(f.EmailOrPhone)
	if err := validate.Struct(f); err != nil {
		return domain.Principal{}, err
	}
	res, err := s.API.LoginAdmin(ctx, apiclient.Credentials{EmailOrPhone: f.EmailOrPhone, Password: f.Password})
	if err != nil {
		return domain.Principal{}, err
	}
	p, err := PrincipalFromToken(res.Token, res.User, s.now())
	if err != nil {
		return domain.Principal{}, err
	}
	if err := s.Sessions.SetPrincipal(sid, p); err != nil {
		// memory already holds the session; persistence is best effort
		return p, fmt.Errorf("persist session: %w", err)
	}
	return p, nil
}

// PrincipalFromToken decodes the unverified JWT claims. The role claim wins
// over the role on the admin record.
func PrincipalFromToken(token string, admin domain.Admin, now time.Time) (domain.Principal, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return domain.Principal{}, fmt.Errorf("%w: %v", ErrBadToken, err)
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return domain.Principal{}, fmt.Errorf("%w: no exp claim", ErrBadToken)
	}
	rawRole, _ := claims["role"].(string)
	if rawRole == "" {
		rawRole = admin.Role
	}
	role, ok := domain.ParseRole(rawRole)
	if !ok {
		return domain.Principal{}, fmt.Errorf("%w: role %q is not a dashboard role", ErrBadToken, rawRole)
	}
	id := admin.Key()
	if id == "" {
		if sub, _ := claims.GetSubject(); sub != "" {
			id = sub
		} else if v, _ := claims["id"].(string); v != "" {
			id = v
		}
	}
	p := domain.Principal{
		ID:          id,
		DisplayName: admin.Name,
		Email:       admin.Email,
		Token:       token,
		Role:        role,
		ExpiresAt:   exp.Time,
	}
	if !p.Active(now) {
		return domain.Principal{}, fmt.Errorf("%w: token expired at %s", ErrBadToken, exp.Time.Format(time.RFC3339))
	}
	return p, nil
}

func (s *AuthService) Logout(sid string) error {
	err := s.Sessions.Logout(sid)
	if IsNoSession(err) {
		return nil
	}
	return err
}

// Signup creates another dashboard account. It does not sign anybody in.
func (s *AuthService) Signup(ctx context.Context, f validate.SignupForm) (*domain.Admin, error) {
	f.Name = strings.TrimSpace(f.Name)
	f.Email = strings.TrimSpace(f.Email)
	if err := validate.Struct(f); err != nil {
		return nil, err
	}
	return s.API.CreateAdmin(ctx, apiclient.NewAdmin{Name: f.Name, Email: f.Email, Password: f.Password, Role: f.Role})
}
