package apiclient

import (
	"context"
	"net/http"
	"net/url"

	"mbaayadmin/internal/domain"
)

func (c *Client) ListUsers(ctx context.Context, token string) ([]domain.User, error) {
	var out []domain.User
	if err := c.getList(ctx, "/users/all", "users_all", token, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ListVendors(ctx context.Context, token string) ([]domain.Vendor, error) {
	var out []domain.Vendor
	if err := c.getList(ctx, "/vendors/all", "vendors_all", token, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ListAdmins(ctx context.Context, token string) ([]domain.Admin, error) {
	var out []domain.Admin
	if err := c.getList(ctx, "/admins/all", "admins_all", token, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetUser returns nil without error when the backend answers with an empty
// payload; callers render that as not found.
func (c *Client) GetUser(ctx context.Context, token, id string) (*domain.User, error) {
	var u domain.User
	if err := c.getObject(ctx, "/one_user/"+url.PathEscape(id), "one_user", token, true, &u); err != nil {
		return nil, err
	}
	if u.Key() == "" && u.Email == "" {
		return nil, nil
	}
	return &u, nil
}

func (c *Client) GetVendor(ctx context.Context, token, id string) (*domain.Vendor, error) {
	var v domain.Vendor
	if err := c.getObject(ctx, "/one_vendor/"+url.PathEscape(id), "one_vendor", token, true, &v); err != nil {
		return nil, err
	}
	if v.Key() == "" && v.Email == "" {
		return nil, nil
	}
	return &v, nil
}

func (c *Client) GetAdmin(ctx context.Context, token, id string) (*domain.Admin, error) {
	var a domain.Admin
	if err := c.getObject(ctx, "/get_admin/"+url.PathEscape(id), "get_admin", token, true, &a); err != nil {
		return nil, err
	}
	if a.Key() == "" && a.Email == "" {
		return nil, nil
	}
	return &a, nil
}

type subjectActionBody struct {
	UserID   string               `json:"userId"`
	UserType domain.SubjectType   `json:"userType"`
	Action   domain.SubjectAction `json:"action"`
}

// SubjectAction blocks, unblocks or deletes a user, vendor or admin.
func (c *Client) SubjectAction(ctx context.Context, token, id string, typ domain.SubjectType, action domain.SubjectAction) error {
	_, err := c.sendJSON(ctx, http.MethodPost, "/user/action", "user_action", token, true,
		subjectActionBody{UserID: id, UserType: typ, Action: action})
	return err
}
