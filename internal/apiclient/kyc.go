package apiclient

import (
	"context"
	"net/http"
	"net/url"

	"mbaayadmin/internal/domain"
)

func (c *Client) ListKycRequests(ctx context.Context, token string) ([]domain.KycRequest, error) {
	var out []domain.KycRequest
	if err := c.getList(ctx, "/view_all_kyc_requests", "view_all_kyc_requests", token, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ApproveKyc(ctx context.Context, token, vendorID string) error {
	_, err := c.sendJSON(ctx, http.MethodPatch, "/approve_kyc/"+url.PathEscape(vendorID), "approve_kyc", token, true, struct{}{})
	return err
}

func (c *Client) RejectKyc(ctx context.Context, token, vendorID string) error {
	_, err := c.sendJSON(ctx, http.MethodPatch, "/reject_kyc/"+url.PathEscape(vendorID), "reject_kyc", token, true, struct{}{})
	return err
}
