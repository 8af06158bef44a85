package apiclient

import (
	"context"
	"fmt"

	"mbaayadmin/internal/domain"
)

func (c *Client) ListOrders(ctx context.Context, token string) ([]domain.Order, error) {
	var out []domain.Order
	if err := c.getList(ctx, "/orders/all", "orders_all", token, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ListReviews(ctx context.Context, token string) (*domain.ReviewList, error) {
	var out domain.ReviewList
	if err := c.getObject(ctx, "/reviews/all", "reviews_all", token, true, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CustomerPayments(ctx context.Context, token string) (*domain.CustomerPayments, error) {
	var out domain.CustomerPayments
	if err := c.getObject(ctx, "/customers/payments", "customers_payments", token, true, &out); err != nil {
		return nil, fmt.Errorf("customer payments: %w", err)
	}
	return &out, nil
}
