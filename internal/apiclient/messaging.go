package apiclient

import (
	"context"
	"net/http"
)

type PrivateMessage struct {
	RecipientID   string `json:"recipientId"`
	RecipientType string `json:"recipientType"`
	Title         string `json:"title"`
	Message       string `json:"message"`
}

func (c *Client) SendPrivateMessage(ctx context.Context, token string, msg PrivateMessage) error {
	_, err := c.sendJSON(ctx, http.MethodPost, "/private-message", "private_message", token, true, msg)
	return err
}

// Broadcast targets: all, users, vendors, admins.
type BroadcastMessage struct {
	Title       string `json:"title"`
	Message     string `json:"message"`
	TargetUsers string `json:"targetUsers"`
}

func (c *Client) Broadcast(ctx context.Context, token string, msg BroadcastMessage) error {
	_, err := c.sendJSON(ctx, http.MethodPost, "/broadcast", "broadcast", token, true, msg)
	return err
}
