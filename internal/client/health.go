package client

import (
	"context"
	"net/http"
)

// Ping calls GET /health. It never changes session or global error state.
func (c *Client) Ping(ctx context.Context) error {
	status, body, err := c.send(ctx, http.MethodGet, "/health", nil, nil)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return &StatusError{Method: http.MethodGet, Path: "/health", Expected: http.StatusOK, Got: status, Message: serverMessage(body)}
	}
	return nil
}

// Healthy is Ping reduced to a boolean.
func (c *Client) Healthy(ctx context.Context) bool {
	return c.Ping(ctx) == nil
}
