package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"wms/internal/authz"
	"wms/internal/model"
)

// WatchInventory streams inventory events to fn until ctx is cancelled or the
// server closes the connection. A cancelled ctx returns nil.
func (c *Client) WatchInventory(ctx context.Context, fn func(model.InventoryEvent)) error {
	if err := c.authorize(authz.InventoryWatch, 0); err != nil {
		return err
	}

	u := *c.base
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path += "/ws"
	snap := c.store.Snapshot()
	u.RawQuery = url.Values{"token": {snap.Token}}.Encode()

	dialer := websocket.Dialer{HandshakeTimeout: c.http.Timeout}
	conn, resp, err := dialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusUnauthorized {
			c.store.ClearAt(snap.Epoch)
			return fmt.Errorf("%w: inventory watch", ErrSessionRejected)
		}
		err = fmt.Errorf("%w: dial inventory watch: %v", ErrTransport, err)
		c.escalate("Network error", err)
		return err
	}
	defer conn.Close()

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			_ = conn.Close()
		case <-done:
		}
	}()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil || websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return fmt.Errorf("%w: inventory watch: %v", ErrTransport, err)
		}
		// The hub batches queued events into one frame separated by newlines.
		for _, line := range bytes.Split(msg, []byte{'\n'}) {
			if len(bytes.TrimSpace(line)) == 0 {
				continue
			}
			var ev model.InventoryEvent
			if err := json.Unmarshal(line, &ev); err != nil {
				c.log.Warn("skipping malformed inventory event", zap.Error(err))
				continue
			}
			fn(ev)
		}
	}
}
