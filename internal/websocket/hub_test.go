package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wms/internal/model"
	"wms/internal/token"
)

func newServer(t *testing.T) (*Hub, *token.Issuer, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	issuer := token.NewIssuer("ws-secret", time.Hour)
	hub := NewHub(nil)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)

	r := gin.New()
	r.GET("/ws", func(c *gin.Context) { ServeWs(hub, issuer, c) })
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return hub, issuer, "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
}

func TestWatcherReceivesPublishedEvent(t *testing.T) {
	hub, issuer, url := newServer(t)
	raw, _, err := issuer.Issue(5, "sam", model.RoleSupplier)
	require.NoError(t, err)

	conn, _, err := websocket.DefaultDialer.Dial(url+"?token="+raw, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return hub.Watchers() == 1 }, 2*time.Second, 5*time.Millisecond)

	ev := model.InventoryEvent{Event: model.EventInventoryUpdated, Data: model.Inventory{ID: 9, TotalCount: 12}}
	hub.Publish(ev)

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)

	var got model.InventoryEvent
	line := strings.SplitN(string(msg), "\n", 2)[0]
	require.NoError(t, json.Unmarshal([]byte(line), &got))
	assert.Equal(t, ev.Event, got.Event)
	assert.Equal(t, int64(12), got.Data.TotalCount)

	conn.Close()
	require.Eventually(t, func() bool { return hub.Watchers() == 0 }, 2*time.Second, 5*time.Millisecond)
}

func TestServeWsRejectsMissingOrBadToken(t *testing.T) {
	_, _, url := newServer(t)

	for _, q := range []string{"", "?token=garbage"} {
		_, resp, err := websocket.DefaultDialer.Dial(url+q, nil)
		require.Error(t, err)
		require.NotNil(t, resp)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	}
}
