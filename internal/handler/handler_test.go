package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wms/internal/middleware"
	"wms/internal/model"
	"wms/internal/service"
	"wms/internal/token"
	"wms/pkg/response"
)

type fakeItems struct {
	mu     sync.Mutex
	items  map[int64]model.Item
	nextID int64
	actor  token.Identity
}

func newFakeItems() *fakeItems { return &fakeItems{items: map[int64]model.Item{}} }

func (f *fakeItems) Create(_ context.Context, actor token.Identity, in model.Item) (*model.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, it := range f.items {
		if it.UPC == in.UPC {
			return nil, fmt.Errorf("item %w", service.ErrConflict)
		}
	}
	f.nextID++
	in.ID = f.nextID
	f.items[in.ID] = in
	f.actor = actor
	return &in, nil
}

func (f *fakeItems) Get(_ context.Context, id int64) (*model.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	it, ok := f.items[id]
	if !ok {
		return nil, fmt.Errorf("item %w", service.ErrNotFound)
	}
	return &it, nil
}

func (f *fakeItems) List(_ context.Context, page, limit int) (model.Page[model.Item], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := model.Page[model.Item]{Page: page, Limit: limit, Total: int64(len(f.items))}
	for _, it := range f.items {
		out.Items = append(out.Items, it)
	}
	return out, nil
}

func (f *fakeItems) Update(_ context.Context, actor token.Identity, id int64, in model.Item) (*model.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.items[id]; !ok {
		return nil, fmt.Errorf("item %w", service.ErrNotFound)
	}
	in.ID = id
	f.items[id] = in
	f.actor = actor
	return &in, nil
}

func (f *fakeItems) Delete(_ context.Context, _ token.Identity, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.items[id]; !ok {
		return fmt.Errorf("item %w", service.ErrNotFound)
	}
	delete(f.items, id)
	return nil
}

type fakeAuth struct{ issuer *token.Issuer }

func (f fakeAuth) Login(_ context.Context, creds model.Credentials) (string, error) {
	if creds.Username != "admin" || creds.Password != "secret" {
		return "", service.ErrInvalidCredentials
	}
	raw, _, err := f.issuer.Issue(1, "admin", model.RoleAdmin)
	return raw, err
}

func (fakeAuth) EnsureAdmin(context.Context, string, string) error { return nil }

type testEnv struct {
	router *gin.Engine
	issuer *token.Issuer
	items  *fakeItems
}

func setup(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	issuer := token.NewIssuer("test-secret", time.Hour)
	denylist := middleware.NewDenylist()
	auth := middleware.NewAuthenticator(issuer, denylist)
	items := newFakeItems()

	r := gin.New()
	root := r.Group("")
	NewAuthHandler(fakeAuth{issuer: issuer}, auth, denylist).RegisterRoutes(root)
	NewItemHandler(items, auth).RegisterRoutes(root)
	return &testEnv{router: r, issuer: issuer, items: items}
}

func (e *testEnv) bearer(t *testing.T, id int64, role model.RoleTag) string {
	t.Helper()
	raw, _, err := e.issuer.Issue(id, "user", role)
	require.NoError(t, err)
	return raw
}

func (e *testEnv) do(method, path, tok string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) response.Response {
	t.Helper()
	var res response.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	return res
}

func TestLogin(t *testing.T) {
	env := setup(t)

	w := env.do(http.MethodPost, "/login", "", model.Credentials{Username: "admin", Password: "secret"})
	require.Equal(t, http.StatusAccepted, w.Code)
	var tok model.TokenResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &tok))
	claims, err := env.issuer.Verify(tok.Token)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Username)

	w = env.do(http.MethodPost, "/login", "", model.Credentials{Username: "admin", Password: "nope"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.do(http.MethodPost, "/login", "", map[string]string{"username": "admin"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLogoutRevokesToken(t *testing.T) {
	env := setup(t)
	tok := env.bearer(t, 1, model.RoleAdmin)

	require.Equal(t, http.StatusOK, env.do(http.MethodGet, "/api/items", tok, nil).Code)
	require.Equal(t, http.StatusAccepted, env.do(http.MethodPost, "/logout", tok, nil).Code)
	assert.Equal(t, http.StatusUnauthorized, env.do(http.MethodGet, "/api/items", tok, nil).Code)
	assert.Equal(t, http.StatusUnauthorized, env.do(http.MethodPost, "/logout", tok, nil).Code)
}

func TestItemStatusCodes(t *testing.T) {
	env := setup(t)
	tok := env.bearer(t, 7, model.RoleManager)

	w := env.do(http.MethodPost, "/api/items", tok, model.Item{UPC: "0001", Name: "Widget"})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, int64(7), env.items.actor.SubjectID)

	w = env.do(http.MethodGet, "/api/items/1", tok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "success", decode(t, w).Status)

	w = env.do(http.MethodPut, "/api/items/1", tok, model.Item{UPC: "0001", Name: "Gadget"})
	require.Equal(t, http.StatusAccepted, w.Code)

	w = env.do(http.MethodDelete, "/api/items/1", tok, nil)
	require.Equal(t, http.StatusAccepted, w.Code)

	w = env.do(http.MethodGet, "/api/items/1", tok, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "error", decode(t, w).Status)
}

func TestItemErrors(t *testing.T) {
	env := setup(t)
	tok := env.bearer(t, 1, model.RoleAdmin)

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		want   int
	}{
		{"missing name", http.MethodPost, "/api/items", map[string]string{"upc": "1"}, http.StatusBadRequest},
		{"bad id", http.MethodGet, "/api/items/abc", nil, http.StatusBadRequest},
		{"unknown id", http.MethodPut, "/api/items/99", model.Item{UPC: "1", Name: "x"}, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, env.do(tt.method, tt.path, tok, tt.body).Code)
		})
	}

	require.Equal(t, http.StatusCreated, env.do(http.MethodPost, "/api/items", tok, model.Item{UPC: "1", Name: "a"}).Code)
	assert.Equal(t, http.StatusConflict, env.do(http.MethodPost, "/api/items", tok, model.Item{UPC: "1", Name: "b"}).Code)
}

func TestItemPolicy(t *testing.T) {
	env := setup(t)

	assert.Equal(t, http.StatusUnauthorized, env.do(http.MethodGet, "/api/items", "", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, env.do(http.MethodGet, "/api/items", "garbage", nil).Code)

	customer := env.bearer(t, 3, model.RoleCustomer)
	assert.Equal(t, http.StatusOK, env.do(http.MethodGet, "/api/items", customer, nil).Code)
	w := env.do(http.MethodPost, "/api/items", customer, model.Item{UPC: "1", Name: "a"})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Empty(t, env.items.items)
}
