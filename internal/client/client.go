// Package client is the warehouse API client: credential exchange, local
// authorization of protected actions, bearer attachment and entity calls.
//
// Every protected call is checked against the session and authz policy first.
// A denied call returns without touching the network.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"wms/internal/authz"
	"wms/internal/logger"
	"wms/internal/session"
	"wms/pkg/response"
)

// DefaultTimeout bounds every request, including the credential exchange.
const DefaultTimeout = 10 * time.Second

// Client talks to one API server on behalf of one Session Store.
type Client struct {
	base     *url.URL
	http     *http.Client
	store    *session.Store
	log      *zap.Logger
	validate *validator.Validate
}

type Option func(*Client)

// WithHTTPClient replaces the underlying client. Its transport is wrapped so
// the bearer header is still attached.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.log = l }
}

// New builds a client for baseURL backed by store.
func New(baseURL string, store *session.Store, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid api url %q", baseURL)
	}
	if store == nil {
		return nil, errors.New("client requires a session store")
	}

	v := validator.New()
	v.SetTagName("binding")

	c := &Client{
		base:     u,
		http:     &http.Client{Timeout: DefaultTimeout},
		store:    store,
		log:      zap.NewNop(),
		validate: v,
	}
	for _, opt := range opts {
		opt(c)
	}

	hc := *c.http
	hc.Transport = &bearerTransport{base: hc.Transport, store: store}
	c.http = &hc
	c.log = c.log.With(logger.Component("client"))
	return c, nil
}

// Store returns the session this client reads and writes.
func (c *Client) Store() *session.Store { return c.store }

// bearerTransport reads the token at send time so a request never carries a
// token captured from an earlier session.
type bearerTransport struct {
	base  http.RoundTripper
	store *session.Store
}

func (t *bearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.base
	if base == nil {
		base = http.DefaultTransport
	}
	if tok := t.store.Token(); tok != "" {
		req = req.Clone(req.Context())
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	return base.RoundTrip(req)
}

// authorize is the local gate run before any protected request is built.
func (c *Client) authorize(action authz.Action, target int64) error {
	ident, active := c.store.Identity()
	if !active {
		c.log.Warn("request rejected locally: no active session", logger.Action(string(action)))
		return fmt.Errorf("%w: %s", ErrUnauthenticated, action)
	}
	if err := authz.Check(ident, action, target); err != nil {
		c.log.Warn("request rejected locally",
			logger.Action(string(action)),
			logger.SubjectID(ident.SubjectID),
			zap.String("role", string(ident.Role)),
			zap.Int64("target", target),
		)
		return fmt.Errorf("%w: %w", ErrUnauthorized, err)
	}
	return nil
}

// send performs one request and returns status and body. It only fails on transport errors.
func (c *Client) send(ctx context.Context, method, path string, query url.Values, in any) (int, []byte, error) {
	u := *c.base
	u.Path += path
	if query != nil {
		u.RawQuery = query.Encode()
	}

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return 0, nil, fmt.Errorf("%w: encode request: %v", ErrValidation, err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: %s %s: %v", ErrTransport, method, path, err)
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("%w: read %s %s: %v", ErrTransport, method, path, err)
	}
	return resp.StatusCode, b, nil
}

// do runs a protected request after the caller has authorized it. The server's
// envelope is unwrapped into out when out is non-nil.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, expected int, in, out any) error {
	epoch := c.store.Epoch()
	status, body, err := c.send(ctx, method, path, query, in)
	if err != nil {
		if errors.Is(err, ErrTransport) {
			c.escalate("Network error", err)
		}
		return err
	}

	switch {
	case status == http.StatusUnauthorized:
		// Only the session that made the request is cleared.
		if c.store.ClearAt(epoch) {
			c.log.Warn("server rejected session, cleared", zap.String("path", path))
		} else {
			c.log.Info("server rejected a replaced session", zap.String("path", path))
		}
		return fmt.Errorf("%w: %s %s", ErrSessionRejected, method, path)
	case status == http.StatusForbidden:
		return fmt.Errorf("%w: server denied %s %s: %s", ErrUnauthorized, method, path, serverMessage(body))
	case status != expected:
		serr := &StatusError{Method: method, Path: path, Expected: expected, Got: status, Message: serverMessage(body)}
		c.escalate("Unexpected response", serr)
		return serr
	}

	if out == nil {
		return nil
	}
	env, ok := response.Parse(body)
	if !ok || len(env.Data) == 0 {
		err = fmt.Errorf("%w: %s %s: malformed response body", ErrTransport, method, path)
		c.escalate("Unexpected response", err)
		return err
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		err = fmt.Errorf("%w: %s %s: decode data: %v", ErrTransport, method, path, err)
		c.escalate("Unexpected response", err)
		return err
	}
	return nil
}

func (c *Client) escalate(header string, err error) {
	c.log.Error(header, zap.Error(err))
	c.store.RaiseError(header, err.Error())
}

func serverMessage(body []byte) string {
	if env, ok := response.Parse(body); ok && env.Error != "" {
		return env.Error
	}
	return strings.TrimSpace(string(body))
}

func (c *Client) check(v any) error {
	if err := c.validate.Struct(v); err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return nil
}
