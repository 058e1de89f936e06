package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"wms/internal/logger"
	"wms/internal/model"
	"wms/internal/session"
	"wms/internal/token"
)

// LoginResult is the outcome of one credential exchange.
type LoginResult struct {
	Existed  bool
	Token    string
	Identity token.Identity
}

// Exchange sends one login request and decodes the returned token. It does not
// touch the session. Empty (after trimming) credentials fail with ErrValidation
// before any request is sent.
func (c *Client) Exchange(ctx context.Context, username, password string) (LoginResult, error) {
	creds := model.Credentials{
		Username: strings.TrimSpace(username),
		Password: strings.TrimSpace(password),
	}
	if err := c.check(creds); err != nil {
		return LoginResult{}, err
	}
	// Only the trimmed check applies; the password itself is sent as typed.
	creds.Password = password

	log := c.log.With(logger.Username(creds.Username))
	status, body, err := c.send(ctx, http.MethodPost, "/login", nil, creds)
	if err != nil {
		c.escalate("Network error", err)
		return LoginResult{}, err
	}
	if status != http.StatusAccepted {
		log.Info("login refused", zap.Int("status", status))
		return LoginResult{}, fmt.Errorf("%w: %w", ErrAuthentication, &StatusError{
			Method: http.MethodPost, Path: "/login", Expected: http.StatusAccepted, Got: status, Message: serverMessage(body),
		})
	}

	var tr model.TokenResponse
	if len(body) == 0 || json.Unmarshal(body, &tr) != nil || tr.Token == "" {
		log.Info("login response carried no token")
		return LoginResult{}, fmt.Errorf("%w: empty token in response", ErrAuthentication)
	}
	ident, err := token.Decode(tr.Token)
	if err != nil {
		log.Debug("login token rejected", zap.Error(err))
		return LoginResult{}, fmt.Errorf("%w: %w", ErrAuthentication, err)
	}
	if ident.Expired(time.Now()) {
		log.Info("login token already expired", zap.Time("expires_at", ident.ExpiresAt))
		return LoginResult{}, fmt.Errorf("%w: token already expired", ErrAuthentication)
	}
	return LoginResult{Existed: true, Token: tr.Token, Identity: ident}, nil
}

// Login exchanges credentials and populates the session. If the session is
// cleared or replaced while the exchange is in flight the result is discarded.
func (c *Client) Login(ctx context.Context, username, password string) (token.Identity, error) {
	epoch := c.store.Epoch()
	res, err := c.Exchange(ctx, username, password)
	if err != nil {
		return token.Identity{}, err
	}
	if err := c.store.PopulateAt(epoch, res.Token, res.Identity); err != nil {
		if errors.Is(err, session.ErrStaleEpoch) {
			c.log.Warn("discarding login that resolved after logout", logger.Username(res.Identity.Username))
		}
		return token.Identity{}, fmt.Errorf("%w: %w", ErrAuthentication, err)
	}
	c.log.Info("signed in",
		logger.SubjectID(res.Identity.SubjectID),
		logger.Username(res.Identity.Username),
		zap.String("role", string(res.Identity.Role)),
	)
	return res.Identity, nil
}

// Revoke asks the server to invalidate the current token. It does not clear
// the local session; the expiry monitor does that.
func (c *Client) Revoke(ctx context.Context) error {
	if !c.store.Active() {
		return ErrUnauthenticated
	}
	return c.do(ctx, http.MethodPost, "/logout", nil, http.StatusAccepted, nil, nil)
}
