package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"wms/internal/authz"
	"wms/internal/logger"
	"wms/internal/metrics"
	"wms/internal/token"
	"wms/pkg/response"
)

const (
	claimsKey   = "claims"
	identityKey = "identity"
)

// Denylist remembers revoked token ids until the tokens would have expired anyway.
type Denylist struct {
	c *gocache.Cache
}

func NewDenylist() *Denylist {
	return &Denylist{c: gocache.New(time.Hour, 10*time.Minute)}
}

// Revoke denies jti until exp.
func (d *Denylist) Revoke(jti string, exp time.Time) {
	ttl := time.Until(exp)
	if jti == "" || ttl <= 0 {
		return
	}
	d.c.Set(jti, struct{}{}, ttl)
}

func (d *Denylist) Revoked(jti string) bool {
	_, found := d.c.Get(jti)
	return found
}

// Authenticator verifies bearer tokens and enforces the authz policy server-side.
type Authenticator struct {
	issuer   *token.Issuer
	denylist *Denylist
}

func NewAuthenticator(issuer *token.Issuer, denylist *Denylist) *Authenticator {
	return &Authenticator{issuer: issuer, denylist: denylist}
}

// Verify checks a raw token: signature, expiry, required claims and revocation.
func (a *Authenticator) Verify(raw string) (*token.Claims, error) {
	claims, err := a.issuer.Verify(raw)
	if err != nil {
		return nil, err
	}
	if a.denylist.Revoked(claims.ID) {
		return nil, token.ErrInvalid
	}
	return claims, nil
}

func bearer(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

// authenticate verifies the bearer token and stores the caller's identity on c.
// It aborts with 401 and returns false on failure. It never calls c.Next.
func (a *Authenticator) authenticate(c *gin.Context) bool {
	raw, ok := bearer(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid authorization format. Expected 'Bearer <token>'"))
		return false
	}
	claims, err := a.Verify(raw)
	if err != nil {
		logger.From(c.Request.Context()).Info("bearer rejected", zap.Error(err))
		c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid or expired token"))
		return false
	}
	ident := claims.Identity()
	c.Set(claimsKey, claims)
	c.Set(identityKey, ident)

	ctx := logger.ToContext(c.Request.Context(),
		logger.From(c.Request.Context()).With(logger.SubjectID(ident.SubjectID), logger.Username(ident.Username)))
	c.Request = c.Request.WithContext(ctx)
	return true
}

// Authenticated rejects requests without a valid bearer token with 401.
func (a *Authenticator) Authenticated() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !a.authenticate(c) {
			return
		}
		c.Next()
	}
}

// Require authenticates the request and checks action against the policy
// before any later handler runs. A numeric :id path parameter is the target
// for self-scoped actions.
func (a *Authenticator) Require(action authz.Action) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !a.authenticate(c) {
			return
		}
		var target int64
		if raw := c.Param("id"); raw != "" {
			target, _ = strconv.ParseInt(raw, 10, 64)
		}
		if err := authz.Check(Identity(c), action, target); err != nil {
			metrics.AuthzDenied(string(action))
			logger.From(c.Request.Context()).Warn("request denied by policy", logger.Action(string(action)), zap.Error(err))
			c.AbortWithStatusJSON(http.StatusForbidden, response.Error(http.StatusForbidden, "Access denied: insufficient permissions"))
			return
		}
		c.Next()
	}
}

// Identity returns the identity stored by Authenticated.
func Identity(c *gin.Context) token.Identity {
	if v, ok := c.Get(identityKey); ok {
		if ident, ok := v.(token.Identity); ok {
			return ident
		}
	}
	return token.Identity{}
}

// Claims returns the verified claims stored by Authenticated.
func Claims(c *gin.Context) *token.Claims {
	if v, ok := c.Get(claimsKey); ok {
		if claims, ok := v.(*token.Claims); ok {
			return claims
		}
	}
	return nil
}
