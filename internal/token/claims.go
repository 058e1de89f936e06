// Package token decodes bearer tokens on the client and issues/verifies them on the server.
//
// Decode never checks signatures: the client trusts the issuing server and TLS.
// Issuer.Verify is the server-side authority.
package token

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"wms/internal/model"
)

// Claims is the payload carried by every bearer token.
type Claims struct {
	SubjectID int64      `json:"id"`
	Username  string     `json:"username"`
	Role      model.Role `json:"role"`
	OrigIat   int64      `json:"orig_iat"`
	jwt.RegisteredClaims
}

// Identity is the decoded, immutable view of a token.
type Identity struct {
	SubjectID int64         `json:"id" yaml:"id"`
	Username  string        `json:"username" yaml:"username"`
	Role      model.RoleTag `json:"role" yaml:"role"`
	IssuedAt  time.Time     `json:"issuedAt" yaml:"issuedAt"`
	ExpiresAt time.Time     `json:"expiresAt" yaml:"expiresAt"`
}

// Expired reports whether the identity is past its expiry at now.
func (i Identity) Expired(now time.Time) bool {
	return !now.Before(i.ExpiresAt)
}

// Identity projects the claims. Callers must have checked required fields.
func (c *Claims) Identity() Identity {
	id := Identity{
		SubjectID: c.SubjectID,
		Username:  c.Username,
		Role:      c.Role.Value,
	}
	switch {
	case c.OrigIat > 0:
		id.IssuedAt = time.Unix(c.OrigIat, 0)
	case c.IssuedAt != nil:
		id.IssuedAt = c.IssuedAt.Time
	}
	if c.ExpiresAt != nil {
		id.ExpiresAt = c.ExpiresAt.Time
	}
	return id
}

func (c *Claims) missing() string {
	switch {
	case c.SubjectID == 0:
		return "id"
	case c.Username == "":
		return "username"
	case c.Role.Value == "":
		return "role.Value"
	case c.ExpiresAt == nil:
		return "exp"
	}
	return ""
}
