package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"wms/internal/model"
)

// ErrInvalid is returned by Verify for bad signatures, expired tokens and malformed claims.
var ErrInvalid = errors.New("invalid token")

// Issuer signs and verifies HS256 tokens.
type Issuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewIssuer(secret string, ttl time.Duration) *Issuer {
	return &Issuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue returns a signed token for the account together with its claims.
func (i *Issuer) Issue(subjectID int64, username string, role model.RoleTag) (string, *Claims, error) {
	now := i.now()
	claims := &Claims{
		SubjectID: subjectID,
		Username:  username,
		Role:      model.NewRole(role),
		OrigIat:   now.Unix(),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   fmt.Sprint(subjectID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", nil, fmt.Errorf("sign token: %w", err)
	}
	return signed, claims, nil
}

// Verify checks signature, algorithm and expiry and returns the claims.
func (i *Issuer) Verify(raw string) (*Claims, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (interface{}, error) {
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if field := claims.missing(); field != "" {
		return nil, fmt.Errorf("%w: missing claim %s", ErrInvalid, field)
	}
	if !claims.Role.Value.Valid() {
		return nil, fmt.Errorf("%w: unknown role %q", ErrInvalid, claims.Role.Value)
	}
	return &claims, nil
}
