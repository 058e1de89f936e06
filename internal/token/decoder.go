package token

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// ErrDecode is returned for any token whose payload cannot be turned into an Identity.
var ErrDecode = errors.New("token decode failed")

var unverified = jwt.NewParser()

// Decode parses the payload of raw without verifying its signature.
// Structural problems, non-JSON payloads and missing required claims all yield ErrDecode.
func Decode(raw string) (Identity, error) {
	if raw == "" {
		return Identity{}, fmt.Errorf("%w: empty token", ErrDecode)
	}
	var claims Claims
	if _, _, err := unverified.ParseUnverified(raw, &claims); err != nil {
		return Identity{}, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if field := claims.missing(); field != "" {
		return Identity{}, fmt.Errorf("%w: missing claim %s", ErrDecode, field)
	}
	return claims.Identity(), nil
}
