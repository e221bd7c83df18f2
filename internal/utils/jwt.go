package utils

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AccessToken is a signed HS256 JWT for a human operator, plus its
// expiry. Devices do not use JWTs; they authenticate with their bearer
// token against the device registry.
type AccessToken struct {
	Token string
	Exp   time.Time
}

// NewAccessToken signs an access token carrying the user id (sub), role
// and licensee scope. licenseeID is 0 for ADMIN accounts, which are not
// licensee-bound.
func NewAccessToken(secret string, userID uint64, role string, licenseeID uint64, ttlMin int) (AccessToken, error) {
	exp := time.Now().UTC().Add(time.Duration(ttlMin) * time.Minute)
	claims := jwt.MapClaims{
		"sub":         userID,
		"role":        role,
		"licensee_id": licenseeID,
		"exp":         exp.Unix(),
		"iat":         time.Now().UTC().Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(secret))
	if err != nil {
		return AccessToken{}, err
	}
	return AccessToken{Token: signed, Exp: exp}, nil
}
