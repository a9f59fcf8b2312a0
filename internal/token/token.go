package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidOrExpired covers every way a token can fail: bad signature,
// wrong purpose, malformed payload, or past its max age. Callers get one
// uniform error so they cannot learn which check rejected the token.
var ErrInvalidOrExpired = errors.New("token is invalid or expired")

const PurposeEmailConfirmation = "email-confirmation"

// Issuer signs and checks single-purpose tokens bound to an email address.
// The purpose string is mixed into the signing key, so a token issued for
// one purpose never verifies under another even with the same secret.
type Issuer struct {
	secret  string
	purpose string
	now     func() time.Time
}

func NewIssuer(secret, purpose string) *Issuer {
	return &Issuer{
		secret:  secret,
		purpose: purpose,
		now:     time.Now,
	}
}

// SetClock replaces the time source. Tests use this to control expiry.
func (i *Issuer) SetClock(now func() time.Time) {
	i.now = now
}

type emailClaims struct {
	Purpose string `json:"purpose"`
	jwt.RegisteredClaims
}

func (i *Issuer) signingKey() []byte {
	return []byte(i.secret + "." + i.purpose)
}

// Issue produces an opaque signed token carrying the email, the issuer's
// purpose, and the issuance time. Expiry is not baked into the token; the
// checker decides the acceptable age.
func (i *Issuer) Issue(email string) (string, error) {
	claims := emailClaims{
		Purpose: i.purpose,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  email,
			IssuedAt: jwt.NewNumericDate(i.now()),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(i.signingKey())
}

// Check verifies the signature and that no more than maxAge has elapsed
// since issuance, returning the embedded email on success.
func (i *Issuer) Check(tokenStr string, maxAge time.Duration) (string, error) {
	claims := &emailClaims{}
	parsed, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return i.signingKey(), nil
	})
	if err != nil || !parsed.Valid {
		return "", ErrInvalidOrExpired
	}

	if claims.Purpose != i.purpose || claims.Subject == "" || claims.IssuedAt == nil {
		return "", ErrInvalidOrExpired
	}

	if i.now().Sub(claims.IssuedAt.Time) > maxAge {
		return "", ErrInvalidOrExpired
	}

	return claims.Subject, nil
}
