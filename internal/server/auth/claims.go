// Package auth implements the claims codec: encoding identity claims into
// HS256-signed compact tokens and decoding them back under a per-call
// validation policy.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/authgate/internal/common"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims is the access-token claim set: registered claims plus the user id
// and email of the subject.
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"uid"`
	Email  string `json:"email,omitempty"`
}

// Policy selects which checks Decode performs. Each flag is independent,
// and a Policy value is passed per call, so there is no shared mutable
// validation state.
type Policy struct {
	CheckSignature bool
	CheckIssuer    bool
	CheckAudience  bool
	CheckExpiry    bool
}

// StrictPolicy enables every check. Used when authenticating requests.
func StrictPolicy() Policy {
	return Policy{CheckSignature: true, CheckIssuer: true, CheckAudience: true, CheckExpiry: true}
}

// RotationPolicy verifies signature and algorithm only. The rotation flow
// must decode an already-expired token to read its claims; expiry is then
// checked explicitly by the caller.
func RotationPolicy() Policy {
	return Policy{CheckSignature: true}
}

// Codec signs and verifies access tokens with a symmetric HS256 key.
// Immutable after construction.
type Codec struct {
	secret   []byte
	issuer   string
	audience string
}

func NewCodec(secret []byte, issuer, audience string) *Codec {
	return &Codec{secret: secret, issuer: issuer, audience: audience}
}

// Encode builds a signed token for the given identity, valid for validity
// from now. A fresh jti is generated per call and returned alongside the
// token so the caller can bind it to a refresh record.
func (c *Codec) Encode(userID, email string, validity time.Duration) (string, string, error) {
	now := time.Now()
	jti := uuid.NewString()

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ID:        jti,
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    c.issuer,
			Audience:  jwt.ClaimStrings{c.audience},
			ExpiresAt: jwt.NewNumericDate(now.Add(validity)),
		},
		UserID: userID,
		Email:  email,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", "", fmt.Errorf("error signing token: %w", err)
	}

	return signed, jti, nil
}

// Decode parses tokenString and validates it according to p. Signature and
// algorithm failures map to ErrInvalidSignature/ErrUnsupportedAlgorithm,
// issuer/audience mismatches to ErrClaimMismatch, and a past expiry (when
// checked) to ErrTokenExpired.
func (c *Codec) Decode(tokenString string, p Policy) (*Claims, error) {
	claims := &Claims{}

	if p.CheckSignature {
		// Claim validation is disabled at parse time; the policy decides
		// below which claims get checked.
		_, err := jwt.ParseWithClaims(tokenString, claims, c.keyFunc, jwt.WithoutClaimsValidation())
		if err != nil {
			switch {
			case errors.Is(err, common.ErrUnsupportedAlgorithm):
				return nil, common.ErrUnsupportedAlgorithm
			case errors.Is(err, jwt.ErrTokenSignatureInvalid):
				return nil, common.ErrInvalidSignature
			default:
				return nil, common.ErrInvalidToken
			}
		}
	} else {
		if _, _, err := jwt.NewParser().ParseUnverified(tokenString, claims); err != nil {
			return nil, common.ErrInvalidToken
		}
	}

	if err := c.validate(claims, p); err != nil {
		return nil, err
	}

	return claims, nil
}

// keyFunc pins the algorithm to HMAC before releasing the key.
func (c *Codec) keyFunc(t *jwt.Token) (any, error) {
	if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, common.ErrUnsupportedAlgorithm
	}
	return c.secret, nil
}

func (c *Codec) validate(claims *Claims, p Policy) error {
	if p.CheckIssuer && claims.Issuer != c.issuer {
		return common.ErrClaimMismatch
	}

	if p.CheckAudience && !hasAudience(claims.Audience, c.audience) {
		return common.ErrClaimMismatch
	}

	if p.CheckExpiry {
		if claims.ExpiresAt == nil || !claims.ExpiresAt.After(time.Now()) {
			return common.ErrTokenExpired
		}
	}

	return nil
}

func hasAudience(aud jwt.ClaimStrings, want string) bool {
	for _, a := range aud {
		if a == want {
			return true
		}
	}
	return false
}
