// Package access issues and verifies the stateless entitlement grants that
// prove a payer already paid for a resource. Grants are compact signed tokens
// carried in a resource-scoped cookie; the server stores nothing.
package access

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/hkdf"
)

// grantKeyInfo namespaces the derived signing key so the configured secret
// can be reused for other purposes without key reuse across domains.
const grantKeyInfo = "openfacilitator/access-grant/v1"

// CodecConfig bundles the configuration required to build a Codec.
type CodecConfig struct {
	// Secret is the process-wide signing secret. Construction fails when it
	// is empty; there is deliberately no fallback default.
	Secret string
	Clock  func() time.Time
}

// grantClaims binds a grant to one resource and an expiry.
type grantClaims struct {
	ResourceID string `json:"rid"`
	jwt.RegisteredClaims
}

// Codec signs and verifies access grants.
type Codec struct {
	key []byte
	now func() time.Time
}

// NewCodec derives the signing key once from the configured secret.
func NewCodec(cfg CodecConfig) (*Codec, error) {
	if cfg.Secret == "" {
		return nil, errors.New("access: signing secret must be configured")
	}

	key := make([]byte, 32)
	kdf := hkdf.New(sha256.New, []byte(cfg.Secret), nil, []byte(grantKeyInfo))
	if _, err := io.ReadFull(kdf, key); err != nil {
		return nil, fmt.Errorf("access: derive signing key: %w", err)
	}

	now := time.Now
	if cfg.Clock != nil {
		now = cfg.Clock
	}

	return &Codec{key: key, now: now}, nil
}

// Issue encodes and signs a grant for the resource, valid for ttl.
func (c *Codec) Issue(resourceID string, ttl time.Duration) (string, error) {
	if resourceID == "" {
		return "", errors.New("access: resource id is required")
	}
	if ttl <= 0 {
		return "", errors.New("access: ttl must be positive")
	}

	now := c.now()
	claims := &grantClaims{
		ResourceID: resourceID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(c.key)
	if err != nil {
		return "", fmt.Errorf("access: sign grant: %w", err)
	}
	return signed, nil
}

// Verify reports whether the token is a valid, unexpired grant for the
// expected resource. Malformed, forged and expired tokens are all just
// "invalid"; no failure detail leaks to callers.
func (c *Codec) Verify(token, expectedResourceID string) bool {
	if token == "" || expectedResourceID == "" {
		return false
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(c.now),
		jwt.WithExpirationRequired(),
	)

	var claims grantClaims
	if _, err := parser.ParseWithClaims(token, &claims, func(*jwt.Token) (interface{}, error) {
		return c.key, nil
	}); err != nil {
		return false
	}

	return claims.ResourceID == expectedResourceID
}
