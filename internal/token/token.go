// Package token signs and verifies the two bearer token classes used by the
// service.  Access and refresh tokens share one claims shape but are signed
// with independent secrets and lifetimes: an access token is valid on
// signature and expiry alone, while a refresh token must additionally match
// the hash stored on the account row.
package token

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Verification failure reasons.  They are distinguished for logging only;
// callers collapse all three into a single unauthorized outcome so the
// response never leaks which check failed.
var (
	ErrExpired      = errors.New("token expired")
	ErrBadSignature = errors.New("token signature invalid")
	ErrMalformed    = errors.New("token malformed")
)

// Claims is the payload embedded in both token classes.  Subject carries the
// account ID as a decimal string (RegisteredClaims keeps it a string).
type Claims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// AccountID parses the subject claim back into an account ID.
func (c *Claims) AccountID() (uint64, error) {
	return strconv.ParseUint(c.Subject, 10, 64)
}

// SigningConfig pairs a secret with a token lifetime.
type SigningConfig struct {
	Secret []byte
	TTL    time.Duration
}

// Manager holds the two independent signing configurations.
type Manager struct {
	Access  SigningConfig
	Refresh SigningConfig
}

func NewManager(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) *Manager {
	return &Manager{
		Access:  SigningConfig{Secret: []byte(accessSecret), TTL: accessTTL},
		Refresh: SigningConfig{Secret: []byte(refreshSecret), TTL: refreshTTL},
	}
}

// Sign builds and signs an HS256 token for the account under the given
// config.  It returns the serialized token and its absolute expiry.
func (m *Manager) Sign(accountID uint64, email, role string, cfg SigningConfig) (string, time.Time, error) {
	now := time.Now().UTC()
	exp := now.Add(cfg.TTL)
	jti, err := randomHex(16)
	if err != nil {
		return "", time.Time{}, err
	}
	claims := Claims{
		Email: email,
		Role:  role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(accountID, 10),
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(now),
			// The random jti keeps every issued token unique even when two
			// are signed within the same second; rotation depends on the new
			// refresh token hashing differently from the one it replaces.
			ID: jti,
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(cfg.Secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

// Verify parses a token under the given config and returns its claims.  The
// error is one of ErrExpired, ErrBadSignature or ErrMalformed.  Only HMAC
// signatures are accepted; a token signed with a different method counts as
// a bad signature.
func (m *Manager) Verify(raw string, cfg SigningConfig) (*Claims, error) {
	claims := &Claims{}
	tok, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrBadSignature
		}
		return cfg.Secret, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, ErrBadSignature):
			return nil, ErrBadSignature
		default:
			return nil, ErrMalformed
		}
	}
	if !tok.Valid {
		return nil, ErrMalformed
	}
	return claims, nil
}

// Hash returns the SHA-256 hex digest of a raw token.  Only this digest is
// persisted for refresh tokens, so a leaked database row cannot be replayed.
func Hash(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// randomHex returns a hex-encoded string generated from n bytes of
// cryptographically secure random data.
func randomHex(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
