// Package walletauth proves which wallet sent a request. A wallet key is an
// ed25519 public key; the wallet signs a short-lived EdDSA JWT whose
// subject is its own key, so the verifier needs no key registry.
package walletauth

import (
	"crypto/ed25519"
	"crypto/sha256"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	apperrors "github.com/vestige-labs/vestige/internal/platform/errors"
	"github.com/vestige-labs/vestige/internal/platform/id"
	"github.com/vestige-labs/vestige/internal/services/launch/domain/address"
)

// Audience is the audience every launch-service token must name.
const Audience = "vestige.launch"

// DefaultTTL is the lifetime of a signed token.
const DefaultTTL = 5 * time.Minute

// Wallet is a signing key and the address it controls.
type Wallet struct {
	Key     address.Key
	private ed25519.PrivateKey
}

// FromSeed returns the wallet for a 32-byte ed25519 seed.
func FromSeed(seed []byte) (Wallet, error) {
	if len(seed) != ed25519.SeedSize {
		return Wallet{}, fmt.Errorf("wallet seed must be %d bytes", ed25519.SeedSize)
	}
	private := ed25519.NewKeyFromSeed(seed)
	var key address.Key
	copy(key[:], private.Public().(ed25519.PublicKey))
	return Wallet{Key: key, private: private}, nil
}

// FromLabel derives a deterministic wallet from a name. Only for local
// development and tests: anyone who knows the label holds the key.
func FromLabel(label string) Wallet {
	seed := sha256.Sum256([]byte("vestige-wallet:" + label))
	wallet, _ := FromSeed(seed[:])
	return wallet
}

type claims struct {
	jwt.RegisteredClaims
}

// Sign issues a token for the wallet valid for ttl from now.
func (w Wallet) Sign(now time.Time, ttl time.Duration) (string, error) {
	if w.private == nil {
		return "", errors.New("wallet has no signing key")
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	jti, err := id.NewID()
	if err != nil {
		return "", fmt.Errorf("token id: %w", err)
	}
	token := jwt.NewWithClaims(jwt.SigningMethodEdDSA, claims{RegisteredClaims: jwt.RegisteredClaims{
		Subject:   w.Key.String(),
		Audience:  jwt.ClaimStrings{Audience},
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now.Add(-time.Minute)),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		ID:        jti,
	}})
	signed, err := token.SignedString(w.private)
	if err != nil {
		return "", fmt.Errorf("sign wallet token: %w", err)
	}
	return signed, nil
}

// Verifier checks wallet tokens.
type Verifier struct {
	now func() time.Time
}

// NewVerifier returns a verifier reading time from now (time.Now when nil).
func NewVerifier(now func() time.Time) *Verifier {
	if now == nil {
		now = time.Now
	}
	return &Verifier{now: now}
}

// Verify returns the wallet that signed token. The signature is checked
// against the key named in the subject.
func (v *Verifier) Verify(token string) (address.Key, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return address.Zero, apperrors.New(apperrors.CodeUnauthorized, "wallet token is required")
	}
	var parsed claims
	_, err := jwt.ParseWithClaims(token, &parsed, func(t *jwt.Token) (any, error) {
		c, ok := t.Claims.(*claims)
		if !ok {
			return nil, errors.New("unexpected claims type")
		}
		key, err := address.Parse(c.Subject)
		if err != nil || key.IsZero() {
			return nil, errors.New("subject is not a wallet key")
		}
		return ed25519.PublicKey(key[:]), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodEdDSA.Alg()}),
		jwt.WithAudience(Audience),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(v.now),
	)
	if err != nil {
		return address.Zero, mapJWTError(err)
	}
	key, err := address.Parse(parsed.Subject)
	if err != nil {
		return address.Zero, apperrors.Wrap(apperrors.CodeUnauthorized, "wallet token subject is invalid", err)
	}
	return key, nil
}

func mapJWTError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return apperrors.Wrap(apperrors.CodeUnauthorized, "wallet token is expired", err)
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrEd25519Verification):
		return apperrors.Wrap(apperrors.CodeUnauthorized, "wallet token signature is invalid", err)
	case errors.Is(err, jwt.ErrTokenInvalidAudience):
		return apperrors.Wrap(apperrors.CodeUnauthorized, "wallet token audience mismatch", err)
	default:
		return apperrors.Wrap(apperrors.CodeUnauthorized, "wallet token is invalid", err)
	}
}
