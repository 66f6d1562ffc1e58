package security

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/rand"
	"crypto/rsa"
	"encoding/hex"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrTokenInvalid is returned when a token is malformed, has a bad signature, or the wrong type.
	ErrTokenInvalid = errors.New("invalid token")
	// ErrTokenExpired is returned when a token is well-formed and correctly signed but past its expiry.
	ErrTokenExpired = errors.New("token expired")
)

// accessTokenType is the token_type claim value required on access tokens.
// Refresh tokens are opaque random strings and never parse as JWTs, so any
// JWT claiming another type is rejected with ErrTokenInvalid.
const accessTokenType = "access"

// refreshTokenBytes is the entropy of an opaque refresh token before hex encoding.
const refreshTokenBytes = 64

// AccessClaims holds JWT claims for the access token.
type AccessClaims struct {
	jwt.RegisteredClaims
	TokenType string `json:"token_type"`
}

// TokenProvider issues and validates JWT access tokens using RS256 or ES256
// (private/public key) and mints opaque refresh tokens.
type TokenProvider struct {
	privateKey crypto.Signer
	publicKey  crypto.PublicKey
	issuer     string
	audience   string
	accessTTL  time.Duration
}

// NewTokenProvider returns a TokenProvider that signs with the given private key (RS256 or ES256).
// issuer and audience are set on claims and validated on every access token.
func NewTokenProvider(privateKey crypto.Signer, publicKey crypto.PublicKey, issuer, audience string, accessTTL time.Duration) *TokenProvider {
	return &TokenProvider{
		privateKey: privateKey,
		publicKey:  publicKey,
		issuer:     issuer,
		audience:   audience,
		accessTTL:  accessTTL,
	}
}

// AccessTTL returns the configured access token lifetime.
func (p *TokenProvider) AccessTTL() time.Duration {
	return p.accessTTL
}

// IssueAccess issues a short-lived, self-verifying access JWT for the given user.
// Stateless; no store access. Returns the token string and its expiration time.
func (p *TokenProvider) IssueAccess(userID string) (token string, expiresAt time.Time, err error) {
	jti, err := randomHex(16)
	if err != nil {
		return "", time.Time{}, err
	}
	now := time.Now().UTC()
	expiresAt = now.Add(p.accessTTL)
	claims := AccessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Subject:   userID,
			Issuer:    p.issuer,
			Audience:  jwt.ClaimStrings{p.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		TokenType: accessTokenType,
	}
	token, err = p.sign(claims)
	return token, expiresAt, err
}

// NewRefreshToken mints an opaque refresh token: 64 bytes from crypto/rand,
// hex-encoded. The token carries no structure; it is only meaningful to the
// session store, which holds its hash.
func NewRefreshToken() (string, error) {
	return randomHex(refreshTokenBytes)
}

// ValidateAccess parses and validates an access token (signature, exp, iss, aud, token_type).
// Returns the user ID, ErrTokenExpired for an expired token, or ErrTokenInvalid otherwise.
// No side effect, no store access: access tokens are self-verifying.
func (p *TokenProvider) ValidateAccess(tokenString string) (userID string, err error) {
	token, err := jwt.ParseWithClaims(tokenString, &AccessClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodRSA); ok {
			return p.publicKey, nil
		}
		if _, ok := token.Method.(*jwt.SigningMethodECDSA); ok {
			return p.publicKey, nil
		}
		return nil, ErrTokenInvalid
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrTokenExpired
		}
		return "", ErrTokenInvalid
	}
	claims, ok := token.Claims.(*AccessClaims)
	if !ok || !token.Valid {
		return "", ErrTokenInvalid
	}
	if claims.TokenType != accessTokenType {
		return "", ErrTokenInvalid
	}
	if claims.Issuer != p.issuer {
		return "", ErrTokenInvalid
	}
	audOk := false
	for _, a := range claims.Audience {
		if a == p.audience {
			audOk = true
			break
		}
	}
	if !audOk {
		return "", ErrTokenInvalid
	}
	return claims.Subject, nil
}

func (p *TokenProvider) sign(claims jwt.Claims) (string, error) {
	var method jwt.SigningMethod
	switch p.privateKey.Public().(type) {
	case *rsa.PublicKey:
		method = jwt.SigningMethodRS256
	case *ecdsa.PublicKey:
		method = jwt.SigningMethodES256
	default:
		return "", ErrTokenInvalid
	}
	t := jwt.NewWithClaims(method, claims)
	return t.SignedString(p.privateKey)
}

func randomHex(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
