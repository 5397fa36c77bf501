package security

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/rand"
	"crypto/rsa"
	"encoding/hex"
	"errors"
	"slices"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned when a token is malformed, expired, or signed for another issuer or audience.
var ErrInvalidToken = errors.New("invalid token")

const (
	tokenUseAccess  = "access"
	tokenUseRefresh = "refresh"
)

// sessionClaims is the JWT body shared by access and refresh tokens. Use distinguishes them so a
// refresh token cannot be presented as an access token.
type sessionClaims struct {
	jwt.RegisteredClaims
	SessionID string `json:"sid"`
	Role      string `json:"role"`
	Use       string `json:"use"`
}

// Claims is the validated content of a token.
type Claims struct {
	SessionID string
	UserID    string
	Role      string
	JTI       string
	ExpiresAt time.Time
}

// IssuedToken is a signed token with its id and expiry.
type IssuedToken struct {
	Token     string
	JTI       string
	ExpiresAt time.Time
}

// TokenProvider issues and validates JWT access and refresh tokens using RS256 or ES256 (private/public key).
type TokenProvider struct {
	privateKey crypto.Signer
	publicKey  crypto.PublicKey
	issuer     string
	audience   string
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewTokenProvider returns a TokenProvider that signs with the given private key (RS256 or ES256).
// issuer and audience are set on claims and checked on validation.
func NewTokenProvider(privateKey crypto.Signer, publicKey crypto.PublicKey, issuer, audience string, accessTTL, refreshTTL time.Duration) *TokenProvider {
	return &TokenProvider{
		privateKey: privateKey,
		publicKey:  publicKey,
		issuer:     issuer,
		audience:   audience,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

// RefreshTTL reports the refresh token lifetime; sessions expire with their refresh token.
func (p *TokenProvider) RefreshTTL() time.Duration { return p.refreshTTL }

// IssueAccess issues a short-lived access JWT for the given session, user, and role.
func (p *TokenProvider) IssueAccess(sessionID, userID, role string) (IssuedToken, error) {
	return p.issue(tokenUseAccess, p.accessTTL, sessionID, userID, role)
}

// IssueRefresh issues a long-lived refresh JWT. Callers store its hash on the session for rotation.
func (p *TokenProvider) IssueRefresh(sessionID, userID, role string) (IssuedToken, error) {
	return p.issue(tokenUseRefresh, p.refreshTTL, sessionID, userID, role)
}

func (p *TokenProvider) issue(use string, ttl time.Duration, sessionID, userID, role string) (IssuedToken, error) {
	jti, err := generateJTI()
	if err != nil {
		return IssuedToken{}, err
	}
	now := time.Now().UTC()
	expiresAt := now.Add(ttl)
	claims := sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Subject:   userID,
			Issuer:    p.issuer,
			Audience:  jwt.ClaimStrings{p.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		SessionID: sessionID,
		Role:      role,
		Use:       use,
	}
	token, err := p.sign(claims)
	if err != nil {
		return IssuedToken{}, err
	}
	return IssuedToken{Token: token, JTI: jti, ExpiresAt: expiresAt}, nil
}

func (p *TokenProvider) sign(claims jwt.Claims) (string, error) {
	var method jwt.SigningMethod
	switch p.privateKey.Public().(type) {
	case *rsa.PublicKey:
		method = jwt.SigningMethodRS256
	case *ecdsa.PublicKey:
		method = jwt.SigningMethodES256
	default:
		return "", ErrInvalidToken
	}
	t := jwt.NewWithClaims(method, claims)
	return t.SignedString(p.privateKey)
}

// ValidateAccess parses and validates an access token (signature, exp, iss, aud, use).
func (p *TokenProvider) ValidateAccess(tokenString string) (Claims, error) {
	return p.validate(tokenString, tokenUseAccess)
}

// ValidateRefresh parses and validates a refresh token (signature, exp, iss, aud, use).
func (p *TokenProvider) ValidateRefresh(tokenString string) (Claims, error) {
	return p.validate(tokenString, tokenUseRefresh)
}

func (p *TokenProvider) validate(tokenString, use string) (Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &sessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		switch token.Method.(type) {
		case *jwt.SigningMethodRSA, *jwt.SigningMethodECDSA:
			return p.publicKey, nil
		}
		return nil, ErrInvalidToken
	}, jwt.WithIssuer(p.issuer), jwt.WithExpirationRequired())
	if err != nil {
		return Claims{}, ErrInvalidToken
	}
	claims, ok := token.Claims.(*sessionClaims)
	if !ok || !token.Valid || claims.Use != use {
		return Claims{}, ErrInvalidToken
	}
	if !slices.Contains(claims.Audience, p.audience) {
		return Claims{}, ErrInvalidToken
	}
	out := Claims{
		SessionID: claims.SessionID,
		UserID:    claims.Subject,
		Role:      claims.Role,
		JTI:       claims.ID,
	}
	if claims.ExpiresAt != nil {
		out.ExpiresAt = claims.ExpiresAt.Time
	}
	return out, nil
}

func generateJTI() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
