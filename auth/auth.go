// Package auth verifies the identity provider's ID tokens.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/rpupo63/wholspace-backend/errs"
)

// PasswordProvider is the sign-in provider of email and password accounts
const PasswordProvider = "password"

// Identity is the verified subject of an ID token
type Identity struct {
	UID            string
	Email          string
	DisplayName    string
	PhotoURL       string
	EmailVerified  bool
	SignInProvider string
}

type Claims struct {
	Email         string       `json:"email,omitempty"`
	EmailVerified bool         `json:"email_verified"`
	Name          string       `json:"name,omitempty"`
	Picture       string       `json:"picture,omitempty"`
	Provider      ProviderInfo `json:"firebase"`
	jwt.RegisteredClaims
}

type ProviderInfo struct {
	SignInProvider string `json:"sign_in_provider"`
}

type Verifier struct {
	key    []byte
	issuer string
	parser *jwt.Parser
}

// NewVerifier accepts HS256 tokens signed with key. A non-empty issuer must match the iss claim.
func NewVerifier(key, issuer string) *Verifier {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if issuer != "" {
		opts = append(opts, jwt.WithIssuer(issuer))
	}
	return &Verifier{
		key:    []byte(key),
		issuer: issuer,
		parser: jwt.NewParser(opts...),
	}
}

func (v *Verifier) Verify(token string) (Identity, error) {
	if token == "" {
		return Identity{}, errs.NewMissingTokenError()
	}

	var claims Claims
	_, err := v.parser.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		return v.key, nil
	})
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return Identity{}, errs.NewExpiredTokenError()
	case err != nil:
		return Identity{}, errs.NewInvalidTokenError(err)
	case claims.Subject == "":
		return Identity{}, errs.NewInvalidTokenError(jwt.ErrTokenInvalidClaims)
	}

	return Identity{
		UID:            claims.Subject,
		Email:          claims.Email,
		DisplayName:    claims.Name,
		PhotoURL:       claims.Picture,
		EmailVerified:  claims.EmailVerified,
		SignInProvider: claims.Provider.SignInProvider,
	}, nil
}

// Issue signs a token for id that expires after ttl. Used by development tooling and tests.
func (v *Verifier) Issue(id Identity, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Email:         id.Email,
		EmailVerified: id.EmailVerified,
		Name:          id.DisplayName,
		Picture:       id.PhotoURL,
		Provider:      ProviderInfo{SignInProvider: id.SignInProvider},
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.UID,
			Issuer:    v.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.key)
}
