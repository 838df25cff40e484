// Package jwt issues and checks the HS256 tokens of the Concoro API.
// Access and refresh tokens are signed with different secrets and carry
// the same issuer and audience.
package jwt

import (
	"errors"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"

	Issuer   = "concoro"
	Audience = "concoro-api"

	clockSkew = 30 * time.Second
)

var (
	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("token invalid")
)

type Claims struct {
	UserID    uuid.UUID `json:"uid"`
	Email     string    `json:"email,omitempty"`
	TokenType string    `json:"typ"`

	jwtlib.RegisteredClaims
}

type Service interface {
	GenerateAccessToken(userID uuid.UUID, email string) (string, error)
	GenerateRefreshToken(userID uuid.UUID) (string, error)
	ValidateToken(tokenString string) (Claims, error)
	IsRefreshToken(claims Claims) bool
}

type HMACService struct {
	secrets map[string][]byte
	ttl     map[string]time.Duration
	now     func() time.Time
}

func NewHMACService(accessSecret, refreshSecret string, accessExpiresIn, refreshExpiresIn time.Duration) *HMACService {
	return &HMACService{
		secrets: map[string][]byte{
			TokenTypeAccess:  []byte(accessSecret),
			TokenTypeRefresh: []byte(refreshSecret),
		},
		ttl: map[string]time.Duration{
			TokenTypeAccess:  accessExpiresIn,
			TokenTypeRefresh: refreshExpiresIn,
		},
		now: time.Now,
	}
}

func (s *HMACService) GenerateAccessToken(userID uuid.UUID, email string) (string, error) {
	return s.generate(TokenTypeAccess, userID, email)
}

func (s *HMACService) GenerateRefreshToken(userID uuid.UUID) (string, error) {
	return s.generate(TokenTypeRefresh, userID, "")
}

// ValidateToken accepts either token type. Callers check TokenType.
func (s *HMACService) ValidateToken(tokenString string) (Claims, error) {
	expired := false
	for _, typ := range []string{TokenTypeAccess, TokenTypeRefresh} {
		c, err := s.parse(tokenString, typ)
		if err == nil {
			return c, nil
		}
		if errors.Is(err, ErrTokenExpired) {
			expired = true
		}
	}
	if expired {
		return Claims{}, ErrTokenExpired
	}
	return Claims{}, ErrTokenInvalid
}

func (s *HMACService) IsRefreshToken(claims Claims) bool {
	return claims.TokenType == TokenTypeRefresh
}

func (s *HMACService) generate(tokenType string, userID uuid.UUID, email string) (string, error) {
	secret, ttl := s.secrets[tokenType], s.ttl[tokenType]
	if len(secret) == 0 || ttl <= 0 || userID == uuid.Nil {
		return "", ErrTokenInvalid
	}

	now := s.now().UTC()
	c := Claims{
		UserID:    userID,
		Email:     email,
		TokenType: tokenType,
		RegisteredClaims: jwtlib.RegisteredClaims{
			Issuer:    Issuer,
			Audience:  jwtlib.ClaimStrings{Audience},
			Subject:   userID.String(),
			ID:        uuid.NewString(),
			IssuedAt:  jwtlib.NewNumericDate(now),
			ExpiresAt: jwtlib.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, c).SignedString(secret)
}

// parse checks the token against the secret of tokenType and requires the
// embedded type to match it.
func (s *HMACService) parse(tokenString, tokenType string) (Claims, error) {
	secret := s.secrets[tokenType]
	if len(secret) == 0 {
		return Claims{}, ErrTokenInvalid
	}
	p := jwtlib.NewParser(
		jwtlib.WithValidMethods([]string{jwtlib.SigningMethodHS256.Alg()}),
		jwtlib.WithIssuer(Issuer),
		jwtlib.WithAudience(Audience),
		jwtlib.WithExpirationRequired(),
		jwtlib.WithLeeway(clockSkew),
		jwtlib.WithTimeFunc(s.now),
	)

	var c Claims
	tok, err := p.ParseWithClaims(tokenString, &c, func(*jwtlib.Token) (any, error) {
		return secret, nil
	})
	if err != nil {
		if errors.Is(err, jwtlib.ErrTokenExpired) {
			return Claims{}, ErrTokenExpired
		}
		return Claims{}, ErrTokenInvalid
	}
	if tok == nil || !tok.Valid || c.TokenType != tokenType || c.UserID == uuid.Nil {
		return Claims{}, ErrTokenInvalid
	}
	return c, nil
}
