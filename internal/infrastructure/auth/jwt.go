package auth

import (
	"errors"
	"time"

	"github.com/clubhub/backend/internal/domain/identity"
	"github.com/clubhub/backend/internal/infrastructure/config"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Common errors
var (
	ErrInvalidToken     = errors.New("invalid token")
	ErrExpiredToken     = errors.New("token has expired")
	ErrInvalidClaims    = errors.New("invalid token claims")
	ErrTokenNotYetValid = errors.New("token is not yet valid")
	ErrMissingUserID    = errors.New("missing uid in claims")
	ErrInvalidRole      = errors.New("invalid role claim")
)

// Claims represents the custom claims of an identity token
type Claims struct {
	jwt.RegisteredClaims
	UID           string `json:"uid"`
	Email         string `json:"email,omitempty"`
	Login         string `json:"login,omitempty"`
	Role          string `json:"role,omitempty"`
	ClubID        string `json:"clubId,omitempty"`
	PlatformAdmin bool   `json:"platformAdmin,omitempty"`
}

// Caller converts the claims into the identity passed to operations
func (c *Claims) Caller() *identity.Caller {
	return &identity.Caller{
		UID:           c.UID,
		Email:         c.Email,
		Login:         c.Login,
		Role:          identity.Role(c.Role),
		ClubID:        c.ClubID,
		PlatformAdmin: c.PlatformAdmin,
	}
}

// GetExpiresAtTime returns the token's expiration time as time.Time
func (c *Claims) GetExpiresAtTime() time.Time {
	if c.ExpiresAt != nil {
		return c.ExpiresAt.Time
	}
	return time.Time{}
}

// JWTService issues and verifies identity tokens
type JWTService struct {
	secret     []byte
	expiration time.Duration
	issuer     string
}

// NewJWTService creates a new JWT service
func NewJWTService(cfg config.JWTConfig) *JWTService {
	return &JWTService{
		secret:     []byte(cfg.Secret),
		expiration: cfg.TokenExpiration,
		issuer:     cfg.Issuer,
	}
}

// GenerateTokenInput contains input for token generation
type GenerateTokenInput struct {
	UID           string
	Email         string
	Login         string
	Role          identity.Role
	ClubID        string
	PlatformAdmin bool
}

// Token is a signed token and its expiry
type Token struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
	TokenType   string    `json:"token_type"` // Bearer
}

// GenerateToken signs a token for the given identity
func (s *JWTService) GenerateToken(input GenerateTokenInput) (*Token, error) {
	if input.UID == "" {
		return nil, ErrMissingUserID
	}
	if input.Role != "" && !input.Role.IsValid() {
		return nil, ErrInvalidRole
	}
	now := time.Now()
	expiresAt := now.Add(s.expiration)

	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Issuer:    s.issuer,
			Subject:   input.UID,
			Audience:  jwt.ClaimStrings{s.issuer},
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			NotBefore: jwt.NewNumericDate(now),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		UID:           input.UID,
		Email:         input.Email,
		Login:         input.Login,
		Role:          input.Role.String(),
		ClubID:        input.ClubID,
		PlatformAdmin: input.PlatformAdmin,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, err
	}
	return &Token{AccessToken: signed, ExpiresAt: expiresAt, TokenType: "Bearer"}, nil
}

// ValidateToken verifies the signature, lifetime and issuer of a token and
// returns its claims
func (s *JWTService) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.secret, nil
	}, jwt.WithIssuer(s.issuer))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		if errors.Is(err, jwt.ErrTokenNotValidYet) {
			return nil, ErrTokenNotYetValid
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidClaims
	}
	if claims.UID == "" {
		return nil, ErrMissingUserID
	}
	return claims, nil
}

// GetTokenExpiration returns the token lifetime
func (s *JWTService) GetTokenExpiration() time.Duration {
	return s.expiration
}
