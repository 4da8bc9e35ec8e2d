package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/clubhub/backend/internal/domain/identity"
	"github.com/clubhub/backend/internal/domain/shared"
	"github.com/clubhub/backend/internal/infrastructure/auth"
	"github.com/clubhub/backend/internal/infrastructure/logger"
	"github.com/clubhub/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// JWT context keys
const (
	JWTClaimsKey  = "jwt_claims"
	CallerKey     = "caller"
	AuthHeaderKey = "Authorization"
	BearerPrefix  = "Bearer "
)

// JWTMiddlewareConfig holds configuration for JWT middleware
type JWTMiddlewareConfig struct {
	// JWTService is required for token validation
	JWTService *auth.JWTService
	// SkipPaths are paths that don't require authentication
	SkipPaths []string
	// Logger for middleware logging
	Logger *zap.Logger
}

// DefaultJWTConfig returns default JWT middleware configuration
func DefaultJWTConfig(jwtService *auth.JWTService) JWTMiddlewareConfig {
	return JWTMiddlewareConfig{
		JWTService: jwtService,
		SkipPaths:  []string{"/health", "/api/v1/health"},
	}
}

// JWTAuthMiddleware creates JWT authentication middleware
func JWTAuthMiddleware(jwtService *auth.JWTService) gin.HandlerFunc {
	return JWTAuthMiddlewareWithConfig(DefaultJWTConfig(jwtService))
}

// JWTAuthMiddlewareWithConfig validates the bearer token and stores the
// resulting caller in the gin context. Requests without a valid token are
// answered with 401.
func JWTAuthMiddlewareWithConfig(cfg JWTMiddlewareConfig) gin.HandlerFunc {
	skip := make(map[string]struct{}, len(cfg.SkipPaths))
	for _, p := range cfg.SkipPaths {
		skip[p] = struct{}{}
	}

	return func(c *gin.Context) {
		if _, ok := skip[c.Request.URL.Path]; ok {
			c.Next()
			return
		}

		authHeader := c.GetHeader(AuthHeaderKey)
		if authHeader == "" {
			handleAuthError(c, cfg, nil)
			return
		}
		if !strings.HasPrefix(authHeader, BearerPrefix) {
			handleAuthError(c, cfg, auth.ErrInvalidToken)
			return
		}
		tokenString := strings.TrimSpace(strings.TrimPrefix(authHeader, BearerPrefix))
		if tokenString == "" {
			handleAuthError(c, cfg, nil)
			return
		}

		claims, err := cfg.JWTService.ValidateToken(tokenString)
		if err != nil {
			handleAuthError(c, cfg, err)
			return
		}

		caller := claims.Caller()
		c.Set(JWTClaimsKey, claims)
		c.Set(CallerKey, caller)

		ctx := logger.WithUserID(c.Request.Context(), caller.UID)
		if clubID := c.Param("clubId"); clubID != "" {
			ctx = logger.WithClubID(ctx, clubID)
		}
		c.Request = c.Request.WithContext(ctx)

		if cfg.Logger != nil {
			cfg.Logger.Debug("JWT authentication successful",
				zap.String("uid", caller.UID),
				zap.String("role", caller.Role.String()),
				zap.String("club_id", caller.ClubID),
			)
		}

		c.Next()
	}
}

// handleAuthError answers 401. A nil err means no credentials were sent.
func handleAuthError(c *gin.Context, cfg JWTMiddlewareConfig, err error) {
	message := shared.ErrUnauthenticated.Message
	switch {
	case err == nil:
	case errors.Is(err, auth.ErrExpiredToken):
		message = "Token expirado"
	case errors.Is(err, auth.ErrTokenNotYetValid):
		message = "Token ainda não é válido"
	default:
		message = "Token inválido"
	}

	if cfg.Logger != nil && err != nil {
		cfg.Logger.Warn("JWT authentication failed",
			zap.Error(err),
			zap.String("path", c.Request.URL.Path),
		)
	}

	c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponseWithRequestID(
		shared.CodeUnauthenticated,
		message,
		GetRequestID(c),
	))
}

// GetJWTClaims retrieves JWT claims from gin.Context
func GetJWTClaims(c *gin.Context) *auth.Claims {
	if claims, exists := c.Get(JWTClaimsKey); exists {
		if jwtClaims, ok := claims.(*auth.Claims); ok {
			return jwtClaims
		}
	}
	return nil
}

// GetCaller returns the authenticated caller, or nil when the request carried
// no valid token. Operations reject a nil caller as unauthenticated.
func GetCaller(c *gin.Context) *identity.Caller {
	if v, exists := c.Get(CallerKey); exists {
		if caller, ok := v.(*identity.Caller); ok {
			return caller
		}
	}
	return nil
}
