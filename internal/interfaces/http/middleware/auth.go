package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/projectmgmt/backend/internal/infrastructure/auth"
	"github.com/projectmgmt/backend/internal/infrastructure/logger"
	"github.com/projectmgmt/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// Auth context keys
const (
	PrincipalKey  = "auth_principal"
	AuthHeaderKey = "Authorization"
	BearerPrefix  = "Bearer "
)

// Authenticate requires a valid bearer access token. A nil verifier (auth
// mode "none") lets every request through unauthenticated.
func Authenticate(verifier auth.Verifier, log *zap.Logger) gin.HandlerFunc {
	if verifier == nil {
		return func(c *gin.Context) { c.Next() }
	}
	if log == nil {
		log = zap.NewNop()
	}

	return func(c *gin.Context) {
		header := c.GetHeader(AuthHeaderKey)
		if header == "" {
			rejectAuth(c, log, auth.ErrMissingToken, "Missing authorization header")
			return
		}
		if !strings.HasPrefix(header, BearerPrefix) {
			rejectAuth(c, log, auth.ErrMissingToken, "Invalid authorization header format")
			return
		}
		token := strings.TrimSpace(strings.TrimPrefix(header, BearerPrefix))
		if token == "" {
			rejectAuth(c, log, auth.ErrMissingToken, "Missing token")
			return
		}

		principal, err := verifier.Verify(c.Request.Context(), token)
		if err != nil {
			rejectAuth(c, log, err, "Token validation failed")
			return
		}

		c.Set(PrincipalKey, principal)
		c.Set(logger.GinSubjectKey, principal.Subject)
		c.Request = c.Request.WithContext(logger.WithSubject(c.Request.Context(), principal.Subject))
		c.Next()
	}
}

func rejectAuth(c *gin.Context, log *zap.Logger, err error, reason string) {
	log.Warn("Authentication failed",
		zap.String("request_id", GetRequestID(c)),
		zap.String("path", c.Request.URL.Path),
		zap.String("reason", reason),
		zap.Error(err),
	)

	code, message := dto.ErrCodeUnauthorized, "Authentication required"
	switch {
	case errors.Is(err, auth.ErrJWKSUnavailable):
		code, message = dto.ErrCodeServiceUnavailable, "Token keys are temporarily unavailable"
	case errors.Is(err, auth.ErrExpiredToken):
		code, message = dto.ErrCodeTokenExpired, "Token has expired"
	case errors.Is(err, auth.ErrTokenNotYetValid):
		code, message = dto.ErrCodeTokenInvalid, "Token is not yet valid"
	case errors.Is(err, auth.ErrInvalidTokenType):
		code, message = dto.ErrCodeTokenInvalid, "Access token required"
	case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, auth.ErrInvalidIssuer),
		errors.Is(err, auth.ErrInvalidClient), errors.Is(err, auth.ErrUnknownSigningKey),
		errors.Is(err, auth.ErrInvalidClaims), errors.Is(err, auth.ErrMissingSubject):
		code, message = dto.ErrCodeTokenInvalid, "Invalid token"
	}

	if code == dto.ErrCodeUnauthorized || code == dto.ErrCodeTokenInvalid || code == dto.ErrCodeTokenExpired {
		c.Header("WWW-Authenticate", `Bearer realm="api"`)
	}
	c.AbortWithStatusJSON(dto.HTTPStatus(code), dto.NewErrorResponseWithRequestID(code, message, GetRequestID(c)))
}

// GetPrincipal returns the verified caller, or nil when auth is off
func GetPrincipal(c *gin.Context) *auth.Principal {
	if v, ok := c.Get(PrincipalKey); ok {
		if p, ok := v.(*auth.Principal); ok {
			return p
		}
	}
	return nil
}
