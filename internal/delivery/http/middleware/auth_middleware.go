package middleware

import (
	"errors"
	"strings"

	"linklens/internal/pkg/jwt"

	"github.com/gofiber/fiber/v3"
)

const (
	// CtxSubjectKey holds the verified token subject; CtxClaimsKey the full
	// claim set handlers hand to provisioning.
	CtxSubjectKey = "subject_id"
	CtxClaimsKey  = "identity_claims"
)

type AuthMiddleware struct {
	jwt jwt.Service
}

func NewAuthMiddleware(jwtSvc jwt.Service) *AuthMiddleware {
	return &AuthMiddleware{jwt: jwtSvc}
}

func (m *AuthMiddleware) Middleware() fiber.Handler {
	return func(c fiber.Ctx) error {
		token, ok := bearerTokenFromHeader(c.Get("Authorization"))
		if !ok {
			return NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, nil)
		}

		claims, err := m.jwt.ValidateToken(token)
		if err != nil {
			if errors.Is(err, jwt.ErrTokenExpired) {
				return NewAppError(fiber.StatusUnauthorized, "Token expired", nil, err)
			}
			return NewAppError(fiber.StatusUnauthorized, "Invalid token", nil, err)
		}

		if claims.TokenType != jwt.TokenTypeAccess || m.jwt.IsRefreshToken(claims) {
			return NewAppError(fiber.StatusUnauthorized, "Invalid token", nil, nil)
		}
		if strings.TrimSpace(claims.Subject) == "" {
			return NewAppError(fiber.StatusUnauthorized, "Invalid token", nil, nil)
		}

		c.Locals(CtxSubjectKey, claims.Subject)
		c.Locals(CtxClaimsKey, claims)

		return c.Next()
	}
}

// ClaimsFromCtx returns the verified claims the auth middleware stored.
func ClaimsFromCtx(c fiber.Ctx) (jwt.Claims, bool) {
	claims, ok := c.Locals(CtxClaimsKey).(jwt.Claims)
	return claims, ok
}

func bearerTokenFromHeader(authHeader string) (string, bool) {
	authHeader = strings.TrimSpace(authHeader)
	if authHeader == "" {
		return "", false
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 {
		return "", false
	}
	if !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}

	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", false
	}

	return token, true
}
