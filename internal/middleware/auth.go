package middleware

import (
	"errors"
	"strings"

	"auction_backend/internal/auth"
	"auction_backend/internal/logger"
	"auction_backend/internal/models"
	"auction_backend/pkg/apperrors"
	"auction_backend/pkg/contextkeys"

	"github.com/gin-gonic/gin"
)

// AuthMiddleware validates the bearer token and stores the caller's principal.
func AuthMiddleware(tokens *auth.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			apperrors.HandleError(c, apperrors.NewUnauthorizedError("Authorization header missing or invalid"))
			return
		}

		claims, err := tokens.Parse(strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer ")))
		if err != nil {
			msg := "Invalid token"
			if errors.Is(err, auth.ErrMissingToken) {
				msg = "Authorization header missing or invalid"
			}
			logger.CtxDebug(c.Request.Context(), "rejected bearer token", "error", err.Error())
			apperrors.HandleError(c, apperrors.NewUnauthorizedError(msg))
			return
		}

		principal := claims.Principal()
		c.Set(contextkeys.PrincipalKey, principal)
		c.Request = c.Request.WithContext(logger.WithUserID(c.Request.Context(), principal.UserID))
		c.Next()
	}
}

// RoleMiddleware admits callers holding one of roles.
func RoleMiddleware(roles ...models.UserRole) gin.HandlerFunc {
	roleSet := make(map[models.UserRole]bool, len(roles))
	for _, r := range roles {
		roleSet[r] = true
	}

	return func(c *gin.Context) {
		principal := GetPrincipal(c)
		if principal == nil {
			apperrors.HandleError(c, apperrors.NewUnauthorizedError("User not authenticated"))
			return
		}

		if !roleSet[principal.Role] {
			if len(roleSet) == 1 && roleSet[models.UserRoleCounty] {
				apperrors.HandleError(c, apperrors.ErrCountyRoleRequired())
				return
			}
			apperrors.HandleError(c, apperrors.NewForbiddenError("Access denied: insufficient role"))
			return
		}

		c.Next()
	}
}

// GetPrincipal returns the principal stored by AuthMiddleware, or nil.
func GetPrincipal(c *gin.Context) *auth.Principal {
	val, exists := c.Get(contextkeys.PrincipalKey)
	if !exists {
		return nil
	}
	principal, _ := val.(*auth.Principal)
	return principal
}
