package middleware

import (
	"log/slog"
	"slices"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/yukikurage/taker-api/internal/constants"
	apierrors "github.com/yukikurage/taker-api/internal/errors"
	"github.com/yukikurage/taker-api/internal/models"
	"github.com/yukikurage/taker-api/internal/services"
)

// RequireAuth checks if the user is authenticated via session
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		userID := session.Get(constants.ContextKeyUserID)

		if userID == nil {
			apierrors.Unauthorized(c, "")
			return
		}

		// Store user ID in context for easy access in handlers
		c.Set(constants.ContextKeyUserID, userID)
		c.Next()
	}
}

// GetUserID retrieves the current user ID from context
func GetUserID(c *gin.Context) (uint64, bool) {
	userID, exists := c.Get(constants.ContextKeyUserID)
	if !exists {
		return 0, false
	}

	switch v := userID.(type) {
	case uint64:
		return v, true
	case uint:
		return uint64(v), true
	case int:
		if v < 0 {
			return 0, false
		}
		return uint64(v), true
	case int64:
		if v < 0 {
			return 0, false
		}
		return uint64(v), true
	default:
		return 0, false
	}
}

// LoadActor resolves the session user and stores it in the context.
// A session pointing at a removed user is cleared and rejected.
func LoadActor(access *services.AccessService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := GetUserID(c)
		if !exists {
			apierrors.Unauthorized(c, "")
			return
		}

		actor, err := access.ResolveActor(userID)
		if err != nil {
			slog.Error("Failed to resolve actor", "user_id", userID, "error", err)
			apierrors.InternalError(c, "")
			return
		}
		if actor == nil {
			session := sessions.Default(c)
			session.Clear()
			if err := session.Save(); err != nil {
				slog.Warn("Failed to clear stale session", "user_id", userID, "error", err)
			}
			apierrors.Unauthorized(c, "User no longer exists")
			return
		}

		c.Set(constants.ContextKeyActor, actor)
		c.Next()
	}
}

// GetActor retrieves the user loaded by LoadActor
func GetActor(c *gin.Context) (*models.User, bool) {
	value, exists := c.Get(constants.ContextKeyActor)
	if !exists {
		return nil, false
	}
	actor, ok := value.(*models.User)
	return actor, ok && actor != nil
}

// RequireRole lets the request through only when the actor holds one of roles
func RequireRole(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := GetActor(c)
		if !ok {
			apierrors.Unauthorized(c, "")
			return
		}
		if !slices.Contains(roles, actor.Role) {
			apierrors.Forbidden(c, "Insufficient role")
			return
		}
		c.Next()
	}
}
