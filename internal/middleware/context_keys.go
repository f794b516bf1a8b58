package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
)

const (
	userIDKey    = contextKey("userID")
	sessionIDKey = contextKey("sessionID")
)

// WithUserID returns a copy of ctx carrying the acting user's id.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// GetUserIDFromCtx returns the acting user's id from a standard context.
func GetUserIDFromCtx(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	userID, ok := ctx.Value(userIDKey).(string)
	return userID, ok && userID != ""
}

// GetUserIDFromContext retrieves the authenticated user ID from the Gin context.
// It returns the user ID and a boolean indicating if it was found.
func GetUserIDFromContext(c *gin.Context) (string, bool) {
	if userIDVal, exists := c.Get(string(userIDKey)); exists {
		userID, ok := userIDVal.(string)
		return userID, ok
	}
	return GetUserIDFromCtx(c.Request.Context())
}

// WithSessionID returns a copy of ctx carrying the import session id, used for audit records.
func WithSessionID(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, sessionIDKey, sessionID)
}

// GetSessionIDFromCtx returns the import session id, if any.
func GetSessionIDFromCtx(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(sessionIDKey).(string)
	return id
}
