package middleware

import (
	"net/http"
	"strings"

	"github.com/SscSPs/coop_backoffice/internal/utils"
	"github.com/gin-gonic/gin"
)

// pathsToSkip contains paths that should not be tracked by PostHog
var pathsToSkip = map[string]bool{
	"/health":                  true,
	"/api/v1/imports/template": true,
}

// PosthogMiddleware tracks successful state-changing API calls (uploads, postings, cancellations) with PostHog.
func PosthogMiddleware(posthogClient *utils.PosthogClientWrapper) gin.HandlerFunc {
	return func(c *gin.Context) {
		if posthogClient == nil || !posthogClient.IsInitialized() || pathsToSkip[c.Request.URL.Path] {
			c.Next()
			return
		}

		c.Next()

		if c.Request.Method == http.MethodGet || len(c.Errors) > 0 || c.Writer.Status() >= http.StatusBadRequest {
			return
		}

		userID, exists := GetUserIDFromContext(c)
		if !exists {
			return
		}

		// "/api/v1/imports/:sessionID/process" -> "coop_imports_process"
		eventName := EventNameForRoute(c.FullPath())
		if eventName == "" {
			return
		}

		props := map[string]any{
			"method":      c.Request.Method,
			"status_code": c.Writer.Status(),
			"request_id":  c.Writer.Header().Get(RequestIDHeader),
		}
		// Route params are ids; expose the ones dashboards group by under stable names.
		if sessionID := c.Param("sessionID"); sessionID != "" {
			props["session_id"] = sessionID
		}
		if transactionID := c.Param("transactionID"); transactionID != "" {
			props["transaction_id"] = transactionID
		}

		posthogClient.Enqueue(userID, eventName, props)
	}
}

// EventNameForRoute turns a gin route pattern into a PostHog event name. Path parameters and
// the api version prefix are dropped.
func EventNameForRoute(fullPath string) string {
	parts := []string{eventPrefix}
	for _, seg := range strings.Split(strings.Trim(fullPath, "/"), "/") {
		if seg == "" || seg == "api" || seg == "v1" || strings.HasPrefix(seg, ":") || strings.HasPrefix(seg, "*") {
			continue
		}
		parts = append(parts, seg)
	}
	if len(parts) == 1 {
		return ""
	}
	return strings.Join(parts, "_")
}

const eventPrefix = "coop"
