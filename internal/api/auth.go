package api

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"TourneySync/internal/config"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// CronAuth bearer-token guard for the trigger routes. Outside development a
// missing secret is a configuration error and nothing runs.
func CronAuth(server config.ServerConfig, auth config.AuthConfig, logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if server.IsDevelopment() {
			c.Next()
			return
		}
		if auth.CronSecret == "" {
			logger.Error("CRON_SECRET is not configured, refusing trigger")
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error":   "cron secret not configured",
			})
			return
		}

		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || subtle.ConstantTimeCompare([]byte(strings.TrimSpace(token)), []byte(auth.CronSecret)) != 1 {
			logger.WithField("client_ip", c.ClientIP()).Warn("unauthorized trigger request")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error":   "unauthorized",
			})
			return
		}
		c.Next()
	}
}
