package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/codegenhq/codegen/internal/config"
	"github.com/codegenhq/codegen/internal/http/api/handlers"
	"github.com/codegenhq/codegen/internal/security"
	"github.com/codegenhq/codegen/internal/store"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// RequestLogger logs one line per request with method, path, status, and
// latency.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.WithFields(log.Fields{
			"method":  c.Request.Method,
			"path":    c.Request.URL.Path,
			"status":  c.Writer.Status(),
			"latency": time.Since(start).String(),
		}).Info("request")
	}
}

// bearerToken extracts the Bearer credential from the Authorization header.
func bearerToken(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return "", false
	}
	token := strings.TrimPrefix(authHeader, "Bearer ")
	if token == authHeader {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// authMiddleware validates the bearer token and resolves the principal. A
// valid token whose subject matches neither a stored user nor the seeded
// admin email is rejected.
func authMiddleware(st *store.Store, jwtCfg config.JWTConfig, seed config.AdminSeed) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !jwtCfg.Enabled() {
			c.AbortWithStatusJSON(http.StatusNotImplemented, gin.H{"error": "auth not configured on server"})
			return
		}

		token, ok := bearerToken(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}

		claims, errParse := security.ParseToken(jwtCfg.Secret, token)
		if errParse != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		user, errFind := st.FindUserByEmail(c.Request.Context(), claims.Subject)
		if errFind != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "lookup user failed"})
			return
		}
		if user != nil {
			handlers.SetPrincipal(c, handlers.Principal{Kind: handlers.PrincipalUser, Email: user.Email, User: user})
			c.Next()
			return
		}
		if seed.Enabled() && claims.Subject == seed.Email {
			handlers.SetPrincipal(c, handlers.Principal{Kind: handlers.PrincipalEnvAdmin, Email: seed.Email})
			c.Next()
			return
		}
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
	}
}

// requireAdmin rejects principals without admin rights.
func requireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := handlers.CurrentPrincipal(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
			return
		}
		if !principal.IsAdmin() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin only"})
			return
		}
		c.Next()
	}
}
