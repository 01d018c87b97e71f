package handlers

import (
	"net/http"
	"os"
	"path/filepath"

	"github.com/codegenhq/codegen/internal/db"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// SiteHandler serves the landing page and the diagnostic snapshot.
type SiteHandler struct {
	frontendDir       string
	completionEnabled bool
	authEnabled       bool
}

// NewSiteHandler constructs a SiteHandler. The availability flags are fixed
// at startup.
func NewSiteHandler(frontendDir string, completionEnabled, authEnabled bool) *SiteHandler {
	return &SiteHandler{
		frontendDir:       frontendDir,
		completionEnabled: completionEnabled,
		authEnabled:       authEnabled,
	}
}

// Root serves the frontend index page, falling back to a JSON status object
// when the file is missing.
func (h *SiteHandler) Root(c *gin.Context) {
	indexPath := filepath.Join(h.frontendDir, "index.html")
	if info, errStat := os.Stat(indexPath); errStat == nil && !info.IsDir() {
		c.File(indexPath)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "running", "message": "index.html not found"})
}

// Debug reports a diagnostic snapshot of what was wired at startup.
func (h *SiteHandler) Debug(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"frontend_dir":              h.frontendDir,
		"have_run_interaction":      h.completionEnabled,
		"auth_module":               h.authEnabled,
		"crud_module":               true,
		"require_auth_for_generate": h.authEnabled,
	})
}

// HealthHandler serves liveness checks.
type HealthHandler struct {
	db *gorm.DB
}

// NewHealthHandler constructs a HealthHandler.
func NewHealthHandler(conn *gorm.DB) *HealthHandler {
	return &HealthHandler{db: conn}
}

// Healthz pings the database and reports status.
func (h *HealthHandler) Healthz(c *gin.Context) {
	if errPing := db.Ping(h.db); errPing != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
