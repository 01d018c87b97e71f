package api

import (
	"os"

	"github.com/codegenhq/codegen/internal/completion"
	"github.com/codegenhq/codegen/internal/config"
	"github.com/codegenhq/codegen/internal/http/api/handlers"
	"github.com/codegenhq/codegen/internal/store"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Deps are the components the router orchestrates. Generator is nil when
// the completion backend is not configured; JWT decides whether protected
// routes require a bearer token. Both are fixed at startup.
type Deps struct {
	DB          *gorm.DB
	Store       *store.Store
	Generator   completion.Generator
	JWT         config.JWTConfig
	AdminSeed   config.AdminSeed
	FrontendDir string
}

// RegisterRoutes wires all endpoints onto the engine.
func RegisterRoutes(r *gin.Engine, deps Deps) {
	if r == nil || deps.Store == nil {
		return
	}

	siteHandler := handlers.NewSiteHandler(deps.FrontendDir, deps.Generator != nil, deps.JWT.Enabled())
	r.GET("/", siteHandler.Root)
	r.GET("/debug", siteHandler.Debug)

	healthHandler := handlers.NewHealthHandler(deps.DB)
	r.GET("/healthz", healthHandler.Healthz)

	if info, errStat := os.Stat(deps.FrontendDir); errStat == nil && info.IsDir() {
		r.Static("/frontend", deps.FrontendDir)
	} else {
		log.WithField("dir", deps.FrontendDir).Warn("frontend directory not found")
	}

	authHandler := handlers.NewAuthHandler(deps.Store, deps.JWT, deps.AdminSeed)
	authGroup := r.Group("/auth")
	authGroup.POST("/register", authHandler.Register)
	authGroup.POST("/token", authHandler.Login)

	requireToken := authMiddleware(deps.Store, deps.JWT, deps.AdminSeed)

	generateHandler := handlers.NewGenerateHandler(deps.Store, deps.Generator)
	if deps.JWT.Enabled() {
		r.POST("/generate", requireToken, generateHandler.Generate)
	} else {
		// Without a signing secret there is nothing to validate; the
		// endpoint stays open and nothing is persisted.
		r.POST("/generate", generateHandler.Generate)
	}

	chatHandler := handlers.NewChatHandler(deps.Store)
	chatGroup := r.Group("/chats")
	chatGroup.Use(requireToken)
	chatGroup.GET("", chatHandler.List)
	chatGroup.GET("/:id/messages", chatHandler.Messages)

	adminHandler := handlers.NewAdminHandler(deps.Store)
	adminGroup := r.Group("/admin")
	adminGroup.Use(requireToken)
	adminGroup.Use(requireAdmin())
	adminGroup.GET("/users", adminHandler.Users)
	adminGroup.GET("/chats", adminHandler.Chats)
}
