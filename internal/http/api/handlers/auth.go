package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/codegenhq/codegen/internal/config"
	"github.com/codegenhq/codegen/internal/models"
	"github.com/codegenhq/codegen/internal/security"
	"github.com/codegenhq/codegen/internal/store"
	"github.com/gin-gonic/gin"
)

// AuthHandler serves registration and token issuance.
type AuthHandler struct {
	store  *store.Store
	jwtCfg config.JWTConfig
	seed   config.AdminSeed
}

// NewAuthHandler constructs an AuthHandler.
func NewAuthHandler(st *store.Store, jwtCfg config.JWTConfig, seed config.AdminSeed) *AuthHandler {
	return &AuthHandler{store: st, jwtCfg: jwtCfg, seed: seed}
}

// registerRequest defines the request body for account creation.
type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register creates a new non-admin account.
func (h *AuthHandler) Register(c *gin.Context) {
	var body registerRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	email := strings.TrimSpace(body.Email)
	if email == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing email"})
		return
	}
	if body.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing password"})
		return
	}

	user, errCreate := h.store.CreateUser(c.Request.Context(), email, body.Password, false)
	if errCreate != nil {
		if errors.Is(errCreate, store.ErrDuplicateEmail) {
			c.JSON(http.StatusConflict, gin.H{"error": "email already registered"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create user failed"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"id":       user.ID,
		"email":    user.Email,
		"is_admin": user.IsAdmin,
	})
}

// loginRequest defines the request body for token issuance.
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login issues an access token. Database credentials are checked first,
// then the environment-seeded admin credentials as a fallback.
func (h *AuthHandler) Login(c *gin.Context) {
	if !h.jwtCfg.Enabled() {
		c.JSON(http.StatusNotImplemented, gin.H{"error": "auth not configured on server"})
		return
	}

	var body loginRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	email := strings.TrimSpace(body.Email)

	user, errAuth := h.store.Authenticate(c.Request.Context(), email, body.Password)
	if errAuth != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "authenticate failed"})
		return
	}
	if user != nil {
		h.issueToken(c, user.Email, roleFor(user))
		return
	}

	if h.seed.Enabled() && email == h.seed.Email && body.Password == h.seed.Password {
		h.issueToken(c, h.seed.Email, "admin")
		return
	}

	c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
}

// issueToken signs and writes the token response.
func (h *AuthHandler) issueToken(c *gin.Context, subject, role string) {
	token, errSign := security.IssueToken(h.jwtCfg.Secret, subject, h.jwtCfg.Expiry)
	if errSign != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "issue token failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"access_token": token,
		"token_type":   "bearer",
		"role":         role,
	})
}

// roleFor maps a stored user to its token role.
func roleFor(user *models.User) string {
	if user.IsAdmin {
		return "admin"
	}
	return "user"
}
