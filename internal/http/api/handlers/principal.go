package handlers

import (
	"github.com/codegenhq/codegen/internal/models"
	"github.com/gin-gonic/gin"
)

// PrincipalKind tags the two authenticated identity variants.
type PrincipalKind int

// PrincipalKind constants.
const (
	// PrincipalUser is an account persisted in the database.
	PrincipalUser PrincipalKind = iota + 1
	// PrincipalEnvAdmin is the environment-seeded admin with no database row.
	PrincipalEnvAdmin
)

// Principal is an authenticated caller. The Kind tag keeps persisted users
// and the env-seeded admin from being conflated: User is set only for
// PrincipalUser.
type Principal struct {
	Kind  PrincipalKind
	Email string
	User  *models.User
}

// IsAdmin reports whether the principal has admin rights.
func (p Principal) IsAdmin() bool {
	switch p.Kind {
	case PrincipalEnvAdmin:
		return true
	case PrincipalUser:
		return p.User != nil && p.User.IsAdmin
	}
	return false
}

// principalContextKey is the gin context key holding the Principal.
const principalContextKey = "principal"

// SetPrincipal stores the authenticated principal on the request context.
func SetPrincipal(c *gin.Context, p Principal) {
	c.Set(principalContextKey, p)
}

// CurrentPrincipal returns the principal set by the auth middleware.
func CurrentPrincipal(c *gin.Context) (Principal, bool) {
	value, exists := c.Get(principalContextKey)
	if !exists {
		return Principal{}, false
	}
	principal, ok := value.(Principal)
	return principal, ok
}
