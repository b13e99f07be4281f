package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/derkdev976-web/davel-library-sub001/internal/config"
	"github.com/derkdev976-web/davel-library-sub001/internal/entities"
)

// Context keys for user data
const (
	ContextKeyUserID = "auth_user_id"
	ContextKeyName   = "auth_name"
	ContextKeyRole   = "auth_role"
)

// DefaultUserID is used when authentication is disabled
const DefaultUserID = uint(0)

// Middleware handles authentication for HTTP requests.
type Middleware struct {
	service        *Service
	sessionManager *SessionManager
	config         config.Auth
	publicPaths    map[string]bool
}

// NewMiddleware creates a new authentication middleware.
func NewMiddleware(service *Service, sessionManager *SessionManager, cfg config.Auth) *Middleware {
	publicPaths := map[string]bool{
		"/health":           true,
		"/ping":             true,
		"/setup":            true,
		"/api/auth/login":   true,
		"/api/applications": true, // Prospective members are not signed in
		"/api/news":         true,
		"/favicon.ico":      true,
	}

	return &Middleware{
		service:        service,
		sessionManager: sessionManager,
		config:         cfg,
		publicPaths:    publicPaths,
	}
}

// Handler returns a Gin middleware handler that authenticates requests.
func (m *Middleware) Handler() gin.HandlerFunc {
	// If auth is disabled, inject a default admin identity
	if m.config.Mode == config.AuthModeNone {
		return m.noAuthHandler()
	}

	return m.authHandler()
}

// noAuthHandler injects a default identity for all requests when auth is
// disabled. Development only.
func (m *Middleware) noAuthHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(ContextKeyUserID, DefaultUserID)
		c.Set(ContextKeyRole, entities.UserRoleAdmin)
		c.Next()
	}
}

// authHandler handles authentication when auth is enabled.
func (m *Middleware) authHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Public paths and published news are reachable without a session
		if m.isPublicPath(c.Request.URL.Path, c.Request.Method) {
			c.Next()
			return
		}

		if user := m.trySessionAuth(c); user != nil {
			c.Set(ContextKeyUserID, user.ID)
			c.Set(ContextKeyName, user.Name)
			c.Set(ContextKeyRole, user.Role)
			c.Next()
			return
		}

		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error": "authentication required",
		})
	}
}

// trySessionAuth attempts to authenticate using the session cookie.
func (m *Middleware) trySessionAuth(c *gin.Context) *entities.User {
	if m.sessionManager == nil {
		return nil
	}

	userID := m.sessionManager.GetUserID(c.Request)
	if userID == 0 {
		return nil
	}

	user, err := m.service.GetUserByID(userID)
	if err != nil {
		return nil
	}
	return user
}

// isPublicPath checks if a path should be accessible without authentication.
// News listing is public for reads only; everything else on the list is
// public regardless of method.
func (m *Middleware) isPublicPath(path, method string) bool {
	if path == "/api/news" || strings.HasPrefix(path, "/api/news/") {
		return method == http.MethodGet
	}
	if path == "/api/applications" {
		return method == http.MethodPost
	}
	return m.publicPaths[path]
}

// GetUserID extracts the authenticated user's ID from the Gin context.
func GetUserID(c *gin.Context) uint {
	if id, exists := c.Get(ContextKeyUserID); exists {
		if userID, ok := id.(uint); ok {
			return userID
		}
	}
	return DefaultUserID
}

// GetUserRole extracts the authenticated user's role from the Gin context.
func GetUserRole(c *gin.Context) entities.UserRole {
	if role, exists := c.Get(ContextKeyRole); exists {
		if r, ok := role.(entities.UserRole); ok {
			return r
		}
	}
	return ""
}

// RequireRole returns a middleware that rejects requests whose authenticated
// role is not in the allowed set. Rejections use 401 with a JSON error
// envelope.
func RequireRole(roles ...entities.UserRole) gin.HandlerFunc {
	allowed := make(map[entities.UserRole]bool, len(roles))
	for _, role := range roles {
		allowed[role] = true
	}

	return func(c *gin.Context) {
		if !allowed[GetUserRole(c)] {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "insufficient permissions",
			})
			return
		}
		c.Next()
	}
}

// RequireStaff is shorthand for RequireRole(LIBRARIAN, ADMIN).
func RequireStaff() gin.HandlerFunc {
	return RequireRole(entities.UserRoleLibrarian, entities.UserRoleAdmin)
}
