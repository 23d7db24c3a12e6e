// Package gateway implements the API gateway: token validation, service
// discovery and request routing to the backend services.
package gateway

import (
	"strings"

	"prism/internal/auth"
	"prism/internal/consul"

	"github.com/gin-gonic/gin"
)

// SetupRouter configures and returns the gateway router.
func SetupRouter(consulClient *consul.Client, tokens *auth.TokenManager, sessions SessionChecker) *gin.Engine {
	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggingMiddleware())
	r.Use(CORSMiddleware())

	proxyHandler := NewProxyHandler(consulClient)

	r.GET("/health", proxyHandler.Health)

	// Auth endpoints are public; logout and device management need the
	// identity headers, so tokens are validated when present and the auth
	// service enforces where they are required.
	authGroup := r.Group("/auth")
	authGroup.Use(JWTAuthMiddleware(tokens, sessions, false))
	{
		authGroup.Any("", proxyHandler.ProxyRequest("auth-service"))
		authGroup.Any("/*path", proxyHandler.ProxyRequest("auth-service"))
	}

	api := r.Group("/api")
	api.Use(JWTAuthMiddleware(tokens, sessions, false))
	{
		// user routes fan out across the users, follow and posts services
		api.Any("/users", proxyHandler.ProxyWithPathRewrite("users-service", "/api"))
		api.Any("/users/*path", dispatchUserRoutes(proxyHandler))

		api.Any("/profile", proxyHandler.ProxyWithPathRewrite("users-service", "/api"))

		api.Any("/posts", proxyHandler.ProxyWithPathRewrite("posts-service", "/api"))
		api.Any("/posts/*path", dispatchPostRoutes(proxyHandler))

		api.Any("/comments/*path", proxyHandler.ProxyWithPathRewrite("comments-service", "/api"))

		api.Any("/follow-requests/*path", proxyHandler.ProxyWithPathRewrite("follow-service", "/api"))

		api.Any("/notifications", proxyHandler.ProxyWithPathRewrite("notifications-service", "/api"))
		api.Any("/notifications/*path", proxyHandler.ProxyWithPathRewrite("notifications-service", "/api"))

		api.Any("/files/*path", proxyHandler.ProxyWithPathRewrite("files-service", "/api"))
	}

	return r
}

// followSuffixes are the per-user subresources owned by the follow service.
var followSuffixes = map[string]bool{
	"follow":        true,
	"follow-status": true,
	"followers":     true,
	"following":     true,
	"follow-counts": true,
}

// dispatchUserRoutes routes /api/users/:user_id/... to the service that
// owns the subresource.
func dispatchUserRoutes(h *ProxyHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		// path is like /<user_id>/followers
		segments := strings.Split(strings.Trim(c.Param("path"), "/"), "/")

		service := "users-service"
		if len(segments) >= 2 {
			switch {
			case followSuffixes[segments[1]]:
				service = "follow-service"
			case segments[1] == "posts":
				service = "posts-service"
			}
		}

		h.proxyTo(c, service, "/api")
	}
}

// dispatchPostRoutes routes /api/posts/:id/... between the posts, likes
// and comments services.
func dispatchPostRoutes(h *ProxyHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		segments := strings.Split(strings.Trim(c.Param("path"), "/"), "/")

		service := "posts-service"
		if len(segments) >= 2 {
			switch segments[1] {
			case "like", "likes":
				service = "likes-service"
			case "comments":
				service = "comments-service"
			}
		}

		h.proxyTo(c, service, "/api")
	}
}
