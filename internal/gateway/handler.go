package gateway

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httputil"
	"net/url"

	"prism/internal/consul"

	"github.com/gin-gonic/gin"
)

// ProxyHandler handles reverse proxy requests to backend services.
type ProxyHandler struct {
	discovery consul.ServiceDiscovery
}

// NewProxyHandler creates a proxy handler.
func NewProxyHandler(discovery consul.ServiceDiscovery) *ProxyHandler {
	return &ProxyHandler{discovery: discovery}
}

func (h *ProxyHandler) proxyTo(c *gin.Context, serviceName, stripPrefix string) {
	instance, err := h.discovery.DiscoverOne(serviceName)
	if err != nil {
		slog.Warn("failed to discover service",
			"service", serviceName,
			"error", err,
			"request_id", c.GetString("request_id"))
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"detail": fmt.Sprintf("service %s unavailable", serviceName),
		})
		return
	}

	target := fmt.Sprintf("http://%s:%d", instance.Address, instance.Port)
	targetURL, err := url.Parse(target)
	if err != nil {
		slog.Error("failed to parse target URL", "target", target, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Internal server error"})
		return
	}

	c.Set("upstream_service", serviceName)

	proxy := httputil.NewSingleHostReverseProxy(targetURL)

	proxy.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		slog.Error("proxy error", "service", serviceName, "error", err)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte(`{"detail":"bad gateway"}`))
	}

	originalDirector := proxy.Director
	proxy.Director = func(req *http.Request) {
		originalDirector(req)
		req.URL.Scheme = targetURL.Scheme
		req.URL.Host = targetURL.Host
		req.Host = targetURL.Host

		if stripPrefix != "" && len(req.URL.Path) >= len(stripPrefix) {
			req.URL.Path = req.URL.Path[len(stripPrefix):]
			if req.URL.Path == "" {
				req.URL.Path = "/"
			}
		}
	}

	proxy.ServeHTTP(c.Writer, c.Request)
}

// ProxyRequest creates a handler that proxies requests to the named service.
func (h *ProxyHandler) ProxyRequest(serviceName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		h.proxyTo(c, serviceName, "")
	}
}

// ProxyWithPathRewrite proxies requests after stripping a path prefix,
// e.g. /api/posts/1 -> /posts/1 on the posts service.
func (h *ProxyHandler) ProxyWithPathRewrite(serviceName, stripPrefix string) gin.HandlerFunc {
	return func(c *gin.Context) {
		h.proxyTo(c, serviceName, stripPrefix)
	}
}

// Health is the gateway health check handler.
func (h *ProxyHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "api-gateway",
	})
}
