package middleware

import (
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/erp/backoffice/internal/infrastructure/config"
	"github.com/gin-gonic/gin"
)

// CORSConfig holds CORS middleware configuration
type CORSConfig struct {
	AllowOrigins     []string
	AllowMethods     []string
	AllowHeaders     []string
	ExposeHeaders    []string
	AllowCredentials bool
	MaxAge           time.Duration
}

// CORSConfigFrom builds the CORS configuration from the http config section.
// An empty origin list rejects every cross-origin request.
func CORSConfigFrom(cfg config.HTTPConfig) CORSConfig {
	return CORSConfig{
		AllowOrigins:     cfg.CORSAllowOrigins,
		AllowMethods:     cfg.CORSAllowMethods,
		AllowHeaders:     cfg.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
}

// CORS answers preflight requests and sets the Access-Control headers for
// allowed origins
func CORS(cfg CORSConfig) gin.HandlerFunc {
	wildcard := slices.Contains(cfg.AllowOrigins, "*")
	methods := strings.Join(cfg.AllowMethods, ", ")
	headers := strings.Join(cfg.AllowHeaders, ", ")
	expose := strings.Join(cfg.ExposeHeaders, ", ")
	maxAge := ""
	if cfg.MaxAge > 0 {
		maxAge = strconv.Itoa(int(cfg.MaxAge.Seconds()))
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		allowed := ""
		switch {
		case wildcard:
			allowed = "*"
		case origin != "" && slices.Contains(cfg.AllowOrigins, origin):
			allowed = origin
		}

		if allowed != "" {
			h := c.Writer.Header()
			h.Set("Access-Control-Allow-Origin", allowed)
			if allowed != "*" {
				h.Add("Vary", "Origin")
				if cfg.AllowCredentials {
					h.Set("Access-Control-Allow-Credentials", "true")
				}
			}
			h.Set("Access-Control-Allow-Methods", methods)
			h.Set("Access-Control-Allow-Headers", headers)
			if expose != "" {
				h.Set("Access-Control-Expose-Headers", expose)
			}
			if maxAge != "" {
				h.Set("Access-Control-Max-Age", maxAge)
			}
		}

		// preflight always ends here, with or without CORS headers
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// Secure sets conservative security headers on every response. The API
// serves JSON only, so the content security policy denies everything.
func Secure(hsts bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("X-Frame-Options", "DENY")
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		h.Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
		if hsts {
			h.Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}
		c.Next()
	}
}
