package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestNewRouter(t *testing.T) {
	r := NewRouter(gin.New())
	assert.Equal(t, "v1", r.apiVersion)
	assert.Empty(t, r.registrars)

	r = NewRouter(gin.New(), WithAPIVersion("v2"))
	assert.Equal(t, "v2", r.apiVersion)
}

func TestRouterSetup(t *testing.T) {
	engine := gin.New()
	pong := func(c *gin.Context) { c.String(http.StatusOK, "pong") }

	routes := NewRouter(engine).
		Register(NewDomainGroup("system", "/system").GET("/ping", pong)).
		Register(
			NewDomainGroup("settings", "/settings").GET("", pong).GET("/:key", pong),
		).
		Setup()

	assert.Equal(t, []Route{
		{Group: "system", Method: http.MethodGet, Path: "/api/v1/system/ping"},
		{Group: "settings", Method: http.MethodGet, Path: "/api/v1/settings"},
		{Group: "settings", Method: http.MethodGet, Path: "/api/v1/settings/:key"},
	}, routes)

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/system/ping", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pong", w.Body.String())
}

func TestDomainGroup(t *testing.T) {
	reply := func(body string) gin.HandlerFunc {
		return func(c *gin.Context) { c.String(http.StatusOK, body) }
	}

	t.Run("registers every method", func(t *testing.T) {
		g := NewDomainGroup("settings", "/settings").
			GET("/:key", reply("get")).
			POST("", reply("post")).
			PUT("/:key", reply("put")).
			PATCH("/:key", reply("patch")).
			DELETE("/:key", reply("delete")).
			Handle(http.MethodHead, "/:key", reply(""))
		assert.Equal(t, "settings", g.Name())

		engine := gin.New()
		routes := g.RegisterRoutes(engine.Group("/api"))
		assert.Len(t, routes, 6)

		tests := []struct {
			method string
			path   string
			want   string
		}{
			{http.MethodGet, "/api/settings/app_name", "get"},
			{http.MethodPost, "/api/settings", "post"},
			{http.MethodPut, "/api/settings/app_name", "put"},
			{http.MethodPatch, "/api/settings/app_name", "patch"},
			{http.MethodDelete, "/api/settings/app_name", "delete"},
		}
		for _, tt := range tests {
			t.Run(tt.method, func(t *testing.T) {
				w := httptest.NewRecorder()
				engine.ServeHTTP(w, httptest.NewRequest(tt.method, tt.path, nil))
				assert.Equal(t, http.StatusOK, w.Code)
				assert.Equal(t, tt.want, w.Body.String())
			})
		}

		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodHead, "/api/settings/app_name", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("group middleware runs first", func(t *testing.T) {
		var order []string
		g := NewDomainGroup("documents", "/documents").
			Use(func(c *gin.Context) {
				order = append(order, "middleware")
				c.Next()
			}).
			POST("/totals", func(c *gin.Context) {
				order = append(order, "handler")
				c.Status(http.StatusOK)
			})

		engine := gin.New()
		routes := g.RegisterRoutes(engine.Group("/api/v1"))
		assert.Equal(t, "/api/v1/documents/totals", routes[0].Path)

		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/documents/totals", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, []string{"middleware", "handler"}, order)
	})
}
