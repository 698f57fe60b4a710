package router

import (
	"github.com/erp/backoffice/internal/interfaces/http/handler"
	"github.com/gin-gonic/gin"
)

// Handlers groups the HTTP handlers of the service
type Handlers struct {
	Settings  *handler.SettingHandler
	Documents *handler.DocumentHandler
	System    *handler.SystemHandler
}

// SettingRoutes mounts the admin settings API. Static segments are
// registered before /:key so they are not taken as keys.
func SettingRoutes(h *handler.SettingHandler) *DomainGroup {
	return NewDomainGroup("settings", "/settings").
		GET("", h.List).
		GET("/snapshot", h.Snapshot).
		POST("/snapshot/reload", h.ReloadSnapshot).
		GET("/by-keys", h.ListByKeys).
		GET("/category/:category", h.ListByCategory).
		GET("/:key", h.Get).
		POST("", h.Create).
		PATCH("/:key", h.Update).
		PUT("/:key", h.SetValue).
		POST("/:key/increment", h.Increment).
		DELETE("/:key", h.Delete)
}

// DocumentRoutes mounts document numbering, totals and money formatting
func DocumentRoutes(h *handler.DocumentHandler) []RouteRegistrar {
	documents := NewDomainGroup("documents", "/documents").
		POST("/totals", h.CalculateTotals).
		POST("/:type/number", h.NextNumber)
	money := NewDomainGroup("money", "/money").
		GET("/format", h.FormatMoney)
	return []RouteRegistrar{documents, money}
}

// SystemRoutes mounts ping and build info
func SystemRoutes(h *handler.SystemHandler) *DomainGroup {
	return NewDomainGroup("system", "/system").
		GET("/ping", h.Ping).
		GET("/info", h.GetSystemInfo)
}

// Mount registers every API route on engine, plus the unversioned /health
// probe, and returns the versioned routes it mounted
func Mount(engine *gin.Engine, h Handlers) []Route {
	r := NewRouter(engine, WithAPIVersion("v1")).
		Register(SettingRoutes(h.Settings)).
		Register(DocumentRoutes(h.Documents)...).
		Register(SystemRoutes(h.System))

	routes := r.Setup()
	engine.GET("/health", h.System.Health)
	return routes
}
