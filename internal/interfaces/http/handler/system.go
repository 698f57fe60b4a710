package handler

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"github.com/erp/backoffice/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// SystemHandler serves liveness and build information
type SystemHandler struct {
	BaseHandler
	name      string
	version   string
	startTime time.Time
	ping      func(ctx context.Context) error
}

// NewSystemHandler creates a new SystemHandler. ping checks the settings
// storage; nil reports it as always reachable.
func NewSystemHandler(name, version string, ping func(ctx context.Context) error) *SystemHandler {
	return &SystemHandler{
		name:      name,
		version:   version,
		startTime: time.Now(),
		ping:      ping,
	}
}

// SystemInfoResponse represents the system information response
type SystemInfoResponse struct {
	Name      string `json:"name"`
	Version   string `json:"version"`
	GoVersion string `json:"go_version"`
	Uptime    string `json:"uptime"`
}

// PingResponse represents the ping response
type PingResponse struct {
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

// HealthResponse reports whether the settings storage answers
type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}

// GetSystemInfo GET /system/info
func (h *SystemHandler) GetSystemInfo(c *gin.Context) {
	h.Success(c, SystemInfoResponse{
		Name:      h.name,
		Version:   h.version,
		GoVersion: runtime.Version(),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
	})
}

// Ping GET /system/ping
func (h *SystemHandler) Ping(c *gin.Context) {
	h.Success(c, PingResponse{
		Message:   "pong",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// Health GET /health. Answers 503 when storage is unreachable.
func (h *SystemHandler) Health(c *gin.Context) {
	if h.ping != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := h.ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, dto.Response{
				Success: false,
				Data:    HealthResponse{Status: "unhealthy", Database: "unreachable"},
				Error:   &dto.ErrorInfo{Code: "SERVICE_UNAVAILABLE", Message: err.Error(), RequestID: getRequestID(c)},
			})
			return
		}
	}
	h.Success(c, HealthResponse{Status: "healthy", Database: "ok"})
}
