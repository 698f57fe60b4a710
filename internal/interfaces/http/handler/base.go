package handler

import (
	"errors"
	"net/http"

	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/erp/backoffice/internal/infrastructure/logger"
	"github.com/erp/backoffice/internal/interfaces/http/dto"
	"github.com/erp/backoffice/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// getRequestID returns the ID assigned by logger.RequestID, falling back
// to the incoming header
func getRequestID(c *gin.Context) string {
	if id := logger.GetRequestID(c.Request.Context()); id != "" {
		return id
	}
	return c.GetHeader(logger.RequestIDHeader)
}

// Success sends a success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// Created sends a 201 created response
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// NoContent sends a 204 no content response
func (h *BaseHandler) NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Error sends an error response with the given status code
func (h *BaseHandler) Error(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, dto.NewErrorResponseWithRequestID(code, message, getRequestID(c)))
}

// BadRequest sends a 400 bad request response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.Error(c, http.StatusBadRequest, dto.ErrCodeBadRequest, message)
}

// ValidationError sends a 400 validation error response with details
func (h *BaseHandler) ValidationError(c *gin.Context, details []dto.ValidationDetail) {
	c.JSON(http.StatusBadRequest, dto.NewValidationErrorResponse(
		"Request validation failed",
		getRequestID(c),
		details,
	))
}

// BindError answers a failed ShouldBind*: field errors become a validation
// response, anything else (malformed JSON) a bad request
func (h *BaseHandler) BindError(c *gin.Context, err error) {
	if details := middleware.ValidationDetails(err); details != nil {
		h.ValidationError(c, details)
		return
	}
	h.BadRequest(c, "Invalid request body: "+err.Error())
}

// HandleError maps a domain error to its status code. Any other error is
// logged and reported as a 500 without its message.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		h.Error(c, dto.GetHTTPStatus(domainErr.Code), domainErr.Code, domainErr.Message)
		return
	}

	logger.FromContext(c.Request.Context()).Error("Request failed",
		zap.String("path", c.FullPath()),
		zap.Error(err))
	_ = c.Error(err)
	h.Error(c, http.StatusInternalServerError, dto.ErrCodeInternal, "An unexpected error occurred")
}
