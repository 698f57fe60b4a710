package handler

import (
	"strings"

	settingapp "github.com/erp/backoffice/internal/application/setting"
	"github.com/erp/backoffice/internal/domain/setting"
	"github.com/erp/backoffice/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// SettingHandler serves the admin settings API
type SettingHandler struct {
	BaseHandler
	settings *settingapp.Service
	counter  *settingapp.Counter
	provider *settingapp.Provider
}

// NewSettingHandler creates a new SettingHandler
func NewSettingHandler(settings *settingapp.Service, counter *settingapp.Counter, provider *settingapp.Provider) *SettingHandler {
	return &SettingHandler{
		settings: settings,
		counter:  counter,
		provider: provider,
	}
}

// List GET /settings
func (h *SettingHandler) List(c *gin.Context) {
	h.Success(c, dto.ToSettingResponses(h.settings.ListAll(c.Request.Context())))
}

// Snapshot GET /settings/snapshot
func (h *SettingHandler) Snapshot(c *gin.Context) {
	h.Success(c, h.settings.LoadAsMap(c.Request.Context()))
}

// ReloadSnapshot POST /settings/snapshot/reload refreshes the cached
// configuration from storage
func (h *SettingHandler) ReloadSnapshot(c *gin.Context) {
	h.Success(c, h.provider.Reload(c.Request.Context()))
}

// ListByKeys GET /settings/by-keys?keys=a,b
func (h *SettingHandler) ListByKeys(c *gin.Context) {
	var q dto.SettingKeysQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.BindError(c, err)
		return
	}

	settings, err := h.settings.GetManyByKeys(c.Request.Context(), strings.Split(q.Keys, ","))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.ToSettingResponses(settings))
}

// ListByCategory GET /settings/category/:category
func (h *SettingHandler) ListByCategory(c *gin.Context) {
	settings, err := h.settings.ListByCategory(c.Request.Context(), c.Param("category"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.ToSettingResponses(settings))
}

// Get GET /settings/:key
func (h *SettingHandler) Get(c *gin.Context) {
	st, err := h.settings.GetByKey(c.Request.Context(), c.Param("key"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.ToSettingResponse(st))
}

// Create POST /settings
func (h *SettingHandler) Create(c *gin.Context) {
	var req dto.CreateSettingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	var (
		vt    setting.ValueType
		value setting.Value
		err   error
	)
	if req.ValueType != "" {
		if vt, err = setting.ParseValueType(req.ValueType); err == nil {
			value, err = setting.ParseValue(vt, req.Value)
		}
	} else {
		value, err = setting.DecodeValue(req.Value)
	}
	if err != nil {
		h.HandleError(c, err)
		return
	}

	st, err := h.settings.Create(c.Request.Context(), settingapp.CreateInput{
		Category:      req.Category,
		Key:           req.Key,
		ValueType:     vt,
		Value:         value,
		Enabled:       req.Enabled,
		IsPrivate:     req.IsPrivate,
		IsCoreSetting: req.IsCoreSetting,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, dto.ToSettingResponse(st))
}

// Update PATCH /settings/:key. Falsy values (0, false, "") answer 404
// here; PUT stores them.
func (h *SettingHandler) Update(c *gin.Context) {
	value, ok := h.bindValue(c)
	if !ok {
		return
	}
	st, err := h.settings.UpdateByKey(c.Request.Context(), c.Param("key"), value)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.ToSettingResponse(st))
}

// SetValue PUT /settings/:key
func (h *SettingHandler) SetValue(c *gin.Context) {
	value, ok := h.bindValue(c)
	if !ok {
		return
	}
	st, err := h.settings.SetValue(c.Request.Context(), c.Param("key"), value)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.ToSettingResponse(st))
}

// Increment POST /settings/:key/increment
func (h *SettingHandler) Increment(c *gin.Context) {
	st, err := h.counter.Increment(c.Request.Context(), c.Param("key"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.ToSettingResponse(st))
}

// Delete DELETE /settings/:key
func (h *SettingHandler) Delete(c *gin.Context) {
	if err := h.settings.Remove(c.Request.Context(), c.Param("key")); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

func (h *SettingHandler) bindValue(c *gin.Context) (setting.Value, bool) {
	var req dto.UpdateSettingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return setting.Value{}, false
	}
	value, err := setting.DecodeValue(req.Value)
	if err != nil {
		h.HandleError(c, err)
		return setting.Value{}, false
	}
	return value, true
}
