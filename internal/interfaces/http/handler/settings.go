package handler

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	settingsapp "github.com/ComunidadDecidida/mayoristas/internal/application/settings"
	"github.com/ComunidadDecidida/mayoristas/internal/domain/settings"
	"github.com/ComunidadDecidida/mayoristas/internal/domain/supplier"
)

// SettingsHandler handles admin configuration API endpoints
type SettingsHandler struct {
	BaseHandler
	settings *settingsapp.Service
}

// NewSettingsHandler creates a new SettingsHandler
func NewSettingsHandler(settings *settingsapp.Service) *SettingsHandler {
	return &SettingsHandler{settings: settings}
}

// SettingResponse is one stored configuration entry
type SettingResponse struct {
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PricingSettingsResponse aggregates the pricing-related settings
type PricingSettingsResponse struct {
	MarkupMode          string `json:"markup_mode"`
	GlobalMarkupPercent string `json:"global_markup_percent"`
	ExchangeRate        string `json:"exchange_rate"`
	IVARate             string `json:"iva_rate"`
}

// SetMarkupModeRequest switches the pricing mode
type SetMarkupModeRequest struct {
	Mode string `json:"mode" binding:"required,oneof=global personalized"`
}

// SetDecimalRequest carries one decimal setting value
type SetDecimalRequest struct {
	Value decimal.Decimal `json:"value" binding:"required,gte=0"`
}

// CategorySelectionRequest sets the category selection for a supplier
type CategorySelectionRequest struct {
	Mode string   `json:"mode" binding:"required,oneof=all selected"`
	IDs  []string `json:"ids"`
}

// List returns every stored setting
func (h *SettingsHandler) List(c *gin.Context) {
	all, err := h.settings.All(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	out := make([]SettingResponse, 0, len(all))
	for _, s := range all {
		out = append(out, SettingResponse{Key: s.Key, Value: s.Value, UpdatedAt: s.UpdatedAt})
	}
	h.Success(c, out)
}

// Pricing returns the effective pricing configuration
func (h *SettingsHandler) Pricing(c *gin.Context) {
	ctx := c.Request.Context()

	mode, err := h.settings.MarkupMode(ctx)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	markup, err := h.settings.GlobalMarkupPercent(ctx)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	rate, err := h.settings.ExchangeRate(ctx)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	iva, err := h.settings.IVARate(ctx)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, PricingSettingsResponse{
		MarkupMode:          string(mode),
		GlobalMarkupPercent: markup.String(),
		ExchangeRate:        rate.String(),
		IVARate:             iva.String(),
	})
}

// SetMarkupMode switches between global and personalized pricing
func (h *SettingsHandler) SetMarkupMode(c *gin.Context) {
	var req SetMarkupModeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}
	if err := h.settings.SetMarkupMode(c.Request.Context(), settings.MarkupMode(req.Mode)); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"markup_mode": req.Mode})
}

// SetGlobalMarkup stores the global markup percentage
func (h *SettingsHandler) SetGlobalMarkup(c *gin.Context) {
	h.setDecimal(c, "global_markup_percent", h.settings.SetGlobalMarkupPercent)
}

// SetExchangeRate stores the USD to MXN conversion rate
func (h *SettingsHandler) SetExchangeRate(c *gin.Context) {
	h.setDecimal(c, "exchange_rate", h.settings.SetExchangeRate)
}

// SetIVARate stores the tax rate applied at checkout
func (h *SettingsHandler) SetIVARate(c *gin.Context) {
	h.setDecimal(c, "iva_rate", h.settings.SetIVARate)
}

// CategorySelection returns the configured selection for a supplier
func (h *SettingsHandler) CategorySelection(c *gin.Context) {
	code := supplier.Code(c.Param("supplier"))
	selection, err := h.settings.CategorySelection(c.Request.Context(), code)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, selection)
}

// SetCategorySelection stores the selection for a supplier
func (h *SettingsHandler) SetCategorySelection(c *gin.Context) {
	code := supplier.Code(c.Param("supplier"))
	var req CategorySelectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}
	selection := supplier.CategorySelection{
		Mode: supplier.SelectionMode(req.Mode),
		IDs:  req.IDs,
	}
	if err := h.settings.SetCategorySelection(c.Request.Context(), code, selection); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, selection)
}

func (h *SettingsHandler) setDecimal(c *gin.Context, field string, apply func(ctx context.Context, v decimal.Decimal) error) {
	var req SetDecimalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}
	if err := apply(c.Request.Context(), req.Value); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{field: req.Value.String()})
}

// RegisterRoutes registers all settings routes
func (h *SettingsHandler) RegisterRoutes(rg *gin.RouterGroup) {
	group := rg.Group("/settings")
	{
		group.GET("", h.List)
		group.GET("/pricing", h.Pricing)
		group.PUT("/markup-mode", h.SetMarkupMode)
		group.PUT("/global-markup", h.SetGlobalMarkup)
		group.PUT("/exchange-rate", h.SetExchangeRate)
		group.PUT("/iva-rate", h.SetIVARate)
		group.GET("/category-selection/:supplier", h.CategorySelection)
		group.PUT("/category-selection/:supplier", h.SetCategorySelection)
	}
}
