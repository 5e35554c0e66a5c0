package handler

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	catalogapp "github.com/ComunidadDecidida/mayoristas/internal/application/catalog"
	"github.com/ComunidadDecidida/mayoristas/internal/domain/catalog"
	"github.com/ComunidadDecidida/mayoristas/internal/domain/supplier"
	"github.com/ComunidadDecidida/mayoristas/internal/interfaces/http/dto"
)

// ProductHandler handles product API endpoints
type ProductHandler struct {
	BaseHandler
	products *catalogapp.ProductService
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(products *catalogapp.ProductService) *ProductHandler {
	return &ProductHandler{products: products}
}

// ListProductsRequest holds the product list query parameters
type ListProductsRequest struct {
	dto.ListRequest
	Supplier   string `form:"supplier" binding:"omitempty,oneof=syscom tecnosinergia"`
	Brand      string `form:"brand"`
	CategoryID string `form:"category_id"`
	Visible    bool   `form:"visible"`
	Featured   bool   `form:"featured"`
	InStock    bool   `form:"in_stock"`
	// StaleHours selects products not refreshed by a sync for this many hours
	StaleHours int `form:"stale_hours" binding:"omitempty,min=1"`
}

// SetMarkupOverrideRequest sets a per-product markup override
type SetMarkupOverrideRequest struct {
	Percent decimal.Decimal `json:"percent" binding:"required,gte=0"`
}

// SetFlagRequest toggles a boolean product flag
type SetFlagRequest struct {
	Value *bool `json:"value" binding:"required"`
}

// ProductResponse is a product in API responses
type ProductResponse struct {
	ID             string                `json:"id"`
	Supplier       string                `json:"supplier"`
	ExternalID     string                `json:"external_id"`
	SKU            string                `json:"sku"`
	Title          string                `json:"title"`
	Description    string                `json:"description,omitempty"`
	Brand          string                `json:"brand,omitempty"`
	BasePrice      string                `json:"base_price"`
	MarkupPercent  string                `json:"markup_percent"`
	FinalPrice     string                `json:"final_price"`
	Stock          int                   `json:"stock"`
	Images         []string              `json:"images"`
	Categories     []catalog.CategoryRef `json:"categories,omitempty"`
	IsVisible      bool                  `json:"is_visible"`
	IsFeatured     bool                  `json:"is_featured"`
	MarkupOverride *string               `json:"markup_override,omitempty"`
	SyncedAt       time.Time             `json:"synced_at"`
	CreatedAt      time.Time             `json:"created_at"`
	UpdatedAt      time.Time             `json:"updated_at"`
}

func toProductResponse(p *catalog.Product) ProductResponse {
	resp := ProductResponse{
		ID:            p.ID.String(),
		Supplier:      p.Supplier.String(),
		ExternalID:    p.ExternalID,
		SKU:           p.SKU,
		Title:         p.Title,
		Description:   p.Description,
		Brand:         p.Brand,
		BasePrice:     p.BasePrice.StringFixed(2),
		MarkupPercent: p.MarkupPercent.String(),
		FinalPrice:    p.FinalPrice.StringFixed(2),
		Stock:         p.Stock,
		Images:        p.Images,
		IsVisible:     p.IsVisible,
		IsFeatured:    p.IsFeatured,
		SyncedAt:      p.SyncedAt,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
	if p.MarkupOverride != nil {
		s := p.MarkupOverride.String()
		resp.MarkupOverride = &s
	}
	resp.Categories = p.Categories
	return resp
}

func toProductResponses(products []catalog.Product) []ProductResponse {
	out := make([]ProductResponse, 0, len(products))
	for i := range products {
		out = append(out, toProductResponse(&products[i]))
	}
	return out
}

// List returns a filtered product page
func (h *ProductHandler) List(c *gin.Context) {
	var req ListProductsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, "Invalid query parameters: "+err.Error())
		return
	}
	req.Normalize()

	filter := catalog.ProductFilter{
		Filter: sharedFilter(req.ListRequest),
	}
	if req.Supplier != "" {
		code := supplier.Code(req.Supplier)
		filter.Supplier = &code
	}
	filter.Brand = req.Brand
	filter.CategoryID = req.CategoryID
	filter.OnlyVisible = req.Visible
	filter.OnlyFeatured = req.Featured
	filter.OnlyInStock = req.InStock
	if req.StaleHours > 0 {
		cutoff := time.Now().Add(-time.Duration(req.StaleHours) * time.Hour)
		filter.StaleSince = &cutoff
	}

	page, err := h.products.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, toProductResponses(page.Items), page.Total, filter.Page, filter.PageSize)
}

// Get returns one product by ID
func (h *ProductHandler) Get(c *gin.Context) {
	id, ok := bindID(c)
	if !ok {
		h.BadRequest(c, "Invalid product ID")
		return
	}
	product, err := h.products.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toProductResponse(product))
}

// SetVisibility toggles storefront visibility
func (h *ProductHandler) SetVisibility(c *gin.Context) {
	h.setFlag(c, h.products.SetVisibility)
}

// SetFeatured toggles the featured flag
func (h *ProductHandler) SetFeatured(c *gin.Context) {
	h.setFlag(c, h.products.SetFeatured)
}

// SetMarkupOverride stores a per-product markup override
func (h *ProductHandler) SetMarkupOverride(c *gin.Context) {
	id, ok := bindID(c)
	if !ok {
		h.BadRequest(c, "Invalid product ID")
		return
	}
	var req SetMarkupOverrideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}
	product, err := h.products.SetMarkupOverride(c.Request.Context(), id, req.Percent)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toProductResponse(product))
}

// ClearMarkupOverride removes the override and reprices with the global
// markup
func (h *ProductHandler) ClearMarkupOverride(c *gin.Context) {
	id, ok := bindID(c)
	if !ok {
		h.BadRequest(c, "Invalid product ID")
		return
	}
	product, err := h.products.ClearMarkupOverride(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toProductResponse(product))
}

// Counts returns product counts grouped by supplier
func (h *ProductHandler) Counts(c *gin.Context) {
	counts, err := h.products.CountBySupplier(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, counts)
}

// Delete removes a product
func (h *ProductHandler) Delete(c *gin.Context) {
	id, ok := bindID(c)
	if !ok {
		h.BadRequest(c, "Invalid product ID")
		return
	}
	if err := h.products.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

func (h *ProductHandler) setFlag(c *gin.Context, apply func(ctx context.Context, id uuid.UUID, value bool) (*catalog.Product, error)) {
	id, ok := bindID(c)
	if !ok {
		h.BadRequest(c, "Invalid product ID")
		return
	}
	var req SetFlagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}
	product, err := apply(c.Request.Context(), id, *req.Value)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toProductResponse(product))
}

// RegisterRoutes registers all product routes
func (h *ProductHandler) RegisterRoutes(rg *gin.RouterGroup) {
	products := rg.Group("/products")
	{
		products.GET("", h.List)
		products.GET("/counts", h.Counts)
		products.GET("/:id", h.Get)
		products.PATCH("/:id/visibility", h.SetVisibility)
		products.PATCH("/:id/featured", h.SetFeatured)
		products.PUT("/:id/markup-override", h.SetMarkupOverride)
		products.DELETE("/:id/markup-override", h.ClearMarkupOverride)
		products.DELETE("/:id", h.Delete)
	}
}
