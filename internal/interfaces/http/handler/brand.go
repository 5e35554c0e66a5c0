package handler

import (
	"github.com/gin-gonic/gin"

	catalogapp "github.com/ComunidadDecidida/mayoristas/internal/application/catalog"
	"github.com/ComunidadDecidida/mayoristas/internal/domain/catalog"
	"github.com/ComunidadDecidida/mayoristas/internal/interfaces/http/dto"
)

// BrandHandler handles brand API endpoints
type BrandHandler struct {
	BaseHandler
	brands *catalogapp.BrandService
}

// NewBrandHandler creates a new BrandHandler
func NewBrandHandler(brands *catalogapp.BrandService) *BrandHandler {
	return &BrandHandler{brands: brands}
}

// BrandRequest creates or updates a brand
type BrandRequest struct {
	Name    string `json:"name" binding:"required,min=1,max=100"`
	Slug    string `json:"slug" binding:"omitempty,max=100"`
	LogoURL string `json:"logo_url" binding:"omitempty,url,max=500"`
}

// BrandResponse is a brand in API responses
type BrandResponse struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Slug     string `json:"slug"`
	LogoURL  string `json:"logo_url,omitempty"`
	IsActive bool   `json:"is_active"`
}

func toBrandResponse(b *catalog.Brand) BrandResponse {
	return BrandResponse{
		ID:       b.ID.String(),
		Name:     b.Name,
		Slug:     b.Slug,
		LogoURL:  b.LogoURL,
		IsActive: b.IsActive,
	}
}

// List returns a brand page
func (h *BrandHandler) List(c *gin.Context) {
	var req dto.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, "Invalid query parameters: "+err.Error())
		return
	}
	req.Normalize()

	page, err := h.brands.List(c.Request.Context(), sharedFilter(req))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	out := make([]BrandResponse, 0, len(page.Items))
	for i := range page.Items {
		out = append(out, toBrandResponse(&page.Items[i]))
	}
	h.SuccessWithMeta(c, out, page.Total, req.Page, req.PageSize)
}

// Create creates a brand
func (h *BrandHandler) Create(c *gin.Context) {
	var req BrandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}
	brand, err := h.brands.Create(c.Request.Context(), req.Name, req.Slug, req.LogoURL)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, toBrandResponse(brand))
}

// Update updates a brand
func (h *BrandHandler) Update(c *gin.Context) {
	id, ok := bindID(c)
	if !ok {
		h.BadRequest(c, "Invalid brand ID")
		return
	}
	var req BrandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}
	brand, err := h.brands.Update(c.Request.Context(), id, req.Name, req.Slug, req.LogoURL)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toBrandResponse(brand))
}

// SetActive toggles brand visibility
func (h *BrandHandler) SetActive(c *gin.Context) {
	id, ok := bindID(c)
	if !ok {
		h.BadRequest(c, "Invalid brand ID")
		return
	}
	var req SetFlagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}
	brand, err := h.brands.SetActive(c.Request.Context(), id, *req.Value)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toBrandResponse(brand))
}

// Delete removes a brand
func (h *BrandHandler) Delete(c *gin.Context) {
	id, ok := bindID(c)
	if !ok {
		h.BadRequest(c, "Invalid brand ID")
		return
	}
	if err := h.brands.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// RegisterRoutes registers all brand routes
func (h *BrandHandler) RegisterRoutes(rg *gin.RouterGroup) {
	brands := rg.Group("/brands")
	{
		brands.GET("", h.List)
		brands.POST("", h.Create)
		brands.PUT("/:id", h.Update)
		brands.PATCH("/:id/active", h.SetActive)
		brands.DELETE("/:id", h.Delete)
	}
}
