package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	catalogapp "github.com/ComunidadDecidida/mayoristas/internal/application/catalog"
	"github.com/ComunidadDecidida/mayoristas/internal/domain/catalog"
	"github.com/ComunidadDecidida/mayoristas/internal/domain/supplier"
)

// CategoryHandler handles supplier category API endpoints
type CategoryHandler struct {
	BaseHandler
	categories *catalogapp.CategoryService
}

// NewCategoryHandler creates a new CategoryHandler
func NewCategoryHandler(categories *catalogapp.CategoryService) *CategoryHandler {
	return &CategoryHandler{categories: categories}
}

// CategoryResponse is a supplier category in API responses
type CategoryResponse struct {
	ID         string    `json:"id"`
	Supplier   string    `json:"supplier"`
	ExternalID string    `json:"external_id"`
	Name       string    `json:"name"`
	Slug       string    `json:"slug"`
	Level      int       `json:"level"`
	IsActive   bool      `json:"is_active"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func toCategoryResponse(cat *catalog.Category) CategoryResponse {
	return CategoryResponse{
		ID:         cat.ID.String(),
		Supplier:   cat.Supplier.String(),
		ExternalID: cat.ExternalID,
		Name:       cat.Name,
		Slug:       cat.Slug,
		Level:      cat.Level,
		IsActive:   cat.IsActive,
		UpdatedAt:  cat.UpdatedAt,
	}
}

// ListBySupplier returns the mirrored category tree for one supplier
func (h *CategoryHandler) ListBySupplier(c *gin.Context) {
	code := supplier.Code(c.Param("supplier"))
	cats, err := h.categories.ListBySupplier(c.Request.Context(), code)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	out := make([]CategoryResponse, 0, len(cats))
	for i := range cats {
		out = append(out, toCategoryResponse(&cats[i]))
	}
	h.Success(c, out)
}

// SetActive toggles whether a category participates in "selected" syncs
func (h *CategoryHandler) SetActive(c *gin.Context) {
	id, ok := bindID(c)
	if !ok {
		h.BadRequest(c, "Invalid category ID")
		return
	}
	var req SetFlagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}
	cat, err := h.categories.SetActive(c.Request.Context(), id, *req.Value)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toCategoryResponse(cat))
}

// RegisterRoutes registers all category routes
func (h *CategoryHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/suppliers/:supplier/categories", h.ListBySupplier)
	rg.PATCH("/categories/:id/active", h.SetActive)
}
